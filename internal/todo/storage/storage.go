// Package storage defines persistence contracts for todo items.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no row matched the requested scope.
var ErrNotFound = errors.New("record not found")

// Item stores one todo item owned by a single user.
type Item struct {
	ID          string
	OwnerID     string
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemStore persists todo items.
type ItemStore interface {
	// ListItems returns every item owned by ownerID, newest first.
	ListItems(ctx context.Context, ownerID string) ([]Item, error)
	// GetItem returns an item by ID regardless of owner.
	GetItem(ctx context.Context, itemID string) (Item, error)
	// CreateItem inserts one item row.
	CreateItem(ctx context.Context, item Item) error
	// UpdateItem replaces the mutable columns of the row matching both the
	// item ID and owner ID. It returns ErrNotFound when no row matched.
	UpdateItem(ctx context.Context, item Item) error
	// DeleteItem removes the row matching both IDs. It returns ErrNotFound
	// when no row matched.
	DeleteItem(ctx context.Context, itemID, ownerID string) error
}
