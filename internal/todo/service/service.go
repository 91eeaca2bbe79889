// Package service implements the ownership-checked todo CRUD core.
//
// Every operation takes an already-resolved principal identifier; the core
// never reads ambient request state. Authorization is a per-row ownership
// check against the item's owner column.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ktanaka/todo/internal/id"
	apperrors "github.com/ktanaka/todo/internal/platform/errors"
	"github.com/ktanaka/todo/internal/todo/storage"
)

// Service coordinates ownership checks and item persistence.
type Service struct {
	store storage.ItemStore
	clock func() time.Time
	newID func() (string, error)
}

// New creates a todo service backed by the given store.
func New(store storage.ItemStore) *Service {
	return &Service{
		store: store,
		clock: time.Now,
		newID: id.New,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// CreateParams carries input for Create.
type CreateParams struct {
	Title       string
	Description *string
}

// UpdateParams carries a partial update. Nil pointer fields keep the stored
// value. Description is only applied when DescriptionSet is true; a set-but-nil
// description clears the column, so callers can distinguish "leave alone" from
// "clear".
type UpdateParams struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Completed      *bool
}

// List returns every item owned by uid, newest first. An empty slice is a
// valid, non-error result.
func (s *Service) List(ctx context.Context, uid string) ([]storage.Item, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, errUnauthenticated()
	}
	items, err := s.store.ListItems(ctx, uid)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err.Error(), err)
	}
	return items, nil
}

// Create validates the title and inserts a new item owned by uid.
func (s *Service) Create(ctx context.Context, uid string, params CreateParams) (storage.Item, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return storage.Item{}, errUnauthenticated()
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return storage.Item{}, apperrors.New(apperrors.CodeInvalidArgument, "title is required")
	}

	itemID, err := s.newID()
	if err != nil {
		return storage.Item{}, apperrors.Wrap(apperrors.CodeInternal, err.Error(), err)
	}
	now := s.clock().UTC()
	item := storage.Item{
		ID:          itemID,
		OwnerID:     uid,
		Title:       title,
		Description: normalizeDescription(params.Description),
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return storage.Item{}, apperrors.Wrap(apperrors.CodeInternal, err.Error(), err)
	}
	return item, nil
}

// Update applies a partial update to an item owned by uid.
//
// The existence check reads the row by ID alone so a foreign item yields
// PERMISSION_DENIED rather than NOT_FOUND. The write is scoped by both ID and
// owner again; losing that race reports NOT_FOUND even though the pre-check
// passed.
func (s *Service) Update(ctx context.Context, uid, itemID string, params UpdateParams) (storage.Item, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return storage.Item{}, errUnauthenticated()
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return storage.Item{}, errNotFound()
	}

	existing, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Item{}, errNotFound()
		}
		return storage.Item{}, apperrors.Wrap(apperrors.CodeInternal, err.Error(), err)
	}
	if existing.OwnerID != uid {
		return storage.Item{}, apperrors.New(apperrors.CodePermissionDenied, "permission denied")
	}

	if params.Title != nil {
		// An empty or whitespace-only title keeps the stored value, the
		// same way an absent field does.
		if title := strings.TrimSpace(*params.Title); title != "" {
			existing.Title = title
		}
	}
	if params.DescriptionSet {
		existing.Description = normalizeDescription(params.Description)
	}
	if params.Completed != nil {
		existing.Completed = *params.Completed
	}
	existing.UpdatedAt = s.clock().UTC()

	if err := s.store.UpdateItem(ctx, existing); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Item{}, errNotFound()
		}
		return storage.Item{}, apperrors.Wrap(apperrors.CodeInternal, err.Error(), err)
	}
	return existing, nil
}

// Delete removes an item owned by uid in a single owner-scoped statement.
// A missing item and a foreign item both report NOT_FOUND; the statement
// cannot tell them apart and the distinction is deliberately not made here.
func (s *Service) Delete(ctx context.Context, uid, itemID string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return errUnauthenticated()
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return errNotFound()
	}

	if err := s.store.DeleteItem(ctx, itemID, uid); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errNotFound()
		}
		return apperrors.Wrap(apperrors.CodeInternal, err.Error(), err)
	}
	return nil
}

// normalizeDescription maps empty or whitespace-only descriptions to nil so
// the column is cleared instead of storing blank text.
func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	value := strings.TrimSpace(*description)
	if value == "" {
		return nil
	}
	return &value
}

func errUnauthenticated() error {
	return apperrors.New(apperrors.CodeUnauthenticated, "authentication required")
}

func errNotFound() error {
	return apperrors.New(apperrors.CodeNotFound, "todo not found")
}
