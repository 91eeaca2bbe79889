// Package sqlite provides a SQLite-backed todo item store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ktanaka/todo/internal/platform/storage/sqlitemigrate"
	"github.com/ktanaka/todo/internal/todo/storage"
	"github.com/ktanaka/todo/internal/todo/storage/sqlite/migrations"
)

// Store persists todo items in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite todo store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ListItems returns every item owned by ownerID, newest first.
func (s *Store) ListItems(ctx context.Context, ownerID string) ([]storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, user_id, title, description, completed, created_at, updated_at
		   FROM todos
		  WHERE user_id = ?
		  ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	items := make([]storage.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list todos: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return items, nil
}

// GetItem returns an item by ID regardless of owner.
func (s *Store) GetItem(ctx context.Context, itemID string) (storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return storage.Item{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Item{}, fmt.Errorf("storage is not configured")
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return storage.Item{}, fmt.Errorf("item id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, user_id, title, description, completed, created_at, updated_at
		   FROM todos
		  WHERE id = ?`,
		itemID,
	)
	item, err := scanItem(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Item{}, storage.ErrNotFound
		}
		return storage.Item{}, fmt.Errorf("get todo: %w", err)
	}
	return item, nil
}

// CreateItem inserts one item row.
func (s *Store) CreateItem(ctx context.Context, item storage.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("item id is required")
	}
	if strings.TrimSpace(item.OwnerID) == "" {
		return fmt.Errorf("owner id is required")
	}
	if strings.TrimSpace(item.Title) == "" {
		return fmt.Errorf("title is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO todos (id, user_id, title, description, completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.OwnerID,
		item.Title,
		descriptionValue(item.Description),
		boolToInt(item.Completed),
		toMillis(item.CreatedAt),
		toMillis(item.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

// UpdateItem replaces the mutable columns of the row matching both the item
// ID and owner ID. The owner scope is enforced again here so a row that
// changed hands between a read and this write cannot be touched.
func (s *Store) UpdateItem(ctx context.Context, item storage.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("item id is required")
	}
	if strings.TrimSpace(item.OwnerID) == "" {
		return fmt.Errorf("owner id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE todos
		    SET title = ?, description = ?, completed = ?, updated_at = ?
		  WHERE id = ? AND user_id = ?`,
		item.Title,
		descriptionValue(item.Description),
		boolToInt(item.Completed),
		toMillis(item.UpdatedAt),
		item.ID,
		item.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update todo rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteItem removes the row matching both IDs in a single statement.
func (s *Store) DeleteItem(ctx context.Context, itemID, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	itemID = strings.TrimSpace(itemID)
	ownerID = strings.TrimSpace(ownerID)
	if itemID == "" {
		return fmt.Errorf("item id is required")
	}
	if ownerID == "" {
		return fmt.Errorf("owner id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM todos WHERE id = ? AND user_id = ?`,
		itemID,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete todo rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanItem(scan func(dest ...any) error) (storage.Item, error) {
	var item storage.Item
	var description sql.NullString
	var completed int64
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&item.ID,
		&item.OwnerID,
		&item.Title,
		&description,
		&completed,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.Item{}, err
	}
	if description.Valid {
		value := description.String
		item.Description = &value
	}
	item.Completed = completed != 0
	item.CreatedAt = fromMillis(createdAt)
	item.UpdatedAt = fromMillis(updatedAt)
	return item, nil
}

func descriptionValue(description *string) any {
	if description == nil {
		return nil
	}
	return *description
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

var _ storage.ItemStore = (*Store)(nil)
