package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ktanaka/todo/internal/todo/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "todo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func strptr(value string) *string {
	return &value
}

func testItem(id, owner string, createdAt time.Time) storage.Item {
	return storage.Item{
		ID:          id,
		OwnerID:     owner,
		Title:       "Title " + id,
		Description: strptr("Description " + id),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestCreateGetItemRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 12, 9, 30, 0, 0, time.UTC)
	input := testItem("item-1", "user-1", now)
	if err := store.CreateItem(context.Background(), input); err != nil {
		t.Fatalf("create item: %v", err)
	}

	got, err := store.GetItem(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.ID != input.ID {
		t.Fatalf("id = %q, want %q", got.ID, input.ID)
	}
	if got.OwnerID != input.OwnerID {
		t.Fatalf("owner_id = %q, want %q", got.OwnerID, input.OwnerID)
	}
	if got.Title != input.Title {
		t.Fatalf("title = %q, want %q", got.Title, input.Title)
	}
	if got.Description == nil || *got.Description != *input.Description {
		t.Fatalf("description = %v, want %q", got.Description, *input.Description)
	}
	if got.Completed {
		t.Fatal("expected completed = false")
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, now)
	}
}

func TestCreateItemAllowsNilDescription(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 12, 9, 35, 0, 0, time.UTC)
	input := testItem("item-nil", "user-1", now)
	input.Description = nil
	if err := store.CreateItem(context.Background(), input); err != nil {
		t.Fatalf("create item: %v", err)
	}

	got, err := store.GetItem(context.Background(), "item-nil")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.Description != nil {
		t.Fatalf("description = %q, want nil", *got.Description)
	}
}

func TestGetItemNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetItem(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListItemsScopedToOwnerNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	base := time.Date(2026, time.March, 12, 10, 0, 0, 0, time.UTC)
	for i, tc := range []struct {
		id    string
		owner string
	}{
		{"item-a", "user-1"},
		{"item-b", "user-1"},
		{"item-c", "user-2"},
	} {
		item := testItem(tc.id, tc.owner, base.Add(time.Duration(i)*time.Minute))
		if err := store.CreateItem(context.Background(), item); err != nil {
			t.Fatalf("create %s: %v", tc.id, err)
		}
	}

	items, err := store.ListItems(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("item count = %d, want 2", len(items))
	}
	if items[0].ID != "item-b" || items[1].ID != "item-a" {
		t.Fatalf("order = [%s, %s], want [item-b, item-a]", items[0].ID, items[1].ID)
	}
	for _, item := range items {
		if item.OwnerID != "user-1" {
			t.Fatalf("leaked foreign item %s owned by %s", item.ID, item.OwnerID)
		}
	}
}

func TestListItemsEmptyIsNotError(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	items, err := store.ListItems(context.Background(), "user-none")
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("item count = %d, want 0", len(items))
	}
}

func TestUpdateItemScopedByOwner(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 12, 11, 0, 0, 0, time.UTC)
	item := testItem("item-upd", "user-1", now)
	if err := store.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("create item: %v", err)
	}

	foreign := item
	foreign.OwnerID = "user-2"
	foreign.Title = "Hijacked"
	if err := store.UpdateItem(context.Background(), foreign); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("foreign update error = %v, want %v", err, storage.ErrNotFound)
	}

	item.Title = "Edited"
	item.Completed = true
	item.Description = nil
	item.UpdatedAt = now.Add(time.Minute)
	if err := store.UpdateItem(context.Background(), item); err != nil {
		t.Fatalf("update item: %v", err)
	}

	got, err := store.GetItem(context.Background(), "item-upd")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.Title != "Edited" {
		t.Fatalf("title = %q, want %q", got.Title, "Edited")
	}
	if !got.Completed {
		t.Fatal("expected completed = true")
	}
	if got.Description != nil {
		t.Fatalf("description = %q, want nil", *got.Description)
	}
	if !got.UpdatedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("updated_at = %v, want %v", got.UpdatedAt, now.Add(time.Minute))
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at changed to %v", got.CreatedAt)
	}
}

func TestDeleteItemScopedByOwner(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 12, 12, 0, 0, 0, time.UTC)
	if err := store.CreateItem(context.Background(), testItem("item-del", "user-1", now)); err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := store.DeleteItem(context.Background(), "item-del", "user-2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("foreign delete error = %v, want %v", err, storage.ErrNotFound)
	}
	if err := store.DeleteItem(context.Background(), "item-del", "user-1"); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	if err := store.DeleteItem(context.Background(), "item-del", "user-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("repeat delete error = %v, want %v", err, storage.ErrNotFound)
	}
}
