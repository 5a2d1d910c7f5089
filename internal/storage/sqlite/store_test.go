package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sarveshz/munim/backend/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "munim.db"))
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInsertAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := map[string]any{"partyName": "ABC Corp", "netTotal": 590000.0}
	if err := store.Insert(ctx, storage.Sales, record); err != nil {
		t.Fatalf("Insert err: %v", err)
	}

	records, err := store.List(ctx, storage.Sales)
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	var got map[string]any
	if err := json.Unmarshal(records[0], &got); err != nil {
		t.Fatalf("stored record is not valid JSON: %v", err)
	}
	if got["partyName"] != "ABC Corp" {
		t.Fatalf("unexpected record: %v", got)
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, storage.Parties, map[string]string{"name": "Sunrise Traders"}); err != nil {
		t.Fatalf("Insert err: %v", err)
	}

	records, err := store.List(ctx, storage.Items)
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty items collection, got %d", len(records))
	}
}

func TestUnknownCollectionRejected(t *testing.T) {
	store := newTestStore(t)

	err := store.Insert(context.Background(), storage.Collection("ledgers"), map[string]string{})
	if !errors.Is(err, storage.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
