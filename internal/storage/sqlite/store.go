// Package sqlite is the durable storage gateway. Each collection maps to one
// table holding the committed record as a JSON payload.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sarveshz/munim/backend/internal/storage"
)

// Store is a SQLite implementation of storage.Gateway.
type Store struct {
	db *sql.DB
}

var _ storage.Gateway = (*Store)(nil)

// New opens (or creates) the database at dbPath and ensures the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	for _, collection := range []storage.Collection{storage.Sales, storage.Purchases, storage.Parties, storage.Items} {
		table, _ := tableFor(collection)
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`, table)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// Insert stores one committed record.
func (s *Store) Insert(ctx context.Context, collection storage.Collection, record any) error {
	table, ok := tableFor(collection)
	if !ok {
		return &storage.GatewayError{Kind: storage.ErrValidation, Details: fmt.Sprintf("unknown collection %q", collection)}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return &storage.GatewayError{Kind: storage.ErrValidation, Details: err.Error()}
	}

	query := fmt.Sprintf("INSERT INTO %s (id, record, created_at) VALUES (?, ?, ?)", table)
	if _, err := s.db.ExecContext(ctx, query, uuid.NewString(), string(payload), time.Now().UTC()); err != nil {
		return &storage.GatewayError{Kind: storage.ErrTransient, Details: err.Error()}
	}
	return nil
}

// List returns the collection's records in insertion order.
func (s *Store) List(ctx context.Context, collection storage.Collection) ([]json.RawMessage, error) {
	table, ok := tableFor(collection)
	if !ok {
		return nil, &storage.GatewayError{Kind: storage.ErrValidation, Details: fmt.Sprintf("unknown collection %q", collection)}
	}

	query := fmt.Sprintf("SELECT record FROM %s ORDER BY created_at, id", table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &storage.GatewayError{Kind: storage.ErrTransient, Details: err.Error()}
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, &storage.GatewayError{Kind: storage.ErrTransient, Details: err.Error()}
		}
		records = append(records, json.RawMessage(payload))
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.GatewayError{Kind: storage.ErrTransient, Details: err.Error()}
	}
	return records, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// tableFor maps a collection to its table, rejecting anything outside the
// fixed set so collection names never reach SQL unchecked.
func tableFor(collection storage.Collection) (string, bool) {
	switch collection {
	case storage.Sales:
		return "sales", true
	case storage.Purchases:
		return "purchases", true
	case storage.Parties:
		return "parties", true
	case storage.Items:
		return "items", true
	}
	return "", false
}
