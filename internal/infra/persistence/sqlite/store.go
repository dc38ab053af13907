// Package sqlite persists the record store to an embedded SQLite file. It
// reuses the in-memory implementation for transactions and snapshots the
// full state as JSON bucket blobs after every successful commit.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nemastocks/internal/infra/persistence/memory"
	"nemastocks/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.RecordStore = (*Store)(nil)

// Store is a snapshotting SQLite-backed record store.
type Store struct {
	*memory.Store
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the SQLite file at path and hydrates the
// in-memory store from any existing snapshot.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "nemastocks.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

const (
	bucketStrains = "strains"
	bucketFreezes = "freeze_groups"
	bucketTubes   = "tubes"
	bucketBoxes   = "boxes"
	bucketTubeSeq = "tube_seq"
)

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := memory.Snapshot{}
	loaded := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		loaded = true
		switch bucket {
		case bucketStrains:
			if err := json.Unmarshal(payload, &snapshot.Strains); err != nil {
				return fmt.Errorf("decode strains: %w", err)
			}
		case bucketFreezes:
			if err := json.Unmarshal(payload, &snapshot.Freezes); err != nil {
				return fmt.Errorf("decode freeze groups: %w", err)
			}
		case bucketTubes:
			if err := json.Unmarshal(payload, &snapshot.Tubes); err != nil {
				return fmt.Errorf("decode tubes: %w", err)
			}
		case bucketBoxes:
			if err := json.Unmarshal(payload, &snapshot.Boxes); err != nil {
				return fmt.Errorf("decode boxes: %w", err)
			}
		case bucketTubeSeq:
			if err := json.Unmarshal(payload, &snapshot.TubeSeq); err != nil {
				return fmt.Errorf("decode tube sequence: %w", err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if loaded {
		s.ImportState(snapshot)
	}
	return nil
}

func (s *Store) persist() (retErr error) {
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	buckets := []struct {
		name  string
		value any
	}{
		{bucketStrains, snapshot.Strains},
		{bucketFreezes, snapshot.Freezes},
		{bucketTubes, snapshot.Tubes},
		{bucketBoxes, snapshot.Boxes},
		{bucketTubeSeq, snapshot.TubeSeq},
	}
	for _, b := range buckets {
		payload, err := json.Marshal(b.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", b.name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO state(bucket, payload) VALUES(?, ?)
			ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
			b.name, payload,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", b.name, err)
		}
	}
	return tx.Commit()
}

// RunInTransaction applies fn in memory, then snapshots to SQLite on success.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) error {
	if err := s.Store.RunInTransaction(ctx, fn); err != nil {
		return err
	}
	return s.persist()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
