// Package sqlstore provides a SQLite-backed review.Ledger.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/jacentio/moviereview/review"
)

//go:embed schema.sql
var schemaSQL string

// Store keeps review records and author reservations in SQLite.
type Store struct {
	db *sql.DB
}

var _ review.Ledger = (*Store)(nil)

// Open creates or opens a SQLite database at the given path and applies
// the schema. Safe to call on an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Get returns the record at key.
func (s *Store) Get(ctx context.Context, key review.Key) (*review.Entry, error) {
	var (
		entry  review.Entry
		author string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT author, title, data, capacity FROM records WHERE key = ?`, string(key),
	).Scan(&author, &entry.Title, &entry.Data, &entry.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, review.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}

	entry.Owner, err = review.ParseAuthor(author)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", review.ErrInvalidRecord, err)
	}
	return &entry, nil
}

// Create inserts a record and charges its capacity to the owner.
func (s *Store) Create(ctx context.Context, key review.Key, entry review.Entry) error {
	now := time.Now().UTC().Format(time.RFC3339)

	return s.inTx(ctx, "create record", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO records (key, author, title, data, capacity, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		`, string(key), entry.Owner.String(), entry.Title, entry.Data, entry.Capacity, now, now)
		if isPrimaryKeyViolation(err) {
			return review.ErrAlreadyExists
		}
		if err != nil {
			return err
		}
		return adjustAccount(ctx, tx, entry.Owner, entry.Capacity, 1)
	})
}

// Replace overwrites the record at key and moves the capacity delta.
func (s *Store) Replace(ctx context.Context, key review.Key, entry review.Entry) error {
	now := time.Now().UTC().Format(time.RFC3339)

	return s.inTx(ctx, "replace record", func(tx *sql.Tx) error {
		var capacity int64
		err := tx.QueryRowContext(ctx, `SELECT capacity FROM records WHERE key = ?`, string(key)).Scan(&capacity)
		if errors.Is(err, sql.ErrNoRows) {
			return review.ErrNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE records
			SET data = ?, capacity = ?, version = version + 1, updated_at = ?
			WHERE key = ?
		`, entry.Data, entry.Capacity, now, string(key))
		if err != nil {
			return err
		}
		return adjustAccount(ctx, tx, entry.Owner, entry.Capacity-capacity, 0)
	})
}

// Delete removes the record at key and refunds its capacity to owner.
func (s *Store) Delete(ctx context.Context, key review.Key, owner review.Author) (int64, error) {
	var released int64
	err := s.inTx(ctx, "delete record", func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`DELETE FROM records WHERE key = ? RETURNING capacity`, string(key),
		).Scan(&released)
		if errors.Is(err, sql.ErrNoRows) {
			return review.ErrNotFound
		}
		if err != nil {
			return err
		}
		return adjustAccount(ctx, tx, owner, -released, -1)
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

// Reserved returns the bytes reserved by owner.
func (s *Store) Reserved(ctx context.Context, owner review.Author) (int64, error) {
	var reserved int64
	err := s.db.QueryRowContext(ctx,
		`SELECT reserved FROM accounts WHERE author = ?`, owner.String(),
	).Scan(&reserved)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get reserved: %w", err)
	}
	return reserved, nil
}

// inTx runs fn in a transaction, committing only if fn succeeds.
// Ledger sentinel errors are returned unwrapped.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		if errors.Is(err, review.ErrNotFound) || errors.Is(err, review.ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func adjustAccount(ctx context.Context, tx *sql.Tx, owner review.Author, bytes, records int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (author, reserved, records) VALUES (?, ?, ?)
		ON CONFLICT(author) DO UPDATE SET
			reserved = reserved + excluded.reserved,
			records = records + excluded.records
	`, owner.String(), bytes, records)
	if err != nil {
		return fmt.Errorf("adjust account: %w", err)
	}
	return nil
}

func isPrimaryKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
