package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

// Store is the SQLite storage backend.
type Store struct {
	db   *sql.DB
	path string
}

var _ storage.Store = (*Store)(nil)

// Open opens (and creates if missing) the SQLite database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return open(ctx, path, path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)")
}

// OpenInMemory opens a private in-memory database. Used by tests.
func OpenInMemory(ctx context.Context) (*Store, error) {
	return open(ctx, ":memory:", ":memory:?_pragma=foreign_keys(ON)")
}

func open(ctx context.Context, path, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path, or ":memory:".
func (s *Store) Path() string {
	return s.path
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Repos() storage.Repos {
	return reposFor(s.db)
}

// Atomic runs fn against repositories bound to a single transaction.
func (s *Store) Atomic(ctx context.Context, fn func(r storage.Repos) error) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(reposFor(tx))
	})
}

// Reset deletes every user row. Items and story cards are kept.
func (s *Store) Reset(ctx context.Context) error {
	tables := []string{
		"support_notes",
		"friends",
		"story_card_instances",
		"bloom_runs",
		"user_items",
		"reward_ledger",
		"quests",
		"activity_sessions",
		"checkins",
		"goal_completions",
		"goals",
		"companion",
		"meta",
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
				return fmt.Errorf("reset %s: %w", t, err)
			}
		}
		return nil
	})
}

func reposFor(q dbtx) storage.Repos {
	return storage.Repos{
		Companion: &companionRepo{q: q},
		Goals:     &goalRepo{q: q},
		Checkins:  &checkinRepo{q: q},
		Activity:  &activityRepo{q: q},
		Quests:    &questRepo{q: q},
		Rewards:   &rewardRepo{q: q},
		Shop:      &shopRepo{q: q},
		Bloom:     &bloomRepo{q: q},
		Friends:   &friendRepo{q: q},
		Settings:  &settingsRepo{q: q},
	}
}
