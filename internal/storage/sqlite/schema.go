package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate creates every table and index. Safe to run on an existing database.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companion (
			id TEXT PRIMARY KEY,
			palette_id TEXT NOT NULL,
			charge INTEGER NOT NULL DEFAULT 0 CHECK (charge BETWEEN 0 AND 100),
			petals_balance INTEGER NOT NULL DEFAULT 0 CHECK (petals_balance >= 0),
			traits TEXT NOT NULL DEFAULT '{}',
			equipped_item_ids TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			details TEXT,
			schedule TEXT NOT NULL DEFAULT '{}',
			is_archived INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS goal_completions (
			id TEXT PRIMARY KEY,
			goal_id TEXT NOT NULL,
			local_date TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE (goal_id, local_date),
			FOREIGN KEY (goal_id) REFERENCES goals(id)
		);`,
		`CREATE TABLE IF NOT EXISTS checkins (
			id TEXT PRIMARY KEY,
			local_date TEXT NOT NULL,
			mood INTEGER NOT NULL CHECK (mood BETWEEN 1 AND 5),
			note TEXT,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS activity_sessions (
			id TEXT PRIMARY KEY,
			local_date TEXT NOT NULL,
			activity_type TEXT NOT NULL CHECK (activity_type IN ('breathe', 'focus', 'sound', 'reflect', 'first_aid')),
			duration_seconds INTEGER,
			note TEXT,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quests (
			id TEXT PRIMARY KEY,
			local_date TEXT NOT NULL,
			quest_type TEXT NOT NULL,
			target INTEGER NOT NULL CHECK (target > 0),
			progress INTEGER NOT NULL DEFAULT 0 CHECK (progress >= 0),
			reward_petals INTEGER NOT NULL,
			is_claimed INTEGER NOT NULL DEFAULT 0,
			claimed_at TEXT,
			created_at TEXT NOT NULL,
			UNIQUE (local_date, quest_type)
		);`,
		`CREATE TABLE IF NOT EXISTS reward_ledger (
			id TEXT PRIMARY KEY,
			local_date TEXT NOT NULL DEFAULT '',
			event_type TEXT NOT NULL,
			source_type TEXT,
			source_id TEXT,
			charge_delta INTEGER NOT NULL,
			petals_delta INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			sku TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL,
			price_petals INTEGER NOT NULL CHECK (price_petals >= 0),
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS user_items (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL UNIQUE,
			acquired_at TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			FOREIGN KEY (item_id) REFERENCES items(id)
		);`,
		`CREATE TABLE IF NOT EXISTS story_cards (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			choice_a_text TEXT NOT NULL,
			choice_b_text TEXT NOT NULL,
			choice_a_trait_deltas TEXT NOT NULL DEFAULT '{}',
			choice_b_trait_deltas TEXT NOT NULL DEFAULT '{}',
			rarity TEXT NOT NULL DEFAULT 'common',
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS bloom_runs (
			id TEXT PRIMARY KEY,
			local_date TEXT NOT NULL,
			started_at TEXT NOT NULL,
			completed_at TEXT,
			is_completed INTEGER NOT NULL DEFAULT 0,
			choice TEXT CHECK (choice IN ('a', 'b')),
			story_card_id TEXT,
			petals_awarded INTEGER NOT NULL DEFAULT 0,
			sticker_item_id TEXT,
			created_at TEXT NOT NULL,
			FOREIGN KEY (story_card_id) REFERENCES story_cards(id),
			FOREIGN KEY (sticker_item_id) REFERENCES items(id)
		);`,
		`CREATE TABLE IF NOT EXISTS story_card_instances (
			id TEXT PRIMARY KEY,
			story_card_id TEXT NOT NULL,
			bloom_run_id TEXT,
			choice TEXT CHECK (choice IN ('a', 'b')),
			reflection_text TEXT,
			created_at TEXT NOT NULL,
			FOREIGN KEY (story_card_id) REFERENCES story_cards(id),
			FOREIGN KEY (bloom_run_id) REFERENCES bloom_runs(id)
		);`,
		`CREATE TABLE IF NOT EXISTS friends (
			id TEXT PRIMARY KEY,
			friend_code TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS support_notes (
			id TEXT PRIMARY KEY,
			friend_id TEXT,
			direction TEXT NOT NULL CHECK (direction IN ('incoming', 'outgoing')),
			message TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (friend_id) REFERENCES friends(id)
		);`,
		// Settings and the local friend code.
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_checkins_local_date ON checkins(local_date);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_sessions_local_date ON activity_sessions(local_date);`,
		`CREATE INDEX IF NOT EXISTS idx_quests_local_date ON quests(local_date);`,
		`CREATE INDEX IF NOT EXISTS idx_goal_completions_local_date ON goal_completions(local_date);`,
		`CREATE INDEX IF NOT EXISTS idx_reward_ledger_created_at ON reward_ledger(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_support_notes_friend_id ON support_notes(friend_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first release (ignore if already present).
	alterStmts := []string{
		`ALTER TABLE story_cards ADD COLUMN rarity TEXT NOT NULL DEFAULT 'common';`,
		`ALTER TABLE reward_ledger ADD COLUMN local_date TEXT NOT NULL DEFAULT '';`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}

	return nil
}
