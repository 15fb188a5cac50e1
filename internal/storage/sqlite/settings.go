package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

const pauseModeKey = "pause_mode"

type settingsRepo struct {
	q dbtx
}

func (r *settingsRepo) GetSettings(ctx context.Context) (storage.Settings, error) {
	v, _, err := getMeta(ctx, r.q, pauseModeKey)
	if err != nil {
		return storage.Settings{}, fmt.Errorf("settings get: %w", err)
	}
	return storage.Settings{PauseMode: v == "1"}, nil
}

func (r *settingsRepo) UpdateSettings(ctx context.Context, up storage.SettingsUpdate) (storage.Settings, error) {
	if up.PauseMode != nil {
		v := "0"
		if *up.PauseMode {
			v = "1"
		}
		if err := setMeta(ctx, r.q, pauseModeKey, v); err != nil {
			return storage.Settings{}, fmt.Errorf("settings update: %w", err)
		}
	}
	return r.GetSettings(ctx)
}

func getMeta(ctx context.Context, q dbtx, key string) (string, bool, error) {
	var v string
	err := q.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func setMeta(ctx context.Context, q dbtx, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
