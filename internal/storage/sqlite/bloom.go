package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

type bloomRepo struct {
	q dbtx
}

const bloomRunCols = `id, local_date, started_at, completed_at, is_completed, choice, story_card_id, petals_awarded, sticker_item_id, created_at`

const instanceCols = `id, story_card_id, bloom_run_id, choice, reflection_text, created_at`

func (r *bloomRepo) CreateBloomRun(ctx context.Context, in storage.BloomRunInput) (*storage.BloomRun, error) {
	ts := now()
	started := in.StartedAt
	if started.IsZero() {
		started = ts
	}
	b := storage.BloomRun{
		ID:          storage.NewID("bloom"),
		LocalDate:   in.LocalDate,
		StartedAt:   started.UTC(),
		StoryCardID: in.StoryCardID,
		CreatedAt:   ts,
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO bloom_runs (id, local_date, started_at, is_completed, story_card_id, petals_awarded, created_at)
		VALUES (?, ?, ?, 0, ?, 0, ?)
	`, b.ID, b.LocalDate, formatTime(b.StartedAt), nullable(b.StoryCardID), formatTime(ts))
	if err != nil {
		return nil, fmt.Errorf("bloom run insert: %w", err)
	}
	return &b, nil
}

func (r *bloomRepo) GetBloomRun(ctx context.Context, id string) (*storage.BloomRun, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+bloomRunCols+` FROM bloom_runs WHERE id = ?`, id)
	b, err := scanBloomRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("bloom run get: %w", err)
	}
	return b, nil
}

func (r *bloomRepo) UpdateBloomRun(ctx context.Context, id string, up storage.BloomRunUpdate) (*storage.BloomRun, error) {
	b, err := r.GetBloomRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("bloom run update %s: %w", id, storage.ErrNotFound)
	}
	if up.CompletedAt != nil {
		t := up.CompletedAt.UTC()
		b.CompletedAt = &t
	}
	if up.IsCompleted != nil {
		b.IsCompleted = *up.IsCompleted
	}
	if up.Choice != nil {
		b.Choice = *up.Choice
	}
	if up.PetalsAwarded != nil {
		b.PetalsAwarded = *up.PetalsAwarded
	}
	if up.StickerItemID != nil {
		b.StickerItemID = *up.StickerItemID
	}
	_, err = r.q.ExecContext(ctx, `
		UPDATE bloom_runs
		SET completed_at = ?, is_completed = ?, choice = ?, petals_awarded = ?, sticker_item_id = ?
		WHERE id = ?
	`, formatTimePtr(b.CompletedAt), boolToInt(b.IsCompleted), nullable(string(b.Choice)), b.PetalsAwarded, nullable(b.StickerItemID), b.ID)
	if err != nil {
		return nil, fmt.Errorf("bloom run update: %w", err)
	}
	return b, nil
}

func (r *bloomRepo) ListBloomRuns(ctx context.Context) ([]storage.BloomRun, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+bloomRunCols+` FROM bloom_runs ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("bloom run list: %w", err)
	}
	defer rows.Close()

	var out []storage.BloomRun
	for rows.Next() {
		b, err := scanBloomRun(rows)
		if err != nil {
			return nil, fmt.Errorf("bloom run list scan: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bloom run list rows: %w", err)
	}
	return out, nil
}

func (r *bloomRepo) CreateStoryCardInstance(ctx context.Context, in storage.StoryCardInstanceInput) (*storage.StoryCardInstance, error) {
	s := storage.StoryCardInstance{
		ID:          storage.NewID("story"),
		StoryCardID: in.StoryCardID,
		BloomRunID:  in.BloomRunID,
		CreatedAt:   now(),
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO story_card_instances (id, story_card_id, bloom_run_id, created_at) VALUES (?, ?, ?, ?)
	`, s.ID, s.StoryCardID, nullable(s.BloomRunID), formatTime(s.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("story instance insert: %w", err)
	}
	return &s, nil
}

func (r *bloomRepo) GetStoryCardInstance(ctx context.Context, id string) (*storage.StoryCardInstance, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+instanceCols+` FROM story_card_instances WHERE id = ?`, id)
	s, err := scanInstance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("story instance get: %w", err)
	}
	return s, nil
}

func (r *bloomRepo) UpdateStoryCardInstance(ctx context.Context, id string, up storage.StoryCardInstanceUpdate) (*storage.StoryCardInstance, error) {
	s, err := r.GetStoryCardInstance(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("story instance update %s: %w", id, storage.ErrNotFound)
	}
	if up.Choice != nil {
		s.Choice = *up.Choice
	}
	if up.ReflectionText != nil {
		s.ReflectionText = up.ReflectionText
	}
	_, err = r.q.ExecContext(ctx, `
		UPDATE story_card_instances SET choice = ?, reflection_text = ? WHERE id = ?
	`, nullable(string(s.Choice)), s.ReflectionText, s.ID)
	if err != nil {
		return nil, fmt.Errorf("story instance update: %w", err)
	}
	return s, nil
}

func (r *bloomRepo) ListStoryCardInstances(ctx context.Context) ([]storage.StoryCardInstance, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+instanceCols+` FROM story_card_instances ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("story instance list: %w", err)
	}
	defer rows.Close()

	var out []storage.StoryCardInstance
	for rows.Next() {
		s, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("story instance list scan: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("story instance list rows: %w", err)
	}
	return out, nil
}

func scanBloomRun(row scanner) (*storage.BloomRun, error) {
	var (
		b                       storage.BloomRun
		startedAt, createdAt    string
		completedAt             sql.NullString
		completed               int
		choice, card, stickerID sql.NullString
	)
	if err := row.Scan(&b.ID, &b.LocalDate, &startedAt, &completedAt, &completed, &choice, &card, &b.PetalsAwarded, &stickerID, &createdAt); err != nil {
		return nil, err
	}
	var err error
	b.IsCompleted = completed == 1
	b.Choice = storage.Choice(choice.String)
	b.StoryCardID = card.String
	b.StickerItemID = stickerID.String
	if b.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if b.CompletedAt, err = parseTimePtr(completedAt); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanInstance(row scanner) (*storage.StoryCardInstance, error) {
	var (
		s                  storage.StoryCardInstance
		bloomRunID, choice sql.NullString
		reflection         sql.NullString
		createdAt          string
	)
	if err := row.Scan(&s.ID, &s.StoryCardID, &bloomRunID, &choice, &reflection, &createdAt); err != nil {
		return nil, err
	}
	var err error
	s.BloomRunID = bloomRunID.String
	s.Choice = storage.Choice(choice.String)
	s.ReflectionText = stringPtr(reflection)
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &s, nil
}
