package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

type questRepo struct {
	q dbtx
}

const questCols = `id, local_date, quest_type, target, progress, reward_petals, is_claimed, claimed_at, created_at`

func (r *questRepo) ListQuests(ctx context.Context, f storage.QuestFilter) ([]storage.Quest, error) {
	query := `SELECT ` + questCols + ` FROM quests`
	var args []any
	if f.LocalDate != "" {
		query += ` WHERE local_date = ?`
		args = append(args, f.LocalDate)
	}
	query += ` ORDER BY local_date ASC, rowid ASC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("quest list: %w", err)
	}
	defer rows.Close()

	var out []storage.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("quest list scan: %w", err)
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quest list rows: %w", err)
	}
	return out, nil
}

func (r *questRepo) GetQuest(ctx context.Context, id string) (*storage.Quest, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+questCols+` FROM quests WHERE id = ?`, id)
	q, err := scanQuest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("quest get: %w", err)
	}
	return q, nil
}

func (r *questRepo) CreateQuest(ctx context.Context, in storage.QuestInput) (*storage.Quest, error) {
	q := storage.Quest{
		ID:           storage.NewID("quest"),
		LocalDate:    in.LocalDate,
		QuestType:    in.QuestType,
		Target:       in.Target,
		Progress:     in.Progress,
		RewardPetals: in.RewardPetals,
		IsClaimed:    in.IsClaimed,
		CreatedAt:    now(),
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO quests (id, local_date, quest_type, target, progress, reward_petals, is_claimed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.LocalDate, q.QuestType, q.Target, q.Progress, q.RewardPetals, boolToInt(q.IsClaimed), formatTime(q.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("quest insert: %w", err)
	}
	return &q, nil
}

func (r *questRepo) UpdateQuest(ctx context.Context, id string, up storage.QuestUpdate) (*storage.Quest, error) {
	q, err := r.GetQuest(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("quest update %s: %w", id, storage.ErrNotFound)
	}
	if up.Progress != nil {
		q.Progress = *up.Progress
	}
	if up.IsClaimed != nil {
		q.IsClaimed = *up.IsClaimed
	}
	if up.ClaimedAt != nil {
		t := up.ClaimedAt.UTC()
		q.ClaimedAt = &t
	}
	_, err = r.q.ExecContext(ctx, `
		UPDATE quests SET progress = ?, is_claimed = ?, claimed_at = ? WHERE id = ?
	`, q.Progress, boolToInt(q.IsClaimed), formatTimePtr(q.ClaimedAt), q.ID)
	if err != nil {
		return nil, fmt.Errorf("quest update: %w", err)
	}
	return q, nil
}

func scanQuest(row scanner) (*storage.Quest, error) {
	var (
		q         storage.Quest
		claimed   int
		claimedAt sql.NullString
		createdAt string
	)
	if err := row.Scan(&q.ID, &q.LocalDate, &q.QuestType, &q.Target, &q.Progress, &q.RewardPetals, &claimed, &claimedAt, &createdAt); err != nil {
		return nil, err
	}
	var err error
	q.IsClaimed = claimed == 1
	if q.ClaimedAt, err = parseTimePtr(claimedAt); err != nil {
		return nil, err
	}
	if q.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &q, nil
}
