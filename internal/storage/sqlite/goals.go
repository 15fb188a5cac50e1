package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

type goalRepo struct {
	q dbtx
}

const goalCols = `id, title, details, schedule, is_archived, created_at, updated_at`

func (r *goalRepo) ListGoals(ctx context.Context, f storage.GoalFilter) ([]storage.Goal, error) {
	query := `SELECT ` + goalCols + ` FROM goals`
	if !f.IncludeArchived {
		query += ` WHERE is_archived = 0`
	}
	query += ` ORDER BY created_at ASC, rowid ASC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("goal list: %w", err)
	}
	defer rows.Close()

	var out []storage.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("goal list scan: %w", err)
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("goal list rows: %w", err)
	}
	return out, nil
}

func (r *goalRepo) GetGoal(ctx context.Context, id string) (*storage.Goal, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+goalCols+` FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("goal get: %w", err)
	}
	return g, nil
}

func (r *goalRepo) CreateGoal(ctx context.Context, in storage.GoalInput) (*storage.Goal, error) {
	ts := now()
	g := storage.Goal{
		ID:        storage.NewID("goal"),
		Title:     in.Title,
		Details:   in.Details,
		Schedule:  in.Schedule.Clone(),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	schedule, err := encodeMap(g.Schedule)
	if err != nil {
		return nil, fmt.Errorf("goal insert: %w", err)
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO goals (id, title, details, schedule, is_archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`, g.ID, g.Title, g.Details, schedule, formatTime(ts), formatTime(ts))
	if err != nil {
		return nil, fmt.Errorf("goal insert: %w", err)
	}
	return &g, nil
}

func (r *goalRepo) UpdateGoal(ctx context.Context, id string, up storage.GoalUpdate) (*storage.Goal, error) {
	g, err := r.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("goal update %s: %w", id, storage.ErrNotFound)
	}
	if up.Title != nil {
		g.Title = *up.Title
	}
	if up.Details != nil {
		g.Details = up.Details
	}
	if up.Schedule != nil {
		g.Schedule = up.Schedule.Clone()
	}
	if up.IsArchived != nil {
		g.IsArchived = *up.IsArchived
	}
	g.UpdatedAt = now()

	schedule, err := encodeMap(g.Schedule)
	if err != nil {
		return nil, fmt.Errorf("goal update: %w", err)
	}
	_, err = r.q.ExecContext(ctx, `
		UPDATE goals SET title = ?, details = ?, schedule = ?, is_archived = ?, updated_at = ?
		WHERE id = ?
	`, g.Title, g.Details, schedule, boolToInt(g.IsArchived), formatTime(g.UpdatedAt), g.ID)
	if err != nil {
		return nil, fmt.Errorf("goal update: %w", err)
	}
	return g, nil
}

func (r *goalRepo) ListCompletions(ctx context.Context, f storage.CompletionFilter) ([]storage.GoalCompletion, error) {
	var (
		where []string
		args  []any
	)
	if f.LocalDate != "" {
		where = append(where, "local_date = ?")
		args = append(args, f.LocalDate)
	}
	if f.GoalID != "" {
		where = append(where, "goal_id = ?")
		args = append(args, f.GoalID)
	}
	if f.FromDate != "" {
		where = append(where, "local_date >= ?")
		args = append(args, f.FromDate)
	}
	if f.ToDate != "" {
		where = append(where, "local_date <= ?")
		args = append(args, f.ToDate)
	}
	query := `SELECT id, goal_id, local_date, created_at FROM goal_completions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at ASC, rowid ASC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("completion list: %w", err)
	}
	defer rows.Close()

	var out []storage.GoalCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("completion list scan: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completion list rows: %w", err)
	}
	return out, nil
}

func (r *goalRepo) CreateCompletion(ctx context.Context, in storage.GoalCompletionInput) (*storage.GoalCompletion, bool, error) {
	ts := now()
	c := storage.GoalCompletion{
		ID:        storage.NewID("completion"),
		GoalID:    in.GoalID,
		LocalDate: in.LocalDate,
		CreatedAt: ts,
	}
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO goal_completions (id, goal_id, local_date, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (goal_id, local_date) DO NOTHING
	`, c.ID, c.GoalID, c.LocalDate, formatTime(ts))
	if err != nil {
		return nil, false, fmt.Errorf("completion insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("completion rows affected: %w", err)
	}
	if n == 1 {
		return &c, true, nil
	}

	row := r.q.QueryRowContext(ctx, `
		SELECT id, goal_id, local_date, created_at FROM goal_completions
		WHERE goal_id = ? AND local_date = ?
	`, in.GoalID, in.LocalDate)
	existing, err := scanCompletion(row)
	if err != nil {
		return nil, false, fmt.Errorf("completion get: %w", err)
	}
	return existing, false, nil
}

func scanGoal(row scanner) (*storage.Goal, error) {
	var (
		g                  storage.Goal
		details            sql.NullString
		schedule           string
		archived           int
		createdAt, updated string
	)
	if err := row.Scan(&g.ID, &g.Title, &details, &schedule, &archived, &createdAt, &updated); err != nil {
		return nil, err
	}
	var err error
	g.Details = stringPtr(details)
	g.IsArchived = archived == 1
	if g.Schedule, err = decodeMap(schedule); err != nil {
		return nil, err
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &g, nil
}

func scanCompletion(row scanner) (*storage.GoalCompletion, error) {
	var (
		c         storage.GoalCompletion
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.GoalID, &c.LocalDate, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}
