package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

type checkinRepo struct {
	q dbtx
}

type activityRepo struct {
	q dbtx
}

// dateWhere builds the WHERE clause for a DateRange on local_date.
func dateWhere(f storage.DateRange) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.FromDate != "" {
		where = append(where, "local_date >= ?")
		args = append(args, f.FromDate)
	}
	if f.ToDate != "" {
		where = append(where, "local_date <= ?")
		args = append(args, f.ToDate)
	}
	if len(where) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(where, " AND "), args
}

// ListCheckins returns newest first.
func (r *checkinRepo) ListCheckins(ctx context.Context, f storage.DateRange) ([]storage.Checkin, error) {
	where, args := dateWhere(f)
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, local_date, mood, note, created_at FROM checkins`+where+`
		ORDER BY created_at DESC, rowid DESC`+limitClause(f.Limit), args...)
	if err != nil {
		return nil, fmt.Errorf("checkin list: %w", err)
	}
	defer rows.Close()

	var out []storage.Checkin
	for rows.Next() {
		var (
			c         storage.Checkin
			note      sql.NullString
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.LocalDate, &c.Mood, &note, &createdAt); err != nil {
			return nil, fmt.Errorf("checkin list scan: %w", err)
		}
		c.Note = stringPtr(note)
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("checkin list scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("checkin list rows: %w", err)
	}
	return out, nil
}

func (r *checkinRepo) CreateCheckin(ctx context.Context, in storage.CheckinInput) (*storage.Checkin, error) {
	c := storage.Checkin{
		ID:        storage.NewID("checkin"),
		LocalDate: in.LocalDate,
		Mood:      in.Mood,
		Note:      in.Note,
		CreatedAt: now(),
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO checkins (id, local_date, mood, note, created_at) VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.LocalDate, c.Mood, c.Note, formatTime(c.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("checkin insert: %w", err)
	}
	return &c, nil
}

// ListSessions returns newest first.
func (r *activityRepo) ListSessions(ctx context.Context, f storage.DateRange) ([]storage.ActivitySession, error) {
	where, args := dateWhere(f)
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, local_date, activity_type, duration_seconds, note, metadata, created_at
		FROM activity_sessions`+where+`
		ORDER BY created_at DESC, rowid DESC`+limitClause(f.Limit), args...)
	if err != nil {
		return nil, fmt.Errorf("activity list: %w", err)
	}
	defer rows.Close()

	var out []storage.ActivitySession
	for rows.Next() {
		var (
			s         storage.ActivitySession
			kind      string
			duration  sql.NullInt64
			note      sql.NullString
			metadata  string
			createdAt string
		)
		if err := rows.Scan(&s.ID, &s.LocalDate, &kind, &duration, &note, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("activity list scan: %w", err)
		}
		s.ActivityType = storage.ActivityType(kind)
		if duration.Valid {
			d := int(duration.Int64)
			s.DurationSeconds = &d
		}
		s.Note = stringPtr(note)
		if s.Metadata, err = decodeMap(metadata); err != nil {
			return nil, fmt.Errorf("activity list scan: %w", err)
		}
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("activity list scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("activity list rows: %w", err)
	}
	return out, nil
}

func (r *activityRepo) CreateSession(ctx context.Context, in storage.ActivitySessionInput) (*storage.ActivitySession, error) {
	s := storage.ActivitySession{
		ID:              storage.NewID("session"),
		LocalDate:       in.LocalDate,
		ActivityType:    in.ActivityType,
		DurationSeconds: in.DurationSeconds,
		Note:            in.Note,
		Metadata:        in.Metadata.Clone(),
		CreatedAt:       now(),
	}
	metadata, err := encodeMap(s.Metadata)
	if err != nil {
		return nil, fmt.Errorf("activity insert: %w", err)
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO activity_sessions (id, local_date, activity_type, duration_seconds, note, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.LocalDate, string(s.ActivityType), s.DurationSeconds, s.Note, metadata, formatTime(s.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("activity insert: %w", err)
	}
	return &s, nil
}
