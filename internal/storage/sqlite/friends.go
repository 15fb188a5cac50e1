package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

const friendCodeKey = "friend_code"

type friendRepo struct {
	q dbtx
}

// GetFriendCode returns the local friend code, generating it on first use.
func (r *friendRepo) GetFriendCode(ctx context.Context) (string, error) {
	code, ok, err := getMeta(ctx, r.q, friendCodeKey)
	if err != nil {
		return "", fmt.Errorf("friend code get: %w", err)
	}
	if ok && code != "" {
		return code, nil
	}
	code = storage.GenerateFriendCode()
	if err := setMeta(ctx, r.q, friendCodeKey, code); err != nil {
		return "", fmt.Errorf("friend code set: %w", err)
	}
	return code, nil
}

func (r *friendRepo) ListFriends(ctx context.Context) ([]storage.Friend, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, friend_code, display_name, created_at FROM friends ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("friend list: %w", err)
	}
	defer rows.Close()

	var out []storage.Friend
	for rows.Next() {
		f, err := scanFriend(rows)
		if err != nil {
			return nil, fmt.Errorf("friend list scan: %w", err)
		}
		out = append(out, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("friend list rows: %w", err)
	}
	return out, nil
}

func (r *friendRepo) GetFriend(ctx context.Context, id string) (*storage.Friend, error) {
	row := r.q.QueryRowContext(ctx, `SELECT id, friend_code, display_name, created_at FROM friends WHERE id = ?`, id)
	f, err := scanFriend(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("friend get: %w", err)
	}
	return f, nil
}

func (r *friendRepo) AddFriend(ctx context.Context, in storage.FriendInput) (*storage.Friend, error) {
	code := storage.NormalizeFriendCode(in.FriendCode)
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = storage.DefaultFriendName
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO friends (id, friend_code, display_name, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (friend_code) DO NOTHING
	`, storage.NewID("friend"), code, name, formatTime(now()))
	if err != nil {
		return nil, fmt.Errorf("friend insert: %w", err)
	}
	row := r.q.QueryRowContext(ctx, `SELECT id, friend_code, display_name, created_at FROM friends WHERE friend_code = ?`, code)
	f, err := scanFriend(row)
	if err != nil {
		return nil, fmt.Errorf("friend get: %w", err)
	}
	return f, nil
}

func (r *friendRepo) ListSupportNotes(ctx context.Context, f storage.SupportNoteFilter) ([]storage.SupportNote, error) {
	query := `SELECT id, friend_id, direction, message, created_at FROM support_notes`
	var args []any
	if f.FriendID != "" {
		query += ` WHERE friend_id = ?`
		args = append(args, f.FriendID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC` + limitClause(f.Limit)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("support note list: %w", err)
	}
	defer rows.Close()

	var out []storage.SupportNote
	for rows.Next() {
		var (
			n         storage.SupportNote
			friendID  sql.NullString
			direction string
			createdAt string
		)
		if err := rows.Scan(&n.ID, &friendID, &direction, &n.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("support note list scan: %w", err)
		}
		n.FriendID = friendID.String
		n.Direction = storage.NoteDirection(direction)
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("support note list scan: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("support note list rows: %w", err)
	}
	return out, nil
}

func (r *friendRepo) AddSupportNote(ctx context.Context, in storage.SupportNoteInput) (*storage.SupportNote, error) {
	n := storage.SupportNote{
		ID:        storage.NewID("note"),
		FriendID:  in.FriendID,
		Direction: in.Direction,
		Message:   in.Message,
		CreatedAt: now(),
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO support_notes (id, friend_id, direction, message, created_at) VALUES (?, ?, ?, ?, ?)
	`, n.ID, nullable(n.FriendID), string(n.Direction), n.Message, formatTime(n.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("support note insert: %w", err)
	}
	return &n, nil
}

func scanFriend(row scanner) (*storage.Friend, error) {
	var (
		f         storage.Friend
		createdAt string
	)
	if err := row.Scan(&f.ID, &f.FriendCode, &f.DisplayName, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &f, nil
}
