package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

type rewardRepo struct {
	q dbtx
}

func (r *rewardRepo) ListLedgerEntries(ctx context.Context, f storage.LedgerFilter) ([]storage.RewardLedgerEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, local_date, event_type, source_type, source_id, charge_delta, petals_delta, created_at
		FROM reward_ledger
		ORDER BY created_at DESC, rowid DESC`+limitClause(f.Limit))
	if err != nil {
		return nil, fmt.Errorf("ledger list: %w", err)
	}
	defer rows.Close()

	var out []storage.RewardLedgerEntry
	for rows.Next() {
		var (
			e                    storage.RewardLedgerEntry
			sourceType, sourceID sql.NullString
			createdAt            string
		)
		if err := rows.Scan(&e.ID, &e.LocalDate, &e.EventType, &sourceType, &sourceID, &e.ChargeDelta, &e.PetalsDelta, &createdAt); err != nil {
			return nil, fmt.Errorf("ledger list scan: %w", err)
		}
		e.SourceType = sourceType.String
		e.SourceID = sourceID.String
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("ledger list scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger list rows: %w", err)
	}
	return out, nil
}

func (r *rewardRepo) AddLedgerEntry(ctx context.Context, in storage.LedgerEntryInput) (*storage.RewardLedgerEntry, error) {
	e := storage.RewardLedgerEntry{
		ID:          storage.NewID("ledger"),
		LocalDate:   in.LocalDate,
		EventType:   in.EventType,
		SourceType:  in.SourceType,
		SourceID:    in.SourceID,
		ChargeDelta: in.ChargeDelta,
		PetalsDelta: in.PetalsDelta,
		CreatedAt:   now(),
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO reward_ledger (id, local_date, event_type, source_type, source_id, charge_delta, petals_delta, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.LocalDate, e.EventType, nullable(e.SourceType), nullable(e.SourceID), e.ChargeDelta, e.PetalsDelta, formatTime(e.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("ledger insert: %w", err)
	}
	return &e, nil
}
