package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

type companionRepo struct {
	q dbtx
}

const companionCols = `id, palette_id, charge, petals_balance, traits, equipped_item_ids, created_at, updated_at`

func (r *companionRepo) GetCompanion(ctx context.Context) (*storage.Companion, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+companionCols+` FROM companion ORDER BY created_at ASC LIMIT 1`)
	c, err := scanCompanion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("companion get: %w", err)
	}
	return c, nil
}

func (r *companionRepo) getByID(ctx context.Context, id string) (*storage.Companion, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+companionCols+` FROM companion WHERE id = ?`, id)
	c, err := scanCompanion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("companion get: %w", err)
	}
	return c, nil
}

func (r *companionRepo) CreateCompanion(ctx context.Context, in storage.CompanionInput) (*storage.Companion, error) {
	ts := now()
	c := storage.Companion{
		ID:              storage.NewID("companion"),
		PaletteID:       in.PaletteID,
		Charge:          in.Charge,
		PetalsBalance:   in.PetalsBalance,
		Traits:          in.Traits.Clone(),
		EquippedItemIDs: append([]string{}, in.EquippedItemIDs...),
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	if err := storage.CheckCompanionBounds(c); err != nil {
		return nil, fmt.Errorf("companion insert: %w", err)
	}
	traits, err := encodeMap(c.Traits)
	if err != nil {
		return nil, fmt.Errorf("companion insert: %w", err)
	}
	equipped, err := encodeIDs(c.EquippedItemIDs)
	if err != nil {
		return nil, fmt.Errorf("companion insert: %w", err)
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO companion (id, palette_id, charge, petals_balance, traits, equipped_item_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.PaletteID, c.Charge, c.PetalsBalance, traits, equipped, formatTime(ts), formatTime(ts))
	if err != nil {
		return nil, fmt.Errorf("companion insert: %w", err)
	}
	return &c, nil
}

func (r *companionRepo) UpdateCompanion(ctx context.Context, id string, up storage.CompanionUpdate) (*storage.Companion, error) {
	c, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("companion update %s: %w", id, storage.ErrNotFound)
	}

	if up.PaletteID != nil {
		c.PaletteID = *up.PaletteID
	}
	if up.Charge != nil {
		c.Charge = *up.Charge
	}
	if up.PetalsBalance != nil {
		c.PetalsBalance = *up.PetalsBalance
	}
	if up.Traits != nil {
		c.Traits = up.Traits.Clone()
	}
	if up.EquippedItemIDs != nil {
		c.EquippedItemIDs = append([]string{}, up.EquippedItemIDs...)
	}
	if err := storage.CheckCompanionBounds(*c); err != nil {
		return nil, fmt.Errorf("companion update: %w", err)
	}
	c.UpdatedAt = now()

	traits, err := encodeMap(c.Traits)
	if err != nil {
		return nil, fmt.Errorf("companion update: %w", err)
	}
	equipped, err := encodeIDs(c.EquippedItemIDs)
	if err != nil {
		return nil, fmt.Errorf("companion update: %w", err)
	}
	_, err = r.q.ExecContext(ctx, `
		UPDATE companion
		SET palette_id = ?, charge = ?, petals_balance = ?, traits = ?, equipped_item_ids = ?, updated_at = ?
		WHERE id = ?
	`, c.PaletteID, c.Charge, c.PetalsBalance, traits, equipped, formatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return nil, fmt.Errorf("companion update: %w", err)
	}
	return c, nil
}

func scanCompanion(row scanner) (*storage.Companion, error) {
	var (
		c                  storage.Companion
		traits, equipped   string
		createdAt, updated string
	)
	if err := row.Scan(&c.ID, &c.PaletteID, &c.Charge, &c.PetalsBalance, &traits, &equipped, &createdAt, &updated); err != nil {
		return nil, err
	}
	var err error
	if c.Traits, err = decodeMap(traits); err != nil {
		return nil, err
	}
	if c.EquippedItemIDs, err = decodeIDs(equipped); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &c, nil
}
