package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

type shopRepo struct {
	q dbtx
}

const itemCols = `id, sku, name, description, category, price_petals, metadata, created_at`

func (r *shopRepo) ListItems(ctx context.Context) ([]storage.Item, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+itemCols+` FROM items ORDER BY price_petals ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("item list: %w", err)
	}
	defer rows.Close()

	var out []storage.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("item list scan: %w", err)
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("item list rows: %w", err)
	}
	return out, nil
}

func (r *shopRepo) GetItem(ctx context.Context, id string) (*storage.Item, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("item get: %w", err)
	}
	return it, nil
}

func (r *shopRepo) UpsertItem(ctx context.Context, it storage.Item) error {
	metadata, err := encodeMap(it.Metadata)
	if err != nil {
		return fmt.Errorf("item upsert: %w", err)
	}
	created := it.CreatedAt
	if created.IsZero() {
		created = now()
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO items (id, sku, name, description, category, price_petals, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			sku = excluded.sku,
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			price_petals = excluded.price_petals,
			metadata = excluded.metadata
	`, it.ID, it.SKU, it.Name, it.Description, it.Category, it.PricePetals, metadata, formatTime(created))
	if err != nil {
		return fmt.Errorf("item upsert: %w", err)
	}
	return nil
}

func (r *shopRepo) ListStoryCards(ctx context.Context) ([]storage.StoryCard, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, title, body, choice_a_text, choice_b_text, choice_a_trait_deltas, choice_b_trait_deltas, rarity, created_at
		FROM story_cards
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("story card list: %w", err)
	}
	defer rows.Close()

	var out []storage.StoryCard
	for rows.Next() {
		var (
			c              storage.StoryCard
			aDelta, bDelta string
			createdAt      string
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Body, &c.ChoiceAText, &c.ChoiceBText, &aDelta, &bDelta, &c.Rarity, &createdAt); err != nil {
			return nil, fmt.Errorf("story card list scan: %w", err)
		}
		if c.ChoiceATraitDeltas, err = decodeMap(aDelta); err != nil {
			return nil, fmt.Errorf("story card list scan: %w", err)
		}
		if c.ChoiceBTraitDeltas, err = decodeMap(bDelta); err != nil {
			return nil, fmt.Errorf("story card list scan: %w", err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("story card list scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("story card list rows: %w", err)
	}
	return out, nil
}

func (r *shopRepo) UpsertStoryCard(ctx context.Context, c storage.StoryCard) error {
	aDelta, err := encodeMap(c.ChoiceATraitDeltas)
	if err != nil {
		return fmt.Errorf("story card upsert: %w", err)
	}
	bDelta, err := encodeMap(c.ChoiceBTraitDeltas)
	if err != nil {
		return fmt.Errorf("story card upsert: %w", err)
	}
	rarity := c.Rarity
	if rarity == "" {
		rarity = "common"
	}
	created := c.CreatedAt
	if created.IsZero() {
		created = now()
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO story_cards (id, title, body, choice_a_text, choice_b_text, choice_a_trait_deltas, choice_b_trait_deltas, rarity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			choice_a_text = excluded.choice_a_text,
			choice_b_text = excluded.choice_b_text,
			choice_a_trait_deltas = excluded.choice_a_trait_deltas,
			choice_b_trait_deltas = excluded.choice_b_trait_deltas,
			rarity = excluded.rarity
	`, c.ID, c.Title, c.Body, c.ChoiceAText, c.ChoiceBText, aDelta, bDelta, rarity, formatTime(created))
	if err != nil {
		return fmt.Errorf("story card upsert: %w", err)
	}
	return nil
}

func (r *shopRepo) ListInventory(ctx context.Context) ([]storage.UserItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, item_id, acquired_at, metadata FROM user_items ORDER BY acquired_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("inventory list: %w", err)
	}
	defer rows.Close()

	var out []storage.UserItem
	for rows.Next() {
		ui, err := scanUserItem(rows)
		if err != nil {
			return nil, fmt.Errorf("inventory list scan: %w", err)
		}
		out = append(out, *ui)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inventory list rows: %w", err)
	}
	return out, nil
}

func (r *shopRepo) AddUserItem(ctx context.Context, itemID string, metadata storage.JSONMap) (*storage.UserItem, error) {
	encoded, err := encodeMap(metadata)
	if err != nil {
		return nil, fmt.Errorf("user item insert: %w", err)
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO user_items (id, item_id, acquired_at, metadata) VALUES (?, ?, ?, ?)
		ON CONFLICT (item_id) DO NOTHING
	`, storage.NewID("user_item"), itemID, formatTime(now()), encoded)
	if err != nil {
		return nil, fmt.Errorf("user item insert: %w", err)
	}
	row := r.q.QueryRowContext(ctx, `SELECT id, item_id, acquired_at, metadata FROM user_items WHERE item_id = ?`, itemID)
	ui, err := scanUserItem(row)
	if err != nil {
		return nil, fmt.Errorf("user item get: %w", err)
	}
	return ui, nil
}

func scanItem(row scanner) (*storage.Item, error) {
	var (
		it          storage.Item
		description sql.NullString
		metadata    string
		createdAt   string
	)
	if err := row.Scan(&it.ID, &it.SKU, &it.Name, &description, &it.Category, &it.PricePetals, &metadata, &createdAt); err != nil {
		return nil, err
	}
	var err error
	it.Description = stringPtr(description)
	if it.Metadata, err = decodeMap(metadata); err != nil {
		return nil, err
	}
	if it.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func scanUserItem(row scanner) (*storage.UserItem, error) {
	var (
		ui         storage.UserItem
		acquiredAt string
		metadata   string
	)
	if err := row.Scan(&ui.ID, &ui.ItemID, &acquiredAt, &metadata); err != nil {
		return nil, err
	}
	var err error
	if ui.AcquiredAt, err = parseTime(acquiredAt); err != nil {
		return nil, err
	}
	if ui.Metadata, err = decodeMap(metadata); err != nil {
		return nil, err
	}
	return &ui, nil
}
