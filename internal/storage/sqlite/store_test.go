package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/storage/storagetest"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "sappy.db"))
	require.NoError(t, err)
	return s
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, newTestStore)
}

func TestStoreContractInMemory(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		s, err := OpenInMemory(context.Background())
		require.NoError(t, err)
		return s
	})
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "sappy.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	assert.Equal(t, path, s.Path())
}

func TestMigrateIsRepeatable(t *testing.T) {
	ctx := context.Background()
	s, err := OpenInMemory(ctx)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, Migrate(ctx, s.DB()))

	tables := []string{"companion", "goals", "goal_completions", "checkins", "activity_sessions", "quests",
		"reward_ledger", "items", "user_items", "story_cards", "bloom_runs", "story_card_instances",
		"friends", "support_notes", "meta"}
	for _, table := range tables {
		var name string
		err := s.DB().QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}
}

func TestPetalsCheckConstraint(t *testing.T) {
	ctx := context.Background()
	s, err := OpenInMemory(ctx)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	c, err := s.Repos().Companion.CreateCompanion(ctx, storage.CompanionInput{PaletteID: "sky"})
	require.NoError(t, err)

	// Bypass the repository to hit the table constraint directly.
	_, err = s.DB().ExecContext(ctx, `UPDATE companion SET petals_balance = -5 WHERE id = ?`, c.ID)
	assert.Error(t, err)
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sappy.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.Repos().Companion.CreateCompanion(ctx, storage.CompanionInput{PaletteID: "coral", PetalsBalance: 9})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	c, err := s.Repos().Companion.GetCompanion(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 9, c.PetalsBalance)
	assert.Equal(t, "coral", c.PaletteID)
}
