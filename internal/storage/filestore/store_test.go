package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		s, err := Open(filepath.Join(t.TempDir(), "sappy.json"))
		require.NoError(t, err)
		return s
	})
}

func TestStoreContractInMemory(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return OpenMemory()
	})
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nested", "sappy.json"))
	require.NoError(t, err)
	c, err := s.Repos().Companion.GetCompanion(context.Background())
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sappy.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Open(path)
	assert.Error(t, err)
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sappy.json")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Repos().Companion.CreateCompanion(ctx, storage.CompanionInput{PaletteID: "mint", Traits: storage.JSONMap{"calm": 3}})
	require.NoError(t, err)

	s, err = Open(path)
	require.NoError(t, err)
	c, err := s.Repos().Companion.GetCompanion(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "mint", c.PaletteID)
	assert.EqualValues(t, 3, c.Traits["calm"])
}

func TestFailedAtomicLeavesFileUntouched(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sappy.json")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Repos().Checkins.CreateCheckin(ctx, storage.CheckinInput{LocalDate: "2025-01-01", Mood: 3})
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = s.Atomic(ctx, func(r storage.Repos) error {
		if _, err := r.Checkins.CreateCheckin(ctx, storage.CheckinInput{LocalDate: "2025-01-02", Mood: 4}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := OpenMemory()
	c, err := s.Repos().Companion.CreateCompanion(ctx, storage.CompanionInput{PaletteID: "sky", Traits: storage.JSONMap{"calm": 1}})
	require.NoError(t, err)
	c.Traits["calm"] = 99

	got, err := s.Repos().Companion.GetCompanion(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Traits["calm"])
}

func TestSecondHandleSeesOtherWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sappy.json")

	board, err := Open(path)
	require.NoError(t, err)
	cli, err := Open(path)
	require.NoError(t, err)

	_, err = cli.Repos().Companion.CreateCompanion(ctx, storage.CompanionInput{PaletteID: "blush"})
	require.NoError(t, err)

	c, err := board.Repos().Companion.GetCompanion(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "blush", c.PaletteID)
}

func TestWritesFromTwoHandlesAreKept(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sappy.json")

	board, err := Open(path)
	require.NoError(t, err)
	cli, err := Open(path)
	require.NoError(t, err)

	_, err = cli.Repos().Companion.CreateCompanion(ctx, storage.CompanionInput{PaletteID: "mint"})
	require.NoError(t, err)
	_, err = cli.Repos().Rewards.AddLedgerEntry(ctx, storage.LedgerEntryInput{EventType: "checkin", PetalsDelta: 2})
	require.NoError(t, err)

	on := true
	_, err = board.Repos().Settings.UpdateSettings(ctx, storage.SettingsUpdate{PauseMode: &on})
	require.NoError(t, err)
	err = board.Atomic(ctx, func(r storage.Repos) error {
		_, err := r.Rewards.AddLedgerEntry(ctx, storage.LedgerEntryInput{EventType: "activity_complete", PetalsDelta: 2})
		return err
	})
	require.NoError(t, err)

	reopened, err := Open(path)
	require.NoError(t, err)
	r := reopened.Repos()
	c, err := r.Companion.GetCompanion(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "mint", c.PaletteID)
	settings, err := r.Settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.PauseMode)
	entries, err := r.Rewards.ListLedgerEntries(ctx, storage.LedgerFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// and the first handle picks up the second one's writes in turn
	cs, err := cli.Repos().Settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, cs.PauseMode)
}
