package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabdoteth/sappy-care/internal/engine"
	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/storage/filestore"
)

type countingSeeder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingSeeder) EnsureDailyQuests(context.Context, string) ([]storage.Quest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil, c.err
}

func (c *countingSeeder) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New(&countingSeeder{}, "not a cron", nil)
	assert.Error(t, err)
}

func TestStartSeedsImmediately(t *testing.T) {
	seeder := &countingSeeder{}
	s, err := New(seeder, "5 0 * * *", nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, 1, seeder.Calls())
	assert.False(t, s.Next().IsZero())
}

func TestStartReportsSeedFailure(t *testing.T) {
	seeder := &countingSeeder{err: errors.New("disk full")}
	s, err := New(seeder, "@daily", nil)
	require.NoError(t, err)

	err = s.Start(context.Background())
	assert.ErrorContains(t, err, "disk full")
}

func TestCronRunSeeds(t *testing.T) {
	seeder := &countingSeeder{}
	s, err := New(seeder, "@every 1s", nil)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return seeder.Calls() >= 2 }, 5*time.Second, 50*time.Millisecond)
}

func TestSeedsRealService(t *testing.T) {
	ctx := context.Background()
	svc := engine.NewService(filestore.OpenMemory(), engine.WithClock(engine.NewFakeClock(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC))))

	s, err := New(svc, "@daily", nil)
	require.NoError(t, err)
	require.NoError(t, s.SeedNow(ctx))
	require.NoError(t, s.SeedNow(ctx))

	quests, err := svc.Quests(ctx, "2025-01-06")
	require.NoError(t, err)
	assert.Len(t, quests, 3)
}
