package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wabdoteth/sappy-care/internal/catalog"
	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/storage/filestore"
	"github.com/wabdoteth/sappy-care/internal/storage/sqlite"
)

// monday is 2025-01-06 09:00 UTC.
var monday = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

type backend struct {
	name string
	open func(t *testing.T) storage.Store
}

var backends = []backend{
	{name: "file", open: func(t *testing.T) storage.Store {
		return filestore.OpenMemory()
	}},
	{name: "sqlite", open: func(t *testing.T) storage.Store {
		s, err := sqlite.OpenInMemory(context.Background())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}},
}

func seededStore(t *testing.T, open func(t *testing.T) storage.Store) storage.Store {
	t.Helper()
	s := open(t)
	cat, err := catalog.Default()
	require.NoError(t, err)
	require.NoError(t, cat.Seed(context.Background(), s.Repos().Shop))
	return s
}

func newTestService(t *testing.T, opts ...Option) (*Service, *FakeClock) {
	t.Helper()
	return newTestServiceOn(t, backends[0], opts...)
}

func newTestServiceOn(t *testing.T, b backend, opts ...Option) (*Service, *FakeClock) {
	t.Helper()
	clock := NewFakeClock(monday)
	opts = append([]Option{WithClock(clock), WithRand(&scriptedRand{})}, opts...)
	return NewService(seededStore(t, b.open), opts...), clock
}

func onboarded(t *testing.T, opts ...Option) (*Service, *FakeClock) {
	t.Helper()
	svc, clock := newTestService(t, opts...)
	_, err := svc.Onboard(context.Background(), "")
	require.NoError(t, err)
	return svc, clock
}

func checkins(t *testing.T, svc *Service, n int) {
	t.Helper()
	for range n {
		_, err := svc.RecordCheckin(context.Background(), storage.CheckinInput{Mood: 3})
		require.NoError(t, err)
	}
}

func questOfType(t *testing.T, quests []storage.Quest, questType string) storage.Quest {
	t.Helper()
	for _, q := range quests {
		if q.QuestType == questType {
			return q
		}
	}
	t.Fatalf("no %s quest in %v", questType, quests)
	return storage.Quest{}
}

// scriptedRand replays fixed values. Once exhausted it never drops a sticker.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	i := r.ints[0]
	r.ints = r.ints[1:]
	return i % n
}

var errBoom = errors.New("boom")

type failingLedger struct{ storage.RewardRepo }

func (failingLedger) AddLedgerEntry(context.Context, storage.LedgerEntryInput) (*storage.RewardLedgerEntry, error) {
	return nil, errBoom
}

// failingLedgerStore breaks ledger writes inside transactions.
type failingLedgerStore struct{ storage.Store }

func (s failingLedgerStore) Atomic(ctx context.Context, fn func(storage.Repos) error) error {
	return s.Store.Atomic(ctx, func(r storage.Repos) error {
		r.Rewards = failingLedger{r.Rewards}
		return fn(r)
	})
}

type vanishingCompanion struct{ storage.CompanionRepo }

func (v vanishingCompanion) UpdateCompanion(ctx context.Context, _ string, up storage.CompanionUpdate) (*storage.Companion, error) {
	return v.CompanionRepo.UpdateCompanion(ctx, "companion_gone", up)
}

// vanishingCompanionStore updates a companion row that no longer exists.
type vanishingCompanionStore struct{ storage.Store }

func (s vanishingCompanionStore) Atomic(ctx context.Context, fn func(storage.Repos) error) error {
	return s.Store.Atomic(ctx, func(r storage.Repos) error {
		r.Companion = vanishingCompanion{r.Companion}
		return fn(r)
	})
}

// noFriendsStore has no friends capability.
type noFriendsStore struct{ storage.Store }

func (s noFriendsStore) Repos() storage.Repos {
	r := s.Store.Repos()
	r.Friends = nil
	return r
}

func (s noFriendsStore) Atomic(ctx context.Context, fn func(storage.Repos) error) error {
	return s.Store.Atomic(ctx, func(r storage.Repos) error {
		r.Friends = nil
		return fn(r)
	})
}
