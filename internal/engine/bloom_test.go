package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/storage/filestore"
)

func TestBloomRoundTrip(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _ := newTestServiceOn(t, b, WithRand(&scriptedRand{floats: []float64{0.01}, ints: []int{1}}))
			_, err := svc.Onboard(ctx, "")
			require.NoError(t, err)
			checkins(t, svc, 6)

			start, err := svc.StartBloom(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, "2025-01-06", start.Run.LocalDate)
			assert.False(t, start.Run.IsCompleted)
			assert.Equal(t, start.Run.ID, start.Instance.BloomRunID)

			cards, err := svc.Store().Repos().Shop.ListStoryCards(ctx)
			require.NoError(t, err)
			want, err := PickStoryCard(cards, "2025-01-06")
			require.NoError(t, err)
			assert.Equal(t, want.ID, start.Card.ID)
			assert.Equal(t, want.ID, start.Run.StoryCardID)

			pending, err := svc.PendingBloom(ctx)
			require.NoError(t, err)
			require.NotNil(t, pending)
			assert.Equal(t, start.Run.ID, pending.Run.ID)

			reflection := "felt lighter"
			res, err := svc.CompleteBloom(ctx, CompleteBloomInput{
				BloomRunID:      start.Run.ID,
				StoryInstanceID: start.Instance.ID,
				Choice:          storage.ChoiceA,
				ReflectionText:  &reflection,
			})
			require.NoError(t, err)
			assert.Equal(t, 12, res.PetalsAwarded)
			assert.Equal(t, "item_sticker_wave", res.StickerItemID)
			assert.Equal(t, 0, res.Companion.Charge)
			assert.Equal(t, 24, res.Companion.PetalsBalance)
			for key, delta := range want.TraitDeltas(storage.ChoiceA) {
				wantN, ok := toNumber(delta)
				require.True(t, ok)
				gotN, ok := toNumber(res.Companion.Traits[key])
				require.True(t, ok, key)
				assert.Equal(t, wantN, gotN, key)
			}

			run, err := svc.Store().Repos().Bloom.GetBloomRun(ctx, start.Run.ID)
			require.NoError(t, err)
			assert.True(t, run.IsCompleted)
			assert.NotNil(t, run.CompletedAt)
			assert.Equal(t, storage.ChoiceA, run.Choice)
			assert.Equal(t, 12, run.PetalsAwarded)
			assert.Equal(t, "item_sticker_wave", run.StickerItemID)

			inst, err := svc.Store().Repos().Bloom.GetStoryCardInstance(ctx, start.Instance.ID)
			require.NoError(t, err)
			assert.Equal(t, storage.ChoiceA, inst.Choice)
			require.NotNil(t, inst.ReflectionText)
			assert.Equal(t, reflection, *inst.ReflectionText)

			inv, err := svc.Inventory(ctx)
			require.NoError(t, err)
			require.Len(t, inv, 1)
			assert.Equal(t, "item_sticker_wave", inv[0].UserItem.ItemID)
			assert.Equal(t, "bloom", inv[0].UserItem.Metadata["source"])

			ledger, err := svc.History(ctx, 1)
			require.NoError(t, err)
			require.Len(t, ledger, 1)
			assert.Equal(t, "bloom_complete", ledger[0].EventType)
			assert.Equal(t, "bloom", ledger[0].SourceType)
			assert.Equal(t, start.Run.ID, ledger[0].SourceID)
			assert.Equal(t, 0, ledger[0].ChargeDelta)
			assert.Equal(t, 12, ledger[0].PetalsDelta)

			_, err = svc.CompleteBloom(ctx, CompleteBloomInput{
				BloomRunID:      start.Run.ID,
				StoryInstanceID: start.Instance.ID,
				Choice:          storage.ChoiceB,
			})
			assert.ErrorIs(t, err, ErrBloomAlreadyCompleted)

			album, err := svc.BloomHistory(ctx)
			require.NoError(t, err)
			require.Len(t, album, 1)
			assert.Equal(t, want.Title, album[0].CardTitle)

			pending, err = svc.PendingBloom(ctx)
			require.NoError(t, err)
			assert.Nil(t, pending)
		})
	}
}

func TestBloomWithoutStickerDrop(t *testing.T) {
	ctx := context.Background()
	svc, _ := onboarded(t, WithRand(&scriptedRand{floats: []float64{DefaultStickerDropRate}}))
	checkins(t, svc, 7)

	start, err := svc.StartBloom(ctx, "")
	require.NoError(t, err)
	res, err := svc.CompleteBloom(ctx, CompleteBloomInput{
		BloomRunID:      start.Run.ID,
		StoryInstanceID: start.Instance.ID,
		Choice:          storage.ChoiceB,
	})
	require.NoError(t, err)
	assert.Empty(t, res.StickerItemID)
	assert.Equal(t, 0, res.Companion.Charge)
	assert.Equal(t, 14+12, res.Companion.PetalsBalance)

	inv, err := svc.Inventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, inv)
}

func TestStickerDropRateZeroNeverDrops(t *testing.T) {
	ctx := context.Background()
	svc, _ := onboarded(t, WithStickerDropRate(0), WithRand(&scriptedRand{floats: []float64{0}}))
	checkins(t, svc, 6)

	start, err := svc.StartBloom(ctx, "")
	require.NoError(t, err)
	res, err := svc.CompleteBloom(ctx, CompleteBloomInput{
		BloomRunID:      start.Run.ID,
		StoryInstanceID: start.Instance.ID,
		Choice:          storage.ChoiceA,
	})
	require.NoError(t, err)
	assert.Empty(t, res.StickerItemID)
}

func TestStartBloomNeedsCharge(t *testing.T) {
	ctx := context.Background()
	svc, _ := onboarded(t)
	checkins(t, svc, 5)

	_, err := svc.StartBloom(ctx, "")
	require.ErrorIs(t, err, ErrInsufficientCharge)
	var cerr ChargeError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, ChargeError{Charge: 50, Required: BloomThreshold}, cerr)

	runs, err := svc.Store().Repos().Bloom.ListBloomRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStartBloomWithoutCards(t *testing.T) {
	ctx := context.Background()
	svc := NewService(filestore.OpenMemory(), WithClock(NewFakeClock(monday)))
	_, err := svc.Onboard(ctx, "")
	require.NoError(t, err)
	checkins(t, svc, 6)

	_, err = svc.StartBloom(ctx, "")
	assert.ErrorIs(t, err, ErrNoStoryCards)
}

func TestStartBloomIsDeterministicPerDate(t *testing.T) {
	ctx := context.Background()
	svc, _ := onboarded(t)
	checkins(t, svc, 6)

	first, err := svc.StartBloom(ctx, "2025-02-14")
	require.NoError(t, err)
	second, err := svc.StartBloom(ctx, "2025-02-14")
	require.NoError(t, err)
	assert.Equal(t, first.Card.ID, second.Card.ID)
	assert.NotEqual(t, first.Run.ID, second.Run.ID)
}

func TestCompleteBloomValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := onboarded(t)
	checkins(t, svc, 6)

	one, err := svc.StartBloom(ctx, "")
	require.NoError(t, err)
	two, err := svc.StartBloom(ctx, "")
	require.NoError(t, err)

	_, err = svc.CompleteBloom(ctx, CompleteBloomInput{BloomRunID: one.Run.ID, StoryInstanceID: one.Instance.ID, Choice: "c"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CompleteBloom(ctx, CompleteBloomInput{BloomRunID: "bloom_missing", StoryInstanceID: one.Instance.ID, Choice: storage.ChoiceA})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CompleteBloom(ctx, CompleteBloomInput{BloomRunID: one.Run.ID, StoryInstanceID: "story_missing", Choice: storage.ChoiceA})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CompleteBloom(ctx, CompleteBloomInput{BloomRunID: one.Run.ID, StoryInstanceID: two.Instance.ID, Choice: storage.ChoiceA})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Nothing was paid out by the failed attempts.
	c, err := svc.Companion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, c.Charge)
	assert.Equal(t, 12, c.PetalsBalance)
}
