// Package storagetest holds a behavioural suite that every storage backend must pass.
package storagetest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

// Factory returns a fresh, empty store. The store is closed by the suite.
type Factory func(t *testing.T) storage.Store

// Run executes the suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	cases := []struct {
		name string
		fn   func(t *testing.T, s storage.Store)
	}{
		{"Companion", testCompanion},
		{"CompanionBounds", testCompanionBounds},
		{"Goals", testGoals},
		{"CompletionIdempotent", testCompletionIdempotent},
		{"CheckinsAndSessions", testCheckinsAndSessions},
		{"Quests", testQuests},
		{"Ledger", testLedger},
		{"Shop", testShop},
		{"Bloom", testBloom},
		{"Friends", testFriends},
		{"Settings", testSettings},
		{"AtomicRollback", testAtomicRollback},
		{"AtomicCommit", testAtomicCommit},
		{"Reset", testReset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tc.fn(t, s)
		})
	}
}

// SeedItem adds a catalog item with the given category and price.
func SeedItem(t *testing.T, s storage.Store, id, category string, price int) storage.Item {
	t.Helper()
	it := storage.Item{
		ID:          id,
		SKU:         strings.ToUpper(id),
		Name:        id,
		Category:    category,
		PricePetals: price,
		Metadata:    storage.JSONMap{"rarity": "common"},
	}
	require.NoError(t, s.Repos().Shop.UpsertItem(context.Background(), it))
	return it
}

// SeedCard adds a story card.
func SeedCard(t *testing.T, s storage.Store, id string) storage.StoryCard {
	t.Helper()
	c := storage.StoryCard{
		ID:                 id,
		Title:              "Card " + id,
		Body:               "body",
		ChoiceAText:        "left",
		ChoiceBText:        "right",
		ChoiceATraitDeltas: storage.JSONMap{"calm": 1},
		ChoiceBTraitDeltas: storage.JSONMap{"grounded": 1},
	}
	require.NoError(t, s.Repos().Shop.UpsertStoryCard(context.Background(), c))
	return c
}

func testCompanion(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := s.Repos()

	got, err := r.Companion.GetCompanion(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	c, err := r.Companion.CreateCompanion(ctx, storage.CompanionInput{PaletteID: "sky"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.ID, "companion_"))

	charge, petals := 40, 7
	updated, err := r.Companion.UpdateCompanion(ctx, c.ID, storage.CompanionUpdate{
		Charge:          &charge,
		PetalsBalance:   &petals,
		Traits:          storage.JSONMap{"calm": 2},
		EquippedItemIDs: []string{"item_a"},
	})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Charge)
	assert.Equal(t, "sky", updated.PaletteID)

	got, err = r.Companion.GetCompanion(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 40, got.Charge)
	assert.Equal(t, 7, got.PetalsBalance)
	assert.EqualValues(t, 2, got.Traits["calm"])
	assert.Equal(t, []string{"item_a"}, got.EquippedItemIDs)

	_, err = r.Companion.UpdateCompanion(ctx, "companion_missing", storage.CompanionUpdate{Charge: &charge})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testCompanionBounds(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := s.Repos()
	c, err := r.Companion.CreateCompanion(ctx, storage.CompanionInput{PaletteID: "coral", PetalsBalance: 3})
	require.NoError(t, err)

	negative := -1
	_, err = r.Companion.UpdateCompanion(ctx, c.ID, storage.CompanionUpdate{PetalsBalance: &negative})
	assert.ErrorIs(t, err, storage.ErrNegativeBalance)

	over := 101
	_, err = r.Companion.UpdateCompanion(ctx, c.ID, storage.CompanionUpdate{Charge: &over})
	assert.ErrorIs(t, err, storage.ErrChargeRange)

	got, err := r.Companion.GetCompanion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.PetalsBalance)
	assert.Equal(t, 0, got.Charge)
}

func testGoals(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := s.Repos()

	details := "ten minutes"
	walk, err := r.Goals.CreateGoal(ctx, storage.GoalInput{Title: "Walk", Details: &details, Schedule: storage.JSONMap{"type": "daily"}})
	require.NoError(t, err)
	stretch, err := r.Goals.CreateGoal(ctx, storage.GoalInput{Title: "Stretch"})
	require.NoError(t, err)

	archived := true
	_, err = r.Goals.UpdateGoal(ctx, stretch.ID, storage.GoalUpdate{IsArchived: &archived})
	require.NoError(t, err)

	active, err := r.Goals.ListGoals(ctx, storage.GoalFilter{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, walk.ID, active[0].ID)
	require.NotNil(t, active[0].Details)
	assert.Equal(t, "ten minutes", *active[0].Details)
	assert.Equal(t, "daily", active[0].Schedule["type"])

	all, err := r.Goals.ListGoals(ctx, storage.GoalFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := r.Goals.GetGoal(ctx, "goal_missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testCompletionIdempotent(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := s.Repos()
	g, err := r.Goals.CreateGoal(ctx, storage.GoalInput{Title: "Water"})
	require.NoError(t, err)

	first, created, err := r.Goals.CreateCompletion(ctx, storage.GoalCompletionInput{GoalID: g.ID, LocalDate: "2025-01-01"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := r.Goals.CreateCompletion(ctx, storage.GoalCompletionInput{GoalID: g.ID, LocalDate: "2025-01-01"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	_, created, err = r.Goals.CreateCompletion(ctx, storage.GoalCompletionInput{GoalID: g.ID, LocalDate: "2025-01-02"})
	require.NoError(t, err)
	assert.True(t, created)

	day, err := r.Goals.ListCompletions(ctx, storage.CompletionFilter{LocalDate: "2025-01-01"})
	require.NoError(t, err)
	assert.Len(t, day, 1)

	window, err := r.Goals.ListCompletions(ctx, storage.CompletionFilter{FromDate: "2025-01-01", ToDate: "2025-01-02", GoalID: g.ID})
	require.NoError(t, err)
	assert.Len(t, window, 2)
}

func testCheckinsAndSessions(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := s.Repos()

	note := "sunny"
	_, err := r.Checkins.CreateCheckin(ctx, storage.CheckinInput{LocalDate: "2025-01-01", Mood: 2})
	require.NoError(t, err)
	latest, err := r.Checkins.CreateCheckin(ctx, storage.CheckinInput{LocalDate: "2025-01-02", Mood: 4, Note: &note})
	require.NoError(t, err)

	list, err := r.Checkins.ListCheckins(ctx, storage.DateRange{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, latest.ID, list[0].ID)
	require.NotNil(t, list[0].Note)
	assert.Equal(t, "sunny", *list[0].Note)

	limited, err := r.Checkins.ListCheckins(ctx, storage.DateRange{FromDate: "2025-01-01", ToDate: "2025-01-01"})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, 2, limited[0].Mood)

	_, err = r.Checkins.CreateCheckin(ctx, storage.CheckinInput{LocalDate: "2025-01-02", Mood: 9})
	assert.Error(t, err)

	dur := 120
	sess, err := r.Activity.CreateSession(ctx, storage.ActivitySessionInput{
		LocalDate:       "2025-01-02",
		ActivityType:    storage.ActivityBreathe,
		DurationSeconds: &dur,
		Metadata:        storage.JSONMap{"pattern": "box"},
	})
	require.NoError(t, err)

	sessions, err := r.Activity.ListSessions(ctx, storage.DateRange{Limit: 5})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, sess.ID, sessions[0].ID)
	require.NotNil(t, sessions[0].DurationSeconds)
	assert.Equal(t, 120, *sessions[0].DurationSeconds)
	assert.Equal(t, "box", sessions[0].Metadata["pattern"])

	_, err = r.Activity.CreateSession(ctx, storage.ActivitySessionInput{LocalDate: "2025-01-02", ActivityType: "juggle"})
	assert.Error(t, err)
}

func testQuests(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := s.Repos()

	q, err := r.Quests.CreateQuest(ctx, storage.QuestInput{LocalDate: "2025-01-01", QuestType: "checkin_1", Target: 1, RewardPetals: 10})
	require.NoError(t, err)
	_, err = r.Quests.CreateQuest(ctx, storage.QuestInput{LocalDate: "2025-01-01", QuestType: "goals_3", Target: 3, RewardPetals: 10})
	require.NoError(t, err)
	_, err = r.Quests.CreateQuest(ctx, storage.QuestInput{LocalDate: "2025-01-01", QuestType: "checkin_1", Target: 1, RewardPetals: 10})
	assert.Error(t, err, "quest type must be unique per day")

	list, err := r.Quests.ListQuests(ctx, storage.QuestFilter{LocalDate: "2025-01-01"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "checkin_1", list[0].QuestType)
	assert.Equal(t, "goals_3", list[1].QuestType)

	progress, claimed := 1, true
	claimedAt := time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)
	updated, err := r.Quests.UpdateQuest(ctx, q.ID, storage.QuestUpdate{Progress: &progress, IsClaimed: &claimed, ClaimedAt: &claimedAt})
	require.NoError(t, err)
	assert.True(t, updated.IsClaimed)

	got, err := r.Quests.GetQuest(ctx, q.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Progress)
	require.NotNil(t, got.ClaimedAt)
	assert.True(t, claimedAt.Equal(*got.ClaimedAt))

	other, err := r.Quests.ListQuests(ctx, storage.QuestFilter{LocalDate: "2025-01-02"})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func testLedger(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := s.Repos()
	_, err := r.Rewards.AddLedgerEntry(ctx, storage.LedgerEntryInput{LocalDate: "2025-01-06", EventType: "checkin", SourceType: "checkin", SourceID: "checkin_1", ChargeDelta: 10, PetalsDelta: 2})
	require.NoError(t, err)
	last, err := r.Rewards.AddLedgerEntry(ctx, storage.LedgerEntryInput{EventType: "purchase", SourceType: "item", SourceID: "item_a", PetalsDelta: -12})
	require.NoError(t, err)

	entries, err := r.Rewards.ListLedgerEntries(ctx, storage.LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, last.ID, entries[0].ID)
	assert.Equal(t, -12, entries[0].PetalsDelta)
	assert.Equal(t, "checkin_1", entries[1].SourceID)
	assert.Equal(t, "2025-01-06", entries[1].LocalDate)

	one, err := r.Rewards.ListLedgerEntries(ctx, storage.LedgerFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func testShop(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := s.Repos()
	SeedItem(t, s, "item_b", "outfit", 20)
	SeedItem(t, s, "item_a", storage.CategorySticker, 12)
	SeedCard(t, s, "card_z")
	SeedCard(t, s, "card_a")

	items, err := r.Shop.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "item_a", items[0].ID)

	it, err := r.Shop.GetItem(ctx, "item_b")
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, 20, it.PricePetals)
	assert.Equal(t, "common", it.Metadata["rarity"])

	missing, err := r.Shop.GetItem(ctx, "item_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	cards, err := r.Shop.ListStoryCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "card_a", cards[0].ID)
	assert.EqualValues(t, 1, cards[0].ChoiceATraitDeltas["calm"])

	first, err := r.Shop.AddUserItem(ctx, "item_a", storage.JSONMap{"source": "shop"})
	require.NoError(t, err)
	second, err := r.Shop.AddUserItem(ctx, "item_a", storage.JSONMap{"source": "bloom"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "shop", second.Metadata["source"])

	inv, err := r.Shop.ListInventory(ctx)
	require.NoError(t, err)
	assert.Len(t, inv, 1)

	// Re-seeding updates in place.
	SeedItem(t, s, "item_b", "outfit", 25)
	it, err = r.Shop.GetItem(ctx, "item_b")
	require.NoError(t, err)
	assert.Equal(t, 25, it.PricePetals)
}

func testBloom(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := s.Repos()
	SeedCard(t, s, "card_a")
	SeedItem(t, s, "item_sticker", storage.CategorySticker, 12)

	started := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	run, err := r.Bloom.CreateBloomRun(ctx, storage.BloomRunInput{LocalDate: "2025-01-01", StoryCardID: "card_a", StartedAt: started})
	require.NoError(t, err)
	assert.False(t, run.IsCompleted)

	inst, err := r.Bloom.CreateStoryCardInstance(ctx, storage.StoryCardInstanceInput{StoryCardID: "card_a", BloomRunID: run.ID})
	require.NoError(t, err)

	done, choice, petals, sticker := true, storage.ChoiceB, 12, "item_sticker"
	completedAt := started.Add(time.Minute)
	_, err = r.Bloom.UpdateBloomRun(ctx, run.ID, storage.BloomRunUpdate{
		CompletedAt: &completedAt, IsCompleted: &done, Choice: &choice, PetalsAwarded: &petals, StickerItemID: &sticker,
	})
	require.NoError(t, err)

	reflection := "felt calm"
	_, err = r.Bloom.UpdateStoryCardInstance(ctx, inst.ID, storage.StoryCardInstanceUpdate{Choice: &choice, ReflectionText: &reflection})
	require.NoError(t, err)

	got, err := r.Bloom.GetBloomRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, storage.ChoiceB, got.Choice)
	assert.Equal(t, 12, got.PetalsAwarded)
	assert.Equal(t, "item_sticker", got.StickerItemID)

	gotInst, err := r.Bloom.GetStoryCardInstance(ctx, inst.ID)
	require.NoError(t, err)
	require.NotNil(t, gotInst)
	assert.Equal(t, run.ID, gotInst.BloomRunID)
	require.NotNil(t, gotInst.ReflectionText)
	assert.Equal(t, "felt calm", *gotInst.ReflectionText)

	later, err := r.Bloom.CreateBloomRun(ctx, storage.BloomRunInput{LocalDate: "2025-01-02", StoryCardID: "card_a", StartedAt: started.Add(24 * time.Hour)})
	require.NoError(t, err)
	runs, err := r.Bloom.ListBloomRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, later.ID, runs[0].ID)

	instances, err := r.Bloom.ListStoryCardInstances(ctx)
	require.NoError(t, err)
	assert.Len(t, instances, 1)

	_, err = r.Bloom.UpdateBloomRun(ctx, "bloom_missing", storage.BloomRunUpdate{IsCompleted: &done})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testFriends(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := s.Repos()
	require.NotNil(t, r.Friends)

	code, err := r.Friends.GetFriendCode(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^SEAL-\d{6}$`, code)
	again, err := r.Friends.GetFriendCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, code, again)

	f, err := r.Friends.AddFriend(ctx, storage.FriendInput{FriendCode: "  seal-123456 ", DisplayName: " "})
	require.NoError(t, err)
	assert.Equal(t, "SEAL-123456", f.FriendCode)
	assert.Equal(t, storage.DefaultFriendName, f.DisplayName)

	dup, err := r.Friends.AddFriend(ctx, storage.FriendInput{FriendCode: "SEAL-123456", DisplayName: "Pip"})
	require.NoError(t, err)
	assert.Equal(t, f.ID, dup.ID)

	friends, err := r.Friends.ListFriends(ctx)
	require.NoError(t, err)
	assert.Len(t, friends, 1)

	_, err = r.Friends.AddSupportNote(ctx, storage.SupportNoteInput{FriendID: f.ID, Direction: storage.NoteOutgoing, Message: "you got this"})
	require.NoError(t, err)
	last, err := r.Friends.AddSupportNote(ctx, storage.SupportNoteInput{FriendID: f.ID, Direction: storage.NoteIncoming, Message: "thanks"})
	require.NoError(t, err)

	notes, err := r.Friends.ListSupportNotes(ctx, storage.SupportNoteFilter{FriendID: f.ID})
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, last.ID, notes[0].ID)

	got, err := r.Friends.GetFriend(ctx, f.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "SEAL-123456", got.FriendCode)
}

func testSettings(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := s.Repos()
	st, err := r.Settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.False(t, st.PauseMode)

	on := true
	st, err = r.Settings.UpdateSettings(ctx, storage.SettingsUpdate{PauseMode: &on})
	require.NoError(t, err)
	assert.True(t, st.PauseMode)

	st, err = r.Settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, st.PauseMode)
}

var errBoom = errors.New("boom")

func testAtomicRollback(t *testing.T, s storage.Store) {
	ctx := context.Background()
	c, err := s.Repos().Companion.CreateCompanion(ctx, storage.CompanionInput{PaletteID: "mint"})
	require.NoError(t, err)

	err = s.Atomic(ctx, func(r storage.Repos) error {
		charge := 50
		if _, err := r.Companion.UpdateCompanion(ctx, c.ID, storage.CompanionUpdate{Charge: &charge}); err != nil {
			return err
		}
		if _, err := r.Checkins.CreateCheckin(ctx, storage.CheckinInput{LocalDate: "2025-01-01", Mood: 3}); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	got, err := s.Repos().Companion.GetCompanion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Charge)

	checkins, err := s.Repos().Checkins.ListCheckins(ctx, storage.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, checkins)
}

func testAtomicCommit(t *testing.T, s storage.Store) {
	ctx := context.Background()
	c, err := s.Repos().Companion.CreateCompanion(ctx, storage.CompanionInput{PaletteID: "dusk"})
	require.NoError(t, err)

	err = s.Atomic(ctx, func(r storage.Repos) error {
		petals := 30
		if _, err := r.Companion.UpdateCompanion(ctx, c.ID, storage.CompanionUpdate{PetalsBalance: &petals}); err != nil {
			return err
		}
		// Reads inside the transaction observe its own writes.
		got, err := r.Companion.GetCompanion(ctx)
		if err != nil {
			return err
		}
		if got.PetalsBalance != 30 {
			return errors.New("write not visible inside transaction")
		}
		_, err = r.Rewards.AddLedgerEntry(ctx, storage.LedgerEntryInput{EventType: "checkin", PetalsDelta: 30})
		return err
	})
	require.NoError(t, err)

	got, err := s.Repos().Companion.GetCompanion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, got.PetalsBalance)
	entries, err := s.Repos().Rewards.ListLedgerEntries(ctx, storage.LedgerFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func testReset(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := s.Repos()
	SeedItem(t, s, "item_a", storage.CategorySticker, 12)
	SeedCard(t, s, "card_a")
	_, err := r.Companion.CreateCompanion(ctx, storage.CompanionInput{PaletteID: "sky"})
	require.NoError(t, err)
	_, err = r.Shop.AddUserItem(ctx, "item_a", nil)
	require.NoError(t, err)
	_, err = r.Checkins.CreateCheckin(ctx, storage.CheckinInput{LocalDate: "2025-01-01", Mood: 3})
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))

	c, err := r.Companion.GetCompanion(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)
	inv, err := r.Shop.ListInventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, inv)
	checkins, err := r.Checkins.ListCheckins(ctx, storage.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, checkins)

	items, err := r.Shop.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	cards, err := r.Shop.ListStoryCards(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}
