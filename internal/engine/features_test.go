package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

func TestTodayGoalsFollowsWeeklySchedule(t *testing.T) {
	ctx := context.Background()
	svc, _ := onboarded(t)

	weekly, err := svc.CreateGoal(ctx, "Stretch", nil, WeeklySchedule(1))
	require.NoError(t, err)
	daily, err := svc.CreateGoal(ctx, "Water", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "daily", daily.Schedule["type"])

	due, err := svc.TodayGoals(ctx, "2025-01-06")
	require.NoError(t, err)
	require.Len(t, due, 2)

	due, err = svc.TodayGoals(ctx, "2025-01-07")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, daily.ID, due[0].Goal.ID)

	_, err = svc.CompleteGoal(ctx, *weekly, "2025-01-06")
	require.NoError(t, err)
	due, err = svc.TodayGoals(ctx, "2025-01-06")
	require.NoError(t, err)
	for _, d := range due {
		assert.Equal(t, d.Goal.ID == weekly.ID, d.Done, d.Goal.Title)
	}
}

func TestGoalLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := onboarded(t)

	_, err := svc.CreateGoal(ctx, "   ", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateGoal(ctx, "Walk", nil, storage.JSONMap{"type": "weekly", "daysOfWeek": []any{9}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	g, err := svc.CreateGoal(ctx, "Walk", nil, nil)
	require.NoError(t, err)

	title := "Walk outside"
	details := "after lunch"
	g, err = svc.UpdateGoal(ctx, g.ID, GoalChanges{Title: &title, Details: &details, Schedule: WeeklySchedule(2, 4)})
	require.NoError(t, err)
	assert.Equal(t, title, g.Title)
	require.NotNil(t, g.Details)
	assert.Equal(t, details, *g.Details)
	assert.Equal(t, "weekly: Tue Thu", DescribeSchedule(g.Schedule))

	_, err = svc.ArchiveGoal(ctx, g.ID)
	require.NoError(t, err)

	active, err := svc.ListGoals(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := svc.ListGoals(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsArchived)

	due, err := svc.TodayGoals(ctx, "2025-01-07")
	require.NoError(t, err)
	assert.Empty(t, due)

	_, err = svc.ArchiveGoal(ctx, "goal_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFriends(t *testing.T) {
	ctx := context.Background()
	svc, _ := onboarded(t)

	code, err := svc.FriendCode(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^SEAL-\d{6}$`, code)
	again, err := svc.FriendCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, code, again)

	_, err = svc.AddFriend(ctx, strings.ToLower(code), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	f, err := svc.AddFriend(ctx, " seal-000111 ", "")
	require.NoError(t, err)
	assert.Equal(t, "SEAL-000111", f.FriendCode)
	assert.Equal(t, storage.DefaultFriendName, f.DisplayName)

	dup, err := svc.AddFriend(ctx, "SEAL-000111", "Otto")
	require.NoError(t, err)
	assert.Equal(t, f.ID, dup.ID)

	friends, err := svc.ListFriends(ctx)
	require.NoError(t, err)
	assert.Len(t, friends, 1)

	_, err = svc.SendSupportNote(ctx, f.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SendSupportNote(ctx, f.ID, strings.Repeat("x", MaxTextLength+1))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SendSupportNote(ctx, "friend_missing", "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	sent, err := svc.SendSupportNote(ctx, f.ID, "You've got this")
	require.NoError(t, err)
	assert.Equal(t, storage.NoteOutgoing, sent.Direction)
	got, err := svc.ReceiveSupportNote(ctx, f.ID, "Thanks!")
	require.NoError(t, err)
	assert.Equal(t, storage.NoteIncoming, got.Direction)

	notes, err := svc.SupportNotes(ctx, f.ID, 0)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Thanks!", notes[0].Message)
}

func TestFriendsUnsupported(t *testing.T) {
	ctx := context.Background()
	base, _ := onboarded(t)
	svc := NewService(noFriendsStore{base.Store()})

	_, err := svc.FriendCode(ctx)
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = svc.AddFriend(ctx, "SEAL-000111", "")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = svc.ListFriends(ctx)
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = svc.SendSupportNote(ctx, "friend_x", "hi")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = svc.SupportNotes(ctx, "", 0)
	assert.ErrorIs(t, err, ErrUnsupported)

	// The rest of the service is unaffected.
	_, err = svc.RecordCheckin(ctx, storage.CheckinInput{Mood: 3})
	assert.NoError(t, err)
}

func TestMoodSeries(t *testing.T) {
	ctx := context.Background()
	svc, _ := onboarded(t)

	for _, in := range []storage.CheckinInput{
		{LocalDate: "2025-01-05", Mood: 2},
		{LocalDate: "2025-01-05", Mood: 5},
		{LocalDate: "2025-01-06", Mood: 3},
		{LocalDate: "2024-12-01", Mood: 1},
	} {
		_, err := svc.RecordCheckin(ctx, in)
		require.NoError(t, err)
	}

	series, err := svc.MoodSeries(ctx, 3, "")
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, "2025-01-04", series[0].Date)
	assert.Nil(t, series[0].Mood)
	assert.Equal(t, "2025-01-05", series[1].Date)
	require.NotNil(t, series[1].Mood)
	assert.Equal(t, 5, *series[1].Mood)
	require.NotNil(t, series[2].Mood)
	assert.Equal(t, 3, *series[2].Mood)

	_, err = svc.MoodSeries(ctx, 0, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSummary(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _ := newTestServiceOn(t, b)
			_, err := svc.Onboard(ctx, "")
			require.NoError(t, err)

			_, err = svc.RecordCheckin(ctx, storage.CheckinInput{Mood: 2})
			require.NoError(t, err)
			_, err = svc.RecordCheckin(ctx, storage.CheckinInput{Mood: 4})
			require.NoError(t, err)
			g, err := svc.CreateGoal(ctx, "Read", nil, nil)
			require.NoError(t, err)
			_, err = svc.CompleteGoal(ctx, *g, "")
			require.NoError(t, err)
			_, err = svc.RecordActivity(ctx, storage.ActivitySessionInput{ActivityType: storage.ActivitySound})
			require.NoError(t, err)

			sum, err := svc.Summary(ctx, 7, "")
			require.NoError(t, err)
			assert.Equal(t, "2024-12-31", sum.FromDate)
			assert.Equal(t, "2025-01-06", sum.ToDate)
			assert.Equal(t, 2, sum.Checkins)
			assert.Equal(t, 1, sum.GoalsCompleted)
			assert.Equal(t, 1, sum.Activities)
			assert.Equal(t, 9, sum.PetalsEarned)
			assert.InDelta(t, 3.0, sum.AverageMood, 0.001)
		})
	}
}

func TestSummaryCountsPetalsOnTheRecordDay(t *testing.T) {
	ctx := context.Background()
	svc, _ := onboarded(t)

	_, err := svc.RecordCheckin(ctx, storage.CheckinInput{LocalDate: "2024-12-20", Mood: 3})
	require.NoError(t, err)

	entries, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-12-20", entries[0].LocalDate)

	week, err := svc.Summary(ctx, 7, "")
	require.NoError(t, err)
	assert.Equal(t, 0, week.Checkins)
	assert.Equal(t, 0, week.PetalsEarned)

	back, err := svc.Summary(ctx, 1, "2024-12-20")
	require.NoError(t, err)
	assert.Equal(t, 1, back.Checkins)
	assert.Equal(t, 2, back.PetalsEarned)
}

func TestPauseMode(t *testing.T) {
	ctx := context.Background()
	svc, _ := onboarded(t)

	st, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.False(t, st.PauseMode)

	st, err = svc.SetPauseMode(ctx, true)
	require.NoError(t, err)
	assert.True(t, st.PauseMode)

	// Paused companions still earn rewards.
	checkins(t, svc, 1)
	status, err := svc.Status(ctx, "")
	require.NoError(t, err)
	assert.True(t, status.Settings.PauseMode)
	assert.Equal(t, 10, status.Companion.Charge)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := onboarded(t)
	_, err := svc.EnsureDailyQuests(ctx, "")
	require.NoError(t, err)
	_, err = svc.CreateGoal(ctx, "Water", nil, nil)
	require.NoError(t, err)

	st, err := svc.Status(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", st.Date)
	assert.Len(t, st.Quests, 3)
	assert.Len(t, st.Goals, 1)
	assert.False(t, st.CanBloom())

	checkins(t, svc, 6)
	st, err = svc.Status(ctx, "")
	require.NoError(t, err)
	assert.True(t, st.CanBloom())
}

func TestResetKeepsCatalog(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _ := newTestServiceOn(t, b)
			_, err := svc.Onboard(ctx, "")
			require.NoError(t, err)
			_, err = svc.EnsureDailyQuests(ctx, "")
			require.NoError(t, err)
			checkins(t, svc, 6)
			_, err = svc.PurchaseItem(ctx, "item_sticker_spark")
			require.NoError(t, err)
			_, err = svc.SetPauseMode(ctx, true)
			require.NoError(t, err)

			require.NoError(t, svc.Reset(ctx))

			_, err = svc.Companion(ctx)
			assert.ErrorIs(t, err, ErrNotFound)
			ledger, err := svc.History(ctx, 0)
			require.NoError(t, err)
			assert.Empty(t, ledger)
			quests, err := svc.Quests(ctx, "")
			require.NoError(t, err)
			assert.Empty(t, quests)
			inv, err := svc.Inventory(ctx)
			require.NoError(t, err)
			assert.Empty(t, inv)
			st, err := svc.Settings(ctx)
			require.NoError(t, err)
			assert.False(t, st.PauseMode)

			items, err := svc.Store().Repos().Shop.ListItems(ctx)
			require.NoError(t, err)
			assert.Len(t, items, 12)
			cards, err := svc.Store().Repos().Shop.ListStoryCards(ctx)
			require.NoError(t, err)
			assert.Len(t, cards, 3)
		})
	}
}
