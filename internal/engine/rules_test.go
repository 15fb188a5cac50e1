package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

func TestComputeReward(t *testing.T) {
	tests := []struct {
		ev   RewardEvent
		want Reward
	}{
		{CheckinEvent{}, Reward{ChargeDelta: 10, PetalsDelta: 2}},
		{GoalCompleteEvent{}, Reward{ChargeDelta: 8, PetalsDelta: 3}},
		{ActivityCompleteEvent{ActivityType: "breathe"}, Reward{ChargeDelta: 6, PetalsDelta: 2}},
		{ActivityCompleteEvent{ActivityType: "first_aid"}, Reward{ChargeDelta: 6, PetalsDelta: 2}},
		{QuestClaimEvent{}, Reward{PetalsDelta: 10}},
		{BloomCompleteEvent{}, Reward{PetalsDelta: 12}},
	}
	for _, tt := range tests {
		t.Run(string(tt.ev.Kind()), func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeReward(tt.ev))
		})
	}
}

type bogusEvent struct{}

func (bogusEvent) Kind() EventKind  { return "bogus" }
func (bogusEvent) SourceID() string { return "" }
func (bogusEvent) rewardEvent()     {}

func TestComputeRewardPanicsOnUnknownEvent(t *testing.T) {
	assert.Panics(t, func() { ComputeReward(bogusEvent{}) })
}

func TestClampCharge(t *testing.T) {
	assert.Equal(t, 0, ClampCharge(-5))
	assert.Equal(t, 42, ClampCharge(42))
	assert.Equal(t, 100, ClampCharge(100))
	assert.Equal(t, 100, ClampCharge(104))
}

func TestProgressDelta(t *testing.T) {
	assert.Equal(t, 1, ProgressDelta(QuestCheckin1, CheckinEvent{}))
	assert.Equal(t, 0, ProgressDelta(QuestCheckin1, GoalCompleteEvent{}))
	assert.Equal(t, 1, ProgressDelta(QuestGoals3, GoalCompleteEvent{}))
	assert.Equal(t, 1, ProgressDelta(QuestActivity1, ActivityCompleteEvent{ActivityType: "focus"}))
	assert.Equal(t, 0, ProgressDelta(QuestActivity1, QuestClaimEvent{}))
	assert.Equal(t, 0, ProgressDelta("streak_7", CheckinEvent{}))
	assert.Equal(t, 0, ProgressDelta(QuestGoals3, BloomCompleteEvent{}))
}

func TestDailyQuestTemplates(t *testing.T) {
	got := DailyQuestTemplates("2025-01-06")
	assert.Equal(t, []QuestTemplate{
		{Type: QuestCheckin1, Target: 1},
		{Type: QuestGoals3, Target: 3},
		{Type: QuestActivity1, Target: 1},
	}, got)
	for _, tpl := range got {
		assert.True(t, IsKnownQuestType(tpl.Type))
	}
	assert.False(t, IsKnownQuestType("unknown"))
}

func TestIsDueToday(t *testing.T) {
	goal := func(schedule storage.JSONMap) storage.Goal {
		return storage.Goal{ID: "g", Schedule: schedule}
	}
	tests := []struct {
		name     string
		schedule storage.JSONMap
		date     string
		want     bool
	}{
		{"nil schedule", nil, "2025-01-07", true},
		{"daily", DailySchedule(), "2025-01-07", true},
		{"weekly on monday", WeeklySchedule(1), "2025-01-06", true},
		{"weekly not tuesday", WeeklySchedule(1), "2025-01-07", false},
		{"weekly sunday", WeeklySchedule(0, 6), "2025-01-05", true},
		{"weekly float days", storage.JSONMap{"type": "weekly", "daysOfWeek": []any{float64(2)}}, "2025-01-07", true},
		{"weekly int slice", storage.JSONMap{"type": "weekly", "daysOfWeek": []int{3}}, "2025-01-07", false},
		{"weekly without days", storage.JSONMap{"type": "weekly"}, "2025-01-07", true},
		{"weekly days not a list", storage.JSONMap{"type": "weekly", "daysOfWeek": "mon"}, "2025-01-07", true},
		{"weekly empty list", storage.JSONMap{"type": "weekly", "daysOfWeek": []any{}}, "2025-01-07", false},
		{"unknown type", storage.JSONMap{"type": "monthly"}, "2025-01-07", true},
		{"bad date", WeeklySchedule(1), "not-a-date", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDueToday(goal(tt.schedule), tt.date))
		})
	}
}

func TestWeeklyScheduleSortsAndDedupes(t *testing.T) {
	s := WeeklySchedule(5, 1, 5, 3)
	assert.Equal(t, []any{1, 3, 5}, s["daysOfWeek"])
	assert.Equal(t, "weekly: Mon Wed Fri", DescribeSchedule(s))
	assert.Equal(t, "daily", DescribeSchedule(nil))
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule(WeeklySchedule(0, 6)))
	assert.NoError(t, ValidateSchedule(storage.JSONMap{"type": "weekly", "daysOfWeek": "whenever"}))
	assert.ErrorIs(t, ValidateSchedule(storage.JSONMap{"type": "weekly", "daysOfWeek": []any{7}}), ErrInvalidInput)
}

func TestParseWeekdays(t *testing.T) {
	days, err := ParseWeekdays("mon, wed,Friday")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, days)

	days, err = ParseWeekdays("0 6")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 6}, days)

	_, err = ParseWeekdays("funday")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ParseWeekdays("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDates(t *testing.T) {
	assert.Equal(t, "2025-01-06", LocalDate(monday))
	d, err := AddDays("2025-01-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", d)

	wd, err := Weekday("2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, wd)

	_, err = ParseDate("06/01/2025")
	assert.Error(t, err)
}

func TestHashSeed(t *testing.T) {
	assert.Equal(t, uint32(0), hashSeed(""))
	assert.Equal(t, uint32(97*31+98), hashSeed("ab"))
	// Wraps at 32 bits instead of overflowing.
	long := hashSeed("2025-01-06-a-much-longer-seed-value")
	assert.Equal(t, long, hashSeed("2025-01-06-a-much-longer-seed-value"))
	// Non-BMP runes hash as two UTF-16 units.
	assert.Equal(t, uint32(0xD83D)*31+0xDE00, hashSeed("\U0001F600"))
}

func TestPickStoryCard(t *testing.T) {
	cards := []storage.StoryCard{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got, err := PickStoryCard(cards, "ab")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID) // 3105 % 3 == 0

	again, err := PickStoryCard(cards, "ab")
	require.NoError(t, err)
	assert.Equal(t, got, again)

	_, err = PickStoryCard(nil, "ab")
	assert.ErrorIs(t, err, ErrNoStoryCards)
}

func TestMergeTraits(t *testing.T) {
	traits := storage.JSONMap{"calm": 1, "label": "sleepy", "focus": float64(2)}
	deltas := storage.JSONMap{"calm": 2, "focus": 0.5, "new": 1, "bad": "nan", "junk": []int{1}, "label": 1}

	got := MergeTraits(traits, deltas)
	assert.Equal(t, 3, got["calm"])
	assert.Equal(t, 2.5, got["focus"])
	assert.Equal(t, 1, got["new"])
	assert.Equal(t, 1, got["label"]) // non-numeric current counts as 0
	assert.NotContains(t, got, "bad")
	assert.NotContains(t, got, "junk")

	// Input is not mutated.
	assert.Equal(t, 1, traits["calm"])
}

func TestMergeTraitsParsesNumericStrings(t *testing.T) {
	got := MergeTraits(storage.JSONMap{"calm": "2"}, storage.JSONMap{"calm": " 1 "})
	assert.Equal(t, 3, got["calm"])
}
