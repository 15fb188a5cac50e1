package engine

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

const (
	ScheduleDaily  = "daily"
	ScheduleWeekly = "weekly"
)

// IsDueToday reports whether goal is due on the civil date. Missing or
// malformed schedules are treated as due every day.
func IsDueToday(goal storage.Goal, date string) bool {
	kind, ok := goal.Schedule["type"].(string)
	if !ok || kind == "" || kind == ScheduleDaily {
		return true
	}
	if kind != ScheduleWeekly {
		return true
	}
	days, ok := weekdayList(goal.Schedule["daysOfWeek"])
	if !ok {
		return true
	}
	wd, err := Weekday(date)
	if err != nil {
		return true
	}
	return slices.Contains(days, int(wd))
}

// weekdayList extracts the integer entries of a daysOfWeek value. ok is false
// when the value is not a list at all.
func weekdayList(v any) ([]int, bool) {
	switch vals := v.(type) {
	case []int:
		return vals, true
	case []any:
		out := make([]int, 0, len(vals))
		for _, raw := range vals {
			if n, ok := wholeNumber(raw); ok {
				out = append(out, n)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func wholeNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

// DailySchedule is the schedule descriptor for an every-day goal.
func DailySchedule() storage.JSONMap {
	return storage.JSONMap{"type": ScheduleDaily}
}

// WeeklySchedule is the schedule descriptor for a goal due on the given weekdays (0=Sunday).
func WeeklySchedule(days ...int) storage.JSONMap {
	sorted := slices.Clone(days)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	list := make([]any, len(sorted))
	for i, d := range sorted {
		list[i] = d
	}
	return storage.JSONMap{"type": ScheduleWeekly, "daysOfWeek": list}
}

// ValidateSchedule rejects weekly schedules whose integer days fall outside 0..6.
// Anything else is accepted as-is.
func ValidateSchedule(schedule storage.JSONMap) error {
	if schedule["type"] != ScheduleWeekly {
		return nil
	}
	days, ok := weekdayList(schedule["daysOfWeek"])
	if !ok {
		return nil
	}
	for _, d := range days {
		if d < 0 || d > 6 {
			return ValidationError{Field: "schedule", Reason: fmt.Sprintf("weekday %d outside 0..6", d)}
		}
	}
	return nil
}

var weekdayNames = map[string]int{
	"sun": 0, "sunday": 0,
	"mon": 1, "monday": 1,
	"tue": 2, "tues": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thur": 4, "thurs": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
}

// ParseWeekdays parses user input like "mon,wed,fri" or "1,3,5".
func ParseWeekdays(input string) ([]int, error) {
	var days []int
	for _, part := range strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' }) {
		s := strings.ToLower(strings.TrimSpace(part))
		if d, ok := weekdayNames[s]; ok {
			days = append(days, d)
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > 6 {
			return nil, ValidationError{Field: "days", Reason: fmt.Sprintf("unknown weekday %q", part)}
		}
		days = append(days, n)
	}
	if len(days) == 0 {
		return nil, ValidationError{Field: "days", Reason: "at least one weekday is required"}
	}
	return days, nil
}

// DescribeSchedule renders a schedule for display, e.g. "weekly: Mon Wed Fri".
func DescribeSchedule(schedule storage.JSONMap) string {
	kind, _ := schedule["type"].(string)
	if kind != ScheduleWeekly {
		return ScheduleDaily
	}
	days, ok := weekdayList(schedule["daysOfWeek"])
	if !ok {
		return ScheduleDaily
	}
	short := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	var names []string
	for _, d := range days {
		if d >= 0 && d <= 6 {
			names = append(names, short[d])
		}
	}
	return ScheduleWeekly + ": " + strings.Join(names, " ")
}
