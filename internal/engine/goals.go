package engine

import (
	"context"
	"strings"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

// CreateGoal adds a goal. A nil schedule means daily.
func (s *Service) CreateGoal(ctx context.Context, title string, details *string, schedule storage.JSONMap) (*storage.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if err := checkText("details", details, false); err != nil {
		return nil, err
	}
	if schedule == nil {
		schedule = DailySchedule()
	}
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}

	var out *storage.Goal
	err := s.store.Atomic(ctx, func(r storage.Repos) error {
		var err error
		out, err = r.Goals.CreateGoal(ctx, storage.GoalInput{Title: title, Details: details, Schedule: schedule})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("goal created", "id", out.ID, "schedule", DescribeSchedule(schedule))
	return out, nil
}

type GoalChanges struct {
	Title    *string
	Details  *string
	Schedule storage.JSONMap
}

func (s *Service) UpdateGoal(ctx context.Context, id string, ch GoalChanges) (*storage.Goal, error) {
	if ch.Title != nil {
		t := strings.TrimSpace(*ch.Title)
		if t == "" {
			return nil, ValidationError{Field: "title", Reason: "must not be empty"}
		}
		ch.Title = &t
	}
	if err := checkText("details", ch.Details, false); err != nil {
		return nil, err
	}
	if ch.Schedule != nil {
		if err := ValidateSchedule(ch.Schedule); err != nil {
			return nil, err
		}
	}
	return s.updateGoal(ctx, id, storage.GoalUpdate{Title: ch.Title, Details: ch.Details, Schedule: ch.Schedule})
}

// ArchiveGoal hides a goal from due lists. Its completions are kept.
func (s *Service) ArchiveGoal(ctx context.Context, id string) (*storage.Goal, error) {
	archived := true
	return s.updateGoal(ctx, id, storage.GoalUpdate{IsArchived: &archived})
}

func (s *Service) updateGoal(ctx context.Context, id string, up storage.GoalUpdate) (*storage.Goal, error) {
	var out *storage.Goal
	err := s.store.Atomic(ctx, func(r storage.Repos) error {
		g, err := r.Goals.GetGoal(ctx, id)
		if err != nil {
			return err
		}
		if g == nil {
			return NotFoundError{Entity: "goal", ID: id}
		}
		out, err = r.Goals.UpdateGoal(ctx, id, up)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ListGoals(ctx context.Context, includeArchived bool) ([]storage.Goal, error) {
	return s.store.Repos().Goals.ListGoals(ctx, storage.GoalFilter{IncludeArchived: includeArchived})
}

type DueGoal struct {
	Goal storage.Goal
	// Done is true when the goal already has a completion for the day.
	Done bool
}

// TodayGoals lists the active goals due on date.
func (s *Service) TodayGoals(ctx context.Context, date string) ([]DueGoal, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	r := s.store.Repos()
	goals, err := r.Goals.ListGoals(ctx, storage.GoalFilter{})
	if err != nil {
		return nil, err
	}
	completions, err := r.Goals.ListCompletions(ctx, storage.CompletionFilter{LocalDate: date})
	if err != nil {
		return nil, err
	}
	done := map[string]bool{}
	for _, c := range completions {
		done[c.GoalID] = true
	}

	var out []DueGoal
	for _, g := range goals {
		if g.IsArchived || !IsDueToday(g, date) {
			continue
		}
		out = append(out, DueGoal{Goal: g, Done: done[g.ID]})
	}
	return out, nil
}
