package engine

import (
	"context"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

type MoodPoint struct {
	Date string
	// Mood is nil on days without a check-in.
	Mood *int
}

// MoodSeries returns one point per day for the days ending at anchor, oldest
// first. Each point carries the mood of that day's latest check-in.
func (s *Service) MoodSeries(ctx context.Context, days int, anchor string) ([]MoodPoint, error) {
	from, to, err := s.window(days, anchor)
	if err != nil {
		return nil, err
	}
	checkins, err := s.store.Repos().Checkins.ListCheckins(ctx, storage.DateRange{FromDate: from, ToDate: to})
	if err != nil {
		return nil, err
	}
	latest := map[string]int{}
	for _, c := range checkins {
		if _, seen := latest[c.LocalDate]; !seen {
			latest[c.LocalDate] = c.Mood
		}
	}

	out := make([]MoodPoint, 0, days)
	for i := 0; i < days; i++ {
		date, err := AddDays(from, i)
		if err != nil {
			return nil, err
		}
		p := MoodPoint{Date: date}
		if m, ok := latest[date]; ok {
			p.Mood = &m
		}
		out = append(out, p)
	}
	return out, nil
}

type Summary struct {
	FromDate       string
	ToDate         string
	Checkins       int
	GoalsCompleted int
	Activities     int
	PetalsEarned   int
	// AverageMood is 0 when there were no check-ins.
	AverageMood float64
}

// Summary totals the activity of the days ending at anchor.
func (s *Service) Summary(ctx context.Context, days int, anchor string) (*Summary, error) {
	from, to, err := s.window(days, anchor)
	if err != nil {
		return nil, err
	}
	r := s.store.Repos()
	rng := storage.DateRange{FromDate: from, ToDate: to}

	checkins, err := r.Checkins.ListCheckins(ctx, rng)
	if err != nil {
		return nil, err
	}
	completions, err := r.Goals.ListCompletions(ctx, storage.CompletionFilter{FromDate: from, ToDate: to})
	if err != nil {
		return nil, err
	}
	sessions, err := r.Activity.ListSessions(ctx, rng)
	if err != nil {
		return nil, err
	}
	ledger, err := r.Rewards.ListLedgerEntries(ctx, storage.LedgerFilter{})
	if err != nil {
		return nil, err
	}

	out := &Summary{
		FromDate:       from,
		ToDate:         to,
		Checkins:       len(checkins),
		GoalsCompleted: len(completions),
		Activities:     len(sessions),
	}
	if len(checkins) > 0 {
		total := 0
		for _, c := range checkins {
			total += c.Mood
		}
		out.AverageMood = float64(total) / float64(len(checkins))
	}
	loc := s.clock.Now().Location()
	for _, e := range ledger {
		d := e.LocalDate
		if d == "" {
			// rows written before ledger entries carried a date
			d = LocalDate(e.CreatedAt.In(loc))
		}
		if e.PetalsDelta > 0 && d >= from && d <= to {
			out.PetalsEarned += e.PetalsDelta
		}
	}
	return out, nil
}

func (s *Service) window(days int, anchor string) (from, to string, err error) {
	if days < 1 {
		return "", "", ValidationError{Field: "days", Reason: "must be at least 1"}
	}
	to, err = s.resolveDate(anchor)
	if err != nil {
		return "", "", err
	}
	from, err = AddDays(to, -(days - 1))
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}
