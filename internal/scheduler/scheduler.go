// Package scheduler seeds each day's quests on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

// QuestSeeder is the part of the engine the scheduler drives.
type QuestSeeder interface {
	EnsureDailyQuests(ctx context.Context, date string) ([]storage.Quest, error)
}

type Scheduler struct {
	seeder  QuestSeeder
	cron    *cron.Cron
	log     *slog.Logger
	timeout time.Duration
}

// New registers the daily seeding job. spec is a standard five-field cron expression.
func New(seeder QuestSeeder, spec string, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Scheduler{
		seeder:  seeder,
		cron:    cron.New(),
		log:     logger,
		timeout: 30 * time.Second,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("schedule quest seeding %q: %w", spec, err)
	}
	return s, nil
}

// Start seeds today's quests once and then starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.SeedNow(ctx); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Next is the time of the next scheduled run. Zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// SeedNow makes sure today's quests exist.
func (s *Scheduler) SeedNow(ctx context.Context) error {
	quests, err := s.seeder.EnsureDailyQuests(ctx, "")
	if err != nil {
		return fmt.Errorf("seed daily quests: %w", err)
	}
	s.log.Info("daily quests ready", "count", len(quests))
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.SeedNow(ctx); err != nil {
		s.log.Error("quest seeding failed", "err", err)
	}
}
