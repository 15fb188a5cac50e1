package engine

import (
	"context"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

func (s *Service) Settings(ctx context.Context) (storage.Settings, error) {
	return s.store.Repos().Settings.GetSettings(ctx)
}

// SetPauseMode toggles pause mode. It is informational only: rewards and
// quests keep working while paused.
func (s *Service) SetPauseMode(ctx context.Context, on bool) (storage.Settings, error) {
	var out storage.Settings
	err := s.store.Atomic(ctx, func(r storage.Repos) error {
		var err error
		out, err = r.Settings.UpdateSettings(ctx, storage.SettingsUpdate{PauseMode: &on})
		return err
	})
	if err != nil {
		return storage.Settings{}, err
	}
	s.log.Info("pause mode changed", "on", on)
	return out, nil
}

// History lists reward ledger entries newest first. limit <= 0 means all.
func (s *Service) History(ctx context.Context, limit int) ([]storage.RewardLedgerEntry, error) {
	return s.store.Repos().Rewards.ListLedgerEntries(ctx, storage.LedgerFilter{Limit: limit})
}

// Reset deletes all user data. The shop catalog and story cards survive.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	s.log.Warn("all data reset")
	return nil
}
