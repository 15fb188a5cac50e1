package engine

import (
	"context"
	"fmt"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

// applyReward adds the event's reward to the companion and records it in the
// ledger under date.
func (s *Service) applyReward(ctx context.Context, r storage.Repos, ev RewardEvent, date string) (*storage.Companion, Reward, error) {
	c, err := requireCompanion(ctx, r)
	if err != nil {
		return nil, Reward{}, err
	}
	reward := ComputeReward(ev)

	charge := ClampCharge(c.Charge + reward.ChargeDelta)
	petals := c.PetalsBalance + reward.PetalsDelta
	updated, err := r.Companion.UpdateCompanion(ctx, c.ID, storage.CompanionUpdate{
		Charge:        &charge,
		PetalsBalance: &petals,
	})
	if err != nil {
		return nil, Reward{}, err
	}

	_, err = r.Rewards.AddLedgerEntry(ctx, storage.LedgerEntryInput{
		LocalDate:   date,
		EventType:   string(ev.Kind()),
		SourceType:  string(ev.Kind()),
		SourceID:    ev.SourceID(),
		ChargeDelta: reward.ChargeDelta,
		PetalsDelta: reward.PetalsDelta,
	})
	if err != nil {
		return nil, Reward{}, err
	}

	s.log.Debug("reward applied",
		"event", ev.Kind(),
		"source", ev.SourceID(),
		"charge_delta", reward.ChargeDelta,
		"petals_delta", reward.PetalsDelta,
		"charge", updated.Charge,
		"petals", updated.PetalsBalance,
	)
	return updated, reward, nil
}

// advanceQuests moves the day's known, unfinished, unclaimed quests forward.
// It never creates quests.
func (s *Service) advanceQuests(ctx context.Context, r storage.Repos, ev RewardEvent, date string) error {
	quests, err := r.Quests.ListQuests(ctx, storage.QuestFilter{LocalDate: date})
	if err != nil {
		return err
	}
	for _, q := range quests {
		if !IsKnownQuestType(q.QuestType) || q.IsClaimed || q.Progress >= q.Target {
			continue
		}
		delta := ProgressDelta(q.QuestType, ev)
		if delta <= 0 {
			continue
		}
		progress := min(q.Target, q.Progress+delta)
		if _, err := r.Quests.UpdateQuest(ctx, q.ID, storage.QuestUpdate{Progress: &progress}); err != nil {
			return err
		}
		s.log.Debug("quest advanced", "quest", q.QuestType, "date", date, "progress", progress, "target", q.Target)
	}
	return nil
}

// EnsureDailyQuests seeds the day's quests if none exist and returns the day's quests.
func (s *Service) EnsureDailyQuests(ctx context.Context, date string) ([]storage.Quest, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	var out []storage.Quest
	err = s.store.Atomic(ctx, func(r storage.Repos) error {
		out, err = ensureDailyQuests(ctx, r, date)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func ensureDailyQuests(ctx context.Context, r storage.Repos, date string) ([]storage.Quest, error) {
	existing, err := r.Quests.ListQuests(ctx, storage.QuestFilter{LocalDate: date})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}
	templates := DailyQuestTemplates(date)
	out := make([]storage.Quest, 0, len(templates))
	for _, tpl := range templates {
		q, err := r.Quests.CreateQuest(ctx, storage.QuestInput{
			LocalDate:    date,
			QuestType:    tpl.Type,
			Target:       tpl.Target,
			RewardPetals: QuestRewardPetals,
		})
		if err != nil {
			return nil, fmt.Errorf("seed quest %s: %w", tpl.Type, err)
		}
		out = append(out, *q)
	}
	return out, nil
}

// Quests lists the quests for a date without seeding.
func (s *Service) Quests(ctx context.Context, date string) ([]storage.Quest, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	return s.store.Repos().Quests.ListQuests(ctx, storage.QuestFilter{LocalDate: date})
}
