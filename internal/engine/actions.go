package engine

import (
	"context"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

// RecordCheckin stores a mood check-in, rewards it and advances the day's quests.
// Every call creates a new check-in.
func (s *Service) RecordCheckin(ctx context.Context, in storage.CheckinInput) (*storage.Checkin, error) {
	date, err := s.resolveDate(in.LocalDate)
	if err != nil {
		return nil, err
	}
	in.LocalDate = date
	if in.Mood < 1 || in.Mood > 5 {
		return nil, ValidationError{Field: "mood", Reason: "must be between 1 and 5"}
	}
	if err := checkText("note", in.Note, false); err != nil {
		return nil, err
	}

	var out *storage.Checkin
	err = s.store.Atomic(ctx, func(r storage.Repos) error {
		if _, err := requireCompanion(ctx, r); err != nil {
			return err
		}
		c, err := r.Checkins.CreateCheckin(ctx, in)
		if err != nil {
			return err
		}
		ev := CheckinEvent{CheckinID: c.ID}
		if _, _, err := s.applyReward(ctx, r, ev, date); err != nil {
			return err
		}
		if err := s.advanceQuests(ctx, r, ev, date); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type GoalCompletionResult struct {
	Completion storage.GoalCompletion
	// Created is false when the goal was already completed that day; nothing
	// was rewarded in that case.
	Created bool
	Reward  Reward
}

// CompleteGoal records goal as done on date. Completing the same goal twice on
// one day returns the existing completion without a second reward.
func (s *Service) CompleteGoal(ctx context.Context, goal storage.Goal, date string) (*GoalCompletionResult, error) {
	return s.CompleteGoalByID(ctx, goal.ID, date)
}

func (s *Service) CompleteGoalByID(ctx context.Context, goalID, date string) (*GoalCompletionResult, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	var out *GoalCompletionResult
	err = s.store.Atomic(ctx, func(r storage.Repos) error {
		g, err := r.Goals.GetGoal(ctx, goalID)
		if err != nil {
			return err
		}
		if g == nil {
			return NotFoundError{Entity: "goal", ID: goalID}
		}
		if _, err := requireCompanion(ctx, r); err != nil {
			return err
		}

		c, created, err := r.Goals.CreateCompletion(ctx, storage.GoalCompletionInput{GoalID: g.ID, LocalDate: date})
		if err != nil {
			return err
		}
		out = &GoalCompletionResult{Completion: *c, Created: created}
		if !created {
			s.log.Debug("goal already completed", "goal", g.ID, "date", date)
			return nil
		}

		ev := GoalCompleteEvent{GoalID: g.ID, CompletionID: c.ID}
		_, reward, err := s.applyReward(ctx, r, ev, date)
		if err != nil {
			return err
		}
		out.Reward = reward
		return s.advanceQuests(ctx, r, ev, date)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecordActivity stores a finished activity session, rewards it and advances quests.
func (s *Service) RecordActivity(ctx context.Context, in storage.ActivitySessionInput) (*storage.ActivitySession, error) {
	date, err := s.resolveDate(in.LocalDate)
	if err != nil {
		return nil, err
	}
	in.LocalDate = date
	if !in.ActivityType.IsValid() {
		return nil, ValidationError{Field: "activity type", Reason: "must be one of breathe, focus, sound, reflect, first_aid"}
	}
	if in.DurationSeconds != nil && *in.DurationSeconds < 0 {
		return nil, ValidationError{Field: "duration", Reason: "must not be negative"}
	}
	if err := checkText("note", in.Note, false); err != nil {
		return nil, err
	}

	var out *storage.ActivitySession
	err = s.store.Atomic(ctx, func(r storage.Repos) error {
		if _, err := requireCompanion(ctx, r); err != nil {
			return err
		}
		sess, err := r.Activity.CreateSession(ctx, in)
		if err != nil {
			return err
		}
		ev := ActivityCompleteEvent{SessionID: sess.ID, ActivityType: string(sess.ActivityType)}
		if _, _, err := s.applyReward(ctx, r, ev, date); err != nil {
			return err
		}
		if err := s.advanceQuests(ctx, r, ev, date); err != nil {
			return err
		}
		out = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimQuest marks a quest claimed and pays its reward. Claiming an already
// claimed quest returns it unchanged.
func (s *Service) ClaimQuest(ctx context.Context, questID string) (*storage.Quest, error) {
	var out *storage.Quest
	err := s.store.Atomic(ctx, func(r storage.Repos) error {
		q, err := r.Quests.GetQuest(ctx, questID)
		if err != nil {
			return err
		}
		if q == nil {
			return NotFoundError{Entity: "quest", ID: questID}
		}
		if q.IsClaimed {
			out = q
			return nil
		}

		claimed := true
		now := s.clock.Now()
		updated, err := r.Quests.UpdateQuest(ctx, q.ID, storage.QuestUpdate{IsClaimed: &claimed, ClaimedAt: &now})
		if err != nil {
			return err
		}
		if _, _, err := s.applyReward(ctx, r, QuestClaimEvent{QuestID: q.ID}, q.LocalDate); err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
