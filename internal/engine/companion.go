package engine

import (
	"context"
	"slices"
	"strings"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

// Palettes are the companion colour schemes, default first.
var Palettes = []string{"sky", "blush", "mint"}

const DefaultPalette = "sky"

// Onboard creates the companion. Calling it again returns the existing
// companion untouched.
func (s *Service) Onboard(ctx context.Context, paletteID string) (*storage.Companion, error) {
	paletteID = strings.ToLower(strings.TrimSpace(paletteID))
	if paletteID == "" {
		paletteID = DefaultPalette
	}
	if !slices.Contains(Palettes, paletteID) {
		return nil, ValidationError{Field: "palette", Reason: "must be one of " + strings.Join(Palettes, ", ")}
	}

	var out *storage.Companion
	created := false
	err := s.store.Atomic(ctx, func(r storage.Repos) error {
		c, err := r.Companion.GetCompanion(ctx)
		if err != nil {
			return err
		}
		if c != nil {
			out = c
			return nil
		}
		out, err = r.Companion.CreateCompanion(ctx, storage.CompanionInput{
			PaletteID:       paletteID,
			Traits:          storage.JSONMap{},
			EquippedItemIDs: []string{},
		})
		created = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("companion created", "id", out.ID, "palette", paletteID)
	}
	return out, nil
}

// Companion returns the companion or a NotFoundError before onboarding.
func (s *Service) Companion(ctx context.Context) (*storage.Companion, error) {
	return requireCompanion(ctx, s.store.Repos())
}

// SetPalette changes the companion's colour scheme.
func (s *Service) SetPalette(ctx context.Context, paletteID string) (*storage.Companion, error) {
	paletteID = strings.ToLower(strings.TrimSpace(paletteID))
	if !slices.Contains(Palettes, paletteID) {
		return nil, ValidationError{Field: "palette", Reason: "must be one of " + strings.Join(Palettes, ", ")}
	}
	var out *storage.Companion
	err := s.store.Atomic(ctx, func(r storage.Repos) error {
		c, err := requireCompanion(ctx, r)
		if err != nil {
			return err
		}
		out, err = r.Companion.UpdateCompanion(ctx, c.ID, storage.CompanionUpdate{PaletteID: &paletteID})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Status is a snapshot of everything the home screen shows for one day.
type Status struct {
	Date      string
	Companion storage.Companion
	Quests    []storage.Quest
	Goals     []DueGoal
	Settings  storage.Settings
}

// CanBloom reports whether the companion has enough charge to start a bloom.
func (st Status) CanBloom() bool {
	return st.Companion.Charge >= BloomThreshold
}

// Status gathers the companion, the day's quests and due goals.
func (s *Service) Status(ctx context.Context, date string) (*Status, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	c, err := s.Companion(ctx)
	if err != nil {
		return nil, err
	}
	r := s.store.Repos()
	quests, err := r.Quests.ListQuests(ctx, storage.QuestFilter{LocalDate: date})
	if err != nil {
		return nil, err
	}
	goals, err := s.TodayGoals(ctx, date)
	if err != nil {
		return nil, err
	}
	settings, err := r.Settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{Date: date, Companion: *c, Quests: quests, Goals: goals, Settings: settings}, nil
}
