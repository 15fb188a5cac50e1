package engine

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

type BloomStart struct {
	Run      storage.BloomRun
	Instance storage.StoryCardInstance
	Card     storage.StoryCard
}

// StartBloom opens a bloom run for date. The companion needs at least
// BloomThreshold charge. The story card is picked from the date so the same
// day always shows the same card.
func (s *Service) StartBloom(ctx context.Context, date string) (*BloomStart, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	var out *BloomStart
	err = s.store.Atomic(ctx, func(r storage.Repos) error {
		c, err := requireCompanion(ctx, r)
		if err != nil {
			return err
		}
		if c.Charge < BloomThreshold {
			return ChargeError{Charge: c.Charge, Required: BloomThreshold}
		}

		cards, err := r.Shop.ListStoryCards(ctx)
		if err != nil {
			return err
		}
		card, err := PickStoryCard(cards, date)
		if err != nil {
			return err
		}

		run, err := r.Bloom.CreateBloomRun(ctx, storage.BloomRunInput{
			LocalDate:   date,
			StoryCardID: card.ID,
			StartedAt:   s.clock.Now(),
		})
		if err != nil {
			return err
		}
		inst, err := r.Bloom.CreateStoryCardInstance(ctx, storage.StoryCardInstanceInput{
			StoryCardID: card.ID,
			BloomRunID:  run.ID,
		})
		if err != nil {
			return err
		}
		out = &BloomStart{Run: *run, Instance: *inst, Card: card}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("bloom started", "run", out.Run.ID, "card", out.Card.ID, "date", date)
	return out, nil
}

// PickStoryCard selects cards[hash(seed) % len(cards)].
func PickStoryCard(cards []storage.StoryCard, seed string) (storage.StoryCard, error) {
	if len(cards) == 0 {
		return storage.StoryCard{}, ErrNoStoryCards
	}
	return cards[int(hashSeed(seed)%uint32(len(cards)))], nil
}

// hashSeed is a 31-multiplier rolling hash over the UTF-16 code units of seed,
// wrapped to 32 bits.
func hashSeed(seed string) uint32 {
	var h uint32
	for _, unit := range utf16.Encode([]rune(seed)) {
		h = h*31 + uint32(unit)
	}
	return h
}

type CompleteBloomInput struct {
	BloomRunID      string
	StoryInstanceID string
	Choice          storage.Choice
	ReflectionText  *string
}

type BloomResult struct {
	Companion     storage.Companion
	Run           storage.BloomRun
	PetalsAwarded int
	// StickerItemID is empty when no sticker dropped.
	StickerItemID string
}

// CompleteBloom records the story choice, applies its trait deltas, pays the
// bloom petals, maybe drops a sticker and spends all charge.
func (s *Service) CompleteBloom(ctx context.Context, in CompleteBloomInput) (*BloomResult, error) {
	if !in.Choice.IsValid() {
		return nil, ValidationError{Field: "choice", Reason: `must be "a" or "b"`}
	}
	if err := checkText("reflection", in.ReflectionText, false); err != nil {
		return nil, err
	}
	today := s.Today()

	var out *BloomResult
	err := s.store.Atomic(ctx, func(r storage.Repos) error {
		c, err := requireCompanion(ctx, r)
		if err != nil {
			return err
		}
		run, err := r.Bloom.GetBloomRun(ctx, in.BloomRunID)
		if err != nil {
			return err
		}
		if run == nil {
			return NotFoundError{Entity: "bloom run", ID: in.BloomRunID}
		}
		if run.IsCompleted {
			return ErrBloomAlreadyCompleted
		}
		inst, err := r.Bloom.GetStoryCardInstance(ctx, in.StoryInstanceID)
		if err != nil {
			return err
		}
		if inst == nil {
			return NotFoundError{Entity: "story instance", ID: in.StoryInstanceID}
		}
		if inst.BloomRunID != "" && inst.BloomRunID != run.ID {
			return ValidationError{Field: "story instance", Reason: "belongs to a different bloom run"}
		}
		card, err := findStoryCard(ctx, r, inst.StoryCardID)
		if err != nil {
			return err
		}

		done := true
		completedAt := s.clock.Now()
		if _, err := r.Bloom.UpdateBloomRun(ctx, run.ID, storage.BloomRunUpdate{
			IsCompleted: &done,
			CompletedAt: &completedAt,
			Choice:      &in.Choice,
		}); err != nil {
			return err
		}
		if _, err := r.Bloom.UpdateStoryCardInstance(ctx, inst.ID, storage.StoryCardInstanceUpdate{
			Choice:         &in.Choice,
			ReflectionText: in.ReflectionText,
		}); err != nil {
			return err
		}

		traits := MergeTraits(c.Traits, card.TraitDeltas(in.Choice))
		ev := BloomCompleteEvent{BloomRunID: run.ID}
		petals := ComputeReward(ev).PetalsDelta

		sticker, err := s.dropSticker(ctx, r)
		if err != nil {
			return err
		}

		finalRun, err := r.Bloom.UpdateBloomRun(ctx, run.ID, storage.BloomRunUpdate{
			PetalsAwarded: &petals,
			StickerItemID: &sticker,
		})
		if err != nil {
			return err
		}

		if _, err := r.Rewards.AddLedgerEntry(ctx, storage.LedgerEntryInput{
			LocalDate:   run.LocalDate,
			EventType:   string(ev.Kind()),
			SourceType:  "bloom",
			SourceID:    run.ID,
			ChargeDelta: 0,
			PetalsDelta: petals,
		}); err != nil {
			return err
		}

		charge := 0
		balance := c.PetalsBalance + petals
		updated, err := r.Companion.UpdateCompanion(ctx, c.ID, storage.CompanionUpdate{
			Charge:        &charge,
			PetalsBalance: &balance,
			Traits:        traits,
		})
		if err != nil {
			return err
		}

		if err := s.advanceQuests(ctx, r, ev, today); err != nil {
			return err
		}

		out = &BloomResult{Companion: *updated, Run: *finalRun, PetalsAwarded: petals, StickerItemID: sticker}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("bloom completed", "run", in.BloomRunID, "choice", in.Choice, "petals", out.PetalsAwarded)
	if out.StickerItemID != "" {
		s.log.Info("sticker dropped", "item", out.StickerItemID)
	}
	return out, nil
}

func findStoryCard(ctx context.Context, r storage.Repos, id string) (*storage.StoryCard, error) {
	cards, err := r.Shop.ListStoryCards(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cards {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, NotFoundError{Entity: "story card", ID: id}
}

// dropSticker rolls the sticker chance and grants a uniformly chosen sticker.
// It returns the granted item id or "".
func (s *Service) dropSticker(ctx context.Context, r storage.Repos) (string, error) {
	items, err := r.Shop.ListItems(ctx)
	if err != nil {
		return "", err
	}
	var stickers []storage.Item
	for _, it := range items {
		if it.Category == storage.CategorySticker {
			stickers = append(stickers, it)
		}
	}
	if len(stickers) == 0 || s.rng.Float64() >= s.stickerDropRate {
		return "", nil
	}
	picked := stickers[s.rng.IntN(len(stickers))]
	if _, err := r.Shop.AddUserItem(ctx, picked.ID, storage.JSONMap{"source": "bloom"}); err != nil {
		return "", err
	}
	return picked.ID, nil
}

// MergeTraits adds each numeric delta onto the matching trait. Missing or
// non-numeric current values count as 0; non-numeric deltas are skipped.
// Keys without a delta are copied unchanged.
func MergeTraits(traits, deltas storage.JSONMap) storage.JSONMap {
	out := traits.Clone()
	for key, raw := range deltas {
		delta, ok := toNumber(raw)
		if !ok {
			continue
		}
		current, ok := toNumber(out[key])
		if !ok {
			current = 0
		}
		out[key] = numberValue(current + delta)
	}
	return out
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case float32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// numberValue keeps whole numbers as int so traits read naturally.
func numberValue(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}

type BloomAlbumEntry struct {
	Run       storage.BloomRun
	CardTitle string
}

// BloomHistory lists completed bloom runs, newest first.
func (s *Service) BloomHistory(ctx context.Context) ([]BloomAlbumEntry, error) {
	r := s.store.Repos()
	runs, err := r.Bloom.ListBloomRuns(ctx)
	if err != nil {
		return nil, err
	}
	cards, err := r.Shop.ListStoryCards(ctx)
	if err != nil {
		return nil, err
	}
	titles := map[string]string{}
	for _, c := range cards {
		titles[c.ID] = c.Title
	}
	var out []BloomAlbumEntry
	for _, run := range runs {
		if !run.IsCompleted {
			continue
		}
		out = append(out, BloomAlbumEntry{Run: run, CardTitle: titles[run.StoryCardID]})
	}
	return out, nil
}

// PendingBloom returns the newest unfinished bloom run and its story instance, if any.
func (s *Service) PendingBloom(ctx context.Context) (*BloomStart, error) {
	r := s.store.Repos()
	runs, err := r.Bloom.ListBloomRuns(ctx)
	if err != nil {
		return nil, err
	}
	for _, run := range runs {
		if run.IsCompleted {
			continue
		}
		instances, err := r.Bloom.ListStoryCardInstances(ctx)
		if err != nil {
			return nil, err
		}
		for _, inst := range instances {
			if inst.BloomRunID != run.ID {
				continue
			}
			card, err := findStoryCard(ctx, r, inst.StoryCardID)
			if err != nil {
				return nil, err
			}
			return &BloomStart{Run: run, Instance: inst, Card: *card}, nil
		}
	}
	return nil, nil
}
