package filestore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

func now() time.Time {
	return time.Now().UTC()
}

func inRange(date string, f storage.DateRange) bool {
	if f.FromDate != "" && date < f.FromDate {
		return false
	}
	if f.ToDate != "" && date > f.ToDate {
		return false
	}
	return true
}

// newestFirst returns the elements of in reversed, filtered by keep and capped at limit.
func newestFirst[T any](in []T, limit int, keep func(T) bool) []T {
	var out []T
	for i := len(in) - 1; i >= 0; i-- {
		if keep != nil && !keep(in[i]) {
			continue
		}
		out = append(out, in[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func copyCompanion(c storage.Companion) *storage.Companion {
	c.Traits = c.Traits.Clone()
	c.EquippedItemIDs = append([]string{}, c.EquippedItemIDs...)
	return &c
}

type companionRepo struct{ v *view }

func (r *companionRepo) GetCompanion(ctx context.Context) (*storage.Companion, error) {
	var out *storage.Companion
	err := r.v.read(ctx, func(st *state) error {
		if st.Companion != nil {
			out = copyCompanion(*st.Companion)
		}
		return nil
	})
	return out, err
}

func (r *companionRepo) CreateCompanion(ctx context.Context, in storage.CompanionInput) (*storage.Companion, error) {
	ts := now()
	c := storage.Companion{
		ID:              storage.NewID("companion"),
		PaletteID:       in.PaletteID,
		Charge:          in.Charge,
		PetalsBalance:   in.PetalsBalance,
		Traits:          in.Traits.Clone(),
		EquippedItemIDs: append([]string{}, in.EquippedItemIDs...),
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	if err := storage.CheckCompanionBounds(c); err != nil {
		return nil, fmt.Errorf("companion insert: %w", err)
	}
	err := r.v.write(ctx, func(st *state) error {
		if st.Companion != nil {
			return fmt.Errorf("companion insert: companion already exists")
		}
		st.Companion = copyCompanion(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companionRepo) UpdateCompanion(ctx context.Context, id string, up storage.CompanionUpdate) (*storage.Companion, error) {
	var out *storage.Companion
	err := r.v.write(ctx, func(st *state) error {
		if st.Companion == nil || st.Companion.ID != id {
			return fmt.Errorf("companion update %s: %w", id, storage.ErrNotFound)
		}
		c := copyCompanion(*st.Companion)
		if up.PaletteID != nil {
			c.PaletteID = *up.PaletteID
		}
		if up.Charge != nil {
			c.Charge = *up.Charge
		}
		if up.PetalsBalance != nil {
			c.PetalsBalance = *up.PetalsBalance
		}
		if up.Traits != nil {
			c.Traits = up.Traits.Clone()
		}
		if up.EquippedItemIDs != nil {
			c.EquippedItemIDs = append([]string{}, up.EquippedItemIDs...)
		}
		if err := storage.CheckCompanionBounds(*c); err != nil {
			return fmt.Errorf("companion update: %w", err)
		}
		c.UpdatedAt = now()
		st.Companion = c
		out = copyCompanion(*c)
		return nil
	})
	return out, err
}

type goalRepo struct{ v *view }

func copyGoal(g storage.Goal) storage.Goal {
	g.Schedule = g.Schedule.Clone()
	return g
}

func (r *goalRepo) ListGoals(ctx context.Context, f storage.GoalFilter) ([]storage.Goal, error) {
	var out []storage.Goal
	err := r.v.read(ctx, func(st *state) error {
		for _, g := range st.Goals {
			if g.IsArchived && !f.IncludeArchived {
				continue
			}
			out = append(out, copyGoal(g))
		}
		return nil
	})
	return out, err
}

func (r *goalRepo) GetGoal(ctx context.Context, id string) (*storage.Goal, error) {
	var out *storage.Goal
	err := r.v.read(ctx, func(st *state) error {
		for _, g := range st.Goals {
			if g.ID == id {
				c := copyGoal(g)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *goalRepo) CreateGoal(ctx context.Context, in storage.GoalInput) (*storage.Goal, error) {
	ts := now()
	g := storage.Goal{
		ID:        storage.NewID("goal"),
		Title:     in.Title,
		Details:   in.Details,
		Schedule:  in.Schedule.Clone(),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	err := r.v.write(ctx, func(st *state) error {
		st.Goals = append(st.Goals, copyGoal(g))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *goalRepo) UpdateGoal(ctx context.Context, id string, up storage.GoalUpdate) (*storage.Goal, error) {
	var out *storage.Goal
	err := r.v.write(ctx, func(st *state) error {
		i := slices.IndexFunc(st.Goals, func(g storage.Goal) bool { return g.ID == id })
		if i < 0 {
			return fmt.Errorf("goal update %s: %w", id, storage.ErrNotFound)
		}
		g := &st.Goals[i]
		if up.Title != nil {
			g.Title = *up.Title
		}
		if up.Details != nil {
			g.Details = up.Details
		}
		if up.Schedule != nil {
			g.Schedule = up.Schedule.Clone()
		}
		if up.IsArchived != nil {
			g.IsArchived = *up.IsArchived
		}
		g.UpdatedAt = now()
		c := copyGoal(*g)
		out = &c
		return nil
	})
	return out, err
}

func (r *goalRepo) ListCompletions(ctx context.Context, f storage.CompletionFilter) ([]storage.GoalCompletion, error) {
	var out []storage.GoalCompletion
	err := r.v.read(ctx, func(st *state) error {
		for _, c := range st.Completions {
			if f.LocalDate != "" && c.LocalDate != f.LocalDate {
				continue
			}
			if f.GoalID != "" && c.GoalID != f.GoalID {
				continue
			}
			if !inRange(c.LocalDate, storage.DateRange{FromDate: f.FromDate, ToDate: f.ToDate}) {
				continue
			}
			out = append(out, c)
		}
		return nil
	})
	return out, err
}

func (r *goalRepo) CreateCompletion(ctx context.Context, in storage.GoalCompletionInput) (*storage.GoalCompletion, bool, error) {
	var (
		out     storage.GoalCompletion
		created bool
	)
	err := r.v.write(ctx, func(st *state) error {
		for _, c := range st.Completions {
			if c.GoalID == in.GoalID && c.LocalDate == in.LocalDate {
				out = c
				return nil
			}
		}
		out = storage.GoalCompletion{
			ID:        storage.NewID("completion"),
			GoalID:    in.GoalID,
			LocalDate: in.LocalDate,
			CreatedAt: now(),
		}
		st.Completions = append(st.Completions, out)
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, created, nil
}

type checkinRepo struct{ v *view }

func (r *checkinRepo) ListCheckins(ctx context.Context, f storage.DateRange) ([]storage.Checkin, error) {
	var out []storage.Checkin
	err := r.v.read(ctx, func(st *state) error {
		out = newestFirst(st.Checkins, f.Limit, func(c storage.Checkin) bool { return inRange(c.LocalDate, f) })
		return nil
	})
	return out, err
}

func (r *checkinRepo) CreateCheckin(ctx context.Context, in storage.CheckinInput) (*storage.Checkin, error) {
	c := storage.Checkin{
		ID:        storage.NewID("checkin"),
		LocalDate: in.LocalDate,
		Mood:      in.Mood,
		Note:      in.Note,
		CreatedAt: now(),
	}
	if c.Mood < 1 || c.Mood > 5 {
		return nil, fmt.Errorf("checkin insert: mood %d out of range", c.Mood)
	}
	err := r.v.write(ctx, func(st *state) error {
		st.Checkins = append(st.Checkins, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type activityRepo struct{ v *view }

func (r *activityRepo) ListSessions(ctx context.Context, f storage.DateRange) ([]storage.ActivitySession, error) {
	var out []storage.ActivitySession
	err := r.v.read(ctx, func(st *state) error {
		out = newestFirst(st.Sessions, f.Limit, func(s storage.ActivitySession) bool { return inRange(s.LocalDate, f) })
		for i := range out {
			out[i].Metadata = out[i].Metadata.Clone()
		}
		return nil
	})
	return out, err
}

func (r *activityRepo) CreateSession(ctx context.Context, in storage.ActivitySessionInput) (*storage.ActivitySession, error) {
	if !in.ActivityType.IsValid() {
		return nil, fmt.Errorf("activity insert: unknown activity type %q", in.ActivityType)
	}
	s := storage.ActivitySession{
		ID:              storage.NewID("session"),
		LocalDate:       in.LocalDate,
		ActivityType:    in.ActivityType,
		DurationSeconds: in.DurationSeconds,
		Note:            in.Note,
		Metadata:        in.Metadata.Clone(),
		CreatedAt:       now(),
	}
	err := r.v.write(ctx, func(st *state) error {
		stored := s
		stored.Metadata = s.Metadata.Clone()
		st.Sessions = append(st.Sessions, stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type questRepo struct{ v *view }

func (r *questRepo) ListQuests(ctx context.Context, f storage.QuestFilter) ([]storage.Quest, error) {
	var out []storage.Quest
	err := r.v.read(ctx, func(st *state) error {
		for _, q := range st.Quests {
			if f.LocalDate != "" && q.LocalDate != f.LocalDate {
				continue
			}
			out = append(out, q)
		}
		slices.SortStableFunc(out, func(a, b storage.Quest) int { return cmp.Compare(a.LocalDate, b.LocalDate) })
		return nil
	})
	return out, err
}

func (r *questRepo) GetQuest(ctx context.Context, id string) (*storage.Quest, error) {
	var out *storage.Quest
	err := r.v.read(ctx, func(st *state) error {
		for _, q := range st.Quests {
			if q.ID == id {
				q := q
				out = &q
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *questRepo) CreateQuest(ctx context.Context, in storage.QuestInput) (*storage.Quest, error) {
	q := storage.Quest{
		ID:           storage.NewID("quest"),
		LocalDate:    in.LocalDate,
		QuestType:    in.QuestType,
		Target:       in.Target,
		Progress:     in.Progress,
		RewardPetals: in.RewardPetals,
		IsClaimed:    in.IsClaimed,
		CreatedAt:    now(),
	}
	err := r.v.write(ctx, func(st *state) error {
		for _, existing := range st.Quests {
			if existing.LocalDate == q.LocalDate && existing.QuestType == q.QuestType {
				return fmt.Errorf("quest insert: %s already exists for %s", q.QuestType, q.LocalDate)
			}
		}
		st.Quests = append(st.Quests, q)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questRepo) UpdateQuest(ctx context.Context, id string, up storage.QuestUpdate) (*storage.Quest, error) {
	var out *storage.Quest
	err := r.v.write(ctx, func(st *state) error {
		i := slices.IndexFunc(st.Quests, func(q storage.Quest) bool { return q.ID == id })
		if i < 0 {
			return fmt.Errorf("quest update %s: %w", id, storage.ErrNotFound)
		}
		q := &st.Quests[i]
		if up.Progress != nil {
			q.Progress = *up.Progress
		}
		if up.IsClaimed != nil {
			q.IsClaimed = *up.IsClaimed
		}
		if up.ClaimedAt != nil {
			t := up.ClaimedAt.UTC()
			q.ClaimedAt = &t
		}
		c := *q
		out = &c
		return nil
	})
	return out, err
}

type rewardRepo struct{ v *view }

func (r *rewardRepo) ListLedgerEntries(ctx context.Context, f storage.LedgerFilter) ([]storage.RewardLedgerEntry, error) {
	var out []storage.RewardLedgerEntry
	err := r.v.read(ctx, func(st *state) error {
		out = newestFirst(st.Ledger, f.Limit, nil)
		return nil
	})
	return out, err
}

func (r *rewardRepo) AddLedgerEntry(ctx context.Context, in storage.LedgerEntryInput) (*storage.RewardLedgerEntry, error) {
	e := storage.RewardLedgerEntry{
		ID:          storage.NewID("ledger"),
		LocalDate:   in.LocalDate,
		EventType:   in.EventType,
		SourceType:  in.SourceType,
		SourceID:    in.SourceID,
		ChargeDelta: in.ChargeDelta,
		PetalsDelta: in.PetalsDelta,
		CreatedAt:   now(),
	}
	err := r.v.write(ctx, func(st *state) error {
		st.Ledger = append(st.Ledger, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

type shopRepo struct{ v *view }

func copyItem(it storage.Item) storage.Item {
	it.Metadata = it.Metadata.Clone()
	return it
}

func copyCard(c storage.StoryCard) storage.StoryCard {
	c.ChoiceATraitDeltas = c.ChoiceATraitDeltas.Clone()
	c.ChoiceBTraitDeltas = c.ChoiceBTraitDeltas.Clone()
	return c
}

func copyUserItem(ui storage.UserItem) storage.UserItem {
	ui.Metadata = ui.Metadata.Clone()
	return ui
}

func (r *shopRepo) ListItems(ctx context.Context) ([]storage.Item, error) {
	var out []storage.Item
	err := r.v.read(ctx, func(st *state) error {
		for _, it := range st.Items {
			out = append(out, copyItem(it))
		}
		slices.SortFunc(out, func(a, b storage.Item) int {
			if c := cmp.Compare(a.PricePetals, b.PricePetals); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		})
		return nil
	})
	return out, err
}

func (r *shopRepo) GetItem(ctx context.Context, id string) (*storage.Item, error) {
	var out *storage.Item
	err := r.v.read(ctx, func(st *state) error {
		for _, it := range st.Items {
			if it.ID == id {
				c := copyItem(it)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *shopRepo) UpsertItem(ctx context.Context, it storage.Item) error {
	return r.v.write(ctx, func(st *state) error {
		it := copyItem(it)
		i := slices.IndexFunc(st.Items, func(x storage.Item) bool { return x.ID == it.ID })
		if i >= 0 {
			it.CreatedAt = st.Items[i].CreatedAt
			st.Items[i] = it
			return nil
		}
		if it.CreatedAt.IsZero() {
			it.CreatedAt = now()
		}
		st.Items = append(st.Items, it)
		return nil
	})
}

func (r *shopRepo) ListStoryCards(ctx context.Context) ([]storage.StoryCard, error) {
	var out []storage.StoryCard
	err := r.v.read(ctx, func(st *state) error {
		for _, c := range st.StoryCards {
			out = append(out, copyCard(c))
		}
		slices.SortFunc(out, func(a, b storage.StoryCard) int { return strings.Compare(a.ID, b.ID) })
		return nil
	})
	return out, err
}

func (r *shopRepo) UpsertStoryCard(ctx context.Context, c storage.StoryCard) error {
	return r.v.write(ctx, func(st *state) error {
		c := copyCard(c)
		if c.Rarity == "" {
			c.Rarity = "common"
		}
		i := slices.IndexFunc(st.StoryCards, func(x storage.StoryCard) bool { return x.ID == c.ID })
		if i >= 0 {
			c.CreatedAt = st.StoryCards[i].CreatedAt
			st.StoryCards[i] = c
			return nil
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now()
		}
		st.StoryCards = append(st.StoryCards, c)
		return nil
	})
}

func (r *shopRepo) ListInventory(ctx context.Context) ([]storage.UserItem, error) {
	var out []storage.UserItem
	err := r.v.read(ctx, func(st *state) error {
		for _, ui := range st.Inventory {
			out = append(out, copyUserItem(ui))
		}
		return nil
	})
	return out, err
}

func (r *shopRepo) AddUserItem(ctx context.Context, itemID string, metadata storage.JSONMap) (*storage.UserItem, error) {
	var out storage.UserItem
	err := r.v.write(ctx, func(st *state) error {
		for _, ui := range st.Inventory {
			if ui.ItemID == itemID {
				out = copyUserItem(ui)
				return nil
			}
		}
		if !slices.ContainsFunc(st.Items, func(it storage.Item) bool { return it.ID == itemID }) {
			return fmt.Errorf("user item insert: unknown item %s", itemID)
		}
		out = storage.UserItem{
			ID:         storage.NewID("user_item"),
			ItemID:     itemID,
			AcquiredAt: now(),
			Metadata:   metadata.Clone(),
		}
		st.Inventory = append(st.Inventory, copyUserItem(out))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type bloomRepo struct{ v *view }

func (r *bloomRepo) CreateBloomRun(ctx context.Context, in storage.BloomRunInput) (*storage.BloomRun, error) {
	ts := now()
	started := in.StartedAt
	if started.IsZero() {
		started = ts
	}
	b := storage.BloomRun{
		ID:          storage.NewID("bloom"),
		LocalDate:   in.LocalDate,
		StartedAt:   started.UTC(),
		StoryCardID: in.StoryCardID,
		CreatedAt:   ts,
	}
	err := r.v.write(ctx, func(st *state) error {
		st.BloomRuns = append(st.BloomRuns, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bloomRepo) GetBloomRun(ctx context.Context, id string) (*storage.BloomRun, error) {
	var out *storage.BloomRun
	err := r.v.read(ctx, func(st *state) error {
		for _, b := range st.BloomRuns {
			if b.ID == id {
				b := b
				out = &b
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *bloomRepo) UpdateBloomRun(ctx context.Context, id string, up storage.BloomRunUpdate) (*storage.BloomRun, error) {
	var out *storage.BloomRun
	err := r.v.write(ctx, func(st *state) error {
		i := slices.IndexFunc(st.BloomRuns, func(b storage.BloomRun) bool { return b.ID == id })
		if i < 0 {
			return fmt.Errorf("bloom run update %s: %w", id, storage.ErrNotFound)
		}
		b := &st.BloomRuns[i]
		if up.CompletedAt != nil {
			t := up.CompletedAt.UTC()
			b.CompletedAt = &t
		}
		if up.IsCompleted != nil {
			b.IsCompleted = *up.IsCompleted
		}
		if up.Choice != nil {
			b.Choice = *up.Choice
		}
		if up.PetalsAwarded != nil {
			b.PetalsAwarded = *up.PetalsAwarded
		}
		if up.StickerItemID != nil {
			b.StickerItemID = *up.StickerItemID
		}
		c := *b
		out = &c
		return nil
	})
	return out, err
}

func (r *bloomRepo) ListBloomRuns(ctx context.Context) ([]storage.BloomRun, error) {
	var out []storage.BloomRun
	err := r.v.read(ctx, func(st *state) error {
		out = newestFirst(st.BloomRuns, 0, nil)
		slices.SortStableFunc(out, func(a, b storage.BloomRun) int { return b.StartedAt.Compare(a.StartedAt) })
		return nil
	})
	return out, err
}

func (r *bloomRepo) CreateStoryCardInstance(ctx context.Context, in storage.StoryCardInstanceInput) (*storage.StoryCardInstance, error) {
	s := storage.StoryCardInstance{
		ID:          storage.NewID("story"),
		StoryCardID: in.StoryCardID,
		BloomRunID:  in.BloomRunID,
		CreatedAt:   now(),
	}
	err := r.v.write(ctx, func(st *state) error {
		st.Instances = append(st.Instances, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *bloomRepo) GetStoryCardInstance(ctx context.Context, id string) (*storage.StoryCardInstance, error) {
	var out *storage.StoryCardInstance
	err := r.v.read(ctx, func(st *state) error {
		for _, s := range st.Instances {
			if s.ID == id {
				s := s
				out = &s
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *bloomRepo) UpdateStoryCardInstance(ctx context.Context, id string, up storage.StoryCardInstanceUpdate) (*storage.StoryCardInstance, error) {
	var out *storage.StoryCardInstance
	err := r.v.write(ctx, func(st *state) error {
		i := slices.IndexFunc(st.Instances, func(s storage.StoryCardInstance) bool { return s.ID == id })
		if i < 0 {
			return fmt.Errorf("story instance update %s: %w", id, storage.ErrNotFound)
		}
		s := &st.Instances[i]
		if up.Choice != nil {
			s.Choice = *up.Choice
		}
		if up.ReflectionText != nil {
			s.ReflectionText = up.ReflectionText
		}
		c := *s
		out = &c
		return nil
	})
	return out, err
}

func (r *bloomRepo) ListStoryCardInstances(ctx context.Context) ([]storage.StoryCardInstance, error) {
	var out []storage.StoryCardInstance
	err := r.v.read(ctx, func(st *state) error {
		out = newestFirst(st.Instances, 0, nil)
		return nil
	})
	return out, err
}

type friendRepo struct{ v *view }

func (r *friendRepo) GetFriendCode(ctx context.Context) (string, error) {
	var code string
	err := r.v.read(ctx, func(st *state) error {
		code = st.FriendCode
		return nil
	})
	if err != nil || code != "" {
		return code, err
	}
	err = r.v.write(ctx, func(st *state) error {
		if st.FriendCode == "" {
			st.FriendCode = storage.GenerateFriendCode()
		}
		code = st.FriendCode
		return nil
	})
	return code, err
}

func (r *friendRepo) ListFriends(ctx context.Context) ([]storage.Friend, error) {
	var out []storage.Friend
	err := r.v.read(ctx, func(st *state) error {
		out = append(out, st.Friends...)
		return nil
	})
	return out, err
}

func (r *friendRepo) GetFriend(ctx context.Context, id string) (*storage.Friend, error) {
	var out *storage.Friend
	err := r.v.read(ctx, func(st *state) error {
		for _, f := range st.Friends {
			if f.ID == id {
				f := f
				out = &f
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *friendRepo) AddFriend(ctx context.Context, in storage.FriendInput) (*storage.Friend, error) {
	code := storage.NormalizeFriendCode(in.FriendCode)
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = storage.DefaultFriendName
	}
	var out storage.Friend
	err := r.v.write(ctx, func(st *state) error {
		for _, f := range st.Friends {
			if f.FriendCode == code {
				out = f
				return nil
			}
		}
		out = storage.Friend{
			ID:          storage.NewID("friend"),
			FriendCode:  code,
			DisplayName: name,
			CreatedAt:   now(),
		}
		st.Friends = append(st.Friends, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *friendRepo) ListSupportNotes(ctx context.Context, f storage.SupportNoteFilter) ([]storage.SupportNote, error) {
	var out []storage.SupportNote
	err := r.v.read(ctx, func(st *state) error {
		out = newestFirst(st.Notes, f.Limit, func(n storage.SupportNote) bool {
			return f.FriendID == "" || n.FriendID == f.FriendID
		})
		return nil
	})
	return out, err
}

func (r *friendRepo) AddSupportNote(ctx context.Context, in storage.SupportNoteInput) (*storage.SupportNote, error) {
	n := storage.SupportNote{
		ID:        storage.NewID("note"),
		FriendID:  in.FriendID,
		Direction: in.Direction,
		Message:   in.Message,
		CreatedAt: now(),
	}
	err := r.v.write(ctx, func(st *state) error {
		st.Notes = append(st.Notes, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

type settingsRepo struct{ v *view }

func (r *settingsRepo) GetSettings(ctx context.Context) (storage.Settings, error) {
	var out storage.Settings
	err := r.v.read(ctx, func(st *state) error {
		out = st.Settings
		return nil
	})
	return out, err
}

func (r *settingsRepo) UpdateSettings(ctx context.Context, up storage.SettingsUpdate) (storage.Settings, error) {
	var out storage.Settings
	err := r.v.write(ctx, func(st *state) error {
		if up.PauseMode != nil {
			st.Settings.PauseMode = *up.PauseMode
		}
		out = st.Settings
		return nil
	})
	return out, err
}
