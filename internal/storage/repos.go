package storage

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by updates that target a missing row.
var ErrNotFound = errors.New("not found")

// ErrNegativeBalance is returned when an update would take petals below zero.
var ErrNegativeBalance = errors.New("petals balance cannot be negative")

// ErrChargeRange is returned when an update would move charge outside 0..100.
var ErrChargeRange = errors.New("charge must be within 0..100")

type CompanionRepo interface {
	// GetCompanion returns nil, nil when no companion has been created yet.
	GetCompanion(ctx context.Context) (*Companion, error)
	CreateCompanion(ctx context.Context, in CompanionInput) (*Companion, error)
	UpdateCompanion(ctx context.Context, id string, up CompanionUpdate) (*Companion, error)
}

type GoalRepo interface {
	ListGoals(ctx context.Context, f GoalFilter) ([]Goal, error)
	GetGoal(ctx context.Context, id string) (*Goal, error)
	CreateGoal(ctx context.Context, in GoalInput) (*Goal, error)
	UpdateGoal(ctx context.Context, id string, up GoalUpdate) (*Goal, error)
	ListCompletions(ctx context.Context, f CompletionFilter) ([]GoalCompletion, error)
	// CreateCompletion is idempotent per (goal, date). created is false when an
	// existing completion was returned.
	CreateCompletion(ctx context.Context, in GoalCompletionInput) (c *GoalCompletion, created bool, err error)
}

type CheckinRepo interface {
	ListCheckins(ctx context.Context, f DateRange) ([]Checkin, error)
	CreateCheckin(ctx context.Context, in CheckinInput) (*Checkin, error)
}

type ActivityRepo interface {
	ListSessions(ctx context.Context, f DateRange) ([]ActivitySession, error)
	CreateSession(ctx context.Context, in ActivitySessionInput) (*ActivitySession, error)
}

type QuestRepo interface {
	ListQuests(ctx context.Context, f QuestFilter) ([]Quest, error)
	GetQuest(ctx context.Context, id string) (*Quest, error)
	CreateQuest(ctx context.Context, in QuestInput) (*Quest, error)
	UpdateQuest(ctx context.Context, id string, up QuestUpdate) (*Quest, error)
}

type RewardRepo interface {
	// ListLedgerEntries returns newest first.
	ListLedgerEntries(ctx context.Context, f LedgerFilter) ([]RewardLedgerEntry, error)
	AddLedgerEntry(ctx context.Context, in LedgerEntryInput) (*RewardLedgerEntry, error)
}

type ShopRepo interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	// ListStoryCards returns cards ordered by id.
	ListStoryCards(ctx context.Context) ([]StoryCard, error)
	ListInventory(ctx context.Context) ([]UserItem, error)
	// AddUserItem is idempotent per item id.
	AddUserItem(ctx context.Context, itemID string, metadata JSONMap) (*UserItem, error)
	UpsertItem(ctx context.Context, it Item) error
	UpsertStoryCard(ctx context.Context, c StoryCard) error
}

type BloomRepo interface {
	CreateBloomRun(ctx context.Context, in BloomRunInput) (*BloomRun, error)
	GetBloomRun(ctx context.Context, id string) (*BloomRun, error)
	UpdateBloomRun(ctx context.Context, id string, up BloomRunUpdate) (*BloomRun, error)
	// ListBloomRuns returns newest first.
	ListBloomRuns(ctx context.Context) ([]BloomRun, error)
	CreateStoryCardInstance(ctx context.Context, in StoryCardInstanceInput) (*StoryCardInstance, error)
	GetStoryCardInstance(ctx context.Context, id string) (*StoryCardInstance, error)
	UpdateStoryCardInstance(ctx context.Context, id string, up StoryCardInstanceUpdate) (*StoryCardInstance, error)
	ListStoryCardInstances(ctx context.Context) ([]StoryCardInstance, error)
}

type FriendRepo interface {
	GetFriendCode(ctx context.Context) (string, error)
	ListFriends(ctx context.Context) ([]Friend, error)
	GetFriend(ctx context.Context, id string) (*Friend, error)
	// AddFriend is idempotent per normalised friend code.
	AddFriend(ctx context.Context, in FriendInput) (*Friend, error)
	ListSupportNotes(ctx context.Context, f SupportNoteFilter) ([]SupportNote, error)
	AddSupportNote(ctx context.Context, in SupportNoteInput) (*SupportNote, error)
}

type SettingsRepo interface {
	GetSettings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, up SettingsUpdate) (Settings, error)
}

// Repos is the full repository surface. Friends is optional and may be nil.
type Repos struct {
	Companion CompanionRepo
	Goals     GoalRepo
	Checkins  CheckinRepo
	Activity  ActivityRepo
	Quests    QuestRepo
	Rewards   RewardRepo
	Shop      ShopRepo
	Bloom     BloomRepo
	Friends   FriendRepo
	Settings  SettingsRepo
}

// Store is a storage backend.
type Store interface {
	// Repos returns a non-transactional view.
	Repos() Repos
	// Atomic runs fn against a transactional view. Any error from fn discards every
	// write made through the view.
	Atomic(ctx context.Context, fn func(r Repos) error) error
	// Reset deletes all user data but keeps the seeded catalog.
	Reset(ctx context.Context) error
	Close() error
}

// NewID returns a prefixed random identifier, e.g. "checkin_6f1c...".
func NewID(prefix string) string {
	if prefix == "" {
		prefix = "id"
	}
	return prefix + "_" + uuid.NewString()
}

// NormalizeFriendCode trims and upper-cases a friend code.
func NormalizeFriendCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GenerateFriendCode returns a code of the form SEAL-NNNNNN.
func GenerateFriendCode() string {
	return fmt.Sprintf("SEAL-%06d", 100000+rand.IntN(900000))
}

const DefaultFriendName = "Seal buddy"

// CheckCompanionBounds validates the storage-level constraints on a companion.
func CheckCompanionBounds(c Companion) error {
	if c.Charge < 0 || c.Charge > 100 {
		return fmt.Errorf("%w: %d", ErrChargeRange, c.Charge)
	}
	if c.PetalsBalance < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeBalance, c.PetalsBalance)
	}
	return nil
}
