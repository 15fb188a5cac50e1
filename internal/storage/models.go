package storage

import "time"

// JSONMap is a free-form object persisted as JSON (traits, schedules, metadata).
type JSONMap map[string]any

// Clone returns a shallow copy. A nil map clones to an empty map.
func (m JSONMap) Clone() JSONMap {
	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type ActivityType string

const (
	ActivityBreathe  ActivityType = "breathe"
	ActivityFocus    ActivityType = "focus"
	ActivitySound    ActivityType = "sound"
	ActivityReflect  ActivityType = "reflect"
	ActivityFirstAid ActivityType = "first_aid"
)

func (a ActivityType) IsValid() bool {
	switch a {
	case ActivityBreathe, ActivityFocus, ActivitySound, ActivityReflect, ActivityFirstAid:
		return true
	default:
		return false
	}
}

// Choice is the binary answer to a story card.
type Choice string

const (
	ChoiceA Choice = "a"
	ChoiceB Choice = "b"
)

func (c Choice) IsValid() bool {
	return c == ChoiceA || c == ChoiceB
}

type NoteDirection string

const (
	NoteIncoming NoteDirection = "incoming"
	NoteOutgoing NoteDirection = "outgoing"
)

type Companion struct {
	ID              string    `json:"id"`
	PaletteID       string    `json:"paletteId"`
	Charge          int       `json:"charge"`
	PetalsBalance   int       `json:"petalsBalance"`
	Traits          JSONMap   `json:"traits"`
	EquippedItemIDs []string  `json:"equippedItemIds"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type CompanionInput struct {
	PaletteID       string
	Charge          int
	PetalsBalance   int
	Traits          JSONMap
	EquippedItemIDs []string
}

// CompanionUpdate is a partial update; nil fields are left untouched.
type CompanionUpdate struct {
	PaletteID       *string
	Charge          *int
	PetalsBalance   *int
	Traits          JSONMap
	EquippedItemIDs []string
}

type Goal struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Details    *string   `json:"details,omitempty"`
	Schedule   JSONMap   `json:"schedule"`
	IsArchived bool      `json:"isArchived"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type GoalInput struct {
	Title    string
	Details  *string
	Schedule JSONMap
}

type GoalUpdate struct {
	Title      *string
	Details    *string
	Schedule   JSONMap
	IsArchived *bool
}

type GoalFilter struct {
	IncludeArchived bool
}

type GoalCompletion struct {
	ID        string    `json:"id"`
	GoalID    string    `json:"goalId"`
	LocalDate string    `json:"localDate"`
	CreatedAt time.Time `json:"createdAt"`
}

type GoalCompletionInput struct {
	GoalID    string
	LocalDate string
}

type CompletionFilter struct {
	LocalDate string
	GoalID    string
	FromDate  string
	ToDate    string
}

type Checkin struct {
	ID        string    `json:"id"`
	LocalDate string    `json:"localDate"`
	Mood      int       `json:"mood"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CheckinInput struct {
	LocalDate string
	Mood      int
	Note      *string
}

// DateRange filters dated records by inclusive local date bounds. Zero values disable a bound.
type DateRange struct {
	FromDate string
	ToDate   string
	Limit    int
}

type ActivitySession struct {
	ID              string       `json:"id"`
	LocalDate       string       `json:"localDate"`
	ActivityType    ActivityType `json:"activityType"`
	DurationSeconds *int         `json:"durationSeconds,omitempty"`
	Note            *string      `json:"note,omitempty"`
	Metadata        JSONMap      `json:"metadata"`
	CreatedAt       time.Time    `json:"createdAt"`
}

type ActivitySessionInput struct {
	LocalDate       string
	ActivityType    ActivityType
	DurationSeconds *int
	Note            *string
	Metadata        JSONMap
}

type Quest struct {
	ID           string     `json:"id"`
	LocalDate    string     `json:"localDate"`
	QuestType    string     `json:"questType"`
	Target       int        `json:"target"`
	Progress     int        `json:"progress"`
	RewardPetals int        `json:"rewardPetals"`
	IsClaimed    bool       `json:"isClaimed"`
	ClaimedAt    *time.Time `json:"claimedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Complete reports whether progress has reached the target.
func (q Quest) Complete() bool {
	return q.Progress >= q.Target
}

type QuestInput struct {
	LocalDate    string
	QuestType    string
	Target       int
	Progress     int
	RewardPetals int
	IsClaimed    bool
}

type QuestUpdate struct {
	Progress  *int
	IsClaimed *bool
	ClaimedAt *time.Time
}

type QuestFilter struct {
	LocalDate string
}

type RewardLedgerEntry struct {
	ID          string    `json:"id"`
	EventType   string    `json:"eventType"`
	SourceType  string    `json:"sourceType,omitempty"`
	SourceID    string    `json:"sourceId,omitempty"`
	ChargeDelta int       `json:"chargeDelta"`
	PetalsDelta int       `json:"petalsDelta"`
	// LocalDate is the civil day the reward belongs to.
	LocalDate   string    `json:"localDate,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type LedgerEntryInput struct {
	LocalDate   string
	EventType   string
	SourceType  string
	SourceID    string
	ChargeDelta int
	PetalsDelta int
}

type LedgerFilter struct {
	Limit int
}

type Item struct {
	ID          string    `json:"id" yaml:"id"`
	SKU         string    `json:"sku" yaml:"sku"`
	Name        string    `json:"name" yaml:"name"`
	Description *string   `json:"description,omitempty" yaml:"description"`
	Category    string    `json:"category" yaml:"category"`
	PricePetals int       `json:"pricePetals" yaml:"price_petals"`
	Metadata    JSONMap   `json:"metadata" yaml:"metadata"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
}

const CategorySticker = "sticker"

type UserItem struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"itemId"`
	AcquiredAt time.Time `json:"acquiredAt"`
	Metadata   JSONMap   `json:"metadata"`
}

type StoryCard struct {
	ID                 string    `json:"id" yaml:"id"`
	Title              string    `json:"title" yaml:"title"`
	Body               string    `json:"body" yaml:"body"`
	ChoiceAText        string    `json:"choiceAText" yaml:"choice_a_text"`
	ChoiceBText        string    `json:"choiceBText" yaml:"choice_b_text"`
	ChoiceATraitDeltas JSONMap   `json:"choiceATraitDeltas" yaml:"choice_a_trait_deltas"`
	ChoiceBTraitDeltas JSONMap   `json:"choiceBTraitDeltas" yaml:"choice_b_trait_deltas"`
	Rarity             string    `json:"rarity" yaml:"rarity"`
	CreatedAt          time.Time `json:"createdAt" yaml:"-"`
}

// TraitDeltas returns the trait delta map for the given choice.
func (c StoryCard) TraitDeltas(choice Choice) JSONMap {
	if choice == ChoiceA {
		return c.ChoiceATraitDeltas
	}
	return c.ChoiceBTraitDeltas
}

type BloomRun struct {
	ID            string     `json:"id"`
	LocalDate     string     `json:"localDate"`
	StartedAt     time.Time  `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	IsCompleted   bool       `json:"isCompleted"`
	Choice        Choice     `json:"choice,omitempty"`
	StoryCardID   string     `json:"storyCardId,omitempty"`
	PetalsAwarded int        `json:"petalsAwarded"`
	StickerItemID string     `json:"stickerItemId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type BloomRunInput struct {
	LocalDate   string
	StoryCardID string
	StartedAt   time.Time
}

type BloomRunUpdate struct {
	CompletedAt   *time.Time
	IsCompleted   *bool
	Choice        *Choice
	PetalsAwarded *int
	StickerItemID *string
}

type StoryCardInstance struct {
	ID             string    `json:"id"`
	StoryCardID    string    `json:"storyCardId"`
	BloomRunID     string    `json:"bloomRunId,omitempty"`
	Choice         Choice    `json:"choice,omitempty"`
	ReflectionText *string   `json:"reflectionText,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type StoryCardInstanceInput struct {
	StoryCardID string
	BloomRunID  string
}

type StoryCardInstanceUpdate struct {
	Choice         *Choice
	ReflectionText *string
}

type Friend struct {
	ID          string    `json:"id"`
	FriendCode  string    `json:"friendCode"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type FriendInput struct {
	FriendCode  string
	DisplayName string
}

type SupportNote struct {
	ID        string        `json:"id"`
	FriendID  string        `json:"friendId,omitempty"`
	Direction NoteDirection `json:"direction"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"createdAt"`
}

type SupportNoteInput struct {
	FriendID  string
	Direction NoteDirection
	Message   string
}

type SupportNoteFilter struct {
	FriendID string
	Limit    int
}

type Settings struct {
	PauseMode bool `json:"pauseMode"`
}

type SettingsUpdate struct {
	PauseMode *bool
}
