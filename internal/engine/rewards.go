package engine

import "fmt"

type EventKind string

const (
	EventCheckin          EventKind = "checkin"
	EventGoalComplete     EventKind = "goal_complete"
	EventActivityComplete EventKind = "activity_complete"
	EventQuestClaim       EventKind = "quest_claim"
	EventBloomComplete    EventKind = "bloom_complete"
)

// RewardEvent is a game event that earns charge or petals. The set of
// implementations is closed: only this package can add one.
type RewardEvent interface {
	Kind() EventKind
	// SourceID is the id of the record that produced the event.
	SourceID() string
	rewardEvent()
}

type CheckinEvent struct {
	CheckinID string
}

type GoalCompleteEvent struct {
	GoalID       string
	CompletionID string
}

type ActivityCompleteEvent struct {
	SessionID    string
	ActivityType string
}

type QuestClaimEvent struct {
	QuestID string
}

type BloomCompleteEvent struct {
	BloomRunID string
}

func (CheckinEvent) Kind() EventKind          { return EventCheckin }
func (GoalCompleteEvent) Kind() EventKind     { return EventGoalComplete }
func (ActivityCompleteEvent) Kind() EventKind { return EventActivityComplete }
func (QuestClaimEvent) Kind() EventKind       { return EventQuestClaim }
func (BloomCompleteEvent) Kind() EventKind    { return EventBloomComplete }

func (e CheckinEvent) SourceID() string          { return e.CheckinID }
func (e GoalCompleteEvent) SourceID() string     { return e.CompletionID }
func (e ActivityCompleteEvent) SourceID() string { return e.SessionID }
func (e QuestClaimEvent) SourceID() string       { return e.QuestID }
func (e BloomCompleteEvent) SourceID() string    { return e.BloomRunID }

func (CheckinEvent) rewardEvent()          {}
func (GoalCompleteEvent) rewardEvent()     {}
func (ActivityCompleteEvent) rewardEvent() {}
func (QuestClaimEvent) rewardEvent()       {}
func (BloomCompleteEvent) rewardEvent()    {}

type Reward struct {
	ChargeDelta int
	PetalsDelta int
}

// ComputeReward maps an event to its fixed charge and petals deltas.
// An event type without a table entry is a programming error and panics.
func ComputeReward(ev RewardEvent) Reward {
	switch ev.(type) {
	case CheckinEvent:
		return Reward{ChargeDelta: 10, PetalsDelta: 2}
	case GoalCompleteEvent:
		return Reward{ChargeDelta: 8, PetalsDelta: 3}
	case ActivityCompleteEvent:
		return Reward{ChargeDelta: 6, PetalsDelta: 2}
	case QuestClaimEvent:
		return Reward{ChargeDelta: 0, PetalsDelta: 10}
	case BloomCompleteEvent:
		return Reward{ChargeDelta: 0, PetalsDelta: 12}
	default:
		panic(fmt.Sprintf("engine: no reward for event type %T", ev))
	}
}

// ClampCharge bounds charge to 0..MaxCharge.
func ClampCharge(v int) int {
	return min(MaxCharge, max(0, v))
}
