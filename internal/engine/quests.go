package engine

const (
	QuestCheckin1  = "checkin_1"
	QuestGoals3    = "goals_3"
	QuestActivity1 = "activity_1"
)

// QuestRewardPetals is the flat petals reward of every daily quest.
const QuestRewardPetals = 10

type QuestTemplate struct {
	Type   string
	Target int
}

// DailyQuestTemplates returns the quests seeded for a day. The date is
// currently unused; every day gets the same three quests.
func DailyQuestTemplates(date string) []QuestTemplate {
	_ = date
	return []QuestTemplate{
		{Type: QuestCheckin1, Target: 1},
		{Type: QuestGoals3, Target: 3},
		{Type: QuestActivity1, Target: 1},
	}
}

func IsKnownQuestType(questType string) bool {
	switch questType {
	case QuestCheckin1, QuestGoals3, QuestActivity1:
		return true
	default:
		return false
	}
}

// ProgressDelta is how far ev advances a quest of the given type.
func ProgressDelta(questType string, ev RewardEvent) int {
	switch {
	case questType == QuestCheckin1 && ev.Kind() == EventCheckin:
		return 1
	case questType == QuestGoals3 && ev.Kind() == EventGoalComplete:
		return 1
	case questType == QuestActivity1 && ev.Kind() == EventActivityComplete:
		return 1
	default:
		return 0
	}
}

// QuestTitle is the display label for a quest type.
func QuestTitle(questType string) string {
	switch questType {
	case QuestCheckin1:
		return "Check in once"
	case QuestGoals3:
		return "Complete 3 goals"
	case QuestActivity1:
		return "Finish 1 activity"
	default:
		return questType
	}
}
