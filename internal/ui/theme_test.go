package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[----------]", ProgressBar(0, 100, 10))
	assert.Equal(t, "[######----]", ProgressBar(60, 100, 10))
	assert.Equal(t, "[##########]", ProgressBar(140, 100, 10))
	assert.Equal(t, "[---]", ProgressBar(-3, 0, 1))
}

func TestMoodFace(t *testing.T) {
	assert.Equal(t, "😄", MoodFace(5))
	assert.Equal(t, "·", MoodFace(0))
}

func TestPaletteName(t *testing.T) {
	assert.Equal(t, "Lagoon", PaletteName("sky"))
	assert.Equal(t, "Sunbathe", PaletteName("blush"))
	assert.Equal(t, "Lagoon", PaletteName("unknown"))
}

func TestQuestStateMentionsProgress(t *testing.T) {
	assert.Contains(t, QuestState(1, 3, false), "1/3")
	assert.Contains(t, QuestState(3, 3, false), "ready to claim")
	assert.Contains(t, QuestState(3, 3, true), "claimed")
}
