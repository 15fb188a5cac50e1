package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabdoteth/sappy-care/internal/catalog"
	"github.com/wabdoteth/sappy-care/internal/engine"
	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/storage/filestore"
)

func newTestBoard(t *testing.T) (boardModel, *engine.Service) {
	t.Helper()
	ctx := context.Background()
	store := filestore.OpenMemory()
	cat, err := catalog.Default()
	require.NoError(t, err)
	require.NoError(t, cat.Seed(ctx, store.Repos().Shop))
	clock := engine.NewFakeClock(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC))
	svc := engine.NewService(store, engine.WithClock(clock))
	_, err = svc.Onboard(ctx, "")
	require.NoError(t, err)
	return newBoardModel(ctx, svc), svc
}

// step applies msg and runs any returned command once, feeding its message back.
func step(t *testing.T, m boardModel, msg tea.Msg) boardModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(boardModel)
	if cmd != nil {
		if out := cmd(); out != nil {
			next, _ = m.Update(out)
			m = next.(boardModel)
		}
	}
	return m
}

func load(t *testing.T, m boardModel) boardModel {
	t.Helper()
	msg := m.Init()()
	next, _ := m.Update(msg)
	return next.(boardModel)
}

func TestBoardLoadsStatus(t *testing.T) {
	m, _ := newTestBoard(t)
	assert.Contains(t, m.View(), "loading")

	m = load(t, m)
	require.NotNil(t, m.status)
	assert.Len(t, m.status.Quests, 3)

	view := m.View()
	assert.Contains(t, view, "2025-01-06")
	assert.Contains(t, view, "Daily quests")
	assert.Contains(t, view, "Check in once")
}

func TestBoardCompletesGoalFromGoalPane(t *testing.T) {
	m, svc := newTestBoard(t)
	ctx := context.Background()
	_, err := svc.CreateGoal(ctx, "Drink water", nil, nil)
	require.NoError(t, err)

	m = load(t, m)
	require.Len(t, m.status.Goals, 1)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneGoals, m.focus)

	m = step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Contains(t, m.lastLog, "Completed \"Drink water\"")

	// the action triggers a reload; run it
	m = load(t, m)
	require.Len(t, m.status.Goals, 1)
	assert.True(t, m.status.Goals[0].Done)
	assert.Equal(t, 8, m.status.Companion.Charge)
}

func TestBoardRefusesUnfinishedQuestClaim(t *testing.T) {
	m, _ := newTestBoard(t)
	m = load(t, m)

	m = step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Contains(t, m.lastLog, "Keep going")
}

func TestBoardBloomNeedsCharge(t *testing.T) {
	m, _ := newTestBoard(t)
	m = load(t, m)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	assert.Contains(t, m.lastLog, "Need 60 charge")
	assert.Nil(t, m.pending)
}

func TestBoardBloomFlow(t *testing.T) {
	m, svc := newTestBoard(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.RecordActivity(ctx, storage.ActivitySessionInput{ActivityType: storage.ActivityBreathe})
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := svc.RecordCheckin(ctx, storage.CheckinInput{Mood: 3})
		require.NoError(t, err)
	}

	m = load(t, m)
	require.True(t, m.status.CanBloom())

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	assert.Contains(t, m.lastLog, "Bloom started")

	m = load(t, m)
	require.NotNil(t, m.pending)
	assert.Contains(t, m.View(), m.pending.Card.ChoiceAText)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	assert.Contains(t, m.lastLog, "Bloomed! +12 petals")

	m = load(t, m)
	assert.Nil(t, m.pending)
	assert.Equal(t, 0, m.status.Companion.Charge)
}

func TestBoardNavigationClamps(t *testing.T) {
	m, _ := newTestBoard(t)
	m = load(t, m)

	for i := 0; i < 5; i++ {
		m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 2, m.selected[paneQuests])

	m = step(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.selected[paneQuests])
}

func TestBoardQuit(t *testing.T) {
	m, _ := newTestBoard(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
