package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wabdoteth/sappy-care/internal/engine"
	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/ui"
)

type pane int

const (
	paneQuests pane = iota
	paneGoals
)

type boardModel struct {
	ctx  context.Context
	svc  *engine.Service
	keys KeyMap

	width  int
	height int

	status  *engine.Status
	pending *engine.BloomStart

	focus    pane
	selected map[pane]int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	status  *engine.Status
	pending *engine.BloomStart
	err     error
}

type actionMsg struct {
	log string
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:      ctx,
		svc:      svc,
		keys:     DefaultKeyMap(),
		selected: map[pane]int{},
		loading:  true,
		lastLog:  "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.svc.EnsureDailyQuests(m.ctx, ""); err != nil {
			return loadedMsg{err: err}
		}
		st, err := m.svc.Status(m.ctx, "")
		if err != nil {
			return loadedMsg{err: err}
		}
		pending, err := m.svc.PendingBloom(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{status: st, pending: pending}
	}
}

func (m boardModel) claimCmd(q storage.Quest) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.svc.ClaimQuest(m.ctx, q.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{log: fmt.Sprintf("Claimed %q: +%d petals", engine.QuestTitle(q.QuestType), q.RewardPetals)}
	}
}

func (m boardModel) completeGoalCmd(g storage.Goal) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteGoalByID(m.ctx, g.ID, "")
		if err != nil {
			return actionMsg{err: err}
		}
		if !res.Created {
			return actionMsg{log: fmt.Sprintf("%q was already done today.", g.Title)}
		}
		return actionMsg{log: fmt.Sprintf("Completed %q: +%d charge, +%d petals", g.Title, res.Reward.ChargeDelta, res.Reward.PetalsDelta)}
	}
}

func (m boardModel) startBloomCmd() tea.Cmd {
	return func() tea.Msg {
		start, err := m.svc.StartBloom(m.ctx, "")
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{log: fmt.Sprintf("Bloom started: %s. Press 1 or 2 to choose.", start.Card.Title)}
	}
}

func (m boardModel) completeBloomCmd(p engine.BloomStart, choice storage.Choice) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteBloom(m.ctx, engine.CompleteBloomInput{
			BloomRunID:      p.Run.ID,
			StoryInstanceID: p.Instance.ID,
			Choice:          choice,
		})
		if err != nil {
			return actionMsg{err: err}
		}
		msg := fmt.Sprintf("Bloomed! +%d petals", res.PetalsAwarded)
		if res.StickerItemID != "" {
			msg += ", sticker " + res.StickerItemID
		}
		return actionMsg{log: msg}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		m.pending = msg.pending
		m.clampSelection()
		return m, nil
	case FileChangedMsg:
		return m, m.loadCmd()
	case actionMsg:
		if msg.err != nil {
			m.lastLog = msg.err.Error()
			return m, nil
		}
		m.lastLog = msg.log
		return m, m.loadCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, m.loadCmd()
	case key.Matches(msg, m.keys.Tab):
		if m.focus == paneQuests {
			m.focus = paneGoals
		} else {
			m.focus = paneQuests
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.selected[m.focus] > 0 {
			m.selected[m.focus]--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.selected[m.focus] < m.rows(m.focus)-1 {
			m.selected[m.focus]++
		}
		return m, nil
	case key.Matches(msg, m.keys.Act):
		return m.act()
	case key.Matches(msg, m.keys.Bloom):
		if m.status == nil {
			return m, nil
		}
		if m.pending != nil {
			m.lastLog = "A bloom is waiting for your choice: press 1 or 2."
			return m, nil
		}
		if !m.status.CanBloom() {
			m.lastLog = fmt.Sprintf("Need %d charge to bloom (have %d).", engine.BloomThreshold, m.status.Companion.Charge)
			return m, nil
		}
		return m, m.startBloomCmd()
	case key.Matches(msg, m.keys.ChooseA), key.Matches(msg, m.keys.ChooseB):
		if m.pending == nil {
			return m, nil
		}
		choice := storage.ChoiceA
		if key.Matches(msg, m.keys.ChooseB) {
			choice = storage.ChoiceB
		}
		return m, m.completeBloomCmd(*m.pending, choice)
	}
	return m, nil
}

func (m boardModel) act() (tea.Model, tea.Cmd) {
	if m.status == nil {
		return m, nil
	}
	i := m.selected[m.focus]
	switch m.focus {
	case paneQuests:
		if i >= len(m.status.Quests) {
			return m, nil
		}
		q := m.status.Quests[i]
		switch {
		case q.IsClaimed:
			m.lastLog = "Already claimed."
			return m, nil
		case !q.Complete():
			m.lastLog = fmt.Sprintf("Keep going: %d/%d.", q.Progress, q.Target)
			return m, nil
		}
		return m, m.claimCmd(q)
	case paneGoals:
		if i >= len(m.status.Goals) {
			return m, nil
		}
		return m, m.completeGoalCmd(m.status.Goals[i].Goal)
	}
	return m, nil
}

func (m boardModel) rows(p pane) int {
	if m.status == nil {
		return 0
	}
	if p == paneQuests {
		return len(m.status.Quests)
	}
	return len(m.status.Goals)
}

func (m *boardModel) clampSelection() {
	for _, p := range []pane{paneQuests, paneGoals} {
		n := m.rows(p)
		if m.selected[p] >= n {
			m.selected[p] = max(0, n-1)
		}
	}
}

func (m boardModel) View() string {
	if m.err != nil {
		return ui.Bad.Render("Error: "+m.err.Error()) + "\n\nPress q to quit.\n"
	}
	if m.status == nil {
		return "Sappy | loading…"
	}

	left := ui.Panel.Render(m.renderCompanion())
	right := lipgloss.JoinVertical(lipgloss.Left,
		ui.Panel.Render(m.renderQuests()),
		ui.Panel.Render(m.renderGoals()),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	var b strings.Builder
	b.WriteString(ui.Heading(ui.IconSeal, "Sappy | "+m.status.Date))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	if m.pending != nil {
		b.WriteString(m.renderBloom())
		b.WriteString("\n")
	}
	b.WriteString(m.lastLog)
	b.WriteString("\n")
	b.WriteString(ui.Muted.Render(m.keys.ShortHelp()))
	return b.String()
}

func (m boardModel) renderCompanion() string {
	c := m.status.Companion
	name := lipgloss.NewStyle().Bold(true).Foreground(ui.PaletteColor(c.PaletteID)).Render(ui.PaletteName(c.PaletteID) + " seal")
	lines := []string{
		ui.PanelTitle.Render("Companion"),
		name,
		ui.ChargeBar(c.Charge, engine.MaxCharge, engine.BloomThreshold, 14),
		ui.Petals(c.PetalsBalance),
	}
	if m.status.CanBloom() {
		lines = append(lines, ui.BadgeBloom)
	}
	if m.status.Settings.PauseMode {
		lines = append(lines, ui.Muted.Render(ui.IconPause+" paused"))
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderQuests() string {
	lines := []string{ui.PanelTitle.Render(ui.IconQuest + " Daily quests")}
	if len(m.status.Quests) == 0 {
		lines = append(lines, ui.Muted.Render("(none)"))
	}
	for i, q := range m.status.Quests {
		row := fmt.Sprintf("%s  %s", engine.QuestTitle(q.QuestType), ui.QuestState(q.Progress, q.Target, q.IsClaimed))
		lines = append(lines, m.cursor(paneQuests, i)+row)
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderGoals() string {
	lines := []string{ui.PanelTitle.Render(ui.IconGoal + " Due today")}
	if len(m.status.Goals) == 0 {
		lines = append(lines, ui.Muted.Render("(nothing due)"))
	}
	for i, g := range m.status.Goals {
		row := fmt.Sprintf("%s %s", ui.Check(g.Done), g.Goal.Title)
		lines = append(lines, m.cursor(paneGoals, i)+row)
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderBloom() string {
	card := m.pending.Card
	return ui.Panel.Render(strings.Join([]string{
		ui.PanelTitle.Render(ui.IconBloom + " " + card.Title),
		card.Body,
		"1) " + card.ChoiceAText,
		"2) " + card.ChoiceBText,
	}, "\n"))
}

func (m boardModel) cursor(p pane, i int) string {
	if m.focus == p && m.selected[p] == i {
		return "> "
	}
	return "  "
}
