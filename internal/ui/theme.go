package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sappy theme (CLI + TUI): shared styles, icons and small renderers.

const (
	IconSeal    = "🦭"
	IconPetal   = "🌸"
	IconBolt    = "⚡"
	IconQuest   = "🗺️"
	IconGoal    = "🎯"
	IconDone    = "✅"
	IconBloom   = "🌺"
	IconSticker = "⭐"
	IconShop    = "🛍️"
	IconHeart   = "💌"
	IconPause   = "⏸️"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconScroll  = "📜"
)

var (
	cPrimary = lipgloss.Color("#2EBBC7")
	cAccent  = lipgloss.Color("#FFB05C")
	cGood    = lipgloss.Color("#6FD4B5")
	cWarn    = lipgloss.Color("#FFB285")
	cBad     = lipgloss.Color("196")
	cMuted   = lipgloss.Color("244")
	cPetal   = lipgloss.Color("#F08C5D")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Petal = lipgloss.NewStyle().Bold(true).Foreground(cPetal)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(cPrimary)

	BadgeBloom = lipgloss.NewStyle().Bold(true).Foreground(cAccent).Render("READY TO BLOOM")
)

// PaletteColor is the primary colour of a companion palette.
func PaletteColor(paletteID string) lipgloss.Color {
	switch paletteID {
	case "blush":
		return lipgloss.Color("#F08C5D")
	case "mint":
		return lipgloss.Color("#4EBB97")
	default:
		return cPrimary
	}
}

// PaletteName is the display name of a palette id.
func PaletteName(paletteID string) string {
	switch paletteID {
	case "blush":
		return "Sunbathe"
	case "mint":
		return "Kelp"
	default:
		return "Lagoon"
	}
}

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Petals renders a petal amount, e.g. "🌸 12".
func Petals(n int) string {
	return Petal.Render(fmt.Sprintf("%s %d", IconPetal, n))
}

// ChargeBar renders charge out of max as a bar, marking the bloom threshold.
func ChargeBar(charge, limit, threshold, width int) string {
	if width < 4 {
		width = 4
	}
	bar := ProgressBar(charge, limit, width)
	style := H2
	if charge >= threshold {
		style = Good
	}
	return fmt.Sprintf("%s %s %d/%d", IconBolt, style.Render(bar), charge, limit)
}

func ProgressBar(value, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	value = min(max(value, 0), total)
	filled := value * width / total
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// MoodFace maps a 1..5 mood to a face.
func MoodFace(mood int) string {
	switch mood {
	case 1:
		return "😞"
	case 2:
		return "😕"
	case 3:
		return "😐"
	case 4:
		return "🙂"
	case 5:
		return "😄"
	default:
		return "·"
	}
}

// QuestState renders a quest's progress and claim state.
func QuestState(progress, target int, claimed bool) string {
	switch {
	case claimed:
		return Muted.Render("claimed")
	case progress >= target:
		return Good.Render("ready to claim")
	default:
		return Warn.Render(fmt.Sprintf("%d/%d", progress, target))
	}
}

func Check(done bool) string {
	if done {
		return Good.Render("[x]")
	}
	return Muted.Render("[ ]")
}
