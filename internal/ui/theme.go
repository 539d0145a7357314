package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"adhdrpg/internal/catalog"
	"adhdrpg/internal/engine"
)

// Shared styles and icons for the CLI and the TUI.

const (
	IconQuest   = "🗺️"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconFail    = "💀"
	IconPause   = "⏸️"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconHeart   = "❤️"
	IconFire    = "🔥"
	IconCoin    = "🪙"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconGem     = "💎"
	IconLoop    = "🔁"
	IconScroll  = "📜"
	IconTimer   = "⏳"
	IconChat    = "💬"
	IconUndo    = "↩️"
)

var (
	cPrimary = lipgloss.Color("63")
	cAccent  = lipgloss.Color("205")
	cGood    = lipgloss.Color("42")
	cWarn    = lipgloss.Color("214")
	cBad     = lipgloss.Color("196")
	cMuted   = lipgloss.Color("244")
	cGold    = lipgloss.Color("220")
	cRare    = lipgloss.Color("39")
	cEpic    = lipgloss.Color("129")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

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

func StatusText(s engine.QuestStatus) string {
	switch s {
	case engine.StatusCompleted:
		return Good.Render("completed")
	case engine.StatusActive:
		return H2.Render("active")
	case engine.StatusPaused:
		return Warn.Render("paused")
	case engine.StatusFailed:
		return Bad.Render("failed")
	default:
		return Muted.Render(string(s))
	}
}

func StatusIcon(s engine.QuestStatus) string {
	switch s {
	case engine.StatusCompleted:
		return IconDone
	case engine.StatusFailed:
		return IconFail
	case engine.StatusPaused:
		return IconPause
	default:
		return IconQuest
	}
}

func DifficultyText(d engine.Difficulty) string {
	switch d {
	case engine.DifficultyEasy:
		return Good.Render(string(d))
	case engine.DifficultyHard:
		return Warn.Render(string(d))
	case engine.DifficultyEpic:
		return Bad.Render(string(d))
	default:
		return H2.Render(string(d))
	}
}

func RarityText(r catalog.Rarity) string {
	style := Muted
	switch r {
	case catalog.RarityUncommon:
		style = Good
	case catalog.RarityRare:
		style = lipgloss.NewStyle().Bold(true).Foreground(cRare)
	case catalog.RarityEpic:
		style = lipgloss.NewStyle().Bold(true).Foreground(cEpic)
	case catalog.RarityLegendary:
		style = Gold
	}
	return style.Render(string(r))
}

// Meter renders a fixed-width bar such as [#####-----].
func Meter(value, maxValue, width int) string {
	if width <= 0 {
		width = 10
	}
	filled := 0
	if maxValue > 0 {
		filled = min(max(value*width/maxValue, 0), width)
	}
	return "[" + strings.Repeat("#", filled) + Muted.Render(strings.Repeat("-", width-filled)) + "]"
}

// NoticeText styles an engine notice for display.
func NoticeText(n engine.Notice) string {
	switch n.Kind {
	case engine.NoticeLevelUp:
		return BadgeLevelUp + " " + n.Message
	case engine.NoticeAchievement:
		return Gold.Render(IconTrophy+" "+n.Message)
	case engine.NoticeStreakBroken:
		return Warn.Render(IconWarn + " " + n.Message)
	case engine.NoticeCollectible:
		return Good.Render(IconGem + " " + n.Message)
	case engine.NoticeMilestone:
		return Gold.Render(IconFire + " " + n.Message)
	default:
		return Muted.Render(IconSparkle + " " + n.Message)
	}
}
