// ABOUTME: Defines lipgloss styles for board lanes, status and priority colors, and the focus bar.
// ABOUTME: Provides StyleForStatus, StyleForPriority, and StyleForMode to map board values to display styles.
package tui

import (
	"github.com/2389-research/gridhq/board/core"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Lane borders
	LaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	// Status colors
	BacklogStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	DoingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	BlockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	DoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	// Priority colors
	LowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	MediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	HighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	UrgentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	// Card decorations
	EpicStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("141")).Bold(true)
	LabelTag     = lipgloss.NewStyle().Foreground(lipgloss.Color("109"))
	OverdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Focus bar
	FocusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	// Detail panel labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// StyleForStatus returns the lane color for a card status.
func StyleForStatus(status core.Status) lipgloss.Style {
	switch status {
	case core.StatusBacklog:
		return BacklogStyle
	case core.StatusDoing:
		return DoingStyle
	case core.StatusBlocked:
		return BlockedStyle
	case core.StatusDone:
		return DoneStyle
	default:
		return BacklogStyle
	}
}

// StyleForPriority returns the color for a card priority.
func StyleForPriority(p core.Priority) lipgloss.Style {
	switch p {
	case core.PriorityLow:
		return LowStyle
	case core.PriorityMedium:
		return MediumStyle
	case core.PriorityHigh:
		return HighStyle
	case core.PriorityUrgent:
		return UrgentStyle
	default:
		return LowStyle
	}
}

// StyleForMode returns the color for a focus mode.
func StyleForMode(m core.Mode) lipgloss.Style {
	switch m {
	case core.ModeWorking:
		return DoingStyle
	case core.ModeWaiting:
		return HighStyle
	case core.ModeSleeping:
		return MutedStyle
	default:
		return BacklogStyle
	}
}
