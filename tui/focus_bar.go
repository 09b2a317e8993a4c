// ABOUTME: Single-line focus bar showing the current mode, message, and how long ago it changed.
package tui

import (
	"fmt"
	"time"

	"github.com/2389-research/gridhq/board/core"
	"github.com/dustin/go-humanize"
)

// FocusBar renders the focus record in one line.
type FocusBar struct {
	focus core.FocusRecord
	now   time.Time
	width int
}

// NewFocusBar creates a bar for focus as of now.
func NewFocusBar(focus core.FocusRecord, now time.Time) FocusBar {
	return FocusBar{focus: focus, now: now}
}

// SetWidth sets the bar width for rendering.
func (b *FocusBar) SetWidth(w int) {
	b.width = w
}

// View renders the bar as a single styled line.
func (b FocusBar) View() string {
	mode := b.focus.Mode
	if mode == "" {
		mode = core.ModeIdle
	}
	content := "Focus: " + StyleForMode(mode).Render(string(mode))
	if b.focus.Message != "" {
		content += " | " + b.focus.Message
	}
	if b.focus.UpdatedAt != nil {
		content += fmt.Sprintf(" | %s", humanize.RelTime(*b.focus.UpdatedAt, b.now, "ago", "from now"))
	}
	style := FocusBarStyle
	if b.width > 0 {
		style = style.Width(b.width)
	}
	return style.Render(content)
}
