// ABOUTME: Renders the board as side-by-side lipgloss lanes, one per status, for terminal output.
// ABOUTME: Static rendering only: the CLI prints the result once.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/2389-research/gridhq/board/core"
	"github.com/charmbracelet/lipgloss"
)

// minLaneWidth keeps narrow terminals readable; lanes then wrap past the edge.
const minLaneWidth = 24

// BoardView renders cards grouped into status lanes.
type BoardView struct {
	cards []core.Card
	focus core.FocusRecord
	now   time.Time
	width int
}

// NewBoardView creates a view over cards as of now.
func NewBoardView(cards []core.Card, focus core.FocusRecord, now time.Time) BoardView {
	return BoardView{cards: cards, focus: focus, now: now, width: 120}
}

// SetWidth sets the total terminal width shared by the lanes.
func (v *BoardView) SetWidth(w int) {
	if w > 0 {
		v.width = w
	}
}

func (v BoardView) laneWidth() int {
	// Each lane spends two columns on borders and two on padding.
	w := v.width/len(core.Statuses) - 4
	if w < minLaneWidth {
		return minLaneWidth
	}
	return w
}

// View renders the focus bar above the lanes.
func (v BoardView) View() string {
	byStatus := make(map[core.Status][]core.Card, len(core.Statuses))
	for _, c := range v.cards {
		byStatus[c.Status] = append(byStatus[c.Status], c)
	}

	lanes := make([]string, 0, len(core.Statuses))
	for _, s := range core.Statuses {
		lanes = append(lanes, v.renderLane(s, byStatus[s]))
	}

	bar := NewFocusBar(v.focus, v.now)
	bar.SetWidth(v.width)
	return bar.View() + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, lanes...)
}

func (v BoardView) renderLane(status core.Status, cards []core.Card) string {
	width := v.laneWidth()
	header := StyleForStatus(status).Render(fmt.Sprintf("%s (%d)", strings.ToUpper(string(status)), len(cards)))

	lines := []string{header, ""}
	if len(cards) == 0 {
		lines = append(lines, MutedStyle.Render("empty"))
	}
	for _, c := range cards {
		lines = append(lines, v.renderCardLine(c, width))
	}
	return LaneStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (v BoardView) renderCardLine(c core.Card, width int) string {
	var b strings.Builder
	if v.focus.FocusCardID != nil && *v.focus.FocusCardID == c.ID {
		b.WriteString("▶ ")
	}
	if c.IsEpic {
		b.WriteString(EpicStyle.Render("◆") + " ")
	}
	b.WriteString(truncate(c.Title, width-4))

	var meta []string
	if c.Priority != nil {
		meta = append(meta, StyleForPriority(*c.Priority).Render(string(*c.Priority)))
	}
	if c.Overdue(v.now) && c.Status != core.StatusDone {
		meta = append(meta, OverdueStyle.Render("overdue"))
	}
	for _, l := range c.Labels {
		if !strings.EqualFold(l, core.EpicLabel) {
			meta = append(meta, LabelTag.Render("#"+l))
		}
	}
	meta = append(meta, MutedStyle.Render(shortID(c.ID)))
	return b.String() + "\n  " + strings.Join(meta, " ")
}

// truncate shortens s to n runes, appending "…" when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 1 || len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// shortID shows the random tail of a ULID, which is what distinguishes
// cards created in the same millisecond.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
