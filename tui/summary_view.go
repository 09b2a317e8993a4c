// ABOUTME: Renders the board summary as labeled rows.
package tui

import (
	"fmt"
	"strings"

	"github.com/2389-research/gridhq/board/core"
)

// RenderSummary renders s.
func RenderSummary(s core.Summary) string {
	var lines []string
	lines = append(lines, TitleStyle.Render(fmt.Sprintf("Board: %d active cards", s.Total)), "")
	for _, st := range core.Statuses {
		lines = append(lines, LabelStyle.Render(string(st))+StyleForStatus(st).Render(fmt.Sprintf("%d", s.ByStatus[st])))
	}
	lines = append(lines, "")
	for _, p := range core.Priorities {
		lines = append(lines, LabelStyle.Render(string(p))+StyleForPriority(p).Render(fmt.Sprintf("%d", s.ByPriority[p])))
	}
	lines = append(lines, "")
	overdue := fmt.Sprintf("%d", s.Overdue)
	if s.Overdue > 0 {
		overdue = OverdueStyle.Render(overdue)
	}
	lines = append(lines, LabelStyle.Render("overdue")+overdue)
	lines = append(lines, LabelStyle.Render("epics")+ValueStyle.Render(
		fmt.Sprintf("%d (%d with children, %d orphaned children)", s.Epics.Total, s.Epics.WithChildren, s.Epics.OrphanChildren)))
	return strings.Join(lines, "\n")
}
