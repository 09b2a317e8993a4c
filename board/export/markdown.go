// ABOUTME: Exports the board as a deterministic Markdown checklist, one section per lane.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/2389-research/gridhq/board/core"
)

// ExportMarkdown renders cards as a Markdown document. Done cards are checked.
func ExportMarkdown(cards []core.Card, focus core.FocusRecord, now time.Time) string {
	var out strings.Builder

	fmt.Fprintln(&out, "# Board")
	fmt.Fprintln(&out)
	if focus.Message != "" {
		fmt.Fprintf(&out, "> Focus (%s): %s\n", focus.Mode, focus.Message)
	} else {
		fmt.Fprintf(&out, "> Focus: %s\n", focus.Mode)
	}

	for _, l := range groupByLane(cards) {
		fmt.Fprintln(&out)
		fmt.Fprintf(&out, "## %s (%d)\n", laneTitle(l.Status), len(l.Cards))
		if len(l.Cards) == 0 {
			continue
		}
		fmt.Fprintln(&out)
		for _, c := range l.Cards {
			box := " "
			if c.Status == core.StatusDone {
				box = "x"
			}
			fmt.Fprintf(&out, "- [%s] %s%s\n", box, c.Title, cardSuffix(c, now))
		}
	}
	return out.String()
}

func cardSuffix(c core.Card, now time.Time) string {
	var parts []string
	if c.IsEpic {
		parts = append(parts, "epic")
	}
	if c.Priority != nil {
		parts = append(parts, string(*c.Priority))
	}
	if c.DueDate != nil {
		due := "due " + c.DueDate.UTC().Format("2006-01-02")
		if c.Overdue(now) {
			due += ", overdue"
		}
		parts = append(parts, due)
	}
	var labels []string
	for _, l := range c.Labels {
		if !strings.EqualFold(l, core.EpicLabel) {
			labels = append(labels, "`"+l+"`")
		}
	}
	suffix := ""
	if len(parts) > 0 {
		suffix = " (" + strings.Join(parts, ", ") + ")"
	}
	if len(labels) > 0 {
		suffix += " " + strings.Join(labels, " ")
	}
	return suffix
}
