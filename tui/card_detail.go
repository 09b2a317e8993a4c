// ABOUTME: Detail panel for a single card with its comments and attachments.
// ABOUTME: Renders labeled rows, relative timestamps, and human-readable attachment sizes.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/2389-research/gridhq/board/core"
	"github.com/dustin/go-humanize"
)

// CardDetail holds everything shown for one card.
type CardDetail struct {
	Card        core.Card
	Comments    []core.Comment
	Attachments []core.Attachment
}

// RenderCardDetail renders d as of now.
func RenderCardDetail(d CardDetail, now time.Time) string {
	c := d.Card
	var lines []string
	lines = append(lines, TitleStyle.Render(c.Title))
	lines = append(lines, "")

	row := func(label, value string) {
		lines = append(lines, LabelStyle.Render(label)+ValueStyle.Render(value))
	}
	row("id", c.ID)
	row("status", StyleForStatus(c.Status).Render(string(c.Status)))
	row("sort", fmt.Sprintf("%d", c.Sort))
	if c.Priority != nil {
		row("priority", StyleForPriority(*c.Priority).Render(string(*c.Priority)))
	}
	if c.DueDate != nil {
		due := c.DueDate.UTC().Format("2006-01-02") + " (" + humanize.RelTime(*c.DueDate, now, "ago", "from now") + ")"
		if c.Overdue(now) && c.Status != core.StatusDone {
			due = OverdueStyle.Render(due)
		}
		row("due", due)
	}
	if c.IsEpic {
		row("epic", EpicStyle.Render("yes"))
	}
	if c.EpicID != nil {
		row("epic id", *c.EpicID)
	}
	if len(c.Labels) > 0 {
		row("labels", strings.Join(c.Labels, ", "))
	}
	if c.Archived {
		row("archived", "yes")
	}
	row("created", humanize.RelTime(c.CreatedAt, now, "ago", "from now"))
	row("updated", humanize.RelTime(c.UpdatedAt, now, "ago", "from now"))

	if c.Description != nil {
		lines = append(lines, "", *c.Description)
	}

	if len(d.Comments) > 0 {
		lines = append(lines, "", TitleStyle.Render(fmt.Sprintf("Comments (%d)", len(d.Comments))))
		for _, cm := range d.Comments {
			who := "anonymous"
			if cm.Author != nil {
				who = *cm.Author
			}
			indent := ""
			if cm.ParentID != nil {
				indent = "  ↳ "
			}
			lines = append(lines, fmt.Sprintf("%s%s %s: %s", indent,
				MutedStyle.Render(humanize.RelTime(cm.CreatedAt, now, "ago", "from now")), who, cm.Text))
		}
	}

	if len(d.Attachments) > 0 {
		lines = append(lines, "", TitleStyle.Render(fmt.Sprintf("Attachments (%d)", len(d.Attachments))))
		for _, a := range d.Attachments {
			lines = append(lines, fmt.Sprintf("%s %s %s", a.ID, a.MimeType,
				MutedStyle.Render(humanize.IBytes(uint64(a.SizeBytes)))))
		}
	}
	return strings.Join(lines, "\n")
}
