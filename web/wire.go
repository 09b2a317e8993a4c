// ABOUTME: JSON wire shapes for cards, focus, comments, attachments, and the board summary.
// ABOUTME: Timestamps are epoch milliseconds; absent optional values render as null.
package web

import (
	"time"

	"github.com/2389-research/gridhq/board/core"
)

type cardJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Status      string   `json:"status"`
	Sort        int64    `json:"sort"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
	Description *string  `json:"description"`
	Labels      []string `json:"labels"`
	DueDate     *int64   `json:"dueDate"`
	Archived    bool     `json:"archived"`
	Priority    *string  `json:"priority"`
	IsEpic      bool     `json:"isEpic"`
	EpicID      *string  `json:"epicId"`
}

func toCardJSON(c core.Card) cardJSON {
	out := cardJSON{
		ID:          c.ID,
		Title:       c.Title,
		Status:      string(c.Status),
		Sort:        c.Sort,
		CreatedAt:   c.CreatedAt.UnixMilli(),
		UpdatedAt:   c.UpdatedAt.UnixMilli(),
		Description: c.Description,
		Labels:      c.Labels,
		DueDate:     millisPtr(c.DueDate),
		Archived:    c.Archived,
		IsEpic:      c.IsEpic,
		EpicID:      c.EpicID,
	}
	if out.Labels == nil {
		out.Labels = []string{}
	}
	if c.Priority != nil {
		p := string(*c.Priority)
		out.Priority = &p
	}
	return out
}

type focusJSON struct {
	Message     string  `json:"message"`
	Mode        string  `json:"mode"`
	FocusCardID *string `json:"focusCardId"`
	UpdatedAt   *int64  `json:"updatedAt"`
}

func toFocusJSON(f core.FocusRecord) focusJSON {
	return focusJSON{
		Message:     f.Message,
		Mode:        string(f.Mode),
		FocusCardID: f.FocusCardID,
		UpdatedAt:   millisPtr(f.UpdatedAt),
	}
}

type commentJSON struct {
	ID        string  `json:"id"`
	CardID    string  `json:"cardId"`
	ParentID  *string `json:"parentId"`
	Author    *string `json:"author"`
	Text      string  `json:"text"`
	CreatedAt int64   `json:"createdAt"`
}

func toCommentJSON(c core.Comment) commentJSON {
	return commentJSON{
		ID:        c.ID,
		CardID:    c.CardID,
		ParentID:  c.ParentID,
		Author:    c.Author,
		Text:      c.Text,
		CreatedAt: c.CreatedAt.UnixMilli(),
	}
}

type attachmentJSON struct {
	ID        string  `json:"id"`
	CardID    string  `json:"cardId"`
	Kind      string  `json:"kind"`
	MimeType  string  `json:"mimeType"`
	SizeBytes int64   `json:"sizeBytes"`
	Author    *string `json:"author"`
	CreatedAt int64   `json:"createdAt"`
	URL       string  `json:"url"`
}

func toAttachmentJSON(a core.Attachment) attachmentJSON {
	return attachmentJSON{
		ID:        a.ID,
		CardID:    a.CardID,
		Kind:      a.Kind,
		MimeType:  a.MimeType,
		SizeBytes: a.SizeBytes,
		Author:    a.Author,
		CreatedAt: a.CreatedAt.UnixMilli(),
		URL:       "/api/attachments/" + a.ID,
	}
}

type epicSummaryJSON struct {
	Total          int `json:"total"`
	WithChildren   int `json:"withChildren"`
	OrphanChildren int `json:"orphanChildren"`
}

type summaryJSON struct {
	Total      int             `json:"total"`
	ByStatus   map[string]int  `json:"byStatus"`
	ByPriority map[string]int  `json:"byPriority"`
	Overdue    int             `json:"overdue"`
	Epics      epicSummaryJSON `json:"epics"`
}

func toSummaryJSON(s core.Summary) summaryJSON {
	out := summaryJSON{
		Total:      s.Total,
		ByStatus:   make(map[string]int, len(core.Statuses)),
		ByPriority: make(map[string]int, len(core.Priorities)),
		Overdue:    s.Overdue,
		Epics: epicSummaryJSON{
			Total:          s.Epics.Total,
			WithChildren:   s.Epics.WithChildren,
			OrphanChildren: s.Epics.OrphanChildren,
		},
	}
	for _, st := range core.Statuses {
		out.ByStatus[string(st)] = s.ByStatus[st]
	}
	for _, p := range core.Priorities {
		out.ByPriority[string(p)] = s.ByPriority[p]
	}
	return out
}

func millisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}
