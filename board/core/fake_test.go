// ABOUTME: In-memory Table and BlobStore fakes for exercising the board core without SQLite.
// ABOUTME: Mirrors the store's ordering and not-found behavior closely enough for rule tests.
package core_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/2389-research/gridhq/board/core"
)

type fakeTable struct {
	mu          sync.Mutex
	cards       map[string]core.Card
	focus       *core.FocusRecord
	comments    []core.Comment
	attachments []core.Attachment
	writes      int
	focusWrites int
	failFocus   error
}

func newFakeTable() *fakeTable {
	return &fakeTable{cards: make(map[string]core.Card)}
}

func (f *fakeTable) InsertCard(_ context.Context, card core.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.cards[card.ID] = card
	return nil
}

func (f *fakeTable) GetCard(_ context.Context, id string) (core.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cards[id]
	if !ok {
		return core.Card{}, core.NotFoundError("card", id)
	}
	return c, nil
}

func (f *fakeTable) UpdateCard(_ context.Context, id string, p core.CardPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cards[id]
	if !ok {
		return core.NotFoundError("card", id)
	}
	f.writes++
	if p.Title.Set {
		c.Title = p.Title.Value
	}
	if p.Status.Set {
		c.Status = p.Status.Value
	}
	if p.Description.Set {
		c.Description = p.Description.Ptr()
	}
	if p.Labels.Set {
		c.Labels = nil
		if p.Labels.Valid {
			c.Labels = p.Labels.Value
		}
	}
	if p.DueDate.Set {
		c.DueDate = p.DueDate.Ptr()
	}
	if p.Priority.Set {
		c.Priority = p.Priority.Ptr()
	}
	if p.Archived.Set {
		c.Archived = p.Archived.Value
	}
	if p.Sort.Set {
		c.Sort = p.Sort.Value
	}
	if p.IsEpic.Set {
		c.IsEpic = p.IsEpic.Value
	}
	if p.EpicID.Set {
		c.EpicID = p.EpicID.Ptr()
	}
	c.UpdatedAt = p.UpdatedAt
	f.cards[id] = c
	return nil
}

func (f *fakeTable) ArchiveCard(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cards[id]
	if !ok {
		return core.NotFoundError("card", id)
	}
	f.writes++
	c.Archived = true
	c.UpdatedAt = at
	f.cards[id] = c
	return nil
}

func (f *fakeTable) DeleteCard(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cards[id]; !ok {
		return core.NotFoundError("card", id)
	}
	f.writes++
	delete(f.cards, id)
	return nil
}

func (f *fakeTable) ListCards(_ context.Context, filter core.ListFilter) ([]core.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Card
	for _, c := range f.cards {
		if !filter.IncludeArchived && c.Archived {
			continue
		}
		if filter.EpicsOnly && !c.IsEpic {
			continue
		}
		if filter.EpicID != "" && (c.EpicID == nil || *c.EpicID != filter.EpicID) {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Status.Rank() != b.Status.Rank() {
			return a.Status.Rank() < b.Status.Rank()
		}
		if a.Sort != b.Sort {
			return a.Sort < b.Sort
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (f *fakeTable) MaxSort(_ context.Context, status core.Status) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var top int64
	for _, c := range f.cards {
		if c.Status == status && !c.Archived && c.Sort > top {
			top = c.Sort
		}
	}
	return top, nil
}

func (f *fakeTable) GetFocus(context.Context) (core.FocusRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.focus == nil {
		return core.FocusRecord{}, false, nil
	}
	return *f.focus, true, nil
}

func (f *fakeTable) PutFocus(_ context.Context, rec core.FocusRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFocus != nil {
		return f.failFocus
	}
	f.focusWrites++
	f.focus = &rec
	return nil
}

func (f *fakeTable) InsertComment(_ context.Context, c core.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, c)
	return nil
}

func (f *fakeTable) ListComments(_ context.Context, cardID string) ([]core.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Comment
	for _, c := range f.comments {
		if c.CardID == cardID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeTable) InsertAttachment(_ context.Context, a core.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attachments = append(f.attachments, a)
	return nil
}

func (f *fakeTable) ListAttachments(_ context.Context, cardID string) ([]core.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Attachment
	for _, a := range f.attachments {
		if a.CardID == cardID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeTable) GetAttachment(_ context.Context, id string) (core.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.attachments {
		if a.ID == id {
			return a, nil
		}
	}
	return core.Attachment{}, core.NotFoundError("attachment", id)
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (b *fakeBlobs) Put(_ context.Context, key, _ string, r io.Reader) (int64, error) {
	if b.failPut != nil {
		return 0, b.failPut
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return int64(len(data)), nil
}

func (b *fakeBlobs) Get(_ context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, core.NotFoundError("blob", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *fakeBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

// fixedClock returns a clock that advances one second per call, so every
// mutation gets a distinct timestamp.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

var errBoom = errors.New("boom")
