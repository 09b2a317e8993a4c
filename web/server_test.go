// ABOUTME: HTTP boundary tests driving the chi router against a temporary SQLite board.
// ABOUTME: Covers auth, card lifecycle, focus auto-rules, comments, attachments, summary, and export.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2389-research/gridhq/board/core"
	"github.com/2389-research/gridhq/board/server"
	"github.com/2389-research/gridhq/board/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	t     *testing.T
	srv   *Server
	board *core.Board
	auth  map[string]string
}

type harnessOpts struct {
	cfg         server.Config
	attachments bool
	maxBytes    int64
}

func newHarness(t *testing.T, opts harnessOpts) *harness {
	t.Helper()
	dir := t.TempDir()
	db, err := store.Open(context.Background(), store.DriverCGO, filepath.Join(dir, "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var boardOpts []core.Option
	if opts.attachments {
		blobs, err := store.NewFSBlobStore(filepath.Join(dir, "blobs"))
		require.NoError(t, err)
		boardOpts = append(boardOpts, core.WithBlobStore(blobs, opts.maxBytes))
	}
	b := core.NewBoard(db, boardOpts...)

	srv, err := NewServer(ServerConfig{
		Board:    b,
		Identity: server.NewIdentityProvider(&opts.cfg),
		Pinger:   db,
		Version:  "test",
	})
	require.NoError(t, err)
	return &harness{t: t, srv: srv, board: b, auth: map[string]string{}}
}

func (h *harness) send(req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	for k, v := range h.auth {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func (h *harness) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.send(req)
}

func (h *harness) createCard(body string) string {
	h.t.Helper()
	rec, resp := h.do("POST", "/api/cards", body)
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	return resp["id"].(string)
}

func (h *harness) card(id string) map[string]any {
	h.t.Helper()
	rec, resp := h.do("GET", "/api/cards/"+id, "")
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	return resp["card"].(map[string]any)
}

func (h *harness) focus() map[string]any {
	h.t.Helper()
	rec, resp := h.do("GET", "/api/focus", "")
	require.Equal(h.t, http.StatusOK, rec.Code)
	return resp["status"].(map[string]any)
}

func TestLivenessIsPublic(t *testing.T) {
	h := newHarness(t, harnessOpts{cfg: server.Config{APIToken: "s3cret"}})
	rec, body := h.do("GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestAPIRequiresAuth(t *testing.T) {
	h := newHarness(t, harnessOpts{cfg: server.Config{APIToken: "s3cret"}})

	rec, body := h.do("GET", "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", body["error"])
	assert.Equal(t, server.ReasonInvalidToken, body["reason"])

	h.auth["Authorization"] = "Bearer s3cret"
	rec, body = h.do("GET", "/api/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Nil(t, body["email"])
	assert.Equal(t, server.MethodToken, body["method"])
}

func TestAllowlistedEmail(t *testing.T) {
	h := newHarness(t, harnessOpts{cfg: server.Config{AllowedEmails: []string{"me@example.com"}}})

	rec, body := h.do("GET", "/api/cards", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, server.ReasonMissingEmail, body["reason"])

	h.auth[server.DefaultEmailHeader] = "me@example.com"
	rec, body = h.do("GET", "/api/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "me@example.com", body["email"])
}

func TestHealthReportsDatabase(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	rec, body := h.do("GET", "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", body["version"])
	db := body["db"].(map[string]any)
	assert.Equal(t, true, db["ok"])
	assert.NotNil(t, db["timeMs"])
}

func TestCardCreateAndList(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	id := h.createCard(`{"title":"  Write docs ","labels":["docs"," "],"dueDate":"2025-01-02","priority":"high"}`)

	rec, body := h.do("GET", "/api/cards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cards := body["cards"].([]any)
	require.Len(t, cards, 1)
	c := cards[0].(map[string]any)
	assert.Equal(t, id, c["id"])
	assert.Equal(t, "Write docs", c["title"])
	assert.Equal(t, "backlog", c["status"])
	assert.Equal(t, float64(1), c["sort"])
	assert.Equal(t, []any{"docs"}, c["labels"])
	assert.Equal(t, float64(1735776000000), c["dueDate"])
	assert.Equal(t, "high", c["priority"])
	assert.Nil(t, c["description"])
	assert.Nil(t, c["epicId"])
	assert.Equal(t, false, c["archived"])

	second := h.createCard(`{"title":"Next"}`)
	assert.Equal(t, float64(2), h.card(second)["sort"])
	assert.Equal(t, []any{}, h.card(second)["labels"])
}

func TestCardCreateValidation(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{}`, "title_required"},
		{"malformed body", `{"title":`, "title_required"},
		{"blank title", `{"title":"   "}`, "title_required"},
		{"bad status", `{"title":"x","status":"later"}`, "invalid_status"},
		{"bad priority", `{"title":"x","priority":"meh"}`, "invalid_priority"},
		{"epic with epic first", `{"isEpic":true,"epicId":"E","title":"x"}`, "epic_cannot_have_epic"},
		{"epic with epic last", `{"title":"x","epicId":"E","isEpic":true}`, "epic_cannot_have_epic"},
		{"unknown epic", `{"title":"x","epicId":"nope"}`, "invalid_epic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := h.do("POST", "/api/cards", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, body["error"])
		})
	}

	rec, body := h.do("POST", "/api/cards", `{"title":"x","dueDate":"someday"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errInvalidBody, body["error"])
}

func TestCardPatch(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	id := h.createCard(`{"title":"Old","description":"keep","labels":["a"]}`)

	tests := []struct {
		name   string
		body   string
		status int
		err    string
	}{
		{"empty", `{}`, http.StatusBadRequest, "no_updates"},
		{"unknown keys only", `{"colour":"red"}`, http.StatusBadRequest, "no_updates"},
		{"non-numeric sort ignored", `{"sort":"abc"}`, http.StatusBadRequest, "no_updates"},
		{"null title", `{"title":null}`, http.StatusBadRequest, "title_required"},
		{"null status", `{"status":null}`, http.StatusBadRequest, "invalid_status"},
		{"self epic", `{"epicId":"` + id + `"}`, http.StatusBadRequest, "invalid_epic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := h.do("PATCH", "/api/cards/"+id, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.err, body["error"])
		})
	}

	rec, _ := h.do("PATCH", "/api/cards/"+id, `{"title":"New","sort":"7","description":null,"labels":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := h.card(id)
	assert.Equal(t, "New", c["title"])
	assert.Equal(t, float64(7), c["sort"])
	assert.Nil(t, c["description"])
	assert.Equal(t, []any{}, c["labels"])

	rec, body := h.do("PATCH", "/api/cards/missing", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])
}

func TestEpicLinking(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	epic := h.createCard(`{"title":"Launch","isEpic":true}`)
	child := h.createCard(`{"title":"Docs","epicId":"` + epic + `"}`)

	assert.Equal(t, []any{"epic"}, h.card(epic)["labels"])
	assert.Equal(t, epic, h.card(child)["epicId"])

	rec, body := h.do("GET", "/api/cards?epicId="+epic, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["cards"], 1)

	rec, body = h.do("GET", "/api/cards?epics=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["cards"], 1)

	h.createCard(`{"title":"Loose"}`)
	rec, body = h.do("GET", "/api/cards?epic=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cards := body["cards"].([]any)
	require.Len(t, cards, 1)
	assert.Equal(t, epic, cards[0].(map[string]any)["id"])

	rec, body = h.do("PATCH", "/api/cards/"+child, `{"isEpic":true,"epicId":"`+epic+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "epic_cannot_have_epic", body["error"])

	rec, _ = h.do("PATCH", "/api/cards/"+child, `{"isEpic":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	promoted := h.card(child)
	assert.Nil(t, promoted["epicId"])
	assert.Equal(t, true, promoted["isEpic"])
}

func TestFocusFollowsCard(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	id := h.createCard(`{"title":"Ship"}`)

	f := h.focus()
	assert.Equal(t, "idle", f["mode"])
	assert.Nil(t, f["updatedAt"])

	rec, _ := h.do("PATCH", "/api/cards/"+id, `{"status":"doing"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	f = h.focus()
	assert.Equal(t, "working", f["mode"])
	assert.Equal(t, "Working on: Ship", f["message"])
	assert.Equal(t, id, f["focusCardId"])

	rec, _ = h.do("DELETE", "/api/cards/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	f = h.focus()
	assert.Equal(t, "idle", f["mode"])
	assert.Nil(t, f["focusCardId"])

	rec, body := h.do("DELETE", "/api/cards/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])
}

func TestFocusDirectWrite(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	rec, body := h.do("PUT", "/api/focus", `{"mode":"partying"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_mode", body["error"])

	rec, body = h.do("PUT", "/api/focus", `{"message":"Reviewing","mode":"waiting"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	f := body["status"].(map[string]any)
	assert.Equal(t, "waiting", f["mode"])
	assert.NotNil(t, f["updatedAt"])

	rec, body = h.do("PUT", "/api/focus", `{"focusCardId":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	f = body["status"].(map[string]any)
	assert.Equal(t, "Reviewing", f["message"], "absent fields are kept")
	assert.Equal(t, "abc", f["focusCardId"])

	rec, body = h.do("PUT", "/api/focus", `{"message":null,"mode":null,"focusCardId":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	f = body["status"].(map[string]any)
	assert.Equal(t, "Reviewing", f["message"], "null message is kept")
	assert.Equal(t, "waiting", f["mode"], "null mode is kept")
	assert.Nil(t, f["focusCardId"])
}

func TestArchive(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	id := h.createCard(`{"title":"Old news"}`)

	rec, _ := h.do("POST", "/api/cards/"+id+"/archive", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = h.do("POST", "/api/cards/"+id+"/archive", "")
	assert.Equal(t, http.StatusOK, rec.Code, "re-archiving succeeds")

	_, body := h.do("GET", "/api/cards", "")
	assert.Empty(t, body["cards"])
	_, body = h.do("GET", "/api/cards?archived=true", "")
	assert.Len(t, body["cards"], 1)

	rec, _ = h.do("POST", "/api/cards/missing/archive", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComments(t *testing.T) {
	h := newHarness(t, harnessOpts{cfg: server.Config{AllowedEmails: []string{"me@example.com"}}})
	h.auth[server.DefaultEmailHeader] = "me@example.com"
	id := h.createCard(`{"title":"Discuss"}`)

	rec, body := h.do("POST", "/api/cards/"+id+"/comments", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text_required", body["error"])

	rec, body = h.do("POST", "/api/cards/missing/comments", `{"text":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = h.do("POST", "/api/cards/"+id+"/comments", `{"text":"first"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	parent := body["id"].(string)
	rec, _ = h.do("POST", "/api/cards/"+id+"/comments", `{"text":"reply","parentId":"`+parent+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = h.do("GET", "/api/cards/"+id+"/comments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	comments := body["comments"].([]any)
	require.Len(t, comments, 2)
	first := comments[0].(map[string]any)
	assert.Equal(t, "first", first["text"])
	assert.Equal(t, "me@example.com", first["author"])
	assert.Equal(t, parent, comments[1].(map[string]any)["parentId"])
}

func multipartUpload(t *testing.T, path, mimeType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="shot.png"`)
	hdr.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAttachmentsDisabled(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	id := h.createCard(`{"title":"No blobs"}`)

	rec, body := h.send(multipartUpload(t, "/api/cards/"+id+"/attachments", "image/png", []byte("png")))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, "attachments_disabled", body["error"])

	rec, _ = h.do("GET", "/api/attachments/whatever", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestAttachmentUploadAndDownload(t *testing.T) {
	h := newHarness(t, harnessOpts{attachments: true, maxBytes: 16})
	id := h.createCard(`{"title":"Screenshot"}`)
	path := "/api/cards/" + id + "/attachments"

	rec, body := h.send(multipartUpload(t, path, "image/png", []byte("\x89PNG-data")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	att := body["attachment"].(map[string]any)
	assert.Equal(t, "image", att["kind"])
	assert.Equal(t, float64(9), att["sizeBytes"])
	url := att["url"].(string)

	rec, _ = h.do("GET", url, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG-data", rec.Body.String())

	rec, body = h.do("GET", path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["attachments"], 1)

	rec, body = h.send(multipartUpload(t, path, "image/gif", []byte("GIF89a")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_mime_type", body["error"])
	assert.Len(t, body["allowed"], 3)

	rec, body = h.send(multipartUpload(t, path, "image/png", bytes.Repeat([]byte("x"), 17)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "file_too_large", body["error"])
	assert.Equal(t, float64(16), body["maxBytes"])

	req := httptest.NewRequest("POST", path, strings.NewReader("not a form"))
	req.Header.Set("Content-Type", "text/plain")
	rec, body = h.send(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errInvalidFormData, body["error"])

	rec, _ = h.do("GET", "/api/attachments/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSummaryAndExport(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	epic := h.createCard(`{"title":"Launch","isEpic":true,"priority":"urgent"}`)
	h.createCard(`{"title":"Docs","epicId":"` + epic + `","status":"doing"}`)
	h.createCard(`{"title":"Late","dueDate":1000}`)

	rec, body := h.do("GET", "/api/board/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sum := body["summary"].(map[string]any)
	assert.Equal(t, float64(3), sum["total"])
	assert.Equal(t, float64(1), sum["overdue"])
	assert.Equal(t, float64(2), sum["byStatus"].(map[string]any)["backlog"])
	assert.Equal(t, float64(1), sum["byPriority"].(map[string]any)["urgent"])
	assert.Equal(t, float64(1), sum["epics"].(map[string]any)["withChildren"])

	rec, _ = h.do("GET", "/api/board/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "yaml")
	assert.Contains(t, rec.Body.String(), "title: Launch")

	rec, _ = h.do("GET", "/api/board/export?format=markdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "## Doing (1)")

	rec, body = h.do("GET", "/api/board/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errInvalidQuery, body["error"])
}

func TestListRejectsBadStatusFilter(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	rec, body := h.do("GET", "/api/cards?status=someday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_status", body["error"])
}
