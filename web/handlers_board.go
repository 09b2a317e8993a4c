// ABOUTME: Board-level handlers: liveness, authenticated health, caller identity, summary, and export.
package web

import (
	"net/http"

	"github.com/2389-research/gridhq/board/core"
	"github.com/2389-research/gridhq/board/export"
)

// handleLiveness is the unauthenticated probe for load balancers.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	db := map[string]any{"ok": true, "timeMs": nil}
	if s.pinger != nil {
		elapsed, err := s.pinger.Ping(r.Context())
		if err != nil {
			db["ok"] = false
		} else {
			db["timeMs"] = elapsed.Milliseconds()
		}
	}
	writeOK(w, map[string]any{
		"now":     s.now().UnixMilli(),
		"db":      db,
		"version": s.version,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	writeOK(w, map[string]any{"email": p.Email, "method": p.Method})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.board.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"summary": toSummaryJSON(sum)})
}

// handleExport renders the board as YAML (default) or Markdown.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "yaml"
	}
	if format != "yaml" && format != "markdown" {
		writeBadRequest(w, errInvalidQuery, "format must be yaml or markdown")
		return
	}

	cards, err := s.board.ListCards(r.Context(), core.ListFilter{IncludeArchived: r.URL.Query().Get("archived") == "true"})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	focus, err := s.board.Focus.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(export.ExportMarkdown(cards, focus, s.now())))
		return
	}
	doc, err := export.ExportYAML(cards, focus, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}
