// ABOUTME: Focus record HTTP handlers: read the singleton and merge direct writes.
package web

import (
	"net/http"
)

func (s *Server) handleFocusGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.board.Focus.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"status": toFocusJSON(rec)})
}

func (s *Server) handleFocusPut(w http.ResponseWriter, r *http.Request) {
	in, err := decodeFocus(readObject(r.Body))
	if s.rejectDecode(w, r, err) {
		return
	}
	rec, err := s.board.Focus.Update(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"status": toFocusJSON(rec)})
}
