// ABOUTME: Card HTTP handlers: list, create, get, patch, delete, and archive.
package web

import (
	"errors"
	"net/http"

	"github.com/2389-research/gridhq/board/core"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCardList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.ListFilter{
		IncludeArchived: q.Get("archived") == "true",
		EpicsOnly:       q.Get("epic") == "true" || q.Get("epics") == "true",
		EpicID:          q.Get("epicId"),
	}
	if raw := q.Get("status"); raw != "" {
		st, err := core.ParseStatus(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		filter.Status = st
	}

	cards, err := s.board.ListCards(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]cardJSON, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardJSON(c))
	}
	writeOK(w, map[string]any{"cards": out})
}

func (s *Server) handleCardCreate(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCreateCard(readObject(r.Body))
	if s.rejectDecode(w, r, err) {
		return
	}
	id, err := s.board.CreateCard(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"id": id})
}

func (s *Server) handleCardGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.board.GetCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"card": toCardJSON(c)})
}

func (s *Server) handleCardUpdate(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCardPatch(readObject(r.Body))
	if s.rejectDecode(w, r, err) {
		return
	}
	if err := s.board.UpdateCard(r.Context(), chi.URLParam(r, "cardID"), in); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, nil)
}

func (s *Server) handleCardDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.board.DeleteCard(r.Context(), chi.URLParam(r, "cardID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, nil)
}

func (s *Server) handleCardArchive(w http.ResponseWriter, r *http.Request) {
	if err := s.board.ArchiveCard(r.Context(), chi.URLParam(r, "cardID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, nil)
}

// rejectDecode writes a 400 for malformed field values and reports whether
// it did.
func (s *Server) rejectDecode(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	var de *decodeError
	if errors.As(err, &de) {
		writeBadRequest(w, errInvalidBody, de.Error())
		return true
	}
	s.writeError(w, r, err)
	return true
}
