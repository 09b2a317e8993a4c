// ABOUTME: JSON response helpers and the board error to HTTP status mapping.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2389-research/gridhq/board/core"
	"go.uber.org/zap"
)

// Request-shape failures that never reach the board core.
const (
	errInvalidBody     = "invalid_body"
	errInvalidFormData = "invalid_form_data"
	errFileRequired    = "file_required"
	errInvalidQuery    = "invalid_query"
	errInternal        = "internal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// statusFor maps a board error kind to its HTTP status.
func statusFor(kind core.Kind) int {
	switch kind {
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	case core.KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case core.KindAttachmentsDisabled:
		return http.StatusNotImplemented
	case core.KindTitleRequired, core.KindInvalidStatus, core.KindInvalidPriority,
		core.KindEpicCannotHaveEpic, core.KindInvalidEpic, core.KindNoUpdates,
		core.KindTextRequired, core.KindInvalidMode, core.KindInvalidMimeType,
		core.KindEmptyFile:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Board errors keep their kind; anything else is
// logged and reported as an opaque internal error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *core.Error
	if !errors.As(err, &e) {
		s.logger.Error("request failed",
			zap.String("component", "web"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": errInternal})
		return
	}

	body := map[string]any{"error": string(e.Kind)}
	switch e.Kind {
	case core.KindUnauthorized:
		body["reason"] = e.Detail
	case core.KindInvalidMimeType:
		body["allowed"] = core.AllowedMimeTypes()
	case core.KindFileTooLarge:
		body["maxBytes"] = s.board.MaxAttachmentBytes()
	default:
		if e.Detail != "" {
			body["detail"] = e.Detail
		}
	}
	writeJSON(w, statusFor(e.Kind), body)
}

func writeBadRequest(w http.ResponseWriter, code, detail string) {
	body := map[string]any{"error": code}
	if detail != "" {
		body["detail"] = detail
	}
	writeJSON(w, http.StatusBadRequest, body)
}
