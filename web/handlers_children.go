// ABOUTME: Comment and attachment HTTP handlers, including multipart image upload and streaming download.
package web

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/2389-research/gridhq/board/core"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// multipartOverhead is the slack allowed above the attachment cap for form
// boundaries and part headers.
const multipartOverhead = 64 << 10

// multipartMemory is how much of an upload is buffered before spilling to disk.
const multipartMemory = 1 << 20

func (s *Server) handleCommentList(w http.ResponseWriter, r *http.Request) {
	comments, err := s.board.ListComments(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]commentJSON, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentJSON(c))
	}
	writeOK(w, map[string]any{"comments": out})
}

func (s *Server) handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	fields := readObject(r.Body)
	text, err := optionalString(fields, "text")
	if s.rejectDecode(w, r, err) {
		return
	}
	parent, err := optionalString(fields, "parentId")
	if s.rejectDecode(w, r, err) {
		return
	}

	c, err := s.board.AddComment(r.Context(), author(r), chi.URLParam(r, "cardID"), text.Value, parent.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"id": c.ID, "createdAt": c.CreatedAt.UnixMilli()})
}

func (s *Server) handleAttachmentList(w http.ResponseWriter, r *http.Request) {
	atts, err := s.board.ListAttachments(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]attachmentJSON, 0, len(atts))
	for _, a := range atts {
		out = append(out, toAttachmentJSON(a))
	}
	writeOK(w, map[string]any{"attachments": out})
}

func (s *Server) handleAttachmentUpload(w http.ResponseWriter, r *http.Request) {
	if !s.board.AttachmentsEnabled() {
		s.writeError(w, r, core.ErrAttachmentsDisabled)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.board.MaxAttachmentBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isMaxBytesError(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
				"error":    "file_too_large",
				"maxBytes": s.board.MaxAttachmentBytes(),
			})
			return
		}
		writeBadRequest(w, errInvalidFormData, "")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, errFileRequired, "file")
		return
	}
	defer func() { _ = file.Close() }()

	mimeType := hdr.Header.Get("Content-Type")
	if mt, _, perr := mime.ParseMediaType(mimeType); perr == nil {
		mimeType = mt
	}
	att, err := s.board.AddAttachment(r.Context(), author(r), chi.URLParam(r, "cardID"), mimeType, hdr.Size, file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"attachment": toAttachmentJSON(att)})
}

func (s *Server) handleAttachmentDownload(w http.ResponseWriter, r *http.Request) {
	att, body, err := s.board.OpenAttachment(r.Context(), chi.URLParam(r, "attachmentID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer func() { _ = body.Close() }()

	w.Header().Set("Content-Type", att.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(att.SizeBytes, 10))
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		s.logger.Warn("attachment stream interrupted",
			zap.String("component", "web"),
			zap.String("attachment_id", att.ID),
			zap.Error(err))
	}
}

// isMaxBytesError reports whether err (or any error in its chain) is an
// *http.MaxBytesError, indicating the request body exceeded the size limit.
func isMaxBytesError(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
