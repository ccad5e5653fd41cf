package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/kozaktomas/face-filter/internal/carousel"
	"github.com/kozaktomas/face-filter/internal/constants"
	"github.com/kozaktomas/face-filter/internal/logging"
	"github.com/kozaktomas/face-filter/internal/session"
)

// SessionsHandler handles mounted views: carousel interaction, frame upload and the
// event stream.
type SessionsHandler struct {
	sessions *session.Manager
}

// NewSessionsHandler creates a new sessions handler
func NewSessionsHandler(sessions *session.Manager) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

// CarouselResponse is a page of the materialized strip
type CarouselResponse struct {
	Entries      []carousel.Entry `json:"entries"`
	Total        int              `json:"total"`
	Offset       int              `json:"offset"`
	SelectedID   string           `json:"selected_id,omitempty"`
	ScrollTarget float64          `json:"scroll_target"`
}

// TapRequest selects an entry by instance id
type TapRequest struct {
	InstanceID string `json:"instance_id"`
}

// ScrollRequest reports the strip's current scroll offset
type ScrollRequest struct {
	ScrollLeft *float64 `json:"scroll_left"`
}

// FrameResponse acknowledges an uploaded frame
type FrameResponse struct {
	Seq    uint64 `json:"seq"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Create mounts a new session
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	respondJSON(w, http.StatusCreated, s.Snapshot())
}

// Get returns the session state
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := lookupSession(w, r, h.sessions)
	if s == nil {
		return
	}
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// Delete unmounts a session
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s := lookupSession(w, r, h.sessions)
	if s == nil {
		return
	}
	if err := h.sessions.Delete(s.ID); err != nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Carousel returns a page of carousel entries (?offset=&limit=, all by default)
func (h *SessionsHandler) Carousel(w http.ResponseWriter, r *http.Request) {
	s := lookupSession(w, r, h.sessions)
	if s == nil {
		return
	}

	entries := s.Entries()
	offset := 0
	limit := len(entries)
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		offset = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	start := min(offset, len(entries))
	end := min(start+limit, len(entries))

	response := CarouselResponse{
		Entries:      entries[start:end],
		Total:        len(entries),
		Offset:       start,
		ScrollTarget: s.Snapshot().ScrollTarget,
	}
	if e, ok := s.Selected(); ok {
		response.SelectedID = e.InstanceID
	}
	respondJSON(w, http.StatusOK, response)
}

// Tap selects a carousel entry
func (h *SessionsHandler) Tap(w http.ResponseWriter, r *http.Request) {
	s := lookupSession(w, r, h.sessions)
	if s == nil {
		return
	}

	var req TapRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.InstanceID == "" {
		respondError(w, http.StatusBadRequest, "instance_id is required")
		return
	}

	if err := s.Tap(req.InstanceID); err != nil {
		writeSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// Scroll records a passive scroll of the strip
func (h *SessionsHandler) Scroll(w http.ResponseWriter, r *http.Request) {
	s := lookupSession(w, r, h.sessions)
	if s == nil {
		return
	}

	var req ScrollRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ScrollLeft == nil {
		respondError(w, http.StatusBadRequest, "scroll_left is required")
		return
	}

	if err := s.Scroll(*req.ScrollLeft); err != nil {
		writeSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// Frame replaces the session's current video frame with the request body
func (h *SessionsHandler) Frame(w http.ResponseWriter, r *http.Request) {
	s := lookupSession(w, r, h.sessions)
	if s == nil {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxFrameSize))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "frame too large")
		return
	}

	frame, err := s.PushFrame(data)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, FrameResponse{
		Seq:    frame.Seq,
		Format: frame.Format,
		Width:  frame.Width,
		Height: frame.Height,
	})
}

// Events streams session events via SSE
func (h *SessionsHandler) Events(w http.ResponseWriter, r *http.Request) {
	s := lookupSession(w, r, h.sessions)
	if s == nil {
		return
	}
	streamSSEEvents(w, r, s)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, carousel.ErrUnknownEntry):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrClosed):
		respondError(w, http.StatusGone, err.Error())
	default:
		logging.Debug(logging.Fields{"error": err.Error()}, "session request rejected")
		respondError(w, http.StatusBadRequest, err.Error())
	}
}
