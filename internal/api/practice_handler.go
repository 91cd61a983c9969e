package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ssl2010/englishlearn-api/internal/api/shared"
	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
	"github.com/ssl2010/englishlearn-api/internal/service"
)

// PracticeHandler handles worksheet generation and session lifecycle
// HTTP requests.
type PracticeHandler struct {
	practiceService service.PracticeService
	renderer        service.WorksheetRenderer
	logger          *slog.Logger
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(
	practiceService service.PracticeService,
	renderer service.WorksheetRenderer,
	logger *slog.Logger,
) *PracticeHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PracticeHandler")
	}

	return &PracticeHandler{
		practiceService: practiceService,
		renderer:        renderer,
		logger:          logger.With(slog.String("component", "practice_handler")),
	}
}

// GenerateSession handles POST /sessions requests.
func (h *PracticeHandler) GenerateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req GenerateSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request parameters")
		return
	}

	mix := make(map[domain.ItemCategory]int, len(req.MixRatio))
	for cat, weight := range req.MixRatio {
		mix[domain.ItemCategory(cat)] = weight
	}

	session, err := h.practiceService.GenerateSession(r.Context(), service.GenerateSessionRequest{
		StudentID:    req.StudentID,
		CollectionID: req.CollectionID,
		Title:        req.Title,
		TotalCount:   req.TotalCount,
		MixRatio:     mix,
		UnitFilter:   req.UnitFilter,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("generated session",
		slog.String("session_id", session.ID.String()),
		slog.Int("items", len(session.Items)))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// GetSession handles GET /sessions/{id} requests.
func (h *PracticeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// PublishSession handles POST /sessions/{id}/publish requests.
func (h *PracticeHandler) PublishSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDFromPath(w, r)
	if !ok {
		return
	}

	session, err := h.practiceService.PublishSession(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// DeleteSession handles DELETE /sessions/{id} requests.
func (h *PracticeHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.practiceService.DeleteSession(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenderWorksheet handles GET /sessions/{id}/worksheet requests, returning
// the printable worksheet document. Passing ?answers=true renders the
// answer key instead of the blank sheet.
func (h *PracticeHandler) RenderWorksheet(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	includeAnswers := r.URL.Query().Get("answers") == "true"
	doc, contentType, err := h.renderer.Render(session, includeAnswers)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		log.Error("failed to write worksheet response",
			slog.String("session_id", session.ID.String()),
			slog.String("error", err.Error()))
	}
}

// loadSession parses the path ID and fetches the session, writing the error
// response itself on failure.
func (h *PracticeHandler) loadSession(w http.ResponseWriter, r *http.Request) (*domain.PracticeSession, bool) {
	id, ok := sessionIDFromPath(w, r)
	if !ok {
		return nil, false
	}

	session, err := h.practiceService.GetSession(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return nil, false
	}
	return session, true
}

// sessionIDFromPath extracts and parses the {id} URL parameter.
func sessionIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Session ID is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID format")
		return uuid.Nil, false
	}
	return id, true
}
