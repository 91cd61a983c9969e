package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ssl2010/englishlearn-api/internal/api/shared"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
	gradingsvc "github.com/ssl2010/englishlearn-api/internal/service/grading"
)

// Upload limits for marked-photo submissions.
const (
	maxUploadBytes = 20 << 20 // whole multipart body
	maxPhotoBytes  = 8 << 20  // single photo part
	maxPhotoCount  = 5
)

// GradingHandler handles grading-related HTTP requests: photo upload,
// confirmation, and the manual transcription path.
type GradingHandler struct {
	gradingService gradingsvc.Service
	logger         *slog.Logger
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(gradingService gradingsvc.Service, logger *slog.Logger) *GradingHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GradingHandler")
	}

	return &GradingHandler{
		gradingService: gradingService,
		logger:         logger.With(slog.String("component", "grading_handler")),
	}
}

// UploadMarkedPhoto handles POST /sessions/{id}/grade requests. The body is
// multipart form data with one or more "photos" parts; the response is the
// provider's unconfirmed grading proposal.
func (h *GradingHandler) UploadMarkedPhoto(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := sessionIDFromPath(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "At least one photo is required")
		return
	}
	if len(files) > maxPhotoCount {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Too many photos")
		return
	}

	photos := make([][]byte, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Unreadable photo upload")
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
		_ = f.Close()
		if err != nil || len(data) > maxPhotoBytes {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Photo exceeds size limit")
			return
		}
		photos = append(photos, data)
	}

	proposal, err := h.gradingService.GradeMarkedPhoto(r.Context(), id, photos)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("grading proposal returned",
		slog.String("session_id", id.String()),
		slog.String("submission_id", proposal.SubmissionID.String()),
		slog.String("provider", string(proposal.Grading.Provider)))
	shared.RespondWithJSON(w, r, http.StatusOK, proposal)
}

// ConfirmGrading handles POST /submissions/{id}/confirm requests.
func (h *GradingHandler) ConfirmGrading(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	raw := chi.URLParam(r, "id")
	submissionID, err := uuid.Parse(raw)
	if raw == "" || err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	var req ConfirmGradingRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request parameters")
		return
	}

	marks := make([]gradingsvc.ConfirmedMark, 0, len(req.Marks))
	for _, m := range req.Marks {
		marks = append(marks, gradingsvc.ConfirmedMark{
			Position:    m.Position,
			IsCorrect:   *m.IsCorrect,
			StudentText: m.StudentText,
		})
	}

	results, err := h.gradingService.ConfirmGrading(r.Context(), submissionID, marks)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("grading confirmed",
		slog.String("submission_id", submissionID.String()),
		slog.Int("results", len(results)))
	shared.RespondWithJSON(w, r, http.StatusOK, resultsToResponse(results))
}

// SubmitManualAnswers handles POST /sessions/{id}/answers requests.
func (h *GradingHandler) SubmitManualAnswers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := sessionIDFromPath(w, r)
	if !ok {
		return
	}

	var req SubmitManualAnswersRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request parameters")
		return
	}

	answers := make([]gradingsvc.ManualAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, gradingsvc.ManualAnswer{
			Position: a.Position,
			Text:     a.Text,
		})
	}

	results, err := h.gradingService.SubmitManualAnswers(r.Context(), id, answers)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("manual answers graded",
		slog.String("session_id", id.String()),
		slog.Int("results", len(results)))
	shared.RespondWithJSON(w, r, http.StatusOK, resultsToResponse(results))
}
