package api

import (
	"log/slog"
	"net/http"

	"github.com/ssl2010/englishlearn-api/internal/api/shared"
	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// CatalogHandler handles the content-management endpoints: registering
// students and importing knowledge items.
type CatalogHandler struct {
	students store.StudentStore
	items    store.ItemStore
	logger   *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(students store.StudentStore, items store.ItemStore, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CatalogHandler")
	}

	return &CatalogHandler{
		students: students,
		items:    items,
		logger:   logger.With(slog.String("component", "catalog_handler")),
	}
}

// CreateStudent handles POST /students requests.
func (h *CatalogHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateStudentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request parameters")
		return
	}

	student, err := domain.NewStudent(req.Name, req.Grade)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid student data")
		return
	}

	if err := h.students.Create(r.Context(), student); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("student registered", slog.String("student_id", student.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, StudentResponse{
		ID:    student.ID,
		Name:  student.Name,
		Grade: student.Grade,
	})
}

// CreateItem handles POST /items requests.
func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request parameters")
		return
	}

	item, err := domain.NewKnowledgeItem(
		req.CollectionID,
		req.Unit,
		domain.ItemCategory(req.Category),
		req.Prompt,
		req.Answer,
		domain.Difficulty(req.Difficulty),
	)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid item data")
		return
	}

	if err := h.items.Create(r.Context(), item); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("knowledge item created",
		slog.String("item_id", item.ID.String()),
		slog.String("category", string(item.Category)))
	shared.RespondWithJSON(w, r, http.StatusCreated, ItemResponse{
		ID:           item.ID,
		CollectionID: item.CollectionID,
		Unit:         item.Unit,
		Category:     string(item.Category),
		Prompt:       item.Prompt,
		Answer:       item.Answer,
		Difficulty:   string(item.Difficulty),
		Enabled:      item.Enabled,
	})
}
