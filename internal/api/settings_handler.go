package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ssl2010/englishlearn-api/internal/api/shared"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
	"github.com/ssl2010/englishlearn-api/internal/service"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// SettingsHandler exposes the tunable grading parameters. Values live in
// the settings store with last-write-wins semantics; unset keys fall back
// to the mastery defaults.
type SettingsHandler struct {
	settings store.SettingsStore
	logger   *slog.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings store.SettingsStore, logger *slog.Logger) *SettingsHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SettingsHandler")
	}

	return &SettingsHandler{
		settings: settings,
		logger:   logger.With(slog.String("component", "settings_handler")),
	}
}

// GetSettings handles GET /settings requests.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	params := service.LoadMasteryParams(r.Context(), h.settings, h.logger)
	resp := SettingsResponse{
		MasteryThreshold: params.MasteryThreshold,
		WeeklyTargetDays: params.WeeklyTargetDays,
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// UpdateSettings handles PUT /settings requests. Omitted fields keep their
// current value.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req UpdateSettingsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request parameters")
		return
	}
	if req.MasteryThreshold == nil && req.WeeklyTargetDays == nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No settings to update")
		return
	}

	if req.MasteryThreshold != nil {
		if err := h.settings.Set(r.Context(), store.SettingMasteryThreshold,
			strconv.Itoa(*req.MasteryThreshold)); err != nil {
			shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}
	}
	if req.WeeklyTargetDays != nil {
		if err := h.settings.Set(r.Context(), store.SettingWeeklyTargetDays,
			strconv.Itoa(*req.WeeklyTargetDays)); err != nil {
			shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}
	}

	log.Info("settings updated")
	h.GetSettings(w, r)
}
