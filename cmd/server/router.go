package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ssl2010/englishlearn-api/internal/api"
	apiMiddleware "github.com/ssl2010/englishlearn-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	catalogHandler := api.NewCatalogHandler(app.studentStore, app.itemStore, app.logger)
	practiceHandler := api.NewPracticeHandler(app.practiceService, app.renderer, app.logger)
	gradingHandler := api.NewGradingHandler(app.gradingService, app.logger)
	settingsHandler := api.NewSettingsHandler(app.settingsStore, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Content management
		r.Post("/students", catalogHandler.CreateStudent)
		r.Post("/items", catalogHandler.CreateItem)

		// Worksheet lifecycle
		r.Post("/sessions", practiceHandler.GenerateSession)
		r.Get("/sessions/{id}", practiceHandler.GetSession)
		r.Post("/sessions/{id}/publish", practiceHandler.PublishSession)
		r.Delete("/sessions/{id}", practiceHandler.DeleteSession)
		r.Get("/sessions/{id}/worksheet", practiceHandler.RenderWorksheet)

		// Grading
		r.Post("/sessions/{id}/grade", gradingHandler.UploadMarkedPhoto)
		r.Post("/sessions/{id}/answers", gradingHandler.SubmitManualAnswers)
		r.Post("/submissions/{id}/confirm", gradingHandler.ConfirmGrading)

		// Settings
		r.Get("/settings", settingsHandler.GetSettings)
		r.Put("/settings", settingsHandler.UpdateSettings)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := app.db.PingContext(r.Context()); err != nil {
			app.logger.Error("health check database ping failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
