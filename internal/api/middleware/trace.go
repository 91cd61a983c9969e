// Package middleware contains the cross-cutting HTTP middleware applied to
// every route.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ssl2010/englishlearn-api/internal/api/shared"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
)

// TraceMiddleware assigns each request a trace ID and places a trace-tagged
// logger into the request context, so every log line downstream of the
// router carries the same correlation key. Apply it first in the chain.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := slog.With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
