package middleware

import (
	"log/slog"
	"net/http"

	"github.com/JoannaMikul/10x-cards-sub002/internal/api/shared"
	"github.com/JoannaMikul/10x-cards-sub002/internal/platform/logger"
)

// TraceMiddleware adds a trace ID to the request context and installs a
// trace-tagged logger so every record below this point carries the ID.
// Apply it early in the middleware chain.
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
