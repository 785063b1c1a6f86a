package observability

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// Audit writes one "audit.event" record through the default logger. Callers
// append the subject ids of the event (user_id, policy_id, ...) as attrs.
func Audit(r *http.Request, event string, attrs ...any) {
	ctx := r.Context()
	record := make([]any, 0, 10+len(attrs))
	record = append(record,
		"event_name", event,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(ctx),
	)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record = append(record, "trace_id", sc.TraceID().String())
	}
	record = append(record, attrs...)
	slog.InfoContext(ctx, "audit.event", record...)
}
