package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/2beens/gymcoach/internal/auth"
	"github.com/2beens/gymcoach/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PanicRecovery turns a handler panic into a 500 and logs the stack with
// the route and the logged user.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				fields := log.Fields{
					"method": req.Method,
					"path":   req.URL.Path,
				}
				if username, ok := auth.UsernameFromContext(req.Context()); ok {
					fields["user"] = username
				}
				log.WithFields(fields).Errorf("panic serving request: %v\n%s", rec, debug.Stack())

				trace.SpanFromContext(req.Context()).SetStatus(codes.Error, "panic")
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				http.Error(w, "internal error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, req)
		})
	}
}
