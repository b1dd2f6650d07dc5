package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"opsdesk/internal/auth"
	"opsdesk/pkg/domain"
)

var httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "opsdesk",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by method, path pattern, and status code.",
}, []string{"method", "path", "code"})

// guard wraps a handler with the session gate. An unresolved gate answers 503
// so clients retry rather than bounce to login; an unauthenticated session
// answers 401; an authenticated user outside the allowed roles is redirected
// to their role's landing page with 303.
func (h *Handler) guard(next http.HandlerFunc, allowed ...domain.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch d := h.gate.Authorize(allowed...); d.Kind {
		case auth.DecisionGrant:
			next(w, r)
		case auth.DecisionPending:
			writeError(w, http.StatusServiceUnavailable, "session state not yet resolved")
		case auth.DecisionLogin:
			w.Header().Set("Location", d.Redirect)
			writeError(w, http.StatusUnauthorized, "login required")
		case auth.DecisionRedirect:
			w.Header().Set("Location", d.Redirect)
			writeError(w, http.StatusSeeOther, "role not permitted")
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withMetrics counts every request against its route pattern.
func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
	})
}
