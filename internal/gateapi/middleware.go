package gateapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pulsescalp/channel-gate/internal/platform/observability"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestID tags every request with an id so gate decisions can be
// correlated with the access-gate consumer's logs.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(headerRequestID, requestID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// r.Pattern keeps the metric cardinality bounded; it is empty for
		// unmatched routes.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}

		observability.APIRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Str("request_id", w.Header().Get(headerRequestID)).
			Dur("duration", time.Since(start)).
			Msg("gate API request")
	})
}
