package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// logRequests emits one structured log line per served request and feeds
// the request counter.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveRequest(r.URL.Path, strconv.Itoa(status))
		s.log.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Str("duration", time.Since(start).String()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Logger().Info("request served")
	})
}
