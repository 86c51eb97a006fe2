package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/EaziLuizi/raceradar/internal/metrics"
)

// observe logs every request and records it in the HTTP metrics, labelled by route pattern
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			metrics.RecordHTTPRequest(route, strconv.Itoa(status), elapsed.Seconds())
			s.reqLogger.LogRequest(chimw.GetReqID(r.Context()), r.Method, r.URL.Path, status, ww.BytesWritten(), elapsed)
		}()

		next.ServeHTTP(ww, r)
	})
}
