package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	cgerrors "github.com/matzehuels/conceptgraph/pkg/errors"
	"github.com/matzehuels/conceptgraph/pkg/httputil"
	"github.com/matzehuels/conceptgraph/pkg/observability"
)

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		observability.HTTP().OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.HTTP().OnResponse(ctx, r.Method, r.URL.Path, status, dur)

		kv := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", dur.Round(time.Microsecond),
			"request_id", middleware.GetReqID(ctx),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("request", kv...)
		} else {
			s.logger.Debug("request", kv...)
		}
	})
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			httputil.WriteError(w, cgerrors.New(cgerrors.ErrCodeUnsupported, "no graph store configured"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
