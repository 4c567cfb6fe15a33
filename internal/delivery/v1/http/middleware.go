package http

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rautpranav13/IBMaarogyam/pkg/e"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// withRequestID reuses the caller's X-Request-ID or generates one, and echoes it back.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}

// accessLog writes one record per request.
func accessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.With("request_id", requestID(r.Context())).Infof(
				"%s %s %d %dB %v", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start),
			)
		})
	}
}

// recoverer turns a panic into the 500 error envelope.
func recoverer(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.With("request_id", requestID(r.Context())).Errorf(nil, "panic: %v\n%s", rec, debug.Stack())
					WriteError(w, e.ErrInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
