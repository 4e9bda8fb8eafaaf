package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophcam/internal/common"
	"github.com/dmitrijs2005/gophcam/internal/logging"
	"github.com/dmitrijs2005/gophcam/internal/server/models"
)

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// withLogging logs every request once it completes and turns a handler
// panic into a 500.
func withLogging(logger logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				logger.Error(r.Context(), "handler panicked", "method", r.Method, "path", r.URL.Path, "panic", p)
				if !rec.wroteHeader {
					errorResponse(logger, rec, r, http.StatusInternalServerError, "internal error")
				}
			}
			logger.Info(r.Context(), "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}()

		next.ServeHTTP(rec, r)
	})
}

func jsonResponse(logger logging.Logger, w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error(r.Context(), "failed to encode JSON response", "error", err)
	}
}

func errorResponse(logger logging.Logger, w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	jsonResponse(logger, w, r, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// statusFor maps a domain error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound),
		errors.Is(err, common.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrNoTransport):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
