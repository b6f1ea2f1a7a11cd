package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"fjacquet/finsort/internal/logging"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		fields := []logging.Field{
			logging.F("request_id", requestID),
			logging.F(logging.FieldMethod, r.Method),
			logging.F(logging.FieldPath, r.URL.Path),
			logging.F(logging.FieldStatus, rw.statusCode),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
		}
		if rw.statusCode >= 500 {
			s.logger.Warn("Request completed", fields...)
			return
		}
		s.logger.Info("Request completed", fields...)
	})
}
