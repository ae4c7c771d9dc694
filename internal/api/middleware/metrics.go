package middleware

import (
	"net/http"
	"strconv"
	"time"

	"bookingapi/pkg/metrics"
)

// MetricsMiddleware must wrap the mux directly so that r.Pattern is filled
// in by the time the handler returns.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		rw := wrap(w)
		next.ServeHTTP(rw, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}

		metrics.RecordHttpRequest(
			r.Method,
			endpoint,
			strconv.Itoa(rw.statusCode),
			time.Since(startTime),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
