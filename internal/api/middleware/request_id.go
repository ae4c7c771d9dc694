package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"bookingapi/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware keeps a caller supplied request id or generates one,
// echoes it back and puts it on the context for the logger.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), requestID)))
	})
}

// Chain applies the standard middleware stack around the router.
func Chain(mux http.Handler) http.Handler {
	return RequestIDMiddleware(TracingMiddleware(MetricsMiddleware(mux)))
}
