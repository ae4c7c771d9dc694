package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingapi/pkg/logger"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	t.Run("generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/booking/1", nil))

		id := rec.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("keeps the caller id", func(t *testing.T) {
		want := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/v1/booking/1", nil)
		req.Header.Set(RequestIDHeader, want)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, want, rec.Header().Get(RequestIDHeader))
		assert.Equal(t, want, seen)
	})

	t.Run("replaces a malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/booking/1", nil)
		req.Header.Set(RequestIDHeader, "<script>")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.NotEqual(t, "<script>", rec.Header().Get(RequestIDHeader))
	})
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := wrap(rec)

	rw.WriteHeader(http.StatusConflict)
	rw.WriteHeader(http.StatusOK)

	assert.Equal(t, http.StatusConflict, rw.statusCode)
	assert.Same(t, rw, wrap(rw))
}

func TestResponseWriterDefaultsToOK(t *testing.T) {
	rw := wrap(httptest.NewRecorder())
	_, err := rw.Write([]byte("ok"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rw.statusCode)
}

func TestChainPassesStatusThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/property/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	Chain(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/property/7", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	Chain(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
