package httptransport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"regdesk/internal/platform/metrics"
)

type pingModule struct{}

func (pingModule) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("pong")) })
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestNewRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(Deps{
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Modules:  []Registrar{pingModule{}},
	})

	t.Run("mounts modules", func(t *testing.T) {
		rr := serve(router, "/ping")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "pong", rr.Body.String())
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("health without checks", func(t *testing.T) {
		rr := serve(router, "/healthz")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", rr.Body.String())
	})

	t.Run("metrics exposition", func(t *testing.T) {
		rr := serve(router, "/metrics")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "regdesk_http_request_duration_seconds")
	})

	t.Run("unknown route", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(router, "/nope").Code)
	})
}

func TestHealthChecks(t *testing.T) {
	router := NewRouter(Deps{Checks: map[string]HealthCheck{
		"redis":    func(context.Context) error { return nil },
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	}})

	rr := serve(router, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "postgres: connection refused", rr.Body.String())
}
