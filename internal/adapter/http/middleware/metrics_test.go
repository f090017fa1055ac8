package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
	}{
		{
			name:       "records get request",
			method:     http.MethodGet,
			path:       "/api/v1/dunning/pending",
			statusCode: http.StatusTeapot,
		},
		{
			name:       "records post request",
			method:     http.MethodPost,
			path:       "/health",
			statusCode: http.StatusCreated,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			httpRequestsTotal.Reset()
			httpRequestDuration.Reset()
			httpRequestsInFlight.Set(0)

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(tc.statusCode)
			})

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()

			Metrics(next).ServeHTTP(rr, req)

			if !handlerCalled {
				t.Fatalf("next handler was not invoked")
			}

			if got := testutil.ToFloat64(httpRequestsInFlight); got != 0 {
				t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
			}

			counter := httpRequestsTotal.WithLabelValues(tc.method, tc.path, strconv.Itoa(tc.statusCode))
			if got := testutil.ToFloat64(counter); got != 1 {
				t.Fatalf("expected counter to be 1, got %v", got)
			}
		})
	}
}

func TestNormalizePathUsesRoutePattern(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.RoutePatterns = []string{"/api/v1/tenants/{tenantID}/summary"}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenants/tenant-1/summary", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	if got := normalizePath(req); got != "/api/v1/tenants/{tenantID}/summary" {
		t.Fatalf("expected route pattern, got %q", got)
	}
}

func TestNormalizePathFallsBackToRawPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	if got := normalizePath(req); got != "/health" {
		t.Fatalf("expected raw path, got %q", got)
	}
}
