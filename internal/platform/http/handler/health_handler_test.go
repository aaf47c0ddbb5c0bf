package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func setupRouter(checks map[string]Check) *gin.Engine {
	h := Health(checks)
	r := gin.New()
	r.GET("/healthz", h)
	r.HEAD("/healthz", h)
	r.OPTIONS("/healthz", h)
	return r
}

func TestHealth_GET(t *testing.T) {
	t.Parallel()

	router := setupRouter(nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", response.Status)
	}
	if response.Checks != nil {
		t.Errorf("expected no checks, got %v", response.Checks)
	}

	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected Cache-Control 'no-store', got %q", w.Header().Get("Cache-Control"))
	}
}

func TestHealth_Checks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		checks         map[string]Check
		expectedStatus string
		expectedChecks map[string]string
	}{
		{
			name: "all healthy",
			checks: map[string]Check{
				"redis": func(ctx context.Context) error { return nil },
			},
			expectedStatus: "ok",
			expectedChecks: map[string]string{"redis": "ok"},
		},
		{
			name: "one failing",
			checks: map[string]Check{
				"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
				"plantnet": func(ctx context.Context) error { return nil },
			},
			expectedStatus: "degraded",
			expectedChecks: map[string]string{"redis": "connection refused", "plantnet": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			setupRouter(tt.checks).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if w.Code != http.StatusOK {
				t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			var response healthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Status != tt.expectedStatus {
				t.Errorf("expected status %q, got %q", tt.expectedStatus, response.Status)
			}
			for name, want := range tt.expectedChecks {
				if got := response.Checks[name]; got != want {
					t.Errorf("check %s: expected %q, got %q", name, want, got)
				}
			}
		})
	}
}

func TestHealth_CheckHasDeadline(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	checks := map[string]Check{
		"redis": func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		},
	}

	w := httptest.NewRecorder()
	setupRouter(checks).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if !hasDeadline {
		t.Error("expected check context to carry a deadline")
	}
}

func TestHealth_HEAD(t *testing.T) {
	t.Parallel()

	called := false
	router := setupRouter(map[string]Check{
		"redis": func(ctx context.Context) error {
			called = true
			return nil
		},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodHead, "/healthz", nil)

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	// HEAD should have no body
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body for HEAD request, got %d bytes", w.Body.Len())
	}
	if called {
		t.Error("HEAD should not run dependency checks")
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected Cache-Control 'no-store', got %q", w.Header().Get("Cache-Control"))
	}
}

func TestHealth_OPTIONS(t *testing.T) {
	t.Parallel()

	router := setupRouter(nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/healthz", nil)

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected Cache-Control 'no-store', got %q", w.Header().Get("Cache-Control"))
	}
}
