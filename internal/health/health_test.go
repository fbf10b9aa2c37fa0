package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vladislavdragonenkov/storeguard/internal/health"
)

func TestHandler_AllChecksHealthy(t *testing.T) {
	handler := health.NewHandler("test")
	handler.Register("postgres", func(context.Context) error { return nil })
	handler.Register("redis", func(context.Context) error { return nil })

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var response health.Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if response.Status != health.StatusHealthy {
		t.Fatalf("expected healthy, got %s", response.Status)
	}
	if len(response.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(response.Checks))
	}
	if response.Version != "test" {
		t.Fatalf("expected version test, got %s", response.Version)
	}
}

func TestHandler_FailingCheckMarksUnhealthy(t *testing.T) {
	handler := health.NewHandler("test")
	handler.Register("postgres", func(context.Context) error { return nil })
	handler.Register("kafka", func(context.Context) error { return errors.New("broker down") })

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}

	var response health.Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if response.Status != health.StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", response.Status)
	}
	if response.Checks["kafka"].Message != "broker down" {
		t.Fatalf("expected failure message, got %q", response.Checks["kafka"].Message)
	}
	if response.Checks["postgres"].Status != health.StatusHealthy {
		t.Fatal("healthy check must stay healthy")
	}
}

func TestHandler_NoChecksIsHealthy(t *testing.T) {
	handler := health.NewHandler("")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	handler := health.NewHandler("test")
	handler.Register("postgres", func(context.Context) error { return errors.New("connection refused") })

	recorder := httptest.NewRecorder()
	handler.ReadinessHandler(recorder, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}
}

func TestLivenessHandler(t *testing.T) {
	recorder := httptest.NewRecorder()
	health.LivenessHandler(recorder, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}
