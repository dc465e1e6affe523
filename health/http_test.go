package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonwraymond/resilience"
)

func TestLivenessHandler(t *testing.T) {
	handler := LivenessHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("Body = %v, want 'OK'", rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "text/plain" {
		t.Errorf("Content-Type = %v, want 'text/plain'", rec.Header().Get("Content-Type"))
	}
}

func TestReadinessHandler_Healthy(t *testing.T) {
	reg := NewRegistry()
	reg.Register("test", NewCheckerFunc("test", func(ctx context.Context) Result {
		return Healthy("ok")
	}))

	handler := ReadinessHandler(reg)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("Body = %v, want 'OK'", rec.Body.String())
	}
}

func TestReadinessHandler_Degraded(t *testing.T) {
	reg := NewRegistry()
	reg.Register("test", NewCheckerFunc("test", func(ctx context.Context) Result {
		return Degraded("slow")
	}))

	handler := ReadinessHandler(reg)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d (degraded should still be OK)", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "DEGRADED" {
		t.Errorf("Body = %v, want 'DEGRADED'", rec.Body.String())
	}
}

func TestReadinessHandler_Unhealthy(t *testing.T) {
	reg := NewRegistry()
	reg.Register("test", NewCheckerFunc("test", func(ctx context.Context) Result {
		return Unhealthy("down", nil)
	}))

	handler := ReadinessHandler(reg)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if rec.Body.String() != "UNHEALTHY" {
		t.Errorf("Body = %v, want 'UNHEALTHY'", rec.Body.String())
	}
}

func TestStatusHandler_Healthy(t *testing.T) {
	reg := NewRegistry()
	reg.Register("test", NewCheckerFunc("test", func(ctx context.Context) Result {
		return Healthy("ok").WithDetails(map[string]any{"key": "value"})
	}))

	handler := StatusHandler(reg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %v, want 'application/json'", rec.Header().Get("Content-Type"))
	}

	var response HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response.Status != "healthy" {
		t.Errorf("Response.Status = %v, want 'healthy'", response.Status)
	}
	if response.Timestamp == "" {
		t.Error("Response.Timestamp should not be empty")
	}
	if check, ok := response.Checks["test"]; !ok {
		t.Error("Response.Checks should contain 'test'")
	} else {
		if check.Status != "healthy" {
			t.Errorf("Check.Status = %v, want 'healthy'", check.Status)
		}
	}
}

func TestStatusHandler_Unhealthy(t *testing.T) {
	reg := NewRegistry()
	reg.Register("test", NewCheckerFunc("test", func(ctx context.Context) Result {
		return Unhealthy("down", errors.New("backend down"))
	}))

	handler := StatusHandler(reg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var response HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response.Status != "unhealthy" {
		t.Errorf("Response.Status = %v, want 'unhealthy'", response.Status)
	}
	if check := response.Checks["test"]; check.Error == "" {
		t.Error("Check.Error should contain error message")
	}
}

func TestStatusHandler_OpenBreaker(t *testing.T) {
	cb, err := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig[string]{
		FailureRatio:      1.0,
		MinimumThroughput: 2,
	})
	if err != nil {
		t.Fatalf("failed to create breaker: %v", err)
	}

	boom := errors.New("down")
	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(context.Background(), func(ctx context.Context) (string, error) {
			return "", boom
		})
	}

	reg := NewRegistry()
	reg.Register("payments", NewBreakerChecker("payments", cb))

	handler := StatusHandler(reg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var response HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	check, ok := response.Checks["payments"]
	if !ok {
		t.Fatal("Response.Checks should contain 'payments'")
	}
	if check.Status != "unhealthy" {
		t.Errorf("Check.Status = %v, want 'unhealthy'", check.Status)
	}
	if check.Details["state"] != "open" {
		t.Errorf("Check.Details[state] = %v, want 'open'", check.Details["state"])
	}
}

func TestSingleCheckHandler_Found(t *testing.T) {
	reg := NewRegistry()
	reg.Register("test", NewCheckerFunc("test", func(ctx context.Context) Result {
		return Healthy("ok")
	}))

	handler := SingleCheckHandler(reg, "test")

	req := httptest.NewRequest(http.MethodGet, "/health/test", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response.Status != "healthy" {
		t.Errorf("Response.Status = %v, want 'healthy'", response.Status)
	}
}

func TestSingleCheckHandler_NotFound(t *testing.T) {
	reg := NewRegistry()

	handler := SingleCheckHandler(reg, "nonexistent")

	req := httptest.NewRequest(http.MethodGet, "/health/nonexistent", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSingleCheckHandler_Unhealthy(t *testing.T) {
	reg := NewRegistry()
	reg.Register("test", NewCheckerFunc("test", func(ctx context.Context) Result {
		return Unhealthy("down", nil)
	}))

	handler := SingleCheckHandler(reg, "test")

	req := httptest.NewRequest(http.MethodGet, "/health/test", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRegisterHandlers(t *testing.T) {
	mux := http.NewServeMux()
	reg := NewRegistry()
	reg.Register("test", NewCheckerFunc("test", func(ctx context.Context) Result {
		return Healthy("ok")
	}))

	RegisterHandlers(mux, reg)

	// Test /healthz
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("/healthz Status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Test /readyz
	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("/readyz Status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Test /health
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("/health Status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestStatusHandler_Timeout(t *testing.T) {
	reg := NewRegistry(RegistryConfig{
		Timeout: 50 * time.Millisecond,
	})
	reg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		time.Sleep(200 * time.Millisecond)
		return Healthy("ok")
	}))

	handler := StatusHandler(reg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d for timed out check", rec.Code, http.StatusServiceUnavailable)
	}

	var response HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response.Status != "unhealthy" {
		t.Errorf("Response.Status = %v, want 'unhealthy'", response.Status)
	}
}
