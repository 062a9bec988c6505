package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/health", "")
	if err := NewHealthHandler(nil).Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	c, rec := newTestContext(http.MethodGet, "/health/ready", "")
	if err := NewHealthHandler(map[string]Check{"mongodb": ok, "redis": ok}).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = newTestContext(http.MethodGet, "/health/ready", "")
	if err := NewHealthHandler(map[string]Check{"mongodb": ok, "redis": down}).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if resp["status"] != "degraded" {
		t.Fatalf("expected degraded status, got %v", resp["status"])
	}
	deps := resp["dependencies"].(map[string]any)
	redis := deps["redis"].(map[string]any)
	if redis["status"] != "unhealthy" || redis["error"] != "connection refused" {
		t.Fatalf("unexpected redis status: %+v", redis)
	}
}
