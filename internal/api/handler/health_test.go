package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestHealthHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	handler := NewHealthHandler(map[string]DependencyCheck{"mongodb": ok, "redis": ok})
	c, rec := newTestContext(http.MethodGet, "/health/ready", "")
	if err := handler.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	handler = NewHealthHandler(map[string]DependencyCheck{"mongodb": ok, "redis": down})
	c, rec = newTestContext(http.MethodGet, "/health/ready", "")
	_ = handler.Readiness(c)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "degraded" || resp.Dependencies["redis"].Status != "unhealthy" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
