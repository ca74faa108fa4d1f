package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.Header != "Authorization" {
		t.Fatalf("unexpected auth header %q", cfg.Auth.Header)
	}
	if cfg.Auth.LoginFailureWindow != 15*time.Minute {
		t.Fatalf("unexpected failure window %s", cfg.Auth.LoginFailureWindow)
	}
	if cfg.Seed.DefaultUsers {
		t.Fatalf("default users must be opt-in")
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env by default")
	}
	if cfg.UseMemoryStore() {
		t.Fatalf("expected mongo store by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":    "s3cret",
		"JWT_TTL":       "30m",
		"MONGO_DB":      "auth_test",
		"AUDIT_WORKERS": "2",
		"ENV":           "production",
		"STORE_BACKEND": "memory",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Mongo.Database != "auth_test" || cfg.Audit.Workers != 2 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production env")
	}
	if !cfg.UseMemoryStore() {
		t.Fatalf("expected memory store backend")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}
