package health

import (
	"context"
	"testing"

	"github.com/explainify/explainify-server-go/internal/config"
)

func TestCollectDegradedWithoutAPIKey(t *testing.T) {
	cfg := &config.Config{
		Gemini: config.GeminiConfig{
			APIKeys:        nil,
			Model:          "gemini-2.5-flash",
			TimeoutSeconds: 10,
			MaxAttempts:    2,
		},
	}

	resp := Collect(context.Background(), cfg, false)
	if resp.Status != "degraded" {
		t.Fatalf("expected degraded status, got %s", resp.Status)
	}
	if resp.Components["gemini"].Status != "degraded" {
		t.Fatalf("expected gemini degraded, got %s", resp.Components["gemini"].Status)
	}
	if resp.Components["result_cache"].Status != "ok" {
		t.Fatalf("expected result_cache ok, got %s", resp.Components["result_cache"].Status)
	}
}

func TestCollectOKWithAPIKey(t *testing.T) {
	cfg := &config.Config{
		Gemini: config.GeminiConfig{
			APIKeys: []string{"key"},
			Model:   "gemini-2.5-flash",
		},
	}

	resp := Collect(context.Background(), cfg, false)
	if resp.Status != "ok" {
		t.Fatalf("expected ok status, got %s", resp.Status)
	}
	if resp.Components["app"].Status != "ok" {
		t.Fatalf("expected app ok")
	}
	if resp.Components["database"].Status != "ok" {
		t.Fatalf("expected database ok when shallow")
	}
}
