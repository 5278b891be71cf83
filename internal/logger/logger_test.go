package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSecretKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core))

	log.Info("configured", "api_key", "abc123", "model", "gemini")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["api_key"] != "[REDACTED]" {
		t.Fatalf("api_key not redacted: %v", fields["api_key"])
	}
	if fields["model"] != "gemini" {
		t.Fatalf("model altered: %v", fields["model"])
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core)).With("component", "store")
	log.Warn("persist failed", "key", "pharma_knowledge_db")

	fields := logs.All()[0].ContextMap()
	if fields["component"] != "store" || fields["key"] != "pharma_knowledge_db" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("dev", "chatty"); err == nil {
		t.Fatalf("expected level parse error")
	}
	l, err := New("prod", "warn")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Debug("dropped")
	l.Sync()
}

func TestOddKeyValuesKeepTrailingValue(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected sanitize output: %v", out)
	}
}
