package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pharmacounter/pkg/domain"
)

func newTestCatalog(t *testing.T, deps Dependencies, opts ...Option) *Catalog {
	t.Helper()
	c := NewCatalog(deps, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Close(ctx); err != nil {
			t.Errorf("close catalog: %v", err)
		}
	})
	return c
}

func TestCatalogViewsFollowRecordChanges(t *testing.T) {
	p := newMemPersistence()
	metrics := &captureMetricsRecorder{}
	c := newTestCatalog(t, Dependencies{Persistence: p}, WithMetrics(metrics), WithIDGenerator(seqIDs()))
	if src := c.Open(context.Background()); src != LoadedBootstrap {
		t.Fatalf("expected bootstrap source, got %s", src)
	}
	if got := c.Stats(); got.Total != 1 || got.MostRecent != "DIPIRONA SÓDICA" {
		t.Fatalf("unexpected initial stats %+v", got)
	}

	s := c.Editor.NewSession()
	_ = s.SetIngredient("amoxicilina")
	_, _ = s.AddSymptom("Infecção")
	_ = s.SetOperator("Ana")
	_ = s.SetAttested(true)
	rec, err := s.Commit(context.Background())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := c.Stats(); got.Total != 2 || got.Verified != 2 || got.MostRecent != "AMOXICILINA" {
		t.Fatalf("stats not refreshed: %+v", got)
	}
	want := []string{"dor", "dor de cabeça", "enxaqueca", "febre", "infecção"}
	if diff := cmp.Diff(want, c.Symptoms()); diff != "" {
		t.Fatalf("symptoms (-want +got):\n%s", diff)
	}

	if got := c.List(domain.FilterCriteria{Query: "amox"}); len(got) != 1 || got[0].ID != rec.ID {
		t.Fatalf("list by query: %+v", got)
	}
	if _, err := c.Get(rec.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	var nf ErrNotFound
	if _, err := c.Get("missing"); !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}

	if !c.Delete(context.Background(), rec.ID) || c.Delete(context.Background(), rec.ID) {
		t.Fatalf("delete should report removal once")
	}
	if got := c.Stats(); got.Total != 1 {
		t.Fatalf("stats after delete: %+v", got)
	}
	if !metrics.has("catalog.load", true) || !metrics.has("catalog.delete", true) || !metrics.has("editor.commit", true) {
		t.Fatalf("missing operation metrics: %+v", metrics.calls)
	}
}

func TestCatalogReopensFromPersistence(t *testing.T) {
	p := newMemPersistence()
	first := NewCatalog(Dependencies{Persistence: p})
	first.Open(context.Background())
	if !first.Delete(context.Background(), "1") {
		t.Fatalf("expected bootstrap record removal")
	}
	if _, err := first.Settings.Update(func(s *domain.Settings) { s.DarkMode = true }); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if err := first.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := newTestCatalog(t, Dependencies{Persistence: p})
	if src := second.Open(context.Background()); src != LoadedFromStore {
		t.Fatalf("expected stored source, got %s", src)
	}
	if got := second.Stats(); got.Total != 0 || got.MostRecent != domain.NoRecentRecord {
		t.Fatalf("empty catalog must stay empty after reload: %+v", got)
	}
	if !second.Settings.Get().DarkMode {
		t.Fatalf("settings not restored")
	}
}
