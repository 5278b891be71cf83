package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"pharmacounter/pkg/domain"
)

// Dependencies are the collaborators a Catalog is built from. Only
// Persistence is required.
type Dependencies struct {
	Persistence      domain.Persistence
	Extractor        domain.Extractor
	Generator        domain.Generator
	Chatter          domain.Chatter
	ReminderInterval time.Duration
}

// Catalog ties the stores, editor and assistant together and keeps the
// symptom index and stats re-derived whenever the records change.
type Catalog struct {
	Records   *RecordStore
	Settings  *SettingsStore
	Editor    *Editor
	Assistant *Assistant
	Reminders *ReminderRotator

	o options

	viewMu   sync.RWMutex
	symptoms []string
	stats    domain.Stats

	unsubscribe func()
}

// NewCatalog builds a catalog over deps. Call Open before serving requests
// and Close on shutdown.
func NewCatalog(deps Dependencies, opts ...Option) *Catalog {
	o := buildOptions(opts)
	records := NewRecordStore(deps.Persistence, opts...)
	c := &Catalog{
		Records:   records,
		Settings:  NewSettingsStore(deps.Persistence, opts...),
		Editor:    NewEditor(records, deps.Extractor, opts...),
		Assistant: NewAssistant(deps.Generator, deps.Chatter, records, opts...),
		Reminders: NewReminderRotator(deps.ReminderInterval),
		o:         o,
	}
	c.refresh(records.All())
	c.unsubscribe = records.Subscribe(c.refresh)
	return c
}

func (c *Catalog) refresh(records []domain.DrugRecord) {
	symptoms := AvailableSymptoms(records)
	stats := ComputeStats(records)
	c.viewMu.Lock()
	c.symptoms, c.stats = symptoms, stats
	c.viewMu.Unlock()
}

// Open restores records and settings from persistence.
func (c *Catalog) Open(ctx context.Context) LoadSource {
	var source LoadSource
	_ = observeOp(ctx, c.o.tracer, c.o.metrics, c.o.clock, "catalog.load", func(ctx context.Context) error {
		source = c.Records.Load(ctx)
		c.Settings.Load(ctx)
		return nil
	})
	return source
}

// List returns the records matching criteria in store order.
func (c *Catalog) List(criteria domain.FilterCriteria) []domain.DrugRecord {
	return Filter(c.Records.All(), criteria)
}

// Get returns one record.
func (c *Catalog) Get(id string) (domain.DrugRecord, error) {
	rec, ok := c.Records.Get(id)
	if !ok {
		return domain.DrugRecord{}, ErrNotFound{Entity: "record", ID: id}
	}
	return rec, nil
}

// Delete removes a record; unknown ids report false without error.
func (c *Catalog) Delete(ctx context.Context, id string) bool {
	var removed bool
	_ = observeOp(ctx, c.o.tracer, c.o.metrics, c.o.clock, "catalog.delete", func(context.Context) error {
		removed = c.Records.Delete(id)
		return nil
	})
	return removed
}

// Symptoms returns the current symptom index.
func (c *Catalog) Symptoms() []string {
	c.viewMu.RLock()
	defer c.viewMu.RUnlock()
	return append([]string(nil), c.symptoms...)
}

// Stats returns the current aggregate counters.
func (c *Catalog) Stats() domain.Stats {
	c.viewMu.RLock()
	defer c.viewMu.RUnlock()
	return c.stats
}

// Close stops view updates and flushes pending writes.
func (c *Catalog) Close(ctx context.Context) error {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	return errors.Join(c.Records.Close(ctx), c.Settings.Close(ctx))
}
