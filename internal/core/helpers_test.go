package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"pharmacounter/pkg/domain"
)

type memPersistence struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   map[string]int
	loadErr error
	saveErr error
}

func newMemPersistence() *memPersistence {
	return &memPersistence{data: make(map[string][]byte), saves: make(map[string]int)}
}

func (m *memPersistence) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memPersistence) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[key]++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memPersistence) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return string(v), ok
}

func (m *memPersistence) put(key, value string) {
	m.mu.Lock()
	m.data[key] = []byte(value)
	m.mu.Unlock()
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// seqIDs yields id-1, id-2, ... for deterministic assertions.
func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type captureLogger struct {
	mu    sync.Mutex
	calls []string
}

func (c *captureLogger) add(s string) {
	c.mu.Lock()
	c.calls = append(c.calls, s)
	c.mu.Unlock()
}

func (c *captureLogger) Debug(msg string, _ ...any) { c.add("d:" + msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.add("i:" + msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.add("w:" + msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.add("e:" + msg) }

func (c *captureLogger) has(entry string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call == entry {
			return true
		}
	}
	return false
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	mu    sync.Mutex
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	c.calls = append(c.calls, metricsCall{op: op, success: success})
	c.mu.Unlock()
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

// stubExtractor returns facts or err. When gate is non-nil the call blocks
// until gate is closed, after signalling on started.
type stubExtractor struct {
	facts   domain.StructuredFacts
	err     error
	gate    chan struct{}
	started chan struct{}
	calls   int
	mu      sync.Mutex
}

func (s *stubExtractor) ExtractKnowledge(ctx context.Context, _ string) (domain.StructuredFacts, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.gate != nil {
		if s.started != nil {
			s.started <- struct{}{}
		}
		select {
		case <-s.gate:
		case <-ctx.Done():
			return domain.StructuredFacts{}, ctx.Err()
		}
	}
	return s.facts, s.err
}

func paracetamolFacts() domain.StructuredFacts {
	return domain.StructuredFacts{
		Indications:       "Dor leve a moderada e febre.",
		Contraindications: "Hepatopatia grave.",
		Interactions:      "Álcool, varfarina.",
		MechanismOfAction: "Inibição central da COX.",
		Symptoms:          []string{"Febre", "dor", " febre "},
		StandardDosage:    "500 a 1000mg a cada 6h",
		CommonTradeNames: []domain.TradeNameFact{
			{Name: "Tylenol", Manufacturer: "Kenvue", Type: "Comprimido revestido", Category: "Referência"},
			{Name: "Paracetamol Gotas", Type: "Solução oral em gotas", Category: "genérico"},
			{Name: "Dorico", Type: "xarope infantil", Category: "marca"},
		},
	}
}

// newTestStore returns a store closed automatically at test end.
func newTestStore(t *testing.T, p domain.Persistence, opts ...Option) *RecordStore {
	t.Helper()
	s := NewRecordStore(p, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Close(ctx); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s
}

func record(id, name string, products ...domain.Product) domain.DrugRecord {
	return domain.DrugRecord{ID: id, Name: name, Symptoms: []string{}, Products: products}
}
