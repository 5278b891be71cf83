package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pharmacounter/pkg/domain"
)

func newID() string { return uuid.NewString() }

// LoadSource reports where the Record Store's initial sequence came from.
type LoadSource string

const (
	LoadedFromStore LoadSource = "store"
	LoadedBootstrap LoadSource = "bootstrap"
)

// RecordStore owns the ordered sequence of drug records. Mutations are applied
// in memory first and then handed to a background writer; persistence never
// blocks or fails a mutation.
type RecordStore struct {
	mu      sync.RWMutex
	records []domain.DrugRecord

	subMu   sync.Mutex
	subs    map[int]func([]domain.DrugRecord)
	nextSub int

	writer *snapshotWriter
	p      domain.Persistence
	log    Logger
}

// NewRecordStore returns a store seeded with the bootstrap records. Call Load
// to restore persisted data and Close to flush pending writes.
func NewRecordStore(p domain.Persistence, opts ...Option) *RecordStore {
	o := buildOptions(opts)
	return &RecordStore{
		records: BootstrapRecords(),
		subs:    make(map[int]func([]domain.DrugRecord)),
		writer:  newSnapshotWriter(p, domain.RecordsKey, o),
		p:       p,
		log:     o.logger,
	}
}

// Load restores the sequence from persistence. Absent, unreadable or malformed
// data falls back to the bootstrap records; nothing is written until the first
// mutation, so a transient driver failure never overwrites stored data.
func (s *RecordStore) Load(ctx context.Context) LoadSource {
	records, err := s.read(ctx)
	s.mu.Lock()
	if err != nil {
		s.records = BootstrapRecords()
	} else {
		s.records = records
	}
	snapshot := cloneRecords(s.records)
	s.mu.Unlock()

	source := LoadedFromStore
	if err != nil {
		source = LoadedBootstrap
		if errors.Is(err, errNoStoredRecords) {
			s.log.Info("no stored catalog, seeding bootstrap records")
		} else {
			s.log.Warn("stored catalog unusable, seeding bootstrap records", "error", err)
		}
	} else {
		s.log.Info("catalog restored", "records", len(records))
	}
	s.notify(snapshot)
	return source
}

var errNoStoredRecords = errors.New("no stored records")

func (s *RecordStore) read(ctx context.Context) ([]domain.DrugRecord, error) {
	data, ok, err := s.p.Load(ctx, domain.RecordsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoStoredRecords
	}
	var records []domain.DrugRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if records == nil {
		return nil, fmt.Errorf("decode records: null sequence")
	}
	for i, r := range records {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("decode records: record %d lacks id or name", i)
		}
	}
	return records, nil
}

// Upsert replaces the record with the same id in place, or prepends it when
// the id is new.
func (s *RecordStore) Upsert(record domain.DrugRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return ValidationError{Field: "id", Message: "record id is required"}
	}
	if strings.TrimSpace(record.Name) == "" {
		return ValidationError{Field: "name", Message: "record name is required"}
	}
	record = record.Clone()
	s.mu.Lock()
	replaced := false
	for i := range s.records {
		if s.records[i].ID == record.ID {
			s.records[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		s.records = append([]domain.DrugRecord{record}, s.records...)
	}
	snapshot := s.persistLocked()
	s.mu.Unlock()

	s.log.Info("record saved", "id", record.ID, "name", record.Name, "replaced", replaced)
	s.notify(snapshot)
	return nil
}

// Delete removes the record with id. It reports whether anything was removed;
// an unknown id is not an error.
func (s *RecordStore) Delete(id string) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.records {
		if s.records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.records = append(s.records[:idx:idx], s.records[idx+1:]...)
	snapshot := s.persistLocked()
	s.mu.Unlock()

	s.log.Info("record deleted", "id", id)
	s.notify(snapshot)
	return true
}

// All returns a copy of the current sequence in store order.
func (s *RecordStore) All() []domain.DrugRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records)
}

// Get returns a copy of the record with id.
func (s *RecordStore) Get(id string) (domain.DrugRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return domain.DrugRecord{}, false
}

// Subscribe registers fn to receive the sequence after every load or mutation.
// fn runs on the mutating goroutine, must treat the slice as read-only and
// must not call back into Subscribe.
// The returned function unregisters it.
func (s *RecordStore) Subscribe(fn func([]domain.DrugRecord)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close waits for the last queued snapshot to be written.
func (s *RecordStore) Close(ctx context.Context) error {
	return s.writer.Close(ctx)
}

// persistLocked encodes the sequence and queues it. Encoding happens under the
// lock so queued snapshots follow mutation order. Returns a copy for subscribers.
func (s *RecordStore) persistLocked() []domain.DrugRecord {
	data, err := json.Marshal(s.records)
	if err != nil {
		s.log.Error("encode records", "error", err)
	} else {
		s.writer.enqueue(data)
	}
	return cloneRecords(s.records)
}

func (s *RecordStore) notify(snapshot []domain.DrugRecord) {
	s.subMu.Lock()
	fns := make([]func([]domain.DrugRecord), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snapshot)
	}
}

func cloneRecords(in []domain.DrugRecord) []domain.DrugRecord {
	out := make([]domain.DrugRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
