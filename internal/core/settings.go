package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"pharmacounter/pkg/domain"
)

// SettingsStore holds display preferences under their own persistence key.
type SettingsStore struct {
	mu       sync.RWMutex
	settings domain.Settings
	p        domain.Persistence
	writer   *snapshotWriter
	log      Logger
}

// NewSettingsStore starts with the defaults; call Load to restore.
func NewSettingsStore(p domain.Persistence, opts ...Option) *SettingsStore {
	o := buildOptions(opts)
	return &SettingsStore{
		settings: domain.DefaultSettings(),
		p:        p,
		writer:   newSnapshotWriter(p, domain.SettingsKey, o),
		log:      o.logger,
	}
}

// Load restores stored preferences; anything absent or invalid keeps the defaults.
func (s *SettingsStore) Load(ctx context.Context) domain.Settings {
	loaded, err := s.read(ctx)
	if err != nil {
		s.log.Warn("stored settings unusable, using defaults", "error", err)
		loaded = domain.DefaultSettings()
	}
	s.mu.Lock()
	s.settings = loaded
	s.mu.Unlock()
	return loaded
}

func (s *SettingsStore) read(ctx context.Context) (domain.Settings, error) {
	data, ok, err := s.p.Load(ctx, domain.SettingsKey)
	if err != nil {
		return domain.Settings{}, err
	}
	if !ok {
		return domain.DefaultSettings(), nil
	}
	// start from defaults so fields missing from older payloads stay valid
	st := domain.DefaultSettings()
	if err := json.Unmarshal(data, &st); err != nil {
		return domain.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if err := st.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return st, nil
}

// Get returns the current preferences.
func (s *SettingsStore) Get() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update applies fn to a copy, validates the result, stores and persists it.
func (s *SettingsStore) Update(fn func(*domain.Settings)) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.settings
	fn(&next)
	if err := next.Validate(); err != nil {
		return s.settings, ValidationError{Field: "settings", Message: err.Error()}
	}
	s.settings = next
	data, err := json.Marshal(next)
	if err != nil {
		s.log.Error("encode settings", "error", err)
	} else {
		s.writer.enqueue(data)
	}
	return next, nil
}

// Close waits for the last queued settings write.
func (s *SettingsStore) Close(ctx context.Context) error {
	return s.writer.Close(ctx)
}
