package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pharmacounter/pkg/domain"
)

// SessionState is the lifecycle position of an editor session.
type SessionState string

const (
	StateDrafting   SessionState = "drafting"
	StateAugmenting SessionState = "augmenting"
	StateCommitted  SessionState = "committed"
	StateCancelled  SessionState = "cancelled"
)

// Terminal reports whether no further operation is accepted.
func (s SessionState) Terminal() bool { return s == StateCommitted || s == StateCancelled }

// Draft text fields editable through SetField.
const (
	FieldName              = "name"
	FieldIndications       = "indications"
	FieldContraindications = "contraindications"
	FieldInteractions      = "interactions"
	FieldMechanismOfAction = "mechanismOfAction"
)

// Product fields editable through UpdateProduct.
const (
	ProductFieldTradeName    = "tradeName"
	ProductFieldManufacturer = "manufacturer"
	ProductFieldType         = "type"
	ProductFieldCategory     = "category"
	ProductFieldDosage       = "dosage"
	ProductFieldQuantity     = "quantity"
	ProductFieldCommonDosage = "commonDosage"
)

// MsgCommitRequirements is shown when operator identity or attestation is missing.
const MsgCommitRequirements = "Por favor, informe seu nome e revise os dados."

// MsgAugmentFailed is shown when AI pre-fill fails.
const MsgAugmentFailed = "Falha na IA. Verifique conexão."

const isoMillis = "2006-01-02T15:04:05.000Z"

const defaultSessionIdle = 2 * time.Hour

// Editor creates and tracks editor sessions over a Record Store. Sessions not
// looked up for the idle timeout are cancelled and forgotten the next time a
// session is opened or looked up.
type Editor struct {
	store     *RecordStore
	extractor domain.Extractor
	o         options

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewEditor returns an editor committing into store. extractor may be nil, in
// which case AI pre-fill fails with a collaborator error.
func NewEditor(store *RecordStore, extractor domain.Extractor, opts ...Option) *Editor {
	return &Editor{
		store:     store,
		extractor: extractor,
		o:         buildOptions(opts),
		sessions:  make(map[string]*Session),
	}
}

// NewSession opens a session for a brand-new record. The caller ends it with
// Commit or Cancel; an abandoned session expires after the idle timeout.
func (e *Editor) NewSession() *Session {
	s := &Session{
		id:     e.o.newID(),
		editor: e,
		state:  StateDrafting,
		draft:  domain.DrugRecord{Symptoms: []string{}, Products: []domain.Product{}},
	}
	e.track(s)
	return s
}

// EditSession opens a session loaded with a copy of the stored record. The
// operator is pre-filled from the last editor, else the last verifier.
func (e *Editor) EditSession(recordID string) (*Session, error) {
	rec, ok := e.store.Get(recordID)
	if !ok {
		return nil, ErrNotFound{Entity: "record", ID: recordID}
	}
	operator := rec.LastEditedBy
	if operator == "" {
		operator = rec.VerifiedBy
	}
	original := rec.Clone()
	s := &Session{
		id:         e.o.newID(),
		editor:     e,
		state:      StateDrafting,
		original:   &original,
		draft:      rec,
		ingredient: rec.Name,
		operator:   operator,
	}
	e.track(s)
	return s, nil
}

// Session returns an open session by id and marks it as used.
func (e *Editor) Session(id string) (*Session, error) {
	e.ExpireIdle()
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		return nil, ErrNotFound{Entity: "editor session", ID: id}
	}
	s.touched = e.o.clock.Now()
	return s, nil
}

// ExpireIdle cancels and forgets sessions idle for longer than the idle
// timeout, returning how many expired.
func (e *Editor) ExpireIdle() int {
	cutoff := e.o.clock.Now().Add(-e.o.sessionIdle)
	var expired []*Session
	e.mu.Lock()
	for id, s := range e.sessions {
		if s.touched.Before(cutoff) {
			expired = append(expired, s)
			delete(e.sessions, id)
		}
	}
	e.mu.Unlock()
	for _, s := range expired {
		s.mu.Lock()
		if !s.state.Terminal() {
			s.state = StateCancelled
			s.generation++
		}
		s.mu.Unlock()
		e.o.logger.Info("editor session expired", "session", s.id)
	}
	return len(expired)
}

// OpenSessions reports how many sessions are neither committed nor cancelled.
func (e *Editor) OpenSessions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func (e *Editor) track(s *Session) {
	e.ExpireIdle()
	e.mu.Lock()
	s.touched = e.o.clock.Now()
	e.sessions[s.id] = s
	e.mu.Unlock()
	e.o.logger.Debug("editor session opened", "session", s.id, "edit", s.original != nil)
}

func (e *Editor) forget(id string) {
	e.mu.Lock()
	delete(e.sessions, id)
	e.mu.Unlock()
}

// Session is one draft being edited. All methods are safe for concurrent use;
// the extraction call runs without holding the session lock.
type Session struct {
	id     string
	editor *Editor

	// touched is guarded by the editor's lock.
	touched time.Time

	mu         sync.Mutex
	state      SessionState
	generation uint64
	original   *domain.DrugRecord
	draft      domain.DrugRecord
	ingredient string
	operator   string
	attested   bool
}

// SessionView is a point-in-time copy of a session.
type SessionView struct {
	ID         string            `json:"id"`
	State      SessionState      `json:"state"`
	IsEdit     bool              `json:"isEdit"`
	Ingredient string            `json:"ingredient"`
	Operator   string            `json:"operator"`
	Attested   bool              `json:"attested"`
	Draft      domain.DrugRecord `json:"draft"`
}

func (s *Session) ID() string { return s.id }

// IsEdit reports whether the session edits an existing record.
func (s *Session) IsEdit() bool { return s.original != nil }

// View returns a copy of the session state.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionView{
		ID:         s.id,
		State:      s.state,
		IsEdit:     s.original != nil,
		Ingredient: s.ingredient,
		Operator:   s.operator,
		Attested:   s.attested,
		Draft:      s.draft.Clone(),
	}
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() domain.DrugRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// edit runs fn under the lock when the session is still open.
func (s *Session) edit(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return ErrSessionClosed
	}
	return fn()
}

// SetIngredient records the ingredient name typed by the operator.
func (s *Session) SetIngredient(name string) error {
	return s.edit(func() error {
		s.ingredient = name
		return nil
	})
}

// SetField replaces one free-text field of the draft.
func (s *Session) SetField(field, value string) error {
	return s.edit(func() error {
		switch field {
		case FieldName:
			s.draft.Name = value
		case FieldIndications:
			s.draft.Indications = value
		case FieldContraindications:
			s.draft.Contraindications = value
		case FieldInteractions:
			s.draft.Interactions = value
		case FieldMechanismOfAction:
			s.draft.MechanismOfAction = value
		default:
			return ValidationError{Field: field, Message: "unknown draft field"}
		}
		return nil
	})
}

// AddSymptom adds a trimmed, lower-cased keyword. It reports false when the
// keyword is blank or already present.
func (s *Session) AddSymptom(symptom string) (bool, error) {
	var added bool
	err := s.edit(func() error {
		before := len(s.draft.Symptoms)
		s.draft.Symptoms = addSymptom(s.draft.Symptoms, symptom)
		added = len(s.draft.Symptoms) > before
		return nil
	})
	return added, err
}

// RemoveSymptom deletes the exact keyword and reports whether it was present.
func (s *Session) RemoveSymptom(symptom string) (bool, error) {
	var removed bool
	err := s.edit(func() error {
		for i, existing := range s.draft.Symptoms {
			if existing == symptom {
				s.draft.Symptoms = append(s.draft.Symptoms[:i:i], s.draft.Symptoms[i+1:]...)
				removed = true
				return nil
			}
		}
		return nil
	})
	return removed, err
}

// AddProduct appends a blank Comprimido/Referência product and returns it.
func (s *Session) AddProduct() (domain.Product, error) {
	var p domain.Product
	err := s.edit(func() error {
		p = domain.Product{
			ID:                 s.editor.o.newID(),
			ActiveIngredientID: s.draft.ID,
			Type:               domain.TypeTablet,
			Category:           domain.CategoryReference,
		}
		s.draft.Products = append(s.draft.Products, p)
		return nil
	})
	return p, err
}

// UpdateProduct replaces one field of the product at idx.
func (s *Session) UpdateProduct(idx int, field, value string) error {
	return s.UpdateProductFields(idx, map[string]string{field: value})
}

// UpdateProductFields replaces several fields of the product at idx. Either
// every field is applied or, on the first invalid one, none is.
func (s *Session) UpdateProductFields(idx int, fields map[string]string) error {
	return s.edit(func() error {
		if idx < 0 || idx >= len(s.draft.Products) {
			return ValidationError{Field: "products", Message: fmt.Sprintf("no product at position %d", idx)}
		}
		names := make([]string, 0, len(fields))
		for f := range fields {
			names = append(names, f)
		}
		sort.Strings(names)
		p := s.draft.Products[idx]
		for _, f := range names {
			if err := setProductField(&p, f, fields[f]); err != nil {
				return err
			}
		}
		s.draft.Products[idx] = p
		return nil
	})
}

func setProductField(p *domain.Product, field, value string) error {
	switch field {
	case ProductFieldTradeName:
		p.TradeName = value
	case ProductFieldManufacturer:
		p.Manufacturer = value
	case ProductFieldType:
		t := domain.ProductType(value)
		if !t.Valid() {
			return ValidationError{Field: field, Message: fmt.Sprintf("unknown product type %q", value)}
		}
		p.Type = t
	case ProductFieldCategory:
		c := domain.ProductCategory(value)
		if !c.Valid() {
			return ValidationError{Field: field, Message: fmt.Sprintf("unknown product category %q", value)}
		}
		p.Category = c
	case ProductFieldDosage:
		p.Dosage = value
	case ProductFieldQuantity:
		p.Quantity = value
	case ProductFieldCommonDosage:
		p.CommonDosage = value
	default:
		return ValidationError{Field: field, Message: "unknown product field"}
	}
	return nil
}

// RemoveProduct deletes the product at idx.
func (s *Session) RemoveProduct(idx int) error {
	return s.edit(func() error {
		if idx < 0 || idx >= len(s.draft.Products) {
			return ValidationError{Field: "products", Message: fmt.Sprintf("no product at position %d", idx)}
		}
		s.draft.Products = append(s.draft.Products[:idx:idx], s.draft.Products[idx+1:]...)
		return nil
	})
}

// SetOperator records who is attesting the draft.
func (s *Session) SetOperator(name string) error {
	return s.edit(func() error {
		s.operator = name
		return nil
	})
}

// SetAttested records whether the operator confirmed the data was reviewed.
func (s *Session) SetAttested(v bool) error {
	return s.edit(func() error {
		s.attested = v
		return nil
	})
}

// Augment pre-fills a new-record draft from the extraction collaborator. On
// any failure the draft is left untouched. A result arriving after the
// session was committed, cancelled or re-augmented is discarded with
// ErrStaleResponse.
func (s *Session) Augment(ctx context.Context, ingredient string) error {
	e := s.editor
	return observeOp(ctx, e.o.tracer, e.o.metrics, e.o.clock, "editor.augment", func(ctx context.Context) error {
		ingredient = strings.TrimSpace(ingredient)
		s.mu.Lock()
		switch {
		case s.state.Terminal():
			s.mu.Unlock()
			return ErrSessionClosed
		case s.original != nil:
			s.mu.Unlock()
			return fmt.Errorf("%w: pre-fill is only available for new records", ErrNotAllowed)
		case s.state == StateAugmenting:
			s.mu.Unlock()
			return fmt.Errorf("%w: pre-fill already in progress", ErrNotAllowed)
		case ingredient == "":
			s.mu.Unlock()
			return ValidationError{Field: "ingredient", Message: "informe o princípio ativo"}
		}
		s.ingredient = ingredient
		s.state = StateAugmenting
		s.generation++
		gen := s.generation
		s.mu.Unlock()

		facts, err := s.extract(ctx, ingredient)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != gen || s.state != StateAugmenting {
			e.o.logger.Info("discarding stale pre-fill", "session", s.id, "ingredient", ingredient)
			return ErrStaleResponse
		}
		s.state = StateDrafting
		if err != nil {
			e.o.logger.Warn("pre-fill failed", "session", s.id, "ingredient", ingredient, "error", err)
			return &CollaboratorError{Op: "extract", Err: err}
		}
		next, err := ApplyFacts(s.draft, ingredient, facts, e.o.newID)
		if err != nil {
			e.o.logger.Warn("pre-fill returned malformed facts", "session", s.id, "error", err)
			return &CollaboratorError{Op: "extract", Err: err}
		}
		s.draft = next
		e.o.logger.Info("draft pre-filled", "session", s.id, "ingredient", ingredient, "products", len(next.Products))
		return nil
	})
}

func (s *Session) extract(ctx context.Context, ingredient string) (domain.StructuredFacts, error) {
	if s.editor.extractor == nil {
		return domain.StructuredFacts{}, errors.New("no extraction provider configured")
	}
	return s.editor.extractor.ExtractKnowledge(ctx, ingredient)
}

// Commit finalizes the draft and upserts it. The operator identity and the
// attestation are both required; otherwise nothing reaches the store.
func (s *Session) Commit(ctx context.Context) (domain.DrugRecord, error) {
	e := s.editor
	var committed domain.DrugRecord
	err := observeOp(ctx, e.o.tracer, e.o.metrics, e.o.clock, "editor.commit", func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state.Terminal() {
			return ErrSessionClosed
		}
		operator := strings.TrimSpace(s.operator)
		if operator == "" {
			return ValidationError{Field: "operator", Message: MsgCommitRequirements}
		}
		if !s.attested {
			return ValidationError{Field: "attested", Message: MsgCommitRequirements}
		}
		rec, err := s.finalize(operator)
		if err != nil {
			return err
		}
		if err := e.store.Upsert(rec); err != nil {
			return err
		}
		s.state = StateCommitted
		s.generation++
		committed = rec
		return nil
	})
	if err != nil {
		return domain.DrugRecord{}, err
	}
	e.forget(s.id)
	e.o.logger.Info("draft committed", "session", s.id, "id", committed.ID, "operator", committed.VerifiedBy)
	return committed.Clone(), nil
}

// finalize builds the durable record from the draft. Caller holds s.mu.
func (s *Session) finalize(operator string) (domain.DrugRecord, error) {
	rec := s.draft.Clone()
	name := rec.Name
	if strings.TrimSpace(name) == "" {
		name = s.ingredient
	}
	rec.Name = domain.NormalizeName(name)
	if rec.Name == "" {
		return domain.DrugRecord{}, ValidationError{Field: "name", Message: "informe o princípio ativo"}
	}
	if s.original != nil {
		rec.ID = s.original.ID
		rec.CreatedBy = s.original.CreatedBy
		if rec.CreatedBy == "" {
			rec.CreatedBy = operator
		}
		rec.LastEditedBy = operator
	} else {
		rec.ID = s.editor.o.newID()
		rec.CreatedBy = operator
		rec.LastEditedBy = ""
	}
	rec.IsVerified = true
	rec.VerifiedBy = operator
	rec.LastUpdated = s.timestamp()
	if rec.Symptoms == nil {
		rec.Symptoms = []string{}
	}
	if rec.Products == nil {
		rec.Products = []domain.Product{}
	}
	for i := range rec.Products {
		p := &rec.Products[i]
		p.ActiveIngredientID = rec.ID
		if p.Type == "" {
			p.Type = domain.TypeTablet
		}
		if p.Category == "" {
			p.Category = domain.CategoryReference
		}
	}
	return rec, nil
}

// timestamp never precedes the record's previous lastUpdated.
func (s *Session) timestamp() string {
	now := s.editor.o.clock.Now().UTC()
	if s.original != nil {
		if prev, err := time.Parse(time.RFC3339Nano, s.original.LastUpdated); err == nil && !now.After(prev) {
			now = prev.UTC().Add(time.Millisecond)
		}
	}
	return now.Format(isoMillis)
}

// Cancel discards the draft without touching the store.
func (s *Session) Cancel() error {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.state = StateCancelled
	s.generation++
	s.mu.Unlock()
	s.editor.forget(s.id)
	s.editor.o.logger.Debug("editor session cancelled", "session", s.id)
	return nil
}
