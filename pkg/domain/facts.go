package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedFacts marks extraction output that is missing required fields.
var ErrMalformedFacts = errors.New("malformed structured facts")

// TradeNameFact is one commercial name returned by the extraction provider.
// Type and Category are free-text labels, not catalog enums.
type TradeNameFact struct {
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Type         string `json:"type,omitempty"`
	Category     string `json:"category,omitempty"`
}

// StructuredFacts is the knowledge extracted for one active ingredient.
type StructuredFacts struct {
	Indications       string          `json:"indications"`
	Contraindications string          `json:"contraindications"`
	Interactions      string          `json:"interactions"`
	MechanismOfAction string          `json:"mechanismOfAction"`
	Symptoms          []string        `json:"symptoms"`
	StandardDosage    string          `json:"standardDosage"`
	CommonTradeNames  []TradeNameFact `json:"commonTradeNames"`
}

// Validate checks the fields the provider schema marks as required. Any
// violation wraps ErrMalformedFacts so callers can treat it as a failure.
func (f StructuredFacts) Validate() error {
	var missing []string
	if strings.TrimSpace(f.Indications) == "" {
		missing = append(missing, "indications")
	}
	if strings.TrimSpace(f.Contraindications) == "" {
		missing = append(missing, "contraindications")
	}
	if strings.TrimSpace(f.Interactions) == "" {
		missing = append(missing, "interactions")
	}
	if strings.TrimSpace(f.MechanismOfAction) == "" {
		missing = append(missing, "mechanismOfAction")
	}
	if f.Symptoms == nil {
		missing = append(missing, "symptoms")
	}
	if f.CommonTradeNames == nil {
		missing = append(missing, "commonTradeNames")
	}
	for i, tn := range f.CommonTradeNames {
		if strings.TrimSpace(tn.Name) == "" {
			missing = append(missing, fmt.Sprintf("commonTradeNames[%d].name", i))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedFacts, strings.Join(missing, ", "))
	}
	return nil
}
