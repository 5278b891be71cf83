package core

import (
	"strings"

	"pharmacounter/pkg/domain"
)

const (
	unknownManufacturer = "Desconhecido"
	defaultQuantity     = "1 unidade"
)

// ApplyFacts overlays extracted facts onto draft and returns the new draft.
// draft itself is never modified; invalid facts yield an error and no draft.
func ApplyFacts(draft domain.DrugRecord, ingredient string, facts domain.StructuredFacts, newID func() string) (domain.DrugRecord, error) {
	if err := facts.Validate(); err != nil {
		return domain.DrugRecord{}, err
	}
	out := draft.Clone()
	out.Name = domain.NormalizeName(ingredient)
	out.Indications = facts.Indications
	out.Contraindications = facts.Contraindications
	out.Interactions = facts.Interactions
	out.MechanismOfAction = facts.MechanismOfAction
	out.Symptoms = nil
	for _, s := range facts.Symptoms {
		out.Symptoms = addSymptom(out.Symptoms, s)
	}
	if out.Symptoms == nil {
		out.Symptoms = []string{}
	}
	out.Products = make([]domain.Product, 0, len(facts.CommonTradeNames))
	for _, tn := range facts.CommonTradeNames {
		manufacturer := strings.TrimSpace(tn.Manufacturer)
		if manufacturer == "" {
			manufacturer = unknownManufacturer
		}
		out.Products = append(out.Products, domain.Product{
			ID:                 newID(),
			ActiveIngredientID: draft.ID,
			TradeName:          tn.Name,
			Manufacturer:       manufacturer,
			Type:               InferProductType(tn.Type),
			Category:           InferProductCategory(tn.Category),
			Quantity:           defaultQuantity,
			CommonDosage:       facts.StandardDosage,
		})
	}
	return out, nil
}

// addSymptom appends the normalized symptom unless it is blank or present.
func addSymptom(symptoms []string, raw string) []string {
	s := domain.NormalizeSymptom(raw)
	if s == "" {
		return symptoms
	}
	for _, existing := range symptoms {
		if existing == s {
			return symptoms
		}
	}
	return append(symptoms, s)
}
