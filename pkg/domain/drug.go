// Package domain defines the catalog entities, value types, and the
// collaborator contracts used by the pharmacy-counter knowledge catalog.
package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ProductType classifies the pharmaceutical form of a Product.
type ProductType string

// Closed set of product forms tracked by the catalog.
const (
	// TypeTablet is a compressed tablet.
	TypeTablet ProductType = "Comprimido"
	// TypeLiquid covers drops and other oral liquids.
	TypeLiquid ProductType = "Líquido"
	// TypeSyrup is a syrup; filtered as a liquid.
	TypeSyrup ProductType = "Xarope"
	// TypeSuspension is an oral suspension; filtered as a liquid.
	TypeSuspension ProductType = "Suspensão"
	TypeOintment   ProductType = "Pomada"
	TypeInjectable ProductType = "Injetável"
	TypeCapsule    ProductType = "Cápsula"
	TypeOther      ProductType = "Outro"
)

// ProductTypes lists every ProductType in display order.
var ProductTypes = []ProductType{
	TypeTablet, TypeLiquid, TypeSyrup, TypeSuspension,
	TypeOintment, TypeInjectable, TypeCapsule, TypeOther,
}

// Valid reports whether t is a member of the closed enumeration.
func (t ProductType) Valid() bool {
	for _, known := range ProductTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsLiquidForm reports whether t is clinically a liquid preparation even when
// tracked as a distinct catalog type.
func (t ProductType) IsLiquidForm() bool {
	return t == TypeLiquid || t == TypeSyrup || t == TypeSuspension
}

// ProductCategory is the regulatory-style class of a product relative to the
// original patented formulation.
type ProductCategory string

// Supported product categories.
const (
	CategoryReference ProductCategory = "Referência"
	CategorySimilar   ProductCategory = "Similar"
	CategoryGeneric   ProductCategory = "Genérico"
)

// ProductCategories lists every ProductCategory in display order.
var ProductCategories = []ProductCategory{CategoryReference, CategorySimilar, CategoryGeneric}

// Valid reports whether c is a member of the closed enumeration.
func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryReference, CategorySimilar, CategoryGeneric:
		return true
	default:
		return false
	}
}

// Product is one commercial brand/package of a DrugRecord. Products are owned
// by their parent record; ActiveIngredientID is informational only.
type Product struct {
	ID                 string          `json:"id"`
	ActiveIngredientID string          `json:"activeIngredientId"`
	TradeName          string          `json:"tradeName"`
	Manufacturer       string          `json:"manufacturer"`
	Type               ProductType     `json:"type"`
	Category           ProductCategory `json:"category"`
	Dosage             string          `json:"dosage"`
	Quantity           string          `json:"quantity"`
	CommonDosage       string          `json:"commonDosage"`
}

// DrugRecord is one active pharmaceutical ingredient together with its
// catalog metadata and the products it ships in.
type DrugRecord struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Indications       string    `json:"indications"`
	Contraindications string    `json:"contraindications"`
	Interactions      string    `json:"interactions"`
	MechanismOfAction string    `json:"mechanismOfAction"`
	Symptoms          []string  `json:"symptoms"`
	IsVerified        bool      `json:"isVerified"`
	VerifiedBy        string    `json:"verifiedBy,omitempty"`
	CreatedBy         string    `json:"createdBy,omitempty"`
	LastEditedBy      string    `json:"lastEditedBy,omitempty"`
	LastUpdated       string    `json:"lastUpdated"`
	Products          []Product `json:"products"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (r DrugRecord) Clone() DrugRecord {
	cp := r
	if r.Symptoms != nil {
		cp.Symptoms = append(make([]string, 0, len(r.Symptoms)), r.Symptoms...)
	}
	if r.Products != nil {
		cp.Products = append(make([]Product, 0, len(r.Products)), r.Products...)
	}
	return cp
}

// HasSymptom reports whether the record is tagged with symptom, ignoring case.
func (r DrugRecord) HasSymptom(symptom string) bool {
	needle := FoldCase(symptom)
	for _, s := range r.Symptoms {
		if FoldCase(s) == needle {
			return true
		}
	}
	return false
}

// NormalizeName upper-cases an ingredient name for storage. Casers carry
// state, so one is built per call.
func NormalizeName(name string) string {
	return cases.Upper(language.BrazilianPortuguese).String(norm.NFC.String(strings.TrimSpace(name)))
}

// NormalizeSymptom trims and lower-cases a symptom keyword.
func NormalizeSymptom(symptom string) string {
	return FoldCase(strings.TrimSpace(symptom))
}

// FoldCase composes and lower-cases s for comparisons, so decomposed accents
// match their precomposed form.
func FoldCase(s string) string {
	return cases.Lower(language.BrazilianPortuguese).String(norm.NFC.String(s))
}
