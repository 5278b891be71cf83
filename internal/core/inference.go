package core

import (
	"strings"

	"pharmacounter/pkg/domain"
)

type typePattern struct {
	substrings []string
	value      domain.ProductType
}

// typePatterns is evaluated in order; the first matching entry wins.
var typePatterns = []typePattern{
	{[]string{"xarope"}, domain.TypeSyrup},
	{[]string{"suspensão"}, domain.TypeSuspension},
	{[]string{"líquido", "gotas"}, domain.TypeLiquid},
	{[]string{"pomada", "creme"}, domain.TypeOintment},
	{[]string{"injetável"}, domain.TypeInjectable},
	{[]string{"cápsula"}, domain.TypeCapsule},
}

type categoryPattern struct {
	substrings []string
	value      domain.ProductCategory
}

var categoryPatterns = []categoryPattern{
	{[]string{"referência", "referencia"}, domain.CategoryReference},
	{[]string{"genérico", "generico"}, domain.CategoryGeneric},
}

// InferProductType maps a provider's free-text form label onto the catalog
// enumeration, defaulting to Comprimido.
func InferProductType(label string) domain.ProductType {
	raw := domain.FoldCase(label)
	for _, p := range typePatterns {
		if containsAny(raw, p.substrings) {
			return p.value
		}
	}
	return domain.TypeTablet
}

// InferProductCategory maps a provider's free-text category label, defaulting
// to Similar since most extracted brands are not the reference product.
func InferProductCategory(label string) domain.ProductCategory {
	raw := domain.FoldCase(label)
	for _, p := range categoryPatterns {
		if containsAny(raw, p.substrings) {
			return p.value
		}
	}
	return domain.CategorySimilar
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
