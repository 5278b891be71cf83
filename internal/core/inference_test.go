package core

import (
	"testing"

	"golang.org/x/text/unicode/norm"

	"pharmacounter/pkg/domain"
)

func TestInferProductType(t *testing.T) {
	tests := []struct {
		label string
		want  domain.ProductType
	}{
		{"Xarope", domain.TypeSyrup},
		{"xarope pediátrico", domain.TypeSyrup},
		{"Suspensão oral", domain.TypeSuspension},
		{"Líquido", domain.TypeLiquid},
		{"Solução oral (gotas)", domain.TypeLiquid},
		{"Pomada", domain.TypeOintment},
		{"Creme dermatológico", domain.TypeOintment},
		{"Solução injetável", domain.TypeInjectable},
		{"Cápsula gelatinosa", domain.TypeCapsule},
		{"Comprimido revestido", domain.TypeTablet},
		{"Spray nasal", domain.TypeTablet},
		{"", domain.TypeTablet},
		// ordered patterns: syrup wins over drops
		{"Xarope em gotas", domain.TypeSyrup},
	}
	for _, tt := range tests {
		if got := InferProductType(tt.label); got != tt.want {
			t.Errorf("InferProductType(%q) = %s, want %s", tt.label, got, tt.want)
		}
	}
}

func TestInferProductCategory(t *testing.T) {
	tests := []struct {
		label string
		want  domain.ProductCategory
	}{
		{"Referência", domain.CategoryReference},
		{"medicamento de referencia", domain.CategoryReference},
		{"Genérico", domain.CategoryGeneric},
		{"GENERICO", domain.CategoryGeneric},
		{"Similar", domain.CategorySimilar},
		{"marca própria", domain.CategorySimilar},
		{"", domain.CategorySimilar},
	}
	for _, tt := range tests {
		if got := InferProductCategory(tt.label); got != tt.want {
			t.Errorf("InferProductCategory(%q) = %s, want %s", tt.label, got, tt.want)
		}
	}
}

func TestInferenceMatchesDecomposedLabels(t *testing.T) {
	if got := InferProductType(norm.NFD.String("Suspensão oral")); got != domain.TypeSuspension {
		t.Errorf("decomposed suspension label inferred %s", got)
	}
	if got := InferProductCategory(norm.NFD.String("Genérico")); got != domain.CategoryGeneric {
		t.Errorf("decomposed generic label inferred %s", got)
	}
}
