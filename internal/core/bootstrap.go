package core

import "pharmacounter/pkg/domain"

// BootstrapRecords returns the demonstration catalog seeded when nothing
// usable is stored yet.
func BootstrapRecords() []domain.DrugRecord {
	return []domain.DrugRecord{
		{
			ID:                "1",
			Name:              "DIPIRONA SÓDICA",
			Indications:       "Analgésico e antitérmico para tratamento de dor e febre.",
			Contraindications: "Alergia a pirazolonas, porfiria hepática, asma induzida por analgésicos.",
			Interactions:      "Ciclosporina (diminuição de níveis séricos), álcool.",
			MechanismOfAction: "Inibição da síntese de prostaglandinas no sistema nervoso central.",
			Symptoms:          []string{"dor", "febre", "dor de cabeça", "enxaqueca"},
			IsVerified:        true,
			VerifiedBy:        "Dr. Santos",
			CreatedBy:         "Sistema",
			LastUpdated:       "2024-05-10T10:00:00Z",
			Products: []domain.Product{
				{
					ID:                 "p1",
					ActiveIngredientID: "1",
					TradeName:          "Novalgina",
					Manufacturer:       "Sanofi",
					Type:               domain.TypeSyrup,
					Category:           domain.CategoryReference,
					Dosage:             "500mg/ml",
					Quantity:           "20ml",
					CommonDosage:       "40 a 80 gotas de 6/6h",
				},
			},
		},
	}
}
