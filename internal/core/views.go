package core

import (
	"sort"
	"strings"

	"pharmacounter/pkg/domain"
)

// AvailableSymptoms returns every symptom keyword in records, lower-cased,
// deduplicated and sorted ascending.
func AvailableSymptoms(records []domain.DrugRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for _, s := range r.Symptoms {
			s = domain.NormalizeSymptom(s)
			if s == "" {
				continue
			}
			seen[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Filter returns the records matching every criterion, in input order.
func Filter(records []domain.DrugRecord, c domain.FilterCriteria) []domain.DrugRecord {
	out := make([]domain.DrugRecord, 0, len(records))
	for _, r := range records {
		if matchesQuery(r, c.Query) && matchesSymptom(r, c.Symptom) && matchesTypes(r, c.Types) {
			out = append(out, r)
		}
	}
	return out
}

func matchesQuery(r domain.DrugRecord, query string) bool {
	if query == "" {
		return true
	}
	needle := domain.FoldCase(query)
	if strings.Contains(domain.FoldCase(r.Name), needle) {
		return true
	}
	for _, p := range r.Products {
		if strings.Contains(domain.FoldCase(p.TradeName), needle) {
			return true
		}
	}
	return false
}

// matchesSymptom also searches the indications text, since not every
// indication carries a symptom tag.
func matchesSymptom(r domain.DrugRecord, symptom string) bool {
	if symptom == "" {
		return true
	}
	return r.HasSymptom(symptom) || strings.Contains(domain.FoldCase(r.Indications), domain.FoldCase(symptom))
}

// matchesTypes treats a Líquido selection as also covering syrups and suspensions.
func matchesTypes(r domain.DrugRecord, types []domain.ProductType) bool {
	if len(types) == 0 {
		return true
	}
	wantLiquid := false
	for _, t := range types {
		if t == domain.TypeLiquid {
			wantLiquid = true
		}
	}
	for _, p := range r.Products {
		for _, t := range types {
			if p.Type == t {
				return true
			}
		}
		if wantLiquid && p.Type.IsLiquidForm() {
			return true
		}
	}
	return false
}

// ComputeStats aggregates counters. MostRecent is the name at position 0,
// which only changes when a new record is prepended.
func ComputeStats(records []domain.DrugRecord) domain.Stats {
	st := domain.Stats{Total: len(records), MostRecent: domain.NoRecentRecord}
	for _, r := range records {
		if r.IsVerified {
			st.Verified++
		}
		st.Products += len(r.Products)
	}
	if len(records) > 0 {
		st.MostRecent = records[0].Name
	}
	return st
}

// CatalogContext projects records into the read-only export handed to the
// conversational collaborator.
func CatalogContext(records []domain.DrugRecord) []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, 0, len(records))
	for _, r := range records {
		out = append(out, domain.CatalogEntry{
			Name:        r.Name,
			Indications: r.Indications,
			Symptoms:    append([]string(nil), r.Symptoms...),
		})
	}
	return out
}
