package domain

// NoRecentRecord is the Stats.MostRecent sentinel for an empty catalog.
const NoRecentRecord = "none"

// FilterCriteria selects records for the catalog listing. Zero values match
// everything.
type FilterCriteria struct {
	Query   string        `json:"query"`
	Symptom string        `json:"symptom"`
	Types   []ProductType `json:"types"`
}

// ToggleType adds t to the type filter, or removes it when already selected.
func (c *FilterCriteria) ToggleType(t ProductType) {
	for i, existing := range c.Types {
		if existing == t {
			c.Types = append(c.Types[:i:i], c.Types[i+1:]...)
			return
		}
	}
	c.Types = append(c.Types, t)
}

// HasType reports whether t is selected.
func (c FilterCriteria) HasType(t ProductType) bool {
	for _, existing := range c.Types {
		if existing == t {
			return true
		}
	}
	return false
}

// Stats aggregates catalog counters for the dashboard.
type Stats struct {
	Total      int    `json:"total"`
	Verified   int    `json:"verified"`
	Products   int    `json:"products"`
	MostRecent string `json:"mostRecent"`
}

// CatalogEntry is the read-only projection of a record handed to the
// conversational collaborator.
type CatalogEntry struct {
	Name        string   `json:"name"`
	Indications string   `json:"indications"`
	Symptoms    []string `json:"symptoms"`
}
