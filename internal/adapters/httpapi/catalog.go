package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmacounter/internal/core"
	"pharmacounter/internal/logger"
	"pharmacounter/pkg/domain"
)

// CatalogHandler serves the read side, deletes, settings and reminders.
type CatalogHandler struct {
	log     *logger.Logger
	catalog *core.Catalog
}

func NewCatalogHandler(log *logger.Logger, catalog *core.Catalog) *CatalogHandler {
	return &CatalogHandler{log: log.With("handler", "CatalogHandler"), catalog: catalog}
}

// ListDrugs filters by ?q=, ?symptom= and any number of ?type=.
func (h *CatalogHandler) ListDrugs(c *gin.Context) {
	criteria := domain.FilterCriteria{
		Query:   c.Query("q"),
		Symptom: c.Query("symptom"),
	}
	for _, raw := range c.QueryArray("type") {
		t := domain.ProductType(raw)
		if !t.Valid() {
			RespondError(c, http.StatusBadRequest, "invalid_type", errInvalid("type", raw))
			return
		}
		if !criteria.HasType(t) {
			criteria.ToggleType(t)
		}
	}
	RespondOK(c, gin.H{"drugs": h.catalog.List(criteria)})
}

func (h *CatalogHandler) GetDrug(c *gin.Context) {
	rec, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		respondCoreError(c, err, "")
		return
	}
	RespondOK(c, rec)
}

// DeleteDrug answers 204 when the record existed and 404 otherwise.
func (h *CatalogHandler) DeleteDrug(c *gin.Context) {
	id := c.Param("id")
	if !h.catalog.Delete(c.Request.Context(), id) {
		respondCoreError(c, core.ErrNotFound{Entity: "record", ID: id}, "")
		return
	}
	h.log.Info("record deleted", "id", id)
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) Symptoms(c *gin.Context) {
	RespondOK(c, gin.H{"symptoms": h.catalog.Symptoms()})
}

func (h *CatalogHandler) Stats(c *gin.Context) {
	RespondOK(c, h.catalog.Stats())
}

func (h *CatalogHandler) Reminder(c *gin.Context) {
	RespondOK(c, gin.H{"text": h.catalog.Reminders.Current()})
}

func (h *CatalogHandler) GetSettings(c *gin.Context) {
	RespondOK(c, h.catalog.Settings.Get())
}

type settingsPatch struct {
	DarkMode    *bool               `json:"darkMode"`
	AccentColor *domain.AccentColor `json:"accentColor"`
	FontFamily  *domain.FontFamily  `json:"fontFamily"`
}

// UpdateSettings applies only the fields present in the body.
func (h *CatalogHandler) UpdateSettings(c *gin.Context) {
	var patch settingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	updated, err := h.catalog.Settings.Update(func(s *domain.Settings) {
		if patch.DarkMode != nil {
			s.DarkMode = *patch.DarkMode
		}
		if patch.AccentColor != nil {
			s.AccentColor = *patch.AccentColor
		}
		if patch.FontFamily != nil {
			s.FontFamily = *patch.FontFamily
		}
	})
	if err != nil {
		respondCoreError(c, err, "")
		return
	}
	RespondOK(c, updated)
}
