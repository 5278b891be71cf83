package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pharmacounter/internal/core"
	"pharmacounter/internal/logger"
)

// EditorHandler exposes editor sessions. Each session is addressed by the
// id returned on creation and lives until commit or cancel.
type EditorHandler struct {
	log    *logger.Logger
	editor *core.Editor
}

func NewEditorHandler(log *logger.Logger, editor *core.Editor) *EditorHandler {
	return &EditorHandler{log: log.With("handler", "EditorHandler"), editor: editor}
}

func errInvalid(field, value string) error {
	return fmt.Errorf("invalid %s %q", field, value)
}

type openSessionRequest struct {
	RecordID string `json:"recordId"`
}

// OpenSession starts a new-record session, or an edit session when recordId is set.
func (h *EditorHandler) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	var (
		s   *core.Session
		err error
	)
	if req.RecordID == "" {
		s = h.editor.NewSession()
	} else if s, err = h.editor.EditSession(req.RecordID); err != nil {
		respondCoreError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, s.View())
}

// session resolves :sid or writes the 404 itself.
func (h *EditorHandler) session(c *gin.Context) (*core.Session, bool) {
	s, err := h.editor.Session(c.Param("sid"))
	if err != nil {
		respondCoreError(c, err, "")
		return nil, false
	}
	return s, true
}

func (h *EditorHandler) GetDraft(c *gin.Context) {
	if s, ok := h.session(c); ok {
		RespondOK(c, s.View())
	}
}

type draftPatch struct {
	Ingredient        *string `json:"ingredient"`
	Name              *string `json:"name"`
	Indications       *string `json:"indications"`
	Contraindications *string `json:"contraindications"`
	Interactions      *string `json:"interactions"`
	MechanismOfAction *string `json:"mechanismOfAction"`
	Operator          *string `json:"operator"`
	Attested          *bool   `json:"attested"`
}

// UpdateDraft applies the fields present in the body.
func (h *EditorHandler) UpdateDraft(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var patch draftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	steps := []func() error{}
	if patch.Ingredient != nil {
		steps = append(steps, func() error { return s.SetIngredient(*patch.Ingredient) })
	}
	for field, v := range map[string]*string{
		core.FieldName:              patch.Name,
		core.FieldIndications:       patch.Indications,
		core.FieldContraindications: patch.Contraindications,
		core.FieldInteractions:      patch.Interactions,
		core.FieldMechanismOfAction: patch.MechanismOfAction,
	} {
		if v != nil {
			steps = append(steps, func() error { return s.SetField(field, *v) })
		}
	}
	if patch.Operator != nil {
		steps = append(steps, func() error { return s.SetOperator(*patch.Operator) })
	}
	if patch.Attested != nil {
		steps = append(steps, func() error { return s.SetAttested(*patch.Attested) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			respondCoreError(c, err, "")
			return
		}
	}
	RespondOK(c, s.View())
}

type prefillRequest struct {
	Ingredient string `json:"ingredient"`
}

func (h *EditorHandler) Prefill(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req prefillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := s.Augment(c.Request.Context(), req.Ingredient); err != nil {
		respondCoreError(c, err, core.MsgAugmentFailed)
		return
	}
	RespondOK(c, s.View())
}

type symptomRequest struct {
	Symptom string `json:"symptom"`
}

func (h *EditorHandler) AddSymptom(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req symptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	added, err := s.AddSymptom(req.Symptom)
	if err != nil {
		respondCoreError(c, err, "")
		return
	}
	RespondOK(c, gin.H{"added": added, "session": s.View()})
}

func (h *EditorHandler) RemoveSymptom(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	removed, err := s.RemoveSymptom(c.Param("symptom"))
	if err != nil {
		respondCoreError(c, err, "")
		return
	}
	RespondOK(c, gin.H{"removed": removed, "session": s.View()})
}

func (h *EditorHandler) AddProduct(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	p, err := s.AddProduct()
	if err != nil {
		respondCoreError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, p)
}

var productFields = []string{
	core.ProductFieldTradeName,
	core.ProductFieldManufacturer,
	core.ProductFieldType,
	core.ProductFieldCategory,
	core.ProductFieldDosage,
	core.ProductFieldQuantity,
	core.ProductFieldCommonDosage,
}

// UpdateProduct takes a flat object of product fields, e.g. {"type":"Xarope"}.
func (h *EditorHandler) UpdateProduct(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	idx, ok := productIndex(c)
	if !ok {
		return
	}
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	known := make(map[string]bool, len(productFields))
	for _, f := range productFields {
		known[f] = true
	}
	for f := range fields {
		if !known[f] {
			RespondError(c, http.StatusBadRequest, "invalid_request", errInvalid("product field", f))
			return
		}
	}
	if err := s.UpdateProductFields(idx, fields); err != nil {
		respondCoreError(c, err, "")
		return
	}
	RespondOK(c, s.View())
}

func (h *EditorHandler) RemoveProduct(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	idx, ok := productIndex(c)
	if !ok {
		return
	}
	if err := s.RemoveProduct(idx); err != nil {
		respondCoreError(c, err, "")
		return
	}
	RespondOK(c, s.View())
}

func productIndex(c *gin.Context) (int, bool) {
	raw := c.Param("idx")
	idx, err := strconv.Atoi(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", errInvalid("product index", raw))
		return 0, false
	}
	return idx, true
}

type commitRequest struct {
	Operator *string `json:"operator"`
	Attested *bool   `json:"attested"`
}

// Commit optionally sets operator/attestation from the body, then commits.
func (h *EditorHandler) Commit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req commitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	if req.Operator != nil {
		if err := s.SetOperator(*req.Operator); err != nil {
			respondCoreError(c, err, "")
			return
		}
	}
	if req.Attested != nil {
		if err := s.SetAttested(*req.Attested); err != nil {
			respondCoreError(c, err, "")
			return
		}
	}
	rec, err := s.Commit(c.Request.Context())
	if err != nil {
		respondCoreError(c, err, "")
		return
	}
	h.log.Info("record committed", "id", rec.ID, "operator", rec.VerifiedBy)
	RespondOK(c, rec)
}

func (h *EditorHandler) Cancel(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Cancel(); err != nil {
		respondCoreError(c, err, "")
		return
	}
	c.Status(http.StatusNoContent)
}
