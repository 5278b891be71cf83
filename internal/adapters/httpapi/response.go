package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmacounter/internal/core"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondCoreError maps core errors to status codes. Provider error text is
// replaced by collaboratorMsg before it reaches the operator.
func respondCoreError(c *gin.Context, err error, collaboratorMsg string) {
	var (
		ve core.ValidationError
		nf core.ErrNotFound
	)
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{
			Message: ve.Message, Code: "validation_failed", Field: ve.Field,
		}})
	case errors.As(err, &nf):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, core.ErrSessionClosed):
		RespondError(c, http.StatusConflict, "session_closed", err)
	case errors.Is(err, core.ErrStaleResponse):
		RespondError(c, http.StatusConflict, "stale_response", err)
	case errors.Is(err, core.ErrNotAllowed):
		RespondError(c, http.StatusConflict, "not_allowed", err)
	case errors.Is(err, core.ErrCollaborator):
		RespondError(c, http.StatusBadGateway, "collaborator_failed", errors.New(collaboratorMsg))
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
