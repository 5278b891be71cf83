package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmacounter/internal/core"
	"pharmacounter/internal/logger"
	"pharmacounter/pkg/domain"
)

// AssistantHandler serves free-text generation and the catalog chat.
type AssistantHandler struct {
	log       *logger.Logger
	assistant *core.Assistant
}

func NewAssistantHandler(log *logger.Logger, assistant *core.Assistant) *AssistantHandler {
	return &AssistantHandler{log: log.With("handler", "AssistantHandler"), assistant: assistant}
}

type assistRequest struct {
	Mode     domain.AssistMode `json:"mode"`
	Subject1 string            `json:"subject1"`
	Subject2 string            `json:"subject2"`
}

func (h *AssistantHandler) Assist(c *gin.Context) {
	var req assistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	text, err := h.assistant.Generate(c.Request.Context(), req.Mode, req.Subject1, req.Subject2)
	if err != nil {
		respondCoreError(c, err, core.MsgAssistFailed)
		return
	}
	RespondOK(c, gin.H{"text": text})
}

type chatRequest struct {
	Text string `json:"text"`
}

// ChatResponse carries the reply and the full transcript. Failed marks a
// provider failure, in which case Reply is the apology message.
type ChatResponse struct {
	Reply      domain.ChatMessage   `json:"reply"`
	Transcript []domain.ChatMessage `json:"transcript"`
	Failed     bool                 `json:"failed,omitempty"`
}

func (h *AssistantHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	reply, err := h.assistant.Chat(c.Request.Context(), req.Text)
	if err != nil && !errors.Is(err, core.ErrCollaborator) {
		respondCoreError(c, err, core.MsgChatFailed)
		return
	}
	RespondOK(c, ChatResponse{Reply: reply, Transcript: h.assistant.Transcript(), Failed: err != nil})
}

func (h *AssistantHandler) Transcript(c *gin.Context) {
	RespondOK(c, gin.H{"transcript": h.assistant.Transcript()})
}

func (h *AssistantHandler) ClearChat(c *gin.Context) {
	h.assistant.Clear()
	c.Status(http.StatusNoContent)
}
