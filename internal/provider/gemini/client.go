// Package gemini implements the extraction, generation and chat
// collaborators on top of the Google GenAI SDK.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"pharmacounter/internal/logger"
	"pharmacounter/pkg/domain"
)

const (
	defaultModel   = "gemini-3-flash-preview"
	defaultTimeout = 60 * time.Second
)

// ErrEmptyResponse is returned when extraction yields no text. Generation and
// chat pass empty answers through for the caller to substitute.
var ErrEmptyResponse = errors.New("gemini: empty response")

var (
	_ domain.Extractor = (*Client)(nil)
	_ domain.Generator = (*Client)(nil)
	_ domain.Chatter   = (*Client)(nil)
)

// contentGenerator is the subset of *genai.Models the client calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config selects the model and per-call timeout.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client serves all three collaborator contracts with one model.
type Client struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	log     *logger.Logger
}

// New creates a client for the Gemini API.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newClient(gc.Models, cfg, log), nil
}

func newClient(models contentGenerator, cfg Config, log *logger.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{models: models, model: cfg.Model, timeout: cfg.Timeout, log: log.With("provider", "gemini", "model", cfg.Model)}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// ExtractKnowledge asks for schema-constrained JSON describing ingredient.
func (c *Client) ExtractKnowledge(ctx context.Context, ingredient string) (domain.StructuredFacts, error) {
	text, err := c.generate(ctx, "extract", genai.Text(extractionPrompt(ingredient)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   factsSchema(),
	})
	if err != nil {
		return domain.StructuredFacts{}, err
	}
	if text == "" {
		return domain.StructuredFacts{}, ErrEmptyResponse
	}
	var facts domain.StructuredFacts
	if err := json.Unmarshal([]byte(stripFence(text)), &facts); err != nil {
		return domain.StructuredFacts{}, fmt.Errorf("%w: %v", domain.ErrMalformedFacts, err)
	}
	return facts, nil
}

// GenerateText produces plain prose for the counter. An empty answer is not an error.
func (c *Client) GenerateText(ctx context.Context, mode domain.AssistMode, subject1, subject2 string) (string, error) {
	prompt, err := assistPrompt(mode, subject1, subject2)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, "generate", genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(assistInstruction, genai.RoleUser),
	})
}

// Chat replays history and grounds the answer on the catalog summary.
func (c *Client) Chat(ctx context.Context, history []domain.ChatMessage, catalog []domain.CatalogEntry) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Speaker == domain.SpeakerAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("gemini: chat history is empty")
	}
	return c.generate(ctx, "chat", contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(chatSystemInstruction(catalog), genai.RoleUser),
	})
}

func (c *Client) generate(ctx context.Context, op string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		c.log.Warn("gemini call failed", "op", op, "error", err, "elapsed", time.Since(start))
		return "", fmt.Errorf("gemini %s: %w", op, err)
	}
	text := strings.TrimSpace(resp.Text())
	c.log.Debug("gemini call finished", "op", op, "chars", len(text), "elapsed", time.Since(start))
	return text, nil
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
