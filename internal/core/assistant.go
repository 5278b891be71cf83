package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"pharmacounter/pkg/domain"
)

// Fixed operator-facing messages.
const (
	MsgNoAnswer     = "Sem resposta disponível."
	MsgAssistFailed = "Erro de conexão com o servidor de IA."
	MsgChatEmpty    = "Erro na geração."
	MsgChatFailed   = "Desculpe, tive um problema ao processar sua dúvida. Tente novamente mais tarde."
)

// Assistant passes generation and chat requests through to the providers,
// feeding chat with the catalog's read-only export.
type Assistant struct {
	generator domain.Generator
	chatter   domain.Chatter
	records   *RecordStore
	o         options

	mu         sync.Mutex
	transcript []domain.ChatMessage
	busy       bool
	epoch      uint64
}

// NewAssistant wires the collaborators. Either may be nil, in which case the
// corresponding call fails with a collaborator error.
func NewAssistant(generator domain.Generator, chatter domain.Chatter, records *RecordStore, opts ...Option) *Assistant {
	return &Assistant{generator: generator, chatter: chatter, records: records, o: buildOptions(opts)}
}

// Generate produces counter-side prose for mode. subject2 is required for compare.
func (a *Assistant) Generate(ctx context.Context, mode domain.AssistMode, subject1, subject2 string) (string, error) {
	subject1, subject2 = strings.TrimSpace(subject1), strings.TrimSpace(subject2)
	if !mode.Valid() {
		return "", ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", mode)}
	}
	if subject1 == "" {
		return "", ValidationError{Field: "subject1", Message: "informe o medicamento"}
	}
	if mode == domain.AssistCompare && subject2 == "" {
		return "", ValidationError{Field: "subject2", Message: "informe o segundo medicamento"}
	}
	if mode != domain.AssistCompare {
		subject2 = ""
	}
	var text string
	err := observeOp(ctx, a.o.tracer, a.o.metrics, a.o.clock, "assistant.generate", func(ctx context.Context) error {
		if a.generator == nil {
			return &CollaboratorError{Op: "generate", Err: errors.New("no generation provider configured")}
		}
		out, err := a.generator.GenerateText(ctx, mode, subject1, subject2)
		if err != nil {
			return &CollaboratorError{Op: "generate", Err: err}
		}
		text = strings.TrimSpace(out)
		if text == "" {
			text = MsgNoAnswer
		}
		return nil
	})
	if err != nil {
		a.o.logger.Warn("generation failed", "mode", mode, "error", err)
		return "", err
	}
	return text, nil
}

// Chat appends the question to the transcript and asks the provider. On
// failure the apology message is appended and the error is returned too.
func (a *Assistant) Chat(ctx context.Context, question string) (domain.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.ChatMessage{}, ValidationError{Field: "text", Message: "mensagem vazia"}
	}
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return domain.ChatMessage{}, fmt.Errorf("%w: a chat reply is already pending", ErrNotAllowed)
	}
	a.busy = true
	epoch := a.epoch
	a.transcript = append(a.transcript, domain.ChatMessage{Speaker: domain.SpeakerUser, Text: question})
	history := append([]domain.ChatMessage(nil), a.transcript...)
	a.mu.Unlock()

	var catalog []domain.CatalogEntry
	if a.records != nil {
		catalog = CatalogContext(a.records.All())
	}
	var reply string
	err := observeOp(ctx, a.o.tracer, a.o.metrics, a.o.clock, "assistant.chat", func(ctx context.Context) error {
		if a.chatter == nil {
			return &CollaboratorError{Op: "chat", Err: errors.New("no chat provider configured")}
		}
		out, err := a.chatter.Chat(ctx, history, catalog)
		if err != nil {
			return &CollaboratorError{Op: "chat", Err: err}
		}
		reply = strings.TrimSpace(out)
		if reply == "" {
			reply = MsgChatEmpty
		}
		return nil
	})
	if err != nil {
		a.o.logger.Warn("chat failed", "error", err)
		reply = MsgChatFailed
	}
	msg := domain.ChatMessage{Speaker: domain.SpeakerAssistant, Text: reply}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.busy = false
	if a.epoch != epoch {
		a.o.logger.Info("discarding chat reply for a cleared transcript")
		return domain.ChatMessage{}, ErrStaleResponse
	}
	a.transcript = append(a.transcript, msg)
	return msg, err
}

// Transcript returns a copy of the conversation so far.
func (a *Assistant) Transcript() []domain.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.ChatMessage(nil), a.transcript...)
}

// Clear empties the transcript. A reply still pending is discarded when it
// arrives.
func (a *Assistant) Clear() {
	a.mu.Lock()
	a.transcript = nil
	a.epoch++
	a.mu.Unlock()
}
