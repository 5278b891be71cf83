package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pharmacounter/pkg/domain"
)

type stubGenerator struct {
	text  string
	err   error
	calls []string
}

func (g *stubGenerator) GenerateText(_ context.Context, mode domain.AssistMode, s1, s2 string) (string, error) {
	g.calls = append(g.calls, string(mode)+"|"+s1+"|"+s2)
	return g.text, g.err
}

type stubChatter struct {
	mu      sync.Mutex
	reply   string
	err     error
	history []domain.ChatMessage
	catalog []domain.CatalogEntry
	gate    chan struct{}
	started chan struct{}
}

func (c *stubChatter) Chat(_ context.Context, history []domain.ChatMessage, catalog []domain.CatalogEntry) (string, error) {
	c.mu.Lock()
	c.history, c.catalog = history, catalog
	c.mu.Unlock()
	if c.gate != nil {
		c.started <- struct{}{}
		<-c.gate
	}
	return c.reply, c.err
}

func TestGenerateValidatesInput(t *testing.T) {
	gen := &stubGenerator{text: "x"}
	a := NewAssistant(gen, nil, nil)
	tests := []struct {
		name  string
		mode  domain.AssistMode
		s1    string
		s2    string
		field string
	}{
		{"unknown mode", "poem", "dipirona", "", "mode"},
		{"blank subject", domain.AssistExplain, "  ", "", "subject1"},
		{"compare without second", domain.AssistCompare, "dipirona", " ", "subject2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Generate(context.Background(), tt.mode, tt.s1, tt.s2)
			var verr ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected validation on %s, got %v", tt.field, err)
			}
		})
	}
	if len(gen.calls) != 0 {
		t.Fatalf("provider must not be called for invalid input")
	}
}

func TestGeneratePassesThrough(t *testing.T) {
	gen := &stubGenerator{text: "  Indicado para dor.  "}
	metrics := &captureMetricsRecorder{}
	a := NewAssistant(gen, nil, nil, WithMetrics(metrics))

	text, err := a.Generate(context.Background(), domain.AssistExplain, " dipirona ", "ignored")
	if err != nil || text != "Indicado para dor." {
		t.Fatalf("Generate() = %q, %v", text, err)
	}
	if _, err := a.Generate(context.Background(), domain.AssistCompare, "dipirona", "paracetamol"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	want := []string{"explain|dipirona|", "compare|dipirona|paracetamol"}
	if diff := cmp.Diff(want, gen.calls); diff != "" {
		t.Fatalf("provider calls (-want +got):\n%s", diff)
	}
	if !metrics.has("assistant.generate", true) {
		t.Fatalf("expected generate metric")
	}

	gen.text = "   "
	if text, _ := a.Generate(context.Background(), domain.AssistOffer, "soro", ""); text != MsgNoAnswer {
		t.Fatalf("empty provider output should yield %q, got %q", MsgNoAnswer, text)
	}
}

func TestGenerateProviderFailure(t *testing.T) {
	for _, gen := range []domain.Generator{nil, &stubGenerator{err: errors.New("503")}} {
		a := NewAssistant(gen, nil, nil)
		_, err := a.Generate(context.Background(), domain.AssistExplain, "dipirona", "")
		if !errors.Is(err, ErrCollaborator) {
			t.Fatalf("expected collaborator error, got %v", err)
		}
	}
}

func TestChatSendsHistoryAndCatalog(t *testing.T) {
	store := newTestStore(t, newMemPersistence())
	chat := &stubChatter{reply: "Dipirona ajuda na febre."}
	a := NewAssistant(nil, chat, store)

	msg, err := a.Chat(context.Background(), "  o que usar para febre? ")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if msg.Speaker != domain.SpeakerAssistant || msg.Text != "Dipirona ajuda na febre." {
		t.Fatalf("unexpected reply %+v", msg)
	}
	if len(chat.history) != 1 || chat.history[0].Text != "o que usar para febre?" {
		t.Fatalf("history must end with the question: %+v", chat.history)
	}
	if len(chat.catalog) != 1 || chat.catalog[0].Name != "DIPIRONA SÓDICA" {
		t.Fatalf("catalog context missing: %+v", chat.catalog)
	}

	if _, err := a.Chat(context.Background(), "e para dor?"); err != nil {
		t.Fatalf("second chat: %v", err)
	}
	if len(chat.history) != 3 {
		t.Fatalf("expected prior turns in history, got %d", len(chat.history))
	}
	if got := a.Transcript(); len(got) != 4 || got[3].Speaker != domain.SpeakerAssistant {
		t.Fatalf("unexpected transcript %+v", got)
	}
	a.Clear()
	if len(a.Transcript()) != 0 {
		t.Fatalf("clear must empty the transcript")
	}
}

func TestChatFailureAppendsApology(t *testing.T) {
	tests := []struct {
		name    string
		chatter *stubChatter
		want    string
		wantErr bool
	}{
		{"provider error", &stubChatter{err: errors.New("boom")}, MsgChatFailed, true},
		{"empty reply", &stubChatter{reply: " "}, MsgChatEmpty, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssistant(nil, tt.chatter, nil)
			msg, err := a.Chat(context.Background(), "dúvida")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if msg.Text != tt.want {
				t.Fatalf("reply %q, want %q", msg.Text, tt.want)
			}
			if tr := a.Transcript(); len(tr) != 2 || tr[1].Text != tt.want {
				t.Fatalf("transcript %+v", tr)
			}
		})
	}
}

func TestChatRejectsWhileBusyAndEmpty(t *testing.T) {
	chat := &stubChatter{reply: "ok", gate: make(chan struct{}), started: make(chan struct{}, 1)}
	a := NewAssistant(nil, chat, nil)
	if _, err := a.Chat(context.Background(), "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank question must be refused, got %v", err)
	}
	done := make(chan error, 1)
	go func() {
		_, err := a.Chat(context.Background(), "primeira")
		done <- err
	}()
	<-chat.started
	if _, err := a.Chat(context.Background(), "segunda"); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("concurrent chat must be refused, got %v", err)
	}
	close(chat.gate)
	if err := <-done; err != nil {
		t.Fatalf("first chat: %v", err)
	}
	if len(a.Transcript()) != 2 {
		t.Fatalf("refused question must not enter the transcript")
	}
}

func TestChatReplyAfterClearIsDiscarded(t *testing.T) {
	chat := &stubChatter{reply: "resposta", gate: make(chan struct{}), started: make(chan struct{}, 1)}
	a := NewAssistant(nil, chat, nil)
	done := make(chan error, 1)
	go func() {
		_, err := a.Chat(context.Background(), "pergunta")
		done <- err
	}()
	<-chat.started
	a.Clear()
	close(chat.gate)
	if err := <-done; !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("reply for a cleared transcript must be stale, got %v", err)
	}
	if tr := a.Transcript(); len(tr) != 0 {
		t.Fatalf("cleared transcript must stay empty, got %+v", tr)
	}
	chat.gate = nil
	if _, err := a.Chat(context.Background(), "nova"); err != nil {
		t.Fatalf("chat after clear: %v", err)
	}
	if tr := a.Transcript(); len(tr) != 2 || tr[0].Speaker != domain.SpeakerUser {
		t.Fatalf("transcript after clear %+v", tr)
	}
}
