package domain

import "context"

// Fixed persistence keys.
const (
	RecordsKey  = "pharma_knowledge_db"
	SettingsKey = "pharma_settings"
)

// Persistence is the opaque key/value blob store backing the catalog.
// Load reports found=false for a key that was never saved.
type Persistence interface {
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
	Save(ctx context.Context, key string, data []byte) error
}

// Extractor produces structured knowledge for an ingredient name.
type Extractor interface {
	ExtractKnowledge(ctx context.Context, ingredient string) (StructuredFacts, error)
}

// AssistMode selects the free-text generation task.
type AssistMode string

// Supported generation modes.
const (
	AssistExplain AssistMode = "explain"
	AssistOffer   AssistMode = "offer"
	AssistCompare AssistMode = "compare"
)

// Valid reports whether m is a supported mode.
func (m AssistMode) Valid() bool {
	return m == AssistExplain || m == AssistOffer || m == AssistCompare
}

// Generator produces plain prose for counter staff. subject2 is only used in
// compare mode.
type Generator interface {
	GenerateText(ctx context.Context, mode AssistMode, subject1, subject2 string) (string, error)
}

// Speaker identifies the author of a chat message.
type Speaker string

// Chat participants.
const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Chatter answers free-text questions using the catalog as context.
type Chatter interface {
	Chat(ctx context.Context, history []ChatMessage, catalog []CatalogEntry) (string, error)
}
