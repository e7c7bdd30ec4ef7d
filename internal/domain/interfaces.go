package domain

import "context"

// Document is a single help-center article loaded into the corpus.
// The ID is derived from the corpus filename stem and is never
// serialized back into the file.
type Document struct {
	ID               string   `json:"-"`
	Title            string   `json:"title"`
	ShortDescription string   `json:"short_description"`
	Article          string   `json:"article"`
	Category         string   `json:"category"`
	ClaudeSummary    string   `json:"claude_summary,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
}

// Turn is one message in a per-user conversation history.
type Turn struct {
	Role    string
	Content string
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Store provides read access to the loaded document corpus.
type Store interface {
	Loaded() bool
	Len() int
	Has(id string) bool
	SummariesListing() string
	Lookup(ids []string) []Document
}

// Selector picks up to maxDocs relevant document ids for a query.
// Failures degrade to an empty selection, never an error.
type Selector interface {
	Select(ctx context.Context, query string, maxDocs int) []string
}

// Sessions tracks a bounded rolling conversation history per user.
type Sessions interface {
	AppendUser(userID, text string)
	AppendAssistant(userID, text string)
	History(userID string) []Turn
	Reset(userID string)
}

// Responder produces the user-visible reply for an inbound message.
// The returned string is always displayable; failures are converted
// to a labeled error message rather than propagated.
type Responder interface {
	Respond(ctx context.Context, userID, message string) string
}
