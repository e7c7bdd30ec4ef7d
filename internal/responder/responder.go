package responder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"helpbot/internal/anthropic"
	"helpbot/internal/assemble"
	"helpbot/internal/domain"
)

// API is the subset of the Anthropic client used for response generation.
type API interface {
	Messages(ctx context.Context, req anthropic.MessagesRequest) (*anthropic.MessagesResponse, error)
}

const basePrompt = `You an expert AI assistant in a Slack workspace.

Instructions:
- Focus on answering the user's most recent message
- Use prior messages in the conversation as context
- Be helpful but concise
- If the user's question is unclear, ask for clarification
`

const contextPromptFormat = `You an expert AI assistant in a Slack workspace.

Instructions:
- Focus on answering the user's most recent message
- Use prior messages in the conversation as context
- Be helpful but concise
- If the user's question is unclear, ask for clarification

You have access to the following help center documentation:

%s

Use this documentation to provide accurate answers. If you used the documentation, cite the title of the articles.
If the documentation doesn't cover the question, ignore it
`

// Generator produces replies by combining session history, retrieved
// document context and an instruction template in one completion call.
type Generator struct {
	store     domain.Store
	selector  domain.Selector
	sessions  domain.Sessions
	api       API
	model     string
	maxTokens int
	maxDocs   int
	log       *zap.Logger
}

// New creates a response generator. maxDocs bounds the retrieval step.
func New(store domain.Store, selector domain.Selector, sessions domain.Sessions, api API, model string, maxTokens, maxDocs int, log *zap.Logger) *Generator {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	if maxDocs <= 0 {
		maxDocs = 3
	}
	return &Generator{
		store:     store,
		selector:  selector,
		sessions:  sessions,
		api:       api,
		model:     model,
		maxTokens: maxTokens,
		maxDocs:   maxDocs,
		log:       log,
	}
}

// Respond handles one inbound message for a user and always returns a
// displayable string. A failed completion leaves the session without an
// assistant turn and is reported as a labeled error message, never as
// an error value.
func (g *Generator) Respond(ctx context.Context, userID, message string) string {
	ids := g.selector.Select(ctx, message, g.maxDocs)
	docs := g.store.Lookup(ids)

	systemPrompt := basePrompt
	if contextBlock := assemble.ContextBlock(docs); contextBlock != "" {
		systemPrompt = fmt.Sprintf(contextPromptFormat, contextBlock)
		g.log.Info("added documents to context", zap.Int("count", len(docs)))
	}

	g.sessions.AppendUser(userID, message)
	history := g.sessions.History(userID)
	messages := make([]anthropic.Message, 0, len(history))
	for _, turn := range history {
		messages = append(messages, anthropic.Message{Role: turn.Role, Content: turn.Content})
	}

	resp, err := g.api.Messages(ctx, anthropic.MessagesRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    []anthropic.TextBlock{{Type: "text", Text: systemPrompt}},
		Messages:  messages,
	})
	if err != nil {
		g.log.Error("completion failed", zap.String("user", userID), zap.Error(err))
		return fmt.Sprintf("API error: %v", err)
	}

	reply := resp.Text()
	g.sessions.AppendAssistant(userID, reply)
	return reply
}

var _ domain.Responder = (*Generator)(nil)
