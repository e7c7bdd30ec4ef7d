package selector

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"helpbot/internal/anthropic"
	"helpbot/internal/domain"
)

// API is the subset of the Anthropic client used for selection.
type API interface {
	Messages(ctx context.Context, req anthropic.MessagesRequest) (*anthropic.MessagesResponse, error)
}

// The selection prompt is split into two system blocks. The preamble
// (rules + summaries listing) and the trailer are both byte-identical
// across calls within a load generation, and the trailer carries the
// cache breakpoint, so the backend can reuse the processed listing on
// every repeated query. Keep this split when changing the prompt.
const preambleFormat = `You are a document retrieval assistant. Given a user query and a list of help center documents, identify which documents are most relevant to answering the query.

Rules:
- Return ONLY the document IDs that are relevant, one per line
- Return at most %d documents
- If no documents are relevant, return "NONE"
- Do not explain your choices, just list the IDs

Example output:
Cancelling_a_guest_reservation___Help_Center
Cancellation_policies___Help_Center

Available Documents:
%s`

const trailer = "Ready to select relevant documents."

// Selector asks the model to choose relevant document ids for a query.
type Selector struct {
	store     domain.Store
	api       API
	model     string
	maxTokens int
	log       *zap.Logger
}

// New creates a relevance selector backed by the given store and API.
func New(store domain.Store, api API, model string, maxTokens int, log *zap.Logger) *Selector {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	return &Selector{store: store, api: api, model: model, maxTokens: maxTokens, log: log}
}

// Select returns up to maxDocs ids relevant to the query. Every failure
// path degrades to an empty selection: callers must treat "no relevant
// documents" and "selector error" identically.
func (s *Selector) Select(ctx context.Context, query string, maxDocs int) []string {
	if !s.store.Loaded() || s.store.Len() == 0 {
		s.log.Warn("no documents loaded, skipping selection")
		return nil
	}

	req := anthropic.MessagesRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System: []anthropic.TextBlock{
			{
				Type: "text",
				Text: fmt.Sprintf(preambleFormat, maxDocs, s.store.SummariesListing()),
			},
			{
				Type:         "text",
				Text:         trailer,
				CacheControl: &anthropic.CacheControl{Type: "ephemeral"},
			},
		},
		Messages: []anthropic.Message{
			{Role: domain.RoleUser, Content: "Which document IDs are most relevant to this query: " + query},
		},
	}

	s.log.Info("querying model for relevant docs", zap.String("query", truncate(query, 50)))
	resp, err := s.api.Messages(ctx, req)
	if err != nil {
		s.log.Error("selection call failed", zap.Error(err))
		return nil
	}
	if resp.Usage.CacheCreationInputTokens > 0 {
		s.log.Info("prompt cache created", zap.Int("tokens", resp.Usage.CacheCreationInputTokens))
	}
	if resp.Usage.CacheReadInputTokens > 0 {
		s.log.Info("prompt cache hit", zap.Int("tokens", resp.Usage.CacheReadInputTokens))
	}

	ids := s.parse(resp.Text(), maxDocs)
	s.log.Info("selected documents", zap.Strings("ids", ids))
	return ids
}

// parse extracts ids from the raw response, filters them to known ids,
// then truncates. Truncation happens after filtering so an over-long
// reply full of bad ids cannot crowd out valid ones.
func (s *Selector) parse(text string, maxDocs int) []string {
	trimmed := strings.TrimSpace(text)
	if strings.EqualFold(trimmed, "NONE") {
		s.log.Info("no relevant documents found")
		return nil
	}
	var valid []string
	for _, line := range strings.Split(trimmed, "\n") {
		id := strings.TrimSpace(line)
		if id == "" {
			continue
		}
		if !s.store.Has(id) {
			s.log.Warn("id not found in index, discarding", zap.String("id", id))
			continue
		}
		valid = append(valid, id)
	}
	if maxDocs >= 0 && len(valid) > maxDocs {
		valid = valid[:maxDocs]
	}
	return valid
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ domain.Selector = (*Selector)(nil)
