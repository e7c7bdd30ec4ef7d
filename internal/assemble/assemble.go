// Package assemble formats selected documents into the context block
// injected into the response-generation prompt.
package assemble

import (
	"fmt"
	"strings"

	"helpbot/internal/domain"
)

// ContextBlock renders the documents, in the order given, as delimited
// blocks joined by blank lines. An empty input yields an empty string.
func ContextBlock(docs []domain.Document) string {
	if len(docs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(docs))
	for i, doc := range docs {
		title := doc.Title
		if title == "" {
			title = "Untitled"
		}
		parts = append(parts, fmt.Sprintf(
			"--- Document %d: %s ---\nCategory: %s\nContent:\n%s\n",
			i+1, title, doc.Category, doc.Article,
		))
	}
	return strings.Join(parts, "\n\n")
}
