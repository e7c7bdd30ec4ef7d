package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"helpbot/internal/domain"
)

// Store holds the in-memory document corpus. A load builds a complete
// immutable snapshot and swaps it in atomically, so concurrent readers
// never observe a partially populated corpus.
type Store struct {
	log *zap.Logger

	mu   sync.RWMutex
	snap *snapshot
}

// snapshot is one load generation: the corpus plus its precomputed
// summaries listing. The listing is fixed per generation so repeated
// selector calls send a byte-identical prompt prefix.
type snapshot struct {
	docs    map[string]domain.Document
	order   []string
	listing string
}

// New creates an empty, unloaded store.
func New(log *zap.Logger) *Store {
	return &Store{log: log}
}

// Load scans a directory for *.json corpus files and replaces the
// current snapshot. A missing directory is a no-op that leaves the
// store as it was. Files that fail to parse are skipped; a partial
// corpus is acceptable.
func (s *Store) Load(dir string) {
	if _, err := os.Stat(dir); err != nil {
		s.log.Warn("corpus directory not found", zap.String("dir", dir))
		return
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		s.log.Warn("corpus scan failed", zap.String("dir", dir), zap.Error(err))
		return
	}

	snap := &snapshot{docs: make(map[string]domain.Document, len(paths))}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Error("error loading corpus file", zap.String("path", path), zap.Error(err))
			continue
		}
		var doc domain.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			s.log.Error("error loading corpus file", zap.String("path", path), zap.Error(err))
			continue
		}
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		doc.ID = id
		if _, exists := snap.docs[id]; !exists {
			snap.order = append(snap.order, id)
		}
		// Last-loaded wins on id collision.
		snap.docs[id] = doc
		s.log.Debug("loaded document", zap.String("id", id), zap.String("title", doc.Title))
	}
	snap.listing = buildListing(snap)

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.log.Info("corpus loaded", zap.Int("documents", len(snap.docs)), zap.String("dir", dir))
}

// Loaded reports whether a load has completed.
func (s *Store) Loaded() bool {
	return s.snapshot() != nil
}

// Len returns the number of documents in the current generation.
func (s *Store) Len() int {
	snap := s.snapshot()
	if snap == nil {
		return 0
	}
	return len(snap.docs)
}

// Has reports whether id exists in the current generation.
func (s *Store) Has(id string) bool {
	snap := s.snapshot()
	if snap == nil {
		return false
	}
	_, ok := snap.docs[id]
	return ok
}

// SummariesListing returns the compact per-document listing used in
// selection prompts. It is computed once per load generation, so calls
// within a generation return byte-identical strings.
func (s *Store) SummariesListing() string {
	snap := s.snapshot()
	if snap == nil {
		return ""
	}
	return snap.listing
}

// Lookup returns the documents whose ids are present, preserving the
// order of the requested ids. Unknown ids are silently omitted.
func (s *Store) Lookup(ids []string) []domain.Document {
	snap := s.snapshot()
	if snap == nil {
		return nil
	}
	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := snap.docs[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

// EstimateListingTokens gives a rough token count for the summaries
// listing, useful for checking the prompt-caching minimum.
func (s *Store) EstimateListingTokens() int {
	return len(s.SummariesListing()) / 4
}

func (s *Store) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func buildListing(snap *snapshot) string {
	entries := make([]string, 0, len(snap.order))
	for i, id := range snap.order {
		doc := snap.docs[id]
		title := doc.Title
		if title == "" {
			title = "Untitled"
		}
		summary := doc.ClaudeSummary
		if summary == "" {
			summary = doc.ShortDescription
		}
		var b strings.Builder
		fmt.Fprintf(&b, "[%d] %s\n", i+1, id)
		fmt.Fprintf(&b, "    Title: %s\n", title)
		fmt.Fprintf(&b, "    Category: %s\n", doc.Category)
		fmt.Fprintf(&b, "    Summary: %s\n", summary)
		if len(doc.Keywords) > 0 {
			fmt.Fprintf(&b, "    Keywords: %s\n", strings.Join(doc.Keywords, ", "))
		}
		entries = append(entries, b.String())
	}
	return strings.Join(entries, "\n")
}

var _ domain.Store = (*Store)(nil)
