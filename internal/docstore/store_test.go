package docstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeCorpusFile(t *testing.T, dir, stem, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".json"), []byte(content), 0o644))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "cancelling_a_reservation", `{"title":"Cancelling a reservation","category":"Homeowners","article":"Full text.","short_description":"How to cancel."}`)
	writeCorpusFile(t, dir, "payout_methods", `{"title":"Payout methods","category":"Homeowners","article":"Payout text.","short_description":"Getting paid."}`)
	writeCorpusFile(t, dir, "caretaker_tasks", `{"title":"Caretaker tasks","category":"Caretakers","article":"Task text.","short_description":"Daily tasks."}`)

	store := New(zap.NewNop())
	require.False(t, store.Loaded())
	store.Load(dir)

	require.True(t, store.Loaded())
	assert.Equal(t, 3, store.Len())
	assert.True(t, store.Has("payout_methods"))
	assert.False(t, store.Has("unknown_doc"))

	docs := store.Lookup([]string{"caretaker_tasks", "cancelling_a_reservation"})
	require.Len(t, docs, 2)
	assert.Equal(t, "caretaker_tasks", docs[0].ID)
	assert.Equal(t, "cancelling_a_reservation", docs[1].ID)
	assert.Equal(t, "Cancelling a reservation", docs[1].Title)
}

func TestLoadSkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "good_one", `{"title":"One","article":"a"}`)
	writeCorpusFile(t, dir, "good_two", `{"title":"Two","article":"b"}`)
	writeCorpusFile(t, dir, "broken", `{"title":`)

	store := New(zap.NewNop())
	store.Load(dir)

	assert.Equal(t, 2, store.Len())
	assert.False(t, store.Has("broken"))
}

func TestLoadMissingDirectory(t *testing.T) {
	store := New(zap.NewNop())
	store.Load(filepath.Join(t.TempDir(), "does-not-exist"))

	assert.False(t, store.Loaded())
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.SummariesListing())
}

func TestSummariesListingStable(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "annotated", `{"title":"Annotated","category":"Advisors","article":"x","short_description":"short","claude_summary":"curated summary","keywords":["alpha","beta"]}`)
	writeCorpusFile(t, dir, "plain", `{"title":"Plain","category":"Advisors","article":"y","short_description":"fallback summary"}`)

	store := New(zap.NewNop())
	store.Load(dir)

	first := store.SummariesListing()
	second := store.SummariesListing()
	assert.Equal(t, first, second, "listing must be byte-identical within a load generation")

	assert.Contains(t, first, "[1] annotated")
	assert.Contains(t, first, "Summary: curated summary")
	assert.Contains(t, first, "Keywords: alpha, beta")
	assert.Contains(t, first, "[2] plain")
	assert.Contains(t, first, "Summary: fallback summary")
}

func TestReloadResetsListing(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "first", `{"title":"First","article":"x","short_description":"one"}`)

	store := New(zap.NewNop())
	store.Load(dir)
	before := store.SummariesListing()

	writeCorpusFile(t, dir, "second", `{"title":"Second","article":"y","short_description":"two"}`)
	store.Load(dir)
	after := store.SummariesListing()

	assert.NotEqual(t, before, after)
	assert.Equal(t, 2, store.Len())
}

func TestLookupOmitsUnknownIDs(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "known", `{"title":"Known","article":"x"}`)

	store := New(zap.NewNop())
	store.Load(dir)

	docs := store.Lookup([]string{"missing", "known", "also_missing"})
	require.Len(t, docs, 1)
	assert.Equal(t, "known", docs[0].ID)
}

func TestLookupBeforeLoad(t *testing.T) {
	store := New(zap.NewNop())
	assert.Nil(t, store.Lookup([]string{"anything"}))
}
