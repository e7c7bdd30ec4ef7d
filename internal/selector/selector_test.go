package selector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"helpbot/internal/anthropic"
	"helpbot/internal/docstore"
)

type fakeAPI struct {
	resp    *anthropic.MessagesResponse
	err     error
	calls   int
	lastReq anthropic.MessagesRequest
}

func (f *fakeAPI) Messages(_ context.Context, req anthropic.MessagesRequest) (*anthropic.MessagesResponse, error) {
	f.calls++
	f.lastReq = req
	return f.resp, f.err
}

func textResponse(text string) *anthropic.MessagesResponse {
	return &anthropic.MessagesResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

func loadedStore(t *testing.T, files map[string]string) *docstore.Store {
	t.Helper()
	dir := t.TempDir()
	for stem, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".json"), []byte(content), 0o644))
	}
	store := docstore.New(zap.NewNop())
	store.Load(dir)
	return store
}

func testCorpus(t *testing.T) *docstore.Store {
	return loadedStore(t, map[string]string{
		"cancelling_a_guest_reservation": `{"title":"Cancelling a guest reservation","category":"Homeowners","article":"How to cancel.","keywords":["cancel","reservation","guest"]}`,
		"payout_methods":                 `{"title":"Payout methods","category":"Homeowners","article":"How to get paid."}`,
		"caretaker_tasks":                `{"title":"Caretaker tasks","category":"Caretakers","article":"Daily tasks."}`,
	})
}

func TestSelectEmptyStoreSkipsCall(t *testing.T) {
	api := &fakeAPI{resp: textResponse("anything")}
	sel := New(docstore.New(zap.NewNop()), api, "test-model", 256, zap.NewNop())

	assert.Empty(t, sel.Select(context.Background(), "query", 3))
	assert.Equal(t, 0, api.calls, "empty store must not issue an API call")
}

func TestSelectReturnsMatchingIDs(t *testing.T) {
	api := &fakeAPI{resp: textResponse("cancelling_a_guest_reservation\npayout_methods\n")}
	sel := New(testCorpus(t), api, "test-model", 256, zap.NewNop())

	ids := sel.Select(context.Background(), "How do I cancel a guest reservation?", 3)
	assert.Equal(t, []string{"cancelling_a_guest_reservation", "payout_methods"}, ids)
}

func TestSelectNoneIsCaseInsensitive(t *testing.T) {
	for _, raw := range []string{"NONE", "none", "  None \n"} {
		api := &fakeAPI{resp: textResponse(raw)}
		sel := New(testCorpus(t), api, "test-model", 256, zap.NewNop())
		assert.Empty(t, sel.Select(context.Background(), "query", 3), "response %q", raw)
	}
}

func TestSelectDiscardsUnknownIDs(t *testing.T) {
	api := &fakeAPI{resp: textResponse("made_up_doc\ncancelling_a_guest_reservation")}
	sel := New(testCorpus(t), api, "test-model", 256, zap.NewNop())

	ids := sel.Select(context.Background(), "query", 3)
	assert.Equal(t, []string{"cancelling_a_guest_reservation"}, ids)
}

func TestSelectTruncatesAfterFiltering(t *testing.T) {
	// Unknown ids come first; truncating before filtering would lose
	// valid documents.
	api := &fakeAPI{resp: textResponse("bogus_one\nbogus_two\ncancelling_a_guest_reservation\npayout_methods\ncaretaker_tasks")}
	sel := New(testCorpus(t), api, "test-model", 256, zap.NewNop())

	ids := sel.Select(context.Background(), "query", 2)
	assert.Equal(t, []string{"cancelling_a_guest_reservation", "payout_methods"}, ids)
}

func TestSelectFailsSoftOnAPIError(t *testing.T) {
	api := &fakeAPI{err: errors.New("boom")}
	sel := New(testCorpus(t), api, "test-model", 256, zap.NewNop())

	assert.Empty(t, sel.Select(context.Background(), "query", 3))
}

func TestSelectPromptCacheBoundary(t *testing.T) {
	api := &fakeAPI{resp: textResponse("NONE")}
	store := testCorpus(t)
	sel := New(store, api, "test-model", 256, zap.NewNop())

	sel.Select(context.Background(), "first query", 3)
	first := api.lastReq
	sel.Select(context.Background(), "second query", 3)
	second := api.lastReq

	require.Len(t, first.System, 2)
	// The preamble carries the rules and full summaries listing; the
	// trailer is the cache breakpoint.
	assert.Contains(t, first.System[0].Text, store.SummariesListing())
	assert.Nil(t, first.System[0].CacheControl)
	require.NotNil(t, first.System[1].CacheControl)
	assert.Equal(t, "ephemeral", first.System[1].CacheControl.Type)

	// Byte-identical system payload across calls within a generation.
	assert.Equal(t, first.System, second.System)

	require.Len(t, first.Messages, 1)
	assert.Contains(t, first.Messages[0].Content, "first query")
	assert.Contains(t, second.Messages[0].Content, "second query")
}
