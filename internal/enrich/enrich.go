// Package enrich annotates corpus files with model-generated summaries
// and keywords via the Message Batches API.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"helpbot/internal/anthropic"
	"helpbot/internal/domain"
)

// DefaultPollInterval is the delay between batch status checks.
const DefaultPollInterval = 10 * time.Second

const promptFormat = `Analyze this help center article and provide a JSON response with exactly this structure:
{
    "claude_summary": "A concise summary of the article (max 30 words)",
    "keywords": ["keyword1", "keyword2", "keyword3", "keyword4", "keyword5"]
}

Provide 5-10 relevant keywords that would help users find this article.
Respond ONLY with valid JSON, no other text.

Document title: %s

Article content:
%s`

// API is the subset of the Anthropic client used for enrichment.
type API interface {
	CreateBatch(ctx context.Context, requests []anthropic.BatchRequest) (*anthropic.Batch, error)
	GetBatch(ctx context.Context, id string) (*anthropic.Batch, error)
	BatchResults(ctx context.Context, batch *anthropic.Batch) ([]anthropic.BatchResult, error)
}

// Annotation is the model's reply for one document.
type Annotation struct {
	ClaudeSummary string   `json:"claude_summary"`
	Keywords      []string `json:"keywords"`
}

// Stats summarizes one enrichment run.
type Stats struct {
	Processed int
	Skipped   int
	Failed    int
}

// Job runs batch enrichment over a corpus directory.
type Job struct {
	api          API
	model        string
	maxTokens    int
	pollInterval time.Duration
	log          *zap.Logger
}

// NewJob creates an enrichment job using the given model.
func NewJob(api API, model string, log *zap.Logger) *Job {
	return &Job{api: api, model: model, maxTokens: 300, pollInterval: DefaultPollInterval, log: log}
}

type item struct {
	path string
	doc  domain.Document
}

// Run annotates every corpus file in dir that lacks a summary or
// keywords (all files when force is set), writing results back into the
// same files.
func (j *Job) Run(ctx context.Context, dir string, force bool) (Stats, error) {
	items, total, err := j.collect(dir, force)
	if err != nil {
		return Stats{}, err
	}
	if len(items) == 0 {
		j.log.Info("no documents to process")
		return Stats{Skipped: total}, nil
	}
	j.log.Info("found documents to process", zap.Int("count", len(items)))

	requests := make([]anthropic.BatchRequest, 0, len(items))
	byID := make(map[string]*item, len(items))
	for i := range items {
		it := &items[i]
		customID := fmt.Sprintf("doc_%d", i)
		byID[customID] = it
		title := it.doc.Title
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(it.path), filepath.Ext(it.path))
		}
		requests = append(requests, anthropic.BatchRequest{
			CustomID: customID,
			Params: anthropic.MessagesRequest{
				Model:     j.model,
				MaxTokens: j.maxTokens,
				Messages: []anthropic.Message{
					{Role: domain.RoleUser, Content: fmt.Sprintf(promptFormat, title, it.doc.Article)},
				},
			},
		})
	}

	batch, err := j.api.CreateBatch(ctx, requests)
	if err != nil {
		return Stats{Skipped: total - len(items), Failed: len(items)}, fmt.Errorf("error creating batch: %w", err)
	}
	j.log.Info("batch created", zap.String("id", batch.ID))

	batch, err = j.poll(ctx, batch.ID)
	if err != nil {
		return Stats{Skipped: total - len(items), Failed: len(items)}, err
	}

	results, err := j.api.BatchResults(ctx, batch)
	if err != nil {
		return Stats{Skipped: total - len(items), Failed: len(items)}, fmt.Errorf("error retrieving batch results: %w", err)
	}

	stats := Stats{Skipped: total - len(items)}
	got := make(map[string]struct{}, len(results))
	for _, result := range results {
		got[result.CustomID] = struct{}{}
		it, ok := byID[result.CustomID]
		if !ok {
			j.log.Warn("unknown custom id in results", zap.String("custom_id", result.CustomID))
			stats.Failed++
			continue
		}
		if result.Result.Type != "succeeded" {
			j.log.Error("batch request failed", zap.String("custom_id", result.CustomID), zap.String("type", result.Result.Type))
			stats.Failed++
			continue
		}
		annotation, err := ParseAnnotation(result.Result.Message.Text())
		if err != nil {
			j.log.Error("failed to parse result", zap.String("custom_id", result.CustomID), zap.Error(err))
			stats.Failed++
			continue
		}
		it.doc.ClaudeSummary = annotation.ClaudeSummary
		it.doc.Keywords = annotation.Keywords
		if err := writeDoc(it.path, it.doc); err != nil {
			j.log.Error("error writing document", zap.String("path", it.path), zap.Error(err))
			stats.Failed++
			continue
		}
		j.log.Info("updated document", zap.String("path", it.path))
		stats.Processed++
	}
	for customID := range byID {
		if _, ok := got[customID]; !ok {
			stats.Failed++
		}
	}

	j.log.Info("processing complete",
		zap.Int("processed", stats.Processed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

// collect returns the documents needing annotation plus the total
// corpus file count.
func (j *Job) collect(dir string, force bool) ([]item, int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(paths) == 0 {
		return nil, 0, fmt.Errorf("no corpus files in %s", dir)
	}
	var items []item
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			j.log.Error("error reading corpus file", zap.String("path", path), zap.Error(err))
			continue
		}
		var doc domain.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			j.log.Error("error reading corpus file", zap.String("path", path), zap.Error(err))
			continue
		}
		if !force && doc.ClaudeSummary != "" && len(doc.Keywords) > 0 {
			j.log.Info("skipping, already indexed", zap.String("path", path))
			continue
		}
		if doc.Article == "" {
			j.log.Warn("no article content, skipping", zap.String("path", path))
			continue
		}
		items = append(items, item{path: path, doc: doc})
	}
	return items, len(paths), nil
}

// poll waits for the batch to end. This is plain retry-free polling.
func (j *Job) poll(ctx context.Context, id string) (*anthropic.Batch, error) {
	for {
		batch, err := j.api.GetBatch(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("error polling batch: %w", err)
		}
		j.log.Info("batch status", zap.String("status", batch.ProcessingStatus))
		switch batch.ProcessingStatus {
		case "ended":
			j.log.Info("batch complete",
				zap.Int("succeeded", batch.RequestCounts.Succeeded),
				zap.Int("errored", batch.RequestCounts.Errored))
			return batch, nil
		case "failed", "canceled", "expired":
			return nil, fmt.Errorf("batch ended with status %s", batch.ProcessingStatus)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(j.pollInterval):
		}
	}
}

// ParseAnnotation decodes the model's JSON reply, tolerating a
// surrounding markdown code fence.
func ParseAnnotation(text string) (Annotation, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		parts := strings.Split(trimmed, "```")
		if len(parts) > 1 {
			trimmed = parts[1]
		}
		trimmed = strings.TrimPrefix(trimmed, "json")
		trimmed = strings.TrimSpace(trimmed)
	}
	var annotation Annotation
	if err := json.Unmarshal([]byte(trimmed), &annotation); err != nil {
		return Annotation{}, fmt.Errorf("error parsing annotation JSON: %w", err)
	}
	return annotation, nil
}

func writeDoc(path string, doc domain.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
