// Package scrape builds the JSON document corpus from help-center
// article pages.
package scrape

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"helpbot/internal/domain"
)

var articleURLPattern = regexp.MustCompile(`/en/articles/\d+`)

// Scraper fetches collection pages and converts article HTML into
// corpus documents.
type Scraper struct {
	client *http.Client
	log    *zap.Logger
}

// New creates a scraper using the given HTTP client.
func New(client *http.Client, log *zap.Logger) *Scraper {
	if client == nil {
		client = http.DefaultClient
	}
	return &Scraper{client: client, log: log}
}

// FetchCollection downloads a collection page, extracts every article
// link on it and saves each article's HTML under outDir, named from the
// URL slug.
func (s *Scraper) FetchCollection(collectionURL, outDir string) error {
	body, err := s.fetch(collectionURL)
	if err != nil {
		return err
	}
	base, err := url.Parse(collectionURL)
	if err != nil {
		return fmt.Errorf("invalid collection URL: %w", err)
	}
	links, err := ArticleLinks(base, strings.NewReader(body))
	if err != nil {
		return err
	}
	s.log.Info("found article URLs", zap.Int("count", len(links)))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, link := range links {
		slug := articleSlug(link)
		html, err := s.fetch(link)
		if err != nil {
			s.log.Error("failed to fetch article", zap.String("url", link), zap.Error(err))
			continue
		}
		path := filepath.Join(outDir, slug+".html")
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			return err
		}
		s.log.Info("saved article", zap.String("path", path))
	}
	return nil
}

// BuildCorpus parses every .html file under htmlRoot into a corpus
// document written to docsDir. The category of each document is the
// name of its parent directory. Parse failures are logged and skipped.
func (s *Scraper) BuildCorpus(htmlRoot, docsDir string) error {
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return err
	}
	return filepath.WalkDir(htmlRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !strings.EqualFold(filepath.Ext(path), ".html") {
			s.log.Warn("not an html file, skipping", zap.String("path", path))
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			s.log.Error("error reading article", zap.String("path", path), zap.Error(err))
			return nil
		}
		defer f.Close()
		doc, err := ParseArticle(f, filepath.Base(filepath.Dir(path)))
		if err != nil {
			s.log.Error("error parsing article", zap.String("path", path), zap.Error(err))
			return nil
		}
		out, err := WriteDocument(doc, docsDir)
		if err != nil {
			s.log.Error("error writing document", zap.String("path", path), zap.Error(err))
			return nil
		}
		s.log.Info("created document", zap.String("path", out))
		return nil
	})
}

// ArticleLinks extracts the deduplicated, sorted article URLs from a
// collection page, resolved against base.
func ArticleLinks(base *url.URL, r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse collection page: %w", err)
	}
	seen := make(map[string]struct{})
	doc.Find(`a[href*="/en/articles/"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref).String()
		if articleURLPattern.MatchString(resolved) {
			seen[resolved] = struct{}{}
		}
	})
	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links, nil
}

// ParseArticle extracts a corpus document from an article page: title
// and short description from the OpenGraph meta tags, the article body
// from the text blocks embedded in the __NEXT_DATA__ payload.
func ParseArticle(r io.Reader, category string) (domain.Document, error) {
	page, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to parse article html: %w", err)
	}
	title, ok := page.Find(`meta[property="og:title"]`).Attr("content")
	if !ok {
		return domain.Document{}, fmt.Errorf("missing og:title")
	}
	shortDescription, _ := page.Find(`meta[property="og:description"]`).Attr("content")

	raw := page.Find("script#__NEXT_DATA__").Text()
	if raw == "" {
		return domain.Document{}, fmt.Errorf("missing __NEXT_DATA__ payload")
	}
	var next struct {
		Props struct {
			PageProps struct {
				ArticleContent struct {
					Blocks []struct {
						Text string `json:"text"`
					} `json:"blocks"`
				} `json:"articleContent"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(raw), &next); err != nil {
		return domain.Document{}, fmt.Errorf("failed to decode __NEXT_DATA__: %w", err)
	}
	var article strings.Builder
	for _, block := range next.Props.PageProps.ArticleContent.Blocks {
		article.WriteString(block.Text)
	}

	return domain.Document{
		Title:            title,
		ShortDescription: shortDescription,
		Article:          article.String(),
		Category:         category,
	}, nil
}

// WriteDocument serializes a document into docsDir, named from the
// sanitized title, and returns the written path.
func WriteDocument(doc domain.Document, docsDir string) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(docsDir, strings.ReplaceAll(doc.Title, " ", "_")+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func articleSlug(link string) string {
	slug := strings.TrimRight(link, "/")
	slug = slug[strings.LastIndex(slug, "/")+1:]
	// Drop the numeric article id prefix from "12345-some-title".
	if i := strings.Index(slug, "-"); i >= 0 {
		slug = slug[i+1:]
	}
	return slug
}

func (s *Scraper) fetch(rawURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "text/html")
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: %s", rawURL, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
