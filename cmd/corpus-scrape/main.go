package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"helpbot/internal/scrape"
)

func main() {
	var fetchURL, htmlDir, docsDir string
	var build bool
	flag.StringVar(&fetchURL, "fetch", "", "Collection URL to fetch article HTML from (optional)")
	flag.StringVar(&htmlDir, "html", "documents", "Directory holding article HTML (fetch target and build source)")
	flag.StringVar(&docsDir, "out", "doc_info", "Directory to write corpus JSON documents to")
	flag.BoolVar(&build, "build", false, "Build corpus JSON documents from the HTML directory")
	flag.Parse()

	if fetchURL == "" && !build {
		log.Fatal("nothing to do: pass -fetch <collection-url> and/or -build")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	scraper := scrape.New(&http.Client{Timeout: 30 * time.Second}, logger)

	if fetchURL != "" {
		if err := scraper.FetchCollection(fetchURL, htmlDir); err != nil {
			logger.Fatal("fetch failed", zap.String("url", fetchURL), zap.Error(err))
		}
	}
	if build {
		if err := scraper.BuildCorpus(htmlDir, docsDir); err != nil {
			logger.Fatal("corpus build failed", zap.String("html", htmlDir), zap.Error(err))
		}
	}
}
