package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"helpbot/internal/anthropic"
	"helpbot/internal/config"
	"helpbot/internal/enrich"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var force bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/helpbot/config.yaml if not provided)")
	flag.BoolVar(&force, "force", false, "Re-annotate documents that already have a summary and keywords")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	apiKey := os.Getenv(cfg.Anthropic.APIKeyEnv)
	if apiKey == "" {
		logger.Fatal("missing Anthropic API key", zap.String("env", cfg.Anthropic.APIKeyEnv))
	}
	client := anthropic.NewClient(anthropic.Config{
		APIKey:  apiKey,
		Model:   cfg.Anthropic.EnrichModel,
		Timeout: time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job := enrich.NewJob(client, cfg.Anthropic.EnrichModel, logger)
	stats, err := job.Run(ctx, cfg.Corpus.Dir, force)
	if err != nil {
		logger.Fatal("enrichment failed", zap.Error(err))
	}
	logger.Info("done",
		zap.Int("processed", stats.Processed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed))
}
