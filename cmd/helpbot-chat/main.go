package main

import (
	"flag"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"helpbot/internal/anthropic"
	"helpbot/internal/config"
	"helpbot/internal/docstore"
	"helpbot/internal/responder"
	"helpbot/internal/selector"
	"helpbot/internal/session"
	"helpbot/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, logPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/helpbot/config.yaml if not provided)")
	flag.StringVar(&logPath, "log", "helpbot-chat.log", "Path to the log file (logs cannot go to the terminal while the TUI runs)")
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

	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{logPath}
	zapCfg.ErrorOutputPaths = []string{logPath}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	apiKey := os.Getenv(cfg.Anthropic.APIKeyEnv)
	if apiKey == "" {
		log.Fatalf("missing Anthropic API key in env %s", cfg.Anthropic.APIKeyEnv)
	}
	client := anthropic.NewClient(anthropic.Config{
		APIKey:  apiKey,
		Model:   cfg.Anthropic.Model,
		Timeout: time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second,
	})

	store := docstore.New(logger)
	store.Load(cfg.Corpus.Dir)

	sessions := session.NewManager(cfg.Session.MaxTurns)
	sel := selector.New(store, client, cfg.Anthropic.Model, cfg.Selector.MaxTokens, logger)
	gen := responder.New(store, sel, sessions, client, cfg.Anthropic.Model, cfg.Responder.MaxTokens, cfg.Selector.MaxDocs, logger)

	status := "Ready."
	if !store.Loaded() || store.Len() == 0 {
		status = "No documents loaded; answering without help-center context."
	}

	m := tui.New(gen, sessions, status)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
