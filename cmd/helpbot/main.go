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
	"helpbot/internal/docstore"
	"helpbot/internal/responder"
	"helpbot/internal/selector"
	"helpbot/internal/session"
	"helpbot/internal/slackbot"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/helpbot/config.yaml if not provided)")
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
		Model:   cfg.Anthropic.Model,
		Timeout: time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second,
	})

	store := docstore.New(logger)
	logger.Info("loading documents", zap.String("dir", cfg.Corpus.Dir))
	store.Load(cfg.Corpus.Dir)

	sessions := session.NewManager(cfg.Session.MaxTurns)
	sel := selector.New(store, client, cfg.Anthropic.Model, cfg.Selector.MaxTokens, logger)
	gen := responder.New(store, sel, sessions, client, cfg.Anthropic.Model, cfg.Responder.MaxTokens, cfg.Selector.MaxDocs, logger)

	botToken := os.Getenv(cfg.Slack.BotTokenEnv)
	appToken := os.Getenv(cfg.Slack.AppTokenEnv)
	if botToken == "" || appToken == "" {
		logger.Fatal("missing Slack tokens",
			zap.String("bot_token_env", cfg.Slack.BotTokenEnv),
			zap.String("app_token_env", cfg.Slack.AppTokenEnv))
	}
	bot := slackbot.New(slackbot.Config{
		BotToken:  botToken,
		AppToken:  appToken,
		ChannelID: os.Getenv(cfg.Slack.ChannelIDEnv),
	}, gen, sessions, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("bot stopped", zap.Error(err))
	}
}
