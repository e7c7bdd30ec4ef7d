package slackbot

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"helpbot/internal/domain"
)

const thinkingText = "Claude is thinking..."

var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)

// Bot wires Slack socket-mode events to the response generator. DMs,
// @-mentions and the /ask-claude command all map to one Respond call;
// /claude-reset clears the caller's session.
type Bot struct {
	api       *slack.Client
	socket    *socketmode.Client
	responder domain.Responder
	sessions  domain.Sessions
	channelID string
	timeout   time.Duration
	log       *zap.Logger

	mu      sync.Mutex
	fileIDs map[string]struct{}
}

// Config holds the Slack surface configuration.
type Config struct {
	BotToken  string
	AppToken  string
	ChannelID string // optional announcement channel
	Timeout   time.Duration
}

// New creates a Slack bot bound to the given responder and sessions.
func New(cfg Config, responder domain.Responder, sessions domain.Sessions, log *zap.Logger) *Bot {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	api := slack.New(cfg.BotToken, slack.OptionAppLevelToken(cfg.AppToken))
	return &Bot{
		api:       api,
		socket:    socketmode.New(api),
		responder: responder,
		sessions:  sessions,
		channelID: cfg.ChannelID,
		timeout:   cfg.Timeout,
		log:       log,
		fileIDs:   make(map[string]struct{}),
	}
}

// Run connects to Slack and handles events until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	b.announce("🟢 Claude AI is online 🟢")
	defer b.announce("🔴 Claude AI is offline 🔴")

	go b.consumeEvents(ctx)
	b.log.Info("bot starting")
	return b.socket.RunContext(ctx)
}

func (b *Bot) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.socket.Events:
			if !ok {
				return
			}
			b.dispatch(ctx, evt)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.socket.Ack(*evt.Request)
		b.handleEventsAPI(ctx, apiEvent)
	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			return
		}
		b.socket.Ack(*evt.Request)
		b.handleSlashCommand(ctx, cmd)
	case socketmode.EventTypeConnectionError:
		b.log.Warn("slack connection error")
	}
}

func (b *Bot) handleEventsAPI(ctx context.Context, apiEvent slackevents.EventsAPIEvent) {
	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		// Only respond to DMs, ignore bot messages.
		if ev.ChannelType != "im" || ev.BotID != "" {
			return
		}
		if text := strings.TrimSpace(ev.Text); text != "" {
			go b.answer(ctx, ev.User, ev.Channel, text)
		}
	case *slackevents.AppMentionEvent:
		message := strings.TrimSpace(mentionPattern.ReplaceAllString(ev.Text, ""))
		if message == "" {
			b.post(ev.Channel, "Hi! How can I help?")
			return
		}
		go b.answer(ctx, ev.User, ev.Channel, message)
	case *slackevents.FileSharedEvent:
		// Remember shared file ids for later retrieval via files.info.
		b.mu.Lock()
		b.fileIDs[ev.FileID] = struct{}{}
		b.mu.Unlock()
	}
}

func (b *Bot) handleSlashCommand(ctx context.Context, cmd slack.SlashCommand) {
	switch cmd.Command {
	case "/ask-claude":
		text := strings.TrimSpace(cmd.Text)
		if text == "" {
			b.post(cmd.ChannelID, "Usage: `/ask-claude [your question]`")
			return
		}
		go b.answer(ctx, cmd.UserID, cmd.ChannelID, text)
	case "/claude-reset":
		b.sessions.Reset(cmd.UserID)
		b.post(cmd.ChannelID, "Conversation reset!")
	}
}

// answer posts a thinking placeholder, generates the reply and swaps
// the placeholder for it.
func (b *Bot) answer(ctx context.Context, userID, channelID, text string) {
	_, ts, err := b.api.PostMessage(channelID, slack.MsgOptionText(thinkingText, false))
	if err != nil {
		b.log.Error("failed to post placeholder", zap.String("channel", channelID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	reply := b.responder.Respond(ctx, userID, text)

	if _, _, _, err := b.api.UpdateMessage(channelID, ts, slack.MsgOptionText(reply, false)); err != nil {
		b.log.Error("failed to update placeholder", zap.String("channel", channelID), zap.Error(err))
	}
}

func (b *Bot) post(channelID, text string) {
	if _, _, err := b.api.PostMessage(channelID, slack.MsgOptionText(text, false)); err != nil {
		b.log.Warn("failed to post message", zap.String("channel", channelID), zap.Error(err))
	}
}

func (b *Bot) announce(text string) {
	if b.channelID == "" {
		return
	}
	b.post(b.channelID, text)
}
