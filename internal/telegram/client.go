// Package telegram connects the bot to Telegram via long polling.
package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pathakanu/alina/internal/transport"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prefix namespaces Telegram conversation identifiers ("telegram:<chat id>").
const Prefix = "telegram"

// Telegram allows roughly 30 messages per second per bot.
const sendsPerSecond = 25

// Client receives updates and sends messages for one bot token.
type Client struct {
	bot     *tgbotapi.BotAPI
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New authenticates with the bot token.
func New(token string, logger zerolog.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	logger = logger.With().Str("component", "telegram").Logger()
	logger.Info().Str("username", bot.Self.UserName).Msg("telegram: authorised")
	return &Client{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(sendsPerSecond), sendsPerSecond),
		logger:  logger,
	}, nil
}

// ConversationID returns the conversation id for a Telegram chat.
func ConversationID(chatID int64) string {
	return transport.ConversationID(Prefix, strconv.FormatInt(chatID, 10))
}

// ChatID extracts the Telegram chat id from a conversation id.
func ChatID(conversationID string) (int64, error) {
	prefix, local, ok := transport.SplitConversationID(conversationID)
	if !ok || prefix != Prefix {
		return 0, fmt.Errorf("telegram: not a telegram conversation: %q", conversationID)
	}
	id, err := strconv.ParseInt(local, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("telegram: bad chat id %q: %w", local, err)
	}
	return id, nil
}

// Send implements transport.Sender.
func (c *Client) Send(ctx context.Context, conversationID, text string) error {
	chatID, err := ChatID(conversationID)
	if err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	return nil
}

// Run polls for updates until ctx is cancelled. Each message is handled on
// its own goroutine so slow classifier calls do not stall polling.
func (c *Client) Run(ctx context.Context, handler transport.Handler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)
	defer c.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Chat == nil {
				continue
			}
			go c.handle(ctx, handler, update.Message)
		}
	}
}

func (c *Client) handle(ctx context.Context, handler transport.Handler, msg *tgbotapi.Message) {
	conversationID := ConversationID(msg.Chat.ID)

	var reply string
	if msg.IsCommand() {
		reply = handler.HandleCommand(ctx, conversationID, msg.Command(), msg.CommandArguments())
	} else {
		reply = handler.HandleMessage(ctx, conversationID, msg.Text)
	}
	if reply == "" {
		return
	}
	if err := c.Send(ctx, conversationID, reply); err != nil {
		c.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("telegram: reply failed")
	}
}
