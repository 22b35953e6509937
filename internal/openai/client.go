package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"
)

// Client wraps the OpenAI SDK and provides the classifier and chat helpers.
type Client struct {
	client    *openai.Client
	model     openai.ChatModel
	maxTokens int64
	logger    zerolog.Logger
}

// ErrClientNotInitialised is returned when attempting to call the API without a configured client.
var ErrClientNotInitialised = errors.New("openai client not initialised")

const (
	maxReplyLength = 4096

	classifierPrompt = "You classify messages sent to a personal assistant and extract fields.\n" +
		"Reply with valid JSON only, no prose.\n" +
		`Fields: "intent" (one of "note", "reminder", "chat"), "title" (what to note or remind), ` +
		`"when_text" (the date/time words for a reminder, verbatim from the message).`
	assistantPrompt = "Your name is Alina. Answer clearly and helpfully in the user's language."

	notConfiguredReply = "AI replies are not configured (set OPENAI_API_KEY)."
	emptyReply         = "Sorry, I couldn't come up with an answer right now."
)

// New returns a Client. Without an API key the client answers with fallbacks
// and the classifier always reports IntentUnavailable.
func New(apiKey, model string, maxTokens int, logger zerolog.Logger) *Client {
	c := &Client{
		model:     openai.ChatModel(model),
		maxTokens: int64(maxTokens),
		logger:    logger.With().Str("component", "openai").Logger(),
	}
	if c.model == "" {
		c.model = openai.ChatModelGPT4oMini
	}
	if c.maxTokens <= 0 {
		c.maxTokens = 1024
	}
	if apiKey == "" {
		return c
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	c.client = &client
	return c
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// ClassifyIntent asks the model for a structured classification. Every
// failure collapses to IntentUnavailable.
func (c *Client) ClassifyIntent(ctx context.Context, content string) Classification {
	raw, err := c.complete(ctx, classifierPrompt, "Message: "+content, 300, 15*time.Second)
	if err != nil {
		if !errors.Is(err, ErrClientNotInitialised) {
			c.logger.Warn().Err(err).Msg("intent classification failed")
		}
		return Unavailable()
	}
	result := DecodeClassification(raw)
	if result.Intent == IntentUnavailable {
		c.logger.Debug().Str("raw", raw).Msg("classifier returned unusable output")
	}
	return result
}

// Reply produces a general chat answer. It never fails; errors become a short notice.
func (c *Client) Reply(ctx context.Context, content string) string {
	reply, err := c.complete(ctx, assistantPrompt, content, c.maxTokens, 30*time.Second)
	if errors.Is(err, ErrClientNotInitialised) {
		return notConfiguredReply
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("chat reply failed")
		return fmt.Sprintf("I can't answer right now. (Error: %v)", err)
	}
	if reply == "" {
		return emptyReply
	}
	if runes := []rune(reply); len(runes) > maxReplyLength {
		reply = string(runes[:maxReplyLength])
	}
	return reply
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int64, timeout time.Duration) (string, error) {
	if strings.TrimSpace(user) == "" {
		return "", fmt.Errorf("content cannot be empty")
	}
	if !c.Enabled() {
		return "", ErrClientNotInitialised
	}

	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(system),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(user),
					},
				},
			},
		},
		MaxCompletionTokens: openai.Int(maxTokens),
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion received")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
