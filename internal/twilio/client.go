package twilio

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Prefix namespaces WhatsApp conversation identifiers. Twilio already uses it
// on inbound From values, so "whatsapp:+15550001" is both the Twilio address
// and the conversation id.
const Prefix = "whatsapp"

// Client wraps Twilio messaging operations required by the bot.
type Client struct {
	client       *twilio.RestClient
	fromWhatsApp string
	logger       zerolog.Logger
}

// New creates a Twilio client bound to the configured WhatsApp sender number.
func New(accountSID, authToken, fromWhatsApp string, logger zerolog.Logger) *Client {
	return &Client{
		client:       twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken}),
		fromWhatsApp: fromWhatsApp,
		logger:       logger.With().Str("component", "twilio").Logger(),
	}
}

// Send implements transport.Sender.
func (c *Client) Send(_ context.Context, conversationID, text string) error {
	return c.SendWhatsAppMessage(conversationID, text)
}

// SendWhatsAppMessage sends a WhatsApp message via Twilio's API.
func (c *Client) SendWhatsAppMessage(to, body string) error {
	if c.client == nil {
		return fmt.Errorf("twilio client not initialised")
	}

	sender := NormalizeWhatsAppAddress(c.fromWhatsApp)
	if sender == "" {
		return fmt.Errorf("twilio sender WhatsApp number is not configured")
	}

	recipient := NormalizeWhatsAppAddress(to)
	if recipient == "" {
		return fmt.Errorf("recipient number missing or invalid")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(sender)
	params.SetBody(body)

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send message error: %w", err)
	}

	if resp.Sid != nil {
		c.logger.Debug().Str("sid", *resp.Sid).Str("to", recipient).Msg("twilio message sent")
	}
	return nil
}

// NormalizeWhatsAppAddress returns number in Twilio's "whatsapp:+<digits>" form.
func NormalizeWhatsAppAddress(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, Prefix+":") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "+") {
		return Prefix + ":" + trimmed
	}
	return Prefix + ":+" + trimmed
}
