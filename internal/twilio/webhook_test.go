package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoHandler struct {
	messages []string
	commands []string
}

func (e *echoHandler) HandleMessage(_ context.Context, conversationID, text string) string {
	e.messages = append(e.messages, conversationID+"|"+text)
	return "echo: " + text
}

func (e *echoHandler) HandleCommand(_ context.Context, conversationID, command, args string) string {
	e.commands = append(e.commands, command+"|"+args)
	return ""
}

func post(t *testing.T, h http.HandlerFunc, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/twilio/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestWebhookRepliesWithTwiML(t *testing.T) {
	t.Parallel()
	handler := &echoHandler{}
	h := Webhook(handler, zerolog.Nop())

	rec := post(t, h, url.Values{"From": {"whatsapp:+15550001"}, "Body": {" hello "}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<Response><Message>echo: hello</Message></Response>", rec.Body.String())
	assert.Equal(t, []string{"whatsapp:+15550001|hello"}, handler.messages)
}

func TestWebhookEmptyBodyHasNoReply(t *testing.T) {
	t.Parallel()
	handler := &echoHandler{}
	h := Webhook(handler, zerolog.Nop())

	rec := post(t, h, url.Values{"From": {"whatsapp:+15550001"}, "Body": {"   "}})
	assert.Equal(t, "<Response></Response>", rec.Body.String())
	assert.Empty(t, handler.messages)
}

func TestWebhookCommands(t *testing.T) {
	t.Parallel()
	handler := &echoHandler{}
	h := Webhook(handler, zerolog.Nop())

	rec := post(t, h, url.Values{"From": {"15550001"}, "Body": {"/NOT buy bread"}})
	assert.Equal(t, "<Response></Response>", rec.Body.String())
	assert.Equal(t, []string{"not|buy bread"}, handler.commands)
}

func TestNormalizeWhatsAppAddress(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"":                   "",
		"whatsapp:+15550001": "whatsapp:+15550001",
		"+15550001":          "whatsapp:+15550001",
		" 15550001 ":         "whatsapp:+15550001",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeWhatsAppAddress(input), input)
	}
}
