package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	to   []string
	text []string
}

func (c *captureSender) Send(_ context.Context, conversationID, text string) error {
	c.to = append(c.to, conversationID)
	c.text = append(c.text, text)
	return nil
}

func TestMuxRoutesByPrefix(t *testing.T) {
	t.Parallel()
	tg, wa := &captureSender{}, &captureSender{}
	mux := NewMux()
	mux.Handle("telegram", tg)
	mux.Handle("whatsapp", wa)
	ctx := context.Background()

	require.NoError(t, mux.Send(ctx, ConversationID("telegram", "42"), "hi"))
	require.NoError(t, mux.Send(ctx, "whatsapp:+15550001", "hey"))

	assert.Equal(t, []string{"telegram:42"}, tg.to)
	assert.Equal(t, []string{"whatsapp:+15550001"}, wa.to)
	assert.Equal(t, []string{"hey"}, wa.text)

	require.ErrorIs(t, mux.Send(ctx, "sms:1", "x"), ErrUnknownTransport)
	require.ErrorIs(t, mux.Send(ctx, "garbage", "x"), ErrUnknownTransport)
}

func TestSplitConversationID(t *testing.T) {
	t.Parallel()
	prefix, local, ok := SplitConversationID("whatsapp:+90:555")
	require.True(t, ok)
	assert.Equal(t, "whatsapp", prefix)
	assert.Equal(t, "+90:555", local)

	_, _, ok = SplitConversationID(":1")
	assert.False(t, ok)
}
