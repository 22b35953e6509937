// Package transport routes outbound messages to the messaging platform that
// owns a conversation.
package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownTransport is returned when no sender owns a conversation's prefix.
var ErrUnknownTransport = errors.New("transport: no sender for conversation")

// Sender delivers text to a conversation.
type Sender interface {
	Send(ctx context.Context, conversationID, text string) error
}

// Handler answers inbound messages. An empty reply means nothing is sent back.
type Handler interface {
	HandleMessage(ctx context.Context, conversationID, text string) string
	HandleCommand(ctx context.Context, conversationID, command, args string) string
}

// ConversationID joins a platform prefix and a platform-local id.
func ConversationID(prefix, localID string) string {
	return prefix + ":" + localID
}

// SplitConversationID is the inverse of ConversationID.
func SplitConversationID(conversationID string) (prefix, localID string, ok bool) {
	prefix, localID, ok = strings.Cut(conversationID, ":")
	if !ok || prefix == "" || localID == "" {
		return "", "", false
	}
	return prefix, localID, true
}

// Mux is a Sender that dispatches by conversation prefix.
type Mux struct {
	mu      sync.RWMutex
	senders map[string]Sender
}

// NewMux returns an empty Mux.
func NewMux() *Mux {
	return &Mux{senders: make(map[string]Sender)}
}

// Handle registers sender for conversations starting with prefix + ":".
func (m *Mux) Handle(prefix string, sender Sender) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.senders[prefix] = sender
}

// Send implements Sender.
func (m *Mux) Send(ctx context.Context, conversationID, text string) error {
	prefix, _, ok := SplitConversationID(conversationID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTransport, conversationID)
	}
	m.mu.RLock()
	sender, ok := m.senders[prefix]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTransport, conversationID)
	}
	return sender.Send(ctx, conversationID, text)
}
