package openai

import (
	"encoding/json"
	"strings"
)

// Intent represents the high-level action inferred from a user message.
type Intent string

const (
	// IntentUnavailable means the classifier could not be used; callers fall through to chat.
	IntentUnavailable Intent = "unavailable"
	// IntentNote instructs the bot to store a note.
	IntentNote Intent = "note"
	// IntentReminder instructs the bot to schedule a reminder.
	IntentReminder Intent = "reminder"
	// IntentChat is plain conversation.
	IntentChat Intent = "chat"
)

// Classification is the validated classifier output. Title and WhenText are
// trimmed and never nil-like; they are empty when absent.
type Classification struct {
	Intent   Intent
	Title    string
	WhenText string
}

// Unavailable is the classification used for every failure.
func Unavailable() Classification {
	return Classification{Intent: IntentUnavailable}
}

type classificationPayload struct {
	Intent   *string `json:"intent"`
	Title    *string `json:"title"`
	WhenText *string `json:"when_text"`
}

// DecodeClassification extracts the first top-level JSON object in raw and
// validates it. Anything malformed yields Unavailable.
func DecodeClassification(raw string) Classification {
	object, ok := firstObject(raw)
	if !ok {
		return Unavailable()
	}

	var payload classificationPayload
	if err := json.Unmarshal([]byte(object), &payload); err != nil {
		return Unavailable()
	}
	if payload.Intent == nil {
		return Unavailable()
	}

	intent := Intent(strings.ToLower(strings.TrimSpace(*payload.Intent)))
	switch intent {
	case IntentNote, IntentReminder, IntentChat:
	default:
		return Unavailable()
	}

	return Classification{
		Intent:   intent,
		Title:    trimmed(payload.Title),
		WhenText: trimmed(payload.WhenText),
	}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// firstObject returns the first balanced {...} in s, skipping braces inside JSON strings.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
