// Package intent decides whether inbound text is a note, a reminder or plain
// conversation, and splits reminders into a title and a time fragment.
package intent

import (
	"strings"
	"time"

	"github.com/pathakanu/alina/internal/timeparse"
)

// Kind is the locally recognised intent of a message.
type Kind int

const (
	// KindEmpty marks blank input; it must produce no side effects.
	KindEmpty Kind = iota
	// KindChat is plain conversation.
	KindChat
	// KindNote asks to store Body as a note.
	KindNote
	// KindReminder asks to deliver Title at the time described by WhenText.
	KindReminder
)

func (k Kind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindNote:
		return "note"
	case KindReminder:
		return "reminder"
	default:
		return "empty"
	}
}

// Result is the outcome of Classify. Title may be empty; callers substitute a
// placeholder before storage.
type Result struct {
	Kind     Kind
	Body     string
	Title    string
	WhenText string
}

// TimeLocator finds date/time spans inside free text.
type TimeLocator interface {
	Search(text string, ref time.Time) []timeparse.Match
	IsExpression(text string, ref time.Time) bool
}

// Splitter classifies messages with the local trigger vocabulary.
type Splitter struct {
	locator TimeLocator
	now     func() time.Time
}

// NewSplitter returns a Splitter that uses locator for reminders without a separator.
func NewSplitter(locator TimeLocator) *Splitter {
	return &Splitter{locator: locator, now: time.Now}
}

// Classify checks note triggers, then reminder triggers, then falls back to chat.
// Text matching both vocabularies is a note.
func (s *Splitter) Classify(text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Kind: KindEmpty}
	}

	if noteDetect.MatchString(text) {
		body := stripLeading(noteStrip, text)
		if body == "" {
			body = text
		}
		return Result{Kind: KindNote, Body: body}
	}

	if reminderDetect.MatchString(text) {
		title, when := s.SplitReminder(text)
		return Result{Kind: KindReminder, Body: text, Title: title, WhenText: when}
	}

	return Result{Kind: KindChat, Body: text}
}

// SplitReminder separates a reminder request into title and time fragment.
// "title | when" is the preferred form; otherwise the time span is searched
// in the trigger-stripped body, then shrinking word prefixes are tried.
func (s *Splitter) SplitReminder(text string) (title, when string) {
	if left, right, ok := strings.Cut(text, "|"); ok {
		return cleanTitle(stripLeading(reminderStrip, left)), strings.TrimSpace(right)
	}

	body := stripLeading(reminderStrip, text)
	if body == "" || s.locator == nil {
		return "", body
	}
	ref := s.now()

	if matches := s.locator.Search(body, ref); len(matches) > 0 {
		rest := body
		spans := make([]string, 0, len(matches))
		for _, m := range matches {
			span := strings.TrimSpace(m.Text)
			if span == "" {
				continue
			}
			rest = removeSpan(rest, span)
			spans = append(spans, span)
		}
		if len(spans) > 0 {
			return cleanTitle(rest), strings.Join(spans, " ")
		}
	}

	words := strings.Fields(body)
	for n := len(words); n > 0; n-- {
		prefix := strings.Join(words[:n], " ")
		if s.locator.IsExpression(prefix, ref) {
			return cleanTitle(strings.Join(words[n:], " ")), prefix
		}
	}

	return "", body
}

func removeSpan(s, span string) string {
	idx := strings.Index(s, span)
	if idx < 0 {
		lower, lowerSpan := strings.ToLower(s), strings.ToLower(span)
		if len(lower) != len(s) || len(lowerSpan) != len(span) {
			return s
		}
		if idx = strings.Index(lower, lowerSpan); idx < 0 {
			return s
		}
	}
	return s[:idx] + " " + s[idx+len(span):]
}
