package openai

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDecodeClassification(t *testing.T) {
	t.Parallel()

	cases := map[string]Classification{
		`{"intent":"reminder","title":" drink water ","when_text":"tomorrow 10:30"}`: {
			Intent: IntentReminder, Title: "drink water", WhenText: "tomorrow 10:30",
		},
		"Sure! Here you go:\n```json\n{\"intent\": \"NOTE\", \"title\": \"buy {milk}\"}\n```": {
			Intent: IntentNote, Title: "buy {milk}",
		},
		`{"intent":"chat","title":null}`:                   {Intent: IntentChat},
		`{"intent":"reminder"} trailing {"intent":"note"}`: {Intent: IntentReminder},
		`{"intent":"reminder","meta":{"nested":true}}`:     {Intent: IntentReminder},
		`no json here`:               Unavailable(),
		`{"intent":"delete"}`:        Unavailable(),
		`{"title":"missing intent"}`: Unavailable(),
		`{"intent":42}`:              Unavailable(),
		`{"intent":"note","title":["not","a","string"]}`: Unavailable(),
		`{"intent":"note"`: Unavailable(),
		`{"intent": "note", "title": "unterminated \"}`: Unavailable(),
		``: Unavailable(),
	}

	for raw, want := range cases {
		assert.Equal(t, want, DecodeClassification(raw), "raw: %q", raw)
	}
}

func TestUnconfiguredClient(t *testing.T) {
	t.Parallel()
	c := New("", "", 0, zerolog.Nop())
	ctx := context.Background()

	assert.False(t, c.Enabled())
	assert.Equal(t, Unavailable(), c.ClassifyIntent(ctx, "remind me later"))
	assert.Equal(t, notConfiguredReply, c.Reply(ctx, "hello"))
}
