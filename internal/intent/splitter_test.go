package intent

import (
	"strings"
	"testing"
	"time"

	"github.com/pathakanu/alina/internal/timeparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLocator finds a fixed set of spans and accepts a fixed set of whole expressions.
type fakeLocator struct {
	spans []string
	exprs []string
}

func (f fakeLocator) Search(text string, _ time.Time) []timeparse.Match {
	var out []timeparse.Match
	lower := strings.ToLower(text)
	for _, span := range f.spans {
		if idx := strings.Index(lower, span); idx >= 0 {
			out = append(out, timeparse.Match{Text: text[idx : idx+len(span)], Time: time.Now()})
		}
	}
	return out
}

func (f fakeLocator) IsExpression(text string, _ time.Time) bool {
	for _, e := range f.exprs {
		if strings.EqualFold(e, text) {
			return true
		}
	}
	return false
}

func TestReminderWithSeparator(t *testing.T) {
	t.Parallel()
	s := NewSplitter(fakeLocator{})

	got := s.Classify("remind me to drink water | tomorrow 10:30")
	require.Equal(t, KindReminder, got.Kind)
	assert.Equal(t, "drink water", got.Title)
	assert.Equal(t, "tomorrow 10:30", got.WhenText)
}

func TestReminderWithoutSeparatorUsesSearch(t *testing.T) {
	t.Parallel()
	s := NewSplitter(fakeLocator{spans: []string{"tomorrow 15:00"}})

	got := s.Classify("remind me tomorrow 15:00 drink water")
	require.Equal(t, KindReminder, got.Kind)
	assert.Equal(t, "drink water", got.Title)
	assert.Equal(t, "tomorrow 15:00", got.WhenText)
}

func TestReminderShrinkingPrefix(t *testing.T) {
	t.Parallel()
	s := NewSplitter(fakeLocator{exprs: []string{"next friday"}})

	title, when := s.SplitReminder("remind me next friday call the dentist")
	assert.Equal(t, "call the dentist", title)
	assert.Equal(t, "next friday", when)
}

func TestReminderWithoutLocatableTime(t *testing.T) {
	t.Parallel()
	s := NewSplitter(fakeLocator{})

	title, when := s.SplitReminder("remind me to buy milk")
	assert.Equal(t, "", title)
	assert.Equal(t, "buy milk", when)
}

func TestTurkishTriggers(t *testing.T) {
	t.Parallel()
	s := NewSplitter(fakeLocator{})

	got := s.Classify("Hatırlat ilaç al | bugün 21:30")
	require.Equal(t, KindReminder, got.Kind)
	assert.Equal(t, "ilaç al", got.Title)
	assert.Equal(t, "bugün 21:30", got.WhenText)

	got = s.Classify("not al Toplantı özetini gönder")
	require.Equal(t, KindNote, got.Kind)
	assert.Equal(t, "Toplantı özetini gönder", got.Body)

	got = s.Classify("alarm kur | 07:00")
	require.Equal(t, KindReminder, got.Kind)
	assert.Equal(t, "", got.Title)
}

func TestNoteWinsOverReminder(t *testing.T) {
	t.Parallel()
	s := NewSplitter(fakeLocator{})

	got := s.Classify("take a note remind me about the budget")
	require.Equal(t, KindNote, got.Kind)
	assert.Equal(t, "remind me about the budget", got.Body)
}

func TestNoteBodyFallsBackToWholeText(t *testing.T) {
	t.Parallel()
	s := NewSplitter(fakeLocator{})

	got := s.Classify("kaydet")
	require.Equal(t, KindNote, got.Kind)
	assert.Equal(t, "kaydet", got.Body)
}

func TestTriggerStrippedOnlyFromStart(t *testing.T) {
	t.Parallel()
	s := NewSplitter(fakeLocator{})

	got := s.Classify("please remind me to stretch | 18:00")
	require.Equal(t, KindReminder, got.Kind)
	assert.Equal(t, "please remind me to stretch", got.Title)
}

func TestChatAndEmpty(t *testing.T) {
	t.Parallel()
	s := NewSplitter(fakeLocator{})

	assert.Equal(t, KindEmpty, s.Classify("   \n").Kind)

	got := s.Classify("how far is the moon?")
	assert.Equal(t, KindChat, got.Kind)
	assert.Equal(t, "how far is the moon?", got.Body)

	assert.Equal(t, KindChat, s.Classify("I'm not alone").Kind)
	assert.Equal(t, KindChat, s.Classify("my reminders are broken").Kind)
}

func TestReminderWithDottedClockAndRealEngine(t *testing.T) {
	t.Parallel()
	istanbul := time.FixedZone("TRT", 3*60*60)
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, istanbul)
	parser := timeparse.New(timeparse.NewDateParserEngine("tr", "en"), istanbul)
	s := NewSplitter(parser)
	s.now = func() time.Time { return ref }

	cases := []struct {
		input string
		title string
		due   time.Time
	}{
		{"remind me tomorrow 15.00 drink water", "drink water", time.Date(2026, 3, 11, 15, 0, 0, 0, istanbul)},
		{"hatırlat yarın saat 10.30 ilaç al", "ilaç al", time.Date(2026, 3, 11, 10, 30, 0, 0, istanbul)},
	}
	for _, tc := range cases {
		got := s.Classify(tc.input)
		require.Equal(t, KindReminder, got.Kind, tc.input)
		assert.Equal(t, tc.title, got.Title, tc.input)

		due, err := parser.Parse(got.WhenText, ref)
		require.NoError(t, err, tc.input)
		assert.True(t, due.Equal(tc.due), "%q -> %q at %s", tc.input, got.WhenText, due.In(istanbul))
	}
}
