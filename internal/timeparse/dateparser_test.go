package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRealParser() *Parser {
	return New(NewDateParserEngine("tr", "en"), istanbul)
}

func TestDateParserEngineResolvesLocalPhrases(t *testing.T) {
	t.Parallel()
	p := newRealParser()
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, istanbul)

	cases := map[string]time.Time{
		"tomorrow 15:00":   time.Date(2026, 3, 11, 15, 0, 0, 0, istanbul),
		"tomorrow 15.00":   time.Date(2026, 3, 11, 15, 0, 0, 0, istanbul),
		"yarın saat 10.30": time.Date(2026, 3, 11, 10, 30, 0, 0, istanbul),
		"bugün 21:30":      time.Date(2026, 3, 10, 21, 30, 0, 0, istanbul),
		"at 7pm":           time.Date(2026, 3, 10, 19, 0, 0, 0, istanbul),
		"21:15":            time.Date(2026, 3, 10, 21, 15, 0, 0, istanbul),
	}
	for input, want := range cases {
		got, err := p.Parse(input, ref)
		require.NoError(t, err, input)
		assert.Equal(t, time.UTC, got.Location(), input)
		assert.True(t, got.Equal(want), "%q -> %s, want %s", input, got.In(istanbul), want)
	}
}

func TestDateParserEngineSearchFindsSpan(t *testing.T) {
	t.Parallel()
	p := newRealParser()
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, istanbul)

	matches := p.Search("tomorrow 15.00 drink water", ref)
	require.NotEmpty(t, matches)
	last := matches[len(matches)-1]
	assert.Equal(t, "tomorrow 15.00", last.Text)
	assert.True(t, last.Time.Equal(time.Date(2026, 3, 11, 15, 0, 0, 0, istanbul)), "got %s", last.Time)
}

func TestDateParserEngineNoDate(t *testing.T) {
	t.Parallel()
	p := newRealParser()

	_, err := p.Parse("drink water", time.Date(2026, 3, 10, 12, 0, 0, 0, istanbul))
	require.ErrorIs(t, err, ErrNoTime)
}
