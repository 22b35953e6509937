// Package timeparse turns free-text time fragments into absolute UTC instants.
package timeparse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNoTime reports that no date or time could be read from the text.
// Callers treat it as a normal branch and ask the user to rephrase.
var ErrNoTime = errors.New("timeparse: could not determine a time")

// Match is a date/time span located inside a larger text.
type Match struct {
	Text string
	Time time.Time
}

// Engine is a language-aware date search.
type Engine interface {
	// Search returns every date/time span found in text, in order of appearance.
	Search(text string, ref time.Time, loc *time.Location) ([]Match, error)
	// Parse succeeds only when the whole text is a date/time expression.
	Parse(text string, ref time.Time, loc *time.Location) (time.Time, error)
}

var (
	dottedClock = regexp.MustCompile(`(\d{1,2})\.(\d{2})`)
	fillerWords = regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}])(saat|ta|te|da|de|o'clock|oclock)([^\p{L}\p{N}]|$)`)
	bareClock   = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	spaces      = regexp.MustCompile(`\s+`)
)

// Parser resolves time fragments against a single configured zone.
type Parser struct {
	engine Engine
	loc    *time.Location
}

// New returns a Parser. A nil loc means UTC.
func New(engine Engine, loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{engine: engine, loc: loc}
}

// Location returns the configured zone.
func (p *Parser) Location() *time.Location {
	return p.loc
}

// Parse resolves text relative to ref and returns the instant in UTC.
// The rightmost span found by the engine wins; a bare HH:MM is the fallback
// and resolves to its earliest future occurrence.
func (p *Parser) Parse(text string, ref time.Time) (time.Time, error) {
	raw := Normalize(text)
	if raw == "" {
		return time.Time{}, ErrNoTime
	}

	if p.engine != nil {
		// Some phrases only resolve with their filler words intact ("at 7pm").
		for _, candidate := range []string{raw, strings.TrimSpace(text)} {
			matches, err := p.engine.Search(candidate, ref, p.loc)
			if err == nil && len(matches) > 0 {
				return matches[len(matches)-1].Time.UTC(), nil
			}
		}
	}

	if at, ok := p.clockFallback(raw, ref); ok {
		return at, nil
	}
	return time.Time{}, ErrNoTime
}

// Search runs the engine's span search over text. Clock and filler variants
// are masked first; every returned Match.Text is the span as written in text.
func (p *Parser) Search(text string, ref time.Time) []Match {
	if p.engine == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	masked := maskForSearch(text)
	matches, err := p.engine.Search(masked, ref, p.loc)
	if err != nil {
		return nil
	}
	from := 0
	for i, m := range matches {
		start, end, ok := locateSpan(masked, m.Text, from)
		if !ok {
			continue
		}
		matches[i].Text = text[start:end]
		from = end
	}
	return matches
}

// IsExpression reports whether text on its own is a complete date/time expression.
func (p *Parser) IsExpression(text string, ref time.Time) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if p.engine != nil {
		if _, err := p.engine.Parse(Normalize(text), ref, p.loc); err == nil {
			return true
		}
	}
	return bareClock.FindString(text) == text
}

func (p *Parser) clockFallback(raw string, ref time.Time) (time.Time, bool) {
	m := bareClock.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return time.Time{}, false
	}

	local := ref.In(p.loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, p.loc)
	if !at.After(local) {
		at = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, p.loc)
	}
	return at.UTC(), true
}

// Normalize lower-cases text, rewrites 21.15 as 21:15 and drops the filler
// words that mean "at" or "o'clock".
func Normalize(text string) string {
	s := rewriteDottedClocks(strings.ToLower(text))
	// Adjacent fillers share a separator, so one pass can leave some behind.
	for i := 0; i < 2; i++ {
		s = fillerWords.ReplaceAllString(s, "$1 $3")
	}
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// maskForSearch rewrites dotted clocks and blanks filler words without
// changing the byte length, so offsets in the result are offsets in text.
func maskForSearch(text string) string {
	b := []byte(rewriteDottedClocks(text))
	for i := 0; i < 2; i++ {
		for _, loc := range fillerWords.FindAllSubmatchIndex(b, -1) {
			for j := loc[4]; j < loc[5]; j++ {
				b[j] = ' '
			}
		}
	}
	return string(b)
}

// locateSpan finds span in s at or after from, treating any run of
// whitespace as equal and ignoring case.
func locateSpan(s, span string, from int) (start, end int, ok bool) {
	fields := strings.Fields(span)
	if len(fields) == 0 || from > len(s) {
		return 0, 0, false
	}
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	re, err := regexp.Compile(`(?i)` + strings.Join(fields, `\s+`))
	if err != nil {
		return 0, 0, false
	}
	loc := re.FindStringIndex(s[from:])
	if loc == nil {
		return 0, 0, false
	}
	return from + loc[0], from + loc[1], true
}

// rewriteDottedClocks turns 21.15 into 21:15 but leaves dotted dates such as
// 01.05.2026 alone.
func rewriteDottedClocks(s string) string {
	locs := dottedClock.FindAllStringIndex(s, -1)
	if locs == nil {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if start > 0 && (isDigit(s[start-1]) || (s[start-1] == '.' && start > 1 && isDigit(s[start-2]))) {
			continue
		}
		if end < len(s) && (isDigit(s[end]) || (s[end] == '.' && end+1 < len(s) && isDigit(s[end+1]))) {
			continue
		}
		dot := strings.IndexByte(s[start:end], '.') + start
		b.WriteString(s[last:dot])
		b.WriteByte(':')
		last = dot + 1
	}
	b.WriteString(s[last:])
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
