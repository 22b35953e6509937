package timeparse

import (
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

// DateParserEngine searches dates with go-dateparser.
type DateParserEngine struct {
	languages []string
}

// NewDateParserEngine returns an engine restricted to the given language codes.
func NewDateParserEngine(languages ...string) *DateParserEngine {
	return &DateParserEngine{languages: languages}
}

func (e *DateParserEngine) config(ref time.Time, loc *time.Location) *dps.Configuration {
	return &dps.Configuration{
		Languages:           e.languages,
		CurrentTime:         ref.In(loc),
		DefaultTimezone:     loc,
		PreferredDateSource: dps.Future,
	}
}

// Search implements Engine.
func (e *DateParserEngine) Search(text string, ref time.Time, loc *time.Location) ([]Match, error) {
	_, results, err := dps.Search(e.config(ref, loc), text)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(results))
	for _, r := range results {
		if r.Date.Time.IsZero() {
			continue
		}
		matches = append(matches, Match{Text: r.Text, Time: r.Date.Time})
	}
	return matches, nil
}

// Parse implements Engine.
func (e *DateParserEngine) Parse(text string, ref time.Time, loc *time.Location) (time.Time, error) {
	dt, err := dps.Parse(e.config(ref, loc), text)
	if err != nil {
		return time.Time{}, err
	}
	if dt.Time.IsZero() {
		return time.Time{}, ErrNoTime
	}
	return dt.Time, nil
}
