package timeparse

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// phraseEngine recognises a fixed set of phrases, which keeps tests independent
// of the real date library's heuristics.
type phraseEngine map[string]func(ref time.Time, loc *time.Location) time.Time

func (e phraseEngine) Search(text string, ref time.Time, loc *time.Location) ([]Match, error) {
	lower := strings.ToLower(text)
	type hit struct {
		at int
		m  Match
	}
	var hits []hit
	for phrase, resolve := range e {
		from := 0
		for {
			idx := strings.Index(lower[from:], phrase)
			if idx < 0 {
				break
			}
			start := from + idx
			hits = append(hits, hit{at: start, m: Match{Text: text[start : start+len(phrase)], Time: resolve(ref, loc)}})
			from = start + len(phrase)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].at < hits[j].at })
	out := make([]Match, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.m)
	}
	return out, nil
}

func (e phraseEngine) Parse(text string, ref time.Time, loc *time.Location) (time.Time, error) {
	if resolve, ok := e[strings.ToLower(strings.TrimSpace(text))]; ok {
		return resolve(ref, loc), nil
	}
	return time.Time{}, errors.New("not a date")
}

func tomorrowAt(hour, minute int) func(time.Time, *time.Location) time.Time {
	return func(ref time.Time, loc *time.Location) time.Time {
		l := ref.In(loc)
		return time.Date(l.Year(), l.Month(), l.Day()+1, hour, minute, 0, 0, loc)
	}
}

func fixed(at time.Time) func(time.Time, *time.Location) time.Time {
	return func(time.Time, *time.Location) time.Time { return at }
}
