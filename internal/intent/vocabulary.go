package intent

import (
	"regexp"
	"strings"
)

// Trigger phrases, longest form first so the strip pattern removes as much as it can.
var (
	noteTriggers = []string{
		`not ?al(?:[ıi]r m[ıi]s[ıi]n)?`,
		`yaz(?:ar m[ıi]s[ıi]n)?`,
		`kaydet`,
		`take (?:a )?note(?: of| that)?`,
		`make a note(?: of| that)?`,
		`note down`,
		`write down`,
	}
	reminderTriggers = []string{
		`hat[ıiIİ]rlat(?:[ıi]r m[ıi]s[ıi]n)?`,
		`alarm kur`,
		`remind me(?: to| about| that)?`,
		`remind`,
		`set an? alarm(?: for)?`,
		`set a reminder(?: for| to)?`,
	}
)

var (
	noteDetect     = detectPattern(noteTriggers)
	noteStrip      = stripPattern(noteTriggers)
	reminderDetect = detectPattern(reminderTriggers)
	reminderStrip  = stripPattern(reminderTriggers)

	leadingConnector = regexp.MustCompile(`(?i)^(?:to|that|about)\s+`)
	edgePunctuation  = " \t\n,.;:-–|"
)

func detectPattern(triggers []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + strings.Join(triggers, "|") + `)(?:[^\p{L}\p{N}]|$)`)
}

func stripPattern(triggers []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*(?:` + strings.Join(triggers, "|") + `)(?:[^\p{L}\p{N}]+|$)`)
}

// stripLeading removes one trigger phrase from the start of s.
func stripLeading(re *regexp.Regexp, s string) string {
	s = strings.TrimSpace(s)
	if loc := re.FindStringIndex(s); loc != nil {
		s = s[loc[1]:]
	}
	return strings.TrimSpace(s)
}

func cleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, edgePunctuation)
	s = leadingConnector.ReplaceAllString(s, "")
	return strings.Trim(s, edgePunctuation)
}
