package parser

import "regexp"

var (
	dashesHeaderRe = regexp.MustCompile(`(?mi)^\s*dashes\s*$`)
	weekOfRe       = regexp.MustCompile(`(?i)\bweek\s+of\b`)
	startEndTimeRe = regexp.MustCompile(`(?i)\b(?:start|end)\s*time\b`)
	yearDateRe     = regexp.MustCompile(`(?i)\b` + monthPattern + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`)
	rangeMarkerRe  = regexp.MustCompile(`^\s*[-–—]`)
	startEndLineRe = regexp.MustCompile(`(?mi)^\s*(?:start|end)\w*`)
)

// rule is one classification signal. Rules run in order and the first match
// wins, so every week signal is checked before any day signal: a weekly
// summary lists its dashes by weekday and would otherwise look like a day.
type rule struct {
	name    string
	entry   EntryType
	matches func(text string) bool
}

var rules = []rule{
	{"dashes header", EntryWeek, dashesHeaderRe.MatchString},
	{"week of", EntryWeek, weekOfRe.MatchString},
	{"compact range", EntryWeek, func(text string) bool {
		_, ok := findCompactRange(text)
		return ok
	}},
	{"cross-month range", EntryWeek, crossRange.MatchString},
	{"start/end time labels", EntryDay, startEndTimeRe.MatchString},
	{"dated with year", EntryDay, hasYearDateWithoutRange},
	{"weekday with start/end", EntryDay, func(text string) bool {
		return weekdayLineRe.MatchString(text) && startEndLineRe.MatchString(text)
	}},
}

// Classify decides whether text is a day summary, a week summary or
// unknown. It never returns EntrySession; see Options.SessionSchema.
func Classify(text string) EntryType {
	entry, _ := ClassifyWithReason(text)
	return entry
}

// ClassifyWithReason is Classify that also names the rule that fired.
func ClassifyWithReason(text string) (EntryType, string) {
	for _, r := range rules {
		if r.matches(text) {
			return r.entry, r.name
		}
	}
	return EntryUnknown, ""
}

func hasYearDateWithoutRange(text string) bool {
	for _, idx := range yearDateRe.FindAllStringIndex(text, -1) {
		if !rangeMarkerRe.MatchString(text[idx[1]:]) {
			return true
		}
	}
	return false
}
