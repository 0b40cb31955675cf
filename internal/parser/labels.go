package parser

import (
	"regexp"
	"strings"
)

var (
	basePayLabel = regexp.MustCompile(`(?i)\b(?:(?:door\s?dash|dd)\s+pay|base\s+pay)\b`)
	tipsLabel    = regexp.MustCompile(`(?i)\b(?:customer\s+tips?|tips)\b`)

	totalLabel = regexp.MustCompile(`(?i)^\s*(?:total\s+earnings|total\s+pay|you\s+earned|earnings|total)\s*:?\s*`)

	activeTimeLabel = regexp.MustCompile(`(?i)\bactive\s*(?:time)?\b`)
	totalTimeLabel  = regexp.MustCompile(`(?i)\b(?:total\s+(?:dash\s+)?time|dash\s+time|time\s+on\s+dash)\b`)
	startTimeLabel  = regexp.MustCompile(`(?i)\bstart(?:ed)?\s*(?:time)?\b`)
	endTimeLabel    = regexp.MustCompile(`(?i)\bend(?:ed)?\s*(?:time)?\b`)

	standaloneAmount = regexp.MustCompile(`^\s*\$\s?\d{1,3}(?:,\d{3})*(?:\.\d{2})?\s*$`)
)

// labelled finds the first line matching label and extracts a value from the
// text after the label, falling back to the next line when the label
// stands alone.
func labelled[T any](lines []string, label *regexp.Regexp, value func(string) *T) *T {
	for i, line := range lines {
		loc := label.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if v := value(line[loc[1]:]); v != nil {
			return v
		}
		if strings.TrimSpace(line[loc[1]:]) == "" && i+1 < len(lines) {
			if v := value(lines[i+1]); v != nil {
				return v
			}
		}
	}
	return nil
}

// LabeledAmount returns the currency amount attached to label, on the same
// line or the line below.
func LabeledAmount(lines []string, label *regexp.Regexp) *float64 {
	return labelled(lines, label, ParseCurrency)
}

func parseBasePay(lines []string) *float64 {
	return LabeledAmount(lines, basePayLabel)
}

func parseTips(lines []string) *float64 {
	return LabeledAmount(lines, tipsLabel)
}

// parseTotalEarnings tries an explicit total label, then base pay plus tips,
// then the first bare "$amount" line that is not the value of another label.
func parseTotalEarnings(lines []string) *float64 {
	for i, line := range lines {
		loc := totalLabel.FindStringIndex(line)
		if loc == nil {
			continue
		}
		rest := strings.TrimSpace(line[loc[1]:])
		switch {
		case rest == "":
			if i+1 < len(lines) && standaloneAmount.MatchString(lines[i+1]) {
				return ParseCurrency(lines[i+1])
			}
		case rest[0] == '$' || (rest[0] >= '0' && rest[0] <= '9'):
			if v := ParseCurrency(rest); v != nil {
				return v
			}
		}
		// Anything else ("Total time", "Earnings summary") is not an amount label.
	}

	base, tips := parseBasePay(lines), parseTips(lines)
	if base != nil && tips != nil {
		return ptr(*base + *tips)
	}

	for i, line := range lines {
		if !standaloneAmount.MatchString(line) {
			continue
		}
		if i > 0 && isAmountLabel(lines[i-1]) {
			continue
		}
		return ParseCurrency(line)
	}
	return nil
}

func parseActiveTime(lines []string) *int {
	return labelled(lines, activeTimeLabel, ParseDuration)
}

func parseTotalTime(lines []string) *int {
	return labelled(lines, totalTimeLabel, ParseDuration)
}

func parseStartTime(lines []string) *string {
	return labelled(lines, startTimeLabel, ParseTimeOfDay)
}

func parseEndTime(lines []string) *string {
	return labelled(lines, endTimeLabel, ParseTimeOfDay)
}

// isAmountLabel reports whether line labels a pay component whose amount
// may sit on the following line.
func isAmountLabel(line string) bool {
	return basePayLabel.MatchString(line) || tipsLabel.MatchString(line)
}
