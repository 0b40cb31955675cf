package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	offerCurrency = `(?:\$\s?\d+(?:,\d{3})*(?:\.\d{1,2})?|\d+(?:,\d{3})*\.\d{2})`

	// Checkmarks and arrows that OCR reads next to an amount.
	strayGlyph = `[vV✓✔√»>~*•·]`
)

var (
	offerLineRe   = regexp.MustCompile(`^(.*?)(?:\s+` + strayGlyph + `)?\s*(` + offerCurrency + `)\s*[)\]}]?\s*$`)
	amountLineRe  = regexp.MustCompile(offerCurrency + `\s*[)\]}]?\s*$`)
	hasCurrencyRe = regexp.MustCompile(offerCurrency)
	clockRe       = regexp.MustCompile(`\d{1,2}:\d{2}`)
	weekdayLineRe = regexp.MustCompile(`(?mi)^\s*(?:mon(?:day)?|tue(?:s(?:day)?)?|wed(?:nesday)?|thu(?:r(?:s(?:day)?)?)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?)\b`)
	weekdayOnlyRe = regexp.MustCompile(`(?i)^\s*(?:mon(?:day)?|tue(?:s(?:day)?)?|wed(?:nesday)?|thu(?:r(?:s(?:day)?)?)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?)\W*$`)
	numericRe     = regexp.MustCompile(`^[\d\s.,$#-]+$`)

	skipLineRe = regexp.MustCompile(`(?i)^\s*(?:total\b|earnings\b|you\s+earned|(?:door\s?dash|dd|base)\s+pay|customer\s+tips?|tips\b|active\b|dash\s+time|time\s+on\s+dash|start(?:ed)?\b|end(?:ed)?\b|offers?\b|deliver(?:y|ies)\b|dash(?:es)?\b|week\s+of|this\s+week|last\s+week|pay\s*out\b|payments?\b|(?:details|summary)\s*:?\s*$|\d+\s+(?:offers?|deliver(?:y|ies)|dash(?:es)?)\b)`)
)

// isSkipLine reports whether line is a header, label, summary field or date
// and therefore never offer content. A weekday prefix alone is not enough:
// "Sun Garden" is a store, "Sun, Feb 9" and a bare "Sunday" are dates.
func isSkipLine(line string) bool {
	return skipLineRe.MatchString(line) ||
		weekdayOnlyRe.MatchString(line) ||
		looseDateRe.MatchString(line) ||
		clockRe.MatchString(line)
}

// JoinWrappedOffers repairs offers that OCR split over two lines. A line
// without an amount that is followed by an amount line is merged with it,
// separated by a single space. Blank lines are dropped and a wrap is assumed
// to span at most one extra line.
func JoinWrappedOffers(lines []string) []string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}

	out := make([]string, 0, len(kept))
	for i := 0; i < len(kept); i++ {
		cur := kept[i]
		if i+1 < len(kept) &&
			!hasCurrencyRe.MatchString(cur) && !isSkipLine(cur) &&
			amountLineRe.MatchString(kept[i+1]) && !isSkipLine(kept[i+1]) {
			out = append(out, cur+" "+kept[i+1])
			i++
			continue
		}
		out = append(out, cur)
	}
	return out
}

// ExtractOffers reconstructs the offer list from OCR text. Store names that
// are empty, two characters or shorter, or purely numeric are dropped as OCR
// noise. The result is never nil.
func ExtractOffers(text string) []Offer {
	offers := []Offer{}
	for _, line := range JoinWrappedOffers(splitLines(text)) {
		if isSkipLine(line) {
			continue
		}
		m := offerLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		store := cleanStore(m[1])
		if !validStore(store) {
			continue
		}
		offers = append(offers, Offer{Store: store, TotalEarnings: parseAmount(m[2])})
	}
	return offers
}

func cleanStore(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "•·*-–— ")
	return strings.TrimRight(s, " -–—:·•|,")
}

func validStore(s string) bool {
	return utf8.RuneCountInString(s) > 2 && !numericRe.MatchString(s)
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, " ", " ")
	return strings.Split(text, "\n")
}
