package parser

import "strings"

// Parse extracts a ParsedRecord from raw OCR text using the current year
// for dates shown without one.
func Parse(text string) ParsedRecord {
	return ParseWith(text, Options{})
}

// ParseSession is Parse for the simplified schema, where every non-weekly
// record is a dash session.
func ParseSession(text string) ParsedRecord {
	return ParseWith(text, Options{SessionSchema: true})
}

// ParseWith extracts a ParsedRecord from raw OCR text. It never fails:
// fields that cannot be determined are nil and Offers is never nil.
func ParseWith(text string, opts Options) ParsedRecord {
	lines := splitLines(text)
	normalized := strings.Join(lines, "\n")
	now := opts.now()

	entry := Classify(normalized)
	rec := ParsedRecord{
		EntryType:     entry,
		TotalEarnings: parseTotalEarnings(lines),
		ActiveTime:    parseActiveTime(lines),
		TotalTime:     parseTotalTime(lines),
		OffersCount:   ParseOffersCount(normalized),
		Deliveries:    ParseDeliveries(normalized),
		Offers:        ExtractOffers(normalized),
	}

	switch entry {
	case EntryWeek:
		if r := ParseDateRange(normalized, now); r != nil {
			rec.StartDate = ptr(r.Start)
			rec.EndDate = ptr(r.End)
		}
		rec.Dashes = ParseDashes(normalized)
	default:
		rec.Date = ParseLooseDate(normalized, now)
		rec.StartTime = parseStartTime(lines)
		rec.EndTime = parseEndTime(lines)
		rec.BasePay = parseBasePay(lines)
		rec.Tips = parseTips(lines)
		if opts.SessionSchema {
			rec.EntryType = EntrySession
		}
	}
	return rec
}
