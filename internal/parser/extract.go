package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const monthPattern = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	currencyRe = regexp.MustCompile(`\$?\d+(?:,\d+)*(?:\.\d{0,2})?`)

	hoursMinutesRe = regexp.MustCompile(`(?i)(\d+)\s*(?:hours?|hrs?|h)\s*(\d+)\s*(?:minutes?|mins?|m)\b`)
	hoursOnlyRe    = regexp.MustCompile(`(?i)(\d+)\s*(?:hours?|hrs?|h)\b`)
	minutesOnlyRe  = regexp.MustCompile(`(?i)(\d+)\s*(?:minutes?|mins?|m)\b`)

	timeOfDayRe = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})(?:\s*([ap])\.?\s*m?\.?\b)?`)

	looseDateRe  = regexp.MustCompile(`(?i)\b` + monthPattern + `\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)
	compactRange = regexp.MustCompile(`(?i)\b` + monthPattern + `\s+(\d{1,2})\s*[-–—]\s*(\d{1,2})\b(?:,?\s+(\d{4})\b)?`)
	crossRange   = regexp.MustCompile(`(?i)\b` + monthPattern + `\s+(\d{1,2})(?:,?\s+(\d{4}))?\s*[-–—]+\s*` + monthPattern + `\s+(\d{1,2})\b(?:,?\s+(\d{4})\b)?`)
	leadingMonth = regexp.MustCompile(`(?i)^\s*` + monthPattern + `(?:\b|\s|$)`)
	// A clock minute or a unit after "Feb 10 - 12" means the 12 is not a day.
	notDayTail = regexp.MustCompile(`(?i)^(?:[:.]\d|\s*(?:[ap]\.?m\b|offers?\b|orders?\b|deliver(?:y|ies)\b|dash(?:es)?\b|hours?\b|hrs?\b|h\b|minutes?\b|mins?\b|m\b))`)

	// Counts stay on one line so a preceding amount is never read as a count.
	offersCountRe   = regexp.MustCompile(`(?i)\boffers?[ \t]*:?[ \t]*(\d+)\b`)
	countOffersRe   = regexp.MustCompile(`(?i)(?:^|[^\d.,])(\d+)[ \t]+offers?\b`)
	deliveriesRe    = regexp.MustCompile(`(?i)(?:^|[^\d.,])(\d+)[ \t]+deliver(?:y|ies)\b`)
	deliveriesLblRe = regexp.MustCompile(`(?i)\bdeliver(?:y|ies)[ \t]*:?[ \t]*(\d+)\b`)
	dashesRe        = regexp.MustCompile(`(?i)(?:^|[^\d.,])(\d+)[ \t]+dash(?:es)?\b`)
)

// ParseCurrency returns the first amount in s, without thousands separators.
// Zero is a valid amount; nil means no amount was found.
func ParseCurrency(s string) *float64 {
	m := currencyRe.FindString(s)
	if m == "" {
		return nil
	}
	return parseAmount(m)
}

func parseAmount(s string) *float64 {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseDuration returns a duration in minutes from forms like "1h 30m",
// "1 hr 30 min", "3h" or "45 min".
func ParseDuration(s string) *int {
	if m := hoursMinutesRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		return ptr(h*60 + mins)
	}
	if m := hoursOnlyRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		return ptr(h * 60)
	}
	if m := minutesOnlyRe.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		return ptr(mins)
	}
	return nil
}

// ParseTimeOfDay returns the first clock time in s as 24-hour "HH:MM".
// Without an AM/PM marker the time is read as 24-hour.
func ParseTimeOfDay(s string) *string {
	for _, m := range timeOfDayRe.FindAllStringSubmatch(s, -1) {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		if mins > 59 {
			continue
		}
		switch strings.ToLower(m[3]) {
		case "a":
			if h < 1 || h > 12 {
				continue
			}
			if h == 12 {
				h = 0
			}
		case "p":
			if h < 1 || h > 12 {
				continue
			}
			if h != 12 {
				h += 12
			}
		default:
			if h > 23 {
				continue
			}
		}
		return ptr(twoDigits(h) + ":" + twoDigits(mins))
	}
	return nil
}

// ParseLooseDate returns the first "Month Day[, Year]" in s as an ISO date.
// A missing year defaults to the year of now.
func ParseLooseDate(s string, now time.Time) *string {
	for _, m := range looseDateRe.FindAllStringSubmatch(s, -1) {
		year := now.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		day, _ := strconv.Atoi(m[2])
		if d, ok := makeDate(year, monthOf(m[1]), day); ok {
			return ptr(d.Format(time.DateOnly))
		}
	}
	return nil
}

// ParseDateRange returns the first week range in s, either cross-month
// ("Jan 27 - Feb 2") or compact ("Feb 9-15"). Without explicit years the end
// date takes the year of now and a December start rolls back a year.
func ParseDateRange(s string, now time.Time) *DateRange {
	if m := crossRange.FindStringSubmatch(s); m != nil {
		startDay, _ := strconv.Atoi(m[2])
		endDay, _ := strconv.Atoi(m[5])
		return buildRange(monthOf(m[1]), startDay, m[3], monthOf(m[4]), endDay, m[6], now)
	}
	if m, ok := findCompactRange(s); ok {
		month := monthOf(m[1])
		startDay, _ := strconv.Atoi(m[2])
		endDay, _ := strconv.Atoi(m[3])
		endMonth := month
		if endDay < startDay {
			endMonth = month%12 + 1
		}
		return buildRange(month, startDay, "", endMonth, endDay, m[4], now)
	}
	return nil
}

func buildRange(startMonth time.Month, startDay int, startYear string, endMonth time.Month, endDay int, endYear string, now time.Time) *DateRange {
	ey := now.Year()
	if endYear != "" {
		ey, _ = strconv.Atoi(endYear)
	} else if startYear != "" {
		ey, _ = strconv.Atoi(startYear)
		if endMonth < startMonth {
			ey++
		}
	}
	sy := ey
	if startYear != "" {
		sy, _ = strconv.Atoi(startYear)
	} else if startMonth > endMonth {
		sy = ey - 1
	}

	start, ok := makeDate(sy, startMonth, startDay)
	if !ok {
		return nil
	}
	end, ok := makeDate(ey, endMonth, endDay)
	if !ok || end.Before(start) {
		return nil
	}
	return &DateRange{Start: start.Format(time.DateOnly), End: end.Format(time.DateOnly)}
}

// findCompactRange matches "Mon d-d" only when both numbers are days: no
// month name follows the second day ("Jan 6 - 12 Feb"), and it is neither
// the hour of a clock time ("Feb 10 - 12:30 PM") nor a count ("Jan 6 - 3
// offers").
func findCompactRange(s string) ([]string, bool) {
	for _, idx := range compactRange.FindAllStringSubmatchIndex(s, -1) {
		tail := s[idx[1]:]
		if leadingMonth.MatchString(tail) || notDayTail.MatchString(tail) {
			continue
		}
		m := make([]string, len(idx)/2)
		for i := range m {
			if idx[2*i] >= 0 {
				m[i] = s[idx[2*i]:idx[2*i+1]]
			}
		}
		if !isDay(m[2]) || !isDay(m[3]) {
			continue
		}
		return m, true
	}
	return nil, false
}

func isDay(s string) bool {
	d, err := strconv.Atoi(s)
	return err == nil && d >= 1 && d <= 31
}

// ParseOffersCount returns the number of offers from "Offers 12" or
// "12 offers".
func ParseOffersCount(s string) *int {
	return firstInt(s, offersCountRe, countOffersRe)
}

// ParseDeliveries returns the number of deliveries from "8 deliveries" or
// "Deliveries: 8".
func ParseDeliveries(s string) *int {
	return firstInt(s, deliveriesRe, deliveriesLblRe)
}

// ParseDashes returns the number of dashes from "3 dashes".
func ParseDashes(s string) *int {
	return firstInt(s, dashesRe)
}

func firstInt(s string, patterns ...*regexp.Regexp) *int {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(s); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return &n
			}
		}
	}
	return nil
}

func monthOf(token string) time.Month {
	token = strings.ToLower(token)
	if len(token) > 3 {
		token = token[:3]
	}
	return months[token]
}

// makeDate rejects dates that time.Date would normalise, such as Feb 30.
func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if month == 0 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func ptr[T any](v T) *T {
	return &v
}
