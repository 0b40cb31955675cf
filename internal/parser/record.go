package parser

import "time"

// EntryType is the layout a block of OCR text was recognised as.
type EntryType string

const (
	EntryDay     EntryType = "day"
	EntryWeek    EntryType = "week"
	EntrySession EntryType = "session"
	EntryUnknown EntryType = "unknown"
)

// Offer is one store line from the offer list.
type Offer struct {
	Store         string   `json:"store"`
	TotalEarnings *float64 `json:"total_earnings"`
}

// DateRange is an inclusive range of ISO dates.
type DateRange struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// ParsedRecord is the structured result of parsing one OCR text blob.
// Every field is independently nullable.
type ParsedRecord struct {
	EntryType EntryType `json:"entry_type"`

	// Date is the ISO date of a day or session summary.
	Date *string `json:"date"`

	// StartDate and EndDate bound a weekly summary.
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`

	TotalEarnings *float64 `json:"total_earnings"`
	BasePay       *float64 `json:"base_pay"`
	Tips          *float64 `json:"tips"`

	// StartTime and EndTime are 24-hour "HH:MM".
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`

	// ActiveTime and TotalTime are durations in minutes.
	ActiveTime *int `json:"active_time"`
	TotalTime  *int `json:"total_time"`

	OffersCount *int `json:"offers_count"`
	Deliveries  *int `json:"deliveries"`
	Dashes      *int `json:"dashes"`

	Offers []Offer `json:"offers"`
}

// Options tune parsing.
type Options struct {
	// Now supplies the current year for dates shown without one.
	// The zero value means time.Now().
	Now time.Time

	// SessionSchema reports day and unknown layouts as EntrySession, for
	// callers storing every non-weekly record as a dash session.
	SessionSchema bool
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}
