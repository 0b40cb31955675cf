package parser

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want EntryType
	}{
		{"dashes header beats start time", "Dashes\nStart Time 10:00 AM", EntryWeek},
		{"indented dashes header", "Earnings\n  Dashes  \n3 dashes", EntryWeek},
		{"week of", "Week of Feb 9\n$500.00", EntryWeek},
		{"compact range", "Feb 9-15\n$812.40", EntryWeek},
		{"cross-month range", "Jan 27 – Feb 2\nTuesday, Jan 28 $80.00", EntryWeek},
		{"dated range with years", "Jan 6, 2025 - Jan 12, 2025", EntryWeek},
		{"start and end labels", "Start Time 10:27 AM\nEnd Time 12:12 PM", EntryDay},
		{"date with year", "January 6, 2025\nTotal $80.00", EntryDay},
		{"weekday with start/end lines", "Mon, Jan 6\nStarted 10:00\nEnded 11:00", EntryDay},
		{"weekday alone", "Mon, Jan 6\nTaco Bell $14.40", EntryUnknown},
		{"offer only", "Taco Bell $14.40", EntryUnknown},
		{"dash before a clock time", "Tuesday, Feb 10 - 12:30 PM", EntryUnknown},
		{"dash before a count", "Jan 6 - 3 offers", EntryUnknown},
		{"day numbers out of range", "Feb 9-45\n$80.00", EntryUnknown},
		{"empty", "", EntryUnknown},
		{"dashes inside a word", "Dashes completed: 3", EntryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyWithReason(t *testing.T) {
	entry, reason := ClassifyWithReason("Feb 9-15")
	if entry != EntryWeek || reason != "compact range" {
		t.Errorf("got (%s, %q), want (week, compact range)", entry, reason)
	}

	entry, reason = ClassifyWithReason("nothing useful")
	if entry != EntryUnknown || reason != "" {
		t.Errorf("got (%s, %q), want (unknown, \"\")", entry, reason)
	}
}
