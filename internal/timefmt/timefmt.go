// Package timefmt renders occurrence times the way the client displays them:
// 12-hour clock, no minutes on the hour, Noon and Midnight spelled out.
package timefmt

import (
	"fmt"
	"time"

	"github.com/dtarnawsky/dust/internal/model"
)

// Unknown is returned when no occurrence matches the requested day.
const Unknown = "dont know"

// Clock renders a single time: "7pm", "7:30pm", "Noon", "Midnight".
func Clock(t time.Time) string {
	h := t.Hour()
	ampm := "am"
	if h >= 12 {
		ampm = "pm"
	}
	h12 := h % 12
	if t.Minute() != 0 {
		if h12 == 0 {
			h12 = 12
		}
		return fmt.Sprintf("%d:%02d%s", h12, t.Minute(), ampm)
	}
	if h12 == 0 {
		if ampm == "pm" {
			return "Noon"
		}
		return "Midnight"
	}
	return fmt.Sprintf("%d%s", h12, ampm)
}

// Duration renders the span between two times as "30mins" under an hour,
// else whole truncated hours: "2hrs".
func Duration(start, end time.Time) string {
	d := end.Sub(start)
	if d < 0 {
		d = -d
	}
	if mins := int(d.Minutes()); mins < 60 {
		return fmt.Sprintf("%dmins", mins)
	}
	return fmt.Sprintf("%dhrs", int(d.Hours()))
}

// SameDay reports whether two times fall on the same calendar date. Both
// sides are compared as-is; callers must supply them in the same (event
// local) zone.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Occurrence renders the display string for an event's occurrence set. The
// first occurrence whose start or end falls on day wins; with a nil day the
// first occurrence wins. Short form is "7pm (2hrs)", or "Until 10pm (3hrs)"
// when the occurrence only ends on day; long form is "7pm-9pm (2hrs)".
// When nothing matches day the fixed Unknown marker is returned.
func Occurrence(occurrences []model.Occurrence, day *time.Time, long bool) string {
	for _, occ := range occurrences {
		start, err := time.Parse(time.RFC3339, occ.StartTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, occ.EndTime)
		if err != nil {
			continue
		}
		startsOnDay := day != nil && SameDay(start, *day)
		endsOnDay := day != nil && SameDay(end, *day)
		if day != nil && !startsOnDay && !endsOnDay {
			continue
		}
		if long {
			return fmt.Sprintf("%s-%s (%s)", Clock(start), Clock(end), Duration(start, end))
		}
		if endsOnDay && !startsOnDay {
			return fmt.Sprintf("Until %s (%s)", Clock(end), Duration(start, end))
		}
		return fmt.Sprintf("%s (%s)", Clock(start), Duration(start, end))
	}
	return Unknown
}

// Ordinal renders 1 as "1st", 2 as "2nd", 23 as "23rd" and so on.
func Ordinal(n int) string {
	if n <= 0 {
		return fmt.Sprint(n)
	}
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
