package booking

import "time"

// ISOWeekday returns the ISO-8601 weekday of t (Monday=1 .. Sunday=7).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DatesWithinTwoWeeks expands a rule into the concrete dates it targets
// inside the next 14 days.
//
// When today already is the rule's weekday the result includes today plus
// the next two occurrences (3 dates); otherwise only the next two
// occurrences are returned. The asymmetry is deliberate: callers attempt
// one booking per returned date, and the site opens its window exactly 14
// days out, so "today's" occurrence is only reachable when diff == 0.
func DatesWithinTwoWeeks(rule RecurrenceRule, today time.Time) []time.Time {
	diff := rule.ISOWeekday - ISOWeekday(today) // -6 .. 6
	switch {
	case diff == 0:
		return []time.Time{today, today.AddDate(0, 0, 7), today.AddDate(0, 0, 14)}
	case diff < 0:
		// this week's occurrence is already gone
		return []time.Time{today.AddDate(0, 0, diff+7), today.AddDate(0, 0, diff+14)}
	default:
		// the third occurrence would land beyond day 14
		return []time.Time{today.AddDate(0, 0, diff), today.AddDate(0, 0, diff+7)}
	}
}

// DayIndex returns the calendar date of t as whole days since 1970-01-01.
// The time-of-day and zone offset are dropped first so two timestamps on
// the same local date always map to the same index.
func DayIndex(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
