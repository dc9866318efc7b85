package deadline

import (
	"time"

	"github.com/gavelhq/gavel/internal/compliance"
)

// FederalHoliday is an observed federal holiday for one calendar year.
type FederalHoliday struct {
	Date compliance.Date `json:"date"`
	Name string          `json:"name"`
}

// FederalHolidays returns the 11 federal holidays for a year, on their
// observed dates (a holiday landing on Saturday is observed Friday, on
// Sunday the following Monday), sorted ascending.
func FederalHolidays(year int) []FederalHoliday {
	holidays := []FederalHoliday{
		{observed(compliance.NewDate(year, time.January, 1)), "New Year's Day"},
		{nthWeekday(year, time.January, time.Monday, 3), "Martin Luther King Jr. Day"},
		{nthWeekday(year, time.February, time.Monday, 3), "Presidents' Day"},
		{lastWeekday(year, time.May, time.Monday), "Memorial Day"},
		{observed(compliance.NewDate(year, time.June, 19)), "Juneteenth"},
		{observed(compliance.NewDate(year, time.July, 4)), "Independence Day"},
		{nthWeekday(year, time.September, time.Monday, 1), "Labor Day"},
		{nthWeekday(year, time.October, time.Monday, 2), "Columbus Day"},
		{observed(compliance.NewDate(year, time.November, 11)), "Veterans Day"},
		{nthWeekday(year, time.November, time.Thursday, 4), "Thanksgiving Day"},
		{observed(compliance.NewDate(year, time.December, 25)), "Christmas Day"},
	}

	for i := 1; i < len(holidays); i++ {
		for j := i; j > 0 && holidays[j].Date.Before(holidays[j-1].Date); j-- {
			holidays[j], holidays[j-1] = holidays[j-1], holidays[j]
		}
	}
	return holidays
}

// IsFederalHoliday reports whether the date is an observed federal holiday.
func IsFederalHoliday(d compliance.Date) bool {
	for _, h := range FederalHolidays(d.Year()) {
		if h.Date.Equal(d) {
			return true
		}
	}
	return false
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(d compliance.Date) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NextBusinessDay advances past weekends and federal holidays. A date that
// is already a business day is returned unchanged.
func NextBusinessDay(d compliance.Date) compliance.Date {
	for IsWeekend(d) || IsFederalHoliday(d) {
		d = d.AddDays(1)
	}
	return d
}

// observed shifts a fixed-date holiday off the weekend: Saturday is
// observed the preceding Friday, Sunday the following Monday.
func observed(d compliance.Date) compliance.Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(1)
	default:
		return d
	}
}

// nthWeekday returns the nth occurrence of a weekday in a month
// (n is 1-based).
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) compliance.Date {
	first := compliance.NewDate(year, month, 1)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDays(offset + (n-1)*7)
}

// lastWeekday returns the final occurrence of a weekday in a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) compliance.Date {
	last := compliance.NewDate(year, month+1, 1).AddDays(-1)
	back := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDays(-back)
}
