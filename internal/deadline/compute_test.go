package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelhq/gavel/internal/compliance"
)

func day(year int, month time.Month, d int) compliance.Date {
	return compliance.NewDate(year, month, d)
}

func makeRequest(trigger compliance.Date, period int, service compliance.ServiceMethod) Request {
	return Request{
		TriggerDate:   trigger,
		PeriodDays:    period,
		ServiceMethod: service,
		Jurisdiction:  "TEST",
		Description:   "Test deadline",
		RuleCitation:  "FRCP 12(a)",
	}
}

func TestFederalHolidays(t *testing.T) {
	t.Parallel()

	holidays := FederalHolidays(2025)
	require.Len(t, holidays, 11)

	byName := make(map[string]compliance.Date, len(holidays))
	for _, h := range holidays {
		byName[h.Name] = h.Date
	}
	assert.Equal(t, day(2025, time.January, 20), byName["Martin Luther King Jr. Day"])
	assert.Equal(t, day(2025, time.May, 26), byName["Memorial Day"])
	assert.Equal(t, day(2025, time.November, 27), byName["Thanksgiving Day"])
	assert.Equal(t, day(2025, time.December, 25), byName["Christmas Day"])

	for i := 1; i < len(holidays); i++ {
		assert.True(t, holidays[i-1].Date.Before(holidays[i].Date), "holidays must be sorted")
	}
}

func TestFederalHolidays_WeekendObservation(t *testing.T) {
	t.Parallel()

	// July 4, 2026 is a Saturday; observed Friday July 3.
	assert.True(t, IsFederalHoliday(day(2026, time.July, 3)))
	assert.False(t, IsFederalHoliday(day(2026, time.July, 4)))

	// Veterans Day 2028 is a Saturday; observed Friday November 10.
	assert.True(t, IsFederalHoliday(day(2028, time.November, 10)))
}

func TestNextBusinessDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   compliance.Date
		want compliance.Date
	}{
		{"weekday unchanged", day(2025, time.October, 8), day(2025, time.October, 8)},
		{"saturday to monday", day(2025, time.October, 4), day(2025, time.October, 6)},
		{"christmas skipped", day(2025, time.December, 25), day(2025, time.December, 26)},
		{"weekend into columbus day", day(2025, time.October, 11), day(2025, time.October, 14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, NextBusinessDay(tt.in))
		})
	}
}

func TestCompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     Request
		wantDue compliance.Date
		short   bool
	}{
		{
			// Start Oct 7, +4 = Sat Oct 11 -> Mon Oct 13 is Columbus Day
			// -> Tue Oct 14.
			name:    "five day period lands on weekend then holiday",
			req:     makeRequest(day(2025, time.October, 6), 5, compliance.ServiceElectronic),
			wantDue: day(2025, time.October, 14),
			short:   true,
		},
		{
			// 5 + 3 mail days = 8; start Oct 7, +7 = Tue Oct 14.
			name:    "mail service adds three days",
			req:     makeRequest(day(2025, time.October, 6), 5, compliance.ServiceMail),
			wantDue: day(2025, time.October, 14),
			short:   true,
		},
		{
			// Start Oct 8, +29 = Thu Nov 6.
			name:    "thirty day period",
			req:     makeRequest(day(2025, time.October, 7), 30, compliance.ServiceElectronic),
			wantDue: day(2025, time.November, 6),
			short:   false,
		},
		{
			// Start Nov 26, +30 = Thu Dec 25 (Christmas) -> Fri Dec 26.
			name:    "landing on christmas extends",
			req:     makeRequest(day(2025, time.November, 25), 31, compliance.ServiceElectronic),
			wantDue: day(2025, time.December, 26),
			short:   false,
		},
		{
			// Zero period: due the first business day after the trigger.
			name:    "zero day period",
			req:     makeRequest(day(2025, time.October, 6), 0, compliance.ServiceElectronic),
			wantDue: day(2025, time.October, 7),
			short:   true,
		},
		{
			name:    "fourteen days is a short period",
			req:     makeRequest(day(2025, time.October, 1), 14, compliance.ServiceElectronic),
			wantDue: day(2025, time.October, 15),
			short:   true,
		},
		{
			// 14 + 3 = 17 crosses the short-period boundary.
			name:    "service days push past short period",
			req:     makeRequest(day(2025, time.October, 1), 14, compliance.ServiceLeavingWithClerk),
			wantDue: day(2025, time.October, 20),
			short:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := Compute(tt.req)

			require.NoError(t, err)
			assert.Equal(t, tt.wantDue, result.DueDate, "got %s", result.DueDate)
			assert.Equal(t, tt.short, result.IsShortPeriod)
			assert.Equal(t, "Test deadline", result.Description)
			assert.Equal(t, "FRCP 12(a)", result.RuleCitation)
			assert.Contains(t, result.ComputationNotes, "Due date: "+tt.wantDue.String())
		})
	}
}

func TestCompute_NegativePeriod(t *testing.T) {
	t.Parallel()

	_, err := Compute(makeRequest(day(2025, time.October, 6), -1, compliance.ServiceElectronic))

	assert.ErrorIs(t, err, ErrNegativePeriod)
}
