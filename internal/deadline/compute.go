// Package deadline computes filing deadlines per FRCP 6(a) (as amended
// effective Dec 1, 2009): exclude the trigger date, count every calendar
// day, and extend a due date that lands on a weekend or federal holiday to
// the next business day. Service-method adjustments follow FRCP 6(d).
package deadline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gavelhq/gavel/internal/compliance"
)

// ErrNegativePeriod is returned for a request with a negative period.
var ErrNegativePeriod = errors.New("period days cannot be negative")

// Request describes one deadline to compute.
type Request struct {
	TriggerDate   compliance.Date          `json:"trigger_date"`
	PeriodDays    int                      `json:"period_days"`
	ServiceMethod compliance.ServiceMethod `json:"service_method"`
	Jurisdiction  string                   `json:"jurisdiction"`
	Description   string                   `json:"description"`
	RuleCitation  string                   `json:"rule_citation"`
}

// Compute resolves the request into a due date with an audit trail of the
// steps taken, returned as a compliance.DeadlineResult.
func Compute(req Request) (compliance.DeadlineResult, error) {
	if req.PeriodDays < 0 {
		return compliance.DeadlineResult{}, ErrNegativePeriod
	}

	serviceAdditional := req.ServiceMethod.AdditionalDays()
	totalPeriod := req.PeriodDays + serviceAdditional
	isShort := totalPeriod <= compliance.ShortPeriodThreshold

	// FRCP 6(a)(1)(A): exclude the day of the event that triggers the
	// period; counting begins the next day.
	startDate := req.TriggerDate.AddDays(1)
	rawDueDate := countCalendarDays(startDate, totalPeriod)
	dueDate := NextBusinessDay(rawDueDate)

	notes := []string{
		fmt.Sprintf("Trigger date: %s; counting begins %s", req.TriggerDate, startDate),
	}
	if serviceAdditional > 0 {
		notes = append(notes, fmt.Sprintf(
			"Service method (%s): +%d days added to base period of %d days",
			req.ServiceMethod, serviceAdditional, req.PeriodDays))
	}
	shortSuffix := ""
	if isShort {
		shortSuffix = " (short period per FRCP 6(a)(2))"
	}
	notes = append(notes, fmt.Sprintf("Total period: %d calendar days%s", totalPeriod, shortSuffix))
	if !dueDate.Equal(rawDueDate) {
		notes = append(notes, fmt.Sprintf(
			"Landing day %s falls on weekend/holiday; extended to next business day %s",
			rawDueDate, dueDate))
	}
	notes = append(notes, fmt.Sprintf("Due date: %s", dueDate))

	return compliance.DeadlineResult{
		DueDate:          dueDate,
		Description:      req.Description,
		RuleCitation:     req.RuleCitation,
		ComputationNotes: strings.Join(notes, "; "),
		IsShortPeriod:    isShort,
	}, nil
}

// countCalendarDays lands on the last day of an n-day period that starts
// on (and includes) start. FRCP 6(a)(1)(B): count every day, weekends and
// holidays included.
func countCalendarDays(start compliance.Date, days int) compliance.Date {
	if days <= 0 {
		return start
	}
	return start.AddDays(days - 1)
}
