// Package schedule is the scheduling core: protocol expansion, recurrence
// evaluation, per-occurrence completion tracking and daily agendas. Every
// function is pure over the collections it is given.
package schedule

import (
	"fmt"

	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
)

// Rule decides whether an activity anchored at anchor is due on a date at or
// after the anchor. Callers never pass a date before the anchor.
//
// The interface is sealed; every variant lives in this file and is listed in
// rules.
type Rule interface {
	Name() models.Recurrence
	matches(anchor, q calendar.Date) bool
}

// Once matches only the anchor day. It covers one-time and protocol
// activities and the "none" rule.
type Once struct{}

// Daily matches every day from the anchor on.
type Daily struct{}

// Weekly matches the anchor's weekday.
type Weekly struct{}

// Monthly matches the anchor's day of month every Every months. Months that
// have no such day are skipped, never clamped.
type Monthly struct {
	Every int
	name  models.Recurrence
}

// Annual matches the anchor's month and day every year. A February 29 anchor
// only matches in leap years.
type Annual struct{}

func (Once) Name() models.Recurrence   { return models.RecurrenceNone }
func (Daily) Name() models.Recurrence  { return models.RecurrenceDaily }
func (Weekly) Name() models.Recurrence { return models.RecurrenceWeekly }
func (Annual) Name() models.Recurrence { return models.RecurrenceAnnual }

func (m Monthly) Name() models.Recurrence { return m.name }

func (Once) matches(anchor, q calendar.Date) bool { return q == anchor }

func (Daily) matches(_, _ calendar.Date) bool { return true }

func (Weekly) matches(anchor, q calendar.Date) bool {
	return q.DaysSince(anchor)%7 == 0
}

func (m Monthly) matches(anchor, q calendar.Date) bool {
	return q.Day == anchor.Day && q.MonthsSince(anchor)%m.Every == 0
}

func (Annual) matches(anchor, q calendar.Date) bool {
	return q.Month == anchor.Month && q.Day == anchor.Day
}

var rules = map[models.Recurrence]Rule{
	models.RecurrenceNone:       Once{},
	models.RecurrenceDaily:      Daily{},
	models.RecurrenceWeekly:     Weekly{},
	models.RecurrenceMonthly:    Monthly{Every: 1, name: models.RecurrenceMonthly},
	models.RecurrenceQuarterly:  Monthly{Every: 3, name: models.RecurrenceQuarterly},
	models.RecurrenceSemiannual: Monthly{Every: 6, name: models.RecurrenceSemiannual},
	models.RecurrenceAnnual:     Annual{},
}

// ParseRule returns the rule registered under name. The empty name means no
// recurrence.
func ParseRule(name models.Recurrence) (Rule, error) {
	if name == "" {
		return Once{}, nil
	}
	r, ok := rules[name]
	if !ok {
		return nil, fmt.Errorf("schedule: unknown recurrence %q", name)
	}
	return r, nil
}

// RuleFor returns the rule governing a. Only recurring activities carry a
// real rule; everything else, including unknown names, is exact-match.
func RuleFor(a models.Activity) Rule {
	if !a.IsRecurring() {
		return Once{}
	}
	r, err := ParseRule(a.Recurrence)
	if err != nil {
		return Once{}
	}
	return r
}

// IsActiveOn reports whether a is due on q. Nothing is ever due before its
// anchor date.
func IsActiveOn(a models.Activity, q calendar.Date) bool {
	if q.Before(a.Date) {
		return false
	}
	return RuleFor(a).matches(a.Date, q)
}

// maxOccurrenceSpan is the longest range, in days, Occurrences accepts.
const maxOccurrenceSpan = 366

// Occurrences lists every date in [from, to] on which a is due.
func Occurrences(a models.Activity, from, to calendar.Date) ([]calendar.Date, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("schedule: range end %s before start %s", to, from)
	}
	if span := to.DaysSince(from); span > maxOccurrenceSpan {
		return nil, fmt.Errorf("schedule: range of %d days exceeds %d", span, maxOccurrenceSpan)
	}
	var out []calendar.Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		if IsActiveOn(a, d) {
			out = append(out, d)
		}
	}
	return out, nil
}
