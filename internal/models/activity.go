package models

import (
	"slices"
	"time"

	"github.com/starford/caseificio/internal/calendar"
)

// ActivityType tells where an activity comes from.
type ActivityType string

const (
	ActivityProtocol  ActivityType = "protocol"
	ActivityRecurring ActivityType = "recurring"
	ActivityOneTime   ActivityType = "one-time"
)

// Recurrence is the wire name of a recurrence rule.
type Recurrence string

const (
	RecurrenceNone       Recurrence = "none"
	RecurrenceDaily      Recurrence = "daily"
	RecurrenceWeekly     Recurrence = "weekly"
	RecurrenceMonthly    Recurrence = "monthly"
	RecurrenceQuarterly  Recurrence = "quarterly"
	RecurrenceSemiannual Recurrence = "semiannual"
	RecurrenceAnnual     Recurrence = "annual"
)

// Recurrences lists every known rule, none included.
var Recurrences = []Recurrence{
	RecurrenceNone,
	RecurrenceDaily,
	RecurrenceWeekly,
	RecurrenceMonthly,
	RecurrenceQuarterly,
	RecurrenceSemiannual,
	RecurrenceAnnual,
}

// Activity is a calendar task: a materialised protocol step, a one-time
// task, or a recurring task anchored at Date.
type Activity struct {
	ID             string        `json:"id" db:"id"`
	Title          string        `json:"title" db:"title"`
	Description    string        `json:"description,omitempty" db:"description"`
	Date           calendar.Date `json:"date" db:"date"`
	Type           ActivityType  `json:"type" db:"type"`
	Recurrence     Recurrence    `json:"recurrence,omitempty" db:"recurrence"`
	ProductionID   string        `json:"production_id,omitempty" db:"production_id"`
	CheeseTypeID   string        `json:"cheese_type_id,omitempty" db:"cheese_type_id"`
	Completed      bool          `json:"completed" db:"completed"`
	CompletedDates DateSet       `json:"completed_dates,omitempty" db:"-"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// IsRecurring reports whether completion is tracked per occurrence.
func (a Activity) IsRecurring() bool {
	return a.Type == ActivityRecurring && a.Recurrence != "" && a.Recurrence != RecurrenceNone
}

// Clone returns a deep copy of a.
func (a Activity) Clone() Activity {
	a.CompletedDates = slices.Clone(a.CompletedDates)
	return a
}
