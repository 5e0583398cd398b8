package schedule

import (
	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
)

// IsCompleted reports whether a is done on q. Recurring activities track
// each occurrence separately; everything else has a single flag.
func IsCompleted(a models.Activity, q calendar.Date) bool {
	if a.IsRecurring() {
		return a.CompletedDates.Has(q)
	}
	return a.Completed
}

// Toggle flips the completion of a on q and returns the updated copy. The
// date is not checked against the recurrence rule, so completion records
// survive later rule edits.
func Toggle(a models.Activity, q calendar.Date) models.Activity {
	out := a.Clone()
	if !a.IsRecurring() {
		out.Completed = !a.Completed
		return out
	}
	if a.CompletedDates.Has(q) {
		out.CompletedDates = a.CompletedDates.Without(q)
	} else {
		out.CompletedDates = a.CompletedDates.With(q)
	}
	return out
}
