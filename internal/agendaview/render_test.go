package agendaview

import (
	"strings"
	"testing"

	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/schedule"
)

func TestDay(t *testing.T) {
	date := calendar.MustParse("2026-03-08")
	items := []schedule.AgendaItem{
		{
			Activity:         models.Activity{Title: "Salatura", Type: models.ActivityProtocol},
			Date:             date,
			CheeseName:       "Caciotta",
			CheeseColor:      "#F2C14E",
			ProductionNumber: "2026-001",
			ProductionLiters: 80,
		},
		{
			Activity:  models.Activity{Title: "Lavaggio vasche", Type: models.ActivityRecurring, Recurrence: models.RecurrenceWeekly},
			Date:      date,
			Completed: true,
		},
	}

	out := Day(date, items)
	for _, want := range []string{
		"AGENDA · Sunday 2026-03-08",
		"[ ]",
		"Salatura",
		"Caciotta, lotto 2026-001, 80 L",
		"[x]",
		"Lavaggio vasche",
		"(weekly)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDayEmpty(t *testing.T) {
	out := Day(calendar.MustParse("2026-03-09"), nil)
	if !strings.Contains(out, "nothing due") {
		t.Errorf("output = %s", out)
	}
}

func TestRangeSkipsEmptyDays(t *testing.T) {
	days := []schedule.DayAgenda{
		{Date: calendar.MustParse("2026-03-08")},
		{Date: calendar.MustParse("2026-03-09"), Items: []schedule.AgendaItem{{Activity: models.Activity{Title: "Rivoltamento"}}}},
	}
	out := Range(days)
	if strings.Contains(out, "2026-03-08") || !strings.Contains(out, "Rivoltamento") {
		t.Errorf("output = %s", out)
	}

	empty := Range(days[:1])
	if !strings.Contains(empty, "nothing due") {
		t.Errorf("all-empty range = %s", empty)
	}
}
