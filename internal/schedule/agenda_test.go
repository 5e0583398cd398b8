package schedule

import (
	"slices"
	"testing"

	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
)

func TestCompletionPerOccurrence(t *testing.T) {
	a := recurring("2026-01-06", models.RecurrenceWeekly)
	d1 := calendar.MustParse("2026-01-13")
	d2 := calendar.MustParse("2026-01-20")

	done := Toggle(a, d1)
	if !IsCompleted(done, d1) {
		t.Error("toggled occurrence should be completed")
	}
	if IsCompleted(done, d2) {
		t.Error("other occurrence must stay open")
	}
	if done.Completed {
		t.Error("single flag must stay false for recurring activities")
	}
	if len(a.CompletedDates) != 0 {
		t.Error("Toggle mutated its input")
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	a := recurring("2026-01-06", models.RecurrenceWeekly)
	a.CompletedDates = models.NewDateSet("2026-01-06", "2026-01-27")
	d := calendar.MustParse("2026-01-13")

	back := Toggle(Toggle(a, d), d)
	if !slices.Equal(back.CompletedDates, a.CompletedDates) {
		t.Errorf("dates = %v, want %v", back.CompletedDates, a.CompletedDates)
	}

	// And starting from a present entry.
	d = calendar.MustParse("2026-01-27")
	back = Toggle(Toggle(a, d), d)
	if !slices.Equal(back.CompletedDates, a.CompletedDates) {
		t.Errorf("dates = %v, want %v", back.CompletedDates, a.CompletedDates)
	}
}

func TestToggleNonRecurring(t *testing.T) {
	a := models.Activity{ID: "x", Type: models.ActivityOneTime, Date: calendar.MustParse("2026-02-01")}
	d := calendar.MustParse("2026-02-01")
	done := Toggle(a, d)
	if !done.Completed || !IsCompleted(done, calendar.MustParse("2026-09-09")) {
		t.Error("one-time completion is a single flag")
	}
	if len(done.CompletedDates) != 0 {
		t.Error("one-time activities never record dates")
	}
	if Toggle(done, d).Completed {
		t.Error("second toggle should reopen")
	}
}

func TestToggleOnInactiveDateIsAllowed(t *testing.T) {
	a := recurring("2026-01-06", models.RecurrenceWeekly)
	off := calendar.MustParse("2026-01-07")
	if !IsCompleted(Toggle(a, off), off) {
		t.Error("toggle on a non-occurrence date should still be recorded")
	}
}

func TestToggleNeverDuplicates(t *testing.T) {
	s := models.NewDateSet("2026-01-06", "2026-01-06", "2026-01-01")
	if len(s) != 2 {
		t.Fatalf("set = %v", s)
	}
	if got := s.With(calendar.MustParse("2026-01-06")); len(got) != 2 {
		t.Errorf("With existing = %v", got)
	}
}

func TestAgendaFor(t *testing.T) {
	ct := caciotta()
	p := batch("p1", "2026-01-01", models.ProductionCheese{CheeseTypeID: ct.ID, Liters: 50})
	protocol := Expand(p, []models.CheeseType{ct})

	weekly := recurring("2026-01-01", models.RecurrenceWeekly)
	weekly.ID = "weekly"
	weekly.CompletedDates = models.NewDateSet("2026-01-08")
	oneOff := models.Activity{ID: "one", Type: models.ActivityOneTime, Date: calendar.MustParse("2026-01-09")}

	activities := append(slices.Clone(protocol), weekly, oneOff, weekly)

	got := AgendaFor(calendar.MustParse("2026-01-08"), activities, []models.Production{p}, []models.CheeseType{ct})
	if len(got) != 2 {
		t.Fatalf("agenda = %d items, want 2: %+v", len(got), got)
	}
	if got[0].Activity.Title != "Controllo" {
		t.Errorf("first item = %q, want input order", got[0].Activity.Title)
	}
	if got[0].CheeseColor != ct.Color || got[0].ProductionNumber != p.ProductionNumber || got[0].ProductionLiters != 50 {
		t.Errorf("protocol annotation = %+v", got[0])
	}
	if got[1].Activity.ID != "weekly" || !got[1].Completed {
		t.Errorf("weekly item = %+v", got[1])
	}
}

func TestAgendaKeepsOrphans(t *testing.T) {
	orphan := models.Activity{
		ID:           "o1",
		Title:        "Salatura",
		Type:         models.ActivityProtocol,
		Date:         calendar.MustParse("2026-01-01"),
		ProductionID: "gone",
		CheeseTypeID: "also-gone",
	}
	got := AgendaFor(orphan.Date, []models.Activity{orphan}, nil, nil)
	if len(got) != 1 {
		t.Fatalf("orphan dropped: %+v", got)
	}
	if got[0].ProductionNumber != "" || got[0].CheeseColor != "" {
		t.Errorf("orphan should have empty annotations: %+v", got[0])
	}
}

func TestAgendaEmptyDay(t *testing.T) {
	got := AgendaFor(calendar.MustParse("2026-01-01"), nil, nil, nil)
	if got == nil || len(got) != 0 {
		t.Errorf("empty agenda = %#v, want empty non-nil slice", got)
	}
}

func TestAgendaRange(t *testing.T) {
	daily := recurring("2026-01-03", models.RecurrenceDaily)
	days, err := AgendaRange(calendar.MustParse("2026-01-01"), calendar.MustParse("2026-01-07"), []models.Activity{daily}, nil, nil)
	if err != nil {
		t.Fatalf("AgendaRange: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("days = %d", len(days))
	}
	for i, d := range days {
		want := 1
		if i < 2 {
			want = 0
		}
		if len(d.Items) != want {
			t.Errorf("%s: %d items, want %d", d.Date, len(d.Items), want)
		}
	}
	if _, err := AgendaRange(calendar.MustParse("2026-01-07"), calendar.MustParse("2026-01-01"), nil, nil, nil); err == nil {
		t.Error("inverted range should fail")
	}
}
