package models

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/starford/caseificio/internal/calendar"
)

func TestDateSet(t *testing.T) {
	s := NewDateSet("2026-01-20", "2026-01-13", "2026-01-20")
	if !slices.Equal(s, DateSet{"2026-01-13", "2026-01-20"}) {
		t.Fatalf("NewDateSet = %v", s)
	}

	d := calendar.MustParse("2026-01-15")
	with := s.With(d)
	if !with.Has(d) || s.Has(d) {
		t.Errorf("With mutated receiver or missed date: %v / %v", s, with)
	}
	if !slices.Equal(with.Without(d), s) {
		t.Errorf("With then Without = %v, want %v", with.Without(d), s)
	}
	if got := s.With(calendar.MustParse("2026-01-13")); !slices.Equal(got, s) {
		t.Errorf("adding a present date = %v", got)
	}
	if got := s.Without(d); !slices.Equal(got, s) {
		t.Errorf("removing an absent date = %v", got)
	}
}

func TestDateSetDecodeNormalises(t *testing.T) {
	var a Activity
	raw := `{"type":"recurring","recurrence":"weekly","completed_dates":["2026-01-20","2026-01-13","2026-01-27","2026-01-13"]}`
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatal(err)
	}
	want := DateSet{"2026-01-13", "2026-01-20", "2026-01-27"}
	if !slices.Equal(a.CompletedDates, want) {
		t.Fatalf("CompletedDates = %v, want %v", a.CompletedDates, want)
	}
	for _, d := range want {
		if !a.CompletedDates.Has(calendar.MustParse(d)) {
			t.Errorf("Has(%s) = false", d)
		}
	}
	if got := a.CompletedDates.Without(calendar.MustParse("2026-01-13")); slices.Contains(got, "2026-01-13") {
		t.Errorf("Without left a copy behind: %v", got)
	}

	var empty Activity
	if err := json.Unmarshal([]byte(`{"completed_dates":null}`), &empty); err != nil || empty.CompletedDates != nil {
		t.Errorf("null = %v, %v", empty.CompletedDates, err)
	}
	if err := json.Unmarshal([]byte(`{"completed_dates":"2026-01-13"}`), &empty); err == nil {
		t.Error("non-array accepted")
	}
}

func TestSumLiters(t *testing.T) {
	p := Production{Cheeses: []ProductionCheese{
		{CheeseTypeID: "a", Liters: 0.1},
		{CheeseTypeID: "b", Liters: 0.2},
	}}
	p.RecomputeTotal()
	if p.TotalLiters != 0.3 {
		t.Errorf("TotalLiters = %v, want 0.3", p.TotalLiters)
	}
	if l, ok := p.LitersFor("b"); !ok || l != 0.2 {
		t.Errorf("LitersFor(b) = %v, %v", l, ok)
	}
	if p.Uses("c") {
		t.Error("Uses(c) = true")
	}
}

func TestChangeEventRecord(t *testing.T) {
	ev := ActivityChanged(EventInsert, Activity{ID: "a1"})
	if a, ok := ev.Record().(*Activity); !ok || a.ID != "a1" || ev.Table != TableActivities {
		t.Errorf("record = %#v", ev.Record())
	}
	if Deleted(TableProductions, "p1").Record() != nil {
		t.Error("delete event carries a record")
	}
}
