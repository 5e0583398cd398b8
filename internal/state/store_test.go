package state

import (
	"testing"

	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
)

func activity(id, title string) models.Activity {
	return models.Activity{ID: id, Title: title, Type: models.ActivityOneTime, Date: calendar.MustParse("2026-03-01")}
}

func TestApplyIsIdempotent(t *testing.T) {
	s := New()
	a := activity("a1", "Pulizia")

	if !s.Apply(models.ActivityChanged(models.EventInsert, a)) {
		t.Fatal("first insert should change the store")
	}
	if s.Apply(models.ActivityChanged(models.EventInsert, a)) {
		t.Error("echoed insert should be ignored")
	}
	if got := s.Activities(); len(got) != 1 {
		t.Fatalf("activities = %d, want 1", len(got))
	}

	a.Title = "Pulizia caldaia"
	s.Apply(models.ActivityChanged(models.EventUpdate, a))
	s.Apply(models.ActivityChanged(models.EventUpdate, a))
	if got, _ := s.Activity("a1"); got.Title != "Pulizia caldaia" {
		t.Errorf("title = %q", got.Title)
	}

	if !s.Apply(models.Deleted(models.TableActivities, "a1")) {
		t.Error("delete of a present id should change the store")
	}
	if s.Apply(models.Deleted(models.TableActivities, "a1")) {
		t.Error("delete of an absent id should be ignored")
	}
	if got := s.Activities(); len(got) != 0 {
		t.Errorf("activities = %v, want none", got)
	}
}

func TestUpdateOfUnknownIdInserts(t *testing.T) {
	s := New()
	s.Apply(models.ActivityChanged(models.EventUpdate, activity("late", "x")))
	if _, ok := s.Activity("late"); !ok {
		t.Error("update should upsert")
	}
}

func TestDeleteKeepsOrderAndIndex(t *testing.T) {
	s := New()
	s.Load(Snapshot{Activities: []models.Activity{activity("a", "1"), activity("b", "2"), activity("c", "3")}})
	s.Apply(models.Deleted(models.TableActivities, "a"))

	got := s.Activities()
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("activities = %+v", got)
	}
	c, ok := s.Activity("c")
	if !ok || c.Title != "3" {
		t.Errorf("lookup after delete = %+v, %v", c, ok)
	}
}

func TestReadersGetCopies(t *testing.T) {
	s := New()
	a := activity("r", "rec")
	a.CompletedDates = models.NewDateSet("2026-03-01")
	s.Apply(models.ActivityChanged(models.EventInsert, a))

	got := s.Activities()
	got[0].CompletedDates[0] = "1999-01-01"
	got[0].Title = "changed"

	again, _ := s.Activity("r")
	if again.Title != "rec" || again.CompletedDates[0] != "2026-03-01" {
		t.Errorf("store mutated through a snapshot: %+v", again)
	}
}

func TestApplyRoutesByTable(t *testing.T) {
	s := New()
	s.Apply(models.CheeseTypeChanged(models.EventInsert, models.CheeseType{ID: "c", Name: "Caciotta"}))
	s.Apply(models.ProductionChanged(models.EventInsert, models.Production{ID: "p", ProductionNumber: "1"}))
	if s.Apply(models.ChangeEvent{Type: models.EventInsert, Table: "unknown", ID: "x"}) {
		t.Error("unknown table should be ignored")
	}
	snap := s.Snapshot()
	if len(snap.CheeseTypes) != 1 || len(snap.Productions) != 1 || len(snap.Activities) != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}
