package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "caseificio-test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoundTripAllTables(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	created := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	ct := models.CheeseType{
		ID:        "c1",
		Name:      "Caciotta",
		Color:     "#f2c14e",
		Protocol:  []models.ProtocolStep{{Day: 0, Activity: "Salatura"}, {Day: 7, Activity: "Controllo"}},
		Sales:     []models.SalesShare{{Channel: "shop", Percent: 100}},
		CreatedAt: created,
	}
	p := models.Production{
		ID:               "p1",
		Date:             calendar.MustParse("2026-01-01"),
		ProductionNumber: "2026-001",
		Cheeses:          []models.ProductionCheese{{CheeseTypeID: "c1", Liters: 50.5}},
		TotalLiters:      50.5,
		CreatedAt:        created,
	}
	a := models.Activity{
		ID:             "a1",
		Title:          "Pulizia",
		Date:           calendar.MustParse("2026-01-06"),
		Type:           models.ActivityRecurring,
		Recurrence:     models.RecurrenceWeekly,
		CompletedDates: models.NewDateSet("2026-01-13"),
		CreatedAt:      created,
	}

	if err := s.SaveCheeseType(ctx, ct); err != nil {
		t.Fatalf("SaveCheeseType: %v", err)
	}
	if err := s.SaveProduction(ctx, p); err != nil {
		t.Fatalf("SaveProduction: %v", err)
	}
	if err := s.SaveActivity(ctx, a); err != nil {
		t.Fatalf("SaveActivity: %v", err)
	}

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.CheeseTypes) != 1 || len(snap.Productions) != 1 || len(snap.Activities) != 1 {
		t.Fatalf("snapshot sizes = %d/%d/%d", len(snap.CheeseTypes), len(snap.Productions), len(snap.Activities))
	}
	gotCT := snap.CheeseTypes[0]
	if gotCT.Name != "Caciotta" || len(gotCT.Protocol) != 2 || gotCT.Protocol[1].Day != 7 || gotCT.Sales[0].Channel != "shop" {
		t.Errorf("cheese type = %+v", gotCT)
	}
	gotP := snap.Productions[0]
	if gotP.Date != p.Date || gotP.Cheeses[0].Liters != 50.5 || gotP.TotalLiters != 50.5 {
		t.Errorf("production = %+v", gotP)
	}
	gotA := snap.Activities[0]
	if gotA.Recurrence != models.RecurrenceWeekly || !slices.Equal(gotA.CompletedDates, a.CompletedDates) {
		t.Errorf("activity = %+v", gotA)
	}
	if !gotA.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", gotA.CreatedAt, created)
	}
}

func TestSaveIsUpsert(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	a := models.Activity{ID: "a1", Title: "v1", Date: calendar.MustParse("2026-02-01"), Type: models.ActivityOneTime}
	_ = s.SaveActivity(ctx, a)
	a.Title = "v2"
	a.Completed = true
	if err := s.SaveActivity(ctx, a); err != nil {
		t.Fatalf("second save: %v", err)
	}
	snap, _ := s.Load(ctx)
	if len(snap.Activities) != 1 || snap.Activities[0].Title != "v2" || !snap.Activities[0].Completed {
		t.Errorf("activities = %+v", snap.Activities)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	_ = s.SaveCheeseType(ctx, models.CheeseType{ID: "c1", Name: "Ricotta"})
	if err := s.DeleteCheeseType(ctx, "c1"); err != nil {
		t.Fatalf("DeleteCheeseType: %v", err)
	}
	if err := s.DeleteCheeseType(ctx, "c1"); err != nil {
		t.Errorf("deleting a missing row: %v", err)
	}
	if err := s.DeleteProduction(ctx, "never"); err != nil {
		t.Errorf("DeleteProduction: %v", err)
	}
	snap, _ := s.Load(ctx)
	if len(snap.CheeseTypes) != 0 {
		t.Errorf("cheese types = %+v", snap.CheeseTypes)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.SaveCheeseType(ctx, models.CheeseType{ID: "c1", Name: "Pecorino"})
	s.Close()

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	snap, _ := s.Load(ctx)
	if len(snap.CheeseTypes) != 1 || snap.CheeseTypes[0].Name != "Pecorino" {
		t.Errorf("after reopen = %+v", snap.CheeseTypes)
	}
}

func TestOpenPostgres(t *testing.T) {
	dsn := os.Getenv("CASEIFICIO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CASEIFICIO_TEST_POSTGRES_DSN not set")
	}
	s, err := OpenPostgres(context.Background(), dsn)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer s.Close()
	if s.Name() != "postgres" {
		t.Errorf("name = %q", s.Name())
	}
}

func TestOpenRequiresLocation(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), " "); err == nil {
		t.Error("empty sqlite path should fail")
	}
	if _, err := OpenPostgres(context.Background(), ""); err == nil {
		t.Error("empty dsn should fail")
	}
}
