// Package testutil provides shared test helpers for backends and fixtures.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/storage/sqlstore"
)

// SQLiteStore opens a SQLite backend in a temporary directory that is
// closed and removed when the test ends.
func SQLiteStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "caseificio.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Clock returns a fixed time source.
func Clock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 9, 0, 0, 0, time.UTC) }
}

// CheeseTypes returns two cheese types with small protocols.
func CheeseTypes() []models.CheeseType {
	return []models.CheeseType{
		{
			Name:  "Caciotta",
			Color: "#F2C14E",
			Protocol: []models.ProtocolStep{
				{Day: 0, Activity: "Salatura"},
				{Day: 7, Activity: "Controllo stagionatura"},
			},
			Sales: []models.SalesShare{{Channel: "shop", Percent: 70}, {Channel: "wholesale", Percent: 30}},
		},
		{
			Name:     "Ricotta",
			Color:    "#FFFFFF",
			Protocol: []models.ProtocolStep{{Day: 1, Activity: "Vendita"}},
		},
	}
}
