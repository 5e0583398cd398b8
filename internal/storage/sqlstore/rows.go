package sqlstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
)

type cheeseTypeRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	Protocol  string    `db:"protocol"`
	Sales     string    `db:"sales"`
	CreatedAt time.Time `db:"created_at"`
}

type productionRow struct {
	ID               string        `db:"id"`
	Date             calendar.Date `db:"date"`
	ProductionNumber string        `db:"production_number"`
	Cheeses          string        `db:"cheeses"`
	TotalLiters      float64       `db:"total_liters"`
	Notes            string        `db:"notes"`
	CreatedAt        time.Time     `db:"created_at"`
}

type activityRow struct {
	ID             string        `db:"id"`
	Title          string        `db:"title"`
	Description    string        `db:"description"`
	Date           calendar.Date `db:"date"`
	Type           string        `db:"type"`
	Recurrence     string        `db:"recurrence"`
	ProductionID   string        `db:"production_id"`
	CheeseTypeID   string        `db:"cheese_type_id"`
	Completed      bool          `db:"completed"`
	CompletedDates string        `db:"completed_dates"`
	CreatedAt      time.Time     `db:"created_at"`
}

// jsonText encodes v, writing nil slices as [].
func jsonText[T any](v []T) string {
	if v == nil {
		return "[]"
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func fromJSON[T any](col, s string) ([]T, error) {
	if s == "" {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("sqlstore: decode %s: %w", col, err)
	}
	return out, nil
}

func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func toCheeseTypeRow(c models.CheeseType) cheeseTypeRow {
	return cheeseTypeRow{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		Protocol:  jsonText(c.Protocol),
		Sales:     jsonText(c.Sales),
		CreatedAt: createdAt(c.CreatedAt),
	}
}

func (r cheeseTypeRow) model() (models.CheeseType, error) {
	protocol, err := fromJSON[models.ProtocolStep]("protocol", r.Protocol)
	if err != nil {
		return models.CheeseType{}, err
	}
	sales, err := fromJSON[models.SalesShare]("sales", r.Sales)
	if err != nil {
		return models.CheeseType{}, err
	}
	return models.CheeseType{
		ID:        r.ID,
		Name:      r.Name,
		Color:     r.Color,
		Protocol:  protocol,
		Sales:     sales,
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}

func toProductionRow(p models.Production) productionRow {
	return productionRow{
		ID:               p.ID,
		Date:             p.Date,
		ProductionNumber: p.ProductionNumber,
		Cheeses:          jsonText(p.Cheeses),
		TotalLiters:      p.TotalLiters,
		Notes:            p.Notes,
		CreatedAt:        createdAt(p.CreatedAt),
	}
}

func (r productionRow) model() (models.Production, error) {
	cheeses, err := fromJSON[models.ProductionCheese]("cheeses", r.Cheeses)
	if err != nil {
		return models.Production{}, err
	}
	return models.Production{
		ID:               r.ID,
		Date:             r.Date,
		ProductionNumber: r.ProductionNumber,
		Cheeses:          cheeses,
		TotalLiters:      r.TotalLiters,
		Notes:            r.Notes,
		CreatedAt:        r.CreatedAt.UTC(),
	}, nil
}

func toActivityRow(a models.Activity) activityRow {
	return activityRow{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		Date:           a.Date,
		Type:           string(a.Type),
		Recurrence:     string(a.Recurrence),
		ProductionID:   a.ProductionID,
		CheeseTypeID:   a.CheeseTypeID,
		Completed:      a.Completed,
		CompletedDates: jsonText(a.CompletedDates),
		CreatedAt:      createdAt(a.CreatedAt),
	}
}

func (r activityRow) model() (models.Activity, error) {
	dates, err := fromJSON[string]("completed_dates", r.CompletedDates)
	if err != nil {
		return models.Activity{}, err
	}
	var set models.DateSet
	if len(dates) > 0 {
		set = models.NewDateSet(dates...)
	}
	return models.Activity{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		Date:           r.Date,
		Type:           models.ActivityType(r.Type),
		Recurrence:     models.Recurrence(r.Recurrence),
		ProductionID:   r.ProductionID,
		CheeseTypeID:   r.CheeseTypeID,
		Completed:      r.Completed,
		CompletedDates: set,
		CreatedAt:      r.CreatedAt.UTC(),
	}, nil
}
