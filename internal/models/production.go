package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/starford/caseificio/internal/calendar"
)

// ProductionCheese is the milk volume processed into one cheese type.
type ProductionCheese struct {
	CheeseTypeID string  `json:"cheese_type_id" yaml:"cheese_type_id"`
	Liters       float64 `json:"liters" yaml:"liters"`
}

// Production is one logged production batch.
type Production struct {
	ID               string             `json:"id" db:"id"`
	Date             calendar.Date      `json:"date" db:"date"`
	ProductionNumber string             `json:"production_number" db:"production_number"`
	Cheeses          []ProductionCheese `json:"cheeses" db:"-"`
	TotalLiters      float64            `json:"total_liters" db:"total_liters"`
	Notes            string             `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time          `json:"created_at" db:"created_at"`
}

// SumLiters adds up the liters of every cheese entry without float drift.
func SumLiters(cheeses []ProductionCheese) float64 {
	total := decimal.Zero
	for _, c := range cheeses {
		total = total.Add(decimal.NewFromFloat(c.Liters))
	}
	return total.InexactFloat64()
}

// RecomputeTotal refreshes the cached TotalLiters from Cheeses.
func (p *Production) RecomputeTotal() {
	p.TotalLiters = SumLiters(p.Cheeses)
}

// LitersFor returns the liters processed into the given cheese type, and
// whether the production uses it at all.
func (p Production) LitersFor(cheeseTypeID string) (float64, bool) {
	for _, c := range p.Cheeses {
		if c.CheeseTypeID == cheeseTypeID {
			return c.Liters, true
		}
	}
	return 0, false
}

// Uses reports whether the production includes the given cheese type.
func (p Production) Uses(cheeseTypeID string) bool {
	_, ok := p.LitersFor(cheeseTypeID)
	return ok
}

// Clone returns a deep copy of p.
func (p Production) Clone() Production {
	p.Cheeses = slices.Clone(p.Cheeses)
	return p
}
