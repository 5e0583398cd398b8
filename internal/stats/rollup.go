// Package stats aggregates production volumes for dashboards. Buckets use
// the same calendar dates as the scheduler.
package stats

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/starford/caseificio/internal/models"
)

// CheeseVolume is the liters processed into one cheese type.
type CheeseVolume struct {
	CheeseTypeID string  `json:"cheese_type_id"`
	Name         string  `json:"name,omitempty"`
	Color        string  `json:"color,omitempty"`
	Liters       float64 `json:"liters"`
}

// MonthStats is the rollup of one calendar month. Month is 1-based.
type MonthStats struct {
	Month           int            `json:"month"`
	TotalLiters     float64        `json:"total_liters"`
	ProductionCount int            `json:"production_count"`
	CheeseBreakdown []CheeseVolume `json:"cheese_breakdown"`
}

// YearStats is the rollup of one calendar year.
type YearStats struct {
	Year            int            `json:"year"`
	TotalLiters     float64        `json:"total_liters"`
	ProductionCount int            `json:"production_count"`
	CheeseBreakdown []CheeseVolume `json:"cheese_breakdown"`
}

// bucket accumulates exact sums before they are turned into floats.
type bucket struct {
	total   decimal.Decimal
	count   int
	byType  map[string]decimal.Decimal
	ordered []string
}

func newBucket() *bucket {
	return &bucket{total: decimal.Zero, byType: make(map[string]decimal.Decimal)}
}

func (b *bucket) add(p models.Production) {
	b.count++
	for _, c := range p.Cheeses {
		l := decimal.NewFromFloat(c.Liters)
		b.total = b.total.Add(l)
		if _, ok := b.byType[c.CheeseTypeID]; !ok {
			b.byType[c.CheeseTypeID] = decimal.Zero
			b.ordered = append(b.ordered, c.CheeseTypeID)
		}
		b.byType[c.CheeseTypeID] = b.byType[c.CheeseTypeID].Add(l)
	}
}

// breakdown lists cheese volumes by descending liters, then by name.
func (b *bucket) breakdown(names map[string]models.CheeseType) []CheeseVolume {
	out := make([]CheeseVolume, 0, len(b.ordered))
	for _, id := range b.ordered {
		v := CheeseVolume{CheeseTypeID: id, Liters: b.byType[id].InexactFloat64()}
		if ct, ok := names[id]; ok {
			v.Name = ct.Name
			v.Color = ct.Color
		}
		out = append(out, v)
	}
	slices.SortStableFunc(out, func(a, b CheeseVolume) int {
		if a.Liters != b.Liters {
			if a.Liters > b.Liters {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// MonthlyStats returns twelve entries, January to December of year, each
// summing the productions dated in that month. Empty months are included.
func MonthlyStats(year int, productions []models.Production, cheeseTypes []models.CheeseType) []MonthStats {
	names := indexCheeseTypes(cheeseTypes)
	buckets := make([]*bucket, 12)
	for i := range buckets {
		buckets[i] = newBucket()
	}
	for _, p := range productions {
		if p.Date.Year != year {
			continue
		}
		buckets[p.Date.Month-time.January].add(p)
	}
	out := make([]MonthStats, 12)
	for i, b := range buckets {
		out[i] = MonthStats{
			Month:           i + 1,
			TotalLiters:     b.total.InexactFloat64(),
			ProductionCount: b.count,
			CheeseBreakdown: b.breakdown(names),
		}
	}
	return out
}

// YearSummary rolls up every production dated in year.
func YearSummary(year int, productions []models.Production, cheeseTypes []models.CheeseType) YearStats {
	b := newBucket()
	for _, p := range productions {
		if p.Date.Year == year {
			b.add(p)
		}
	}
	return YearStats{
		Year:            year,
		TotalLiters:     b.total.InexactFloat64(),
		ProductionCount: b.count,
		CheeseBreakdown: b.breakdown(indexCheeseTypes(cheeseTypes)),
	}
}

// Years lists the distinct years that have productions, newest first.
func Years(productions []models.Production) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, p := range productions {
		if p.Date.IsZero() {
			continue
		}
		if _, ok := seen[p.Date.Year]; ok {
			continue
		}
		seen[p.Date.Year] = struct{}{}
		out = append(out, p.Date.Year)
	}
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

func indexCheeseTypes(cheeseTypes []models.CheeseType) map[string]models.CheeseType {
	out := make(map[string]models.CheeseType, len(cheeseTypes))
	for _, ct := range cheeseTypes {
		out[ct.ID] = ct
	}
	return out
}
