package schedule

import (
	"fmt"

	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
)

// AgendaItem is one activity due on a given date, annotated for display.
// Production fields are zero when the activity has no (surviving) parent
// production.
type AgendaItem struct {
	Activity         models.Activity `json:"activity"`
	Date             calendar.Date   `json:"date"`
	Completed        bool            `json:"completed"`
	CheeseName       string          `json:"cheese_name,omitempty"`
	CheeseColor      string          `json:"cheese_color,omitempty"`
	ProductionNumber string          `json:"production_number,omitempty"`
	ProductionLiters float64         `json:"production_liters,omitempty"`
}

// DayAgenda is the agenda of one calendar day.
type DayAgenda struct {
	Date  calendar.Date `json:"date"`
	Items []AgendaItem  `json:"items"`
}

// AgendaFor returns the activities due on q in their input order, each id
// at most once. Orphaned protocol activities are kept with empty production
// fields.
func AgendaFor(q calendar.Date, activities []models.Activity, productions []models.Production, cheeseTypes []models.CheeseType) []AgendaItem {
	return newAnnotator(productions, cheeseTypes).agenda(q, activities)
}

// AgendaRange returns one DayAgenda per day in [from, to].
func AgendaRange(from, to calendar.Date, activities []models.Activity, productions []models.Production, cheeseTypes []models.CheeseType) ([]DayAgenda, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("schedule: range end %s before start %s", to, from)
	}
	if span := to.DaysSince(from); span > maxOccurrenceSpan {
		return nil, fmt.Errorf("schedule: range of %d days exceeds %d", span, maxOccurrenceSpan)
	}
	an := newAnnotator(productions, cheeseTypes)
	var out []DayAgenda
	for d := from; !d.After(to); d = d.AddDays(1) {
		out = append(out, DayAgenda{Date: d, Items: an.agenda(d, activities)})
	}
	return out, nil
}

type annotator struct {
	productions map[string]models.Production
	cheeseTypes map[string]models.CheeseType
}

func newAnnotator(productions []models.Production, cheeseTypes []models.CheeseType) annotator {
	return annotator{
		productions: indexProductions(productions),
		cheeseTypes: indexCheeseTypes(cheeseTypes),
	}
}

func (an annotator) agenda(q calendar.Date, activities []models.Activity) []AgendaItem {
	out := []AgendaItem{}
	seen := make(map[string]struct{})
	for _, a := range activities {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		if !IsActiveOn(a, q) {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, an.item(q, a))
	}
	return out
}

func (an annotator) item(q calendar.Date, a models.Activity) AgendaItem {
	item := AgendaItem{
		Activity:  a,
		Date:      q,
		Completed: IsCompleted(a, q),
	}
	if ct, ok := an.cheeseTypes[a.CheeseTypeID]; ok {
		item.CheeseName = ct.Name
		item.CheeseColor = ct.Color
	}
	if a.Type != models.ActivityProtocol {
		return item
	}
	if p, ok := an.productions[a.ProductionID]; ok {
		item.ProductionNumber = p.ProductionNumber
		item.ProductionLiters, _ = p.LitersFor(a.CheeseTypeID)
	}
	return item
}
