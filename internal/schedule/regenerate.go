package schedule

import (
	"slices"

	"github.com/starford/caseificio/internal/models"
)

// Plan is a set of storage changes computed by the scheduler. Deletes are
// applied before creates.
type Plan struct {
	ToDelete []string          `json:"to_delete"`
	ToCreate []models.Activity `json:"to_create"`
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.ToDelete) == 0 && len(p.ToCreate) == 0
}

// RegenerateProtocolActivities replaces the protocol activities of every
// production using cheeseType with a fresh expansion of its (new) protocol.
// Each production keeps its own date as the anchor.
func RegenerateProtocolActivities(cheeseType models.CheeseType, productions []models.Production, activities []models.Activity) Plan {
	var plan Plan
	using := make(map[string]struct{})
	for _, p := range productions {
		if !p.Uses(cheeseType.ID) {
			continue
		}
		using[p.ID] = struct{}{}
		plan.ToCreate = append(plan.ToCreate, ExpandCheese(p, cheeseType)...)
	}
	for _, a := range activities {
		if a.Type != models.ActivityProtocol || a.CheeseTypeID != cheeseType.ID {
			continue
		}
		if _, ok := using[a.ProductionID]; ok {
			plan.ToDelete = append(plan.ToDelete, a.ID)
		}
	}
	plan.ToCreate = carryOver(plan.ToCreate, activities)
	return plan
}

// RegenerateForProduction replaces every protocol activity of production
// after the production itself was edited (date or cheeses changed).
func RegenerateForProduction(production models.Production, cheeseTypes []models.CheeseType, activities []models.Activity) Plan {
	return Plan{
		ToDelete: ProductionTeardown(production.ID, activities),
		ToCreate: carryOver(Expand(production, cheeseTypes), activities),
	}
}

// ProtocolChanged reports whether saving next over prev changes what its
// protocol expands to. Name, colour and sales do not.
func ProtocolChanged(prev, next models.CheeseType) bool {
	return !slices.Equal(prev.Protocol, next.Protocol)
}

// ProductionScheduleChanged reports whether an edit moves or changes the
// protocol activities of a production: a new date or a different set of
// cheese types. Liters and notes do not.
func ProductionScheduleChanged(prev, next models.Production) bool {
	if prev.Date != next.Date {
		return true
	}
	ids := func(p models.Production) []string {
		out := make([]string, 0, len(p.Cheeses))
		for _, c := range p.Cheeses {
			out = append(out, c.CheeseTypeID)
		}
		slices.Sort(out)
		return out
	}
	return !slices.Equal(ids(prev), ids(next))
}

// carryOver keeps the user-owned state of recreated activities. Ids are
// derived from the step, so an unchanged step gets its old id back.
func carryOver(created, activities []models.Activity) []models.Activity {
	if len(created) == 0 {
		return created
	}
	old := make(map[string]models.Activity, len(activities))
	for _, a := range activities {
		if a.Type == models.ActivityProtocol {
			old[a.ID] = a
		}
	}
	for i, a := range created {
		prev, ok := old[a.ID]
		if !ok {
			continue
		}
		created[i].Completed = prev.Completed
		created[i].Description = prev.Description
		created[i].CreatedAt = prev.CreatedAt
	}
	return created
}

// ProductionTeardown returns the ids of the protocol activities that belong
// to productionID.
func ProductionTeardown(productionID string, activities []models.Activity) []string {
	var out []string
	for _, a := range activities {
		if a.Type == models.ActivityProtocol && a.ProductionID == productionID {
			out = append(out, a.ID)
		}
	}
	return out
}

// CheeseTypeTeardown returns the ids of every activity, of any type, that
// references cheeseTypeID.
func CheeseTypeTeardown(cheeseTypeID string, activities []models.Activity) []string {
	var out []string
	for _, a := range activities {
		if a.CheeseTypeID == cheeseTypeID {
			out = append(out, a.ID)
		}
	}
	return out
}
