package schedule

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/caseificio/internal/models"
)

// protocolNamespace seeds the name-based ids of materialised protocol
// activities.
var protocolNamespace = uuid.MustParse("6f1c0b8e-7d1a-4c52-9a8e-3b7f2d4e5a10")

// ProtocolActivityID returns the id of the activity materialised from the
// step at index i of cheeseTypeID's protocol for productionID. Expanding the
// same inputs twice yields the same ids.
func ProtocolActivityID(productionID, cheeseTypeID string, i int, step models.ProtocolStep) string {
	name := fmt.Sprintf("%s/%s/%d/%d/%s", productionID, cheeseTypeID, i, step.Day, step.Activity)
	return uuid.NewSHA1(protocolNamespace, []byte(name)).String()
}

// Expand materialises the protocol of every cheese type used by production
// into dated protocol activities. Cheese types that are unknown or have an
// empty protocol produce nothing.
func Expand(production models.Production, cheeseTypes []models.CheeseType) []models.Activity {
	byID := indexCheeseTypes(cheeseTypes)
	var out []models.Activity
	for _, pc := range production.Cheeses {
		ct, ok := byID[pc.CheeseTypeID]
		if !ok {
			continue
		}
		out = append(out, ExpandCheese(production, ct)...)
	}
	return out
}

// ExpandCheese materialises one cheese type's protocol for production.
// Steps are emitted in display order: ascending day, protocol order on ties.
func ExpandCheese(production models.Production, ct models.CheeseType) []models.Activity {
	if len(ct.Protocol) == 0 {
		return nil
	}
	steps := ct.SortedProtocol()
	out := make([]models.Activity, 0, len(steps))
	for i, step := range steps {
		out = append(out, models.Activity{
			ID:           ProtocolActivityID(production.ID, ct.ID, i, step),
			Title:        step.Activity,
			Date:         production.Date.AddDays(step.Day),
			Type:         models.ActivityProtocol,
			ProductionID: production.ID,
			CheeseTypeID: ct.ID,
		})
	}
	return out
}

func indexCheeseTypes(cheeseTypes []models.CheeseType) map[string]models.CheeseType {
	out := make(map[string]models.CheeseType, len(cheeseTypes))
	for _, ct := range cheeseTypes {
		out[ct.ID] = ct
	}
	return out
}

func indexProductions(productions []models.Production) map[string]models.Production {
	out := make(map[string]models.Production, len(productions))
	for _, p := range productions {
		out[p.ID] = p
	}
	return out
}
