// Package validate checks records before they reach storage or the
// scheduling core, which assumes valid input.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/starford/caseificio/internal/apperr"
	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
)

var colorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var requiredDate = validation.By(func(value any) error {
	d, ok := value.(calendar.Date)
	if !ok || d.IsZero() {
		return errors.New("cannot be blank")
	}
	return nil
})

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", apperr.ErrValidation, err)
}

// CheeseType checks a cheese type and its protocol.
func CheeseType(c models.CheeseType) error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.Color, validation.Match(colorRe).Error("must be a #rgb or #rrggbb colour")),
		validation.Field(&c.Protocol, validation.Each(validation.By(protocolStep))),
		validation.Field(&c.Sales, validation.By(salesShares)),
	)
	return wrap(err)
}

func protocolStep(value any) error {
	step, ok := value.(models.ProtocolStep)
	if !ok {
		return errors.New("must be a protocol step")
	}
	return validation.ValidateStruct(&step,
		validation.Field(&step.Day, validation.Min(0)),
		validation.Field(&step.Activity, validation.Required, validation.Length(1, 200)),
	)
}

func salesShares(value any) error {
	shares, _ := value.([]models.SalesShare)
	if len(shares) == 0 {
		return nil
	}
	total := decimal.Zero
	seen := make(map[string]struct{}, len(shares))
	for _, s := range shares {
		if strings.TrimSpace(s.Channel) == "" {
			return errors.New("channel cannot be blank")
		}
		key := strings.ToLower(s.Channel)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("channel %q listed twice", s.Channel)
		}
		seen[key] = struct{}{}
		if s.Percent < 0 || s.Percent > 100 {
			return fmt.Errorf("percent for %q must be between 0 and 100", s.Channel)
		}
		total = total.Add(decimal.NewFromFloat(s.Percent))
	}
	if !total.Equal(decimal.NewFromInt(100)) {
		return fmt.Errorf("percentages must sum to 100, got %s", total.String())
	}
	return nil
}

// Production checks p against the other stored productions and the known
// cheese types. existing may contain p itself (on update); it is skipped.
func Production(p models.Production, existing []models.Production, cheeseTypes []models.CheeseType) error {
	known := make(map[string]struct{}, len(cheeseTypes))
	for _, ct := range cheeseTypes {
		known[ct.ID] = struct{}{}
	}
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Date, requiredDate),
		validation.Field(&p.ProductionNumber,
			validation.Required,
			validation.Length(1, 50),
			validation.By(uniqueNumber(p.ID, existing)),
		),
		validation.Field(&p.Cheeses,
			validation.Required,
			validation.By(distinctCheeses),
			validation.Each(validation.By(productionCheese(known))),
		),
		validation.Field(&p.Notes, validation.Length(0, 2000)),
	)
	return wrap(err)
}

func uniqueNumber(selfID string, existing []models.Production) validation.RuleFunc {
	return func(value any) error {
		number, _ := value.(string)
		for _, other := range existing {
			if other.ID == selfID {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(other.ProductionNumber), strings.TrimSpace(number)) {
				return fmt.Errorf("production number %q is already used", number)
			}
		}
		return nil
	}
}

func distinctCheeses(value any) error {
	cheeses, _ := value.([]models.ProductionCheese)
	seen := make(map[string]struct{}, len(cheeses))
	for _, c := range cheeses {
		if _, dup := seen[c.CheeseTypeID]; dup {
			return fmt.Errorf("cheese type %q appears more than once", c.CheeseTypeID)
		}
		seen[c.CheeseTypeID] = struct{}{}
	}
	return nil
}

func productionCheese(known map[string]struct{}) validation.RuleFunc {
	return func(value any) error {
		c, ok := value.(models.ProductionCheese)
		if !ok {
			return errors.New("must be a cheese entry")
		}
		return validation.ValidateStruct(&c,
			validation.Field(&c.CheeseTypeID, validation.Required, validation.By(func(any) error {
				if _, ok := known[c.CheeseTypeID]; !ok {
					return fmt.Errorf("unknown cheese type %q", c.CheeseTypeID)
				}
				return nil
			})),
			validation.Field(&c.Liters, validation.Required, validation.Min(0.0).Exclusive()),
		)
	}
}

var recurrenceNames = func() []any {
	out := make([]any, len(models.Recurrences))
	for i, r := range models.Recurrences {
		out[i] = r
	}
	return out
}()

// Activity checks any activity, including materialised protocol ones.
func Activity(a models.Activity) error {
	err := validation.ValidateStruct(&a,
		validation.Field(&a.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&a.Description, validation.Length(0, 2000)),
		validation.Field(&a.Date, requiredDate),
		validation.Field(&a.Type, validation.Required, validation.In(
			models.ActivityProtocol, models.ActivityRecurring, models.ActivityOneTime,
		)),
		validation.Field(&a.Recurrence, validation.In(recurrenceNames...), validation.By(recurrenceMatchesType(a.Type))),
		validation.Field(&a.ProductionID, validation.When(a.Type == models.ActivityProtocol, validation.Required)),
		validation.Field(&a.CompletedDates, validation.Each(validation.By(isoDate))),
	)
	return wrap(err)
}

// UserActivity checks an activity created or edited by a user. Protocol
// activities are only ever produced by expansion.
func UserActivity(a models.Activity) error {
	if a.Type == models.ActivityProtocol {
		return fmt.Errorf("%w: type: protocol activities are generated from productions", apperr.ErrValidation)
	}
	return Activity(a)
}

func recurrenceMatchesType(t models.ActivityType) validation.RuleFunc {
	return func(value any) error {
		r, _ := value.(models.Recurrence)
		hasRule := r != "" && r != models.RecurrenceNone
		switch {
		case t == models.ActivityRecurring && !hasRule:
			return errors.New("recurring activities need a rule other than none")
		case t != models.ActivityRecurring && hasRule:
			return fmt.Errorf("only recurring activities may repeat, not %s", t)
		}
		return nil
	}
}

func isoDate(value any) error {
	s, _ := value.(string)
	if _, err := calendar.Parse(s); err != nil {
		return errors.New("must be a yyyy-mm-dd date")
	}
	return nil
}
