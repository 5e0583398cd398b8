package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/starford/caseificio/internal/apperr"
	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/schedule"
	"github.com/starford/caseificio/internal/validate"
)

// ListProductions returns productions, newest date first. year > 0 keeps
// only that year.
func (s *Service) ListProductions(_ context.Context, year int) []models.Production {
	all := s.state.Productions()
	out := all[:0]
	for _, p := range all {
		if year > 0 && p.Date.Year != year {
			continue
		}
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b models.Production) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// GetProduction returns one production.
func (s *Service) GetProduction(_ context.Context, id string) (models.Production, error) {
	p, ok := s.state.Production(id)
	if !ok {
		return models.Production{}, fmt.Errorf("production %s: %w", id, apperr.ErrNotFound)
	}
	return p, nil
}

// CreateProduction stores a production and materialises the protocols of
// its cheese types.
func (s *Service) CreateProduction(ctx context.Context, p models.Production) (_ models.Production, rep Report, err error) {
	defer s.observe(ctx, "create_production", time.Now(), &err)
	rep = newReport()
	p = p.Clone()
	p.ProductionNumber = strings.TrimSpace(p.ProductionNumber)
	p.RecomputeTotal()
	if p.ID == "" {
		p.ID = s.newID()
	} else if _, ok := s.state.Production(p.ID); ok {
		return models.Production{}, rep, fmt.Errorf("production %s: %w", p.ID, apperr.ErrAlreadyExists)
	}
	cheeseTypes := s.state.CheeseTypes()
	if err := validate.Production(p, s.state.Productions(), cheeseTypes); err != nil {
		return models.Production{}, rep, err
	}
	p.CreatedAt = s.stamp()
	if err := s.backend.SaveProduction(ctx, p); err != nil {
		return models.Production{}, rep, fmt.Errorf("service: create production: %w", err)
	}
	s.apply(models.ProductionChanged(models.EventInsert, p))

	rep = s.applyPlan(ctx, schedule.Plan{ToCreate: schedule.Expand(p, cheeseTypes)})
	return p, rep, s.settle("expand protocol", rep)
}

// UpdateProduction replaces a production. Its protocol activities are
// re-materialised only when the date or the set of cheese types changed.
func (s *Service) UpdateProduction(ctx context.Context, p models.Production, ifMatch string) (_ models.Production, rep Report, err error) {
	defer s.observe(ctx, "update_production", time.Now(), &err)
	rep = newReport()
	existing, ok := s.state.Production(p.ID)
	if !ok {
		return models.Production{}, rep, fmt.Errorf("production %s: %w", p.ID, apperr.ErrNotFound)
	}
	if ifMatch != "" && ifMatch != ETag(existing) {
		return models.Production{}, rep, fmt.Errorf("production %s changed since read: %w", p.ID, apperr.ErrConflict)
	}
	p = p.Clone()
	p.ProductionNumber = strings.TrimSpace(p.ProductionNumber)
	p.RecomputeTotal()
	p.CreatedAt = existing.CreatedAt
	cheeseTypes := s.state.CheeseTypes()
	if err := validate.Production(p, s.state.Productions(), cheeseTypes); err != nil {
		return models.Production{}, rep, err
	}
	if err := s.backend.SaveProduction(ctx, p); err != nil {
		return models.Production{}, rep, fmt.Errorf("service: update production: %w", err)
	}
	s.apply(models.ProductionChanged(models.EventUpdate, p))

	if !schedule.ProductionScheduleChanged(existing, p) {
		return p, rep, nil
	}
	rep = s.applyPlan(ctx, schedule.RegenerateForProduction(p, cheeseTypes, s.state.Activities()))
	return p, rep, s.settle("regenerate production", rep)
}

// DeleteProduction removes a production and its protocol activities.
func (s *Service) DeleteProduction(ctx context.Context, id string) (rep Report, err error) {
	defer s.observe(ctx, "delete_production", time.Now(), &err)
	rep = newReport()
	if _, ok := s.state.Production(id); !ok {
		return rep, fmt.Errorf("production %s: %w", id, apperr.ErrNotFound)
	}
	rep = s.applyPlan(ctx, schedule.Plan{ToDelete: schedule.ProductionTeardown(id, s.state.Activities())})
	if err := s.settle("delete production", rep); err != nil {
		return rep, err
	}
	if err := s.backend.DeleteProduction(ctx, id); err != nil {
		return rep, fmt.Errorf("service: delete production: %w", err)
	}
	s.apply(models.Deleted(models.TableProductions, id))
	return rep, nil
}
