package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/caseificio/internal/apperr"
	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/schedule"
	"github.com/starford/caseificio/internal/validate"
)

// ListCheeseTypes returns every cheese type in creation order.
func (s *Service) ListCheeseTypes(context.Context) []models.CheeseType {
	return s.state.CheeseTypes()
}

// GetCheeseType returns one cheese type.
func (s *Service) GetCheeseType(_ context.Context, id string) (models.CheeseType, error) {
	c, ok := s.state.CheeseType(id)
	if !ok {
		return models.CheeseType{}, fmt.Errorf("cheese type %s: %w", id, apperr.ErrNotFound)
	}
	return c, nil
}

func (s *Service) cheeseTypeByName(name string) (models.CheeseType, bool) {
	for _, c := range s.state.CheeseTypes() {
		if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
			return c, true
		}
	}
	return models.CheeseType{}, false
}

// CreateCheeseType stores a new cheese type. Names are unique ignoring case.
func (s *Service) CreateCheeseType(ctx context.Context, c models.CheeseType) (_ models.CheeseType, err error) {
	defer s.observe(ctx, "create_cheese_type", time.Now(), &err)
	c = c.Clone()
	c.Name = strings.TrimSpace(c.Name)
	if err := validate.CheeseType(c); err != nil {
		return models.CheeseType{}, err
	}
	if _, dup := s.cheeseTypeByName(c.Name); dup {
		return models.CheeseType{}, fmt.Errorf("cheese type %q: %w", c.Name, apperr.ErrAlreadyExists)
	}
	if c.ID == "" {
		c.ID = s.newID()
	} else if _, ok := s.state.CheeseType(c.ID); ok {
		return models.CheeseType{}, fmt.Errorf("cheese type %s: %w", c.ID, apperr.ErrAlreadyExists)
	}
	c.CreatedAt = s.stamp()
	if err := s.backend.SaveCheeseType(ctx, c); err != nil {
		return models.CheeseType{}, fmt.Errorf("service: create cheese type: %w", err)
	}
	s.apply(models.CheeseTypeChanged(models.EventInsert, c))
	return c, nil
}

// UpdateCheeseType replaces a cheese type. When the protocol changed, the
// protocol activities of every production that uses it are regenerated and
// steps that survive keep their completion and description. ifMatch, when
// set, must be the ETag of the stored version.
func (s *Service) UpdateCheeseType(ctx context.Context, c models.CheeseType, ifMatch string) (_ models.CheeseType, rep Report, err error) {
	defer s.observe(ctx, "update_cheese_type", time.Now(), &err)
	rep = newReport()
	existing, ok := s.state.CheeseType(c.ID)
	if !ok {
		return models.CheeseType{}, rep, fmt.Errorf("cheese type %s: %w", c.ID, apperr.ErrNotFound)
	}
	if ifMatch != "" && ifMatch != ETag(existing) {
		return models.CheeseType{}, rep, fmt.Errorf("cheese type %s changed since read: %w", c.ID, apperr.ErrConflict)
	}
	c = c.Clone()
	c.Name = strings.TrimSpace(c.Name)
	c.CreatedAt = existing.CreatedAt
	if err := validate.CheeseType(c); err != nil {
		return models.CheeseType{}, rep, err
	}
	if other, dup := s.cheeseTypeByName(c.Name); dup && other.ID != c.ID {
		return models.CheeseType{}, rep, fmt.Errorf("cheese type %q: %w", c.Name, apperr.ErrAlreadyExists)
	}
	if err := s.backend.SaveCheeseType(ctx, c); err != nil {
		return models.CheeseType{}, rep, fmt.Errorf("service: update cheese type: %w", err)
	}
	s.apply(models.CheeseTypeChanged(models.EventUpdate, c))

	if !schedule.ProtocolChanged(existing, c) {
		return c, rep, nil
	}
	plan := schedule.RegenerateProtocolActivities(c, s.state.Productions(), s.state.Activities())
	rep = s.applyPlan(ctx, plan)
	return c, rep, s.settle("regenerate protocol", rep)
}

// DeleteCheeseType removes a cheese type and every activity that references
// it. Productions keep their volumes for statistics.
func (s *Service) DeleteCheeseType(ctx context.Context, id string) (rep Report, err error) {
	defer s.observe(ctx, "delete_cheese_type", time.Now(), &err)
	rep = newReport()
	if _, ok := s.state.CheeseType(id); !ok {
		return rep, fmt.Errorf("cheese type %s: %w", id, apperr.ErrNotFound)
	}
	rep = s.applyPlan(ctx, schedule.Plan{ToDelete: schedule.CheeseTypeTeardown(id, s.state.Activities())})
	if err := s.settle("delete cheese type", rep); err != nil {
		return rep, err
	}
	if err := s.backend.DeleteCheeseType(ctx, id); err != nil {
		return rep, fmt.Errorf("service: delete cheese type: %w", err)
	}
	s.apply(models.Deleted(models.TableCheeseTypes, id))
	return rep, nil
}

// UpsertCheeseTypeByName creates c, or updates the cheese type with the
// same name. It backs catalog seeding.
func (s *Service) UpsertCheeseTypeByName(ctx context.Context, c models.CheeseType) (models.CheeseType, bool, Report, error) {
	existing, ok := s.cheeseTypeByName(c.Name)
	if !ok {
		created, err := s.CreateCheeseType(ctx, c)
		return created, true, newReport(), err
	}
	c.ID = existing.ID
	updated, rep, err := s.UpdateCheeseType(ctx, c, "")
	return updated, false, rep, err
}
