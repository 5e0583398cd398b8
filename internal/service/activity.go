package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/caseificio/internal/apperr"
	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/schedule"
	"github.com/starford/caseificio/internal/validate"
)

// ActivityFilter narrows ListActivities. Zero fields match everything.
type ActivityFilter struct {
	Type         models.ActivityType
	ProductionID string
	CheeseTypeID string
}

func (f ActivityFilter) match(a models.Activity) bool {
	return (f.Type == "" || a.Type == f.Type) &&
		(f.ProductionID == "" || a.ProductionID == f.ProductionID) &&
		(f.CheeseTypeID == "" || a.CheeseTypeID == f.CheeseTypeID)
}

// ListActivities returns activities in creation order.
func (s *Service) ListActivities(_ context.Context, f ActivityFilter) []models.Activity {
	all := s.state.Activities()
	out := all[:0]
	for _, a := range all {
		if f.match(a) {
			out = append(out, a)
		}
	}
	return out
}

// GetActivity returns one activity.
func (s *Service) GetActivity(_ context.Context, id string) (models.Activity, error) {
	a, ok := s.state.Activity(id)
	if !ok {
		return models.Activity{}, fmt.Errorf("activity %s: %w", id, apperr.ErrNotFound)
	}
	return a, nil
}

func normalizeActivity(a models.Activity) models.Activity {
	a = a.Clone()
	a.Title = strings.TrimSpace(a.Title)
	if a.Recurrence == "" {
		a.Recurrence = models.RecurrenceNone
	}
	if a.IsRecurring() {
		a.Completed = false
		if len(a.CompletedDates) > 0 {
			a.CompletedDates = models.NewDateSet(a.CompletedDates...)
		}
	} else {
		a.CompletedDates = nil
	}
	return a
}

// CreateActivity stores a one-time or recurring activity. Protocol
// activities only come from productions.
func (s *Service) CreateActivity(ctx context.Context, a models.Activity) (_ models.Activity, err error) {
	defer s.observe(ctx, "create_activity", time.Now(), &err)
	a = normalizeActivity(a)
	if err := validate.UserActivity(a); err != nil {
		return models.Activity{}, err
	}
	if a.ID == "" {
		a.ID = s.newID()
	} else if _, ok := s.state.Activity(a.ID); ok {
		return models.Activity{}, fmt.Errorf("activity %s: %w", a.ID, apperr.ErrAlreadyExists)
	}
	a.CreatedAt = s.stamp()
	if err := s.backend.SaveActivity(ctx, a); err != nil {
		return models.Activity{}, fmt.Errorf("service: create activity: %w", err)
	}
	s.apply(models.ActivityChanged(models.EventInsert, a))
	return a, nil
}

// UpdateActivity replaces an activity. A protocol activity keeps its type
// and links; a user activity cannot become a protocol one.
func (s *Service) UpdateActivity(ctx context.Context, a models.Activity, ifMatch string) (_ models.Activity, err error) {
	defer s.observe(ctx, "update_activity", time.Now(), &err)
	existing, ok := s.state.Activity(a.ID)
	if !ok {
		return models.Activity{}, fmt.Errorf("activity %s: %w", a.ID, apperr.ErrNotFound)
	}
	if ifMatch != "" && ifMatch != ETag(existing) {
		return models.Activity{}, fmt.Errorf("activity %s changed since read: %w", a.ID, apperr.ErrConflict)
	}
	a.CreatedAt = existing.CreatedAt
	if existing.Type == models.ActivityProtocol {
		a.Type = models.ActivityProtocol
		a.ProductionID = existing.ProductionID
		a.CheeseTypeID = existing.CheeseTypeID
	}
	a = normalizeActivity(a)
	check := validate.UserActivity
	if existing.Type == models.ActivityProtocol {
		check = validate.Activity
	}
	if err := check(a); err != nil {
		return models.Activity{}, err
	}
	if err := s.backend.SaveActivity(ctx, a); err != nil {
		return models.Activity{}, fmt.Errorf("service: update activity: %w", err)
	}
	s.apply(models.ActivityChanged(models.EventUpdate, a))
	return a, nil
}

// DeleteActivity removes one activity.
func (s *Service) DeleteActivity(ctx context.Context, id string) (err error) {
	defer s.observe(ctx, "delete_activity", time.Now(), &err)
	if _, ok := s.state.Activity(id); !ok {
		return fmt.Errorf("activity %s: %w", id, apperr.ErrNotFound)
	}
	if err := s.backend.DeleteActivity(ctx, id); err != nil {
		return fmt.Errorf("service: delete activity: %w", err)
	}
	s.apply(models.Deleted(models.TableActivities, id))
	return nil
}

// ToggleCompletion flips the completion of activity id on date q.
func (s *Service) ToggleCompletion(ctx context.Context, id string, q calendar.Date) (_ models.Activity, err error) {
	defer s.observe(ctx, "toggle_completion", time.Now(), &err)
	a, ok := s.state.Activity(id)
	if !ok {
		return models.Activity{}, fmt.Errorf("activity %s: %w", id, apperr.ErrNotFound)
	}
	if q.IsZero() {
		q = s.Today()
	}
	toggled := schedule.Toggle(a, q)
	if err := s.backend.SaveActivity(ctx, toggled); err != nil {
		return models.Activity{}, fmt.Errorf("service: toggle completion: %w", err)
	}
	s.apply(models.ActivityChanged(models.EventUpdate, toggled))
	return toggled, nil
}

// Occurrences lists the dates in [from, to] on which activity id is due.
func (s *Service) Occurrences(_ context.Context, id string, from, to calendar.Date) ([]calendar.Date, error) {
	a, ok := s.state.Activity(id)
	if !ok {
		return nil, fmt.Errorf("activity %s: %w", id, apperr.ErrNotFound)
	}
	dates, err := schedule.Occurrences(a, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	return dates, nil
}
