package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/schedule"
)

// StepFailure is one delete or create that the backend rejected.
type StepFailure struct {
	Step         string `json:"step"`
	ActivityID   string `json:"activity_id"`
	ProductionID string `json:"production_id,omitempty"`
	Error        string `json:"error"`
}

// Report describes how a regeneration or cascade plan was applied.
type Report struct {
	Deleted  []string      `json:"deleted"`
	Created  []string      `json:"created"`
	Failures []StepFailure `json:"failures,omitempty"`

	errs []error
}

// Err joins every step failure, or returns nil.
func (r Report) Err() error {
	return errors.Join(r.errs...)
}

func newReport() Report {
	return Report{Deleted: []string{}, Created: []string{}}
}

// applyPlan runs every step of plan independently, deletes first. A failed
// step is logged and recorded; the remaining steps still run.
func (s *Service) applyPlan(ctx context.Context, plan schedule.Plan) Report {
	rep := newReport()
	owners := make(map[string]string, len(plan.ToDelete))
	for _, id := range plan.ToDelete {
		if a, ok := s.state.Activity(id); ok {
			owners[id] = a.ProductionID
		}
	}

	for _, id := range plan.ToDelete {
		if err := s.backend.DeleteActivity(ctx, id); err != nil {
			s.stepFailed(&rep, "delete", id, owners[id], err)
			continue
		}
		s.apply(models.Deleted(models.TableActivities, id))
		rep.Deleted = append(rep.Deleted, id)
	}

	for _, a := range plan.ToCreate {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = s.stamp()
		}
		if err := s.backend.SaveActivity(ctx, a); err != nil {
			s.stepFailed(&rep, "create", a.ID, a.ProductionID, err)
			continue
		}
		s.apply(models.ActivityChanged(models.EventInsert, a))
		rep.Created = append(rep.Created, a.ID)
	}
	return rep
}

func (s *Service) stepFailed(rep *Report, step, activityID, productionID string, err error) {
	s.logger.Warn("regeneration step failed",
		slog.String("step", step),
		slog.String("activity_id", activityID),
		slog.String("production_id", productionID),
		slog.String("error", err.Error()))
	if s.metrics != nil {
		s.metrics.RegenerationFailed(step)
	}
	rep.Failures = append(rep.Failures, StepFailure{
		Step:         step,
		ActivityID:   activityID,
		ProductionID: productionID,
		Error:        err.Error(),
	})
	rep.errs = append(rep.errs, fmt.Errorf("%s activity %s: %w", step, activityID, err))
}

// settle turns step failures into an error in strict mode.
func (s *Service) settle(op string, rep Report) error {
	if !s.strict {
		return nil
	}
	if err := rep.Err(); err != nil {
		return fmt.Errorf("service: %s: %w", op, err)
	}
	return nil
}
