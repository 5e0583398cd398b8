package service

import (
	"context"
	"fmt"

	"github.com/starford/caseificio/internal/apperr"
	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/schedule"
	"github.com/starford/caseificio/internal/stats"
)

// Agenda returns what is due on q. A zero q means today.
func (s *Service) Agenda(_ context.Context, q calendar.Date) (calendar.Date, []schedule.AgendaItem) {
	if q.IsZero() {
		q = s.Today()
	}
	snap := s.state.Snapshot()
	items := schedule.AgendaFor(q, snap.Activities, snap.Productions, snap.CheeseTypes)
	if items == nil {
		items = []schedule.AgendaItem{}
	}
	return q, items
}

// AgendaRange returns the agenda of every day in [from, to].
func (s *Service) AgendaRange(_ context.Context, from, to calendar.Date) ([]schedule.DayAgenda, error) {
	snap := s.state.Snapshot()
	days, err := schedule.AgendaRange(from, to, snap.Activities, snap.Productions, snap.CheeseTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	return days, nil
}

// MonthlyStats returns the twelve monthly rollups of year.
func (s *Service) MonthlyStats(_ context.Context, year int) []stats.MonthStats {
	return stats.MonthlyStats(year, s.state.Productions(), s.state.CheeseTypes())
}

// YearSummary returns the rollup of a whole year.
func (s *Service) YearSummary(_ context.Context, year int) stats.YearStats {
	return stats.YearSummary(year, s.state.Productions(), s.state.CheeseTypes())
}

// Years lists the years that have at least one production.
func (s *Service) Years(context.Context) []int {
	return stats.Years(s.state.Productions())
}
