// Package service coordinates the storage backend, the in-memory state, the
// scheduling core and change publication. Every mutation is validated,
// written to the backend, folded into the state and then published.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/checksum"
	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/state"
	"github.com/starford/caseificio/internal/storage"
)

// Publisher receives every change applied to the state.
type Publisher interface {
	PublishChange(ev models.ChangeEvent)
}

// MetricsRecorder records operation outcomes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	RegenerationFailed(step string)
}

// Service is safe for concurrent use.
type Service struct {
	backend storage.Backend
	state   *state.Store
	pub     Publisher
	metrics MetricsRecorder
	logger  *slog.Logger
	strict  bool
	loc     *time.Location
	now     func() time.Time
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets where applied changes are sent.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithMetrics sets the operation recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithStrict makes failed regeneration steps fail the whole operation.
func WithStrict(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

// WithLocation sets the time zone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the random id generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New creates a service over backend. Call Load before serving requests.
func New(backend storage.Backend, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		state:   state.New(),
		logger:  slog.Default(),
		loc:     time.Local,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory state with the backend's content.
func (s *Service) Load(ctx context.Context) (err error) {
	defer s.observe(ctx, "load", time.Now(), &err)
	snap, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("service: load: %w", err)
	}
	s.state.Load(snap)
	s.logger.Info("state loaded",
		slog.String("backend", s.backend.Name()),
		slog.Int("cheese_types", len(snap.CheeseTypes)),
		slog.Int("productions", len(snap.Productions)),
		slog.Int("activities", len(snap.Activities)))
	return nil
}

// ApplyExternal folds a change made outside this process, typically
// reported by a storage watcher, and publishes it if it changed anything.
func (s *Service) ApplyExternal(ev models.ChangeEvent) {
	s.apply(ev)
}

// Snapshot returns a copy of the current state.
func (s *Service) Snapshot() state.Snapshot {
	return s.state.Snapshot()
}

// Today is the current date in the configured time zone.
func (s *Service) Today() calendar.Date {
	return calendar.FromTime(s.now().In(s.loc))
}

// ETag is the version tag of a record, used for optimistic concurrency.
func ETag(v any) string {
	sum, err := checksum.JSON(v)
	if err != nil {
		return ""
	}
	return sum
}

func (s *Service) apply(ev models.ChangeEvent) {
	if s.state.Apply(ev) && s.pub != nil {
		s.pub.PublishChange(ev)
	}
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, err *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.Observe(ctx, op, err == nil || *err == nil, time.Since(start))
}

func (s *Service) stamp() time.Time {
	return s.now().UTC()
}
