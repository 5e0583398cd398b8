package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/caseificio/internal/apperr"
	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/state"
)

// Fallback sends every operation to a primary backend. In permissive mode a
// failed operation is repeated against the local backend and the primary
// error is only logged; in strict mode it is returned.
type Fallback struct {
	primary Backend
	local   Backend
	mode    Mode
	logger  *slog.Logger
	// OnFallback, if set, is called once per operation served by local.
	OnFallback func(op string)
}

var _ Backend = (*Fallback)(nil)

// NewFallback wraps primary. local may be nil, which behaves as strict.
func NewFallback(primary, local Backend, mode Mode, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, local: local, mode: mode, logger: logger}
}

func (f *Fallback) Name() string {
	if f.local == nil {
		return f.primary.Name()
	}
	return f.primary.Name() + "+" + f.local.Name()
}

// do runs op against primary and, when allowed, against local.
func (f *Fallback) do(ctx context.Context, op string, fn func(Backend) error) error {
	err := fn(f.primary)
	if err == nil || !f.canFallback(err) {
		return err
	}
	f.logger.Warn("storage: primary failed, using local",
		slog.String("op", op),
		slog.String("primary", f.primary.Name()),
		slog.String("error", err.Error()))
	if f.OnFallback != nil {
		f.OnFallback(op)
	}
	if lerr := fn(f.local); lerr != nil {
		return fmt.Errorf("storage: %s: %w", op, errors.Join(err, lerr))
	}
	return nil
}

func (f *Fallback) canFallback(err error) bool {
	if f.mode != ModePermissive || f.local == nil {
		return false
	}
	// Caller mistakes are not outages.
	return !errors.Is(err, apperr.ErrValidation) && !errors.Is(err, context.Canceled)
}

// Load reads the primary snapshot. In permissive mode, records written to
// local while the primary was down are first copied back to the primary and
// removed from local, so they are part of what Load returns.
func (f *Fallback) Load(ctx context.Context) (state.Snapshot, error) {
	if f.mode == ModePermissive && f.local != nil {
		if err := f.replay(ctx); err != nil {
			f.logger.Warn("storage: local records not replayed",
				slog.String("primary", f.primary.Name()),
				slog.String("error", err.Error()))
		}
	}
	var snap state.Snapshot
	err := f.do(ctx, "load", func(b Backend) error {
		var err error
		snap, err = b.Load(ctx)
		return err
	})
	return snap, err
}

// replay moves every local record to the primary. Cheese types go first so
// productions can reference them. It stops at the first primary failure and
// leaves the rest in local for the next attempt.
func (f *Fallback) replay(ctx context.Context) error {
	snap, err := f.local.Load(ctx)
	if err != nil {
		return fmt.Errorf("load local: %w", err)
	}
	moved := 0
	for _, c := range snap.CheeseTypes {
		if err := f.primary.SaveCheeseType(ctx, c); err != nil {
			return fmt.Errorf("replay cheese type %s: %w", c.ID, err)
		}
		if err := f.local.DeleteCheeseType(ctx, c.ID); err != nil {
			return fmt.Errorf("clear local cheese type %s: %w", c.ID, err)
		}
		moved++
	}
	for _, p := range snap.Productions {
		if err := f.primary.SaveProduction(ctx, p); err != nil {
			return fmt.Errorf("replay production %s: %w", p.ID, err)
		}
		if err := f.local.DeleteProduction(ctx, p.ID); err != nil {
			return fmt.Errorf("clear local production %s: %w", p.ID, err)
		}
		moved++
	}
	for _, a := range snap.Activities {
		if err := f.primary.SaveActivity(ctx, a); err != nil {
			return fmt.Errorf("replay activity %s: %w", a.ID, err)
		}
		if err := f.local.DeleteActivity(ctx, a.ID); err != nil {
			return fmt.Errorf("clear local activity %s: %w", a.ID, err)
		}
		moved++
	}
	if moved > 0 {
		f.logger.Info("storage: replayed local records",
			slog.String("primary", f.primary.Name()),
			slog.Int("records", moved))
	}
	return nil
}

func (f *Fallback) SaveCheeseType(ctx context.Context, c models.CheeseType) error {
	return f.do(ctx, "save_cheese_type", func(b Backend) error { return b.SaveCheeseType(ctx, c) })
}

func (f *Fallback) DeleteCheeseType(ctx context.Context, id string) error {
	return f.do(ctx, "delete_cheese_type", func(b Backend) error { return b.DeleteCheeseType(ctx, id) })
}

func (f *Fallback) SaveProduction(ctx context.Context, p models.Production) error {
	return f.do(ctx, "save_production", func(b Backend) error { return b.SaveProduction(ctx, p) })
}

func (f *Fallback) DeleteProduction(ctx context.Context, id string) error {
	return f.do(ctx, "delete_production", func(b Backend) error { return b.DeleteProduction(ctx, id) })
}

func (f *Fallback) SaveActivity(ctx context.Context, a models.Activity) error {
	return f.do(ctx, "save_activity", func(b Backend) error { return b.SaveActivity(ctx, a) })
}

func (f *Fallback) DeleteActivity(ctx context.Context, id string) error {
	return f.do(ctx, "delete_activity", func(b Backend) error { return b.DeleteActivity(ctx, id) })
}

// Watch forwards to whichever wrapped backend can watch, primary first.
func (f *Fallback) Watch(ctx context.Context, fn func(models.ChangeEvent)) error {
	if w, ok := f.primary.(Watcher); ok {
		return w.Watch(ctx, fn)
	}
	if w, ok := f.local.(Watcher); ok {
		return w.Watch(ctx, fn)
	}
	<-ctx.Done()
	return nil
}

func (f *Fallback) Close() error {
	var errs []error
	errs = append(errs, f.primary.Close())
	if f.local != nil {
		errs = append(errs, f.local.Close())
	}
	return errors.Join(errs...)
}
