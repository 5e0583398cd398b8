// Package storage defines the persistence contract for cheese types,
// productions and activities, and the wrappers shared by every backend.
package storage

import (
	"context"

	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/state"
)

// Backend is a persistence backend. Saves are upserts by id and deletes of
// absent ids succeed, so a plan can be replayed after a partial failure.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Load reads every stored record.
	Load(ctx context.Context) (state.Snapshot, error)

	SaveCheeseType(ctx context.Context, c models.CheeseType) error
	DeleteCheeseType(ctx context.Context, id string) error
	SaveProduction(ctx context.Context, p models.Production) error
	DeleteProduction(ctx context.Context, id string) error
	SaveActivity(ctx context.Context, a models.Activity) error
	DeleteActivity(ctx context.Context, id string) error

	Close() error
}

// Watcher is implemented by backends that can report changes made outside
// this process. fn is called from the watching goroutine.
type Watcher interface {
	Watch(ctx context.Context, fn func(models.ChangeEvent)) error
}

// Mode decides what happens when the primary backend fails.
type Mode string

const (
	// ModeStrict surfaces every primary failure to the caller.
	ModeStrict Mode = "strict"
	// ModePermissive retries failed operations against the local backend.
	ModePermissive Mode = "permissive"
)
