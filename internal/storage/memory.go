package storage

import (
	"context"

	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/state"
)

// Memory is an ephemeral Backend for tests and throwaway runs.
type Memory struct {
	store *state.Store
}

// NewMemory returns an empty Memory backend, optionally pre-loaded.
func NewMemory(seed ...state.Snapshot) *Memory {
	m := &Memory{store: state.New()}
	for _, s := range seed {
		m.store.Load(s)
	}
	return m
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Load(context.Context) (state.Snapshot, error) {
	return m.store.Snapshot(), nil
}

func (m *Memory) SaveCheeseType(_ context.Context, c models.CheeseType) error {
	m.store.Apply(models.CheeseTypeChanged(models.EventUpdate, c))
	return nil
}

func (m *Memory) DeleteCheeseType(_ context.Context, id string) error {
	m.store.Apply(models.Deleted(models.TableCheeseTypes, id))
	return nil
}

func (m *Memory) SaveProduction(_ context.Context, p models.Production) error {
	m.store.Apply(models.ProductionChanged(models.EventUpdate, p))
	return nil
}

func (m *Memory) DeleteProduction(_ context.Context, id string) error {
	m.store.Apply(models.Deleted(models.TableProductions, id))
	return nil
}

func (m *Memory) SaveActivity(_ context.Context, a models.Activity) error {
	m.store.Apply(models.ActivityChanged(models.EventUpdate, a))
	return nil
}

func (m *Memory) DeleteActivity(_ context.Context, id string) error {
	m.store.Apply(models.Deleted(models.TableActivities, id))
	return nil
}

func (m *Memory) Close() error { return nil }
