// Package localfs stores each collection as a JSON file in a directory.
// It is the offline backend and the fallback for remote databases, and it
// reports edits made to the files by other processes.
package localfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/starford/caseificio/internal/checksum"
	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/state"
	"github.com/starford/caseificio/internal/storage"
)

// File names, one per table.
const (
	CheeseTypesFile = models.TableCheeseTypes + ".json"
	ProductionsFile = models.TableProductions + ".json"
	ActivitiesFile  = models.TableActivities + ".json"
)

var tableFiles = map[string]string{
	models.TableCheeseTypes: CheeseTypesFile,
	models.TableProductions: ProductionsFile,
	models.TableActivities:  ActivitiesFile,
}

// Store is a storage.Backend and storage.Watcher over a directory.
type Store struct {
	fs     *storage.FS
	logger *slog.Logger

	mu      sync.Mutex
	cache   *state.Store
	written map[string]string // file -> checksum of the last content we wrote
}

var (
	_ storage.Backend = (*Store)(nil)
	_ storage.Watcher = (*Store)(nil)
)

// Open creates dir if needed and loads whatever it already holds.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localfs: create dir: %w", err)
	}
	fs, err := storage.NewFS(dir)
	if err != nil {
		return nil, err
	}
	s := &Store{fs: fs, logger: logger, cache: state.New(), written: make(map[string]string)}
	if _, err := s.Load(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Name() string { return "local" }

// Dir returns the absolute directory holding the files.
func (s *Store) Dir() string { return s.fs.Root() }

func (s *Store) Close() error { return nil }

// Load re-reads every file from disk.
func (s *Store) Load(context.Context) (state.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap state.Snapshot
	var err error
	if snap.CheeseTypes, err = readFile[models.CheeseType](s.fs, CheeseTypesFile); err != nil {
		return state.Snapshot{}, err
	}
	if snap.Productions, err = readFile[models.Production](s.fs, ProductionsFile); err != nil {
		return state.Snapshot{}, err
	}
	if snap.Activities, err = readFile[models.Activity](s.fs, ActivitiesFile); err != nil {
		return state.Snapshot{}, err
	}
	s.cache.Load(snap)
	return s.cache.Snapshot(), nil
}

func (s *Store) SaveCheeseType(_ context.Context, c models.CheeseType) error {
	return s.apply(models.CheeseTypeChanged(models.EventUpdate, c))
}

func (s *Store) DeleteCheeseType(_ context.Context, id string) error {
	return s.apply(models.Deleted(models.TableCheeseTypes, id))
}

func (s *Store) SaveProduction(_ context.Context, p models.Production) error {
	return s.apply(models.ProductionChanged(models.EventUpdate, p))
}

func (s *Store) DeleteProduction(_ context.Context, id string) error {
	return s.apply(models.Deleted(models.TableProductions, id))
}

func (s *Store) SaveActivity(_ context.Context, a models.Activity) error {
	return s.apply(models.ActivityChanged(models.EventUpdate, a))
}

func (s *Store) DeleteActivity(_ context.Context, id string) error {
	return s.apply(models.Deleted(models.TableActivities, id))
}

// apply updates the cache and rewrites the table's file. If the file cannot
// be written the cache is put back, so it never holds what disk does not.
func (s *Store) apply(ev models.ChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	undo := s.undo(ev)
	if !s.cache.Apply(ev) {
		return nil
	}
	if err := s.flush(ev.Table); err != nil {
		s.cache.Apply(undo)
		return err
	}
	return nil
}

// undo returns the event restoring the cached record that ev replaces.
func (s *Store) undo(ev models.ChangeEvent) models.ChangeEvent {
	switch ev.Table {
	case models.TableCheeseTypes:
		if c, ok := s.cache.CheeseType(ev.ID); ok {
			return models.CheeseTypeChanged(models.EventUpdate, c)
		}
	case models.TableProductions:
		if p, ok := s.cache.Production(ev.ID); ok {
			return models.ProductionChanged(models.EventUpdate, p)
		}
	case models.TableActivities:
		if a, ok := s.cache.Activity(ev.ID); ok {
			return models.ActivityChanged(models.EventUpdate, a)
		}
	}
	return models.Deleted(ev.Table, ev.ID)
}

func (s *Store) flush(table string) error {
	var data []byte
	var err error
	switch table {
	case models.TableCheeseTypes:
		data, err = encode(s.cache.CheeseTypes())
	case models.TableProductions:
		data, err = encode(s.cache.Productions())
	case models.TableActivities:
		data, err = encode(s.cache.Activities())
	default:
		return fmt.Errorf("localfs: unknown table %q", table)
	}
	if err != nil {
		return fmt.Errorf("localfs: encode %s: %w", table, err)
	}
	name := tableFiles[table]
	s.written[name] = checksum.Sum(data)
	if err := s.fs.Write(name, data); err != nil {
		delete(s.written, name)
		return err
	}
	return nil
}

func encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.MarshalIndent(items, "", "  ")
}

func readFile[T any](fs *storage.FS, name string) ([]T, error) {
	data, err := fs.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return decode[T](name, data)
}

func decode[T any](name string, data []byte) ([]T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("localfs: decode %s: %w", name, err)
	}
	return out, nil
}
