package localfs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/caseificio/internal/checksum"
	"github.com/starford/caseificio/internal/models"
)

const debounce = 150 * time.Millisecond

// Watch follows the directory until ctx is cancelled. Whenever another
// process rewrites one of the table files, the file is reloaded, diffed
// against the last known content and fn receives one event per changed
// record. Writes made through this Store are recognised by checksum and
// produce no events.
func (s *Store) Watch(ctx context.Context, fn func(models.ChangeEvent)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(s.fs.Root()); err != nil {
		return err
	}
	s.logger.Info("watcher: started", slog.String("dir", s.fs.Root()))

	// Editors often write a file in several steps; wait for them to settle.
	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func(name string) {
		pending[name] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			s.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			for name := range pending {
				for _, ev := range s.reconcile(name) {
					fn(ev)
				}
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if _, known := fileTables[name]; !known {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule(name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

var fileTables = map[string]string{
	CheeseTypesFile: models.TableCheeseTypes,
	ProductionsFile: models.TableProductions,
	ActivitiesFile:  models.TableActivities,
}

// reconcile reloads one file and folds the differences into the cache.
func (s *Store) reconcile(name string) []models.ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.fs.Read(name)
	switch {
	case errors.Is(err, os.ErrNotExist):
		data = nil
	case err != nil:
		s.logger.Warn("watcher: read failed", slog.String("file", name), slog.String("error", err.Error()))
		return nil
	}
	if sum := checksum.Sum(data); sum == s.written[name] {
		return nil
	}

	var events []models.ChangeEvent
	switch fileTables[name] {
	case models.TableCheeseTypes:
		events, err = diffFile(name, data, s.cache.CheeseTypes(),
			func(c models.CheeseType) string { return c.ID }, models.CheeseTypeChanged, models.TableCheeseTypes)
	case models.TableProductions:
		events, err = diffFile(name, data, s.cache.Productions(),
			func(p models.Production) string { return p.ID }, models.ProductionChanged, models.TableProductions)
	case models.TableActivities:
		events, err = diffFile(name, data, s.cache.Activities(),
			func(a models.Activity) string { return a.ID }, models.ActivityChanged, models.TableActivities)
	}
	if err != nil {
		// Half-written by an editor; the next write event retries.
		s.logger.Warn("watcher: skipping unreadable file", slog.String("file", name), slog.String("error", err.Error()))
		return nil
	}
	s.written[name] = checksum.Sum(data)
	for _, ev := range events {
		s.cache.Apply(ev)
		s.logger.Debug("watcher: external change",
			slog.String("table", ev.Table), slog.String("id", ev.ID), slog.String("type", string(ev.Type)))
	}
	return events
}

// diffFile compares the decoded file with the cached records by id.
func diffFile[T any](name string, data []byte, cached []T, id func(T) string,
	changed func(models.EventType, T) models.ChangeEvent, table string) ([]models.ChangeEvent, error) {

	fresh, err := decode[T](name, data)
	if err != nil {
		return nil, err
	}
	old := make(map[string][]byte, len(cached))
	for _, it := range cached {
		b, _ := json.Marshal(it)
		old[id(it)] = b
	}

	var events []models.ChangeEvent
	seen := make(map[string]struct{}, len(fresh))
	for _, it := range fresh {
		key := id(it)
		if key == "" {
			continue
		}
		seen[key] = struct{}{}
		prev, existed := old[key]
		switch {
		case !existed:
			events = append(events, changed(models.EventInsert, it))
		default:
			b, _ := json.Marshal(it)
			if string(b) != string(prev) {
				events = append(events, changed(models.EventUpdate, it))
			}
		}
	}
	for _, it := range cached {
		if _, ok := seen[id(it)]; !ok {
			events = append(events, models.Deleted(table, id(it)))
		}
	}
	return events, nil
}
