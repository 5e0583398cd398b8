// Package backup exports the full tracker state as a self-verifying JSON
// document and ships it to a directory or an S3 bucket.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/caseificio/internal/checksum"
	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/state"
	"github.com/starford/caseificio/internal/storage"
)

// Version is the document format written by Encode.
const Version = 1

// ErrChecksum is returned when a document's content does not match its
// recorded checksum.
var ErrChecksum = errors.New("backup: checksum mismatch")

// Document is a point-in-time export. Checksum covers the three record
// lists only.
type Document struct {
	Version     int                 `json:"version"`
	TakenAt     time.Time           `json:"taken_at"`
	Checksum    string              `json:"checksum"`
	CheeseTypes []models.CheeseType `json:"cheese_types"`
	Productions []models.Production `json:"productions"`
	Activities  []models.Activity   `json:"activities"`
}

func (d Document) snapshot() state.Snapshot {
	return state.Snapshot{CheeseTypes: d.CheeseTypes, Productions: d.Productions, Activities: d.Activities}
}

func contentSum(s state.Snapshot) (string, error) {
	if s.CheeseTypes == nil {
		s.CheeseTypes = []models.CheeseType{}
	}
	if s.Productions == nil {
		s.Productions = []models.Production{}
	}
	if s.Activities == nil {
		s.Activities = []models.Activity{}
	}
	return checksum.JSON(s)
}

// Encode builds the document for snap taken at takenAt.
func Encode(snap state.Snapshot, takenAt time.Time) (Document, []byte, error) {
	sum, err := contentSum(snap)
	if err != nil {
		return Document{}, nil, err
	}
	doc := Document{
		Version:     Version,
		TakenAt:     takenAt.UTC(),
		Checksum:    sum,
		CheeseTypes: snap.CheeseTypes,
		Productions: snap.Productions,
		Activities:  snap.Activities,
	}
	if doc.CheeseTypes == nil {
		doc.CheeseTypes = []models.CheeseType{}
	}
	if doc.Productions == nil {
		doc.Productions = []models.Production{}
	}
	if doc.Activities == nil {
		doc.Activities = []models.Activity{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Document{}, nil, fmt.Errorf("backup: encode: %w", err)
	}
	return doc, append(data, '\n'), nil
}

// Decode parses data and verifies its checksum.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("backup: decode: %w", err)
	}
	if doc.Version != Version {
		return Document{}, fmt.Errorf("backup: unsupported version %d", doc.Version)
	}
	sum, err := contentSum(doc.snapshot())
	if err != nil {
		return Document{}, err
	}
	if sum != doc.Checksum {
		return Document{}, ErrChecksum
	}
	return doc, nil
}

// Key names the object a backup taken at t is stored under.
func Key(t time.Time) string {
	return "caseificio-" + t.UTC().Format("20060102T150405Z") + ".json"
}

// Sink stores encoded backups.
type Sink interface {
	// Put stores data under key and returns where it ended up.
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// Run encodes snap and writes it to sink.
func Run(ctx context.Context, snap state.Snapshot, sink Sink, now time.Time, logger *slog.Logger) (string, error) {
	doc, data, err := Encode(snap, now)
	if err != nil {
		return "", err
	}
	location, err := sink.Put(ctx, Key(now), data)
	if err != nil {
		return "", fmt.Errorf("backup: put: %w", err)
	}
	logger.Info("backup written",
		slog.String("location", location),
		slog.String("checksum", doc.Checksum),
		slog.Int("cheese_types", len(doc.CheeseTypes)),
		slog.Int("productions", len(doc.Productions)),
		slog.Int("activities", len(doc.Activities)))
	return location, nil
}

// Restore writes every record of doc to backend. Records already present
// are overwritten; records missing from doc are left alone.
func Restore(ctx context.Context, doc Document, backend storage.Backend) error {
	for _, c := range doc.CheeseTypes {
		if err := backend.SaveCheeseType(ctx, c); err != nil {
			return fmt.Errorf("backup: restore cheese type %s: %w", c.ID, err)
		}
	}
	for _, p := range doc.Productions {
		if err := backend.SaveProduction(ctx, p); err != nil {
			return fmt.Errorf("backup: restore production %s: %w", p.ID, err)
		}
	}
	for _, a := range doc.Activities {
		if err := backend.SaveActivity(ctx, a); err != nil {
			return fmt.Errorf("backup: restore activity %s: %w", a.ID, err)
		}
	}
	return nil
}
