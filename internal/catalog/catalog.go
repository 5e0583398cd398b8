// Package catalog reads cheese-type definitions from YAML so a dairy can
// seed its product list without going through the API.
//
//	cheese_types:
//	  - name: Caciotta
//	    color: "#F2C14E"
//	    protocol:
//	      - {day: 0, activity: Salatura}
//	      - {day: 7, activity: Controllo stagionatura}
//	    sales:
//	      - {channel: spaccio, percent: 70}
//	      - {channel: ingrosso, percent: 30}
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/validate"
)

// Entry is one cheese type as written in a catalog file.
type Entry struct {
	Name     string                `yaml:"name"`
	Color    string                `yaml:"color"`
	Protocol []models.ProtocolStep `yaml:"protocol"`
	Sales    []models.SalesShare   `yaml:"sales"`
}

// CheeseType converts the entry into a model without an id.
func (e Entry) CheeseType() models.CheeseType {
	return models.CheeseType{
		Name:     strings.TrimSpace(e.Name),
		Color:    strings.TrimSpace(e.Color),
		Protocol: e.Protocol,
		Sales:    e.Sales,
	}
}

type document struct {
	CheeseTypes []Entry `yaml:"cheese_types"`
}

// Parse decodes and validates a catalog. Every invalid entry is reported,
// not just the first one.
func Parse(data []byte) ([]models.CheeseType, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("catalog: empty document")
	}
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if len(doc.CheeseTypes) == 0 {
		return nil, fmt.Errorf("catalog: no cheese_types defined")
	}

	out := make([]models.CheeseType, 0, len(doc.CheeseTypes))
	seen := make(map[string]int, len(doc.CheeseTypes))
	var errs []error
	for i, e := range doc.CheeseTypes {
		c := e.CheeseType()
		if err := validate.CheeseType(c); err != nil {
			errs = append(errs, fmt.Errorf("catalog: entry %d (%q): %w", i+1, c.Name, err))
			continue
		}
		key := strings.ToLower(c.Name)
		if first, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("catalog: entry %d: %q already defined by entry %d", i+1, c.Name, first))
			continue
		}
		seen[key] = i + 1
		out = append(out, c)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Read parses a catalog from r.
func Read(r io.Reader) ([]models.CheeseType, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	return Parse(data)
}

// Load parses the catalog file at path.
func Load(path string) ([]models.CheeseType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	types, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return types, nil
}
