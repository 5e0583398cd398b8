// Package models defines the domain types of the production tracker.
package models

import (
	"slices"
	"time"
)

// ProtocolStep is one production step, Day days after the production date.
type ProtocolStep struct {
	Day      int    `json:"day" yaml:"day"`
	Activity string `json:"activity" yaml:"activity"`
}

// SalesShare is the share of a cheese type sold through one channel.
type SalesShare struct {
	Channel string  `json:"channel" yaml:"channel"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// CheeseType is a product definition together with its production protocol.
// The protocol is replaced as a whole on save, never patched.
type CheeseType struct {
	ID        string         `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Color     string         `json:"color" db:"color"`
	Protocol  []ProtocolStep `json:"protocol" db:"-"`
	Sales     []SalesShare   `json:"sales,omitempty" db:"-"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// SortedProtocol returns a copy of the protocol ordered by ascending day.
// Steps on the same day keep their original order.
func (c CheeseType) SortedProtocol() []ProtocolStep {
	out := slices.Clone(c.Protocol)
	slices.SortStableFunc(out, func(a, b ProtocolStep) int {
		return a.Day - b.Day
	})
	return out
}

// Clone returns a deep copy of c.
func (c CheeseType) Clone() CheeseType {
	c.Protocol = slices.Clone(c.Protocol)
	c.Sales = slices.Clone(c.Sales)
	return c
}
