package models

import (
	"encoding/json"
	"slices"

	"github.com/starford/caseificio/internal/calendar"
)

// DateSet is a sorted set of yyyy-MM-dd strings. Methods never modify the
// receiver; they return new sets.
type DateSet []string

// NewDateSet builds a normalised set from arbitrary entries, dropping
// duplicates.
func NewDateSet(entries ...string) DateSet {
	out := slices.Clone(entries)
	slices.Sort(out)
	return slices.Compact(out)
}

// Has reports whether d is in the set.
func (s DateSet) Has(d calendar.Date) bool {
	_, ok := slices.BinarySearch(s, d.String())
	return ok
}

// With returns the set plus d.
func (s DateSet) With(d calendar.Date) DateSet {
	key := d.String()
	i, ok := slices.BinarySearch(s, key)
	if ok {
		return slices.Clone(s)
	}
	out := make(DateSet, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, key)
	return append(out, s[i:]...)
}

// Without returns the set minus d.
func (s DateSet) Without(d calendar.Date) DateSet {
	i, ok := slices.BinarySearch(s, d.String())
	if !ok {
		return slices.Clone(s)
	}
	out := make(DateSet, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// UnmarshalJSON accepts entries in any order and with repeats, as written by
// other tools or by hand, and stores them as a normalised set.
func (s *DateSet) UnmarshalJSON(b []byte) error {
	var entries []string
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	if entries == nil {
		*s = nil
		return nil
	}
	*s = NewDateSet(entries...)
	return nil
}
