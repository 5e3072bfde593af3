package dri

import "strings"

// Set is an insertion-ordered collection of distinct DRIs.
type Set []DRI

// NewSet builds a Set from ds, dropping duplicates after their first
// occurrence.
func NewSet(ds ...DRI) Set {
	seen := make(map[string]bool, len(ds))
	out := make(Set, 0, len(ds))
	for _, d := range ds {
		k := d.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}

func (s Set) Contains(d DRI) bool {
	k := d.Key()
	for _, e := range s {
		if e.Key() == k {
			return true
		}
	}
	return false
}

// First returns the primary DRI. ok is false for an empty set.
func (s Set) First() (DRI, bool) {
	if len(s) == 0 {
		return DRI{}, false
	}
	return s[0], true
}

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
