// Package structure holds the domain model of a cyclodextrin build: unit
// specifications, the molecule handle produced by assembly, session records
// and the ports implemented by the external chemistry collaborators.
package structure

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Stereo positions of a glucose-like unit.
const (
	StereoMinKey = 1
	StereoMaxKey = 5
)

// StereoMap maps a stereo position (1..5) to its configuration label.
type StereoMap map[int]string

// DefaultStereo returns a fresh copy of the default configuration
// {1:beta, 2:L, 3:L, 4:D, 5:L}.
func DefaultStereo() StereoMap {
	return StereoMap{1: "beta", 2: "L", 3: "L", 4: "D", 5: "L"}
}

// Merge returns a new map with every key of overrides replacing the same key
// of m.  Neither input is modified.
func (m StereoMap) Merge(overrides StereoMap) StereoMap {
	out := make(StereoMap, len(m)+len(overrides))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Validate rejects keys outside 1..5 and empty labels.
func (m StereoMap) Validate() error {
	for _, k := range m.Keys() {
		if k < StereoMinKey || k > StereoMaxKey {
			return fmt.Errorf("stereo position %d out of range [%d, %d]", k, StereoMinKey, StereoMaxKey)
		}
		if m[k] == "" {
			return fmt.Errorf("stereo position %d has an empty label", k)
		}
	}
	return nil
}

// Keys returns the positions in ascending order.
func (m StereoMap) Keys() []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// UnitSpec is one unit as produced by the canonical string interpreter.
type UnitSpec struct {
	// Index is 1-based and fixes the output file name.
	Index int `json:"index"`
	// Stereo holds caller overrides only; see Effective.
	Stereo StereoMap `json:"stereo,omitempty"`
	// Substitution is passed to the unit builder untouched.
	Substitution json.RawMessage `json:"substitution,omitempty"`
}

// EffectiveStereo merges the unit's overrides onto the default map.
func (u UnitSpec) EffectiveStereo() StereoMap {
	return DefaultStereo().Merge(u.Stereo)
}

// Renumber sets Index to the 1-based position of every unit.
func Renumber(units []UnitSpec) {
	for i := range units {
		units[i].Index = i + 1
	}
}

//Personal.AI order the ending
