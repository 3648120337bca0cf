package rank

import (
	"sort"

	"github.com/gcbaptista/vibe-rank/model"
)

// DefaultBoost is applied to any vibe missing from a boost table
const DefaultBoost = 1.0

// BoostTable maps a vibe tag to its multiplicative boost.
// A BoostTable is a value: Factor never mutates it and callers should treat it as read-only.
type BoostTable map[model.Vibe]float64

// DefaultBoosts returns the boost table used for trending analysis
func DefaultBoosts() BoostTable {
	return BoostTable{
		model.VibeProductivo: 1.5,
		model.VibeChill:      1.5,
		model.VibeCorridos:   1.0,
		model.VibePerrea:     1.0,
		model.VibeSad:        1.0,
		model.VibeTraka:      1.0,
		model.VibeEco:        1.2,
		model.VibeKCute:      1.2,
		model.VibeGeneric:    1.0,
	}
}

// Factor returns the boost for vibe, or DefaultBoost when the vibe is not listed
func (bt BoostTable) Factor(vibe model.Vibe) float64 {
	if boost, exists := bt[vibe]; exists {
		return boost
	}
	return DefaultBoost
}

// Vibes returns the vibes listed in the table, sorted by name
func (bt BoostTable) Vibes() []model.Vibe {
	vibes := make([]model.Vibe, 0, len(bt))
	for vibe := range bt {
		vibes = append(vibes, vibe)
	}
	sort.Slice(vibes, func(i, j int) bool { return vibes[i] < vibes[j] })
	return vibes
}

// Clone returns an independent copy of the table
func (bt BoostTable) Clone() BoostTable {
	clone := make(BoostTable, len(bt))
	for vibe, boost := range bt {
		clone[vibe] = boost
	}
	return clone
}
