// Package bots implements the structure-of-arrays bot engine: parallel
// slices indexed by a dense slot index carry position, velocity, mass,
// personality, LOD tier and behavior state so the per-tick sweep stays
// cache-friendly even at very large bot counts. External callers only
// ever see a PlayerId; the slot index is resolved through an internal
// map and never leaks past this package's API.
package bots

import (
	"math/rand"

	"github.com/hknc0/orbit-core/internal/vecmath"
)

// Personality holds the per-bot traits that make decisions vary across a
// population without branching on identity.
type Personality struct {
	Aggression       float64 // 0..1, likelihood of choosing Chase over Orbit
	PreferredRadius  float64 // preferred orbital distance from a well
	Accuracy         float64 // 0..1, aim precision when firing
	ReactionVariance float64 // jitter applied to the decision interval
}

// NewPersonality draws a random personality from the same ranges for
// every bot, so population-level behavior stays statistically uniform.
func NewPersonality(rng *rand.Rand) Personality {
	return Personality{
		Aggression:       0.2 + rng.Float64()*0.6,
		PreferredRadius:  250 + rng.Float64()*150,
		Accuracy:         0.5 + rng.Float64()*0.4,
		ReactionVariance: 0.1 + rng.Float64()*0.4,
	}
}

// aimJitter rotates dir by an angle scaled by (1-accuracy), modeling an
// imperfect shot.
func aimJitter(dir vecmath.Vec2, accuracy float64, rng *rand.Rand) vecmath.Vec2 {
	spread := (1 - accuracy) * 0.3
	offset := (rng.Float64()*2 - 1) * spread
	return dir.Rotated(offset)
}
