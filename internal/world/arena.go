package world

import "github.com/hknc0/orbit-core/internal/vecmath"

// Arena holds the scaled radii, collapse state and well set.
// Invariant: EscapeRadius >= OuterRadius >= MiddleRadius >= InnerRadius
// >= CoreRadius, enforced by Rescale.
type Arena struct {
	CoreRadius   float64
	InnerRadius  float64
	MiddleRadius float64
	OuterRadius  float64
	EscapeRadius float64

	Scale float64 // function of alive human count

	// CollapsePhase is retained for a future re-enablement of collapse; it
	// is always 0 while collapse is disabled.
	CollapsePhase int

	Wells map[WellId]*GravityWell
}

// NewArena builds an arena at the given base radii and scale 1.0, with no
// wells yet (NewWorld places the initial central well itself).
func NewArena(core, inner, middle, outer, escape float64) Arena {
	return Arena{
		CoreRadius:   core,
		InnerRadius:  inner,
		MiddleRadius: middle,
		OuterRadius:  outer,
		EscapeRadius: escape,
		Scale:        1.0,
		Wells:        make(map[WellId]*GravityWell, 8),
	}
}

// Rescale applies a uniform scale factor to every radius, preserving the
// nesting invariant since all radii move together.
func (a *Arena) Rescale(scale float64) {
	if scale <= 0 {
		return
	}
	ratio := scale / a.Scale
	a.CoreRadius *= ratio
	a.InnerRadius *= ratio
	a.MiddleRadius *= ratio
	a.OuterRadius *= ratio
	a.EscapeRadius *= ratio
	a.Scale = scale
}

// CurrentSafeRadius is the boundary beyond which players drain mass.
// It is the outer radius; kept as a method so the arena system's
// escape-drain logic reads naturally and so a future re-enabled collapse
// can shrink it independently of OuterRadius.
func (a *Arena) CurrentSafeRadius() float64 { return a.OuterRadius }

// AliveWellCount returns the number of wells that are not yet destroyed.
func (a *Arena) AliveWellCount() int {
	n := 0
	for _, w := range a.Wells {
		if w.Phase != WellDestroyed {
			n++
		}
	}
	return n
}

// NearestWell returns the closest non-destroyed well to p, or nil if
// there are none.
func (a *Arena) NearestWell(p vecmath.Vec2) *GravityWell {
	var best *GravityWell
	bestDsq := 0.0
	for _, w := range a.Wells {
		if w.Phase == WellDestroyed {
			continue
		}
		d := p.DistanceSq(w.Pos)
		if best == nil || d < bestDsq {
			best, bestDsq = w, d
		}
	}
	return best
}
