package bots

import (
	"github.com/hknc0/orbit-core/internal/simsys"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// decideBehavior picks the behavior index i will execute until its next
// decision tick: flee outranks chase, chase outranks an occasional
// collect pass, and everything else falls back to orbit.
func (e *Engine) decideBehavior(w *world.World, i int, p *world.Player) {
	threatID, threatDist, hasThreat, targetID, targetDist, hasTarget := findNearestPlayers(w, p)

	if hasThreat {
		threat := w.Players[threatID]
		if threat.Mass > p.Mass*(1/e.ai.FleeMassRatio) && threatDist < e.ai.AggressionRadius {
			e.behavior[i] = BehaviorFlee
			e.targetID[i], e.hasTarget[i] = threatID, true
			return
		}
	}

	if e.rng.Float64() < e.person[i].Aggression && hasTarget {
		target := w.Players[targetID]
		if p.Mass >= target.Mass*e.ai.FleeMassRatio && targetDist < e.ai.AggressionRadius*2 {
			e.behavior[i] = BehaviorChase
			e.targetID[i], e.hasTarget[i] = targetID, true
			return
		}
	}

	if (len(w.Debris) > 0 || len(w.Projectiles) > 0) && e.rng.Float64() < 0.3 {
		e.behavior[i] = BehaviorCollect
		e.hasTarget[i] = false
		return
	}

	e.behavior[i] = BehaviorOrbit
	e.hasTarget[i] = false
}

// findNearestPlayers scans every other alive human for the nearest one
// that outmasses the bot by more than 20% (a threat) and the nearest one
// that doesn't (a target). Bots never threaten or target other bots.
func findNearestPlayers(w *world.World, bot *world.Player) (threatID world.PlayerId, threatDist float64, hasThreat bool, targetID world.PlayerId, targetDist float64, hasTarget bool) {
	for _, p := range w.Players {
		if p.ID == bot.ID || !p.Alive || p.IsBot {
			continue
		}
		d := bot.Pos.Distance(p.Pos)
		if p.Mass > bot.Mass*1.2 {
			if !hasThreat || d < threatDist {
				threatID, threatDist, hasThreat = p.ID, d, true
			}
		} else {
			if !hasTarget || d < targetDist {
				targetID, targetDist, hasTarget = p.ID, d, true
			}
		}
	}
	return
}

// executeBehavior steers and aims the bot for its current behavior, then
// runs the shared firing decision.
func (e *Engine) executeBehavior(w *world.World, i int, p *world.Player, dt float64) {
	switch e.behavior[i] {
	case BehaviorOrbit:
		e.executeOrbit(w, i, p)
	case BehaviorChase:
		e.executeChase(w, i, p)
	case BehaviorFlee:
		e.executeFlee(w, i, p)
	case BehaviorCollect:
		e.executeCollect(w, i, p)
	default:
		e.executeIdle(i, p)
	}
	e.updateFiring(w, i, p, dt)
}

func (e *Engine) executeOrbit(w *world.World, i int, p *world.Player) {
	well := w.Arena.NearestWell(p.Pos)
	wellPos := vecmath.Zero
	if well != nil {
		wellPos = well.Pos
	}
	toWell := wellPos.Sub(p.Pos)
	currentRadius := toWell.Length()
	targetRadius := e.person[i].PreferredRadius

	tangent := vecmath.Vec2{X: -toWell.Y, Y: toWell.X}.Normalized()

	var radial vecmath.Vec2
	switch {
	case currentRadius > targetRadius+20:
		radial = toWell.Normalized().Scale(0.5)
	case currentRadius < targetRadius-20:
		radial = toWell.Normalized().Scale(-0.5)
	}

	e.thrust[i] = tangent.Add(radial).Normalized()

	wellMass := w.Config.Physics.CentralMass
	if well != nil {
		wellMass = well.Mass
	}
	orbitalVel := simsys.OrbitalVelocity(w.Config.Physics.G, wellMass, currentRadius)
	e.wantsBoost[i] = p.Vel.Length() < orbitalVel*0.6
}

func (e *Engine) executeChase(w *world.World, i int, p *world.Player) {
	if !e.hasTarget[i] {
		e.behavior[i] = BehaviorIdle
		return
	}
	target, ok := w.Players[e.targetID[i]]
	if !ok || !target.Alive {
		e.behavior[i] = BehaviorIdle
		e.hasTarget[i] = false
		return
	}

	toTarget := target.Pos.Sub(p.Pos)
	distance := toTarget.Length()
	timeToReach := distance / (p.Vel.Length() + 100)
	predicted := target.Pos.Add(target.Vel.Scale(timeToReach * 0.5))

	chaseDir := predicted.Sub(p.Pos).Normalized()
	e.thrust[i] = chaseDir
	e.wantsBoost[i] = distance > 100
	e.aim[i] = chaseDir
}

func (e *Engine) executeFlee(w *world.World, i int, p *world.Player) {
	if !e.hasTarget[i] {
		e.behavior[i] = BehaviorIdle
		return
	}
	threat, ok := w.Players[e.targetID[i]]
	if !ok || !threat.Alive {
		e.behavior[i] = BehaviorIdle
		e.hasTarget[i] = false
		return
	}

	fleeDir := p.Pos.Sub(threat.Pos).Normalized()

	dir := fleeDir
	if p.Pos.Length() > w.Arena.EscapeRadius {
		toCenter := p.Pos.Normalized().Scale(-1)
		dir = fleeDir.Add(toCenter).Normalized()
	}

	e.thrust[i] = dir
	e.wantsBoost[i] = true
	e.aim[i] = fleeDir.Scale(-1)
}

func (e *Engine) executeCollect(w *world.World, i int, p *world.Player) {
	target, found := nearestCollectible(w, p)
	if !found {
		e.behavior[i] = BehaviorOrbit
		return
	}
	e.thrust[i] = target.Sub(p.Pos).Normalized()
	e.wantsBoost[i] = false
}

// nearestCollectible returns the closest debris chunk or enemy
// projectile to p, whichever is nearer.
func nearestCollectible(w *world.World, p *world.Player) (vecmath.Vec2, bool) {
	found := false
	best := vecmath.Zero
	bestDsq := 0.0

	for _, d := range w.Debris {
		dsq := d.Pos.DistanceSq(p.Pos)
		if !found || dsq < bestDsq {
			best, bestDsq, found = d.Pos, dsq, true
		}
	}
	for _, pr := range w.Projectiles {
		if pr.Owner == p.ID {
			continue
		}
		dsq := pr.Pos.DistanceSq(p.Pos)
		if !found || dsq < bestDsq {
			best, bestDsq, found = pr.Pos, dsq, true
		}
	}
	return best, found
}

func (e *Engine) executeIdle(i int, p *world.Player) {
	e.thrust[i] = vecmath.Zero
	e.wantsBoost[i] = false
	if p.Vel.LengthSq() > 10 {
		e.aim[i] = p.Vel.Normalized()
	}
}

// updateFiring only fires while chasing or fleeing, within 300 units,
// charging for a randomized threshold before releasing. Aim gets a
// personality-scaled jitter so low-accuracy bots visibly miss.
func (e *Engine) updateFiring(w *world.World, i int, p *world.Player, dt float64) {
	if e.behavior[i] != BehaviorChase && e.behavior[i] != BehaviorFlee {
		e.wantsFire[i] = false
		e.chargeTime[i] = 0
		return
	}

	target, ok := w.Players[e.targetID[i]]
	if !e.hasTarget[i] || !ok || !target.Alive {
		e.wantsFire[i] = false
		return
	}

	distance := p.Pos.Distance(target.Pos)
	if distance > 300 {
		e.wantsFire[i] = false
		e.chargeTime[i] = 0
		return
	}

	aimToTarget := target.Pos.Sub(p.Pos).Normalized()
	e.aim[i] = aimJitter(aimToTarget, e.person[i].Accuracy, e.rng)

	switch {
	case e.wantsFire[i]:
		e.chargeTime[i] += dt
		threshold := 0.3 + e.rng.Float64()*0.5
		if e.chargeTime[i] > threshold {
			e.wantsFire[i] = false
		}
	case e.chargeTime[i] > 0:
		e.chargeTime[i] = 0
	default:
		if e.rng.Float64() < 0.02 {
			e.wantsFire[i] = true
		}
	}
}
