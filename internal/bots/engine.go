package bots

import (
	"math"
	"math/rand"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// Tier is a bot's current level-of-detail dormancy tier, recomputed every
// tick from its distance to the nearest human.
type Tier uint8

const (
	TierFull Tier = iota
	TierReduced
	TierDormant
	TierCulled
)

// Behavior is the coarse decision a bot is currently executing.
type Behavior uint8

const (
	BehaviorIdle Behavior = iota
	BehaviorOrbit
	BehaviorChase
	BehaviorFlee
	BehaviorCollect
)

// Engine owns every bot's state as parallel slices indexed by a dense
// position, so a full sweep touches contiguous memory regardless of how
// many bots are registered. indexOf resolves a PlayerId to its slot;
// Unregister swaps the removed slot with the last one to keep the
// slices dense.
type Engine struct {
	cfg   config.LODConfig
	ai    config.AIConfig
	rng   *rand.Rand

	ids     []world.PlayerId
	pos     []vecmath.Vec2
	vel     []vecmath.Vec2
	mass    []float64
	person  []Personality

	tier           []Tier
	behavior       []Behavior
	targetID       []world.PlayerId
	hasTarget      []bool
	decisionTimer  []float64
	aim            []vecmath.Vec2
	thrust         []vecmath.Vec2
	wantsBoost     []bool
	wantsFire      []bool
	chargeTime     []float64
	lastUpdateTick []world.Tick

	indexOf map[world.PlayerId]int
}

// NewEngine builds an empty bot engine. capHint presizes the id-to-slot
// map; pass 0 if the expected population is unknown.
func NewEngine(cfg config.LODConfig, ai config.AIConfig, rng *rand.Rand, capHint int) *Engine {
	return &Engine{
		cfg:     cfg,
		ai:      ai,
		rng:     rng,
		indexOf: make(map[world.PlayerId]int, capHint),
	}
}

// Len returns the number of registered bots.
func (e *Engine) Len() int { return len(e.ids) }

// SetLOD replaces the engine's level-of-detail tuning, letting the
// governor shrink radii and lengthen update intervals under load
// without rebuilding the engine or losing any registered bot's state.
func (e *Engine) SetLOD(cfg config.LODConfig) { e.cfg = cfg }

// LOD returns the engine's current level-of-detail tuning.
func (e *Engine) LOD() config.LODConfig { return e.cfg }

// Register adds a bot at the given starting position/velocity/mass and
// draws it a fresh personality. A no-op if id is already registered.
func (e *Engine) Register(id world.PlayerId, pos, vel vecmath.Vec2, mass float64) {
	if _, ok := e.indexOf[id]; ok {
		return
	}
	e.indexOf[id] = len(e.ids)
	e.ids = append(e.ids, id)
	e.pos = append(e.pos, pos)
	e.vel = append(e.vel, vel)
	e.mass = append(e.mass, mass)
	e.person = append(e.person, NewPersonality(e.rng))
	e.tier = append(e.tier, TierFull)
	e.behavior = append(e.behavior, BehaviorIdle)
	e.targetID = append(e.targetID, world.PlayerId{})
	e.hasTarget = append(e.hasTarget, false)
	e.decisionTimer = append(e.decisionTimer, 0)
	e.aim = append(e.aim, vecmath.Zero)
	e.thrust = append(e.thrust, vecmath.Zero)
	e.wantsBoost = append(e.wantsBoost, false)
	e.wantsFire = append(e.wantsFire, false)
	e.chargeTime = append(e.chargeTime, 0)
	e.lastUpdateTick = append(e.lastUpdateTick, 0)
}

// Unregister removes a bot via swap-with-last. A no-op if id is not
// registered.
func (e *Engine) Unregister(id world.PlayerId) {
	i, ok := e.indexOf[id]
	if !ok {
		return
	}
	last := len(e.ids) - 1
	e.swap(i, last)
	delete(e.indexOf, id)
	e.ids = e.ids[:last]
	e.pos = e.pos[:last]
	e.vel = e.vel[:last]
	e.mass = e.mass[:last]
	e.person = e.person[:last]
	e.tier = e.tier[:last]
	e.behavior = e.behavior[:last]
	e.targetID = e.targetID[:last]
	e.hasTarget = e.hasTarget[:last]
	e.decisionTimer = e.decisionTimer[:last]
	e.aim = e.aim[:last]
	e.thrust = e.thrust[:last]
	e.wantsBoost = e.wantsBoost[:last]
	e.wantsFire = e.wantsFire[:last]
	e.chargeTime = e.chargeTime[:last]
	e.lastUpdateTick = e.lastUpdateTick[:last]
}

func (e *Engine) swap(i, j int) {
	if i == j {
		return
	}
	e.ids[i], e.ids[j] = e.ids[j], e.ids[i]
	e.pos[i], e.pos[j] = e.pos[j], e.pos[i]
	e.vel[i], e.vel[j] = e.vel[j], e.vel[i]
	e.mass[i], e.mass[j] = e.mass[j], e.mass[i]
	e.person[i], e.person[j] = e.person[j], e.person[i]
	e.tier[i], e.tier[j] = e.tier[j], e.tier[i]
	e.behavior[i], e.behavior[j] = e.behavior[j], e.behavior[i]
	e.targetID[i], e.targetID[j] = e.targetID[j], e.targetID[i]
	e.hasTarget[i], e.hasTarget[j] = e.hasTarget[j], e.hasTarget[i]
	e.decisionTimer[i], e.decisionTimer[j] = e.decisionTimer[j], e.decisionTimer[i]
	e.aim[i], e.aim[j] = e.aim[j], e.aim[i]
	e.thrust[i], e.thrust[j] = e.thrust[j], e.thrust[i]
	e.wantsBoost[i], e.wantsBoost[j] = e.wantsBoost[j], e.wantsBoost[i]
	e.wantsFire[i], e.wantsFire[j] = e.wantsFire[j], e.wantsFire[i]
	e.chargeTime[i], e.chargeTime[j] = e.chargeTime[j], e.chargeTime[i]
	e.lastUpdateTick[i], e.lastUpdateTick[j] = e.lastUpdateTick[j], e.lastUpdateTick[i]
	e.indexOf[e.ids[i]] = i
	e.indexOf[e.ids[j]] = j
}

// tierFor classifies a bot's LOD tier from its distance to the nearest
// human, or TierFull uniformly when dormancy is disabled (the
// deterministic reference path used by tests and low-population modes).
func (e *Engine) tierFor(dist float64, found bool) Tier {
	if !e.cfg.DormancyEnabled {
		return TierFull
	}
	if !found {
		return TierDormant
	}
	switch {
	case dist <= e.cfg.FullRadius:
		return TierFull
	case dist <= e.cfg.ReducedRadius:
		return TierReduced
	case dist <= e.cfg.DormantRadius:
		return TierDormant
	default:
		return TierCulled
	}
}

// eligibleThisTick reports whether a bot at index i with the given tier
// should run its decision/behavior update on tick, spreading Reduced and
// Dormant tier updates across ticks by index so they don't all land on
// the same tick.
func (e *Engine) eligibleThisTick(i int, tier Tier, tick world.Tick) bool {
	switch tier {
	case TierFull:
		return true
	case TierReduced:
		interval := world.Tick(e.cfg.ReducedUpdateInterval)
		if interval == 0 {
			interval = 1
		}
		return (tick+world.Tick(i))%interval == 0
	case TierDormant:
		interval := world.Tick(e.cfg.DormantUpdateInterval)
		if interval == 0 {
			interval = 1
		}
		return (tick+world.Tick(i))%interval == 0
	default:
		return false
	}
}

// Update mirrors live player state into the SoA slices, recomputes each
// bot's LOD tier, runs decision/behavior logic for every tier-eligible
// bot this tick, and returns the resulting PlayerInput for every bot
// that produced one. Culled bots and tier-ineligible Reduced/Dormant
// bots emit nothing: their existing velocity and drag carry them
// kinematically until their next eligible tick.
func (e *Engine) Update(w *world.World, tick world.Tick, dt float64) []world.PlayerInput {
	var zones *zoneIndex
	if e.cfg.ZoneQueriesEnabled {
		zones = buildZoneIndex(w, e.cfg.ZoneCellSize)
	}

	out := make([]world.PlayerInput, 0, len(e.ids))

	for i, id := range e.ids {
		p, ok := w.Players[id]
		if !ok || !p.Alive {
			continue
		}
		e.pos[i] = p.Pos
		e.vel[i] = p.Vel
		e.mass[i] = p.Mass

		var dist float64
		var found bool
		if zones != nil {
			_, dist, found = zones.nearestHuman(p.Pos)
		} else {
			dist, found = nearestHumanBrute(w, p.Pos)
		}
		e.tier[i] = e.tierFor(dist, found)

		if !e.eligibleThisTick(i, e.tier[i], tick) {
			continue
		}

		e.decisionTimer[i] -= dt * float64(tickGap(e, i))
		if e.decisionTimer[i] <= 0 {
			interval := e.ai.DecisionInterval
			jitter := 1 + (e.rng.Float64()*2-1)*e.person[i].ReactionVariance
			e.decisionTimer[i] = interval * jitter
			e.decideBehavior(w, i, p)
		}

		e.executeBehavior(w, i, p, dt)

		in := world.PlayerInput{
			Player:       id,
			Sequence:     uint64(tick),
			Tick:         tick,
			Thrust:       e.thrust[i],
			Aim:          e.aim[i],
			Boost:        e.wantsBoost[i],
			Fire:         e.wantsFire[i],
			FireReleased: !e.wantsFire[i] && e.chargeTime[i] > 0,
		}
		out = append(out, in)
	}

	return out
}

// tickGap returns the update interval of the bot's current tier (1 for
// Full), the number of ticks between its updates while it stays in that
// tier, so its decision timer decays by that amount per update.
func tickGap(e *Engine, i int) int {
	switch e.tier[i] {
	case TierReduced:
		if e.cfg.ReducedUpdateInterval > 0 {
			return e.cfg.ReducedUpdateInterval
		}
	case TierDormant:
		if e.cfg.DormantUpdateInterval > 0 {
			return e.cfg.DormantUpdateInterval
		}
	}
	return 1
}

// nearestHumanBrute is the O(n) fallback used when zone queries are
// disabled, scanning every alive human directly.
func nearestHumanBrute(w *world.World, from vecmath.Vec2) (float64, bool) {
	bestDsq := 0.0
	found := false
	for _, p := range w.Players {
		if !p.Alive || p.IsBot {
			continue
		}
		d := p.Pos.DistanceSq(from)
		if !found || d < bestDsq {
			bestDsq, found = d, true
		}
	}
	if !found {
		return 0, false
	}
	return math.Sqrt(bestDsq), found
}
