package aoi

import (
	"sort"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// Radius returns the AOI radius for a reported viewport zoom. zoom is
// clamped to the configured range before the base/zoom divide, so a
// malformed client-reported zoom can't blow the radius up or collapse
// it to zero.
func Radius(cfg config.AOIConfig, zoom float64) float64 {
	zoom = vecmath.Clamp(zoom, cfg.MinZoom, cfg.MaxZoom)
	return cfg.BaseRadius / zoom
}

// score ranks a player for leaderboard inclusion: kills dominate, mass
// breaks ties between equal kill counts.
func score(p *world.Player) float64 {
	return float64(p.Kills)*1_000_000 + p.Mass
}

// Filter builds one session's AOI snapshot: the session's own player
// (if it has one), every alive player within radius of center, the
// leaderboard top-N (deduplicated against what radius already
// selected), every well, and every projectile/debris within radius or
// owned by an already-included player.
func Filter(w *world.World, cfg config.AOIConfig, self world.PlayerId, hasSelf bool, center vecmath.Vec2, radius float64) Snapshot {
	included := make(map[world.PlayerId]bool, 64)
	snap := Snapshot{Tick: w.Tick}

	if hasSelf {
		if p, ok := w.Players[self]; ok {
			snap.Players = append(snap.Players, playerView(p))
			included[self] = true
		}
	}

	radiusSq := radius * radius
	for _, id := range w.PlayerOrder {
		p := w.Players[id]
		if !p.Alive || included[id] {
			continue
		}
		if p.Pos.DistanceSq(center) <= radiusSq {
			snap.Players = append(snap.Players, playerView(p))
			included[id] = true
		}
	}

	if len(w.Players) > cfg.TopN {
		for _, id := range topNByScore(w, cfg.TopN) {
			if included[id] {
				continue
			}
			snap.Players = append(snap.Players, playerView(w.Players[id]))
			included[id] = true
		}
	}

	for _, pr := range w.Projectiles {
		if included[pr.Owner] || pr.Pos.DistanceSq(center) <= radiusSq {
			snap.Projectiles = append(snap.Projectiles, projectileView(pr))
		}
	}

	for _, d := range w.Debris {
		if d.Pos.DistanceSq(center) <= radiusSq {
			snap.Debris = append(snap.Debris, debrisView(d))
		}
	}

	for _, well := range w.Arena.Wells {
		snap.Wells = append(snap.Wells, wellView(well))
	}

	return snap
}

// topNByScore returns up to n player ids ranked by score, descending.
func topNByScore(w *world.World, n int) []world.PlayerId {
	ids := make([]world.PlayerId, 0, len(w.PlayerOrder))
	for _, id := range w.PlayerOrder {
		if w.Players[id].Alive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return score(w.Players[ids[i]]) > score(w.Players[ids[j]])
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
