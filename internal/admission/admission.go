// Package admission decides whether a newly connecting client may join
// as a player or spectator, consulting the configured caps and the
// live performance governor status so the server degrades gracefully
// under load instead of accepting connections it can't serve well.
package admission

import (
	"fmt"

	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/governor"
)

// Controller answers admission questions for the transport layer. It
// holds no connection state of its own: every call reads the current
// player/spectator counts and governor status at the moment of the
// call.
type Controller struct {
	cfg     config.ServerConfig
	monitor *governor.Monitor
}

// New builds a Controller that enforces cfg's caps using monitor's live
// status.
func New(cfg config.ServerConfig, monitor *governor.Monitor) *Controller {
	return &Controller{cfg: cfg, monitor: monitor}
}

// CanAcceptPlayer reports whether a new player connection should be
// admitted: under the configured cap and the governor isn't telling
// the rest of the system to shed load.
func (c *Controller) CanAcceptPlayer(currentPlayers int) bool {
	if currentPlayers >= c.cfg.MaxPlayers {
		return false
	}
	return c.monitor.Status().CanAcceptPlayers()
}

// CanAcceptSpectator reports whether a new spectator connection should
// be admitted. Spectators don't feed the simulation, only the AOI
// filter and delta encoder, so they're gated on the player cap's
// spectator counterpart only, not governor status: a server too loaded
// to accept players can still afford to let existing viewers in.
func (c *Controller) CanAcceptSpectator(currentSpectators int) bool {
	return currentSpectators < c.cfg.MaxSpectators
}

// RejectionReason explains why CanAcceptPlayer or CanAcceptSpectator
// would currently refuse a connection of the given kind, for inclusion
// in a JoinRejected message. Returns "" if the connection would be
// accepted.
func (c *Controller) RejectionReason(currentPlayers, currentSpectators int, wantsSpectator bool) string {
	if wantsSpectator {
		if currentSpectators >= c.cfg.MaxSpectators {
			return fmt.Sprintf("spectator slots full (%d/%d)", currentSpectators, c.cfg.MaxSpectators)
		}
		return ""
	}
	if currentPlayers >= c.cfg.MaxPlayers {
		return fmt.Sprintf("server full (%d/%d players)", currentPlayers, c.cfg.MaxPlayers)
	}
	if !c.monitor.Status().CanAcceptPlayers() {
		return fmt.Sprintf("server performance degraded (%s), not accepting new players", c.monitor.Status())
	}
	return ""
}

// CanRespawnBot reports whether the governor currently permits the bot
// engine to backfill a despawned bot, letting admission and respawn
// policy share one source of truth for "is the server healthy enough
// to add more simulated load".
func (c *Controller) CanRespawnBot() bool {
	return c.monitor.Status().CanRespawnBots()
}
