package wire

import "github.com/hknc0/orbit-core/internal/world"

// EncodeWorldEvent flattens a world.Event (whose Payload is one of the
// typed payload structs in internal/world/events.go) into the wire
// EventMessage shape and serializes it as a ServerEvent body. Unknown
// payload types encode as a bare event with no extra fields rather than
// panicking, since a future payload type arriving before this switch is
// updated should degrade, not crash the tick goroutine.
func EncodeWorldEvent(ev world.Event) []byte {
	m := EventMessage{Type: ev.Type, Tick: ev.Tick}
	switch p := ev.Payload.(type) {
	case world.PlayerKilledPayload:
		m.A, m.HasA = p.Victim, true
		if p.HasKiller {
			m.B, m.HasB = p.Killer, true
		}
	case world.PlayerJoinedPayload:
		m.A, m.HasA = p.Player, true
		m.Name = p.Name
	case world.PlayerLeftPayload:
		m.A, m.HasA = p.Player, true
	case world.MatchStartedPayload:
		// no fields
	case world.MatchEndedPayload:
		if p.HasWinner {
			m.A, m.HasA = p.Winner, true
		}
	case world.ZoneCollapsePayload:
		m.Float = p.NewSafeRadius
	case world.PlayerDeflectionPayload:
		m.A, m.HasA = p.A, true
		m.B, m.HasB = p.B, true
		m.Pos = p.Midpoint
		m.Float = p.Intensity
	case world.GravityWellChargingPayload:
		m.EntityRef = p.Well
	case world.GravityWaveExplosionPayload:
		m.EntityRef = p.Well
		m.Pos = p.Center
	case world.GravityWellDestroyedPayload:
		m.EntityRef = p.Well
	}
	return EncodeEvent(m)
}
