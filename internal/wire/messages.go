package wire

import (
	"fmt"

	"github.com/hknc0/orbit-core/internal/aoi"
	"github.com/hknc0/orbit-core/internal/delta"
	"github.com/hknc0/orbit-core/internal/vecmath"
	"github.com/hknc0/orbit-core/internal/world"
)

// ClientMsgType discriminates client->server message bodies. Values are
// stable across the protocol's lifetime; append, never renumber.
type ClientMsgType uint32

const (
	ClientJoinRequest ClientMsgType = iota
	ClientInput
	ClientLeave
	ClientPing
	ClientSnapshotAck
	ClientSpectateTarget
	ClientSwitchToPlayer
	ClientViewportInfo
)

// ServerMsgType discriminates server->client message bodies.
type ServerMsgType uint32

const (
	ServerJoinAccepted ServerMsgType = iota
	ServerJoinRejected
	ServerSnapshot
	ServerDelta
	ServerEvent
	ServerPong
	ServerKicked
	ServerPhaseChange
	ServerSpectatorModeChanged
)

func writeVec2(w *Writer, v vecmath.Vec2) {
	w.WriteF32(v.X)
	w.WriteF32(v.Y)
}

func readVec2(r *Reader) (vecmath.Vec2, error) {
	x, err := r.ReadF32()
	if err != nil {
		return vecmath.Zero, err
	}
	y, err := r.ReadF32()
	if err != nil {
		return vecmath.Zero, err
	}
	return vecmath.Vec2{X: x, Y: y}, nil
}

// --- client -> server ---

// JoinRequest asks to join as a player under the given display name.
type JoinRequest struct{ Name string }

// InputMessage carries one tick's control state from a connected client.
// It maps directly onto world.PlayerInput.
type InputMessage struct {
	Sequence     uint64
	Thrust       vecmath.Vec2
	Aim          vecmath.Vec2
	Boost        bool
	Fire         bool
	FireReleased bool
}

// LeaveMessage asks the server to remove the sender's player.
type LeaveMessage struct{}

// PingMessage carries a client-chosen opaque timestamp echoed by Pong.
type PingMessage struct{ Nonce uint64 }

// SnapshotAckMessage acknowledges receipt of a full or delta update up
// to and including Tick, letting the delta encoder use that tick's
// snapshot as its baseline.
type SnapshotAckMessage struct{ Tick world.Tick }

// SpectateTargetMessage asks to follow a specific player as a spectator.
type SpectateTargetMessage struct{ Target world.PlayerId }

// SwitchToPlayerMessage asks a spectating session to take control of a
// player (e.g. after the original controller disconnected).
type SwitchToPlayerMessage struct{ Target world.PlayerId }

// ViewportInfoMessage reports the client's current viewport zoom, which
// drives the AOI radius.
type ViewportInfoMessage struct{ Zoom float64 }

// EncodeJoinRequest serializes a JoinRequest message body.
func EncodeJoinRequest(m JoinRequest) []byte {
	w := NewWriter(16 + len(m.Name))
	w.WriteU32(uint32(ClientJoinRequest))
	w.WriteString(m.Name)
	return w.Bytes()
}

// EncodeInput serializes an InputMessage body.
func EncodeInput(m InputMessage) []byte {
	w := NewWriter(48)
	w.WriteU32(uint32(ClientInput))
	w.WriteU64(m.Sequence)
	writeVec2(w, m.Thrust)
	writeVec2(w, m.Aim)
	w.WriteBool(m.Boost)
	w.WriteBool(m.Fire)
	w.WriteBool(m.FireReleased)
	return w.Bytes()
}

// EncodeLeave serializes a LeaveMessage body.
func EncodeLeave() []byte {
	w := NewWriter(4)
	w.WriteU32(uint32(ClientLeave))
	return w.Bytes()
}

// EncodePing serializes a PingMessage body.
func EncodePing(m PingMessage) []byte {
	w := NewWriter(12)
	w.WriteU32(uint32(ClientPing))
	w.WriteU64(m.Nonce)
	return w.Bytes()
}

// EncodeSnapshotAck serializes a SnapshotAckMessage body.
func EncodeSnapshotAck(m SnapshotAckMessage) []byte {
	w := NewWriter(12)
	w.WriteU32(uint32(ClientSnapshotAck))
	w.WriteU64(uint64(m.Tick))
	return w.Bytes()
}

// EncodeSpectateTarget serializes a SpectateTargetMessage body.
func EncodeSpectateTarget(m SpectateTargetMessage) []byte {
	w := NewWriter(24)
	w.WriteU32(uint32(ClientSpectateTarget))
	w.WriteUUID(m.Target)
	return w.Bytes()
}

// EncodeSwitchToPlayer serializes a SwitchToPlayerMessage body.
func EncodeSwitchToPlayer(m SwitchToPlayerMessage) []byte {
	w := NewWriter(24)
	w.WriteU32(uint32(ClientSwitchToPlayer))
	w.WriteUUID(m.Target)
	return w.Bytes()
}

// EncodeViewportInfo serializes a ViewportInfoMessage body.
func EncodeViewportInfo(m ViewportInfoMessage) []byte {
	w := NewWriter(8)
	w.WriteU32(uint32(ClientViewportInfo))
	w.WriteF32(m.Zoom)
	return w.Bytes()
}

// DecodeClientMessage reads the discriminant from body and returns the
// decoded message value (one of the client message struct types above)
// along with its ClientMsgType.
func DecodeClientMessage(body []byte) (ClientMsgType, any, error) {
	r := NewReader(body)
	t, err := r.ReadU32()
	if err != nil {
		return 0, nil, err
	}
	switch ClientMsgType(t) {
	case ClientJoinRequest:
		name, err := r.ReadString()
		return ClientJoinRequest, JoinRequest{Name: name}, err
	case ClientInput:
		seq, err := r.ReadU64()
		if err != nil {
			return 0, nil, err
		}
		thrust, err := readVec2(r)
		if err != nil {
			return 0, nil, err
		}
		aim, err := readVec2(r)
		if err != nil {
			return 0, nil, err
		}
		boost, err := r.ReadBool()
		if err != nil {
			return 0, nil, err
		}
		fire, err := r.ReadBool()
		if err != nil {
			return 0, nil, err
		}
		released, err := r.ReadBool()
		return ClientInput, InputMessage{Sequence: seq, Thrust: thrust, Aim: aim, Boost: boost, Fire: fire, FireReleased: released}, err
	case ClientLeave:
		return ClientLeave, LeaveMessage{}, nil
	case ClientPing:
		nonce, err := r.ReadU64()
		return ClientPing, PingMessage{Nonce: nonce}, err
	case ClientSnapshotAck:
		tick, err := r.ReadU64()
		return ClientSnapshotAck, SnapshotAckMessage{Tick: world.Tick(tick)}, err
	case ClientSpectateTarget:
		id, err := r.ReadUUID()
		return ClientSpectateTarget, SpectateTargetMessage{Target: id}, err
	case ClientSwitchToPlayer:
		id, err := r.ReadUUID()
		return ClientSwitchToPlayer, SwitchToPlayerMessage{Target: id}, err
	case ClientViewportInfo:
		zoom, err := r.ReadF32()
		return ClientViewportInfo, ViewportInfoMessage{Zoom: zoom}, err
	default:
		return 0, nil, fmt.Errorf("wire: unknown client message type %d", t)
	}
}

// ToPlayerInput converts a decoded InputMessage into the shared
// world.PlayerInput the tick scheduler consumes, tagging it with the
// sender's player id.
func (m InputMessage) ToPlayerInput(player world.PlayerId) world.PlayerInput {
	return world.PlayerInput{
		Player:       player,
		Sequence:     m.Sequence,
		Thrust:       m.Thrust,
		Aim:          m.Aim,
		Boost:        m.Boost,
		Fire:         m.Fire,
		FireReleased: m.FireReleased,
	}
}

// --- server -> client ---

// JoinAcceptedMessage confirms admission and assigns the new player id.
// IsSpectator is true when the player slot cap was full but a
// spectator slot was available: the client gets a connection but no
// controllable player until it takes over a vacated one.
type JoinAcceptedMessage struct {
	Player      world.PlayerId
	Tick        world.Tick
	IsSpectator bool
}

// JoinRejectedMessage explains why admission failed.
type JoinRejectedMessage struct{ Reason string }

// EventMessage is the wire form of one world.Event; the payload is
// flattened to the handful of numeric/string/uuid fields any payload
// variant uses, with zero values where a given event type doesn't use
// a field.
type EventMessage struct {
	Type      world.EventType
	Tick      world.Tick
	A, B      world.PlayerId
	HasA      bool
	HasB      bool
	Name      string
	Pos       vecmath.Vec2
	Float     float64
	EntityRef uint64
}

// KickedMessage tells the client it has been disconnected and why.
type KickedMessage struct{ Reason string }

// PhaseChangeMessage announces a match phase transition.
type PhaseChangeMessage struct{ Phase world.MatchPhase }

// SpectatorModeChangedMessage tells a session whether it is now
// spectating, and if so which player it's attached to.
type SpectatorModeChangedMessage struct {
	Spectating bool
	Target     world.PlayerId
	HasTarget  bool
}

func EncodeJoinAccepted(m JoinAcceptedMessage) []byte {
	w := NewWriter(32)
	w.WriteU32(uint32(ServerJoinAccepted))
	w.WriteUUID(m.Player)
	w.WriteU64(uint64(m.Tick))
	w.WriteBool(m.IsSpectator)
	return w.Bytes()
}

func EncodeJoinRejected(m JoinRejectedMessage) []byte {
	w := NewWriter(16 + len(m.Reason))
	w.WriteU32(uint32(ServerJoinRejected))
	w.WriteString(m.Reason)
	return w.Bytes()
}

// EncodeSnapshot serializes a full aoi.Snapshot as a ServerSnapshot
// message.
func EncodeSnapshot(snap aoi.Snapshot) []byte {
	w := NewWriter(256)
	w.WriteU32(uint32(ServerSnapshot))
	w.WriteU64(uint64(snap.Tick))

	w.WriteU64(uint64(len(snap.Players)))
	for _, p := range snap.Players {
		writePlayerView(w, p)
	}
	w.WriteU64(uint64(len(snap.Projectiles)))
	for _, pr := range snap.Projectiles {
		writeProjectileView(w, pr)
	}
	w.WriteU64(uint64(len(snap.Debris)))
	for _, d := range snap.Debris {
		writeDebrisView(w, d)
	}
	w.WriteU64(uint64(len(snap.Wells)))
	for _, well := range snap.Wells {
		writeWellView(w, well)
	}
	return w.Bytes()
}

func writePlayerView(w *Writer, p aoi.PlayerView) {
	w.WriteUUID(p.ID)
	w.WriteString(p.Name)
	writeVec2(w, p.Pos)
	writeVec2(w, p.Vel)
	w.WriteF32(p.Rotation)
	w.WriteF32(p.Mass)
	w.WriteBool(p.Alive)
	w.WriteU32(uint32(p.Kills))
	w.WriteU32(uint32(p.Deaths))
	w.WriteF32(p.SpawnProtection)
	w.WriteBool(p.IsBot)
	w.WriteU32(uint32(p.ColorIndex))
}

func readPlayerView(r *Reader) (aoi.PlayerView, error) {
	var p aoi.PlayerView
	var err error
	if p.ID, err = r.ReadUUID(); err != nil {
		return p, err
	}
	if p.Name, err = r.ReadString(); err != nil {
		return p, err
	}
	if p.Pos, err = readVec2(r); err != nil {
		return p, err
	}
	if p.Vel, err = readVec2(r); err != nil {
		return p, err
	}
	if p.Rotation, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.Mass, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.Alive, err = r.ReadBool(); err != nil {
		return p, err
	}
	kills, err := r.ReadU32()
	if err != nil {
		return p, err
	}
	p.Kills = int(kills)
	deaths, err := r.ReadU32()
	if err != nil {
		return p, err
	}
	p.Deaths = int(deaths)
	if p.SpawnProtection, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.IsBot, err = r.ReadBool(); err != nil {
		return p, err
	}
	colorIndex, err := r.ReadU32()
	p.ColorIndex = int(colorIndex)
	return p, err
}

func writeProjectileView(w *Writer, pr aoi.ProjectileView) {
	w.WriteU64(pr.ID)
	w.WriteUUID(pr.Owner)
	writeVec2(w, pr.Pos)
	writeVec2(w, pr.Vel)
	w.WriteF32(pr.Mass)
	w.WriteF32(pr.Lifetime)
}

func readProjectileView(r *Reader) (aoi.ProjectileView, error) {
	var pr aoi.ProjectileView
	var err error
	if pr.ID, err = r.ReadU64(); err != nil {
		return pr, err
	}
	if pr.Owner, err = r.ReadUUID(); err != nil {
		return pr, err
	}
	if pr.Pos, err = readVec2(r); err != nil {
		return pr, err
	}
	if pr.Vel, err = readVec2(r); err != nil {
		return pr, err
	}
	if pr.Mass, err = r.ReadF32(); err != nil {
		return pr, err
	}
	pr.Lifetime, err = r.ReadF32()
	return pr, err
}

func writeDebrisView(w *Writer, d aoi.DebrisView) {
	w.WriteU64(d.ID)
	writeVec2(w, d.Pos)
	w.WriteU32(uint32(d.Size))
}

func readDebrisView(r *Reader) (aoi.DebrisView, error) {
	var d aoi.DebrisView
	var err error
	if d.ID, err = r.ReadU64(); err != nil {
		return d, err
	}
	if d.Pos, err = readVec2(r); err != nil {
		return d, err
	}
	size, err := r.ReadU32()
	d.Size = world.DebrisSize(size)
	return d, err
}

func writeWellView(w *Writer, well aoi.WellView) {
	w.WriteU64(well.ID)
	writeVec2(w, well.Pos)
	w.WriteF32(well.Mass)
	w.WriteF32(well.CoreRadius)
	w.WriteU32(uint32(well.Phase))
	w.WriteF32(well.WaveRadius)
}

func readWellView(r *Reader) (aoi.WellView, error) {
	var well aoi.WellView
	var err error
	if well.ID, err = r.ReadU64(); err != nil {
		return well, err
	}
	if well.Pos, err = readVec2(r); err != nil {
		return well, err
	}
	if well.Mass, err = r.ReadF32(); err != nil {
		return well, err
	}
	if well.CoreRadius, err = r.ReadF32(); err != nil {
		return well, err
	}
	phase, err := r.ReadU32()
	if err != nil {
		return well, err
	}
	well.Phase = world.WellPhase(phase)
	well.WaveRadius, err = r.ReadF32()
	return well, err
}

// DecodeSnapshot reverses EncodeSnapshot. body starts with the
// discriminant (PeekServerMsgType does not consume it), which
// DecodeSnapshot reads and skips, for symmetry with DecodeClientMessage.
func DecodeSnapshot(body []byte) (aoi.Snapshot, error) {
	r := NewReader(body)
	if _, err := r.ReadU32(); err != nil {
		return aoi.Snapshot{}, err
	}
	tick, err := r.ReadU64()
	if err != nil {
		return aoi.Snapshot{}, err
	}
	snap := aoi.Snapshot{Tick: world.Tick(tick)}

	n, err := r.ReadU64()
	if err != nil {
		return snap, err
	}
	snap.Players = make([]aoi.PlayerView, n)
	for i := range snap.Players {
		if snap.Players[i], err = readPlayerView(r); err != nil {
			return snap, err
		}
	}

	n, err = r.ReadU64()
	if err != nil {
		return snap, err
	}
	snap.Projectiles = make([]aoi.ProjectileView, n)
	for i := range snap.Projectiles {
		if snap.Projectiles[i], err = readProjectileView(r); err != nil {
			return snap, err
		}
	}

	n, err = r.ReadU64()
	if err != nil {
		return snap, err
	}
	snap.Debris = make([]aoi.DebrisView, n)
	for i := range snap.Debris {
		if snap.Debris[i], err = readDebrisView(r); err != nil {
			return snap, err
		}
	}

	n, err = r.ReadU64()
	if err != nil {
		return snap, err
	}
	snap.Wells = make([]aoi.WellView, n)
	for i := range snap.Wells {
		if snap.Wells[i], err = readWellView(r); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

// EncodeDelta serializes a delta.Update as a ServerDelta message.
func EncodeDelta(u delta.Update) []byte {
	w := NewWriter(128)
	w.WriteU32(uint32(ServerDelta))
	w.WriteU64(uint64(u.Tick))
	w.WriteU64(uint64(u.BaseTick))
	w.WriteBool(u.Full)

	w.WriteU64(uint64(len(u.PlayerUpdates)))
	for _, pd := range u.PlayerUpdates {
		w.WriteUUID(pd.ID)
		w.WriteU8(uint8(pd.Changed))
		if pd.HasPos() {
			writeVec2(w, pd.Pos)
		}
		if pd.HasVel() {
			writeVec2(w, pd.Vel)
		}
		if pd.HasRotation() {
			w.WriteF32(pd.Rotation)
		}
		if pd.HasMass() {
			w.WriteF32(pd.Mass)
		}
		w.WriteBool(pd.Alive)
		w.WriteU32(uint32(pd.Kills))
		w.WriteU32(uint32(pd.Deaths))
		w.WriteF32(pd.SpawnProtection)
	}

	w.WriteU64(uint64(len(u.ProjectileUpdates)))
	for _, pd := range u.ProjectileUpdates {
		w.WriteU64(pd.ID)
		w.WriteUUID(pd.Owner)
		w.WriteU8(uint8(pd.Changed))
		if pd.HasPos() {
			writeVec2(w, pd.Pos)
		}
		if pd.HasVel() {
			writeVec2(w, pd.Vel)
		}
	}

	w.WriteU64(uint64(len(u.RemovedProjectiles)))
	for _, id := range u.RemovedProjectiles {
		w.WriteU64(id)
	}

	w.WriteU64(uint64(len(u.Debris)))
	for _, d := range u.Debris {
		writeDebrisView(w, d)
	}

	return w.Bytes()
}

func EncodeEvent(m EventMessage) []byte {
	w := NewWriter(64)
	w.WriteU32(uint32(ServerEvent))
	w.WriteU32(uint32(m.Type))
	w.WriteU64(uint64(m.Tick))
	w.WriteUUID(m.A)
	w.WriteBool(m.HasA)
	w.WriteUUID(m.B)
	w.WriteBool(m.HasB)
	w.WriteString(m.Name)
	writeVec2(w, m.Pos)
	w.WriteF32(m.Float)
	w.WriteU64(m.EntityRef)
	return w.Bytes()
}

func EncodePong(nonce uint64) []byte {
	w := NewWriter(12)
	w.WriteU32(uint32(ServerPong))
	w.WriteU64(nonce)
	return w.Bytes()
}

func EncodeKicked(m KickedMessage) []byte {
	w := NewWriter(16 + len(m.Reason))
	w.WriteU32(uint32(ServerKicked))
	w.WriteString(m.Reason)
	return w.Bytes()
}

func EncodePhaseChange(m PhaseChangeMessage) []byte {
	w := NewWriter(8)
	w.WriteU32(uint32(ServerPhaseChange))
	w.WriteU32(uint32(m.Phase))
	return w.Bytes()
}

func EncodeSpectatorModeChanged(m SpectatorModeChangedMessage) []byte {
	w := NewWriter(24)
	w.WriteU32(uint32(ServerSpectatorModeChanged))
	w.WriteBool(m.Spectating)
	w.WriteUUID(m.Target)
	w.WriteBool(m.HasTarget)
	return w.Bytes()
}

// PeekServerMsgType reads the leading discriminant without consuming
// the rest of body, so a dispatcher can pick the right Decode* call.
func PeekServerMsgType(body []byte) (ServerMsgType, error) {
	r := NewReader(body)
	t, err := r.ReadU32()
	return ServerMsgType(t), err
}

func DecodeJoinAccepted(body []byte) (JoinAcceptedMessage, error) {
	r := NewReader(body)
	var m JoinAcceptedMessage
	if _, err := r.ReadU32(); err != nil {
		return m, err
	}
	id, err := r.ReadUUID()
	if err != nil {
		return m, err
	}
	tick, err := r.ReadU64()
	if err != nil {
		return m, err
	}
	isSpectator, err := r.ReadBool()
	return JoinAcceptedMessage{Player: id, Tick: world.Tick(tick), IsSpectator: isSpectator}, err
}

func DecodeJoinRejected(body []byte) (JoinRejectedMessage, error) {
	r := NewReader(body)
	if _, err := r.ReadU32(); err != nil {
		return JoinRejectedMessage{}, err
	}
	reason, err := r.ReadString()
	return JoinRejectedMessage{Reason: reason}, err
}

func DecodeEvent(body []byte) (EventMessage, error) {
	r := NewReader(body)
	var m EventMessage
	if _, err := r.ReadU32(); err != nil {
		return m, err
	}
	typ, err := r.ReadU32()
	if err != nil {
		return m, err
	}
	m.Type = world.EventType(typ)
	tick, err := r.ReadU64()
	if err != nil {
		return m, err
	}
	m.Tick = world.Tick(tick)
	if m.A, err = r.ReadUUID(); err != nil {
		return m, err
	}
	if m.HasA, err = r.ReadBool(); err != nil {
		return m, err
	}
	if m.B, err = r.ReadUUID(); err != nil {
		return m, err
	}
	if m.HasB, err = r.ReadBool(); err != nil {
		return m, err
	}
	if m.Name, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.Pos, err = readVec2(r); err != nil {
		return m, err
	}
	if m.Float, err = r.ReadF32(); err != nil {
		return m, err
	}
	m.EntityRef, err = r.ReadU64()
	return m, err
}

func DecodePong(body []byte) (uint64, error) {
	r := NewReader(body)
	if _, err := r.ReadU32(); err != nil {
		return 0, err
	}
	return r.ReadU64()
}

func DecodeKicked(body []byte) (KickedMessage, error) {
	r := NewReader(body)
	if _, err := r.ReadU32(); err != nil {
		return KickedMessage{}, err
	}
	reason, err := r.ReadString()
	return KickedMessage{Reason: reason}, err
}

func DecodePhaseChange(body []byte) (PhaseChangeMessage, error) {
	r := NewReader(body)
	if _, err := r.ReadU32(); err != nil {
		return PhaseChangeMessage{}, err
	}
	phase, err := r.ReadU32()
	return PhaseChangeMessage{Phase: world.MatchPhase(phase)}, err
}

func DecodeSpectatorModeChanged(body []byte) (SpectatorModeChangedMessage, error) {
	r := NewReader(body)
	var m SpectatorModeChangedMessage
	if _, err := r.ReadU32(); err != nil {
		return m, err
	}
	var err error
	if m.Spectating, err = r.ReadBool(); err != nil {
		return m, err
	}
	if m.Target, err = r.ReadUUID(); err != nil {
		return m, err
	}
	m.HasTarget, err = r.ReadBool()
	return m, err
}

// DecodeDelta reverses EncodeDelta.
func DecodeDelta(body []byte) (delta.Update, error) {
	r := NewReader(body)
	var u delta.Update
	if _, err := r.ReadU32(); err != nil {
		return u, err
	}
	tick, err := r.ReadU64()
	if err != nil {
		return u, err
	}
	u.Tick = world.Tick(tick)
	baseTick, err := r.ReadU64()
	if err != nil {
		return u, err
	}
	u.BaseTick = world.Tick(baseTick)
	if u.Full, err = r.ReadBool(); err != nil {
		return u, err
	}

	n, err := r.ReadU64()
	if err != nil {
		return u, err
	}
	u.PlayerUpdates = make([]delta.PlayerDelta, n)
	for i := range u.PlayerUpdates {
		pd := &u.PlayerUpdates[i]
		if pd.ID, err = r.ReadUUID(); err != nil {
			return u, err
		}
		mask, err := r.ReadU8()
		if err != nil {
			return u, err
		}
		pd.Changed = delta.FieldMask(mask)
		if pd.HasPos() {
			if pd.Pos, err = readVec2(r); err != nil {
				return u, err
			}
		}
		if pd.HasVel() {
			if pd.Vel, err = readVec2(r); err != nil {
				return u, err
			}
		}
		if pd.HasRotation() {
			if pd.Rotation, err = r.ReadF32(); err != nil {
				return u, err
			}
		}
		if pd.HasMass() {
			if pd.Mass, err = r.ReadF32(); err != nil {
				return u, err
			}
		}
		if pd.Alive, err = r.ReadBool(); err != nil {
			return u, err
		}
		kills, err := r.ReadU32()
		if err != nil {
			return u, err
		}
		pd.Kills = int(kills)
		deaths, err := r.ReadU32()
		if err != nil {
			return u, err
		}
		pd.Deaths = int(deaths)
		if pd.SpawnProtection, err = r.ReadF32(); err != nil {
			return u, err
		}
	}

	n, err = r.ReadU64()
	if err != nil {
		return u, err
	}
	u.ProjectileUpdates = make([]delta.ProjectileDelta, n)
	for i := range u.ProjectileUpdates {
		pd := &u.ProjectileUpdates[i]
		if pd.ID, err = r.ReadU64(); err != nil {
			return u, err
		}
		if pd.Owner, err = r.ReadUUID(); err != nil {
			return u, err
		}
		mask, err := r.ReadU8()
		if err != nil {
			return u, err
		}
		pd.Changed = delta.FieldMask(mask)
		if pd.HasPos() {
			if pd.Pos, err = readVec2(r); err != nil {
				return u, err
			}
		}
		if pd.HasVel() {
			if pd.Vel, err = readVec2(r); err != nil {
				return u, err
			}
		}
	}

	n, err = r.ReadU64()
	if err != nil {
		return u, err
	}
	u.RemovedProjectiles = make([]world.EntityId, n)
	for i := range u.RemovedProjectiles {
		if u.RemovedProjectiles[i], err = r.ReadU64(); err != nil {
			return u, err
		}
	}

	n, err = r.ReadU64()
	if err != nil {
		return u, err
	}
	u.Debris = make([]aoi.DebrisView, n)
	for i := range u.Debris {
		if u.Debris[i], err = readDebrisView(r); err != nil {
			return u, err
		}
	}

	return u, nil
}
