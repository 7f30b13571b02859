package main

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/hknc0/orbit-core/internal/admission"
	"github.com/hknc0/orbit-core/internal/config"
	"github.com/hknc0/orbit-core/internal/metrics"
	"github.com/hknc0/orbit-core/internal/session"
	"github.com/hknc0/orbit-core/internal/tick"
	"github.com/hknc0/orbit-core/internal/transport"
	"github.com/hknc0/orbit-core/internal/wire"
	"github.com/hknc0/orbit-core/internal/world"
)

// connHandler bridges the transport layer's raw connection events to
// the session table and tick scheduler: it decides admission on join,
// decodes every subsequent client message, and routes it to the
// session or scheduler method that applies it.
type connHandler struct {
	scheduler *tick.Scheduler
	sessions  *session.Table
	admission *admission.Controller
	cfg       config.AppConfig
	log       zerolog.Logger

	connections int64
	spectators  int64
}

func newConnHandler(s *tick.Scheduler, t *session.Table, a *admission.Controller, cfg config.AppConfig, log zerolog.Logger) *connHandler {
	return &connHandler{scheduler: s, sessions: t, admission: a, cfg: cfg, log: log}
}

func (h *connHandler) Connections() int { return int(atomic.LoadInt64(&h.connections)) }

func (h *connHandler) OnConnect(c *transport.Conn) {
	atomic.AddInt64(&h.connections, 1)
	metrics.SetConnectionsActive(h.Connections())
}

func (h *connHandler) OnDisconnect(c *transport.Conn) {
	atomic.AddInt64(&h.connections, -1)
	metrics.SetConnectionsActive(h.Connections())

	sess, ok := c.Data.(*session.Session)
	if !ok {
		return
	}
	if sess.Spectating() {
		atomic.AddInt64(&h.spectators, -1)
	}
	if pid, ok := sess.PlayerID(); ok {
		h.scheduler.RemovePlayer(pid)
	}
	h.sessions.Remove(sess.ID())
}

func (h *connHandler) OnMessage(c *transport.Conn, body []byte) {
	metrics.RecordBytesIn(len(body))
	metrics.RecordMessageIn()

	payload, err := wire.Unframe(body)
	if err != nil {
		h.log.Debug().Err(err).Msg("dropping malformed frame")
		return
	}

	typ, msg, err := wire.DecodeClientMessage(payload)
	if err != nil {
		h.log.Debug().Err(err).Msg("dropping undecodable message")
		return
	}

	sess, joined := c.Data.(*session.Session)

	if typ == wire.ClientJoinRequest {
		if joined {
			return // already joined; a second JoinRequest on the same connection is ignored
		}
		h.handleJoin(c, msg.(wire.JoinRequest))
		return
	}

	if !joined {
		return // every other message type requires a prior successful join
	}

	if !sess.AllowMessage() {
		return
	}

	sess.Touch()

	switch typ {
	case wire.ClientInput:
		if pid, ok := sess.PlayerID(); ok {
			h.scheduler.SubmitInput(pid, msg.(wire.InputMessage).ToPlayerInput(pid))
		}
	case wire.ClientLeave:
		c.Close()
	case wire.ClientPing:
		nonce := msg.(wire.PingMessage).Nonce
		c.Send(wire.PutFrame(wire.EncodePong(nonce)))
	case wire.ClientSnapshotAck:
		sess.SetAck(msg.(wire.SnapshotAckMessage).Tick)
	case wire.ClientSpectateTarget:
		target := msg.(wire.SpectateTargetMessage).Target
		if p, ok := h.scheduler.PlayerPtr(target); ok {
			if !sess.Spectating() {
				atomic.AddInt64(&h.spectators, 1)
			}
			sess.SetSpectateTarget(p)
		}
	case wire.ClientSwitchToPlayer:
		target := msg.(wire.SwitchToPlayerMessage).Target
		if p, ok := h.scheduler.PlayerPtr(target); ok {
			if sess.Spectating() {
				atomic.AddInt64(&h.spectators, -1)
			}
			sess.SetPlayer(p)
		}
	case wire.ClientViewportInfo:
		sess.SetZoom(msg.(wire.ViewportInfoMessage).Zoom)
	}
}

func (h *connHandler) handleJoin(c *transport.Conn, req wire.JoinRequest) {
	humans, _ := h.scheduler.PlayerCounts()
	spectators := int(atomic.LoadInt64(&h.spectators))

	asSpectator := false
	if !h.admission.CanAcceptPlayer(humans) {
		if !h.admission.CanAcceptSpectator(spectators) {
			reason := h.admission.RejectionReason(humans, spectators, false)
			c.Send(wire.PutFrame(wire.EncodeJoinRejected(wire.JoinRejectedMessage{Reason: reason})))
			c.Close()
			return
		}
		asSpectator = true
	}

	sess := session.New(h.cfg.Delta, c)
	c.Data = sess

	var playerID world.PlayerId
	var tickAtJoin world.Tick

	if asSpectator {
		atomic.AddInt64(&h.spectators, 1)
	} else {
		id, t := h.scheduler.AddPlayer(req.Name, false)
		playerID = id
		tickAtJoin = t
		if p, ok := h.scheduler.PlayerPtr(id); ok {
			sess.SetPlayer(p)
		}
	}

	h.sessions.Add(sess)
	c.Send(wire.PutFrame(wire.EncodeJoinAccepted(wire.JoinAcceptedMessage{
		Player:      playerID,
		Tick:        tickAtJoin,
		IsSpectator: asSpectator,
	})))
}
