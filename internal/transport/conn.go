// Package transport implements the WebSocket edge: accepting client
// connections, running each one's read/write pumps, and handing
// decoded message bytes to a Handler supplied by the process wiring
// layer. It knows nothing about sessions, players, or the simulation;
// it only moves framed byte slices in and out of a network connection.
package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Conn wraps one upgraded WebSocket connection. Outbound frames are
// queued on a buffered channel and flushed by a dedicated writer
// goroutine, so a slow or stalled client can never block the caller
// that produced the frame (the tick scheduler, in practice). Data is
// free for the process wiring layer to stash its own session handle on,
// so transport never needs to import the session package.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte
	Data any

	closeOnce sync.Once
	done      chan struct{}
}

// NewConn wraps ws with an outbound queue of the given capacity.
func NewConn(ws *websocket.Conn, sendBuf int) *Conn {
	return &Conn{
		ws:   ws,
		send: make(chan []byte, sendBuf),
		done: make(chan struct{}),
	}
}

// Send enqueues frame for delivery without blocking. Returns false if
// the outbound queue is full or the connection is already closed, in
// which case the frame is dropped: per this server's backpressure
// policy, a full outbound channel means the frame is discarded and the
// caller (the delta encoder, via the session it's attached to) treats
// its baseline as invalidated rather than retrying.
func (c *Conn) Send(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Close shuts down the connection and both pumps. Safe to call more
// than once or concurrently with the pumps.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// WritePump flushes queued frames to the socket and keeps the
// connection alive with periodic pings. Runs until Close is called or
// a write fails, and is expected to be started in its own goroutine.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.Close()

	for {
		select {
		case frame, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			// flush whatever was already queued (e.g. a rejection message
			// sent just before Close) instead of dropping it on the floor.
			for {
				select {
				case frame := <-c.send:
					c.ws.SetWriteDeadline(time.Now().Add(writeWait))
					c.ws.WriteMessage(websocket.BinaryMessage, frame)
				default:
					return
				}
			}
		}
	}
}

// ReadPump reads framed messages from the socket and hands each body
// to onMessage, until the connection closes or a read fails, then
// calls onClose exactly once. Expected to be started in its own
// goroutine; blocks until the connection ends.
func (c *Conn) ReadPump(onMessage func(body []byte), onClose func()) {
	defer c.Close()
	defer onClose()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, body, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		onMessage(body)
	}
}
