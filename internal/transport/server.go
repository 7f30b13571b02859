package transport

import (
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler receives connection lifecycle and message events from a
// Server. Implementations live in the process wiring layer and
// typically attach a session.Session to Conn.Data on OnConnect.
type Handler interface {
	OnConnect(c *Conn)
	OnMessage(c *Conn, body []byte)
	OnDisconnect(c *Conn)
}

// Options configures a Server's limits and addressing.
type Options struct {
	MaxConnsPerIP  int
	MaxTotalConns  int
	SendBufferSize int
	AllowedOrigins []string // exact matches, in addition to localhost and subdomains of each entry
}

// Server upgrades incoming HTTP requests to WebSocket connections,
// enforcing per-IP and total connection caps and origin validation
// before handing the result to a Handler. It knows nothing about game
// state; everything after the handshake flows through Handler.
type Server struct {
	opts     Options
	handler  Handler
	log      zerolog.Logger
	limiter  *connLimiter
	upgrader websocket.Upgrader
	total    int64
}

func NewServer(opts Options, handler Handler, log zerolog.Logger) *Server {
	s := &Server{
		opts:    opts,
		handler: handler,
		log:     log,
		limiter: newConnLimiter(opts.MaxConnsPerIP),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// ServeHTTP implements http.Handler so the caller can mount it on a
// chi router (or any mux) at whatever path it likes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	if s.opts.MaxTotalConns > 0 && atomic.LoadInt64(&s.total) >= int64(s.opts.MaxTotalConns) {
		http.Error(w, "server at capacity", http.StatusServiceUnavailable)
		return
	}
	if !s.limiter.Allow(ip) {
		http.Error(w, "too many connections from this address", http.StatusTooManyRequests)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.limiter.Release(ip)
		s.log.Warn().Err(err).Str("ip", ip).Msg("websocket upgrade failed")
		return
	}

	atomic.AddInt64(&s.total, 1)
	conn := NewConn(ws, s.opts.SendBufferSize)
	s.handler.OnConnect(conn)

	go conn.WritePump()
	conn.ReadPump(
		func(body []byte) { s.handler.OnMessage(conn, body) },
		func() {
			atomic.AddInt64(&s.total, -1)
			s.limiter.Release(ip)
			s.handler.OnDisconnect(conn)
		},
	)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	if strings.HasPrefix(origin, "http://localhost") || strings.HasPrefix(origin, "http://127.0.0.1") {
		return true
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if origin == allowed {
			return true
		}
		if host := strings.TrimPrefix(strings.TrimPrefix(allowed, "https://"), "http://"); host != "" &&
			strings.HasSuffix(origin, "."+host) {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
