package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := &http.Request{Header: http.Header{"X-Forwarded-For": {"9.9.9.9, 1.1.1.1"}}, RemoteAddr: "5.5.5.5:1234"}
	if got := clientIP(r); got != "9.9.9.9" {
		t.Errorf("clientIP = %q, want 9.9.9.9", got)
	}
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	r := &http.Request{Header: http.Header{}, RemoteAddr: "5.5.5.5:1234"}
	if got := clientIP(r); got != "5.5.5.5" {
		t.Errorf("clientIP = %q, want 5.5.5.5", got)
	}
}

func TestCheckOriginAllowsLocalhostAndConfiguredSuffixes(t *testing.T) {
	s := NewServer(Options{AllowedOrigins: []string{"https://example.com"}}, nil, zerolog.Nop())

	cases := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:3000", true},
		{"http://127.0.0.1:9000", true},
		{"https://example.com", true},
		{"https://sub.example.com", true},
		{"https://evil.com", false},
		{"", false},
	}
	for _, c := range cases {
		r := &http.Request{Header: http.Header{"Origin": {c.origin}}}
		if got := s.checkOrigin(r); got != c.want {
			t.Errorf("checkOrigin(%q) = %v, want %v", c.origin, got, c.want)
		}
	}
}

type recordingHandler struct {
	mu        sync.Mutex
	connected int
	messages  [][]byte
	closed    int
	gotConn   chan struct{}
	gotMsg    chan struct{}
	gotClose  chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		gotConn:  make(chan struct{}, 8),
		gotMsg:   make(chan struct{}, 8),
		gotClose: make(chan struct{}, 8),
	}
}

func (h *recordingHandler) OnConnect(c *Conn) {
	h.mu.Lock()
	h.connected++
	h.mu.Unlock()
	h.gotConn <- struct{}{}
}

func (h *recordingHandler) OnMessage(c *Conn, body []byte) {
	h.mu.Lock()
	h.messages = append(h.messages, body)
	h.mu.Unlock()
	h.gotMsg <- struct{}{}
}

func (h *recordingHandler) OnDisconnect(c *Conn) {
	h.mu.Lock()
	h.closed++
	h.mu.Unlock()
	h.gotClose <- struct{}{}
}

func TestServerAcceptsConnectionsAndDeliversMessages(t *testing.T) {
	handler := newRecordingHandler()
	srv := NewServer(Options{MaxConnsPerIP: 4, MaxTotalConns: 4, SendBufferSize: 8}, handler, zerolog.Nop())
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	select {
	case <-handler.gotConn:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnConnect")
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("hello")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case <-handler.gotMsg:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnMessage")
	}

	handler.mu.Lock()
	if len(handler.messages) != 1 || string(handler.messages[0]) != "hello" {
		t.Errorf("messages = %v, want [hello]", handler.messages)
	}
	handler.mu.Unlock()

	conn.Close()

	select {
	case <-handler.gotClose:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnDisconnect")
	}
}

func TestServerRejectsBeyondTotalCap(t *testing.T) {
	handler := newRecordingHandler()
	srv := NewServer(Options{MaxConnsPerIP: 4, MaxTotalConns: 1, SendBufferSize: 8}, handler, zerolog.Nop())
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	first, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("first dial failed: %v", err)
	}
	defer first.Close()

	select {
	case <-handler.gotConn:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first OnConnect")
	}

	_, _, err = websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected second connection to be rejected at total cap")
	}
}
