// Package link is the viewer's WebSocket endpoint. A single scanning agent
// dials in; its text frames are handed to the frame loop through Inbox and
// operator commands are written back with Send.
package link

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Eirikalv1/cc-websockets/internal/config"
	"github.com/Eirikalv1/cc-websockets/internal/logging"
	"github.com/Eirikalv1/cc-websockets/internal/metrics"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait / 2
	outQueue   = 16
)

var (
	// ErrNoScanner is returned by Send while no scanner is connected.
	ErrNoScanner = errors.New("no scanner connected")
	// ErrBusy is returned by Send when the outbound queue is full.
	ErrBusy = errors.New("scanner outbound queue full")
)

// EventKind tells connection changes apart from messages.
type EventKind int

const (
	EventConnected EventKind = iota
	EventMessage
	EventDisconnected
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventMessage:
		return "message"
	case EventDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Event is delivered on the inbox. Text is set for EventMessage.
type Event struct {
	Kind    EventKind
	Session string
	Text    string
}

type session struct {
	id  string
	out chan string
}

// Server accepts one scanner at a time.
type Server struct {
	cfg     config.LinkConfig
	log     *logging.Logger
	metrics *metrics.Metrics

	upgrader websocket.Upgrader
	inbox    chan Event

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	current *session
	httpSrv *http.Server
}

// NewServer builds the endpoint. m may be nil.
func NewServer(cfg config.LinkConfig, logger *logging.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	size := cfg.InboxSize
	if size < 1 {
		size = config.Defaults().Link.InboxSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:     cfg,
		log:     logger,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 16 * 1024,
			// Scanners are game clients, not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		inbox:  make(chan Event, size),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Inbox delivers scanner events in arrival order. The frame loop drains it.
func (s *Server) Inbox() <-chan Event {
	return s.inbox
}

// Handler routes the WebSocket path and, when configured, the metrics path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	path := s.cfg.Path
	if path == "" {
		path = "/"
	}
	mux.HandleFunc(path, s.serveWS)
	if s.cfg.MetricsPath != "" && s.metrics != nil {
		mux.Handle(s.cfg.MetricsPath, s.metrics.Handler())
	}
	return mux
}

// ListenAndServe serves on cfg.Listen until Close is called.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	s.log.Infof("listening for scanner on %s%s", s.cfg.Listen, s.cfg.Path)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the listener and ends the current session.
func (s *Server) Close() error {
	s.cancel()
	s.mu.Lock()
	srv := s.httpSrv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	return srv.Shutdown(ctx)
}

// Connected returns the id of the current session, if any.
func (s *Server) Connected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", false
	}
	return s.current.id, true
}

// Send queues cmd for the connected scanner.
func (s *Server) Send(cmd string) error {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return ErrNoScanner
	}
	select {
	case cur.out <- cmd:
		s.metrics.CommandSent()
		return nil
	default:
		return ErrBusy
	}
}

func (s *Server) attach() (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return nil, false
	}
	s.current = &session{id: uuid.NewString(), out: make(chan string, outQueue)}
	return s.current, true
}

func (s *Server) detach(sess *session) {
	s.mu.Lock()
	if s.current == sess {
		s.current = nil
	}
	s.mu.Unlock()
}

func (s *Server) deliver(ctx context.Context, ev Event) bool {
	select {
	case s.inbox <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Server) serveWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		s.log.Warnf("upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	sess, ok := s.attach()
	if !ok {
		s.log.Warnf("rejecting second scanner from %s", r.RemoteAddr)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "scanner already connected"),
			time.Now().Add(time.Second))
		return
	}
	defer s.detach(sess)

	s.log.Infof("scanner %s connected from %s", sess.id, r.RemoteAddr)
	s.metrics.ScannerConnected()
	defer s.metrics.ScannerDisconnected()

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	if !s.deliver(ctx, Event{Kind: EventConnected, Session: sess.id}) {
		return
	}

	go s.writeLoop(ctx, cancel, conn, sess)

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warnf("scanner %s: %v", sess.id, err)
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		if typ != websocket.TextMessage {
			continue
		}
		if !s.deliver(ctx, Event{Kind: EventMessage, Session: sess.id, Text: string(msg)}) {
			break
		}
	}
	cancel()

	s.log.Infof("scanner %s disconnected", sess.id)
	// The frame loop may already be gone on shutdown.
	select {
	case s.inbox <- Event{Kind: EventDisconnected, Session: sess.id}:
	case <-s.ctx.Done():
	}
}

func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sess *session) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
			return
		case cmd := <-sess.out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(cmd)); err != nil {
				s.log.Warnf("send to scanner %s: %v", sess.id, err)
				cancel()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				cancel()
				return
			}
		}
	}
}
