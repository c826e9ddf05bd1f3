package reporting

import (
	"bufio"
	"net"
	"strings"
	"sync"

	"github.com/k9fne/fned/pkg/logger"
)

// RCONExecutor runs the external RCON command-line tool (spec.md
// §4.7: "RCON is executed by invoking an external command-line
// tool — this is explicitly an external collaborator").
type RCONExecutor interface {
	Execute(peerID, command string, args []string, slot int, mfid string) error
}

// Server is the length-prefixed TCP reporting channel.
type Server struct {
	Addr         string
	AllowedIPs   []string // "*" permits any source
	Bus          *Bus
	RCON         RCONExecutor
	Log          *logger.Logger
	ConfigSource func() []byte
	RulesSource  func() []byte

	mu       sync.Mutex
	clients  map[net.Conn]struct{}
	listener net.Listener
}

// NewServer creates a reporting server bound to addr.
func NewServer(addr string, allowed []string, bus *Bus) *Server {
	return &Server{
		Addr:       addr,
		AllowedIPs: allowed,
		Bus:        bus,
		clients:    make(map[net.Conn]struct{}),
	}
}

func (s *Server) allowed(addr net.Addr) bool {
	for _, a := range s.AllowedIPs {
		if a == "*" {
			return true
		}
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		host = addr.String()
	}
	for _, a := range s.AllowedIPs {
		if a == host {
			return true
		}
	}
	return false
}

// ListenAndServe blocks accepting connections until the listener is
// closed. Call Close (or cancel via a context watcher wrapping Close)
// to stop.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		if !s.allowed(conn.RemoteAddr()) {
			if s.Log != nil {
				s.Log.Warn("reporting client rejected", logger.String("remote", conn.RemoteAddr().String()))
			}
			conn.Close()
			continue
		}
		s.mu.Lock()
		s.clients[conn] = struct{}{}
		s.mu.Unlock()
		go s.serveClient(conn)
	}
}

// Close stops accepting new connections and closes all clients.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
	return nil
}

func (s *Server) serveClient(conn net.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	events := s.Bus.Subscribe(32)
	defer s.Bus.Unsubscribe(events)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.readLoop(conn)
	}()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			if _, err := conn.Write(Frame{Opcode: OpCallEvent, Payload: []byte(e.Text)}.Encode()); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) readLoop(conn net.Conn) {
	r := bufio.NewReader(conn)
	for {
		frame, err := ReadFrame(r)
		if err != nil {
			return
		}
		s.handleInbound(conn, frame)
	}
}

func (s *Server) handleInbound(conn net.Conn, frame Frame) {
	switch frame.Opcode {
	case OpRequestConfig:
		if s.ConfigSource != nil {
			conn.Write(Frame{Opcode: OpConfigSnapshot, Payload: s.ConfigSource()}.Encode())
		}
	case OpRCON:
		s.handleRCON(frame.Payload)
	}
}

// handleRCON parses "peer-id,command,arg,slot,mfid" and dispatches to
// the configured RCONExecutor (spec.md §4.7).
func (s *Server) handleRCON(payload []byte) {
	if s.RCON == nil {
		return
	}
	parts := strings.Split(string(payload), ",")
	if len(parts) < 5 {
		if s.Log != nil {
			s.Log.Warn("malformed RCON request", logger.String("payload", string(payload)))
		}
		return
	}
	peerID, command, arg, slotStr, mfid := parts[0], parts[1], parts[2], parts[3], parts[4]
	_ = slotStr
	slot := 1
	if slotStr == "2" {
		slot = 2
	}
	if err := s.RCON.Execute(peerID, command, []string{arg}, slot, mfid); err != nil && s.Log != nil {
		s.Log.Error("RCON execute failed", logger.Error(err))
	}
}
