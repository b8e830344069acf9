package server

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"

	"ircd/internal/config"
	"ircd/internal/persistence"

	"github.com/prometheus/client_golang/prometheus"
)

// Server owns the listener and the registry. One goroutine per
// connection reads lines off the transport and feeds them through the
// registry, which serializes all state mutation.
type Server struct {
	cfg      *config.Config
	registry *Registry
	promReg  *prometheus.Registry
	listener net.Listener
	shutdown chan struct{}
	mu       sync.Mutex
}

// New creates a new server instance.
func New(cfg *config.Config, store persistence.Store) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	promReg := prometheus.NewRegistry()
	metrics := NewMetrics(promReg)
	return &Server{
		cfg:      cfg,
		registry: NewRegistry(cfg, store, metrics),
		promReg:  promReg,
		shutdown: make(chan struct{}),
	}
}

// Registry returns the server's session/channel registry.
func (s *Server) Registry() *Registry { return s.registry }

// Addr returns the bound listen address, once Start has bound it.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start begins listening for connections and blocks until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	log.Printf("INFO: IRC server started and listening on %s", addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return nil
			default:
				log.Printf("ERROR: Failed to accept connection: %v", err)
				continue
			}
		}
		go s.handleConnection(conn)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	close(s.shutdown)

	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener != nil {
		if err := listener.Close(); err != nil {
			log.Printf("ERROR: Failed to close listener: %v", err)
		}
	}

	// Notify all clients before closing their connections.
	s.registry.mu.Lock()
	sessions := make([]*Session, 0, len(s.registry.sessions))
	for _, sess := range s.registry.sessions {
		sessions = append(sessions, sess)
	}
	s.registry.mu.Unlock()

	for _, sess := range sessions {
		if err := sess.Send("ERROR :Server shutting down"); err != nil {
			log.Printf("ERROR: Failed to send shutdown message to client: %v", err)
		}
		sess.conn.Close()
	}

	s.registry.Close()
	return nil
}

// handleConnection admits the connection and runs its read loop. All
// data received before the close event is handled before disconnect
// cleanup runs.
func (s *Server) handleConnection(conn net.Conn) {
	sess, err := s.registry.Admit(conn)
	if err != nil {
		// Resource exhaustion: refuse before any session state exists.
		log.Printf("WARN: Refusing connection from %v: %v", conn.RemoteAddr(), err)
		fmt.Fprintf(conn, "ERROR :Server is full, try again later\r\n")
		conn.Close()
		return
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// Whatever arrived before the close is already handled;
			// now run disconnect cleanup as its own event.
			s.registry.DisconnectSession(sess, "")
			log.Printf("INFO: Client %s disconnected: %v", sess, err)
			return
		}

		line = strings.TrimRight(line, "\r\n")
		s.registry.HandleLine(sess, line)
	}
}
