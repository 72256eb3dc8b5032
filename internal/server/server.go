package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokerroom/internal/game"
	"github.com/lox/pokerroom/internal/roomid"
)

// Server represents the WebSocket server
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	rooms       *RoomService
	sessionIDs  *roomid.Generator
}

// NewServer creates a new WebSocket server
func NewServer(addr string, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		sessionIDs:  roomid.NewGenerator(nil),
	}
}

// Start starts the WebSocket server
func (s *Server) Start() error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.logger.Info("Starting WebSocket server", "addr", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

// Stop stops the WebSocket server
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			s.mu.Unlock()
			s.logger.Info("Client connected", "session", conn.SessionID(), "total", len(s.connections))

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close()
			}
			s.mu.Unlock()

			// Clean up outside the lock: leaving a room broadcasts, which
			// re-enters the sender.
			if s.rooms != nil {
				s.rooms.HandleDisconnect(conn.SessionID())
			}
			s.logger.Info("Client disconnected", "session", conn.SessionID(), "total", len(s.connections))

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	sessionID := game.PlayerID(s.sessionIDs.Generate())
	client := NewConnection(conn, sessionID, s.logger, s.rooms)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// BroadcastToRoom sends a message to all connections in a specific room
func (s *Server) BroadcastToRoom(roomCode string, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.GetRoom() == roomCode {
			if err := conn.SendMessage(msg); err != nil {
				s.logger.Error("Failed to send message to client", "error", err, "session", conn.SessionID())
			} else {
				count++
			}
		}
	}

	s.logger.Debug("Broadcasted message to room", "room", roomCode, "type", msg.Type, "recipients", count)
}

// SendToPlayer sends a message to a specific session
func (s *Server) SendToPlayer(id game.PlayerID, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.SessionID() == id {
			if err := conn.SendMessage(msg); err != nil {
				s.logger.Error("Failed to send message to client", "error", err, "session", id)
			}
			return
		}
	}
}

// RoomSessions returns the session ids connected to a specific room
func (s *Server) RoomSessions(roomCode string) []game.PlayerID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []game.PlayerID
	for conn := range s.connections {
		if conn.GetRoom() == roomCode {
			sessions = append(sessions, conn.SessionID())
		}
	}

	return sessions
}

// SetRoomService sets the room service for the server
func (s *Server) SetRoomService(rooms *RoomService) {
	s.rooms = rooms
}
