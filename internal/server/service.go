package server

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerroom/internal/game"
	"github.com/lox/pokerroom/internal/history"
	"github.com/lox/pokerroom/internal/roomid"
)

// ErrRoomNotFound is reported to a client referencing an unknown room code.
var ErrRoomNotFound = errors.New("room not found")

// Sender delivers outbound messages to clients. The websocket server
// implements it; tests substitute a recorder.
type Sender interface {
	SendToPlayer(id game.PlayerID, msg *Message)
	BroadcastToRoom(roomCode string, msg *Message)
}

// RoomService owns the registry of rooms. It is the explicit store the
// transport layer goes through: create/get/remove plus the inbound
// operations of the event channel. Room ids come from an injected
// generator, never from ambient process state.
type RoomService struct {
	mu      sync.Mutex
	rooms   map[string]*game.Room
	members map[game.PlayerID]string // session -> room code

	settings game.Settings
	clock    quartz.Clock
	idgen    *roomid.Generator
	sender   Sender
	store    *history.Store // nil disables persistence
	logger   *log.Logger
}

// NewRoomService creates a room service. A nil store disables hand-history
// persistence.
func NewRoomService(settings game.Settings, clock quartz.Clock, sender Sender, store *history.Store, logger *log.Logger) *RoomService {
	return &RoomService{
		rooms:    make(map[string]*game.Room),
		members:  make(map[game.PlayerID]string),
		settings: settings,
		clock:    clock,
		idgen:    roomid.NewGenerator(nil),
		sender:   sender,
		store:    store,
		logger:   logger.WithPrefix("rooms"),
	}
}

// SetIDGenerator swaps the room-code generator, for deterministic tests.
func (s *RoomService) SetIDGenerator(g *roomid.Generator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idgen = g
}

// CreateRoom allocates a new room in the waiting phase and returns its code.
func (s *RoomService) CreateRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.idgen.Generate()
	for s.rooms[code] != nil {
		code = s.idgen.Generate()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	emitter := &roomEmitter{svc: s, code: code}
	s.rooms[code] = game.NewRoom(code, s.settings, rng, s.clock, emitter, s.logger)

	if s.store != nil {
		if err := s.store.EnsureRoom(code); err != nil {
			s.logger.Error("failed to persist room", "room", code, "error", err)
		}
	}

	s.logger.Info("room created", "room", code)
	return code
}

// Room returns a room by code.
func (s *RoomService) Room(code string) (*game.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	return room, ok
}

// JoinRoom seats a player in a room.
func (s *RoomService) JoinRoom(code string, id game.PlayerID, name string) error {
	room, ok := s.Room(code)
	if !ok {
		return ErrRoomNotFound
	}

	s.mu.Lock()
	s.members[id] = code
	s.mu.Unlock()

	room.Join(id, name)
	return nil
}

// LeaveRoom unseats a player. The room is removed once its last player
// leaves.
func (s *RoomService) LeaveRoom(code string, id game.PlayerID) error {
	room, ok := s.Room(code)
	if !ok {
		return ErrRoomNotFound
	}

	remaining := room.Leave(id)

	s.mu.Lock()
	delete(s.members, id)
	if remaining == 0 {
		delete(s.rooms, code)
		s.logger.Info("room removed", "room", code)
	}
	s.mu.Unlock()
	return nil
}

// HandleDisconnect removes a vanished session from whatever room it was in.
func (s *RoomService) HandleDisconnect(id game.PlayerID) {
	s.mu.Lock()
	code, ok := s.members[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.logger.Info("cleaning up disconnected player", "player", id, "room", code)
	_ = s.LeaveRoom(code, id)
}

// StartHand runs the hand-start transition for a room.
func (s *RoomService) StartHand(code string) error {
	room, ok := s.Room(code)
	if !ok {
		return ErrRoomNotFound
	}
	return room.StartHand()
}

// HandleAction applies one player action to a room. Unknown action names
// are rejected at this boundary.
func (s *RoomService) HandleAction(code string, id game.PlayerID, action string, amount int) error {
	room, ok := s.Room(code)
	if !ok {
		return ErrRoomNotFound
	}
	parsed, err := game.ParseAction(action)
	if err != nil {
		return err
	}
	return room.HandleAction(id, parsed, amount)
}

// RoomCount returns the number of live rooms.
func (s *RoomService) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// roomEmitter adapts one room's output onto the sender and the history
// store. It is invoked with the room lock held; sends only enqueue, and
// the once-per-hand history write blocks its own room only.
type roomEmitter struct {
	svc  *RoomService
	code string
}

func (e *roomEmitter) RoomUpdate(snapshot game.RoomSnapshot) {
	e.broadcast(MessageTypeRoomUpdate, snapshot)
}

func (e *roomEmitter) PlayerUpdate(id game.PlayerID, snapshot game.PlayerSnapshot) {
	msg, err := NewMessage(MessageTypePlayerUpdate, snapshot)
	if err != nil {
		e.svc.logger.Error("failed to encode player update", "room", e.code, "error", err)
		return
	}
	e.svc.sender.SendToPlayer(id, msg)
}

func (e *roomEmitter) Showdown(result game.ShowdownResult) {
	e.broadcast(MessageTypeShowdown, result)

	if e.svc.store != nil {
		if err := e.svc.store.RecordHand(e.code, result.StartedAt, result.EndedAt, result); err != nil {
			e.svc.logger.Error("failed to persist hand", "room", e.code, "error", err)
		}
	}
}

func (e *roomEmitter) Message(text string) {
	e.broadcast(MessageTypeMessage, TextData{Msg: text})
}

func (e *roomEmitter) broadcast(messageType MessageType, data interface{}) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		e.svc.logger.Error("failed to encode message", "room", e.code, "type", messageType, "error", err)
		return
	}
	e.svc.sender.BroadcastToRoom(e.code, msg)
}
