package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokerroom/internal/game"
)

// Connection represents a WebSocket connection to a client. Each
// connection is one session: the session id doubles as the player id
// inside rooms, mirroring a socket sid.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	sessionID game.PlayerID
	roomCode  string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	rooms     *RoomService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, sessionID game.PlayerID, logger *log.Logger, rooms *RoomService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:      conn,
		send:      make(chan *Message, 256),
		sessionID: sessionID,
		logger:    logger.WithPrefix("conn").With("session", sessionID),
		ctx:       ctx,
		cancel:    cancel,
		rooms:     rooms,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SessionID returns the session id for this connection
func (c *Connection) SessionID() game.PlayerID {
	return c.sessionID
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetRoom associates this connection with a room
func (c *Connection) SetRoom(roomCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = roomCode
}

// GetRoom returns the associated room code
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	if c.rooms == nil {
		c.sendError("Room service not available")
		return
	}

	switch msg.Type {
	case MessageTypeCreateRoom:
		c.handleCreateRoom()

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeLeaveRoom:
		var data LeaveRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Failed to parse leave room data")
			return
		}
		c.handleLeaveRoom(data)

	case MessageTypeStartHand:
		var data StartHandData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Failed to parse start hand data")
			return
		}
		c.handleStartHand(data)

	case MessageTypePlayerAction:
		var data PlayerActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Failed to parse player action data")
			return
		}
		c.handlePlayerAction(data)

	default:
		c.sendError("Unknown message type: " + msg.Type.String())
	}
}

// sendError sends an error message to this client only
func (c *Connection) sendError(message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{Message: message})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

func (c *Connection) handleCreateRoom() {
	code := c.rooms.CreateRoom()
	c.logger.Info("Room created", "room", code)

	response, _ := NewMessage(MessageTypeRoomCreated, RoomCreatedData{Room: code})
	_ = c.SendMessage(response)
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	name := data.Name
	if name == "" {
		name = "Player"
	}
	c.logger.Info("Join room request", "room", data.Room, "name", name)

	if err := c.rooms.JoinRoom(data.Room, c.sessionID, name); err != nil {
		c.sendError(err.Error())
		return
	}

	c.SetRoom(data.Room)

	response, _ := NewMessage(MessageTypeJoined, JoinedData{
		Room:  data.Room,
		Name:  name,
		Chips: c.rooms.settings.StartingChips,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleLeaveRoom(data LeaveRoomData) {
	c.logger.Info("Leave room request", "room", data.Room)

	if err := c.rooms.LeaveRoom(data.Room, c.sessionID); err != nil {
		c.sendError(err.Error())
		return
	}

	c.SetRoom("")
}

func (c *Connection) handleStartHand(data StartHandData) {
	c.logger.Info("Start hand request", "room", data.Room)

	if err := c.rooms.StartHand(data.Room); err != nil {
		c.sendError(err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeHandStarted, nil)
	_ = c.SendMessage(response)
}

func (c *Connection) handlePlayerAction(data PlayerActionData) {
	c.logger.Info("Player action", "room", data.Room, "action", data.Action, "amount", data.Amount)

	if err := c.rooms.HandleAction(data.Room, c.sessionID, data.Action, data.Amount); err != nil {
		c.sendError(err.Error())
	}
	// No response needed on success, the room publishes events
}
