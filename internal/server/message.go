package server

import (
	"encoding/json"
	"time"
)

// MessageType identifies a websocket message
type MessageType string

const (
	// Client to server messages
	MessageTypeCreateRoom   MessageType = "create_room"
	MessageTypeJoinRoom     MessageType = "join_room"
	MessageTypeLeaveRoom    MessageType = "leave_room"
	MessageTypeStartHand    MessageType = "start_hand"
	MessageTypePlayerAction MessageType = "player_action"

	// Server to client messages
	MessageTypeRoomCreated  MessageType = "room_created"
	MessageTypeJoined       MessageType = "joined"
	MessageTypeHandStarted  MessageType = "hand_started"
	MessageTypeRoomUpdate   MessageType = "room_update"
	MessageTypePlayerUpdate MessageType = "player_update"
	MessageTypeShowdown     MessageType = "showdown"
	MessageTypeMessage      MessageType = "message"
	MessageTypeError        MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the websocket envelope
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		dataBytes, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = dataBytes
	}
	return &Message{
		Type:      messageType,
		Data:      raw,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server payloads

type JoinRoomData struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

type LeaveRoomData struct {
	Room string `json:"room"`
}

type StartHandData struct {
	Room string `json:"room"`
}

type PlayerActionData struct {
	Room   string `json:"room"`
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Server → Client payloads

type RoomCreatedData struct {
	Room string `json:"room"`
}

type JoinedData struct {
	Room  string `json:"room"`
	Name  string `json:"name"`
	Chips int    `json:"chips"`
}

type TextData struct {
	Msg string `json:"msg"`
}

type ErrorData struct {
	Message string `json:"message"`
}
