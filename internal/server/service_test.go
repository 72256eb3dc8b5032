package server

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerroom/internal/game"
	"github.com/lox/pokerroom/internal/history"
	"github.com/lox/pokerroom/internal/roomid"
)

// recordingSender captures outbound messages for assertions.
type recordingSender struct {
	mu         sync.Mutex
	direct     []*Message
	broadcasts []broadcastRecord
}

type broadcastRecord struct {
	room string
	msg  *Message
}

func (s *recordingSender) SendToPlayer(id game.PlayerID, msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.direct = append(s.direct, msg)
}

func (s *recordingSender) BroadcastToRoom(roomCode string, msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts = append(s.broadcasts, broadcastRecord{room: roomCode, msg: msg})
}

func (s *recordingSender) broadcastCount(messageType MessageType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, rec := range s.broadcasts {
		if rec.msg.Type == messageType {
			count++
		}
	}
	return count
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestService(t *testing.T, clock quartz.Clock, store *history.Store) (*RoomService, *recordingSender) {
	t.Helper()
	sender := &recordingSender{}
	svc := NewRoomService(game.DefaultSettings(), clock, sender, store, testLogger())
	return svc, sender
}

func TestCreateRoomReturnsValidCode(t *testing.T) {
	svc, _ := newTestService(t, quartz.NewReal(), nil)

	code := svc.CreateRoom()
	require.NoError(t, roomid.Validate(code))
	assert.Equal(t, 1, svc.RoomCount())

	room, ok := svc.Room(code)
	require.True(t, ok)
	assert.Equal(t, code, room.ID())
}

func TestJoinUnknownRoom(t *testing.T) {
	svc, _ := newTestService(t, quartz.NewReal(), nil)

	err := svc.JoinRoom("nosuchrm", "p1", "alice")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomRemovedWhenLastPlayerLeaves(t *testing.T) {
	svc, _ := newTestService(t, quartz.NewReal(), nil)

	code := svc.CreateRoom()
	require.NoError(t, svc.JoinRoom(code, "p1", "alice"))
	require.NoError(t, svc.JoinRoom(code, "p2", "bob"))

	require.NoError(t, svc.LeaveRoom(code, "p1"))
	assert.Equal(t, 1, svc.RoomCount())

	require.NoError(t, svc.LeaveRoom(code, "p2"))
	assert.Equal(t, 0, svc.RoomCount())

	_, ok := svc.Room(code)
	assert.False(t, ok)
}

func TestHandleDisconnectLeavesRoom(t *testing.T) {
	svc, _ := newTestService(t, quartz.NewReal(), nil)

	code := svc.CreateRoom()
	require.NoError(t, svc.JoinRoom(code, "p1", "alice"))

	svc.HandleDisconnect("p1")
	assert.Equal(t, 0, svc.RoomCount())

	// A session that never joined is a no-op
	svc.HandleDisconnect("ghost")
}

func TestJoinBroadcastsRoomUpdate(t *testing.T) {
	svc, sender := newTestService(t, quartz.NewReal(), nil)

	code := svc.CreateRoom()
	require.NoError(t, svc.JoinRoom(code, "p1", "alice"))

	assert.Equal(t, 1, sender.broadcastCount(MessageTypeRoomUpdate))
}

func TestStartHandRequiresTwoPlayers(t *testing.T) {
	svc, _ := newTestService(t, quartz.NewReal(), nil)

	code := svc.CreateRoom()
	require.NoError(t, svc.JoinRoom(code, "p1", "alice"))

	err := svc.StartHand(code)
	assert.ErrorIs(t, err, game.ErrNotEnoughPlayers)
}

func TestFoldOutHandBroadcastsShowdownAndRecordsHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "hands.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc, sender := newTestService(t, quartz.NewReal(), store)

	code := svc.CreateRoom()
	require.NoError(t, svc.JoinRoom(code, "p1", "alice"))
	require.NoError(t, svc.JoinRoom(code, "p2", "bob"))
	require.NoError(t, svc.StartHand(code))

	room, ok := svc.Room(code)
	require.True(t, ok)

	// Fold players in turn order until only one remains
	actor := room.Snapshot().CurrentTo
	require.NotEmpty(t, actor)
	require.NoError(t, svc.HandleAction(code, actor, "fold", 0))

	assert.Equal(t, 1, sender.broadcastCount(MessageTypeShowdown))

	records, err := store.RecentHands(code, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, string(records[0].Summary), "winners")
}

func TestOutOfTurnActionSurfacesError(t *testing.T) {
	svc, _ := newTestService(t, quartz.NewReal(), nil)

	code := svc.CreateRoom()
	require.NoError(t, svc.JoinRoom(code, "p1", "alice"))
	require.NoError(t, svc.JoinRoom(code, "p2", "bob"))
	require.NoError(t, svc.StartHand(code))

	room, _ := svc.Room(code)
	actor := room.Snapshot().CurrentTo

	other := game.PlayerID("p1")
	if actor == other {
		other = "p2"
	}

	err := svc.HandleAction(code, other, "fold", 0)
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
}

func TestUnknownActionRejectedAtBoundary(t *testing.T) {
	svc, _ := newTestService(t, quartz.NewReal(), nil)

	code := svc.CreateRoom()
	require.NoError(t, svc.JoinRoom(code, "p1", "alice"))
	require.NoError(t, svc.JoinRoom(code, "p2", "bob"))
	require.NoError(t, svc.StartHand(code))

	room, _ := svc.Room(code)
	actor := room.Snapshot().CurrentTo

	err := svc.HandleAction(code, actor, "jam", 0)
	assert.ErrorIs(t, err, game.ErrUnknownAction)
}

func TestTurnTimeoutEndsHeadsUpHand(t *testing.T) {
	mockClock := quartz.NewMock(t)
	svc, sender := newTestService(t, mockClock, nil)

	code := svc.CreateRoom()
	require.NoError(t, svc.JoinRoom(code, "p1", "alice"))
	require.NoError(t, svc.JoinRoom(code, "p2", "bob"))
	require.NoError(t, svc.StartHand(code))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mockClock.Advance(20 * time.Second).MustWait(ctx)

	// Heads up, one fold ends the hand
	assert.Equal(t, 1, sender.broadcastCount(MessageTypeShowdown))
	room, _ := svc.Room(code)
	assert.Equal(t, game.PhaseWaiting, room.Snapshot().Phase)
}
