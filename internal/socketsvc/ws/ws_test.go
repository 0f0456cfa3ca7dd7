package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomSubscriptionFanout(t *testing.T) {
	s := NewWs()

	s.StoreRoom("sock-1", "room-a")
	s.StoreRoom("sock-2", "room-a")
	s.StoreRoom("sock-3", "room-b")

	sockets, ok := s.GetRoomSockets("room-a")
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{"sock-1", "sock-2"}, sockets)

	_, ok = s.GetRoomSockets("room-c")
	assert.False(t, ok)
}

func TestResubscribeMovesSocket(t *testing.T) {
	s := NewWs()

	s.StoreRoom("sock-1", "room-a")
	s.StoreRoom("sock-1", "room-b")

	_, inA := s.GetRoomSockets("room-a")
	assert.False(t, inA)

	sockets, ok := s.GetRoomSockets("room-b")
	assert.True(t, ok)
	assert.Equal(t, []string{"sock-1"}, sockets)
}

func TestHandleDisconnectDropsSubscription(t *testing.T) {
	s := NewWs()

	s.StoreRoom("sock-1", "room-a")
	s.HandleDisconnect("sock-1")

	_, ok := s.GetRoomSockets("room-a")
	assert.False(t, ok)
	_, ok = s.GetRoom("sock-1")
	assert.False(t, ok)
}
