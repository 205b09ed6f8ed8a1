package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestBroadcastReachesOnlyRoomMembers(t *testing.T) {
	hub := startHub(t)
	inRoom := NewClient(hub, nil, TournamentRoom(1))
	elsewhere := NewClient(hub, nil, TournamentRoom(2))
	hub.Register(inRoom)
	hub.Register(elsewhere)
	require.Eventually(t, func() bool { return hub.RoomSize("tournament_1") == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToRoom(TournamentRoom(1), Message{Type: MessageScheduleApproved, Payload: map[string]int{"matches": 3}})

	select {
	case raw := <-inRoom.send:
		var msg struct {
			Type    string         `json:"type"`
			RoomID  string         `json:"room_id"`
			Payload map[string]int `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageScheduleApproved, msg.Type)
		assert.Equal(t, "tournament_1", msg.RoomID)
		assert.Equal(t, 3, msg.Payload["matches"])
	case <-time.After(time.Second):
		t.Fatal("room member did not receive the broadcast")
	}
	assert.Empty(t, elsewhere.send)
}

func TestUnregisterClosesSendAndDropsEmptyRoom(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, TournamentRoom(9))
	hub.Register(c)
	hub.Unregister(c)

	require.Eventually(t, func() bool { return hub.RoomSize("tournament_9") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.send
	assert.False(t, open)

	// broadcasting to a closed client is a no-op
	hub.BroadcastToRoom(TournamentRoom(9), Message{Type: MessageScheduleReview})
}

func TestBroadcastDoesNotBlockOnFullBuffer(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, "room")
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.RoomSize("room") == 1 }, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer+10; i++ {
			hub.BroadcastToRoom("room", Message{Type: MessageScheduleReview})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked")
	}
	assert.Len(t, c.send, sendBuffer)
}

func TestRegisterAndUnregisterReturnAfterShutdown(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	member := NewClient(hub, nil, TournamentRoom(4))
	hub.Register(member)
	require.Eventually(t, func() bool { return hub.RoomSize("tournament_4") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	late := NewClient(hub, nil, TournamentRoom(4))
	returned := make(chan struct{})
	go func() {
		hub.Unregister(member)
		hub.Register(late)
		hub.Unregister(late)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("register or unregister blocked after shutdown")
	}

	assert.Equal(t, 0, hub.RoomSize("tournament_4"))
	_, open := <-late.send
	assert.False(t, open, "a client registered after shutdown is closed")
}
