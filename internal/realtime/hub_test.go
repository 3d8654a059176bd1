package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(func() { log.Sync() })
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	userID := uuid.New()
	channel := UserChannel(userID)

	clientA := hub.NewSSEClient(userID)
	hub.AddChannel(clientA, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventInvitationReceived, Data: map[string]any{"seq": 1}}
	second := SSEMessage{Channel: channel, Event: SSEEventMessageCreated, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Event != SSEEventInvitationReceived {
		t.Fatalf("first event: want=%s got=%s", SSEEventInvitationReceived, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventMessageCreated {
		t.Fatalf("second event: want=%s got=%s", SSEEventMessageCreated, gotSecond.Event)
	}

	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}

	clientB := hub.NewSSEClient(userID)
	hub.AddChannel(clientB, channel)
	reconnect := SSEMessage{Channel: channel, Event: SSEEventAlertStarted, Data: map[string]any{"seq": 3}}
	hub.Broadcast(reconnect)
	gotReconnect := recvMessage(t, clientB.Outbound, time.Second)
	if gotReconnect.Event != SSEEventAlertStarted {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventAlertStarted, gotReconnect.Event)
	}
}

func TestSSEHubBroadcastSkipsOtherChannels(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	alice := uuid.New()
	bob := uuid.New()

	clientAlice := hub.NewSSEClient(alice)
	hub.AddChannel(clientAlice, UserChannel(alice))
	clientBob := hub.NewSSEClient(bob)
	hub.AddChannel(clientBob, UserChannel(bob))

	hub.Broadcast(SSEMessage{Channel: UserChannel(alice), Event: SSEEventAlertStopped})

	got := recvMessage(t, clientAlice.Outbound, time.Second)
	if got.Event != SSEEventAlertStopped {
		t.Fatalf("alice event: want=%s got=%s", SSEEventAlertStopped, got.Event)
	}
	select {
	case msg := <-clientBob.Outbound:
		t.Fatalf("bob should not receive alice's event, got=%s", msg.Event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	userID := uuid.New()
	channel := UserChannel(userID)
	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, channel)

	// outbound buffer holds 10; the rest must be dropped, never block
	for i := 0; i < 25; i++ {
		hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventMessageCreated, Data: map[string]any{"seq": i}})
	}
	if got := len(client.Outbound); got != 10 {
		t.Fatalf("buffered messages: want=10 got=%d", got)
	}
}
