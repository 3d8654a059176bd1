package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/data/repos/testutil"
	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/realtime"
)

type fakeEmitter struct {
	msgs []realtime.SSEMessage
}

func (f *fakeEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	f.msgs = append(f.msgs, msg)
}

func TestNotifierRoutesToUserChannel(t *testing.T) {
	emit := &fakeEmitter{}
	n := NewNotifier(testutil.Logger(t), emit)
	userID := uuid.New()

	n.InvitationReceived(userID, &types.ChatInvitation{ID: uuid.New()}, types.UserSummary{})
	n.MessageCreated(userID, uuid.New(), &types.Message{ID: uuid.New()})
	n.ConversationRestored(userID, &types.Conversation{ID: uuid.New()})
	n.AlertStarted(userID, &types.LocationAlert{ID: uuid.New()}, types.UserSummary{})
	n.AlertStopped(userID, &types.LocationAlert{ID: uuid.New()})

	if len(emit.msgs) != 5 {
		t.Fatalf("emitted: want=5 got=%d", len(emit.msgs))
	}
	wantEvents := []realtime.SSEEvent{
		realtime.SSEEventInvitationReceived,
		realtime.SSEEventMessageCreated,
		realtime.SSEEventConversationRestored,
		realtime.SSEEventAlertStarted,
		realtime.SSEEventAlertStopped,
	}
	channel := realtime.UserChannel(userID)
	for i, msg := range emit.msgs {
		if msg.Event != wantEvents[i] {
			t.Fatalf("event %d: want=%s got=%s", i, wantEvents[i], msg.Event)
		}
		if msg.Channel != channel {
			t.Fatalf("channel %d: want=%s got=%s", i, channel, msg.Channel)
		}
		if msg.Data == nil {
			t.Fatalf("event %d carries no data", i)
		}
	}
}

func TestNotifierSkipsNilTargets(t *testing.T) {
	emit := &fakeEmitter{}
	n := NewNotifier(testutil.Logger(t), emit)

	n.MessageCreated(uuid.Nil, uuid.New(), &types.Message{ID: uuid.New()})
	if len(emit.msgs) != 0 {
		t.Fatalf("emitted for nil user: %#v", emit.msgs)
	}

	// A notifier without an emitter stays quiet instead of panicking.
	silent := NewNotifier(testutil.Logger(t), nil)
	silent.AlertStopped(uuid.New(), &types.LocationAlert{ID: uuid.New()})
}
