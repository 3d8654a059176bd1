package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
	"github.com/havenapp/haven-backend/internal/realtime"
)

// Notifier fans best-effort realtime events out to per-user channels. Every
// method is safe on a nil receiver and never returns an error: a missed event
// must not fail the operation that produced it.
type Notifier interface {
	InvitationReceived(userID uuid.UUID, inv *types.ChatInvitation, sender types.UserSummary)
	MessageCreated(userID uuid.UUID, conversationID uuid.UUID, msg *types.Message)
	ConversationRestored(userID uuid.UUID, conv *types.Conversation)
	AlertStarted(userID uuid.UUID, alert *types.LocationAlert, sender types.UserSummary)
	AlertStopped(userID uuid.UUID, alert *types.LocationAlert)
}

type notifier struct {
	log  *logger.Logger
	emit SSEEmitter
}

func NewNotifier(log *logger.Logger, emit SSEEmitter) Notifier {
	return &notifier{log: log, emit: emit}
}

func (n *notifier) send(userID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	if !realtime.EventEnabled(n.log, event) {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}

func (n *notifier) InvitationReceived(userID uuid.UUID, inv *types.ChatInvitation, sender types.UserSummary) {
	n.send(userID, realtime.SSEEventInvitationReceived, map[string]any{
		"invitation": inv,
		"sender":     sender,
	})
}

func (n *notifier) MessageCreated(userID uuid.UUID, conversationID uuid.UUID, msg *types.Message) {
	n.send(userID, realtime.SSEEventMessageCreated, map[string]any{
		"conversation_id": conversationID,
		"message":         msg,
	})
}

func (n *notifier) ConversationRestored(userID uuid.UUID, conv *types.Conversation) {
	n.send(userID, realtime.SSEEventConversationRestored, map[string]any{
		"conversation": conv,
	})
}

func (n *notifier) AlertStarted(userID uuid.UUID, alert *types.LocationAlert, sender types.UserSummary) {
	n.send(userID, realtime.SSEEventAlertStarted, map[string]any{
		"alert":  alert,
		"sender": sender,
	})
}

func (n *notifier) AlertStopped(userID uuid.UUID, alert *types.LocationAlert) {
	n.send(userID, realtime.SSEEventAlertStopped, map[string]any{
		"alert": alert,
	})
}
