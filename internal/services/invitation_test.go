package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/data/repos"
	"github.com/havenapp/haven-backend/internal/data/repos/testutil"
	types "github.com/havenapp/haven-backend/internal/domain"
)

func newInvitationService(t *testing.T, tx *gorm.DB) InvitationService {
	t.Helper()
	log := testutil.Logger(t)
	return NewInvitationService(
		tx, log,
		repos.NewUserRepo(tx, log),
		repos.NewChatInvitationRepo(tx, log),
		repos.NewConversationRepo(tx, log),
		nil,
	)
}

func TestInvitationSendCreatesPending(t *testing.T) {
	tx := svcTx(t)
	svc := newInvitationService(t, tx)
	sender, receiver := testutil.SeedUserPair(t, context.Background(), tx, "inv-send")

	inv, err := svc.Send(asUser(sender.ID), receiver.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if inv.Status != types.InvitationPending {
		t.Fatalf("status: want=%s got=%s", types.InvitationPending, inv.Status)
	}
	if inv.SenderID != sender.ID || inv.ReceiverID != receiver.ID {
		t.Fatalf("pair: want=(%s,%s) got=(%s,%s)", sender.ID, receiver.ID, inv.SenderID, inv.ReceiverID)
	}
}

func TestInvitationSendValidation(t *testing.T) {
	tx := svcTx(t)
	svc := newInvitationService(t, tx)
	sender, _ := testutil.SeedUserPair(t, context.Background(), tx, "inv-val")

	_, err := svc.Send(asUser(sender.ID), sender.ID)
	wantAPIError(t, err, http.StatusBadRequest, "validation_error")

	_, err = svc.Send(asUser(sender.ID), uuid.New())
	wantAPIError(t, err, http.StatusNotFound, "user_not_found")
}

func TestInvitationResendAfterDeclineReusesRow(t *testing.T) {
	tx := svcTx(t)
	svc := newInvitationService(t, tx)
	sender, receiver := testutil.SeedUserPair(t, context.Background(), tx, "inv-resend")

	first, err := svc.Send(asUser(sender.ID), receiver.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	declined, err := svc.Decline(asUser(receiver.ID), first.ID)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if declined.Status != types.InvitationDeclined {
		t.Fatalf("status after decline: want=%s got=%s", types.InvitationDeclined, declined.Status)
	}

	second, err := svc.Send(asUser(sender.ID), receiver.ID)
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("resend row: want=%s got=%s", first.ID, second.ID)
	}
	if second.Status != types.InvitationPending {
		t.Fatalf("status after resend: want=%s got=%s", types.InvitationPending, second.Status)
	}
}

func TestInvitationAcceptCreatesCanonicalConversation(t *testing.T) {
	tx := svcTx(t)
	svc := newInvitationService(t, tx)
	sender, receiver := testutil.SeedUserPair(t, context.Background(), tx, "inv-accept")

	inv, err := svc.Send(asUser(sender.ID), receiver.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	conv, err := svc.Accept(asUser(receiver.ID), inv.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	u1, u2 := types.CanonicalPair(sender.ID, receiver.ID)
	if conv.User1ID != u1 || conv.User2ID != u2 {
		t.Fatalf("pair order: want=(%s,%s) got=(%s,%s)", u1, u2, conv.User1ID, conv.User2ID)
	}

	// Accepting again converges on the same conversation instead of failing.
	again, err := svc.Accept(asUser(receiver.ID), inv.ID)
	if err != nil {
		t.Fatalf("repeat accept: %v", err)
	}
	if again.ID != conv.ID {
		t.Fatalf("repeat accept conversation: want=%s got=%s", conv.ID, again.ID)
	}

	var count int64
	if err := tx.WithContext(context.Background()).Model(&types.Conversation{}).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		Count(&count).Error; err != nil {
		t.Fatalf("count conversations: %v", err)
	}
	if count != 1 {
		t.Fatalf("conversation rows: want=1 got=%d", count)
	}
}

func TestInvitationAcceptBySenderForbidden(t *testing.T) {
	tx := svcTx(t)
	svc := newInvitationService(t, tx)
	sender, receiver := testutil.SeedUserPair(t, context.Background(), tx, "inv-wrongside")

	inv, err := svc.Send(asUser(sender.ID), receiver.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	_, err = svc.Accept(asUser(sender.ID), inv.ID)
	wantAPIError(t, err, http.StatusForbidden, "permission_denied")
}

func TestInvitationAcceptUnknownID(t *testing.T) {
	tx := svcTx(t)
	svc := newInvitationService(t, tx)
	sender, _ := testutil.SeedUserPair(t, context.Background(), tx, "inv-missing")

	_, err := svc.Accept(asUser(sender.ID), uuid.New())
	wantAPIError(t, err, http.StatusNotFound, "invitation_not_found")
}

func TestInvitationDeclineIsReceiverOnly(t *testing.T) {
	tx := svcTx(t)
	svc := newInvitationService(t, tx)
	sender, receiver := testutil.SeedUserPair(t, context.Background(), tx, "inv-decline")

	inv, err := svc.Send(asUser(sender.ID), receiver.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	_, err = svc.Decline(asUser(sender.ID), inv.ID)
	wantAPIError(t, err, http.StatusForbidden, "permission_denied")
}

func TestInvitationCancelIsSenderOnly(t *testing.T) {
	tx := svcTx(t)
	svc := newInvitationService(t, tx)
	sender, receiver := testutil.SeedUserPair(t, context.Background(), tx, "inv-cancel")

	inv, err := svc.Send(asUser(sender.ID), receiver.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	_, err = svc.Cancel(asUser(receiver.ID), inv.ID)
	wantAPIError(t, err, http.StatusForbidden, "permission_denied")

	canceled, err := svc.Cancel(asUser(sender.ID), inv.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != types.InvitationCanceled {
		t.Fatalf("status: want=%s got=%s", types.InvitationCanceled, canceled.Status)
	}
}

func TestInvitationResolveNonPendingRejected(t *testing.T) {
	tx := svcTx(t)
	svc := newInvitationService(t, tx)
	sender, receiver := testutil.SeedUserPair(t, context.Background(), tx, "inv-state")

	inv, err := svc.Send(asUser(sender.ID), receiver.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Decline(asUser(receiver.ID), inv.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}

	_, err = svc.Cancel(asUser(sender.ID), inv.ID)
	wantAPIError(t, err, http.StatusBadRequest, "invalid_state")

	_, err = svc.Accept(asUser(receiver.ID), inv.ID)
	wantAPIError(t, err, http.StatusBadRequest, "invalid_state")
}

func TestInvitationListDirections(t *testing.T) {
	tx := svcTx(t)
	svc := newInvitationService(t, tx)
	sender, receiver := testutil.SeedUserPair(t, context.Background(), tx, "inv-list")

	if _, err := svc.Send(asUser(sender.ID), receiver.ID); err != nil {
		t.Fatalf("send: %v", err)
	}

	incoming, err := svc.List(asUser(receiver.ID), "incoming")
	if err != nil {
		t.Fatalf("list incoming: %v", err)
	}
	if len(incoming) != 1 {
		t.Fatalf("incoming: want=1 got=%d", len(incoming))
	}
	if incoming[0].Counterpart.ID != sender.ID {
		t.Fatalf("incoming counterpart: want=%s got=%s", sender.ID, incoming[0].Counterpart.ID)
	}

	outgoing, err := svc.List(asUser(sender.ID), "outgoing")
	if err != nil {
		t.Fatalf("list outgoing: %v", err)
	}
	if len(outgoing) != 1 {
		t.Fatalf("outgoing: want=1 got=%d", len(outgoing))
	}
	if outgoing[0].Counterpart.ID != receiver.ID {
		t.Fatalf("outgoing counterpart: want=%s got=%s", receiver.ID, outgoing[0].Counterpart.ID)
	}

	_, err = svc.List(asUser(sender.ID), "sideways")
	wantAPIError(t, err, http.StatusBadRequest, "validation_error")
}
