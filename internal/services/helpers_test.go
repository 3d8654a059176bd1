package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/data/repos/testutil"
	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/apierr"
	"github.com/havenapp/haven-backend/internal/pkg/ctxutil"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
)

// svcTx hands the test a transaction that is rolled back on cleanup.
// Services built on it run their own Transaction calls as savepoints, so
// commit semantics still hold inside the test without dirtying the database.
func svcTx(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.Tx(t, testutil.DB(t))
}

// asUser builds the db context an authenticated request would carry.
func asUser(userID uuid.UUID) dbctx.Context {
	rd := &ctxutil.RequestData{UserID: userID}
	return dbctx.Context{Ctx: ctxutil.WithRequestData(context.Background(), rd)}
}

func wantAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %d/%s, got nil error", status, code)
	}
	ae, ok := apierr.From(err)
	if !ok {
		t.Fatalf("expected %d/%s, got unclassified error: %v", status, code, err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("error: want %d/%s got %d/%s (%v)", status, code, ae.Status, ae.Code, err)
	}
}

// fakeNotifier records post-commit events in call order.
type fakeNotifier struct {
	events []string
	users  []uuid.UUID
}

func (f *fakeNotifier) InvitationReceived(userID uuid.UUID, _ *types.ChatInvitation, _ types.UserSummary) {
	f.record("invitation_received", userID)
}

func (f *fakeNotifier) MessageCreated(userID uuid.UUID, _ uuid.UUID, _ *types.Message) {
	f.record("message_created", userID)
}

func (f *fakeNotifier) ConversationRestored(userID uuid.UUID, _ *types.Conversation) {
	f.record("conversation_restored", userID)
}

func (f *fakeNotifier) AlertStarted(userID uuid.UUID, _ *types.LocationAlert, _ types.UserSummary) {
	f.record("alert_started", userID)
}

func (f *fakeNotifier) AlertStopped(userID uuid.UUID, _ *types.LocationAlert) {
	f.record("alert_stopped", userID)
}

func (f *fakeNotifier) record(event string, userID uuid.UUID) {
	f.events = append(f.events, event)
	f.users = append(f.users, userID)
}

func (f *fakeNotifier) saw(event string, userID uuid.UUID) bool {
	for i, e := range f.events {
		if e == event && f.users[i] == userID {
			return true
		}
	}
	return false
}
