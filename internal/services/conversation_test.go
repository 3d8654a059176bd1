package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/data/repos"
	"github.com/havenapp/haven-backend/internal/data/repos/testutil"
	types "github.com/havenapp/haven-backend/internal/domain"
)

func newConversationService(t *testing.T, tx *gorm.DB, notify Notifier) ConversationService {
	t.Helper()
	log := testutil.Logger(t)
	return NewConversationService(
		tx, log,
		repos.NewUserRepo(tx, log),
		repos.NewConversationRepo(tx, log),
		repos.NewConversationDeletedByRepo(tx, log),
		repos.NewMessageRepo(tx, log),
		nil,
		notify,
	)
}

func TestConversationListShowsCounterpartAndUnread(t *testing.T) {
	tx := svcTx(t)
	svc := newConversationService(t, tx, nil)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "conv-list")
	conv := testutil.SeedConversation(t, ctx, tx, a.ID, b.ID)
	base := time.Now().UTC().Add(-time.Hour)
	testutil.SeedMessage(t, ctx, tx, conv.ID, b.ID, "first", base)
	testutil.SeedMessage(t, ctx, tx, conv.ID, b.ID, "second", base.Add(time.Minute))

	views, err := svc.List(asUser(a.ID), 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views: want=1 got=%d", len(views))
	}
	v := views[0]
	if v.Counterpart.ID != b.ID {
		t.Fatalf("counterpart: want=%s got=%s", b.ID, v.Counterpart.ID)
	}
	if v.UnreadCount != 2 {
		t.Fatalf("unread: want=2 got=%d", v.UnreadCount)
	}
	if v.LastMessage == nil || v.LastMessage.Content != "second" {
		t.Fatalf("last message: want=second got=%#v", v.LastMessage)
	}
}

func TestConversationDeleteHidesUntilCounterpartSends(t *testing.T) {
	tx := svcTx(t)
	notify := &fakeNotifier{}
	svc := newConversationService(t, tx, notify)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "conv-del")
	conv := testutil.SeedConversation(t, ctx, tx, a.ID, b.ID)
	testutil.SeedMessage(t, ctx, tx, conv.ID, b.ID, "hello", time.Now().UTC().Add(-time.Minute))

	if err := svc.Delete(asUser(a.ID), conv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	aViews, err := svc.List(asUser(a.ID), 20)
	if err != nil {
		t.Fatalf("list as a: %v", err)
	}
	if len(aViews) != 0 {
		t.Fatalf("a's views after delete: want=0 got=%d", len(aViews))
	}
	// The counterpart's view is untouched by a's delete.
	bViews, err := svc.List(asUser(b.ID), 20)
	if err != nil {
		t.Fatalf("list as b: %v", err)
	}
	if len(bViews) != 1 {
		t.Fatalf("b's views: want=1 got=%d", len(bViews))
	}

	// b sending clears a's mark and the conversation reappears for a.
	if _, err := svc.SendMessage(asUser(b.ID), conv.ID, "are you there", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	aViews, err = svc.List(asUser(a.ID), 20)
	if err != nil {
		t.Fatalf("list as a after send: %v", err)
	}
	if len(aViews) != 1 {
		t.Fatalf("a's views after counterpart send: want=1 got=%d", len(aViews))
	}
	if !notify.saw("message_created", a.ID) {
		t.Fatalf("expected message_created for %s, got %v", a.ID, notify.events)
	}
	if !notify.saw("conversation_restored", a.ID) {
		t.Fatalf("expected conversation_restored for %s, got %v", a.ID, notify.events)
	}
}

func TestConversationRepeatDeleteKeepsFirstMark(t *testing.T) {
	tx := svcTx(t)
	svc := newConversationService(t, tx, nil)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "conv-redel")
	conv := testutil.SeedConversation(t, ctx, tx, a.ID, b.ID)

	if err := svc.Delete(asUser(a.ID), conv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var first types.ConversationDeletedBy
	if err := tx.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conv.ID, a.ID).
		First(&first).Error; err != nil {
		t.Fatalf("load mark: %v", err)
	}

	if err := svc.Delete(asUser(a.ID), conv.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	var second types.ConversationDeletedBy
	if err := tx.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conv.ID, a.ID).
		First(&second).Error; err != nil {
		t.Fatalf("reload mark: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("mark row: want=%s got=%s", first.ID, second.ID)
	}
	if !second.DeletedAt.Equal(first.DeletedAt) {
		t.Fatalf("mark timestamp moved: want=%s got=%s", first.DeletedAt, second.DeletedAt)
	}
}

func TestConversationDeleteAccess(t *testing.T) {
	tx := svcTx(t)
	svc := newConversationService(t, tx, nil)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "conv-access")
	outsider := testutil.SeedUser(t, ctx, tx, "conv-access-c-"+uuid.NewString()[:8]+"@test.local")
	conv := testutil.SeedConversation(t, ctx, tx, a.ID, b.ID)

	err := svc.Delete(asUser(outsider.ID), conv.ID)
	wantAPIError(t, err, http.StatusForbidden, "permission_denied")

	err = svc.Delete(asUser(a.ID), uuid.New())
	wantAPIError(t, err, http.StatusNotFound, "conversation_not_found")
}

func TestGetMessagesHidesHistoryBeforeMark(t *testing.T) {
	tx := svcTx(t)
	svc := newConversationService(t, tx, nil)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "conv-cutoff")
	conv := testutil.SeedConversation(t, ctx, tx, a.ID, b.ID)
	old := time.Now().UTC().Add(-time.Hour)
	testutil.SeedMessage(t, ctx, tx, conv.ID, b.ID, "before delete", old)
	testutil.SeedMessage(t, ctx, tx, conv.ID, a.ID, "also before", old.Add(time.Minute))

	if err := svc.Delete(asUser(a.ID), conv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.SendMessage(asUser(b.ID), conv.ID, "fresh start", ""); err != nil {
		t.Fatalf("send: %v", err)
	}

	page, err := svc.GetMessages(asUser(a.ID), conv.ID, 50, 0)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("page: want=1 got=%d", len(page))
	}
	if page[0].Content != "fresh start" {
		t.Fatalf("content: want=%q got=%q", "fresh start", page[0].Content)
	}

	// The counterpart never deleted, so the full history is still theirs.
	bPage, err := svc.GetMessages(asUser(b.ID), conv.ID, 50, 0)
	if err != nil {
		t.Fatalf("get messages as b: %v", err)
	}
	if len(bPage) != 3 {
		t.Fatalf("b's page: want=3 got=%d", len(bPage))
	}
}

func TestGetMessagesPaginatesNewestPageAscending(t *testing.T) {
	tx := svcTx(t)
	svc := newConversationService(t, tx, nil)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "conv-page")
	conv := testutil.SeedConversation(t, ctx, tx, a.ID, b.ID)
	base := time.Now().UTC().Add(-time.Hour)
	for i, content := range []string{"m1", "m2", "m3", "m4", "m5"} {
		testutil.SeedMessage(t, ctx, tx, conv.ID, b.ID, content, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := svc.GetMessages(asUser(a.ID), conv.ID, 2, 0)
	if err != nil {
		t.Fatalf("page 0: %v", err)
	}
	if len(page) != 2 || page[0].Content != "m4" || page[1].Content != "m5" {
		t.Fatalf("page 0: want=[m4 m5] got=%v", messageContents(page))
	}

	page, err = svc.GetMessages(asUser(a.ID), conv.ID, 2, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page) != 2 || page[0].Content != "m2" || page[1].Content != "m3" {
		t.Fatalf("page 1: want=[m2 m3] got=%v", messageContents(page))
	}
}

func TestGetMessagesMarksOnlyCounterpartRead(t *testing.T) {
	tx := svcTx(t)
	svc := newConversationService(t, tx, nil)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "conv-read")
	conv := testutil.SeedConversation(t, ctx, tx, a.ID, b.ID)
	base := time.Now().UTC().Add(-time.Hour)
	testutil.SeedMessage(t, ctx, tx, conv.ID, a.ID, "mine", base)
	testutil.SeedMessage(t, ctx, tx, conv.ID, b.ID, "theirs", base.Add(time.Minute))

	page, err := svc.GetMessages(asUser(a.ID), conv.ID, 50, 0)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	for _, m := range page {
		if m.SenderID == b.ID && !m.IsRead {
			t.Fatalf("counterpart message %q not marked read", m.Content)
		}
	}

	var unreadOwn int64
	if err := tx.WithContext(ctx).Model(&types.Message{}).
		Where("conversation_id = ? AND sender_id = ? AND is_read = ?", conv.ID, a.ID, false).
		Count(&unreadOwn).Error; err != nil {
		t.Fatalf("count own unread: %v", err)
	}
	// Fetching never flips the reader's own messages.
	if unreadOwn != 1 {
		t.Fatalf("own unread: want=1 got=%d", unreadOwn)
	}
}

func TestSendMessageValidationAndAccess(t *testing.T) {
	tx := svcTx(t)
	svc := newConversationService(t, tx, nil)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "conv-sendval")
	outsider := testutil.SeedUser(t, ctx, tx, "conv-sendval-c-"+uuid.NewString()[:8]+"@test.local")
	conv := testutil.SeedConversation(t, ctx, tx, a.ID, b.ID)

	_, err := svc.SendMessage(asUser(a.ID), conv.ID, "   ", "")
	wantAPIError(t, err, http.StatusBadRequest, "validation_error")

	_, err = svc.SendMessage(asUser(outsider.ID), conv.ID, "hi", "")
	wantAPIError(t, err, http.StatusForbidden, "permission_denied")

	_, err = svc.SendMessage(asUser(a.ID), uuid.New(), "hi", "")
	wantAPIError(t, err, http.StatusNotFound, "conversation_not_found")

	msg, err := svc.SendMessage(asUser(a.ID), conv.ID, "hi", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Type != types.MessageTypeText {
		t.Fatalf("default type: want=%s got=%s", types.MessageTypeText, msg.Type)
	}
}

func TestSendMessageBumpsConversationActivity(t *testing.T) {
	tx := svcTx(t)
	svc := newConversationService(t, tx, nil)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "conv-touch")
	conv := testutil.SeedConversation(t, ctx, tx, a.ID, b.ID)

	var before types.Conversation
	if err := tx.WithContext(ctx).Where("id = ?", conv.ID).First(&before).Error; err != nil {
		t.Fatalf("load conversation: %v", err)
	}

	if _, err := svc.SendMessage(asUser(a.ID), conv.ID, "ping", ""); err != nil {
		t.Fatalf("send: %v", err)
	}

	var after types.Conversation
	if err := tx.WithContext(ctx).Where("id = ?", conv.ID).First(&after).Error; err != nil {
		t.Fatalf("reload conversation: %v", err)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("updated_at not bumped: before=%s after=%s", before.UpdatedAt, after.UpdatedAt)
	}
}

func messageContents(msgs []*types.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Content)
	}
	return out
}
