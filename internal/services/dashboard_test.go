package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/data/repos"
	"github.com/havenapp/haven-backend/internal/data/repos/testutil"
	types "github.com/havenapp/haven-backend/internal/domain"
)

// Dashboard branches fan out on the connection pool, so this test commits its
// fixtures instead of hiding them in a rolled-back transaction and removes
// them afterwards. The open-post count is global and asserted as a delta.
func TestDashboardAggregates(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	me := testutil.SeedUser(t, ctx, db, testEmail("dash-me"))
	buddy := testutil.SeedUser(t, ctx, db, testEmail("dash-buddy"))
	inviter := testutil.SeedUser(t, ctx, db, testEmail("dash-inviter"))
	alerter := testutil.SeedUser(t, ctx, db, testEmail("dash-alerter"))
	userIDs := []uuid.UUID{me.ID, buddy.ID, inviter.ID, alerter.ID}

	var postIDs []uuid.UUID
	t.Cleanup(func() {
		if len(postIDs) > 0 {
			if err := db.Unscoped().Where("id IN ?", postIDs).Delete(&types.JobPost{}).Error; err != nil {
				t.Errorf("cleanup posts: %v", err)
			}
		}
		// Hard-deleting the users cascades to everything else they own.
		if err := db.Unscoped().Where("id IN ?", userIDs).Delete(&types.User{}).Error; err != nil {
			t.Errorf("cleanup users: %v", err)
		}
	})

	convSvc := NewConversationService(
		db, log,
		repos.NewUserRepo(db, log),
		repos.NewConversationRepo(db, log),
		repos.NewConversationDeletedByRepo(db, log),
		repos.NewMessageRepo(db, log),
		nil, nil,
	)
	svc := NewDashboardService(
		db, log,
		repos.NewChatInvitationRepo(db, log),
		repos.NewMessageRepo(db, log),
		repos.NewContactRepo(db, log),
		repos.NewLocationAlertRepo(db, log),
		repos.NewJobPostRepo(db, log),
		convSvc,
	)

	baseline, err := svc.Get(asUser(me.ID))
	if err != nil {
		t.Fatalf("baseline get: %v", err)
	}

	conv := testutil.SeedConversation(t, ctx, db, me.ID, buddy.ID)
	base := time.Now().UTC().Add(-time.Minute)
	testutil.SeedMessage(t, ctx, db, conv.ID, buddy.ID, "one", base)
	testutil.SeedMessage(t, ctx, db, conv.ID, buddy.ID, "two", base.Add(time.Second))
	testutil.SeedInvitation(t, ctx, db, inviter.ID, me.ID, types.InvitationPending)
	testutil.SeedAlert(t, ctx, db, alerter.ID, me.ID, types.AlertActive, time.Now().UTC())
	testutil.SeedContact(t, ctx, db, me.ID, buddy.ID)

	postSvc := NewJobPostService(db, log, repos.NewJobPostRepo(db, log))
	for _, title := range []string{"Dash Open One", "Dash Open Two"} {
		post, err := postSvc.Create(asUser(me.ID), JobPostInput{Title: title, Company: "Haven"})
		if err != nil {
			t.Fatalf("create post: %v", err)
		}
		postIDs = append(postIDs, post.ID)
	}
	closedPost, err := postSvc.Create(asUser(me.ID), JobPostInput{Title: "Dash Closed", Company: "Haven"})
	if err != nil {
		t.Fatalf("create closed post: %v", err)
	}
	postIDs = append(postIDs, closedPost.ID)
	closed := types.JobPostClosed
	if _, err := postSvc.Update(asUser(me.ID), closedPost.ID, JobPostUpdate{Status: &closed}); err != nil {
		t.Fatalf("close post: %v", err)
	}

	dash, err := svc.Get(asUser(me.ID))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dash.UnreadMessages != 2 {
		t.Fatalf("unread messages: want=2 got=%d", dash.UnreadMessages)
	}
	if dash.PendingInvitations != 1 {
		t.Fatalf("pending invitations: want=1 got=%d", dash.PendingInvitations)
	}
	if dash.ActiveIncomingAlerts != 1 {
		t.Fatalf("active incoming alerts: want=1 got=%d", dash.ActiveIncomingAlerts)
	}
	if dash.Contacts != 1 {
		t.Fatalf("contacts: want=1 got=%d", dash.Contacts)
	}
	if got := dash.OpenJobPosts - baseline.OpenJobPosts; got != 2 {
		t.Fatalf("open job posts delta: want=2 got=%d", got)
	}
	if len(dash.RecentConversations) != 1 {
		t.Fatalf("recent conversations: want=1 got=%d", len(dash.RecentConversations))
	}
	recent := dash.RecentConversations[0]
	if recent.ID != conv.ID {
		t.Fatalf("recent conversation: want=%s got=%s", conv.ID, recent.ID)
	}
	if recent.Counterpart.ID != buddy.ID {
		t.Fatalf("recent counterpart: want=%s got=%s", buddy.ID, recent.Counterpart.ID)
	}
	if recent.UnreadCount != 2 {
		t.Fatalf("recent unread: want=2 got=%d", recent.UnreadCount)
	}
}

func TestDashboardRequiresAuth(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)

	svc := NewDashboardService(
		db, log,
		repos.NewChatInvitationRepo(db, log),
		repos.NewMessageRepo(db, log),
		repos.NewContactRepo(db, log),
		repos.NewLocationAlertRepo(db, log),
		repos.NewJobPostRepo(db, log),
		nil,
	)
	_, err := svc.Get(asUser(uuid.Nil))
	wantAPIError(t, err, http.StatusUnauthorized, "not_authenticated")
}
