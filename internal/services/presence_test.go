package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/data/repos/testutil"
	types "github.com/havenapp/haven-backend/internal/domain"
)

func TestPresenceDisabledWithoutRedis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	svc := NewPresenceService(testutil.Logger(t))

	if svc.Enabled() {
		t.Fatalf("presence enabled without redis")
	}

	// Disabled presence swallows writes and returns nothing.
	userID := uuid.New()
	svc.Touch(context.Background(), userID)
	seen := svc.LastSeen(context.Background(), []uuid.UUID{userID})
	if len(seen) != 0 {
		t.Fatalf("last seen: want empty got=%#v", seen)
	}

	sum := types.UserSummary{ID: userID}
	decoratePresence(context.Background(), svc, &sum)
	if sum.IsOnline || sum.LastSeenAt != nil {
		t.Fatalf("summary decorated while disabled: %#v", sum)
	}
}

func TestPresenceOnlineWindowConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("PRESENCE_ONLINE_WINDOW_SECONDS", "120")
	svc := NewPresenceService(testutil.Logger(t))

	if got := svc.OnlineWindow(); got != 120*time.Second {
		t.Fatalf("online window: want=%s got=%s", 120*time.Second, got)
	}
}

func TestPresenceRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run presence integration tests")
	}
	t.Setenv("REDIS_ADDR", addr)
	svc := NewPresenceService(testutil.Logger(t))
	if !svc.Enabled() {
		t.Fatalf("presence disabled with TEST_REDIS_ADDR=%s", addr)
	}

	userID := uuid.New()
	svc.Touch(context.Background(), userID)

	seen := svc.LastSeen(context.Background(), []uuid.UUID{userID})
	at, ok := seen[userID]
	if !ok {
		t.Fatalf("no last seen entry for %s", userID)
	}
	if d := time.Since(at); d < 0 || d > 5*time.Second {
		t.Fatalf("last seen drift: %s", d)
	}

	sum := types.UserSummary{ID: userID}
	decoratePresence(context.Background(), svc, &sum)
	if !sum.IsOnline {
		t.Fatalf("fresh touch not online: %#v", sum)
	}
	if sum.LastSeenAt == nil || !sum.LastSeenAt.Equal(at) {
		t.Fatalf("last seen: want=%s got=%v", at, sum.LastSeenAt)
	}
}
