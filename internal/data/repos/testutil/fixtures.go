package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/havenapp/haven-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedUserPair creates two users with distinct emails derived from prefix.
func SeedUserPair(tb testing.TB, ctx context.Context, tx *gorm.DB, prefix string) (*types.User, *types.User) {
	tb.Helper()
	a := SeedUser(tb, ctx, tx, fmt.Sprintf("%s-a-%s@test.local", prefix, uuid.NewString()[:8]))
	b := SeedUser(tb, ctx, tx, fmt.Sprintf("%s-b-%s@test.local", prefix, uuid.NewString()[:8]))
	return a, b
}

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, a, b uuid.UUID) *types.Conversation {
	tb.Helper()
	u1, u2 := types.CanonicalPair(a, b)
	c := &types.Conversation{
		ID:      uuid.New(),
		User1ID: u1,
		User2ID: u2,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return c
}

func SeedMessage(tb testing.TB, ctx context.Context, tx *gorm.DB, conversationID, senderID uuid.UUID, content string, at time.Time) *types.Message {
	tb.Helper()
	m := &types.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Type:           types.MessageTypeText,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed message: %v", err)
	}
	return m
}

func SeedContact(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, contactUserID uuid.UUID) *types.Contact {
	tb.Helper()
	c := &types.Contact{
		ID:            uuid.New(),
		UserID:        userID,
		ContactUserID: contactUserID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed contact: %v", err)
	}
	return c
}

func SeedInvitation(tb testing.TB, ctx context.Context, tx *gorm.DB, senderID, receiverID uuid.UUID, status string) *types.ChatInvitation {
	tb.Helper()
	inv := &types.ChatInvitation{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     status,
	}
	if err := tx.WithContext(ctx).Create(inv).Error; err != nil {
		tb.Fatalf("seed invitation: %v", err)
	}
	return inv
}

func SeedAlert(tb testing.TB, ctx context.Context, tx *gorm.DB, senderID, receiverID uuid.UUID, status string, startedAt time.Time) *types.LocationAlert {
	tb.Helper()
	a := &types.LocationAlert{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     status,
		StartedAt:  startedAt,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed alert: %v", err)
	}
	return a
}
