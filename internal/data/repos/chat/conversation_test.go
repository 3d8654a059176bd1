package chat

import (
	"context"
	"testing"

	"github.com/havenapp/haven-backend/internal/data/repos/testutil"
	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
)

func TestEnsurePairCanonicalizesOrder(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewConversationRepo(tx, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	a, b := testutil.SeedUserPair(t, ctx, tx, "conv-pair")

	first, err := repo.EnsurePair(dbc, a.ID, b.ID)
	if err != nil {
		t.Fatalf("ensure a,b: %v", err)
	}
	u1, u2 := types.CanonicalPair(a.ID, b.ID)
	if first.User1ID != u1 || first.User2ID != u2 {
		t.Fatalf("participants not canonical: got (%s, %s) want (%s, %s)",
			first.User1ID, first.User2ID, u1, u2)
	}

	// Swapped arguments resolve to the same row.
	second, err := repo.EnsurePair(dbc, b.ID, a.ID)
	if err != nil {
		t.Fatalf("ensure b,a: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("swapped args created a new conversation: want=%s got=%s", first.ID, second.ID)
	}

	var count int64
	if err := tx.WithContext(ctx).
		Model(&types.Conversation{}).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows for pair: want=1 got=%d", count)
	}

	if got, err := repo.GetByPair(dbc, b.ID, a.ID); err != nil || got == nil || got.ID != first.ID {
		t.Fatalf("get by swapped pair: want=%s got=%#v err=%v", first.ID, got, err)
	}
}
