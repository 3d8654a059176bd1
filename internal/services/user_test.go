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

func newUserService(t *testing.T, tx *gorm.DB) UserService {
	t.Helper()
	log := testutil.Logger(t)
	return NewUserService(tx, log, repos.NewUserRepo(tx, log), nil)
}

func TestGetMeReturnsOwnRow(t *testing.T) {
	tx := svcTx(t)
	svc := newUserService(t, tx)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, tx, testEmail("getme"))

	me, err := svc.GetMe(asUser(user.ID))
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	if me.ID != user.ID || me.Email != user.Email {
		t.Fatalf("me: want=%s/%s got=%s/%s", user.ID, user.Email, me.ID, me.Email)
	}

	_, err = svc.GetMe(asUser(uuid.New()))
	wantAPIError(t, err, http.StatusNotFound, "user_not_found")
}

func TestUpdateMePartial(t *testing.T) {
	tx := svcTx(t)
	svc := newUserService(t, tx)
	ctx := context.Background()
	user := testutil.SeedUser(t, ctx, tx, testEmail("updateme"))

	first := "Margaret"
	updated, err := svc.UpdateMe(asUser(user.ID), &first, nil)
	if err != nil {
		t.Fatalf("update me: %v", err)
	}
	if updated.FirstName != "Margaret" {
		t.Fatalf("first name: want=Margaret got=%s", updated.FirstName)
	}
	// The omitted field keeps its current value.
	if updated.LastName != user.LastName {
		t.Fatalf("last name: want=%s got=%s", user.LastName, updated.LastName)
	}

	var reloaded types.User
	if err := tx.WithContext(ctx).Where("id = ?", user.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.FirstName != "Margaret" {
		t.Fatalf("persisted first name: want=Margaret got=%s", reloaded.FirstName)
	}

	blank := "   "
	_, err = svc.UpdateMe(asUser(user.ID), &blank, nil)
	wantAPIError(t, err, http.StatusBadRequest, "validation_error")
}

func TestSearchUsersExcludesSelf(t *testing.T) {
	tx := svcTx(t)
	svc := newUserService(t, tx)
	ctx := context.Background()
	marker := uuid.NewString()[:8]
	me := testutil.SeedUser(t, ctx, tx, "search-"+marker+"-me@test.local")
	other := testutil.SeedUser(t, ctx, tx, "search-"+marker+"-other@test.local")

	found, err := svc.SearchUsers(asUser(me.ID), marker, 20)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("results: want=1 got=%d", len(found))
	}
	if found[0].ID != other.ID {
		t.Fatalf("result: want=%s got=%s", other.ID, found[0].ID)
	}

	empty, err := svc.SearchUsers(asUser(me.ID), "   ", 20)
	if err != nil {
		t.Fatalf("empty query: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("empty query results: want=0 got=%d", len(empty))
	}

	none, err := svc.SearchUsers(asUser(me.ID), uuid.NewString(), 20)
	if err != nil {
		t.Fatalf("no-match query: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("no-match results: want=0 got=%d", len(none))
	}
}
