package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/data/repos"
	"github.com/havenapp/haven-backend/internal/data/repos/testutil"
)

func newContactService(t *testing.T, tx *gorm.DB) ContactService {
	t.Helper()
	log := testutil.Logger(t)
	return NewContactService(
		tx, log,
		repos.NewUserRepo(tx, log),
		repos.NewContactRepo(tx, log),
		nil,
	)
}

func TestContactAddAndList(t *testing.T) {
	tx := svcTx(t)
	svc := newContactService(t, tx)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "contact-add")

	contact, err := svc.Add(asUser(a.ID), b.ID)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if contact.UserID != a.ID || contact.ContactUserID != b.ID {
		t.Fatalf("edge: want=(%s,%s) got=(%s,%s)", a.ID, b.ID, contact.UserID, contact.ContactUserID)
	}

	views, err := svc.List(asUser(a.ID))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views: want=1 got=%d", len(views))
	}
	if views[0].ContactUser.ID != b.ID {
		t.Fatalf("contact user: want=%s got=%s", b.ID, views[0].ContactUser.ID)
	}
}

func TestContactAddIdempotent(t *testing.T) {
	tx := svcTx(t)
	svc := newContactService(t, tx)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "contact-idem")

	first, err := svc.Add(asUser(a.ID), b.ID)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := svc.Add(asUser(a.ID), b.ID)
	if err != nil {
		t.Fatalf("repeat add: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("edge row: want=%s got=%s", first.ID, second.ID)
	}

	views, err := svc.List(asUser(a.ID))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views after repeat add: want=1 got=%d", len(views))
	}
}

func TestContactAddValidation(t *testing.T) {
	tx := svcTx(t)
	svc := newContactService(t, tx)
	ctx := context.Background()
	a := testutil.SeedUser(t, ctx, tx, "contact-val-"+uuid.NewString()[:8]+"@test.local")

	_, err := svc.Add(asUser(a.ID), a.ID)
	wantAPIError(t, err, http.StatusBadRequest, "validation_error")

	_, err = svc.Add(asUser(a.ID), uuid.New())
	wantAPIError(t, err, http.StatusNotFound, "user_not_found")
}

func TestContactEdgeIsDirected(t *testing.T) {
	tx := svcTx(t)
	svc := newContactService(t, tx)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "contact-dir")

	if _, err := svc.Add(asUser(a.ID), b.ID); err != nil {
		t.Fatalf("add: %v", err)
	}

	// a saved b; b never saved a.
	views, err := svc.List(asUser(b.ID))
	if err != nil {
		t.Fatalf("list as b: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("b's views: want=0 got=%d", len(views))
	}

	err = svc.Remove(asUser(b.ID), a.ID)
	wantAPIError(t, err, http.StatusNotFound, "contact_not_found")
}

func TestContactRemove(t *testing.T) {
	tx := svcTx(t)
	svc := newContactService(t, tx)
	ctx := context.Background()
	a, b := testutil.SeedUserPair(t, ctx, tx, "contact-rm")

	if _, err := svc.Add(asUser(a.ID), b.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(asUser(a.ID), b.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	views, err := svc.List(asUser(a.ID))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("views after remove: want=0 got=%d", len(views))
	}

	err = svc.Remove(asUser(a.ID), b.ID)
	wantAPIError(t, err, http.StatusNotFound, "contact_not_found")
}
