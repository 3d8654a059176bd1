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

func newJobPostService(t *testing.T, tx *gorm.DB) JobPostService {
	t.Helper()
	log := testutil.Logger(t)
	return NewJobPostService(tx, log, repos.NewJobPostRepo(tx, log))
}

func TestJobPostCreateDefaultsToOpen(t *testing.T) {
	tx := svcTx(t)
	svc := newJobPostService(t, tx)
	ctx := context.Background()
	author := testutil.SeedUser(t, ctx, tx, testEmail("post-create"))

	post, err := svc.Create(asUser(author.ID), JobPostInput{
		Title:   "  Backend Engineer ",
		Company: "Haven",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.Title != "Backend Engineer" {
		t.Fatalf("title: want=%q got=%q", "Backend Engineer", post.Title)
	}
	if post.Status != types.JobPostOpen {
		t.Fatalf("status: want=%s got=%s", types.JobPostOpen, post.Status)
	}
	if post.AuthorID != author.ID {
		t.Fatalf("author: want=%s got=%s", author.ID, post.AuthorID)
	}
}

func TestJobPostCreateRequiresTitleAndCompany(t *testing.T) {
	tx := svcTx(t)
	svc := newJobPostService(t, tx)
	ctx := context.Background()
	author := testutil.SeedUser(t, ctx, tx, testEmail("post-val"))

	_, err := svc.Create(asUser(author.ID), JobPostInput{Title: "  ", Company: "Haven"})
	wantAPIError(t, err, http.StatusBadRequest, "validation_error")

	_, err = svc.Create(asUser(author.ID), JobPostInput{Title: "Engineer", Company: ""})
	wantAPIError(t, err, http.StatusBadRequest, "validation_error")
}

func TestJobPostUpdateIsAuthorOnly(t *testing.T) {
	tx := svcTx(t)
	svc := newJobPostService(t, tx)
	ctx := context.Background()
	author, other := testutil.SeedUserPair(t, ctx, tx, "post-owner")

	post, err := svc.Create(asUser(author.ID), JobPostInput{Title: "Engineer", Company: "Haven"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Senior Engineer"
	_, err = svc.Update(asUser(other.ID), post.ID, JobPostUpdate{Title: &title})
	wantAPIError(t, err, http.StatusForbidden, "permission_denied")

	updated, err := svc.Update(asUser(author.ID), post.ID, JobPostUpdate{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("title: want=%q got=%q", title, updated.Title)
	}
	// Untouched fields survive a partial update.
	if updated.Company != "Haven" {
		t.Fatalf("company: want=Haven got=%q", updated.Company)
	}

	bogus := "archived"
	_, err = svc.Update(asUser(author.ID), post.ID, JobPostUpdate{Status: &bogus})
	wantAPIError(t, err, http.StatusBadRequest, "validation_error")
}

func TestJobPostDeleteHidesPost(t *testing.T) {
	tx := svcTx(t)
	svc := newJobPostService(t, tx)
	ctx := context.Background()
	author, other := testutil.SeedUserPair(t, ctx, tx, "post-del")

	post, err := svc.Create(asUser(author.ID), JobPostInput{Title: "Engineer", Company: "Haven"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.Delete(asUser(other.ID), post.ID)
	wantAPIError(t, err, http.StatusForbidden, "permission_denied")

	if err := svc.Delete(asUser(author.ID), post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = svc.Get(asUser(author.ID), post.ID)
	wantAPIError(t, err, http.StatusNotFound, "job_post_not_found")
}

func TestJobPostListFiltersByStatus(t *testing.T) {
	tx := svcTx(t)
	svc := newJobPostService(t, tx)
	ctx := context.Background()
	author := testutil.SeedUser(t, ctx, tx, testEmail("post-list"))

	open, err := svc.Create(asUser(author.ID), JobPostInput{Title: "Open Role", Company: "Haven"})
	if err != nil {
		t.Fatalf("create open: %v", err)
	}
	closedPost, err := svc.Create(asUser(author.ID), JobPostInput{Title: "Closed Role", Company: "Haven"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	closed := types.JobPostClosed
	if _, err := svc.Update(asUser(author.ID), closedPost.ID, JobPostUpdate{Status: &closed}); err != nil {
		t.Fatalf("close post: %v", err)
	}

	openPosts, err := svc.List(asUser(author.ID), types.JobPostOpen, 100, 0)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if !containsPost(openPosts, open.ID) {
		t.Fatalf("open list missing %s", open.ID)
	}
	if containsPost(openPosts, closedPost.ID) {
		t.Fatalf("open list contains closed post %s", closedPost.ID)
	}

	closedPosts, err := svc.List(asUser(author.ID), types.JobPostClosed, 100, 0)
	if err != nil {
		t.Fatalf("list closed: %v", err)
	}
	if !containsPost(closedPosts, closedPost.ID) {
		t.Fatalf("closed list missing %s", closedPost.ID)
	}

	_, err = svc.List(asUser(author.ID), "archived", 100, 0)
	wantAPIError(t, err, http.StatusBadRequest, "validation_error")
}

func containsPost(posts []*types.JobPost, id uuid.UUID) bool {
	for _, p := range posts {
		if p.ID == id {
			return true
		}
	}
	return false
}
