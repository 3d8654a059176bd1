package services

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/data/repos"
	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/apierr"
	"github.com/havenapp/haven-backend/internal/pkg/ctxutil"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

// JobPostInput carries the writable fields of a post. Title and Company are
// required on create; everything else is optional.
type JobPostInput struct {
	Title       string
	Company     string
	Location    string
	Description string
	SalaryRange string
	Metadata    datatypes.JSON
}

// JobPostUpdate is a partial update: nil fields keep their current value.
type JobPostUpdate struct {
	Title       *string
	Company     *string
	Location    *string
	Description *string
	SalaryRange *string
	Status      *string
	Metadata    datatypes.JSON
}

type JobPostService interface {
	Create(dbc dbctx.Context, in JobPostInput) (*types.JobPost, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.JobPost, error)
	List(dbc dbctx.Context, status string, limit, offset int) ([]*types.JobPost, error)
	Update(dbc dbctx.Context, id uuid.UUID, in JobPostUpdate) (*types.JobPost, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type jobPostService struct {
	db    *gorm.DB
	log   *logger.Logger
	posts repos.JobPostRepo
}

func NewJobPostService(db *gorm.DB, baseLog *logger.Logger, postRepo repos.JobPostRepo) JobPostService {
	return &jobPostService{
		db:    db,
		log:   baseLog.With("service", "JobPostService"),
		posts: postRepo,
	}
}

func (s *jobPostService) Create(dbc dbctx.Context, in JobPostInput) (*types.JobPost, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Company = strings.TrimSpace(in.Company)
	if in.Title == "" || in.Company == "" {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("title and company are required"))
	}

	row := &types.JobPost{
		ID:          uuid.New(),
		AuthorID:    rd.UserID,
		Title:       in.Title,
		Company:     in.Company,
		Location:    strings.TrimSpace(in.Location),
		Description: in.Description,
		SalaryRange: strings.TrimSpace(in.SalaryRange),
		Status:      types.JobPostOpen,
	}
	if len(in.Metadata) > 0 {
		row.Metadata = in.Metadata
	}
	created, err := s.posts.Create(dbc, row)
	if err != nil {
		return nil, fmt.Errorf("create job post: %w", err)
	}
	return created, nil
}

func (s *jobPostService) Get(dbc dbctx.Context, id uuid.UUID) (*types.JobPost, error) {
	post, err := s.posts.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load job post: %w", err)
	}
	if post == nil {
		return nil, apierr.New(http.StatusNotFound, "job_post_not_found", fmt.Errorf("job post not found"))
	}
	return post, nil
}

func (s *jobPostService) List(dbc dbctx.Context, status string, limit, offset int) ([]*types.JobPost, error) {
	if status != "" && status != types.JobPostOpen && status != types.JobPostClosed {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("status must be open or closed"))
	}
	posts, err := s.posts.List(dbc, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list job posts: %w", err)
	}
	return posts, nil
}

func (s *jobPostService) Update(dbc dbctx.Context, id uuid.UUID, in JobPostUpdate) (*types.JobPost, error) {
	post, err := s.loadOwnPost(dbc, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("title cannot be empty"))
		}
		updates["title"] = title
		post.Title = title
	}
	if in.Company != nil {
		company := strings.TrimSpace(*in.Company)
		if company == "" {
			return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("company cannot be empty"))
		}
		updates["company"] = company
		post.Company = company
	}
	if in.Location != nil {
		updates["location"] = strings.TrimSpace(*in.Location)
		post.Location = strings.TrimSpace(*in.Location)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
		post.Description = *in.Description
	}
	if in.SalaryRange != nil {
		updates["salary_range"] = strings.TrimSpace(*in.SalaryRange)
		post.SalaryRange = strings.TrimSpace(*in.SalaryRange)
	}
	if in.Status != nil {
		if *in.Status != types.JobPostOpen && *in.Status != types.JobPostClosed {
			return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("status must be open or closed"))
		}
		updates["status"] = *in.Status
		post.Status = *in.Status
	}
	if len(in.Metadata) > 0 {
		updates["metadata"] = in.Metadata
		post.Metadata = in.Metadata
	}
	if len(updates) == 0 {
		return post, nil
	}

	if err := s.posts.UpdateFields(dbc, post.ID, updates); err != nil {
		return nil, fmt.Errorf("update job post: %w", err)
	}
	return post, nil
}

func (s *jobPostService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	post, err := s.loadOwnPost(dbc, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(dbc, post.ID); err != nil {
		return fmt.Errorf("delete job post: %w", err)
	}
	return nil
}

func (s *jobPostService) loadOwnPost(dbc dbctx.Context, id uuid.UUID) (*types.JobPost, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	post, err := s.posts.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load job post: %w", err)
	}
	if post == nil {
		return nil, apierr.New(http.StatusNotFound, "job_post_not_found", fmt.Errorf("job post not found"))
	}
	if post.AuthorID != rd.UserID {
		return nil, apierr.New(http.StatusForbidden, "permission_denied", fmt.Errorf("only the author can modify a job post"))
	}
	return post, nil
}
