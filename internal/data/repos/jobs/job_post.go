package jobs

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

type JobPostRepo interface {
	Create(dbc dbctx.Context, row *types.JobPost) (*types.JobPost, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobPost, error)
	List(dbc dbctx.Context, status string, limit, offset int) ([]*types.JobPost, error)
	CountByStatus(dbc dbctx.Context, status string) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type jobPostRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobPostRepo(db *gorm.DB, log *logger.Logger) JobPostRepo {
	return &jobPostRepo{db: db, log: log.With("repo", "JobPostRepo")}
}

func (r *jobPostRepo) Create(dbc dbctx.Context, row *types.JobPost) (*types.JobPost, error) {
	if row == nil {
		return nil, fmt.Errorf("missing row")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *jobPostRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobPost, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.JobPost
	if err := txx.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *jobPostRepo) List(dbc dbctx.Context, status string, limit, offset int) ([]*types.JobPost, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	query := txx.WithContext(dbc.Ctx).Model(&types.JobPost{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var out []*types.JobPost
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobPostRepo) CountByStatus(dbc dbctx.Context, status string) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	query := txx.WithContext(dbc.Ctx).Model(&types.JobPost{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *jobPostRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.JobPost{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *jobPostRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.JobPost{}).Error
}
