package library

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

type LibraryModuleRepo interface {
	Create(dbc dbctx.Context, row *types.LibraryModule) (*types.LibraryModule, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LibraryModule, error)
	List(dbc dbctx.Context, category string, limit, offset int) ([]*types.LibraryModule, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type libraryModuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLibraryModuleRepo(db *gorm.DB, log *logger.Logger) LibraryModuleRepo {
	return &libraryModuleRepo{db: db, log: log.With("repo", "LibraryModuleRepo")}
}

func (r *libraryModuleRepo) Create(dbc dbctx.Context, row *types.LibraryModule) (*types.LibraryModule, error) {
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

func (r *libraryModuleRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LibraryModule, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.LibraryModule
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

func (r *libraryModuleRepo) List(dbc dbctx.Context, category string, limit, offset int) ([]*types.LibraryModule, error) {
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
	query := txx.WithContext(dbc.Ctx).Model(&types.LibraryModule{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var out []*types.LibraryModule
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *libraryModuleRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.LibraryModule{}).Error
}
