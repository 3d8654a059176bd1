package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

type LocationSnapshotRepo interface {
	// Upsert writes the user's single snapshot row, overwriting coordinates
	// in place on conflict.
	Upsert(dbc dbctx.Context, userID uuid.UUID, latitude, longitude float64, accuracy *float64) (*types.LocationSnapshot, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.LocationSnapshot, error)
}

type locationSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLocationSnapshotRepo(db *gorm.DB, log *logger.Logger) LocationSnapshotRepo {
	return &locationSnapshotRepo{db: db, log: log.With("repo", "LocationSnapshotRepo")}
}

func (r *locationSnapshotRepo) Upsert(dbc dbctx.Context, userID uuid.UUID, latitude, longitude float64, accuracy *float64) (*types.LocationSnapshot, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &types.LocationSnapshot{
		UserID:    userID,
		Latitude:  latitude,
		Longitude: longitude,
		Accuracy:  accuracy,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"latitude", "longitude", "accuracy", "updated_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *locationSnapshotRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.LocationSnapshot, error) {
	if len(userIDs) == 0 {
		return []*types.LocationSnapshot{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.LocationSnapshot
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id IN ?", userIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
