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

type ContactRepo interface {
	// Upsert adds the directed (owner → contact) edge. On conflict only
	// updated_at moves; the original created_at survives re-adds.
	Upsert(dbc dbctx.Context, userID, contactUserID uuid.UUID) (*types.Contact, error)
	GetPair(dbc dbctx.Context, userID, contactUserID uuid.UUID) (*types.Contact, error)
	Exists(dbc dbctx.Context, userID, contactUserID uuid.UUID) (bool, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Contact, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	DeletePair(dbc dbctx.Context, userID, contactUserID uuid.UUID) (bool, error)
}

type contactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactRepo(db *gorm.DB, log *logger.Logger) ContactRepo {
	return &contactRepo{db: db, log: log.With("repo", "ContactRepo")}
}

func (r *contactRepo) Upsert(dbc dbctx.Context, userID, contactUserID uuid.UUID) (*types.Contact, error) {
	if userID == uuid.Nil || contactUserID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id or contact_user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &types.Contact{
		ID:            uuid.New(),
		UserID:        userID,
		ContactUserID: contactUserID,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "contact_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetPair(dbc, userID, contactUserID)
}

func (r *contactRepo) GetPair(dbc dbctx.Context, userID, contactUserID uuid.UUID) (*types.Contact, error) {
	if userID == uuid.Nil || contactUserID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id or contact_user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Contact
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND contact_user_id = ?", userID, contactUserID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *contactRepo) Exists(dbc dbctx.Context, userID, contactUserID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || contactUserID == uuid.Nil {
		return false, fmt.Errorf("missing user_id or contact_user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Contact{}).
		Where("user_id = ? AND contact_user_id = ?", userID, contactUserID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *contactRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Contact, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Contact
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contactRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Contact{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *contactRepo) DeletePair(dbc dbctx.Context, userID, contactUserID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || contactUserID == uuid.Nil {
		return false, fmt.Errorf("missing user_id or contact_user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND contact_user_id = ?", userID, contactUserID).
		Delete(&types.Contact{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
