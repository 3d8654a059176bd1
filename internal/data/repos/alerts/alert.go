package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

// IncomingAlert is one active alert joined with the sender's latest location
// snapshot. Coordinates are nullable: the alert is visible even before the
// sender ever reported a position.
type IncomingAlert struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`

	Latitude          *float64   `json:"latitude,omitempty"`
	Longitude         *float64   `json:"longitude,omitempty"`
	Accuracy          *float64   `json:"accuracy,omitempty"`
	LocationUpdatedAt *time.Time `json:"location_updated_at,omitempty"`
}

type LocationAlertRepo interface {
	Create(dbc dbctx.Context, row *types.LocationAlert) (*types.LocationAlert, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LocationAlert, error)
	// DeactivatePair ends every active alert of the ordered (sender, receiver)
	// pair and reports how many rows it closed.
	DeactivatePair(dbc dbctx.Context, senderID, receiverID uuid.UUID, endedAt time.Time) (int64, error)
	Deactivate(dbc dbctx.Context, id uuid.UUID, endedAt time.Time) (int64, error)
	ListActiveIncoming(dbc dbctx.Context, receiverID uuid.UUID) ([]*IncomingAlert, error)
	CountActiveIncoming(dbc dbctx.Context, receiverID uuid.UUID) (int64, error)
	CountByPair(dbc dbctx.Context, senderID, receiverID uuid.UUID) (int64, error)
}

type locationAlertRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLocationAlertRepo(db *gorm.DB, log *logger.Logger) LocationAlertRepo {
	return &locationAlertRepo{db: db, log: log.With("repo", "LocationAlertRepo")}
}

func (r *locationAlertRepo) Create(dbc dbctx.Context, row *types.LocationAlert) (*types.LocationAlert, error) {
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

func (r *locationAlertRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LocationAlert, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.LocationAlert
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

func (r *locationAlertRepo) DeactivatePair(dbc dbctx.Context, senderID, receiverID uuid.UUID, endedAt time.Time) (int64, error) {
	if senderID == uuid.Nil || receiverID == uuid.Nil {
		return 0, fmt.Errorf("missing sender_id or receiver_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Model(&types.LocationAlert{}).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, types.AlertActive).
		Updates(map[string]interface{}{
			"status":     types.AlertInactive,
			"ended_at":   endedAt,
			"updated_at": endedAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *locationAlertRepo) Deactivate(dbc dbctx.Context, id uuid.UUID, endedAt time.Time) (int64, error) {
	if id == uuid.Nil {
		return 0, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Model(&types.LocationAlert{}).
		Where("id = ? AND status = ?", id, types.AlertActive).
		Updates(map[string]interface{}{
			"status":     types.AlertInactive,
			"ended_at":   endedAt,
			"updated_at": endedAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *locationAlertRepo) ListActiveIncoming(dbc dbctx.Context, receiverID uuid.UUID) ([]*IncomingAlert, error) {
	if receiverID == uuid.Nil {
		return nil, fmt.Errorf("missing receiver_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*IncomingAlert
	if err := txx.WithContext(dbc.Ctx).
		Table("location_alert").
		Select(`location_alert.id,
			location_alert.sender_id,
			location_alert.receiver_id,
			location_alert.status,
			location_alert.started_at,
			location_snapshot.latitude,
			location_snapshot.longitude,
			location_snapshot.accuracy,
			location_snapshot.updated_at AS location_updated_at`).
		Joins("LEFT JOIN location_snapshot ON location_snapshot.user_id = location_alert.sender_id").
		Where("location_alert.receiver_id = ? AND location_alert.status = ?", receiverID, types.AlertActive).
		Order("location_alert.started_at DESC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *locationAlertRepo) CountActiveIncoming(dbc dbctx.Context, receiverID uuid.UUID) (int64, error) {
	if receiverID == uuid.Nil {
		return 0, fmt.Errorf("missing receiver_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.LocationAlert{}).
		Where("receiver_id = ? AND status = ?", receiverID, types.AlertActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *locationAlertRepo) CountByPair(dbc dbctx.Context, senderID, receiverID uuid.UUID) (int64, error) {
	if senderID == uuid.Nil || receiverID == uuid.Nil {
		return 0, fmt.Errorf("missing sender_id or receiver_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.LocationAlert{}).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
