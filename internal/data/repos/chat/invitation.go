package chat

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

type ChatInvitationRepo interface {
	// Upsert inserts the (sender, receiver) invitation or, when the pair
	// already has a row, resets it to pending. The returned row is always the
	// pair's single canonical row.
	Upsert(dbc dbctx.Context, senderID, receiverID uuid.UUID) (*types.ChatInvitation, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ChatInvitation, error)
	GetByPair(dbc dbctx.Context, senderID, receiverID uuid.UUID) (*types.ChatInvitation, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.ChatInvitation, error)
	ListBySender(dbc dbctx.Context, senderID uuid.UUID, status string) ([]*types.ChatInvitation, error)
	ListByReceiver(dbc dbctx.Context, receiverID uuid.UUID, status string) ([]*types.ChatInvitation, error)
	CountByReceiver(dbc dbctx.Context, receiverID uuid.UUID, status string) (int64, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error
}

type chatInvitationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatInvitationRepo(db *gorm.DB, log *logger.Logger) ChatInvitationRepo {
	return &chatInvitationRepo{db: db, log: log.With("repo", "ChatInvitationRepo")}
}

func (r *chatInvitationRepo) Upsert(dbc dbctx.Context, senderID, receiverID uuid.UUID) (*types.ChatInvitation, error) {
	if senderID == uuid.Nil || receiverID == uuid.Nil {
		return nil, fmt.Errorf("missing sender_id or receiver_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &types.ChatInvitation{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     types.InvitationPending,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sender_id"}, {Name: "receiver_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByPair(dbc, senderID, receiverID)
}

func (r *chatInvitationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ChatInvitation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.ChatInvitation
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

func (r *chatInvitationRepo) GetByPair(dbc dbctx.Context, senderID, receiverID uuid.UUID) (*types.ChatInvitation, error) {
	if senderID == uuid.Nil || receiverID == uuid.Nil {
		return nil, fmt.Errorf("missing sender_id or receiver_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.ChatInvitation
	if err := txx.WithContext(dbc.Ctx).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *chatInvitationRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.ChatInvitation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out types.ChatInvitation
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *chatInvitationRepo) ListBySender(dbc dbctx.Context, senderID uuid.UUID, status string) ([]*types.ChatInvitation, error) {
	if senderID == uuid.Nil {
		return nil, fmt.Errorf("missing sender_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	query := txx.WithContext(dbc.Ctx).
		Where("sender_id = ?", senderID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var out []*types.ChatInvitation
	if err := query.
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chatInvitationRepo) ListByReceiver(dbc dbctx.Context, receiverID uuid.UUID, status string) ([]*types.ChatInvitation, error) {
	if receiverID == uuid.Nil {
		return nil, fmt.Errorf("missing receiver_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	query := txx.WithContext(dbc.Ctx).
		Where("receiver_id = ?", receiverID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var out []*types.ChatInvitation
	if err := query.
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chatInvitationRepo) CountByReceiver(dbc dbctx.Context, receiverID uuid.UUID, status string) (int64, error) {
	if receiverID == uuid.Nil {
		return 0, fmt.Errorf("missing receiver_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	query := txx.WithContext(dbc.Ctx).
		Model(&types.ChatInvitation{}).
		Where("receiver_id = ?", receiverID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *chatInvitationRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.ChatInvitation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}
