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

type ConversationDeletedByRepo interface {
	// UpsertMark records that userID stopped seeing the conversation. A
	// repeated delete keeps the original mark timestamp (DO NOTHING).
	UpsertMark(dbc dbctx.Context, conversationID, userID uuid.UUID) (*types.ConversationDeletedBy, error)
	Get(dbc dbctx.Context, conversationID, userID uuid.UUID) (*types.ConversationDeletedBy, error)
	// DeleteMark clears the mark and reports whether one existed.
	DeleteMark(dbc dbctx.Context, conversationID, userID uuid.UUID) (bool, error)
}

type conversationDeletedByRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationDeletedByRepo(db *gorm.DB, log *logger.Logger) ConversationDeletedByRepo {
	return &conversationDeletedByRepo{db: db, log: log.With("repo", "ConversationDeletedByRepo")}
}

func (r *conversationDeletedByRepo) UpsertMark(dbc dbctx.Context, conversationID, userID uuid.UUID) (*types.ConversationDeletedBy, error) {
	if conversationID == uuid.Nil || userID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id or user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &types.ConversationDeletedBy{
		ID:             uuid.New(),
		ConversationID: conversationID,
		UserID:         userID,
		DeletedAt:      time.Now().UTC(),
		CreatedAt:      time.Now().UTC(),
	}
	if err := txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, conversationID, userID)
}

func (r *conversationDeletedByRepo) Get(dbc dbctx.Context, conversationID, userID uuid.UUID) (*types.ConversationDeletedBy, error) {
	if conversationID == uuid.Nil || userID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id or user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.ConversationDeletedBy
	if err := txx.WithContext(dbc.Ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *conversationDeletedByRepo) DeleteMark(dbc dbctx.Context, conversationID, userID uuid.UUID) (bool, error) {
	if conversationID == uuid.Nil || userID == uuid.Nil {
		return false, fmt.Errorf("missing conversation_id or user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Delete(&types.ConversationDeletedBy{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
