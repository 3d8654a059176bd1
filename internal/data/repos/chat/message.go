package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

type MessageRepo interface {
	Create(dbc dbctx.Context, row *types.Message) (*types.Message, error)
	// ListPageDesc returns one page ordered newest-first; offset 0 is the most
	// recent page. after, when set, hides messages at or before the viewer's
	// deletion mark.
	ListPageDesc(dbc dbctx.Context, conversationID uuid.UUID, after *time.Time, limit, offset int) ([]*types.Message, error)
	// MarkCounterpartRead flags every unread message NOT sent by readerID.
	MarkCounterpartRead(dbc dbctx.Context, conversationID, readerID uuid.UUID) (int64, error)
	UnreadCountByConversations(dbc dbctx.Context, conversationIDs []uuid.UUID, readerID uuid.UUID) (map[uuid.UUID]int64, error)
	UnreadTotalForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	LatestByConversations(dbc dbctx.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]*types.Message, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: log.With("repo", "MessageRepo")}
}

func (r *messageRepo) Create(dbc dbctx.Context, row *types.Message) (*types.Message, error) {
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

func (r *messageRepo) ListPageDesc(dbc dbctx.Context, conversationID uuid.UUID, after *time.Time, limit, offset int) ([]*types.Message, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	query := txx.WithContext(dbc.Ctx).
		Where("conversation_id = ?", conversationID)
	if after != nil {
		query = query.Where("created_at > ?", *after)
	}
	var out []*types.Message
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *messageRepo) MarkCounterpartRead(dbc dbctx.Context, conversationID, readerID uuid.UUID) (int64, error) {
	if conversationID == uuid.Nil || readerID == uuid.Nil {
		return 0, fmt.Errorf("missing conversation_id or reader_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Model(&types.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Updates(map[string]interface{}{
			"is_read":    true,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *messageRepo) UnreadCountByConversations(dbc dbctx.Context, conversationIDs []uuid.UUID, readerID uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	if readerID == uuid.Nil {
		return nil, fmt.Errorf("missing reader_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var rows []struct {
		ConversationID uuid.UUID
		Count          int64
	}
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Message{}).
		Select("conversation_id, COUNT(*) AS count").
		Where("conversation_id IN ? AND sender_id <> ? AND is_read = ?", conversationIDs, readerID, false).
		Group("conversation_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ConversationID] = row.Count
	}
	return out, nil
}

func (r *messageRepo) LatestByConversations(dbc dbctx.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]*types.Message, error) {
	out := make(map[uuid.UUID]*types.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var rows []*types.Message
	if err := txx.WithContext(dbc.Ctx).
		Select("DISTINCT ON (conversation_id) *").
		Where("conversation_id IN ?", conversationIDs).
		Order("conversation_id, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ConversationID] = row
	}
	return out, nil
}

func (r *messageRepo) UnreadTotalForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Message{}).
		Joins(`JOIN conversation ON conversation.id = message.conversation_id`).
		Where("(conversation.user1_id = ? OR conversation.user2_id = ?)", userID, userID).
		Where("message.sender_id <> ? AND message.is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
