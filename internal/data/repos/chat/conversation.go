package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/havenapp/haven-backend/internal/domain"
	chatdomain "github.com/havenapp/haven-backend/internal/domain/chat"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

type ConversationRepo interface {
	// EnsurePair creates the conversation for the unordered (a, b) pair if it
	// does not exist and returns the pair's single row either way. Safe under
	// concurrent callers: ON CONFLICT DO NOTHING then re-select.
	EnsurePair(dbc dbctx.Context, a, b uuid.UUID) (*types.Conversation, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error)
	GetByPair(dbc dbctx.Context, a, b uuid.UUID) (*types.Conversation, error)
	// ListVisibleByUser returns the user's conversations that carry no
	// deletion mark for that user, most recent activity first.
	ListVisibleByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Conversation, error)
	Touch(dbc dbctx.Context, id uuid.UUID, at time.Time) error
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: log.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) EnsurePair(dbc dbctx.Context, a, b uuid.UUID) (*types.Conversation, error) {
	if a == uuid.Nil || b == uuid.Nil {
		return nil, fmt.Errorf("missing participant id")
	}
	u1, u2 := chatdomain.CanonicalPair(a, b)
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &types.Conversation{
		ID:        uuid.New(),
		User1ID:   u1,
		User2ID:   u2,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByPair(dbc, u1, u2)
}

func (r *conversationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Conversation
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

func (r *conversationRepo) GetByPair(dbc dbctx.Context, a, b uuid.UUID) (*types.Conversation, error) {
	if a == uuid.Nil || b == uuid.Nil {
		return nil, fmt.Errorf("missing participant id")
	}
	u1, u2 := chatdomain.CanonicalPair(a, b)
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Conversation
	if err := txx.WithContext(dbc.Ctx).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *conversationRepo) ListVisibleByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Conversation, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Conversation
	if err := txx.WithContext(dbc.Ctx).
		Where("(user1_id = ? OR user2_id = ?)", userID, userID).
		Where(`NOT EXISTS (
			SELECT 1 FROM conversation_deleted_by cdb
			WHERE cdb.conversation_id = conversation.id AND cdb.user_id = ?
		)`, userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conversationRepo) Touch(dbc dbctx.Context, id uuid.UUID, at time.Time) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", at).Error
}
