package services

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/data/repos"
	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/apierr"
	"github.com/havenapp/haven-backend/internal/pkg/ctxutil"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

// ConversationView is one row of the conversation list: the counterpart's
// summary, the latest message, and the viewer's unread count.
type ConversationView struct {
	ID          uuid.UUID         `json:"id"`
	Counterpart types.UserSummary `json:"counterpart"`
	LastMessage *types.Message    `json:"last_message,omitempty"`
	UnreadCount int64             `json:"unread_count"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type ConversationService interface {
	List(dbc dbctx.Context, limit int) ([]ConversationView, error)
	Delete(dbc dbctx.Context, conversationID uuid.UUID) error
	// GetMessages returns one ascending page and, in the same transaction,
	// marks the counterpart's unread messages in the conversation as read.
	GetMessages(dbc dbctx.Context, conversationID uuid.UUID, limit, offset int) ([]*types.Message, error)
	SendMessage(dbc dbctx.Context, conversationID uuid.UUID, content, msgType string) (*types.Message, error)
}

type conversationService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	convs    repos.ConversationRepo
	marks    repos.ConversationDeletedByRepo
	msgs     repos.MessageRepo
	presence PresenceService
	notify   Notifier
}

func NewConversationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	convRepo repos.ConversationRepo,
	markRepo repos.ConversationDeletedByRepo,
	msgRepo repos.MessageRepo,
	presence PresenceService,
	notify Notifier,
) ConversationService {
	return &conversationService{
		db:       db,
		log:      baseLog.With("service", "ConversationService"),
		users:    userRepo,
		convs:    convRepo,
		marks:    markRepo,
		msgs:     msgRepo,
		presence: presence,
		notify:   notify,
	}
}

func (s *conversationService) List(dbc dbctx.Context, limit int) ([]ConversationView, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}

	convs, err := s.convs.ListVisibleByUser(dbc, rd.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if len(convs) == 0 {
		return []ConversationView{}, nil
	}

	convIDs := make([]uuid.UUID, 0, len(convs))
	counterpartIDs := make([]uuid.UUID, 0, len(convs))
	for _, conv := range convs {
		convIDs = append(convIDs, conv.ID)
		counterpartIDs = append(counterpartIDs, conv.OtherUser(rd.UserID))
	}

	counterparts, err := s.users.GetByIDs(dbc, counterpartIDs)
	if err != nil {
		return nil, fmt.Errorf("load counterparts: %w", err)
	}
	summaries := make(map[uuid.UUID]types.UserSummary, len(counterparts))
	for _, u := range counterparts {
		summaries[u.ID] = types.Summarize(u)
	}

	unread, err := s.msgs.UnreadCountByConversations(dbc, convIDs, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	latest, err := s.msgs.LatestByConversations(dbc, convIDs)
	if err != nil {
		return nil, fmt.Errorf("load latest messages: %w", err)
	}

	out := make([]ConversationView, 0, len(convs))
	for _, conv := range convs {
		out = append(out, ConversationView{
			ID:          conv.ID,
			Counterpart: summaries[conv.OtherUser(rd.UserID)],
			LastMessage: latest[conv.ID],
			UnreadCount: unread[conv.ID],
			CreatedAt:   conv.CreatedAt,
			UpdatedAt:   conv.UpdatedAt,
		})
	}

	refs := make([]*types.UserSummary, 0, len(out))
	for i := range out {
		refs = append(refs, &out[i].Counterpart)
	}
	decoratePresence(dbc.Ctx, s.presence, refs...)
	return out, nil
}

func (s *conversationService) Delete(dbc dbctx.Context, conversationID uuid.UUID) error {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}

	conv, err := s.loadParticipantConversation(dbc, conversationID, rd.UserID)
	if err != nil {
		return err
	}

	// DO NOTHING on conflict: repeat deletes keep the first mark timestamp.
	if _, err := s.marks.UpsertMark(dbc, conv.ID, rd.UserID); err != nil {
		return fmt.Errorf("mark conversation deleted: %w", err)
	}
	return nil
}

func (s *conversationService) GetMessages(dbc dbctx.Context, conversationID uuid.UUID, limit, offset int) ([]*types.Message, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}

	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}

	var page []*types.Message
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: txx}

		conv, cErr := s.loadParticipantConversation(inner, conversationID, rd.UserID)
		if cErr != nil {
			return cErr
		}

		var cutoff *time.Time
		mark, mErr := s.marks.Get(inner, conv.ID, rd.UserID)
		if mErr != nil {
			return fmt.Errorf("load deletion mark: %w", mErr)
		}
		if mark != nil {
			cutoff = &mark.DeletedAt
		}

		// Mark before reading so the returned rows carry is_read = true.
		if _, rErr := s.msgs.MarkCounterpartRead(inner, conv.ID, rd.UserID); rErr != nil {
			return fmt.Errorf("mark messages read: %w", rErr)
		}

		rows, lErr := s.msgs.ListPageDesc(inner, conv.ID, cutoff, limit, offset)
		if lErr != nil {
			return fmt.Errorf("list messages: %w", lErr)
		}
		page = rows
		return nil
	})
	if err != nil {
		return nil, err
	}

	// DESC page flipped in memory so callers always render ascending.
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, nil
}

func (s *conversationService) SendMessage(dbc dbctx.Context, conversationID uuid.UUID, content, msgType string) (*types.Message, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("message content is required"))
	}
	if msgType == "" {
		msgType = types.MessageTypeText
	}

	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}

	var (
		msg           *types.Message
		conv          *types.Conversation
		counterpartID uuid.UUID
		restored      bool
	)
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: txx}

		loaded, cErr := s.loadParticipantConversation(inner, conversationID, rd.UserID)
		if cErr != nil {
			return cErr
		}
		conv = loaded
		counterpartID = conv.OtherUser(rd.UserID)

		// Sending restores the conversation for the counterpart; the sender's
		// own mark is only ever cleared by the counterpart's next send.
		cleared, dErr := s.marks.DeleteMark(inner, conv.ID, counterpartID)
		if dErr != nil {
			return fmt.Errorf("clear counterpart mark: %w", dErr)
		}
		restored = cleared

		row := &types.Message{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			SenderID:       rd.UserID,
			Content:        content,
			Type:           msgType,
		}
		created, mErr := s.msgs.Create(inner, row)
		if mErr != nil {
			return fmt.Errorf("create message: %w", mErr)
		}
		msg = created

		if tErr := s.convs.Touch(inner, conv.ID, time.Now().UTC()); tErr != nil {
			return fmt.Errorf("touch conversation: %w", tErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify.MessageCreated(counterpartID, conv.ID, msg)
		if restored {
			s.notify.ConversationRestored(counterpartID, conv)
		}
	}
	return msg, nil
}

func (s *conversationService) loadParticipantConversation(dbc dbctx.Context, conversationID, userID uuid.UUID) (*types.Conversation, error) {
	if conversationID == uuid.Nil {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("conversation id is required"))
	}
	conv, err := s.convs.GetByID(dbc, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv == nil {
		return nil, apierr.New(http.StatusNotFound, "conversation_not_found", fmt.Errorf("conversation not found"))
	}
	if !conv.HasParticipant(userID) {
		return nil, apierr.New(http.StatusForbidden, "permission_denied", fmt.Errorf("not a participant"))
	}
	return conv, nil
}
