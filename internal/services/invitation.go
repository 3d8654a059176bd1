package services

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/data/repos"
	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/apierr"
	"github.com/havenapp/haven-backend/internal/pkg/ctxutil"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

// InvitationView pairs an invitation with the counterpart's summary: the
// sender for incoming invitations, the receiver for outgoing ones.
type InvitationView struct {
	*types.ChatInvitation
	Counterpart types.UserSummary `json:"counterpart"`
}

type InvitationService interface {
	Send(dbc dbctx.Context, receiverID uuid.UUID) (*types.ChatInvitation, error)
	List(dbc dbctx.Context, direction string) ([]InvitationView, error)
	Accept(dbc dbctx.Context, invitationID uuid.UUID) (*types.Conversation, error)
	Decline(dbc dbctx.Context, invitationID uuid.UUID) (*types.ChatInvitation, error)
	Cancel(dbc dbctx.Context, invitationID uuid.UUID) (*types.ChatInvitation, error)
}

type invitationService struct {
	db      *gorm.DB
	log     *logger.Logger
	users   repos.UserRepo
	invites repos.ChatInvitationRepo
	convs   repos.ConversationRepo
	notify  Notifier
}

func NewInvitationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	inviteRepo repos.ChatInvitationRepo,
	convRepo repos.ConversationRepo,
	notify Notifier,
) InvitationService {
	return &invitationService{
		db:      db,
		log:     baseLog.With("service", "InvitationService"),
		users:   userRepo,
		invites: inviteRepo,
		convs:   convRepo,
		notify:  notify,
	}
}

func (s *invitationService) Send(dbc dbctx.Context, receiverID uuid.UUID) (*types.ChatInvitation, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	if receiverID == uuid.Nil {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("receiver_id is required"))
	}
	if receiverID == rd.UserID {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("cannot invite yourself"))
	}

	receivers, err := s.users.GetByIDs(dbc, []uuid.UUID{receiverID})
	if err != nil {
		return nil, fmt.Errorf("load receiver: %w", err)
	}
	if len(receivers) == 0 {
		return nil, apierr.New(http.StatusNotFound, "user_not_found", fmt.Errorf("receiver not found"))
	}

	// Conflict on the (sender, receiver) pair resets the row to pending, so
	// re-inviting after a decline or cancel reuses the same row.
	inv, err := s.invites.Upsert(dbc, rd.UserID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("upsert invitation: %w", err)
	}

	if s.notify != nil {
		senders, sErr := s.users.GetByIDs(dbc, []uuid.UUID{rd.UserID})
		sender := types.UserSummary{}
		if sErr == nil && len(senders) > 0 {
			sender = types.Summarize(senders[0])
		}
		s.notify.InvitationReceived(receiverID, inv, sender)
	}
	return inv, nil
}

func (s *invitationService) List(dbc dbctx.Context, direction string) ([]InvitationView, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}

	var (
		rows []*types.ChatInvitation
		err  error
	)
	switch direction {
	case "incoming":
		rows, err = s.invites.ListByReceiver(dbc, rd.UserID, types.InvitationPending)
	case "outgoing":
		rows, err = s.invites.ListBySender(dbc, rd.UserID, types.InvitationPending)
	default:
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("direction must be incoming or outgoing"))
	}
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	counterpartIDs := make([]uuid.UUID, 0, len(rows))
	for _, inv := range rows {
		if direction == "incoming" {
			counterpartIDs = append(counterpartIDs, inv.SenderID)
		} else {
			counterpartIDs = append(counterpartIDs, inv.ReceiverID)
		}
	}
	summaries, err := s.summarizeUsers(dbc, counterpartIDs)
	if err != nil {
		return nil, err
	}

	out := make([]InvitationView, 0, len(rows))
	for _, inv := range rows {
		counterpartID := inv.SenderID
		if direction == "outgoing" {
			counterpartID = inv.ReceiverID
		}
		out = append(out, InvitationView{
			ChatInvitation: inv,
			Counterpart:    summaries[counterpartID],
		})
	}
	return out, nil
}

func (s *invitationService) Accept(dbc dbctx.Context, invitationID uuid.UUID) (*types.Conversation, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	if invitationID == uuid.Nil {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("invitation id is required"))
	}

	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}

	var conv *types.Conversation
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: txx}

		inv, lErr := s.invites.LockByID(inner, invitationID)
		if lErr != nil {
			return fmt.Errorf("lock invitation: %w", lErr)
		}
		if inv == nil {
			return apierr.New(http.StatusNotFound, "invitation_not_found", fmt.Errorf("invitation not found"))
		}
		if inv.ReceiverID != rd.UserID {
			return apierr.New(http.StatusForbidden, "permission_denied", fmt.Errorf("only the receiver may accept"))
		}
		switch inv.Status {
		case types.InvitationPending:
			if uErr := s.invites.UpdateStatus(inner, inv.ID, types.InvitationAccepted); uErr != nil {
				return fmt.Errorf("accept invitation: %w", uErr)
			}
		case types.InvitationAccepted:
			// Repeated accepts converge on the same conversation row.
		default:
			return apierr.New(http.StatusBadRequest, "invalid_state", fmt.Errorf("invitation is %s", inv.Status))
		}

		pair, eErr := s.convs.EnsurePair(inner, inv.SenderID, inv.ReceiverID)
		if eErr != nil {
			return fmt.Errorf("ensure conversation: %w", eErr)
		}
		conv = pair
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *invitationService) Decline(dbc dbctx.Context, invitationID uuid.UUID) (*types.ChatInvitation, error) {
	return s.resolve(dbc, invitationID, types.InvitationDeclined)
}

func (s *invitationService) Cancel(dbc dbctx.Context, invitationID uuid.UUID) (*types.ChatInvitation, error) {
	return s.resolve(dbc, invitationID, types.InvitationCanceled)
}

// resolve moves a pending invitation to declined (receiver) or canceled
// (sender); any other transition is a state error.
func (s *invitationService) resolve(dbc dbctx.Context, invitationID uuid.UUID, target string) (*types.ChatInvitation, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	if invitationID == uuid.Nil {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("invitation id is required"))
	}

	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}

	var out *types.ChatInvitation
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: txx}

		inv, lErr := s.invites.LockByID(inner, invitationID)
		if lErr != nil {
			return fmt.Errorf("lock invitation: %w", lErr)
		}
		if inv == nil {
			return apierr.New(http.StatusNotFound, "invitation_not_found", fmt.Errorf("invitation not found"))
		}
		switch target {
		case types.InvitationDeclined:
			if inv.ReceiverID != rd.UserID {
				return apierr.New(http.StatusForbidden, "permission_denied", fmt.Errorf("only the receiver may decline"))
			}
		case types.InvitationCanceled:
			if inv.SenderID != rd.UserID {
				return apierr.New(http.StatusForbidden, "permission_denied", fmt.Errorf("only the sender may cancel"))
			}
		default:
			return fmt.Errorf("unsupported transition: %s", target)
		}
		if inv.Status != types.InvitationPending {
			return apierr.New(http.StatusBadRequest, "invalid_state", fmt.Errorf("invitation is %s", inv.Status))
		}
		if uErr := s.invites.UpdateStatus(inner, inv.ID, target); uErr != nil {
			return fmt.Errorf("update invitation: %w", uErr)
		}
		inv.Status = target
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// summarizeUsers returns summaries keyed by user id; unknown ids map to the
// zero summary instead of failing the listing.
func (s *invitationService) summarizeUsers(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]types.UserSummary, error) {
	out := make(map[uuid.UUID]types.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.users.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load counterpart users: %w", err)
	}
	for _, u := range rows {
		out[u.ID] = types.Summarize(u)
	}
	return out, nil
}
