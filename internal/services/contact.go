package services

import (
	"fmt"
	"net/http"
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

// ContactView pairs the directed edge with the contact user's summary.
type ContactView struct {
	ID          uuid.UUID         `json:"id"`
	ContactUser types.UserSummary `json:"contact_user"`
	CreatedAt   time.Time         `json:"created_at"`
}

type ContactService interface {
	Add(dbc dbctx.Context, contactUserID uuid.UUID) (*types.Contact, error)
	List(dbc dbctx.Context) ([]ContactView, error)
	Remove(dbc dbctx.Context, contactUserID uuid.UUID) error
}

type contactService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	contacts repos.ContactRepo
	presence PresenceService
}

func NewContactService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	contactRepo repos.ContactRepo,
	presence PresenceService,
) ContactService {
	return &contactService{
		db:       db,
		log:      baseLog.With("service", "ContactService"),
		users:    userRepo,
		contacts: contactRepo,
		presence: presence,
	}
}

func (s *contactService) Add(dbc dbctx.Context, contactUserID uuid.UUID) (*types.Contact, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	if contactUserID == uuid.Nil {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("contact user id is required"))
	}
	if contactUserID == rd.UserID {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("cannot add yourself as a contact"))
	}

	targets, err := s.users.GetByIDs(dbc, []uuid.UUID{contactUserID})
	if err != nil {
		return nil, fmt.Errorf("load contact user: %w", err)
	}
	if len(targets) == 0 {
		return nil, apierr.New(http.StatusNotFound, "user_not_found", fmt.Errorf("user not found"))
	}

	// Re-adding an existing contact bumps updated_at and keeps the row.
	contact, err := s.contacts.Upsert(dbc, rd.UserID, contactUserID)
	if err != nil {
		return nil, fmt.Errorf("upsert contact: %w", err)
	}
	return contact, nil
}

func (s *contactService) List(dbc dbctx.Context) ([]ContactView, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}

	contacts, err := s.contacts.ListByUser(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	if len(contacts) == 0 {
		return []ContactView{}, nil
	}

	ids := make([]uuid.UUID, 0, len(contacts))
	for _, c := range contacts {
		ids = append(ids, c.ContactUserID)
	}
	users, err := s.users.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load contact users: %w", err)
	}
	summaries := make(map[uuid.UUID]types.UserSummary, len(users))
	for _, u := range users {
		summaries[u.ID] = types.Summarize(u)
	}

	out := make([]ContactView, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, ContactView{
			ID:          c.ID,
			ContactUser: summaries[c.ContactUserID],
			CreatedAt:   c.CreatedAt,
		})
	}

	refs := make([]*types.UserSummary, 0, len(out))
	for i := range out {
		refs = append(refs, &out[i].ContactUser)
	}
	decoratePresence(dbc.Ctx, s.presence, refs...)
	return out, nil
}

func (s *contactService) Remove(dbc dbctx.Context, contactUserID uuid.UUID) error {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}

	existed, err := s.contacts.DeletePair(dbc, rd.UserID, contactUserID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if !existed {
		return apierr.New(http.StatusNotFound, "contact_not_found", fmt.Errorf("contact not found"))
	}
	return nil
}
