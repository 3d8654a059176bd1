package services

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/data/repos"
	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/apierr"
	"github.com/havenapp/haven-backend/internal/pkg/ctxutil"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

type UserService interface {
	GetMe(dbc dbctx.Context) (*types.User, error)
	UpdateMe(dbc dbctx.Context, firstName, lastName *string) (*types.User, error)
	SearchUsers(dbc dbctx.Context, q string, limit int) ([]types.UserSummary, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	presence PresenceService
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, presence PresenceService) UserService {
	return &userService{
		db:       db,
		log:      baseLog.With("service", "UserService"),
		users:    userRepo,
		presence: presence,
	}
}

func (s *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	rows, err := s.users.GetByIDs(dbc, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(rows) == 0 {
		return nil, apierr.New(http.StatusNotFound, "user_not_found", fmt.Errorf("user not found"))
	}
	return rows[0], nil
}

func (s *userService) UpdateMe(dbc dbctx.Context, firstName, lastName *string) (*types.User, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}

	current, err := s.GetMe(dbc)
	if err != nil {
		return nil, err
	}

	newFirst := current.FirstName
	newLast := current.LastName
	if firstName != nil {
		newFirst = strings.TrimSpace(*firstName)
	}
	if lastName != nil {
		newLast = strings.TrimSpace(*lastName)
	}
	if newFirst == "" || newLast == "" {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("name fields cannot be empty"))
	}

	if err := s.users.UpdateName(dbc, rd.UserID, newFirst, newLast); err != nil {
		return nil, fmt.Errorf("update name: %w", err)
	}
	current.FirstName = newFirst
	current.LastName = newLast
	return current, nil
}

func (s *userService) SearchUsers(dbc dbctx.Context, q string, limit int) ([]types.UserSummary, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return []types.UserSummary{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	rows, err := s.users.Search(dbc, q, rd.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	out := make([]types.UserSummary, 0, len(rows))
	refs := make([]*types.UserSummary, 0, len(rows))
	for _, u := range rows {
		out = append(out, types.Summarize(u))
	}
	for i := range out {
		refs = append(refs, &out[i])
	}
	decoratePresence(dbc.Ctx, s.presence, refs...)
	return out, nil
}
