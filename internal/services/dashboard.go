package services

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/data/repos"
	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/apierr"
	"github.com/havenapp/haven-backend/internal/pkg/ctxutil"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

const recentConversationCount = 5

// Dashboard is one aggregated payload for the home screen.
type Dashboard struct {
	UnreadMessages       int64              `json:"unread_messages"`
	PendingInvitations   int64              `json:"pending_invitations"`
	ActiveIncomingAlerts int64              `json:"active_incoming_alerts"`
	Contacts             int64              `json:"contacts"`
	OpenJobPosts         int64              `json:"open_job_posts"`
	RecentConversations  []ConversationView `json:"recent_conversations"`
}

type DashboardService interface {
	Get(dbc dbctx.Context) (*Dashboard, error)
}

type dashboardService struct {
	db       *gorm.DB
	log      *logger.Logger
	invites  repos.ChatInvitationRepo
	msgs     repos.MessageRepo
	contacts repos.ContactRepo
	alerts   repos.LocationAlertRepo
	posts    repos.JobPostRepo
	convs    ConversationService
}

func NewDashboardService(
	db *gorm.DB,
	baseLog *logger.Logger,
	inviteRepo repos.ChatInvitationRepo,
	msgRepo repos.MessageRepo,
	contactRepo repos.ContactRepo,
	alertRepo repos.LocationAlertRepo,
	postRepo repos.JobPostRepo,
	convService ConversationService,
) DashboardService {
	return &dashboardService{
		db:       db,
		log:      baseLog.With("service", "DashboardService"),
		invites:  inviteRepo,
		msgs:     msgRepo,
		contacts: contactRepo,
		alerts:   alertRepo,
		posts:    postRepo,
		convs:    convService,
	}
}

func (s *dashboardService) Get(dbc dbctx.Context) (*Dashboard, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	userID := rd.UserID

	out := &Dashboard{RecentConversations: []ConversationView{}}

	// Each branch runs on its own connection; a shared dbc.Tx is not safe
	// across goroutines, so the group always starts from the pool.
	g, gctx := errgroup.WithContext(dbc.Ctx)
	g.SetLimit(4)

	g.Go(func() error {
		count, err := s.msgs.UnreadTotalForUser(dbctx.Context{Ctx: gctx}, userID)
		if err != nil {
			return fmt.Errorf("count unread messages: %w", err)
		}
		out.UnreadMessages = count
		return nil
	})
	g.Go(func() error {
		count, err := s.invites.CountByReceiver(dbctx.Context{Ctx: gctx}, userID, types.InvitationPending)
		if err != nil {
			return fmt.Errorf("count pending invitations: %w", err)
		}
		out.PendingInvitations = count
		return nil
	})
	g.Go(func() error {
		count, err := s.alerts.CountActiveIncoming(dbctx.Context{Ctx: gctx}, userID)
		if err != nil {
			return fmt.Errorf("count incoming alerts: %w", err)
		}
		out.ActiveIncomingAlerts = count
		return nil
	})
	g.Go(func() error {
		count, err := s.contacts.CountByUser(dbctx.Context{Ctx: gctx}, userID)
		if err != nil {
			return fmt.Errorf("count contacts: %w", err)
		}
		out.Contacts = count
		return nil
	})
	g.Go(func() error {
		count, err := s.posts.CountByStatus(dbctx.Context{Ctx: gctx}, types.JobPostOpen)
		if err != nil {
			return fmt.Errorf("count open job posts: %w", err)
		}
		out.OpenJobPosts = count
		return nil
	})
	g.Go(func() error {
		views, err := s.convs.List(dbctx.Context{Ctx: gctx}, recentConversationCount)
		if err != nil {
			return fmt.Errorf("list recent conversations: %w", err)
		}
		out.RecentConversations = views
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
