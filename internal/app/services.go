package app

import (
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/clients/gcp"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
	"github.com/havenapp/haven-backend/internal/realtime"
	"github.com/havenapp/haven-backend/internal/realtime/bus"
	"github.com/havenapp/haven-backend/internal/services"
)

type Services struct {
	Presence services.PresenceService
	Avatar   services.AvatarService
	Notifier services.Notifier

	Auth         services.AuthService
	User         services.UserService
	Invitation   services.InvitationService
	Conversation services.ConversationService
	Contact      services.ContactService
	Alert        services.AlertService
	JobPost      services.JobPostService
	Library      services.LibraryService
	Dashboard    services.DashboardService

	// Kept here so App can close it on shutdown.
	SSEBus bus.Bus
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, sseHub *realtime.SSEHub, sseBus bus.Bus) Services {
	log.Info("Wiring services...")

	presence := services.NewPresenceService(log)

	bucket, err := gcp.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService; library uploads disabled", "error", err)
	}

	avatar, err := services.NewAvatarService(log, bucket)
	if err != nil {
		log.Warn("Could not init AvatarService; new users get no avatar", "error", err)
	}

	// With Redis every instance publishes to the shared channel and the
	// forwarder rebroadcasts into each local hub, the publisher's included.
	// Without it events only reach clients connected to this instance.
	var emitter services.SSEEmitter
	if sseBus != nil {
		emitter = &services.RedisEmitter{Bus: sseBus}
	} else {
		emitter = &services.HubEmitter{Hub: sseHub}
	}
	notifier := services.NewNotifier(log, emitter)

	authService := services.NewAuthService(
		db, log,
		repos.User,
		repos.UserToken,
		avatar,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	userService := services.NewUserService(db, log, repos.User, presence)
	invitationService := services.NewInvitationService(db, log, repos.User, repos.ChatInvitation, repos.Conversation, notifier)
	conversationService := services.NewConversationService(db, log, repos.User, repos.Conversation, repos.ConversationDeletedBy, repos.Message, presence, notifier)
	contactService := services.NewContactService(db, log, repos.User, repos.Contact, presence)
	alertService := services.NewAlertService(db, log, repos.User, repos.Contact, repos.LocationAlert, repos.LocationSnapshot, presence, notifier)
	jobPostService := services.NewJobPostService(db, log, repos.JobPost)
	libraryService := services.NewLibraryService(db, log, repos.LibraryModule, bucket)
	dashboardService := services.NewDashboardService(db, log, repos.ChatInvitation, repos.Message, repos.Contact, repos.LocationAlert, repos.JobPost, conversationService)

	return Services{
		Presence:     presence,
		Avatar:       avatar,
		Notifier:     notifier,
		Auth:         authService,
		User:         userService,
		Invitation:   invitationService,
		Conversation: conversationService,
		Contact:      contactService,
		Alert:        alertService,
		JobPost:      jobPostService,
		Library:      libraryService,
		Dashboard:    dashboardService,
		SSEBus:       sseBus,
	}
}
