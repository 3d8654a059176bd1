package app

import (
	"github.com/gin-gonic/gin"

	"github.com/havenapp/haven-backend/internal/http"
	httpH "github.com/havenapp/haven-backend/internal/http/handlers"
	httpMW "github.com/havenapp/haven-backend/internal/http/middleware"
	"github.com/havenapp/haven-backend/internal/observability"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
	"github.com/havenapp/haven-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	User         *httpH.UserHandler
	Invitation   *httpH.InvitationHandler
	Conversation *httpH.ConversationHandler
	Contact      *httpH.ContactHandler
	Alert        *httpH.AlertHandler
	JobPost      *httpH.JobPostHandler
	Library      *httpH.LibraryHandler
	Dashboard    *httpH.DashboardHandler
	Realtime     *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(),
		Auth:         httpH.NewAuthHandler(services.Auth),
		User:         httpH.NewUserHandler(services.User),
		Invitation:   httpH.NewInvitationHandler(services.Invitation),
		Conversation: httpH.NewConversationHandler(services.Conversation),
		Contact:      httpH.NewContactHandler(services.Contact),
		Alert:        httpH.NewAlertHandler(services.Alert),
		JobPost:      httpH.NewJobPostHandler(services.JobPost),
		Library:      httpH.NewLibraryHandler(services.Library),
		Dashboard:    httpH.NewDashboardHandler(services.Dashboard),
		Realtime:     httpH.NewRealtimeHandler(log, sseHub),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth, services.Presence),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		CORSOrigins:    cfg.CORSOrigins,
		TracingEnabled: observability.Enabled(),
		ServiceName:    cfg.OtelServiceName,

		AuthMiddleware: middleware.Auth,

		HealthHandler:       handlers.Health,
		AuthHandler:         handlers.Auth,
		UserHandler:         handlers.User,
		InvitationHandler:   handlers.Invitation,
		ConversationHandler: handlers.Conversation,
		ContactHandler:      handlers.Contact,
		AlertHandler:        handlers.Alert,
		JobPostHandler:      handlers.JobPost,
		LibraryHandler:      handlers.Library,
		DashboardHandler:    handlers.Dashboard,
		RealtimeHandler:     handlers.Realtime,
	})
}
