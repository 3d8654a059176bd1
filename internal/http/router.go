package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/havenapp/haven-backend/internal/http/handlers"
	httpMW "github.com/havenapp/haven-backend/internal/http/middleware"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	CORSOrigins    []string
	TracingEnabled bool
	ServiceName    string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler         *httpH.AuthHandler
	UserHandler         *httpH.UserHandler
	InvitationHandler   *httpH.InvitationHandler
	ConversationHandler *httpH.ConversationHandler
	ContactHandler      *httpH.ContactHandler
	AlertHandler        *httpH.AlertHandler
	JobPostHandler      *httpH.JobPostHandler
	LibraryHandler      *httpH.LibraryHandler
	DashboardHandler    *httpH.DashboardHandler
	RealtimeHandler     *httpH.RealtimeHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public). Refresh is public: it authenticates with the refresh
		// token in the body, not with an access token.
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.UserHandler != nil {
			protected.GET("/users/me", cfg.UserHandler.GetMe)
			protected.PATCH("/users/me", cfg.UserHandler.UpdateMe)
			protected.GET("/users/search", cfg.UserHandler.Search)
		}

		if cfg.InvitationHandler != nil {
			protected.POST("/invitations", cfg.InvitationHandler.Create)
			protected.GET("/invitations", cfg.InvitationHandler.List)
			protected.POST("/invitations/:id/accept", cfg.InvitationHandler.Accept)
			protected.POST("/invitations/:id/decline", cfg.InvitationHandler.Decline)
			protected.POST("/invitations/:id/cancel", cfg.InvitationHandler.Cancel)
		}

		if cfg.ConversationHandler != nil {
			protected.GET("/conversations", cfg.ConversationHandler.List)
			protected.DELETE("/conversations/:id", cfg.ConversationHandler.Delete)
			protected.GET("/conversations/:id/messages", cfg.ConversationHandler.GetMessages)
			protected.POST("/conversations/:id/messages", cfg.ConversationHandler.SendMessage)
		}

		if cfg.ContactHandler != nil {
			protected.POST("/contacts", cfg.ContactHandler.Add)
			protected.GET("/contacts", cfg.ContactHandler.List)
			protected.DELETE("/contacts/:id", cfg.ContactHandler.Remove)
		}

		if cfg.AlertHandler != nil {
			protected.POST("/alerts", cfg.AlertHandler.Send)
			protected.GET("/alerts/incoming", cfg.AlertHandler.Incoming)
			protected.POST("/alerts/:id/stop", cfg.AlertHandler.Stop)
			protected.POST("/location", cfg.AlertHandler.UpdateLocation)
		}

		if cfg.JobPostHandler != nil {
			protected.GET("/jobposts", cfg.JobPostHandler.List)
			protected.POST("/jobposts", cfg.JobPostHandler.Create)
			protected.GET("/jobposts/:id", cfg.JobPostHandler.Get)
			protected.PATCH("/jobposts/:id", cfg.JobPostHandler.Update)
			protected.DELETE("/jobposts/:id", cfg.JobPostHandler.Delete)
		}

		if cfg.LibraryHandler != nil {
			protected.GET("/library/modules", cfg.LibraryHandler.List)
			protected.POST("/library/modules", cfg.LibraryHandler.Upload)
			protected.GET("/library/modules/:id", cfg.LibraryHandler.Get)
			protected.DELETE("/library/modules/:id", cfg.LibraryHandler.Delete)
		}

		if cfg.DashboardHandler != nil {
			protected.GET("/dashboard", cfg.DashboardHandler.Get)
		}

		if cfg.RealtimeHandler != nil {
			protected.GET("/realtime/stream", cfg.RealtimeHandler.Stream)
		}
	}

	return r
}
