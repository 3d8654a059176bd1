package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/http/response"
	"github.com/havenapp/haven-backend/internal/pkg/ctxutil"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
	"github.com/havenapp/haven-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log: log.With("handler", "RealtimeHandler"),
		hub: hub,
	}
}

// Stream holds the connection open and forwards the user's events. Each
// connection gets its own client, so one user may hold several tabs open;
// every one of them receives the user-channel events.
func (rh *RealtimeHandler) Stream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
		return
	}

	client := rh.hub.NewSSEClient(rd.UserID)
	rh.hub.AddChannel(client, realtime.UserChannel(rd.UserID))
	rh.log.Info("SSE stream open", "user_id", rd.UserID.String(), "client_id", client.ID.String())

	rh.hub.ServeHTTP(c.Writer, c.Request, client)

	rh.hub.CloseClient(client)
	rh.log.Info("SSE stream closed", "user_id", rd.UserID.String(), "client_id", client.ID.String())
}
