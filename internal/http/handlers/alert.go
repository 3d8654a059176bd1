package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/http/response"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/services"
)

type AlertHandler struct {
	alertService services.AlertService
}

func NewAlertHandler(alertService services.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

func (ah *AlertHandler) Send(c *gin.Context) {
	var req struct {
		ReceiverID string   `json:"receiver_id"`
		Latitude   float64  `json:"latitude"`
		Longitude  float64  `json:"longitude"`
		Accuracy   *float64 `json:"accuracy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	alert, err := ah.alertService.Send(dbctx.Context{Ctx: c.Request.Context()}, receiverID, req.Latitude, req.Longitude, req.Accuracy)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusCreated, gin.H{"alert": alert})
}

func (ah *AlertHandler) Incoming(c *gin.Context) {
	alerts, err := ah.alertService.Incoming(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{"alerts": alerts})
}

func (ah *AlertHandler) Stop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	alert, err := ah.alertService.Stop(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{"alert": alert})
}

func (ah *AlertHandler) UpdateLocation(c *gin.Context) {
	var req struct {
		Latitude  float64  `json:"latitude"`
		Longitude float64  `json:"longitude"`
		Accuracy  *float64 `json:"accuracy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	snapshot, err := ah.alertService.UpdateLocation(dbctx.Context{Ctx: c.Request.Context()}, req.Latitude, req.Longitude, req.Accuracy)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{"snapshot": snapshot})
}
