package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/http/response"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/services"
)

type ContactHandler struct {
	contactService services.ContactService
}

func NewContactHandler(contactService services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (ch *ContactHandler) Add(c *gin.Context) {
	var req struct {
		ContactUserID string `json:"contact_user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	contactUserID, err := uuid.Parse(req.ContactUserID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	contact, err := ch.contactService.Add(dbctx.Context{Ctx: c.Request.Context()}, contactUserID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusCreated, gin.H{"contact": contact})
}

func (ch *ContactHandler) List(c *gin.Context) {
	contacts, err := ch.contactService.List(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{"contacts": contacts})
}

// Remove takes the contact USER id, not the edge id: the client knows who it
// is removing, not which row stores the edge.
func (ch *ContactHandler) Remove(c *gin.Context) {
	contactUserID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := ch.contactService.Remove(dbctx.Context{Ctx: c.Request.Context()}, contactUserID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{})
}
