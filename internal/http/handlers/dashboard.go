package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/havenapp/haven-backend/internal/http/response"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (dh *DashboardHandler) Get(c *gin.Context) {
	dashboard, err := dh.dashboardService.Get(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{"dashboard": dashboard})
}
