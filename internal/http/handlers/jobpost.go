package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/havenapp/haven-backend/internal/http/response"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/services"
)

type JobPostHandler struct {
	jobPostService services.JobPostService
}

func NewJobPostHandler(jobPostService services.JobPostService) *JobPostHandler {
	return &JobPostHandler{jobPostService: jobPostService}
}

func (jh *JobPostHandler) Create(c *gin.Context) {
	var req struct {
		Title       string         `json:"title"`
		Company     string         `json:"company"`
		Location    string         `json:"location"`
		Description string         `json:"description"`
		SalaryRange string         `json:"salary_range"`
		Metadata    datatypes.JSON `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	post, err := jh.jobPostService.Create(dbctx.Context{Ctx: c.Request.Context()}, services.JobPostInput{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Description: req.Description,
		SalaryRange: req.SalaryRange,
		Metadata:    req.Metadata,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusCreated, gin.H{"job_post": post})
}

func (jh *JobPostHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	post, err := jh.jobPostService.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{"job_post": post})
}

func (jh *JobPostHandler) List(c *gin.Context) {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	posts, err := jh.jobPostService.List(dbctx.Context{Ctx: c.Request.Context()}, status, limit, offset)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{"job_posts": posts})
}

func (jh *JobPostHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req struct {
		Title       *string        `json:"title"`
		Company     *string        `json:"company"`
		Location    *string        `json:"location"`
		Description *string        `json:"description"`
		SalaryRange *string        `json:"salary_range"`
		Status      *string        `json:"status"`
		Metadata    datatypes.JSON `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	post, err := jh.jobPostService.Update(dbctx.Context{Ctx: c.Request.Context()}, id, services.JobPostUpdate{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Description: req.Description,
		SalaryRange: req.SalaryRange,
		Status:      req.Status,
		Metadata:    req.Metadata,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{"job_post": post})
}

func (jh *JobPostHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := jh.jobPostService.Delete(dbctx.Context{Ctx: c.Request.Context()}, id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{})
}
