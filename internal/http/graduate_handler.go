package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gradtrack/internal/domain"
	"gradtrack/internal/service"
)

// GraduateHandler holds dependencies for the /graduates endpoints.
type GraduateHandler struct {
	logger       *zap.Logger
	progressServ *service.ProgressService
}

func NewGraduateHandler(logger *zap.Logger, progressServ *service.ProgressService) *GraduateHandler {
	return &GraduateHandler{
		logger:       logger,
		progressServ: progressServ,
	}
}

// List handles GET /graduates/list.
func (h *GraduateHandler) List(c *gin.Context) {
	graduates, err := h.progressServ.ListGraduates(c.Request.Context())
	if err != nil {
		h.logger.Error("list graduates failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list graduates"})
		return
	}
	if graduates == nil {
		graduates = []domain.Graduate{}
	}
	c.JSON(http.StatusOK, graduates)
}

// CompleteTask handles POST /graduates/:id/tasks/:taskID/complete.
func (h *GraduateHandler) CompleteTask(c *gin.Context) {
	if err := h.progressServ.CompleteTask(c.Request.Context(), c.Param("id"), c.Param("taskID")); err != nil {
		h.logger.Error("complete task failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not complete task"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// UncompleteTask handles POST /graduates/:id/tasks/:taskID/uncomplete.
func (h *GraduateHandler) UncompleteTask(c *gin.Context) {
	if err := h.progressServ.UncompleteTask(c.Request.Context(), c.Param("id"), c.Param("taskID")); err != nil {
		h.logger.Error("uncomplete task failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not uncomplete task"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Timeline handles GET /graduates/:id/timeline.
func (h *GraduateHandler) Timeline(c *gin.Context) {
	milestones, err := h.progressServ.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("timeline lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load timeline"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

// Progress handles GET /graduates/:id/progress.
func (h *GraduateHandler) Progress(c *gin.Context) {
	pct, err := h.progressServ.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("progress lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": pct})
}
