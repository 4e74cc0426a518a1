package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sceneyard/sceneyard/internal/middleware"
	"github.com/sceneyard/sceneyard/internal/service"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

type EngagementHandler struct {
	engagementService *service.EngagementService
}

func NewEngagementHandler(engagementService *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{
		engagementService: engagementService,
	}
}

type templateIDRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
}

// ToggleLike flips the liked state for the session user.
// POST /api/likes
func (h *EngagementHandler) ToggleLike(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	var req templateIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}

	result, err := h.engagementService.ToggleLike(c.Request.Context(), identity.UserID, templateID)
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Log.Error("Failed to toggle like",
			zap.String("user_id", identity.UserID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListLikes returns the session user's liked template ids, or the full
// template rows with ?full=true.
// GET /api/likes
func (h *EngagementHandler) ListLikes(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	if c.Query("full") == "true" {
		templates, err := h.engagementService.LikedTemplates(identity.UserID)
		if err != nil {
			logger.Log.Error("Failed to list liked templates", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch likes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"templates": templates})
		return
	}

	ids, err := h.engagementService.LikedTemplateIDs(identity.UserID)
	if err != nil {
		logger.Log.Error("Failed to list likes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch likes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"templateIds": ids})
}

// RecordDownload records a download and returns the asset URL. A repeat
// call returns alreadyDownloaded=true with the same URL.
// POST /api/downloads
func (h *EngagementHandler) RecordDownload(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	var req templateIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}

	result, err := h.engagementService.RecordDownload(c.Request.Context(), identity.UserID, templateID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrDownloadAssetMissing):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			logger.Log.Error("Failed to record download",
				zap.String("user_id", identity.UserID.String()),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record download"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// DownloadHistory returns the session user's downloads, newest first.
// GET /api/downloads
func (h *EngagementHandler) DownloadHistory(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	entries, err := h.engagementService.DownloadHistory(identity.UserID)
	if err != nil {
		logger.Log.Error("Failed to fetch download history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch downloads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"downloads": entries})
}
