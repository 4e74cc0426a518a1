package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sceneyard/sceneyard/internal/middleware"
	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/service"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

type TemplateHandler struct {
	templateService   *service.TemplateService
	engagementService *service.EngagementService
}

func NewTemplateHandler(templateService *service.TemplateService, engagementService *service.EngagementService) *TemplateHandler {
	return &TemplateHandler{
		templateService:   templateService,
		engagementService: engagementService,
	}
}

type createTemplateRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	CreditsCost int      `json:"creditsCost"`
	Published   bool     `json:"published"`
	CategoryIDs []string `json:"categoryIds"`
	TagIDs      []string `json:"tagIds"`
	TagNames    []string `json:"tagNames"`
}

type assetRequest struct {
	Kind       string `json:"kind" binding:"required"`
	StorageKey string `json:"storageKey" binding:"required"`
	Mime       string `json:"mime"`
	Bytes      int64  `json:"bytes"`
}

type createAssetsRequest struct {
	TemplateID string         `json:"templateId" binding:"required"`
	Assets     []assetRequest `json:"assets" binding:"required"`
}

type updateTemplateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CreditsCost *int    `json:"creditsCost"`
	Published   *bool   `json:"published"`
}

// List returns published templates; admins see drafts too with ?all=true.
// GET /api/templates
func (h *TemplateHandler) List(c *gin.Context) {
	publishedOnly := true
	if c.Query("all") == "true" {
		if identity, ok := middleware.CurrentIdentity(c); ok && identity.IsAdmin() {
			publishedOnly = false
		}
	}

	templates, err := h.templateService.List(publishedOnly)
	if err != nil {
		logger.Log.Error("Failed to list templates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch templates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// Get returns one template with its like count.
// GET /api/templates/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}

	template, err := h.templateService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Log.Error("Failed to get template", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch template"})
		return
	}

	likeCount, err := h.engagementService.LikeCount(c.Request.Context(), id)
	if err != nil {
		logger.Log.Warn("Failed to get like count",
			zap.String("template_id", id.String()),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{
		"template":  template,
		"likeCount": likeCount,
	})
}

// Create registers a template with its category/tag associations.
// POST /api/templates/create
func (h *TemplateHandler) Create(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	categoryIDs, err := parseUUIDs(req.CategoryIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
		return
	}
	tagIDs, err := parseUUIDs(req.TagIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag id"})
		return
	}

	template, err := h.templateService.Create(service.CreateTemplateInput{
		Title:       req.Title,
		Description: req.Description,
		CreditsCost: req.CreditsCost,
		Published:   req.Published,
		CategoryIDs: categoryIDs,
		TagIDs:      tagIDs,
		TagNames:    req.TagNames,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleRequired),
			errors.Is(err, service.ErrNegativeCredits):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrCategoryNotFound),
			errors.Is(err, service.ErrTagNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			logger.Log.Error("Failed to create template", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"template": template})
}

// CreateAssets registers the template's asset set atomically.
// POST /api/templates/create-assets
func (h *TemplateHandler) CreateAssets(c *gin.Context) {
	var req createAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}

	inputs := make([]service.AssetInput, 0, len(req.Assets))
	for _, a := range req.Assets {
		inputs = append(inputs, service.AssetInput{
			Kind:       models.AssetKind(a.Kind),
			StorageKey: a.StorageKey,
			Mime:       a.Mime,
			Bytes:      a.Bytes,
		})
	}

	assets, err := h.templateService.CreateAssets(templateID, inputs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIncompleteAssetSet):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrTemplateNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			logger.Log.Error("Failed to create assets", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create assets"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"assets": assets})
}

// Update applies a partial template update.
// PUT /api/templates/:id
func (h *TemplateHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}

	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	template, err := h.templateService.Update(id, service.UpdateTemplateInput{
		Title:       req.Title,
		Description: req.Description,
		CreditsCost: req.CreditsCost,
		Published:   req.Published,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrTitleRequired),
			errors.Is(err, service.ErrNegativeCredits):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Log.Error("Failed to update template", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update template"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": template})
}

// Delete removes a template and everything hanging off it.
// DELETE /api/templates/:id
func (h *TemplateHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}

	if err := h.templateService.Delete(id); err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Log.Error("Failed to delete template", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete template"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
