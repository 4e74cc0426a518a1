package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sceneyard/sceneyard/internal/middleware"
	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/service"
	"github.com/sceneyard/sceneyard/internal/storage"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

// StorageHandler fronts the object-storage gateway. The client may be nil
// when storage is not configured; every endpoint then answers 503.
type StorageHandler struct {
	client            *storage.Client
	engagementService *service.EngagementService
}

func NewStorageHandler(client *storage.Client, engagementService *service.EngagementService) *StorageHandler {
	return &StorageHandler{
		client:            client,
		engagementService: engagementService,
	}
}

type presignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	ExistingKey string `json:"existingKey"`
}

func (h *StorageHandler) ensureClient(c *gin.Context) bool {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Object storage is not configured",
		})
		return false
	}
	return true
}

// PresignUpload hands the client a signed PUT URL so upload bytes bypass
// the application server. A caller-supplied key is accepted only when it
// already lives under the requested kind's namespace.
// POST /api/storage/presigned-url
func (h *StorageHandler) PresignUpload(c *gin.Context) {
	if !h.ensureClient(c) {
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !models.ValidAssetKind(req.Kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset kind"})
		return
	}
	kind := models.AssetKind(req.Kind)

	assetID := uuid.New()
	key := storage.BuildObjectKey(kind, assetID, req.Filename)

	if req.ExistingKey != "" {
		if err := storage.ValidateKindKey(kind, req.ExistingKey); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Key does not match asset kind"})
			return
		}
		key = req.ExistingKey
	}

	uploadURL, err := h.client.PresignPut(c.Request.Context(), key, req.ContentType)
	if err != nil {
		logger.Log.Error("Failed to presign upload",
			zap.String("key", key),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assetId":    assetID,
		"storageKey": key,
		"uploadUrl":  uploadURL,
	})
}

// Upload is the server-mediated fallback: multipart bytes flow through the
// application into storage.
// POST /api/storage/upload
func (h *StorageHandler) Upload(c *gin.Context) {
	if !h.ensureClient(c) {
		return
	}

	key := c.PostForm("storageKey")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "storageKey is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Log.Error("Failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := h.client.Upload(c.Request.Context(), key, file, contentType); err != nil {
		logger.Log.Error("Failed to upload object",
			zap.String("key", key),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	logger.Log.Info("Object uploaded",
		zap.String("key", key),
		zap.Int64("bytes", fileHeader.Size),
	)

	c.JSON(http.StatusCreated, gin.H{
		"storageKey": key,
		"bytes":      fileHeader.Size,
	})
}

// Stream pipes an object back with its content headers preserved. Preview
// and thumbnail namespaces are public; a session user may stream an object
// they hold a download record for; everything else needs an admin session
// (route uses OptionalAuth).
// GET /api/storage/stream?key=...
func (h *StorageHandler) Stream(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	if !storage.PublicKey(key) {
		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !identity.IsAdmin() {
			allowed, err := h.engagementService.CanStreamKey(identity.UserID, key)
			if err != nil {
				logger.Log.Error("Failed to authorize stream",
					zap.String("key", key),
					zap.String("user_id", identity.UserID.String()),
					zap.Error(err),
				)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch object"})
				return
			}
			if !allowed {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
		}
	}

	if !h.ensureClient(c) {
		return
	}

	obj, err := h.client.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Object not found"})
			return
		}
		logger.Log.Error("Failed to fetch object",
			zap.String("key", key),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch object"})
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		c.Header("Content-Type", obj.ContentType)
	}
	if obj.ETag != "" {
		c.Header("ETag", obj.ETag)
	}
	if obj.CacheControl != "" {
		c.Header("Cache-Control", obj.CacheControl)
	}

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, obj.Body); err != nil {
		logger.Log.Warn("Object stream interrupted",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// DownloadURL returns a presigned GET for a private object.
// GET /api/storage/download-url?key=...
func (h *StorageHandler) DownloadURL(c *gin.Context) {
	if !h.ensureClient(c) {
		return
	}

	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	url, err := h.client.PresignGet(c.Request.Context(), key)
	if err != nil {
		logger.Log.Error("Failed to presign download",
			zap.String("key", key),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate download URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// PublicURL resolves the stable public URL for preview/thumbnail objects.
// GET /api/storage/public-url?key=...
func (h *StorageHandler) PublicURL(c *gin.Context) {
	if !h.ensureClient(c) {
		return
	}

	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	if !storage.PublicKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Key is not publicly accessible"})
		return
	}

	url := h.client.PublicURL(key)
	if url == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No public base URL configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// DeleteObject removes an object from the bucket.
// DELETE /api/storage/object?key=...
func (h *StorageHandler) DeleteObject(c *gin.Context) {
	if !h.ensureClient(c) {
		return
	}

	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	if err := h.client.Delete(c.Request.Context(), key); err != nil {
		logger.Log.Error("Failed to delete object",
			zap.String("key", key),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete object"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Object deleted"})
}
