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

type AdminHandler struct {
	authService *service.AuthService
}

func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{
		authService: authService,
	}
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ListUsers returns every user, newest first.
// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	users, err := h.authService.ListUsers()
	if err != nil {
		logger.Log.Error("Failed to fetch users",
			zap.String("admin_id", identity.UserID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// SetRole assigns the user or admin role to an account.
// PUT /api/admin/users/:id/role
func (h *AdminHandler) SetRole(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be user or admin"})
		return
	}

	if err := h.authService.SetRole(id, models.Role(req.Role)); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Log.Error("Failed to set role",
			zap.String("admin_id", identity.UserID.String()),
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}
