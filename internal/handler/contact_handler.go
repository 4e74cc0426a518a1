package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sceneyard/sceneyard/internal/service"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// Submit stores a contact message and queues the notification email.
// POST /api/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	msg, err := h.contactService.Submit(c.Request.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContactFieldsMissing),
			errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Log.Error("Failed to submit contact message", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit message"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message received",
		"id":      msg.ID,
	})
}

// ListMessages lets admins read the inbox.
// GET /api/admin/contact-messages
func (h *ContactHandler) ListMessages(c *gin.Context) {
	messages, err := h.contactService.ListMessages()
	if err != nil {
		logger.Log.Error("Failed to list contact messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
