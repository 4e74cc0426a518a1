package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sceneyard/sceneyard/internal/mailer"
	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/repository"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

var (
	ErrContactFieldsMissing = errors.New("name, email and message are required")
	ErrInvalidEmail         = errors.New("invalid email format")

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

type ContactService struct {
	contactRepo *repository.ContactRepository
	mailer      *mailer.Mailer
}

func NewContactService(db *gorm.DB, m *mailer.Mailer) *ContactService {
	return &ContactService{
		contactRepo: repository.NewContactRepository(db),
		mailer:      m,
	}
}

// Submit validates and stores a contact message, then sends a best-effort
// email notification. A failed notification never fails the request.
func (s *ContactService) Submit(ctx context.Context, name, email, message string) (*models.ContactMessage, error) {
	if name == "" || email == "" || message == "" {
		return nil, ErrContactFieldsMissing
	}
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	msg := &models.ContactMessage{
		ID:      uuid.New(),
		Name:    name,
		Email:   email,
		Message: message,
	}

	if err := s.contactRepo.Create(msg); err != nil {
		logger.Log.Error("Failed to store contact message",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.mailer.SendContactNotification(ctx, msg); err != nil {
		logger.Log.Warn("Contact notification email failed",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err),
		)
	}

	logger.Log.Info("Contact message stored",
		zap.String("message_id", msg.ID.String()),
	)
	return msg, nil
}

// ListMessages returns every stored contact message, newest first.
func (s *ContactService) ListMessages() ([]models.ContactMessage, error) {
	return s.contactRepo.GetAll()
}
