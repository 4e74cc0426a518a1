package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sceneyard/sceneyard/internal/auth"
	"github.com/sceneyard/sceneyard/internal/database"
	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/repository"
	"github.com/sceneyard/sceneyard/internal/utils"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

var (
	ErrEmailMissing = errors.New("sign-in rejected: no email in provider profile")
	ErrUserNotFound = errors.New("user not found")
)

type AuthService struct {
	db            *gorm.DB
	jwtSecret     string
	jwtExpiration time.Duration
	providerName  string
}

func NewAuthService(db *gorm.DB, jwtSecret string, jwtExpiration time.Duration, providerName string) *AuthService {
	return &AuthService{
		db:            db,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		providerName:  providerName,
	}
}

// SignIn upserts the user for a verified provider profile and issues a
// session token. The first user ever created is promoted to admin; on
// re-login mutable profile fields are refreshed while role is preserved.
func (s *AuthService) SignIn(ctx context.Context, profile *auth.Profile) (*models.User, string, error) {
	if profile == nil || profile.Email == "" {
		return nil, "", ErrEmailMissing
	}

	var user *models.User

	err := database.Retry(ctx, func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			userRepo := repository.NewUserRepository(tx)

			existing, err := userRepo.GetUserByEmail(profile.Email)
			if err != nil {
				return err
			}

			if existing != nil {
				if err := userRepo.UpdateProfile(existing.ID, profile.Name, profile.Picture); err != nil {
					return err
				}
				existing.Name = profile.Name
				existing.Image = profile.Picture
				user = existing
				return nil
			}

			count, err := userRepo.CountUsers()
			if err != nil {
				return err
			}

			role := models.RoleUser
			if count == 0 {
				role = models.RoleAdmin
			}

			created := &models.User{
				ID:         uuid.New(),
				Email:      profile.Email,
				Name:       profile.Name,
				Image:      profile.Picture,
				Role:       role,
				Provider:   s.providerName,
				ProviderID: profile.Subject,
			}

			if err := userRepo.CreateUser(created); err != nil {
				return err
			}

			user = created
			return nil
		})
	})

	if err != nil {
		logger.Log.Error("Sign-in upsert failed",
			zap.String("email", profile.Email),
			zap.Error(err),
		)
		return nil, "", err
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate session token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User signed in",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
	)

	return user, token, nil
}

// GetUser returns the persisted user row for a session identity.
func (s *AuthService) GetUser(id uuid.UUID) (*models.User, error) {
	return repository.NewUserRepository(s.db).GetUserByID(id)
}

// ListUsers returns every user, newest first.
func (s *AuthService) ListUsers() ([]*models.User, error) {
	return repository.NewUserRepository(s.db).GetAllUsers()
}

// SetRole assigns a role to a user.
func (s *AuthService) SetRole(id uuid.UUID, role models.Role) error {
	userRepo := repository.NewUserRepository(s.db)

	user, err := userRepo.GetUserByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := userRepo.UpdateRole(id, role); err != nil {
		return err
	}

	logger.Log.Info("User role updated",
		zap.String("user_id", id.String()),
		zap.String("role", string(role)),
	)
	return nil
}
