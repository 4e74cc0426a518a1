package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sceneyard/sceneyard/internal/auth"
	"github.com/sceneyard/sceneyard/internal/middleware"
	"github.com/sceneyard/sceneyard/internal/service"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

const stateCookie = "oauth_state"

type AuthHandler struct {
	authService   *service.AuthService
	provider      *auth.Provider
	cookieMaxAge  int
	secureCookies bool
	postLoginURL  string
}

func NewAuthHandler(authService *service.AuthService, provider *auth.Provider, cookieMaxAge int, secureCookies bool, postLoginURL string) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		provider:      provider,
		cookieMaxAge:  cookieMaxAge,
		secureCookies: secureCookies,
		postLoginURL:  postLoginURL,
	}
}

// Login redirects to the identity provider with a state nonce bound to a
// short-lived cookie.
// GET /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		logger.Log.Error("Failed to generate OAuth state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to start sign-in",
		})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 300, "/", "", h.secureCookies, true)

	c.Redirect(http.StatusTemporaryRedirect, h.provider.AuthCodeURL(state))
}

// Callback completes the OAuth flow: verify state, exchange the code, fetch
// the profile, upsert the user, set the session cookie and send the browser
// back to the application.
// GET /api/auth/callback?code=...&state=...
func (h *AuthHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")

	expectedState, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != expectedState {
		logger.Log.Warn("OAuth callback with bad state",
			zap.String("ip", c.ClientIP()),
		)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid sign-in state",
		})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", h.secureCookies, true)

	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing authorization code",
		})
		return
	}

	token, err := h.provider.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.Log.Warn("OAuth code exchange failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Sign-in failed",
		})
		return
	}

	profile, err := h.provider.FetchProfile(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrNoEmail) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Sign-in rejected: provider returned no email",
			})
			return
		}
		logger.Log.Error("Failed to fetch provider profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Sign-in failed",
		})
		return
	}

	user, sessionToken, err := h.authService.SignIn(c.Request.Context(), profile)
	if err != nil {
		logger.Log.Error("Sign-in failed",
			zap.String("email", profile.Email),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Sign-in failed",
		})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.SessionCookie,
		sessionToken,
		h.cookieMaxAge,
		"/",
		"",
		h.secureCookies,
		true,
	)

	logger.Log.Info("User signed in via callback",
		zap.String("user_id", user.ID.String()),
	)

	c.Redirect(http.StatusFound, h.postLoginURL)
}

// Me returns the fresh user row for the current session.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	user, err := h.authService.GetUser(identity.UserID)
	if err != nil {
		logger.Log.Error("Failed to load current user",
			zap.String("user_id", identity.UserID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load user",
		})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout clears the session cookie.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed out",
	})
}

func randomState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
