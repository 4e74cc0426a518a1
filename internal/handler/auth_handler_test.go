package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/sceneyard/sceneyard/internal/auth"
	"github.com/sceneyard/sceneyard/internal/config"
	"github.com/sceneyard/sceneyard/internal/handler"
	"github.com/sceneyard/sceneyard/internal/middleware"
	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/service"
	"github.com/sceneyard/sceneyard/internal/testutil"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

const postLoginURL = "http://localhost:3000/library"

type AuthHandlerTestSuite struct {
	suite.Suite
	testDB   *testutil.TestDatabase
	provider *httptest.Server
	router   *gin.Engine
}

func (s *AuthHandlerTestSuite) SetupSuite() {
	logger.Init(false)
	gin.SetMode(gin.TestMode)

	s.testDB = testutil.SetupTestDatabase(s.T())

	// Stub identity provider: token endpoint plus userinfo document.
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-access-token","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"sub-1","email":"buyer@example.com","name":"Buyer","picture":"https://example.com/p.png"}`))
	})
	s.provider = httptest.NewServer(mux)

	cfg := &config.Config{
		OAuthClientID:     "client-id",
		OAuthClientSecret: "client-secret",
		OAuthRedirectURL:  "http://localhost:8080/api/auth/callback",
		OAuthAuthURL:      s.provider.URL + "/authorize",
		OAuthTokenURL:     s.provider.URL + "/token",
		OAuthUserinfoURL:  s.provider.URL + "/userinfo",
	}

	oauthProvider := auth.NewProvider(cfg)
	authService := service.NewAuthService(s.testDB.DB, testJWTSecret, time.Hour, oauthProvider.Name())
	authHandler := handler.NewAuthHandler(authService, oauthProvider, 3600, false, postLoginURL)

	router := gin.New()
	router.GET("/api/auth/login", authHandler.Login)
	router.GET("/api/auth/callback", authHandler.Callback)
	s.router = router
}

func (s *AuthHandlerTestSuite) TearDownSuite() {
	s.provider.Close()
	s.testDB.Teardown(s.T())
}

func (s *AuthHandlerTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *AuthHandlerTestSuite) login() (*httptest.ResponseRecorder, *http.Cookie) {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/login", nil))

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "oauth_state" {
			return w, cookie
		}
	}
	return w, nil
}

func (s *AuthHandlerTestSuite) TestLoginRedirectsToProviderWithState() {
	w, stateCookie := s.login()

	s.Equal(http.StatusTemporaryRedirect, w.Code)
	s.Require().NotNil(stateCookie, "login must bind the state nonce to a cookie")
	s.Contains(w.Header().Get("Location"), s.provider.URL+"/authorize")
	s.Contains(w.Header().Get("Location"), "state="+stateCookie.Value)
}

func (s *AuthHandlerTestSuite) TestCallbackSetsSessionAndRedirectsBack() {
	_, stateCookie := s.login()
	s.Require().NotNil(stateCookie)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=test-code&state="+stateCookie.Value, nil)
	req.AddCookie(stateCookie)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusFound, w.Code, w.Body.String())
	s.Equal(postLoginURL, w.Header().Get("Location"), "callback must send the browser back to the application")

	var sessionCookie *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			sessionCookie = cookie
		}
	}
	s.Require().NotNil(sessionCookie, "callback must set the session cookie")
	s.NotEmpty(sessionCookie.Value)

	var user models.User
	s.Require().NoError(s.testDB.DB.First(&user, "email = ?", "buyer@example.com").Error)
	s.Equal(models.RoleAdmin, user.Role, "first sign-in on an empty table is promoted to admin")
}

func (s *AuthHandlerTestSuite) TestCallbackRejectsBadState() {
	_, stateCookie := s.login()
	s.Require().NotNil(stateCookie)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=test-code&state=forged", nil)
	req.AddCookie(stateCookie)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)

	var count int64
	s.testDB.DB.Model(&models.User{}).Count(&count)
	s.Zero(count, "a forged state must not create a user")
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}
