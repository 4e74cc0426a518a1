package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/sceneyard/sceneyard/internal/cache"
	"github.com/sceneyard/sceneyard/internal/handler"
	"github.com/sceneyard/sceneyard/internal/middleware"
	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/service"
	"github.com/sceneyard/sceneyard/internal/testutil"
	"github.com/sceneyard/sceneyard/internal/utils"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

// The storage client stays unconfigured here, so an authorized stream ends
// in 503 rather than object bytes. What these tests pin down is the
// authorization decision: 401 means denied, 503 means allowed through.
type StorageHandlerTestSuite struct {
	suite.Suite
	testDB            *testutil.TestDatabase
	testRedis         *testutil.TestRedis
	likeCache         *cache.RedisLikeCache
	engagementService *service.EngagementService
	router            *gin.Engine
}

func (s *StorageHandlerTestSuite) SetupSuite() {
	logger.Init(false)
	gin.SetMode(gin.TestMode)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.testRedis = testutil.SetupTestRedis(s.T())

	likeCache, err := cache.NewRedisLikeCache(s.testRedis.URL)
	s.Require().NoError(err)
	s.likeCache = likeCache

	s.engagementService = service.NewEngagementService(s.testDB.DB, s.likeCache)
	storageHandler := handler.NewStorageHandler(nil, s.engagementService)

	router := gin.New()
	router.GET("/api/storage/stream", middleware.OptionalAuth(testJWTSecret), storageHandler.Stream)
	s.router = router
}

func (s *StorageHandlerTestSuite) TearDownSuite() {
	s.likeCache.Close()
	s.testRedis.Teardown(s.T())
	s.testDB.Teardown(s.T())
}

func (s *StorageHandlerTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *StorageHandlerTestSuite) streamAs(user *models.User, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != nil {
		token, err := utils.GenerateToken(user, testJWTSecret, time.Hour)
		s.Require().NoError(err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *StorageHandlerTestSuite) TestRecordedDownloadURLIsStreamableByThatUser() {
	user, err := testutil.CreateTestUser(s.testDB.DB, "buyer@example.com", models.RoleUser)
	s.Require().NoError(err)

	template, err := testutil.CreateTestTemplate(s.testDB.DB, "Glitch Pack", 25)
	s.Require().NoError(err)
	_, err = testutil.CreateTestAsset(s.testDB.DB, template.ID, models.AssetKindDownload, "downloads/"+template.ID.String()+".zip")
	s.Require().NoError(err)

	result, err := s.engagementService.RecordDownload(context.Background(), user.ID, template.ID)
	s.Require().NoError(err)

	w := s.streamAs(user, result.URL)
	s.NotEqual(http.StatusUnauthorized, w.Code, "the user who recorded the download must be allowed to follow the returned URL")
	s.Equal(http.StatusServiceUnavailable, w.Code, "authorized request should reach the storage layer")
}

func (s *StorageHandlerTestSuite) TestDownloadKeyDeniedWithoutDownloadRecord() {
	owner, err := testutil.CreateTestUser(s.testDB.DB, "buyer@example.com", models.RoleUser)
	s.Require().NoError(err)
	other, err := testutil.CreateTestUser(s.testDB.DB, "other@example.com", models.RoleUser)
	s.Require().NoError(err)

	template, err := testutil.CreateTestTemplate(s.testDB.DB, "Glitch Pack", 25)
	s.Require().NoError(err)
	_, err = testutil.CreateTestAsset(s.testDB.DB, template.ID, models.AssetKindDownload, "downloads/"+template.ID.String()+".zip")
	s.Require().NoError(err)

	result, err := s.engagementService.RecordDownload(context.Background(), owner.ID, template.ID)
	s.Require().NoError(err)

	s.Equal(http.StatusUnauthorized, s.streamAs(other, result.URL).Code,
		"a user without a download record must not stream the asset")
	s.Equal(http.StatusUnauthorized, s.streamAs(nil, result.URL).Code,
		"anonymous requests must not stream download assets")
}

func (s *StorageHandlerTestSuite) TestDownloadKeyAllowedForAdmin() {
	admin, err := testutil.CreateTestUser(s.testDB.DB, "admin@example.com", models.RoleAdmin)
	s.Require().NoError(err)

	w := s.streamAs(admin, "/api/storage/stream?key=downloads%2Fanything.zip")
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *StorageHandlerTestSuite) TestPublicKeysNeedNoSession() {
	w := s.streamAs(nil, "/api/storage/stream?key=previews%2Fclip.mp4")
	s.Equal(http.StatusServiceUnavailable, w.Code, "preview keys are public; only storage availability stops the request")

	w = s.streamAs(nil, "/api/storage/stream?key=thumbnails%2Fthumb.jpg")
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *StorageHandlerTestSuite) TestMissingKeyRejected() {
	w := s.streamAs(nil, "/api/storage/stream")
	s.Equal(http.StatusBadRequest, w.Code)
}

func TestStorageHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(StorageHandlerTestSuite))
}
