package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sceneyard/sceneyard/internal/cache"
	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/service"
	"github.com/sceneyard/sceneyard/internal/testutil"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

type EngagementServiceTestSuite struct {
	suite.Suite
	testDB            *testutil.TestDatabase
	testRedis         *testutil.TestRedis
	likeCache         *cache.RedisLikeCache
	engagementService *service.EngagementService
	user              *models.User
	template          *models.Template
}

func (s *EngagementServiceTestSuite) SetupSuite() {
	logger.Init(false)
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.testRedis = testutil.SetupTestRedis(s.T())

	likeCache, err := cache.NewRedisLikeCache(s.testRedis.URL)
	s.Require().NoError(err)
	s.likeCache = likeCache

	s.engagementService = service.NewEngagementService(s.testDB.DB, s.likeCache)
}

func (s *EngagementServiceTestSuite) TearDownSuite() {
	s.likeCache.Close()
	s.testRedis.Teardown(s.T())
	s.testDB.Teardown(s.T())
}

func (s *EngagementServiceTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.testRedis.Server.FlushAll()

	user, err := testutil.CreateTestUser(s.testDB.DB, "viewer@example.com", models.RoleUser)
	s.Require().NoError(err)
	s.user = user

	template, err := testutil.CreateTestTemplate(s.testDB.DB, "Glitch Pack", 25)
	s.Require().NoError(err)
	s.template = template

	_, err = testutil.CreateTestAsset(s.testDB.DB, template.ID, models.AssetKindDownload, "downloads/"+template.ID.String()+".zip")
	s.Require().NoError(err)
}

func (s *EngagementServiceTestSuite) TestToggleLikeIsItsOwnInverse() {
	ctx := context.Background()

	first, err := s.engagementService.ToggleLike(ctx, s.user.ID, s.template.ID)
	s.Require().NoError(err)
	s.True(first.Liked)
	s.EqualValues(1, first.LikeCount)

	second, err := s.engagementService.ToggleLike(ctx, s.user.ID, s.template.ID)
	s.Require().NoError(err)
	s.False(second.Liked, "second toggle should restore the original state")
	s.EqualValues(0, second.LikeCount, "second toggle should restore the original count")

	var rows int64
	s.testDB.DB.Model(&models.Like{}).Count(&rows)
	s.Zero(rows)
}

func (s *EngagementServiceTestSuite) TestToggleLikeUnknownTemplate() {
	other, err := testutil.CreateTestUser(s.testDB.DB, "other@example.com", models.RoleUser)
	s.Require().NoError(err)

	_, err = s.engagementService.ToggleLike(context.Background(), other.ID, other.ID)
	s.ErrorIs(err, service.ErrTemplateNotFound)
}

func (s *EngagementServiceTestSuite) TestLikeCountReadThrough() {
	ctx := context.Background()

	_, err := s.engagementService.ToggleLike(ctx, s.user.ID, s.template.ID)
	s.Require().NoError(err)

	// Drop the cache entry; the count must be recomputed from rows.
	s.Require().NoError(s.likeCache.InvalidateLikeCount(ctx, s.template.ID))

	count, err := s.engagementService.LikeCount(ctx, s.template.ID)
	s.Require().NoError(err)
	s.EqualValues(1, count)

	cached, ok, err := s.likeCache.GetLikeCount(ctx, s.template.ID)
	s.Require().NoError(err)
	s.True(ok, "read-through should refill the cache")
	s.EqualValues(1, cached)
}

func (s *EngagementServiceTestSuite) TestToggleInvalidatesCachedCount() {
	ctx := context.Background()

	// Prime the cache through the read path.
	_, err := s.engagementService.LikeCount(ctx, s.template.ID)
	s.Require().NoError(err)
	_, ok, err := s.likeCache.GetLikeCount(ctx, s.template.ID)
	s.Require().NoError(err)
	s.Require().True(ok)

	_, err = s.engagementService.ToggleLike(ctx, s.user.ID, s.template.ID)
	s.Require().NoError(err)

	_, ok, err = s.likeCache.GetLikeCount(ctx, s.template.ID)
	s.Require().NoError(err)
	s.False(ok, "toggle must drop the cached count so the next read recomputes")

	count, err := s.engagementService.LikeCount(ctx, s.template.ID)
	s.Require().NoError(err)
	s.EqualValues(1, count)
}

func (s *EngagementServiceTestSuite) TestCanStreamKeyFollowsDownloadRecord() {
	ctx := context.Background()
	key := "downloads/" + s.template.ID.String() + ".zip"

	allowed, err := s.engagementService.CanStreamKey(s.user.ID, key)
	s.Require().NoError(err)
	s.False(allowed, "no download record yet")

	_, err = s.engagementService.RecordDownload(ctx, s.user.ID, s.template.ID)
	s.Require().NoError(err)

	allowed, err = s.engagementService.CanStreamKey(s.user.ID, key)
	s.Require().NoError(err)
	s.True(allowed, "recording the download authorizes the key")

	other, err := testutil.CreateTestUser(s.testDB.DB, "other@example.com", models.RoleUser)
	s.Require().NoError(err)
	allowed, err = s.engagementService.CanStreamKey(other.ID, key)
	s.Require().NoError(err)
	s.False(allowed, "another user's record does not transfer")

	allowed, err = s.engagementService.CanStreamKey(s.user.ID, "downloads/unknown.zip")
	s.Require().NoError(err)
	s.False(allowed, "keys with no backing asset are denied")
}

func (s *EngagementServiceTestSuite) TestRecordDownloadDedup() {
	ctx := context.Background()

	first, err := s.engagementService.RecordDownload(ctx, s.user.ID, s.template.ID)
	s.Require().NoError(err)
	s.False(first.AlreadyDownloaded)
	s.Contains(first.URL, "/api/storage/stream?key=")

	second, err := s.engagementService.RecordDownload(ctx, s.user.ID, s.template.ID)
	s.Require().NoError(err)
	s.True(second.AlreadyDownloaded, "repeat download must be flagged")
	s.Equal(first.URL, second.URL, "repeat download must return the same URL")

	var rows int64
	s.testDB.DB.Model(&models.Download{}).Count(&rows)
	s.EqualValues(1, rows, "repeat download must not insert a second record")
}

func (s *EngagementServiceTestSuite) TestRecordDownloadWithoutAsset() {
	bare, err := testutil.CreateTestTemplate(s.testDB.DB, "No Asset Yet", 5)
	s.Require().NoError(err)

	_, err = s.engagementService.RecordDownload(context.Background(), s.user.ID, bare.ID)
	s.ErrorIs(err, service.ErrDownloadAssetMissing)
}

func (s *EngagementServiceTestSuite) TestDownloadHistory() {
	ctx := context.Background()

	_, err := s.engagementService.RecordDownload(ctx, s.user.ID, s.template.ID)
	s.Require().NoError(err)

	entries, err := s.engagementService.DownloadHistory(s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(s.template.ID, entries[0].Template.ID)
}

func TestEngagementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EngagementServiceTestSuite))
}
