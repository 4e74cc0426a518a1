package service_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/service"
	"github.com/sceneyard/sceneyard/internal/testutil"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

type CatalogServiceTestSuite struct {
	suite.Suite
	testDB         *testutil.TestDatabase
	catalogService *service.CatalogService
}

func (s *CatalogServiceTestSuite) SetupSuite() {
	logger.Init(false)
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.catalogService = service.NewCatalogService(s.testDB.DB)
}

func (s *CatalogServiceTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *CatalogServiceTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *CatalogServiceTestSuite) TestCreateCategoryDerivesSlug() {
	category, err := s.catalogService.CreateCategory("Retro Wave!!")

	s.Require().NoError(err)
	s.Equal("Retro Wave!!", category.Name)
	s.Equal("retro-wave", category.Slug)
}

func (s *CatalogServiceTestSuite) TestCreateCategoryEmptyNameRejected() {
	_, err := s.catalogService.CreateCategory("  !!! ")
	s.ErrorIs(err, service.ErrNameRequired)
}

func (s *CatalogServiceTestSuite) TestListCategoriesSortedByName() {
	for _, name := range []string{"Titles", "Glitch", "Lower Thirds"} {
		_, err := s.catalogService.CreateCategory(name)
		s.Require().NoError(err)
	}

	categories, err := s.catalogService.ListCategories()

	s.Require().NoError(err)
	s.Require().Len(categories, 3)
	s.Equal("Glitch", categories[0].Name)
	s.Equal("Lower Thirds", categories[1].Name)
	s.Equal("Titles", categories[2].Name)
}

func (s *CatalogServiceTestSuite) TestUpdateCategoryReslugs() {
	category, err := s.catalogService.CreateCategory("Glitch")
	s.Require().NoError(err)

	updated, err := s.catalogService.UpdateCategory(category.ID, "VHS Glitch")

	s.Require().NoError(err)
	s.Equal("vhs-glitch", updated.Slug)
}

func (s *CatalogServiceTestSuite) TestCreateOrGetTagIdempotent() {
	first, err := s.catalogService.CreateOrGetTag("Motion Graphics")
	s.Require().NoError(err)

	// Same tag in a different casing with stray whitespace
	second, err := s.catalogService.CreateOrGetTag("  motion   graphics ")
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID, "create-or-get must return the same row both times")

	var count int64
	s.testDB.DB.Model(&models.Tag{}).Count(&count)
	s.EqualValues(1, count, "only one tag row should exist")
}

func (s *CatalogServiceTestSuite) TestDeleteTagClearsAssociations() {
	tag, err := s.catalogService.CreateOrGetTag("neon")
	s.Require().NoError(err)

	template, err := testutil.CreateTestTemplate(s.testDB.DB, "Neon Pack", 10)
	s.Require().NoError(err)

	err = s.testDB.DB.Exec(
		"INSERT INTO template_tags (template_id, tag_id) VALUES (?, ?)",
		template.ID, tag.ID,
	).Error
	s.Require().NoError(err)

	s.Require().NoError(s.catalogService.DeleteTag(tag.ID))

	var junction int64
	s.testDB.DB.Table("template_tags").Where("tag_id = ?", tag.ID).Count(&junction)
	s.Zero(junction, "junction rows must be cleared with the tag")
}

func TestCatalogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}
