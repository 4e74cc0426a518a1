package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/sceneyard/sceneyard/internal/mailer"
	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/service"
	"github.com/sceneyard/sceneyard/internal/testutil"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

type ContactServiceTestSuite struct {
	suite.Suite
	testDB         *testutil.TestDatabase
	contactService *service.ContactService
}

func (s *ContactServiceTestSuite) SetupSuite() {
	logger.Init(false)
	s.testDB = testutil.SetupTestDatabase(s.T())

	// Unconfigured mailer is a no-op, so submissions never hit the network.
	s.contactService = service.NewContactService(s.testDB.DB, mailer.New("", "", ""))
}

func (s *ContactServiceTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *ContactServiceTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *ContactServiceTestSuite) TestSubmitStoresMessage() {
	msg, err := s.contactService.Submit(context.Background(), "Ada", "ada@example.com", "Love the glitch pack")

	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, msg.ID)

	var stored models.ContactMessage
	s.Require().NoError(s.testDB.DB.First(&stored, "id = ?", msg.ID).Error)
	s.Equal("Ada", stored.Name)
	s.Equal("Love the glitch pack", stored.Message)
}

func (s *ContactServiceTestSuite) TestSubmitValidation() {
	_, err := s.contactService.Submit(context.Background(), "", "ada@example.com", "hi")
	s.ErrorIs(err, service.ErrContactFieldsMissing)

	_, err = s.contactService.Submit(context.Background(), "Ada", "not-an-email", "hi")
	s.ErrorIs(err, service.ErrInvalidEmail)

	var count int64
	s.testDB.DB.Model(&models.ContactMessage{}).Count(&count)
	s.Zero(count, "rejected submissions must not be stored")
}

func (s *ContactServiceTestSuite) TestListMessagesNewestFirst() {
	ctx := context.Background()

	first, err := s.contactService.Submit(ctx, "Ada", "ada@example.com", "first")
	s.Require().NoError(err)
	second, err := s.contactService.Submit(ctx, "Grace", "grace@example.com", "second")
	s.Require().NoError(err)

	messages, err := s.contactService.ListMessages()
	s.Require().NoError(err)
	s.Require().Len(messages, 2)
	s.Contains([]string{first.Message, second.Message}, messages[0].Message)
}

func TestContactServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ContactServiceTestSuite))
}
