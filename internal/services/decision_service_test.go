package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DecisionServiceTestSuite defines the test suite for decisions
type DecisionServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *DecisionService

	conference *models.Conference
	chair      *models.User
	paper      *models.Paper
}

// SetupTest runs before each test
func (suite *DecisionServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Conference{},
		&models.ConferenceMembership{},
		&models.Paper{},
		&models.PaperAuthor{},
		&models.Decision{},
	)
	suite.Require().NoError(err)

	confRepo := repository.NewConferenceRepository(suite.db)
	paperRepo := repository.NewPaperRepository(suite.db)
	membership := NewMembershipService(confRepo)

	suite.service = NewDecisionService(paperRepo, membership, nil)

	suite.conference = &models.Conference{Name: "SIGMOD", Slug: "sigmod"}
	suite.db.Create(suite.conference)

	suite.chair = &models.User{Email: "chair@conf.test", Name: "Chair", PasswordHash: "hashedpassword"}
	suite.db.Create(suite.chair)
	suite.db.Create(&models.ConferenceMembership{
		ConferenceID: suite.conference.ID, UserID: suite.chair.ID, Role: models.RoleChair, JoinedAt: time.Now(),
	})

	suite.paper = &models.Paper{
		ConferenceID: suite.conference.ID,
		Title:        "Decided Paper",
		Status:       models.PaperStatusUnderReview,
	}
	suite.db.Create(suite.paper)
}

// TearDownTest runs after each test
func (suite *DecisionServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// TestRecordDecision_Accept checks the accept path end to end
func (suite *DecisionServiceTestSuite) TestRecordDecision_Accept() {
	decision, err := suite.service.RecordDecision(suite.paper.ID, "accept", suite.chair)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "accept", decision.Verdict)
	assert.Equal(suite.T(), suite.chair.ID, decision.DecidedBy)

	var paper models.Paper
	suite.db.First(&paper, suite.paper.ID)
	assert.Equal(suite.T(), models.PaperStatusAccepted, paper.Status)
}

// TestRecordDecision_Reject checks the reject path
func (suite *DecisionServiceTestSuite) TestRecordDecision_Reject() {
	_, err := suite.service.RecordDecision(suite.paper.ID, "reject", suite.chair)
	suite.Require().NoError(err)

	var paper models.Paper
	suite.db.First(&paper, suite.paper.ID)
	assert.Equal(suite.T(), models.PaperStatusRejected, paper.Status)
}

// TestRecordDecision_InvalidVerdict checks verdict validation
func (suite *DecisionServiceTestSuite) TestRecordDecision_InvalidVerdict() {
	_, err := suite.service.RecordDecision(suite.paper.ID, "maybe", suite.chair)
	assert.ErrorIs(suite.T(), err, ErrInvalidVerdict)
}

// TestRecordDecision_OnlyOnce checks the one-decision-per-paper rule
func (suite *DecisionServiceTestSuite) TestRecordDecision_OnlyOnce() {
	_, err := suite.service.RecordDecision(suite.paper.ID, "accept", suite.chair)
	suite.Require().NoError(err)

	_, err = suite.service.RecordDecision(suite.paper.ID, "reject", suite.chair)
	assert.ErrorIs(suite.T(), err, ErrAlreadyDecided)
}

// TestRecordDecision_RequiresChair checks authorization
func (suite *DecisionServiceTestSuite) TestRecordDecision_RequiresChair() {
	outsider := &models.User{Email: "outsider@conf.test", Name: "Outsider", PasswordHash: "hashedpassword"}
	suite.db.Create(outsider)

	_, err := suite.service.RecordDecision(suite.paper.ID, "accept", outsider)
	assert.ErrorIs(suite.T(), err, ErrNotChairOrAdmin)
}

// TestDecisionServiceTestSuite runs the suite
func TestDecisionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DecisionServiceTestSuite))
}
