package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AssignmentServiceTestSuite defines the test suite for the engine
type AssignmentServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AssignmentService
	admin   *models.User
}

// SetupTest runs before each test
func (suite *AssignmentServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Conference{},
		&models.Track{},
		&models.ConferenceMembership{},
		&models.Paper{},
		&models.PaperAuthor{},
		&models.Decision{},
		&models.ReviewerBid{},
		&models.ReviewerConflict{},
		&models.ReviewAssignment{},
		&models.Review{},
	)
	suite.Require().NoError(err)

	confRepo := repository.NewConferenceRepository(suite.db)
	paperRepo := repository.NewPaperRepository(suite.db)
	bidRepo := repository.NewBidRepository(suite.db)
	assignRepo := repository.NewAssignmentRepository(suite.db)
	membership := NewMembershipService(confRepo)

	suite.service = NewAssignmentService(confRepo, paperRepo, bidRepo, assignRepo, membership, nil)

	suite.admin = suite.createUser("admin@conf.test", true)
}

// TearDownTest runs after each test
func (suite *AssignmentServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helpers to create test data

func (suite *AssignmentServiceTestSuite) createUser(email string, admin bool) *models.User {
	user := &models.User{
		Email:        email,
		Name:         email,
		PasswordHash: "hashedpassword",
		IsAdmin:      admin,
	}
	suite.db.Create(user)
	return user
}

func (suite *AssignmentServiceTestSuite) createConference(slug string) *models.Conference {
	conf := &models.Conference{Name: slug, Slug: slug}
	suite.db.Create(conf)
	return conf
}

func (suite *AssignmentServiceTestSuite) addRole(confID, userID uint64, role models.ConferenceRole) {
	suite.db.Create(&models.ConferenceMembership{
		ConferenceID: confID,
		UserID:       userID,
		Role:         role,
		JoinedAt:     time.Now(),
	})
}

func (suite *AssignmentServiceTestSuite) createPaper(confID uint64, title string, authorIDs ...uint64) *models.Paper {
	paper := &models.Paper{
		ConferenceID: confID,
		Title:        title,
		Status:       models.PaperStatusSubmitted,
	}
	suite.db.Create(paper)
	for i, authorID := range authorIDs {
		suite.db.Create(&models.PaperAuthor{PaperID: paper.ID, UserID: authorID, Position: i + 1})
	}
	return paper
}

func (suite *AssignmentServiceTestSuite) bid(paperID, reviewerID uint64, value models.BidValue) {
	suite.db.Create(&models.ReviewerBid{PaperID: paperID, ReviewerID: reviewerID, Bid: value})
}

func (suite *AssignmentServiceTestSuite) assignmentsFor(paperID uint64) []models.ReviewAssignment {
	var assignments []models.ReviewAssignment
	suite.db.Where("paper_id = ?", paperID).Find(&assignments)
	return assignments
}

// setupScenario builds the 3-paper / 4-reviewer conference: paper A has
// an author among the reviewers, paper B has one CONFLICT bid, paper C
// is unconstrained.
func (suite *AssignmentServiceTestSuite) setupScenario() (*models.Conference, []*models.User, *models.Paper, *models.Paper, *models.Paper) {
	conf := suite.createConference("icse")
	reviewers := make([]*models.User, 4)
	for i := range reviewers {
		reviewers[i] = suite.createUser(fmt.Sprintf("reviewer%d@conf.test", i+1), false)
		suite.addRole(conf.ID, reviewers[i].ID, models.RoleReviewer)
	}

	paperA := suite.createPaper(conf.ID, "Paper A", reviewers[0].ID)
	paperB := suite.createPaper(conf.ID, "Paper B")
	paperC := suite.createPaper(conf.ID, "Paper C")

	suite.bid(paperB.ID, reviewers[1].ID, models.BidConflict)

	return conf, reviewers, paperA, paperB, paperC
}

// TestAutoAssign_FullScenario covers authors, conflicts and an
// unconstrained paper in a single run
func (suite *AssignmentServiceTestSuite) TestAutoAssign_FullScenario() {
	conf, reviewers, paperA, paperB, paperC := suite.setupScenario()

	report, err := suite.service.AutoAssign(AutoAssignInput{
		ConferenceID: conf.ID,
		Target:       2,
		Actor:        suite.admin,
	})
	suite.Require().NoError(err)

	assert.Len(suite.T(), report.Papers, 3)
	assert.NotEmpty(suite.T(), report.RunID)

	byPaper := make(map[uint64]PaperOutcome)
	for _, outcome := range report.Papers {
		byPaper[outcome.PaperID] = outcome
	}

	// Paper A: author excluded, two reviewers from the remaining three
	outcomeA := byPaper[paperA.ID]
	assert.Len(suite.T(), outcomeA.AssignedReviewerIDs, 2)
	assert.NotContains(suite.T(), outcomeA.AssignedReviewerIDs, reviewers[0].ID)

	// Paper B: the CONFLICT bidder is excluded
	outcomeB := byPaper[paperB.ID]
	assert.NotContains(suite.T(), outcomeB.AssignedReviewerIDs, reviewers[1].ID)
	assert.Len(suite.T(), outcomeB.AssignedReviewerIDs, 2)

	// Paper C: unconstrained
	outcomeC := byPaper[paperC.ID]
	assert.Len(suite.T(), outcomeC.AssignedReviewerIDs, 2)

	total := len(outcomeA.AssignedReviewerIDs) + len(outcomeB.AssignedReviewerIDs) + len(outcomeC.AssignedReviewerIDs)
	assert.Equal(suite.T(), total, report.NewAssignments)

	// No reviewer appears twice on the same paper
	for _, paperID := range []uint64{paperA.ID, paperB.ID, paperC.ID} {
		seen := make(map[uint64]bool)
		for _, a := range suite.assignmentsFor(paperID) {
			assert.False(suite.T(), seen[a.ReviewerID], "reviewer assigned twice to paper %d", paperID)
			seen[a.ReviewerID] = true
			assert.Equal(suite.T(), models.AssignmentNotStarted, a.Status)
		}
	}

	// Papers got their first assignments, so they moved under review
	var paper models.Paper
	suite.db.First(&paper, paperA.ID)
	assert.Equal(suite.T(), models.PaperStatusUnderReview, paper.Status)
}

// TestAutoAssign_PrefersYesOverNo checks bid-based preference ordering
func (suite *AssignmentServiceTestSuite) TestAutoAssign_PrefersYesOverNo() {
	conf := suite.createConference("pldi")
	yes := suite.createUser("yes@conf.test", false)
	no := suite.createUser("no@conf.test", false)
	suite.addRole(conf.ID, yes.ID, models.RoleReviewer)
	suite.addRole(conf.ID, no.ID, models.RoleReviewer)

	paper := suite.createPaper(conf.ID, "Contested Paper")
	suite.bid(paper.ID, yes.ID, models.BidYes)
	suite.bid(paper.ID, no.ID, models.BidNo)

	report, err := suite.service.AutoAssign(AutoAssignInput{
		ConferenceID: conf.ID,
		Target:       1,
		Actor:        suite.admin,
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), []uint64{yes.ID}, report.Papers[0].AssignedReviewerIDs)
}

// TestAutoAssign_NoBidBeatsNo checks that an unexpressed reviewer ranks
// above one who declined
func (suite *AssignmentServiceTestSuite) TestAutoAssign_NoBidBeatsNo() {
	conf := suite.createConference("popl")
	silent := suite.createUser("silent@conf.test", false)
	declined := suite.createUser("declined@conf.test", false)
	suite.addRole(conf.ID, silent.ID, models.RoleReviewer)
	suite.addRole(conf.ID, declined.ID, models.RoleReviewer)

	paper := suite.createPaper(conf.ID, "Quiet Paper")
	suite.bid(paper.ID, declined.ID, models.BidNo)

	report, err := suite.service.AutoAssign(AutoAssignInput{
		ConferenceID: conf.ID,
		Target:       1,
		Actor:        suite.admin,
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), []uint64{silent.ID}, report.Papers[0].AssignedReviewerIDs)
}

// TestAutoAssign_LoadBalancing checks that load feeds back within a run
func (suite *AssignmentServiceTestSuite) TestAutoAssign_LoadBalancing() {
	conf := suite.createConference("sosp")
	r1 := suite.createUser("r1@conf.test", false)
	r2 := suite.createUser("r2@conf.test", false)
	suite.addRole(conf.ID, r1.ID, models.RoleReviewer)
	suite.addRole(conf.ID, r2.ID, models.RoleReviewer)

	for i := 0; i < 4; i++ {
		suite.createPaper(conf.ID, fmt.Sprintf("Paper %d", i+1))
	}

	report, err := suite.service.AutoAssign(AutoAssignInput{
		ConferenceID: conf.ID,
		Target:       1,
		Actor:        suite.admin,
	})
	suite.Require().NoError(err)

	// With equal scores the least-loaded reviewer wins each time, so
	// four papers split two apiece.
	assert.Equal(suite.T(), 2, report.ReviewerLoads[r1.ID])
	assert.Equal(suite.T(), 2, report.ReviewerLoads[r2.ID])
}

// TestAutoAssign_ShortfallReported checks that a thin pool is a
// reported outcome, not an error
func (suite *AssignmentServiceTestSuite) TestAutoAssign_ShortfallReported() {
	conf := suite.createConference("osdi")
	only := suite.createUser("only@conf.test", false)
	suite.addRole(conf.ID, only.ID, models.RoleReviewer)

	paper := suite.createPaper(conf.ID, "Lonely Paper")

	report, err := suite.service.AutoAssign(AutoAssignInput{
		ConferenceID: conf.ID,
		Target:       3,
		Actor:        suite.admin,
	})
	suite.Require().NoError(err)

	outcome := report.Papers[0]
	assert.Equal(suite.T(), paper.ID, outcome.PaperID)
	assert.False(suite.T(), outcome.Skipped)
	assert.Len(suite.T(), outcome.AssignedReviewerIDs, 1)
	assert.NotEmpty(suite.T(), outcome.Reason)
}

// TestAutoAssign_EmptyPoolSkips checks the zero-eligible case
func (suite *AssignmentServiceTestSuite) TestAutoAssign_EmptyPoolSkips() {
	conf := suite.createConference("empty")
	author := suite.createUser("author@conf.test", false)
	suite.addRole(conf.ID, author.ID, models.RoleReviewer)

	suite.createPaper(conf.ID, "Self-Authored", author.ID)

	report, err := suite.service.AutoAssign(AutoAssignInput{
		ConferenceID: conf.ID,
		Target:       2,
		Actor:        suite.admin,
	})
	suite.Require().NoError(err)

	outcome := report.Papers[0]
	assert.True(suite.T(), outcome.Skipped)
	assert.Equal(suite.T(), "no eligible reviewers available", outcome.Reason)
	assert.Zero(suite.T(), report.NewAssignments)
}

// TestAutoAssign_Idempotent checks that a second run over a satisfied
// conference assigns nothing and never duplicates a pair
func (suite *AssignmentServiceTestSuite) TestAutoAssign_Idempotent() {
	conf, _, paperA, paperB, paperC := suite.setupScenario()

	_, err := suite.service.AutoAssign(AutoAssignInput{ConferenceID: conf.ID, Target: 2, Actor: suite.admin})
	suite.Require().NoError(err)

	report, err := suite.service.AutoAssign(AutoAssignInput{ConferenceID: conf.ID, Target: 2, Actor: suite.admin})
	suite.Require().NoError(err)

	assert.Zero(suite.T(), report.NewAssignments)
	for _, outcome := range report.Papers {
		assert.True(suite.T(), outcome.Skipped)
		assert.Equal(suite.T(), "already has enough reviewers", outcome.Reason)
	}

	for _, paperID := range []uint64{paperA.ID, paperB.ID, paperC.ID} {
		seen := make(map[uint64]bool)
		for _, a := range suite.assignmentsFor(paperID) {
			assert.False(suite.T(), seen[a.ReviewerID])
			seen[a.ReviewerID] = true
		}
	}
}

// TestAutoAssign_DefaultTarget checks the target fallback
func (suite *AssignmentServiceTestSuite) TestAutoAssign_DefaultTarget() {
	conf := suite.createConference("default")
	for i := 0; i < 5; i++ {
		r := suite.createUser(fmt.Sprintf("d%d@conf.test", i), false)
		suite.addRole(conf.ID, r.ID, models.RoleReviewer)
	}
	paper := suite.createPaper(conf.ID, "Defaulted Paper")

	report, err := suite.service.AutoAssign(AutoAssignInput{
		ConferenceID: conf.ID,
		Actor:        suite.admin,
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 3, report.Target)
	assert.Len(suite.T(), suite.assignmentsFor(paper.ID), 3)
}

// TestAutoAssign_ConferenceNotFound checks the NotFound failure mode
func (suite *AssignmentServiceTestSuite) TestAutoAssign_ConferenceNotFound() {
	_, err := suite.service.AutoAssign(AutoAssignInput{
		ConferenceID: 9999,
		Target:       2,
		Actor:        suite.admin,
	})
	assert.ErrorIs(suite.T(), err, ErrConferenceNotFound)
}

// TestAutoAssign_RequiresChair checks authorization
func (suite *AssignmentServiceTestSuite) TestAutoAssign_RequiresChair() {
	conf := suite.createConference("authz")
	outsider := suite.createUser("outsider@conf.test", false)

	_, err := suite.service.AutoAssign(AutoAssignInput{
		ConferenceID: conf.ID,
		Target:       2,
		Actor:        outsider,
	})
	assert.ErrorIs(suite.T(), err, ErrNotChairOrAdmin)
}

// TestManualAssign_ExclusionChecks covers the single-candidate path
func (suite *AssignmentServiceTestSuite) TestManualAssign_ExclusionChecks() {
	conf := suite.createConference("manual")
	chair := suite.createUser("chair@conf.test", false)
	suite.addRole(conf.ID, chair.ID, models.RoleChair)
	reviewer := suite.createUser("mr@conf.test", false)
	suite.addRole(conf.ID, reviewer.ID, models.RoleReviewer)
	author := suite.createUser("ma@conf.test", false)

	paper := suite.createPaper(conf.ID, "Manual Paper", author.ID)

	// Author of the paper is rejected
	_, err := suite.service.ManualAssign(ManualAssignInput{
		PaperID: paper.ID, ReviewerID: author.ID, Actor: chair,
	})
	assert.ErrorIs(suite.T(), err, ErrReviewerIsAuthor)

	// Declared conflict is rejected
	suite.db.Create(&models.ReviewerConflict{PaperID: paper.ID, ReviewerID: reviewer.ID})
	_, err = suite.service.ManualAssign(ManualAssignInput{
		PaperID: paper.ID, ReviewerID: reviewer.ID, Actor: chair,
	})
	assert.ErrorIs(suite.T(), err, ErrReviewerConflicted)
	suite.db.Where("paper_id = ?", paper.ID).Delete(&models.ReviewerConflict{})

	// CONFLICT bid is rejected
	suite.bid(paper.ID, reviewer.ID, models.BidConflict)
	_, err = suite.service.ManualAssign(ManualAssignInput{
		PaperID: paper.ID, ReviewerID: reviewer.ID, Actor: chair,
	})
	assert.ErrorIs(suite.T(), err, ErrReviewerConflicted)
	suite.db.Where("paper_id = ?", paper.ID).Delete(&models.ReviewerBid{})

	// Clean candidate succeeds
	assignment, err := suite.service.ManualAssign(ManualAssignInput{
		PaperID: paper.ID, ReviewerID: reviewer.ID, Actor: chair,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.AssignmentNotStarted, assignment.Status)

	// Duplicate pair is rejected
	_, err = suite.service.ManualAssign(ManualAssignInput{
		PaperID: paper.ID, ReviewerID: reviewer.ID, Actor: chair,
	})
	assert.ErrorIs(suite.T(), err, ErrAlreadyAssigned)
}

// TestDeleteAssignment_SubmittedRejected checks delete protection
func (suite *AssignmentServiceTestSuite) TestDeleteAssignment_SubmittedRejected() {
	conf := suite.createConference("del")
	reviewer := suite.createUser("dr@conf.test", false)
	suite.addRole(conf.ID, reviewer.ID, models.RoleReviewer)
	paper := suite.createPaper(conf.ID, "Deletable Paper")

	assignment := &models.ReviewAssignment{
		PaperID:    paper.ID,
		ReviewerID: reviewer.ID,
		Status:     models.AssignmentSubmitted,
	}
	suite.db.Create(assignment)

	err := suite.service.DeleteAssignment(assignment.ID, suite.admin)
	assert.ErrorIs(suite.T(), err, ErrAssignmentSubmitted)

	suite.db.Model(assignment).Update("status", models.AssignmentDraft)
	err = suite.service.DeleteAssignment(assignment.ID, suite.admin)
	assert.NoError(suite.T(), err)
}

// TestUpdateStatus_SubmittedTerminal checks the monotonicity guard
func (suite *AssignmentServiceTestSuite) TestUpdateStatus_SubmittedTerminal() {
	conf := suite.createConference("terminal")
	reviewer := suite.createUser("tr@conf.test", false)
	suite.addRole(conf.ID, reviewer.ID, models.RoleReviewer)
	paper := suite.createPaper(conf.ID, "Terminal Paper")

	assignment := &models.ReviewAssignment{
		PaperID:    paper.ID,
		ReviewerID: reviewer.ID,
		Status:     models.AssignmentSubmitted,
	}
	suite.db.Create(assignment)

	_, err := suite.service.UpdateStatus(assignment.ID, models.AssignmentDraft, reviewer)
	assert.ErrorIs(suite.T(), err, ErrStatusLocked)

	// Admin override can reopen
	updated, err := suite.service.UpdateStatus(assignment.ID, models.AssignmentDraft, suite.admin)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.AssignmentDraft, updated.Status)

	_, err = suite.service.UpdateStatus(assignment.ID, "BOGUS", suite.admin)
	assert.ErrorIs(suite.T(), err, ErrInvalidStatus)
}

// TestStats checks the chair-facing aggregation against persisted state
func (suite *AssignmentServiceTestSuite) TestStats() {
	conf := suite.createConference("stats")
	reviewer := suite.createUser("sr@conf.test", false)
	suite.addRole(conf.ID, reviewer.ID, models.RoleReviewer)
	paper := suite.createPaper(conf.ID, "Stats Paper")

	suite.db.Create(&models.ReviewAssignment{
		PaperID: paper.ID, ReviewerID: reviewer.ID, Status: models.AssignmentSubmitted,
	})

	stats, err := suite.service.Stats(conf.ID, suite.admin)
	suite.Require().NoError(err)

	suite.Require().Len(stats.Papers, 1)
	assert.Equal(suite.T(), int64(1), stats.Papers[0].Assigned)
	assert.Equal(suite.T(), int64(1), stats.Papers[0].Submitted)

	suite.Require().Len(stats.Reviewers, 1)
	assert.Equal(suite.T(), int64(1), stats.Reviewers[0].Load)
	assert.Equal(suite.T(), int64(1), stats.Reviewers[0].Submitted)

	// Stats are chair/admin only
	_, err = suite.service.Stats(conf.ID, reviewer)
	assert.ErrorIs(suite.T(), err, ErrNotChairOrAdmin)
}

// TestAssignmentServiceTestSuite runs the suite
func TestAssignmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AssignmentServiceTestSuite))
}
