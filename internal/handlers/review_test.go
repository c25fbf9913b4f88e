package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/hmizuno/conference-review-api/internal/database"
	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/repository"
	"github.com/hmizuno/conference-review-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ReviewHandlerTestSuite defines the test suite for ReviewHandler
type ReviewHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *ReviewHandler

	conference *models.Conference
	chair      *models.User
	reviewer   *models.User
	author     *models.User
	paper      *models.Paper
	assignment *models.ReviewAssignment
}

// SetupTest runs before each test
func (suite *ReviewHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Conference{},
		&models.ConferenceMembership{},
		&models.Paper{},
		&models.PaperAuthor{},
		&models.Decision{},
		&models.ReviewAssignment{},
		&models.Review{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	confRepo := repository.NewConferenceRepository(suite.db)
	paperRepo := repository.NewPaperRepository(suite.db)
	assignRepo := repository.NewAssignmentRepository(suite.db)
	reviewRepo := repository.NewReviewRepository(suite.db)
	membership := services.NewMembershipService(confRepo)
	reviewService := services.NewReviewService(paperRepo, assignRepo, reviewRepo, membership)

	suite.handler = NewReviewHandler(reviewService)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	suite.conference = &models.Conference{Name: "Test Conf", Slug: "test-conf"}
	suite.db.Create(suite.conference)

	suite.chair = suite.createTestUser("chair@example.com")
	suite.reviewer = suite.createTestUser("reviewer@example.com")
	suite.author = suite.createTestUser("author@example.com")

	suite.db.Create(&models.ConferenceMembership{
		ConferenceID: suite.conference.ID, UserID: suite.chair.ID, Role: models.RoleChair,
	})
	suite.db.Create(&models.ConferenceMembership{
		ConferenceID: suite.conference.ID, UserID: suite.reviewer.ID, Role: models.RoleReviewer,
	})

	suite.paper = &models.Paper{
		ConferenceID: suite.conference.ID,
		Title:        "Test Paper",
		Status:       models.PaperStatusUnderReview,
	}
	suite.db.Create(suite.paper)
	suite.db.Create(&models.PaperAuthor{PaperID: suite.paper.ID, UserID: suite.author.ID, Position: 1})

	suite.assignment = &models.ReviewAssignment{
		PaperID:    suite.paper.ID,
		ReviewerID: suite.reviewer.ID,
		Status:     models.AssignmentNotStarted,
	}
	suite.db.Create(suite.assignment)
}

// TearDownTest runs after each test
func (suite *ReviewHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *ReviewHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Email:        email,
		Name:         email,
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

// Helper function to create authenticated context
func (suite *ReviewHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)

	return c, w
}

func (suite *ReviewHandlerTestSuite) submitReview(score int) {
	body, _ := json.Marshal(map[string]interface{}{
		"score":             score,
		"comments_to_chair": "for the chair only",
	})
	c, w := suite.createAuthContext("POST", "/api/reviews/1/submit", body, suite.reviewer.ID)
	c.Params = gin.Params{{Key: "assignment_id", Value: fmt.Sprint(suite.assignment.ID)}}
	suite.handler.SubmitReview(c)
	suite.Require().Equal(http.StatusOK, w.Code)
}

// TestSaveDraft_Success tests saving a partial draft
func (suite *ReviewHandlerTestSuite) TestSaveDraft_Success() {
	body, _ := json.Marshal(map[string]interface{}{
		"score":   7,
		"summary": "Promising direction",
	})

	c, w := suite.createAuthContext("PUT", "/api/reviews/1/draft", body, suite.reviewer.ID)
	c.Params = gin.Params{{Key: "assignment_id", Value: fmt.Sprint(suite.assignment.ID)}}

	suite.handler.SaveDraft(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response models.Review
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 7, *response.Score)
	assert.Equal(suite.T(), "Promising direction", response.Summary)

	// Assignment moved to DRAFT
	var assignment models.ReviewAssignment
	suite.db.First(&assignment, suite.assignment.ID)
	assert.Equal(suite.T(), models.AssignmentDraft, assignment.Status)
}

// TestSaveDraft_Unauthorized tests saving without authentication
func (suite *ReviewHandlerTestSuite) TestSaveDraft_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/reviews/1/draft", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "assignment_id", Value: "1"}}

	suite.handler.SaveDraft(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestSaveDraft_ScoreOutOfRange tests score validation
func (suite *ReviewHandlerTestSuite) TestSaveDraft_ScoreOutOfRange() {
	body, _ := json.Marshal(map[string]interface{}{"score": 42})

	c, w := suite.createAuthContext("PUT", "/api/reviews/1/draft", body, suite.reviewer.ID)
	c.Params = gin.Params{{Key: "assignment_id", Value: fmt.Sprint(suite.assignment.ID)}}

	suite.handler.SaveDraft(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestSaveDraft_OutsiderForbidden tests draft access control
func (suite *ReviewHandlerTestSuite) TestSaveDraft_OutsiderForbidden() {
	outsider := suite.createTestUser("outsider@example.com")
	body, _ := json.Marshal(map[string]interface{}{"score": 5})

	c, w := suite.createAuthContext("PUT", "/api/reviews/1/draft", body, outsider.ID)
	c.Params = gin.Params{{Key: "assignment_id", Value: fmt.Sprint(suite.assignment.ID)}}

	suite.handler.SaveDraft(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestSubmitReview_DoubleSubmitConflict tests the repeat-submit status
func (suite *ReviewHandlerTestSuite) TestSubmitReview_DoubleSubmitConflict() {
	suite.submitReview(6)

	body, _ := json.Marshal(map[string]interface{}{"score": 9})
	c, w := suite.createAuthContext("POST", "/api/reviews/1/submit", body, suite.reviewer.ID)
	c.Params = gin.Params{{Key: "assignment_id", Value: fmt.Sprint(suite.assignment.ID)}}

	suite.handler.SubmitReview(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

// TestSubmitReview_NotFound tests submitting against a missing assignment
func (suite *ReviewHandlerTestSuite) TestSubmitReview_NotFound() {
	body, _ := json.Marshal(map[string]interface{}{"score": 6})
	c, w := suite.createAuthContext("POST", "/api/reviews/9999/submit", body, suite.reviewer.ID)
	c.Params = gin.Params{{Key: "assignment_id", Value: "9999"}}

	suite.handler.SubmitReview(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestListForPaper_ChairSeesIdentities tests the privileged projection
func (suite *ReviewHandlerTestSuite) TestListForPaper_ChairSeesIdentities() {
	suite.submitReview(7)

	c, w := suite.createAuthContext("GET", "/api/papers/1/reviews", nil, suite.chair.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(suite.paper.ID)}}

	suite.handler.ListForPaper(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string][]map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	reviews := response["reviews"]
	suite.Require().Len(reviews, 1)
	assert.Equal(suite.T(), suite.reviewer.Name, reviews[0]["reviewer_label"])
	assert.NotNil(suite.T(), reviews[0]["reviewer"])
	assert.Equal(suite.T(), "for the chair only", reviews[0]["comments_to_chair"])
}

// TestListForPaper_ReviewerGetsAnonymized tests the anonymized projection
func (suite *ReviewHandlerTestSuite) TestListForPaper_ReviewerGetsAnonymized() {
	suite.submitReview(7)

	other := suite.createTestUser("other-reviewer@example.com")
	suite.db.Create(&models.ConferenceMembership{
		ConferenceID: suite.conference.ID, UserID: other.ID, Role: models.RoleReviewer,
	})

	c, w := suite.createAuthContext("GET", "/api/papers/1/reviews", nil, other.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(suite.paper.ID)}}

	suite.handler.ListForPaper(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string][]map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	reviews := response["reviews"]
	suite.Require().Len(reviews, 1)
	assert.Equal(suite.T(), "Reviewer 1", reviews[0]["reviewer_label"])
	assert.Nil(suite.T(), reviews[0]["reviewer"])
	assert.Nil(suite.T(), reviews[0]["comments_to_chair"])
}

// TestListForPaper_AuthorBlockedBeforeDecision tests author visibility
func (suite *ReviewHandlerTestSuite) TestListForPaper_AuthorBlockedBeforeDecision() {
	suite.submitReview(7)

	c, w := suite.createAuthContext("GET", "/api/papers/1/reviews", nil, suite.author.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(suite.paper.ID)}}

	suite.handler.ListForPaper(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	// After a decision the author sees the anonymized reviews
	suite.db.Create(&models.Decision{
		PaperID: suite.paper.ID, Verdict: "accept", DecidedBy: suite.chair.ID,
	})

	c, w = suite.createAuthContext("GET", "/api/papers/1/reviews", nil, suite.author.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(suite.paper.ID)}}

	suite.handler.ListForPaper(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

// TestSuite runs the test suite
func TestReviewHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewHandlerTestSuite))
}
