package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hmizuno/conference-review-api/internal/dto"
	apierrors "github.com/hmizuno/conference-review-api/internal/errors"
	"github.com/hmizuno/conference-review-api/internal/middleware"
	"github.com/hmizuno/conference-review-api/internal/services"
)

// ReviewHandler exposes the review lifecycle.
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

type reviewRequest struct {
	Score            *int    `json:"score"`
	Confidence       *int    `json:"confidence"`
	Summary          *string `json:"summary"`
	Strengths        *string `json:"strengths"`
	Weaknesses       *string `json:"weaknesses"`
	CommentsToAuthor *string `json:"comments_to_author"`
	CommentsToChair  *string `json:"comments_to_chair"`
}

func (r reviewRequest) toPayload() services.ReviewPayload {
	return services.ReviewPayload{
		Score:            r.Score,
		Confidence:       r.Confidence,
		Summary:          r.Summary,
		Strengths:        r.Strengths,
		Weaknesses:       r.Weaknesses,
		CommentsToAuthor: r.CommentsToAuthor,
		CommentsToChair:  r.CommentsToChair,
	}
}

// SaveDraft merges a partial payload into the assignment's review.
func (h *ReviewHandler) SaveDraft(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	assignmentID, ok := parseIDParam(c, "assignment_id")
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	review, err := h.reviewService.SaveDraft(assignmentID, actor, req.toPayload())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// SubmitReview finalizes the assignment's review.
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	assignmentID, ok := parseIDParam(c, "assignment_id")
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	review, err := h.reviewService.SubmitReview(assignmentID, actor, req.toPayload())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// ListForPaper returns a paper's reviews, anonymized for non-privileged
// callers.
func (h *ReviewHandler) ListForPaper(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	paperID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reviews, privileged, err := h.reviewService.GetReviewsForPaper(paperID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": dto.ToReviewViews(reviews, privileged)})
}
