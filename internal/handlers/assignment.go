package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hmizuno/conference-review-api/internal/dto"
	apierrors "github.com/hmizuno/conference-review-api/internal/errors"
	"github.com/hmizuno/conference-review-api/internal/middleware"
	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/services"
)

// AssignmentHandler exposes the assignment engine and individual
// assignment management.
type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
	}
}

// AutoAssign runs the matching engine over a conference.
func (h *AssignmentHandler) AutoAssign(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type AutoAssignRequest struct {
		ConferenceID            uint64 `json:"conference_id" binding:"required"`
		TargetReviewersPerPaper int    `json:"target_reviewers_per_paper"`
	}

	var req AutoAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	report, err := h.assignmentService.AutoAssign(services.AutoAssignInput{
		ConferenceID: req.ConferenceID,
		Target:       req.TargetReviewersPerPaper,
		Actor:        actor,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ManualAssign creates a single assignment with the engine's exclusion
// checks applied.
func (h *AssignmentHandler) ManualAssign(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type ManualAssignRequest struct {
		PaperID    uint64     `json:"paper_id" binding:"required"`
		ReviewerID uint64     `json:"reviewer_id" binding:"required"`
		DueDate    *time.Time `json:"due_date"`
	}

	var req ManualAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	assignment, err := h.assignmentService.ManualAssign(services.ManualAssignInput{
		PaperID:    req.PaperID,
		ReviewerID: req.ReviewerID,
		DueDate:    req.DueDate,
		Actor:      actor,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAssignmentDTO(*assignment))
}

// DeleteAssignment removes an assignment unless its review was submitted.
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	assignmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.assignmentService.DeleteAssignment(assignmentID, actor); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Assignment deleted"})
}

// UpdateStatus sets the lifecycle status of an assignment directly.
func (h *AssignmentHandler) UpdateStatus(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	assignmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status models.AssignmentStatus `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	assignment, err := h.assignmentService.UpdateStatus(assignmentID, req.Status, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// Stats returns the chair-facing aggregation for a conference.
func (h *AssignmentHandler) Stats(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	conferenceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.assignmentService.Stats(conferenceID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
