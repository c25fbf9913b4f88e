package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/hmizuno/conference-review-api/internal/errors"
	"github.com/hmizuno/conference-review-api/internal/middleware"
	"github.com/hmizuno/conference-review-api/internal/services"
)

// DecisionHandler records accept/reject decisions.
type DecisionHandler struct {
	decisionService *services.DecisionService
}

// NewDecisionHandler creates a new DecisionHandler.
func NewDecisionHandler(decisionService *services.DecisionService) *DecisionHandler {
	return &DecisionHandler{
		decisionService: decisionService,
	}
}

// RecordDecision stores the verdict for a paper.
func (h *DecisionHandler) RecordDecision(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	paperID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type DecisionRequest struct {
		Verdict string `json:"verdict" binding:"required"`
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	decision, err := h.decisionService.RecordDecision(paperID, req.Verdict, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, decision)
}
