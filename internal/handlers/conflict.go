package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hmizuno/conference-review-api/internal/dto"
	apierrors "github.com/hmizuno/conference-review-api/internal/errors"
	"github.com/hmizuno/conference-review-api/internal/middleware"
	"github.com/hmizuno/conference-review-api/internal/services"
)

// ConflictHandler exposes conflict-of-interest declarations.
type ConflictHandler struct {
	conflictService *services.ConflictService
}

// NewConflictHandler creates a new ConflictHandler.
func NewConflictHandler(conflictService *services.ConflictService) *ConflictHandler {
	return &ConflictHandler{
		conflictService: conflictService,
	}
}

type conflictRequest struct {
	PaperID uint64 `json:"paper_id" binding:"required"`
}

// MarkConflict declares a conflict for the calling reviewer.
func (h *ConflictHandler) MarkConflict(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req conflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.conflictService.MarkConflict(req.PaperID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conflict declared"})
}

// UnmarkConflict removes the calling reviewer's declaration.
func (h *ConflictHandler) UnmarkConflict(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req conflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.conflictService.UnmarkConflict(req.PaperID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conflict removed"})
}

// ListConflicts returns declared conflicts for a paper (chair/admin only).
func (h *ConflictHandler) ListConflicts(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	paperID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	conflicts, err := h.conflictService.ListConflicts(paperID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conflicts": dto.ToConflictDTOs(conflicts)})
}
