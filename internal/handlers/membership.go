package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hmizuno/conference-review-api/internal/dto"
	apierrors "github.com/hmizuno/conference-review-api/internal/errors"
	"github.com/hmizuno/conference-review-api/internal/middleware"
	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/services"
)

// MembershipHandler manages conference role grants.
type MembershipHandler struct {
	membershipService *services.MembershipService
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(membershipService *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
	}
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// AddMember grants a role to a user within a conference.
func (h *MembershipHandler) AddMember(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	conferenceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID uint64                `json:"user_id" binding:"required"`
		Role   models.ConferenceRole `json:"role" binding:"required"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.membershipService.AddMember(services.AddMemberInput{
		ConferenceID: conferenceID,
		UserID:       req.UserID,
		Role:         req.Role,
		Actor:        actor,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMembershipDTO(*member))
}

// RemoveMember revokes a single role grant.
func (h *MembershipHandler) RemoveMember(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	conferenceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	role := models.ConferenceRole(c.Param("role"))

	if err := h.membershipService.RemoveMember(conferenceID, userID, role, actor); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Membership removed"})
}

// ListMembers lists all role grants of a conference.
func (h *MembershipHandler) ListMembers(c *gin.Context) {
	actor, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	conferenceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	members, err := h.membershipService.ListMembers(conferenceID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	dtos := make([]dto.MembershipDTO, len(members))
	for i, m := range members {
		dtos[i] = dto.ToMembershipDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{"members": dtos})
}
