package dto

import (
	"time"

	"github.com/hmizuno/conference-review-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AssignmentDTO represents a review assignment in API responses
type AssignmentDTO struct {
	ID         uint64                  `json:"id"`
	PaperID    uint64                  `json:"paper_id"`
	ReviewerID uint64                  `json:"reviewer_id"`
	Status     models.AssignmentStatus `json:"status"`
	DueDate    *time.Time              `json:"due_date"`
	CreatedAt  time.Time               `json:"created_at"`
	Reviewer   *UserDTO                `json:"reviewer,omitempty"`
}

// MembershipDTO represents one role grant in API responses
type MembershipDTO struct {
	ConferenceID uint64                `json:"conference_id"`
	UserID       uint64                `json:"user_id"`
	Role         models.ConferenceRole `json:"role"`
	User         *UserDTO              `json:"user,omitempty"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// ToAssignmentDTO converts a ReviewAssignment model to AssignmentDTO
func ToAssignmentDTO(assignment models.ReviewAssignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:         assignment.ID,
		PaperID:    assignment.PaperID,
		ReviewerID: assignment.ReviewerID,
		Status:     assignment.Status,
		DueDate:    assignment.DueDate,
		CreatedAt:  assignment.CreatedAt,
	}

	// Include reviewer if preloaded
	if assignment.Reviewer.ID != 0 {
		reviewer := ToUserDTO(assignment.Reviewer)
		dto.Reviewer = &reviewer
	}

	return dto
}

// ToMembershipDTO converts a ConferenceMembership to MembershipDTO
func ToMembershipDTO(member models.ConferenceMembership) MembershipDTO {
	dto := MembershipDTO{
		ConferenceID: member.ConferenceID,
		UserID:       member.UserID,
		Role:         member.Role,
	}

	if member.User.ID != 0 {
		user := ToUserDTO(member.User)
		dto.User = &user
	}

	return dto
}
