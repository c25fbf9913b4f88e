package models

import (
	"time"

	"gorm.io/gorm"
)

type AssignmentStatus string

const (
	AssignmentNotStarted AssignmentStatus = "NOT_STARTED"
	AssignmentDraft      AssignmentStatus = "DRAFT"
	AssignmentSubmitted  AssignmentStatus = "SUBMITTED"
)

// ValidAssignmentStatus reports whether s is a known lifecycle state.
func ValidAssignmentStatus(s AssignmentStatus) bool {
	switch s {
	case AssignmentNotStarted, AssignmentDraft, AssignmentSubmitted:
		return true
	}
	return false
}

// ReviewAssignment binds one reviewer to one paper. The (paper, reviewer)
// pair is unique; the status only ever moves forward and SUBMITTED is
// terminal for non-admin actors.
type ReviewAssignment struct {
	ID         uint64           `gorm:"primarykey" json:"id"`
	PaperID    uint64           `gorm:"not null;uniqueIndex:idx_assignment_pair" json:"paper_id"`
	ReviewerID uint64           `gorm:"not null;uniqueIndex:idx_assignment_pair" json:"reviewer_id"`
	Status     AssignmentStatus `gorm:"type:varchar(20);not null;default:'NOT_STARTED'" json:"status"`
	DueDate    *time.Time       `json:"due_date"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relations
	Paper    Paper   `gorm:"foreignKey:PaperID" json:"paper,omitempty"`
	Reviewer User    `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Review   *Review `gorm:"foreignKey:AssignmentID" json:"review,omitempty"`
}
