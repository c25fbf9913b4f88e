package models

import "time"

const (
	MinReviewScore      = 1
	MaxReviewScore      = 10
	MinReviewConfidence = 1
	MaxReviewConfidence = 5
)

// Review holds the content of a single review. It is created lazily on
// the first draft save and is one-to-one with its assignment. SubmittedAt
// stays nil until the reviewer submits.
type Review struct {
	ID               uint64     `gorm:"primarykey" json:"id"`
	AssignmentID     uint64     `gorm:"uniqueIndex;not null" json:"assignment_id"`
	Score            *int       `json:"score"`
	Confidence       *int       `json:"confidence"`
	Summary          string     `gorm:"type:text" json:"summary"`
	Strengths        string     `gorm:"type:text" json:"strengths"`
	Weaknesses       string     `gorm:"type:text" json:"weaknesses"`
	CommentsToAuthor string     `gorm:"type:text" json:"comments_to_author"`
	CommentsToChair  string     `gorm:"type:text" json:"comments_to_chair"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Relations
	Assignment ReviewAssignment `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
}
