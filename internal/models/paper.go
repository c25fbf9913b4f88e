package models

import (
	"time"

	"gorm.io/gorm"
)

type PaperStatus string

const (
	PaperStatusSubmitted   PaperStatus = "submitted"
	PaperStatusUnderReview PaperStatus = "under_review"
	PaperStatusAccepted    PaperStatus = "accepted"
	PaperStatusRejected    PaperStatus = "rejected"
	// Camera-ready follow-up states live past the decision and are
	// never touched by the assignment engine.
	PaperStatusCameraReadyPending   PaperStatus = "camera_ready_pending"
	PaperStatusCameraReadySubmitted PaperStatus = "camera_ready_submitted"
)

type Paper struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	ConferenceID uint64         `gorm:"not null;index" json:"conference_id"`
	TrackID      *uint64        `gorm:"index" json:"track_id"`
	Title        string         `gorm:"type:varchar(500);not null" json:"title"`
	Abstract     string         `gorm:"type:text" json:"abstract"`
	Status       PaperStatus    `gorm:"type:varchar(30);not null;default:'submitted'" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Conference  Conference         `gorm:"foreignKey:ConferenceID" json:"conference,omitempty"`
	Track       *Track             `gorm:"foreignKey:TrackID" json:"track,omitempty"`
	Authors     []PaperAuthor      `gorm:"foreignKey:PaperID" json:"authors,omitempty"`
	Assignments []ReviewAssignment `gorm:"foreignKey:PaperID" json:"assignments,omitempty"`
}

// PaperAuthor is an ordered authorship row. Authorship is immutable
// input to conflict exclusion once reviewing starts.
type PaperAuthor struct {
	PaperID  uint64 `gorm:"primarykey" json:"paper_id"`
	UserID   uint64 `gorm:"primarykey" json:"user_id"`
	Position int    `gorm:"not null" json:"position"`

	// Relations
	Paper Paper `gorm:"foreignKey:PaperID" json:"paper,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Decision is the chair's accept/reject record for a paper. Its
// existence is what unlocks review visibility for the paper's authors.
type Decision struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	PaperID   uint64    `gorm:"uniqueIndex;not null" json:"paper_id"`
	Verdict   string    `gorm:"type:varchar(20);not null" json:"verdict"`
	DecidedBy uint64    `gorm:"not null" json:"decided_by"`
	DecidedAt time.Time `json:"decided_at"`

	// Relations
	Paper Paper `gorm:"foreignKey:PaperID" json:"paper,omitempty"`
}
