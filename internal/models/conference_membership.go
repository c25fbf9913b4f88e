package models

import "time"

type ConferenceRole string

const (
	RoleChair        ConferenceRole = "chair"
	RoleReviewer     ConferenceRole = "reviewer"
	RoleAuthor       ConferenceRole = "author"
	RoleMetaReviewer ConferenceRole = "meta_reviewer"
)

// ConferenceMembership grants one role to one user within one conference.
// A user may hold several rows for the same conference with different
// roles; there is no primary-role column and role checks are always
// set-membership checks over a user's rows.
type ConferenceMembership struct {
	ConferenceID uint64         `gorm:"primarykey" json:"conference_id"`
	UserID       uint64         `gorm:"primarykey" json:"user_id"`
	Role         ConferenceRole `gorm:"primarykey;type:varchar(20)" json:"role"`
	JoinedAt     time.Time      `json:"joined_at"`

	// Relations
	Conference Conference `gorm:"foreignKey:ConferenceID" json:"conference,omitempty"`
	User       User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
