package models

import (
	"time"

	"gorm.io/gorm"
)

type Conference struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Members []ConferenceMembership `gorm:"foreignKey:ConferenceID" json:"members,omitempty"`
	Tracks  []Track                `gorm:"foreignKey:ConferenceID" json:"tracks,omitempty"`
	Papers  []Paper                `gorm:"foreignKey:ConferenceID" json:"papers,omitempty"`
}

type Track struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	ConferenceID uint64    `gorm:"not null;index" json:"conference_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Conference Conference `gorm:"foreignKey:ConferenceID" json:"conference,omitempty"`
}
