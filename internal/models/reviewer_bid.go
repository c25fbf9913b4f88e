package models

import "time"

type BidValue string

const (
	BidYes      BidValue = "YES"
	BidMaybe    BidValue = "MAYBE"
	BidNo       BidValue = "NO"
	BidConflict BidValue = "CONFLICT"
)

// ValidBidValue reports whether v is one of the four accepted bid values.
func ValidBidValue(v BidValue) bool {
	switch v {
	case BidYes, BidMaybe, BidNo, BidConflict:
		return true
	}
	return false
}

// ReviewerBid records a reviewer's stated interest in reviewing a paper.
// At most one current bid exists per (paper, reviewer) pair; repeated
// submissions upsert the value.
type ReviewerBid struct {
	PaperID    uint64    `gorm:"primarykey" json:"paper_id"`
	ReviewerID uint64    `gorm:"primarykey" json:"reviewer_id"`
	Bid        BidValue  `gorm:"type:varchar(10);not null" json:"bid"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Paper    Paper `gorm:"foreignKey:PaperID" json:"paper,omitempty"`
	Reviewer User  `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// ReviewerConflict is an explicit, bid-independent conflict-of-interest
// declaration. It is checked separately from a CONFLICT bid; either one
// excludes the reviewer from auto-assignment.
type ReviewerConflict struct {
	PaperID    uint64    `gorm:"primarykey" json:"paper_id"`
	ReviewerID uint64    `gorm:"primarykey" json:"reviewer_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Paper    Paper `gorm:"foreignKey:PaperID" json:"paper,omitempty"`
	Reviewer User  `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}
