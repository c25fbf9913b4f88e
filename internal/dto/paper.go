package dto

import (
	"time"

	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/services"
)

// BiddingPaperDTO is a paper annotated with the caller's current bid
type BiddingPaperDTO struct {
	ID        uint64             `json:"id"`
	Title     string             `json:"title"`
	Abstract  string             `json:"abstract"`
	Status    models.PaperStatus `json:"status"`
	TrackID   *uint64            `json:"track_id"`
	CreatedAt time.Time          `json:"created_at"`
	MyBid     *models.BidValue   `json:"my_bid"`
}

// ToBiddingPaperDTOs converts the bidding service result for the API
func ToBiddingPaperDTOs(papers []services.BiddingPaper) []BiddingPaperDTO {
	dtos := make([]BiddingPaperDTO, len(papers))
	for i, p := range papers {
		dtos[i] = BiddingPaperDTO{
			ID:        p.Paper.ID,
			Title:     p.Paper.Title,
			Abstract:  p.Paper.Abstract,
			Status:    p.Paper.Status,
			TrackID:   p.Paper.TrackID,
			CreatedAt: p.Paper.CreatedAt,
			MyBid:     p.Bid,
		}
	}
	return dtos
}

// ConflictDTO represents a declared conflict in API responses
type ConflictDTO struct {
	PaperID    uint64   `json:"paper_id"`
	ReviewerID uint64   `json:"reviewer_id"`
	Reviewer   *UserDTO `json:"reviewer,omitempty"`
}

// ToConflictDTOs converts ReviewerConflict models for the API
func ToConflictDTOs(conflicts []models.ReviewerConflict) []ConflictDTO {
	dtos := make([]ConflictDTO, len(conflicts))
	for i, c := range conflicts {
		dtos[i] = ConflictDTO{
			PaperID:    c.PaperID,
			ReviewerID: c.ReviewerID,
		}
		if c.Reviewer.ID != 0 {
			reviewer := ToUserDTO(c.Reviewer)
			dtos[i].Reviewer = &reviewer
		}
	}
	return dtos
}
