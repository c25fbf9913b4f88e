package services

import (
	"errors"
	"fmt"

	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/repository"
	"github.com/hmizuno/conference-review-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrPaperNotFound = errors.New("paper not found")
	ErrInvalidBid    = errors.New("bid must be one of YES, MAYBE, NO, CONFLICT")
)

// BiddingService records reviewer interest per paper. Bids feed the
// assignment engine's scoring and are freely mutable by the reviewer.
type BiddingService struct {
	paperRepo  repository.PaperRepository
	bidRepo    repository.BidRepository
	membership *MembershipService
}

// NewBiddingService creates a new BiddingService.
func NewBiddingService(paperRepo repository.PaperRepository, bidRepo repository.BidRepository, membership *MembershipService) *BiddingService {
	return &BiddingService{
		paperRepo:  paperRepo,
		bidRepo:    bidRepo,
		membership: membership,
	}
}

// SubmitBid upserts the reviewer's bid for a paper. Repeated identical
// submissions are idempotent.
func (s *BiddingService) SubmitBid(paperID, reviewerID uint64, bid models.BidValue) (*models.ReviewerBid, error) {
	if !models.ValidBidValue(bid) {
		return nil, ErrInvalidBid
	}

	paper, err := s.paperRepo.FindByID(paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to find paper: %w", err)
	}

	isReviewer, err := s.membership.HasRole(paper.ConferenceID, reviewerID, models.RoleReviewer)
	if err != nil {
		return nil, err
	}
	if !isReviewer {
		return nil, ErrNotReviewer
	}

	row := &models.ReviewerBid{
		PaperID:    paperID,
		ReviewerID: reviewerID,
		Bid:        bid,
	}
	if err := s.bidRepo.UpsertBid(row); err != nil {
		return nil, fmt.Errorf("failed to save bid: %w", err)
	}

	return row, nil
}

// BiddingPaper is a conference paper annotated with the caller's own
// current bid, or nil when none is recorded.
type BiddingPaper struct {
	Paper models.Paper
	Bid   *models.BidValue
}

// PapersForBidding returns one page of a conference's papers with the
// calling reviewer's bids attached, plus the total paper count.
func (s *BiddingService) PapersForBidding(conferenceID, reviewerID uint64, params utils.PaginationParams) ([]BiddingPaper, int64, error) {
	isReviewer, err := s.membership.HasRole(conferenceID, reviewerID, models.RoleReviewer)
	if err != nil {
		return nil, 0, err
	}
	if !isReviewer {
		return nil, 0, ErrNotReviewer
	}

	papers, total, err := s.paperRepo.ListByConferencePage(conferenceID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list papers: %w", err)
	}

	bids, err := s.bidRepo.ListBidsByReviewer(conferenceID, reviewerID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bids: %w", err)
	}

	bidByPaper := make(map[uint64]models.BidValue, len(bids))
	for _, b := range bids {
		bidByPaper[b.PaperID] = b.Bid
	}

	result := make([]BiddingPaper, len(papers))
	for i, paper := range papers {
		result[i] = BiddingPaper{Paper: paper}
		if bid, ok := bidByPaper[paper.ID]; ok {
			value := bid
			result[i].Bid = &value
		}
	}

	return result, total, nil
}
