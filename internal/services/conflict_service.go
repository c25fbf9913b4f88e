package services

import (
	"errors"
	"fmt"

	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/repository"
	"gorm.io/gorm"
)

var ErrConflictNotFound = errors.New("no conflict declared for this paper")

// ConflictService manages explicit conflict-of-interest declarations.
// Declarations are independent of CONFLICT bids; the assignment engine
// checks both.
type ConflictService struct {
	paperRepo  repository.PaperRepository
	bidRepo    repository.BidRepository
	membership *MembershipService
}

// NewConflictService creates a new ConflictService.
func NewConflictService(paperRepo repository.PaperRepository, bidRepo repository.BidRepository, membership *MembershipService) *ConflictService {
	return &ConflictService{
		paperRepo:  paperRepo,
		bidRepo:    bidRepo,
		membership: membership,
	}
}

// MarkConflict declares a conflict of interest. Declaring the same
// conflict twice is a no-op.
func (s *ConflictService) MarkConflict(paperID, reviewerID uint64) error {
	paper, err := s.paperRepo.FindByID(paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaperNotFound
		}
		return fmt.Errorf("failed to find paper: %w", err)
	}

	isReviewer, err := s.membership.HasRole(paper.ConferenceID, reviewerID, models.RoleReviewer)
	if err != nil {
		return err
	}
	if !isReviewer {
		return ErrNotReviewer
	}

	conflict := &models.ReviewerConflict{
		PaperID:    paperID,
		ReviewerID: reviewerID,
	}
	if err := s.bidRepo.DeclareConflict(conflict); err != nil {
		return fmt.Errorf("failed to declare conflict: %w", err)
	}

	return nil
}

// UnmarkConflict removes the reviewer's declaration for a paper.
func (s *ConflictService) UnmarkConflict(paperID, reviewerID uint64) error {
	removed, err := s.bidRepo.RemoveConflict(paperID, reviewerID)
	if err != nil {
		return fmt.Errorf("failed to remove conflict: %w", err)
	}
	if !removed {
		return ErrConflictNotFound
	}
	return nil
}

// ListConflicts returns declared conflicts for a paper. Restricted to
// chairs of the paper's conference and admins.
func (s *ConflictService) ListConflicts(paperID uint64, actor *models.User) ([]models.ReviewerConflict, error) {
	paper, err := s.paperRepo.FindByID(paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to find paper: %w", err)
	}

	allowed, err := s.membership.IsChairOrAdmin(paper.ConferenceID, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotChairOrAdmin
	}

	conflicts, err := s.bidRepo.ListConflictsByPaper(paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}
	return conflicts, nil
}
