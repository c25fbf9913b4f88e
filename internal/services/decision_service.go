package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidVerdict = errors.New("verdict must be accept or reject")
	ErrAlreadyDecided = errors.New("a decision has already been recorded for this paper")
)

// DecisionService records accept/reject decisions. A decision unlocks
// review visibility for the paper's authors.
type DecisionService struct {
	paperRepo  repository.PaperRepository
	membership *MembershipService
	notifier   *NotificationService
}

// NewDecisionService creates a new DecisionService.
func NewDecisionService(paperRepo repository.PaperRepository, membership *MembershipService, notifier *NotificationService) *DecisionService {
	return &DecisionService{
		paperRepo:  paperRepo,
		membership: membership,
		notifier:   notifier,
	}
}

// RecordDecision stores the verdict and moves the paper out of review.
func (s *DecisionService) RecordDecision(paperID uint64, verdict string, actor *models.User) (*models.Decision, error) {
	if verdict != "accept" && verdict != "reject" {
		return nil, ErrInvalidVerdict
	}

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

	decided, err := s.paperRepo.HasDecision(paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to check decision: %w", err)
	}
	if decided {
		return nil, ErrAlreadyDecided
	}

	decision := &models.Decision{
		PaperID:   paperID,
		Verdict:   verdict,
		DecidedBy: actor.ID,
		DecidedAt: time.Now(),
	}
	if err := s.paperRepo.CreateDecision(decision); err != nil {
		return nil, fmt.Errorf("failed to record decision: %w", err)
	}

	target := models.PaperStatusAccepted
	if verdict == "reject" {
		target = models.PaperStatusRejected
	}
	if err := s.paperRepo.TransitionStatus(paperID, models.PaperStatusUnderReview, target); err != nil {
		return nil, fmt.Errorf("failed to update paper status: %w", err)
	}

	if s.notifier != nil {
		go s.notifier.NotifyDecision(paper, verdict)
	}

	return decision, nil
}
