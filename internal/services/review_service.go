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
	ErrReviewAccessDenied   = errors.New("not allowed to write this review")
	ErrSelfReview           = errors.New("authors cannot review their own paper")
	ErrScoreOutOfRange      = errors.New("score must be between 1 and 10")
	ErrConfidenceOutOfRange = errors.New("confidence must be between 1 and 5")
	ErrDeadlinePassed       = errors.New("review deadline has passed")
	ErrAlreadySubmitted     = errors.New("review has already been submitted")
	ErrReviewsHidden        = errors.New("reviews are hidden from authors until a decision is recorded")
)

// ReviewService drives the per-assignment review lifecycle:
// NOT_STARTED -> DRAFT -> SUBMITTED, monotonic, SUBMITTED terminal for
// non-admin actors.
type ReviewService struct {
	paperRepo  repository.PaperRepository
	assignRepo repository.AssignmentRepository
	reviewRepo repository.ReviewRepository
	membership *MembershipService
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	paperRepo repository.PaperRepository,
	assignRepo repository.AssignmentRepository,
	reviewRepo repository.ReviewRepository,
	membership *MembershipService,
) *ReviewService {
	return &ReviewService{
		paperRepo:  paperRepo,
		assignRepo: assignRepo,
		reviewRepo: reviewRepo,
		membership: membership,
	}
}

// ReviewPayload is a partial review update; nil fields keep their prior
// values.
type ReviewPayload struct {
	Score            *int
	Confidence       *int
	Summary          *string
	Strengths        *string
	Weaknesses       *string
	CommentsToAuthor *string
	CommentsToChair  *string
}

func (p ReviewPayload) validate() error {
	if p.Score != nil && (*p.Score < models.MinReviewScore || *p.Score > models.MaxReviewScore) {
		return ErrScoreOutOfRange
	}
	if p.Confidence != nil && (*p.Confidence < models.MinReviewConfidence || *p.Confidence > models.MaxReviewConfidence) {
		return ErrConfidenceOutOfRange
	}
	return nil
}

func (p ReviewPayload) applyTo(review *models.Review) {
	if p.Score != nil {
		review.Score = p.Score
	}
	if p.Confidence != nil {
		review.Confidence = p.Confidence
	}
	if p.Summary != nil {
		review.Summary = *p.Summary
	}
	if p.Strengths != nil {
		review.Strengths = *p.Strengths
	}
	if p.Weaknesses != nil {
		review.Weaknesses = *p.Weaknesses
	}
	if p.CommentsToAuthor != nil {
		review.CommentsToAuthor = *p.CommentsToAuthor
	}
	if p.CommentsToChair != nil {
		review.CommentsToChair = *p.CommentsToChair
	}
}

func (s *ReviewService) findAssignment(assignmentID uint64) (*models.ReviewAssignment, error) {
	assignment, err := s.assignRepo.FindByID(assignmentID, "Paper")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return assignment, nil
}

// checkWriteAccess enforces the draft-save authorization rule. The
// assignment's reviewer, a conference chair, or an admin may write, but
// never an author of the reviewed paper, chairs included.
func (s *ReviewService) checkWriteAccess(assignment *models.ReviewAssignment, actor *models.User) error {
	authorIDs, err := s.paperRepo.AuthorIDs(assignment.PaperID)
	if err != nil {
		return fmt.Errorf("failed to load authors: %w", err)
	}
	for _, authorID := range authorIDs {
		if authorID == actor.ID {
			return ErrSelfReview
		}
	}

	if actor.IsAdmin || assignment.ReviewerID == actor.ID {
		return nil
	}

	isChair, err := s.membership.HasRole(assignment.Paper.ConferenceID, actor.ID, models.RoleChair)
	if err != nil {
		return err
	}
	if !isChair {
		return ErrReviewAccessDenied
	}
	return nil
}

func (s *ReviewService) loadOrCreateReview(assignmentID uint64) (*models.Review, error) {
	review, err := s.reviewRepo.FindByAssignmentID(assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Review{AssignmentID: assignmentID}, nil
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return review, nil
}

// SaveDraft merges the payload into the assignment's review, creating
// the review row on first call, and moves the assignment to DRAFT.
// Re-callable any number of times before submission.
func (s *ReviewService) SaveDraft(assignmentID uint64, actor *models.User, payload ReviewPayload) (*models.Review, error) {
	assignment, err := s.findAssignment(assignmentID)
	if err != nil {
		return nil, err
	}

	if err := s.checkWriteAccess(assignment, actor); err != nil {
		return nil, err
	}

	if assignment.Status == models.AssignmentSubmitted && !actor.IsAdmin {
		return nil, ErrAlreadySubmitted
	}

	if err := payload.validate(); err != nil {
		return nil, err
	}

	review, err := s.loadOrCreateReview(assignmentID)
	if err != nil {
		return nil, err
	}
	payload.applyTo(review)

	status := models.AssignmentDraft
	if assignment.Status == models.AssignmentSubmitted {
		// Admin edit of a submitted review leaves the state alone.
		status = models.AssignmentSubmitted
	}

	if err := s.reviewRepo.SaveWithStatus(review, assignmentID, status); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	return review, nil
}

// SubmitReview finalizes the review. Only the assignment's reviewer may
// submit; an admin may also submit and is the only actor allowed past
// the deadline. Submitting twice is rejected.
func (s *ReviewService) SubmitReview(assignmentID uint64, actor *models.User, payload ReviewPayload) (*models.Review, error) {
	assignment, err := s.findAssignment(assignmentID)
	if err != nil {
		return nil, err
	}

	if err := s.checkWriteAccess(assignment, actor); err != nil {
		return nil, err
	}
	if assignment.ReviewerID != actor.ID && !actor.IsAdmin {
		return nil, ErrReviewAccessDenied
	}

	if assignment.Status == models.AssignmentSubmitted {
		return nil, ErrAlreadySubmitted
	}

	if err := payload.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	if assignment.DueDate != nil && now.After(*assignment.DueDate) && !actor.IsAdmin {
		return nil, ErrDeadlinePassed
	}

	review, err := s.loadOrCreateReview(assignmentID)
	if err != nil {
		return nil, err
	}
	payload.applyTo(review)
	review.SubmittedAt = &now

	if err := s.reviewRepo.SaveWithStatus(review, assignmentID, models.AssignmentSubmitted); err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	return review, nil
}

// GetReviewsForPaper returns a paper's reviews. Chairs and admins see
// the raw rows; everyone else gets the anonymized view, and authors see
// nothing at all until a decision is recorded. The second return value
// reports whether the caller may see reviewer identities.
func (s *ReviewService) GetReviewsForPaper(paperID uint64, actor *models.User) ([]models.Review, bool, error) {
	paper, err := s.paperRepo.FindByID(paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrPaperNotFound
		}
		return nil, false, fmt.Errorf("failed to find paper: %w", err)
	}

	privileged, err := s.membership.IsChairOrAdmin(paper.ConferenceID, actor)
	if err != nil {
		return nil, false, err
	}

	if !privileged {
		authorIDs, err := s.paperRepo.AuthorIDs(paperID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load authors: %w", err)
		}
		for _, authorID := range authorIDs {
			if authorID == actor.ID {
				decided, err := s.paperRepo.HasDecision(paperID)
				if err != nil {
					return nil, false, fmt.Errorf("failed to check decision: %w", err)
				}
				if !decided {
					return nil, false, ErrReviewsHidden
				}
				break
			}
		}
	}

	reviews, err := s.reviewRepo.ListByPaper(paperID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list reviews: %w", err)
	}

	return reviews, privileged, nil
}
