package repository

import (
	"github.com/hmizuno/conference-review-api/internal/models"
	"gorm.io/gorm"
)

// GormReviewRepository is a GORM implementation of ReviewRepository
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByAssignmentID finds the review belonging to an assignment
func (r *GormReviewRepository) FindByAssignmentID(assignmentID uint64) (*models.Review, error) {
	var review models.Review
	if err := r.db.Where("assignment_id = ?", assignmentID).
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// SaveWithStatus writes the review and moves the assignment to the given
// status in one transaction. The status update only touches rows that are
// not yet SUBMITTED, so a concurrent late draft cannot demote a
// submission; the assignment row is re-checked inside the transaction.
func (r *GormReviewRepository) SaveWithStatus(review *models.Review, assignmentID uint64, status models.AssignmentStatus) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current models.ReviewAssignment
		if err := tx.First(&current, assignmentID).Error; err != nil {
			return err
		}
		if current.Status == models.AssignmentSubmitted && status != models.AssignmentSubmitted {
			return gorm.ErrInvalidData
		}

		if err := tx.Save(review).Error; err != nil {
			return err
		}

		return tx.Model(&models.ReviewAssignment{}).
			Where("id = ? AND status <> ?", assignmentID, models.AssignmentSubmitted).
			Update("status", status).Error
	})
}

// ListByPaper lists reviews of a paper with reviewer identities
// preloaded, ordered by assignment ID so pseudonym numbering is stable
func (r *GormReviewRepository) ListByPaper(paperID uint64) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.Preload("Assignment").Preload("Assignment.Reviewer").
		Joins("JOIN review_assignments ON review_assignments.id = reviews.assignment_id").
		Where("review_assignments.paper_id = ?", paperID).
		Where("review_assignments.deleted_at IS NULL").
		Order("reviews.assignment_id ASC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
