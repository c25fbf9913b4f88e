package repository

import (
	"github.com/hmizuno/conference-review-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBidRepository is a GORM implementation of BidRepository
type GormBidRepository struct {
	db *gorm.DB
}

// NewBidRepository creates a new BidRepository
func NewBidRepository(db *gorm.DB) BidRepository {
	return &GormBidRepository{db: db}
}

// UpsertBid creates or replaces the reviewer's bid for a paper
func (r *GormBidRepository) UpsertBid(bid *models.ReviewerBid) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "paper_id"}, {Name: "reviewer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"bid", "updated_at"}),
		}).
		Create(bid).Error
}

// FindBid finds the current bid for a (paper, reviewer) pair
func (r *GormBidRepository) FindBid(paperID, reviewerID uint64) (*models.ReviewerBid, error) {
	var bid models.ReviewerBid
	if err := r.db.Where("paper_id = ? AND reviewer_id = ?", paperID, reviewerID).
		First(&bid).Error; err != nil {
		return nil, err
	}
	return &bid, nil
}

// ListBidsByConference lists all bids on a conference's papers
func (r *GormBidRepository) ListBidsByConference(conferenceID uint64) ([]models.ReviewerBid, error) {
	var bids []models.ReviewerBid
	if err := r.db.
		Joins("JOIN papers ON papers.id = reviewer_bids.paper_id").
		Where("papers.conference_id = ?", conferenceID).
		Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

// ListBidsByReviewer lists one reviewer's bids within a conference
func (r *GormBidRepository) ListBidsByReviewer(conferenceID, reviewerID uint64) ([]models.ReviewerBid, error) {
	var bids []models.ReviewerBid
	if err := r.db.
		Joins("JOIN papers ON papers.id = reviewer_bids.paper_id").
		Where("papers.conference_id = ? AND reviewer_bids.reviewer_id = ?", conferenceID, reviewerID).
		Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

// DeclareConflict records a conflict declaration; a second declaration
// for the same pair is a no-op rather than a duplicate
func (r *GormBidRepository) DeclareConflict(conflict *models.ReviewerConflict) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "paper_id"}, {Name: "reviewer_id"}},
			DoNothing: true,
		}).
		Create(conflict).Error
}

// RemoveConflict deletes a declaration and reports whether one existed
func (r *GormBidRepository) RemoveConflict(paperID, reviewerID uint64) (bool, error) {
	result := r.db.Where("paper_id = ? AND reviewer_id = ?", paperID, reviewerID).
		Delete(&models.ReviewerConflict{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListConflictsByPaper lists declared conflicts for a paper
func (r *GormBidRepository) ListConflictsByPaper(paperID uint64) ([]models.ReviewerConflict, error) {
	var conflicts []models.ReviewerConflict
	if err := r.db.Preload("Reviewer").
		Where("paper_id = ?", paperID).
		Find(&conflicts).Error; err != nil {
		return nil, err
	}
	return conflicts, nil
}

// ListConflictsByConference lists declared conflicts across a conference
func (r *GormBidRepository) ListConflictsByConference(conferenceID uint64) ([]models.ReviewerConflict, error) {
	var conflicts []models.ReviewerConflict
	if err := r.db.
		Joins("JOIN papers ON papers.id = reviewer_conflicts.paper_id").
		Where("papers.conference_id = ?", conferenceID).
		Find(&conflicts).Error; err != nil {
		return nil, err
	}
	return conflicts, nil
}
