package repository

import (
	"github.com/hmizuno/conference-review-api/internal/models"
	"gorm.io/gorm"
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Create creates a single assignment
func (r *GormAssignmentRepository) Create(assignment *models.ReviewAssignment) error {
	return r.db.Create(assignment).Error
}

// CreateBatch persists a set of assignments atomically. The unique
// (paper_id, reviewer_id) index backstops the engine's in-memory
// duplicate checks: a colliding row fails the whole batch.
func (r *GormAssignmentRepository) CreateBatch(assignments []models.ReviewAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range assignments {
			if err := tx.Create(&assignments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds an assignment by ID with optional preloading
func (r *GormAssignmentRepository) FindByID(id uint64, preload ...string) (*models.ReviewAssignment, error) {
	var assignment models.ReviewAssignment
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&assignment, id).Error; err != nil {
		return nil, err
	}

	return &assignment, nil
}

// FindPair finds the assignment for a (paper, reviewer) pair
func (r *GormAssignmentRepository) FindPair(paperID, reviewerID uint64) (*models.ReviewAssignment, error) {
	var assignment models.ReviewAssignment
	if err := r.db.Where("paper_id = ? AND reviewer_id = ?", paperID, reviewerID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListByPaper lists assignments of a paper
func (r *GormAssignmentRepository) ListByPaper(paperID uint64) ([]models.ReviewAssignment, error) {
	var assignments []models.ReviewAssignment
	if err := r.db.Preload("Reviewer").
		Where("paper_id = ?", paperID).
		Order("id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// LoadCounts returns each reviewer's assignment count across the whole
// conference
func (r *GormAssignmentRepository) LoadCounts(conferenceID uint64) (map[uint64]int, error) {
	type row struct {
		ReviewerID uint64
		Count      int
	}
	var rows []row
	err := r.db.Model(&models.ReviewAssignment{}).
		Select("review_assignments.reviewer_id AS reviewer_id, COUNT(*) AS count").
		Joins("JOIN papers ON papers.id = review_assignments.paper_id").
		Where("papers.conference_id = ?", conferenceID).
		Where("review_assignments.deleted_at IS NULL").
		Group("review_assignments.reviewer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint64]int, len(rows))
	for _, row := range rows {
		counts[row.ReviewerID] = row.Count
	}
	return counts, nil
}

// UpdateStatus sets the assignment status unconditionally
func (r *GormAssignmentRepository) UpdateStatus(id uint64, status models.AssignmentStatus) error {
	return r.db.Model(&models.ReviewAssignment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes an assignment and its review
func (r *GormAssignmentRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.ReviewAssignment{}, id).Error
	})
}

// PaperStats aggregates per-paper assignment counts for a conference
func (r *GormAssignmentRepository) PaperStats(conferenceID uint64) ([]PaperStatsRow, error) {
	var rows []PaperStatsRow
	err := r.db.Model(&models.Paper{}).
		Select(`papers.id AS paper_id, papers.title AS title,
			COUNT(review_assignments.id) AS assigned,
			SUM(CASE WHEN review_assignments.status = ? THEN 1 ELSE 0 END) AS submitted`,
			models.AssignmentSubmitted).
		Joins("LEFT JOIN review_assignments ON review_assignments.paper_id = papers.id AND review_assignments.deleted_at IS NULL").
		Where("papers.conference_id = ?", conferenceID).
		Group("papers.id, papers.title").
		Order("papers.id ASC").
		Scan(&rows).Error
	return rows, err
}

// ReviewerStats aggregates per-reviewer load and completion counts
func (r *GormAssignmentRepository) ReviewerStats(conferenceID uint64) ([]ReviewerStatsRow, error) {
	var rows []ReviewerStatsRow
	err := r.db.Model(&models.ReviewAssignment{}).
		Select(`review_assignments.reviewer_id AS reviewer_id,
			users.name AS name, users.email AS email,
			COUNT(review_assignments.id) AS load_count,
			SUM(CASE WHEN review_assignments.status = ? THEN 1 ELSE 0 END) AS submitted`,
			models.AssignmentSubmitted).
		Joins("JOIN papers ON papers.id = review_assignments.paper_id").
		Joins("JOIN users ON users.id = review_assignments.reviewer_id").
		Where("papers.conference_id = ?", conferenceID).
		Where("review_assignments.deleted_at IS NULL").
		Group("review_assignments.reviewer_id, users.name, users.email").
		Order("review_assignments.reviewer_id ASC").
		Scan(&rows).Error
	return rows, err
}
