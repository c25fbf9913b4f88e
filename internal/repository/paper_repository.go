package repository

import (
	"errors"

	"github.com/hmizuno/conference-review-api/internal/database"
	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/utils"
	"gorm.io/gorm"
)

// GormPaperRepository is a GORM implementation of PaperRepository
type GormPaperRepository struct {
	db *gorm.DB
}

// NewPaperRepository creates a new PaperRepository
func NewPaperRepository(db *gorm.DB) PaperRepository {
	return &GormPaperRepository{db: db}
}

// Create creates a new paper with its author rows
func (r *GormPaperRepository) Create(paper *models.Paper) error {
	return r.db.Create(paper).Error
}

// FindByID finds a paper by ID with optional preloading
func (r *GormPaperRepository) FindByID(id uint64, preload ...string) (*models.Paper, error) {
	var paper models.Paper
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&paper, id).Error; err != nil {
		return nil, err
	}

	return &paper, nil
}

// ListByConference lists papers with authors and assignments preloaded.
// Ordered by ID so repeated engine runs over identical state walk the
// papers in the same order.
func (r *GormPaperRepository) ListByConference(conferenceID uint64) ([]models.Paper, error) {
	var papers []models.Paper
	if err := r.db.Preload("Authors").Preload("Assignments").
		Where("conference_id = ?", conferenceID).
		Order("papers.id ASC").
		Find(&papers).Error; err != nil {
		return nil, err
	}
	return papers, nil
}

// ListByConferencePage lists one page of a conference's papers and
// returns the total count
func (r *GormPaperRepository) ListByConferencePage(conferenceID uint64, params utils.PaginationParams) ([]models.Paper, int64, error) {
	base := r.db.Model(&models.Paper{}).Where("conference_id = ?", conferenceID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var papers []models.Paper
	if err := r.db.Where("conference_id = ?", conferenceID).
		Order("papers.id ASC").
		Scopes(database.Paginate(params)).
		Find(&papers).Error; err != nil {
		return nil, 0, err
	}
	return papers, total, nil
}

// AuthorIDs returns the user IDs of a paper's authors
func (r *GormPaperRepository) AuthorIDs(paperID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.PaperAuthor{}).
		Where("paper_id = ?", paperID).
		Order("position ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

// TransitionStatus updates the paper status only when the paper is
// currently in the from status
func (r *GormPaperRepository) TransitionStatus(paperID uint64, from, to models.PaperStatus) error {
	return r.db.Model(&models.Paper{}).
		Where("id = ? AND status = ?", paperID, from).
		Update("status", to).Error
}

// HasDecision reports whether a decision has been recorded for the paper
func (r *GormPaperRepository) HasDecision(paperID uint64) (bool, error) {
	var decision models.Decision
	err := r.db.Where("paper_id = ?", paperID).First(&decision).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateDecision records a decision for a paper
func (r *GormPaperRepository) CreateDecision(decision *models.Decision) error {
	return r.db.Create(decision).Error
}
