package repository

import (
	"github.com/hmizuno/conference-review-api/internal/models"
	"gorm.io/gorm"
)

// GormConferenceRepository is a GORM implementation of ConferenceRepository
type GormConferenceRepository struct {
	db *gorm.DB
}

// NewConferenceRepository creates a new ConferenceRepository
func NewConferenceRepository(db *gorm.DB) ConferenceRepository {
	return &GormConferenceRepository{db: db}
}

// FindByID finds a conference by ID
func (r *GormConferenceRepository) FindByID(id uint64) (*models.Conference, error) {
	var conf models.Conference
	if err := r.db.First(&conf, id).Error; err != nil {
		return nil, err
	}
	return &conf, nil
}

// AddMember adds a membership row
func (r *GormConferenceRepository) AddMember(member *models.ConferenceMembership) error {
	return r.db.Create(member).Error
}

// RemoveMember removes a single role grant
func (r *GormConferenceRepository) RemoveMember(conferenceID, userID uint64, role models.ConferenceRole) error {
	result := r.db.Where("conference_id = ? AND user_id = ? AND role = ?", conferenceID, userID, role).
		Delete(&models.ConferenceMembership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindMemberships returns all role rows a user holds in a conference
func (r *GormConferenceRepository) FindMemberships(conferenceID, userID uint64) ([]models.ConferenceMembership, error) {
	var memberships []models.ConferenceMembership
	if err := r.db.Where("conference_id = ? AND user_id = ?", conferenceID, userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListMembers lists all membership rows of a conference
func (r *GormConferenceRepository) ListMembers(conferenceID uint64) ([]models.ConferenceMembership, error) {
	var members []models.ConferenceMembership
	if err := r.db.Preload("User").
		Where("conference_id = ?", conferenceID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembersByRoles lists membership rows holding any of the given roles
func (r *GormConferenceRepository) ListMembersByRoles(conferenceID uint64, roles []models.ConferenceRole) ([]models.ConferenceMembership, error) {
	var members []models.ConferenceMembership
	if err := r.db.Preload("User").
		Where("conference_id = ? AND role IN ?", conferenceID, roles).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// CountChairs counts chair role rows for a conference
func (r *GormConferenceRepository) CountChairs(conferenceID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.ConferenceMembership{}).
		Where("conference_id = ? AND role = ?", conferenceID, models.RoleChair).
		Count(&count).Error
	return count, err
}
