package services

import (
	"errors"
	"fmt"

	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrConferenceNotFound = errors.New("conference not found")
	ErrNotChairOrAdmin    = errors.New("only conference chairs or admins can perform this action")
	ErrInvalidRole        = errors.New("invalid conference role")
	ErrMembershipExists   = errors.New("user already holds this role in the conference")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrLastChair          = errors.New("a conference must retain at least one chair")
	ErrNotReviewer        = errors.New("user is not a reviewer in this conference")
)

// MembershipService resolves role sets and manages role grants. Roles
// are additive rows, so every check here is a set-membership check.
type MembershipService struct {
	confRepo repository.ConferenceRepository
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(confRepo repository.ConferenceRepository) *MembershipService {
	return &MembershipService{confRepo: confRepo}
}

// RoleSet returns the set of roles a user holds in a conference.
func (s *MembershipService) RoleSet(conferenceID, userID uint64) (map[models.ConferenceRole]bool, error) {
	memberships, err := s.confRepo.FindMemberships(conferenceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memberships: %w", err)
	}

	roles := make(map[models.ConferenceRole]bool, len(memberships))
	for _, m := range memberships {
		roles[m.Role] = true
	}
	return roles, nil
}

// HasRole reports whether the user holds any of the given roles in the
// conference.
func (s *MembershipService) HasRole(conferenceID, userID uint64, roles ...models.ConferenceRole) (bool, error) {
	roleSet, err := s.RoleSet(conferenceID, userID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if roleSet[role] {
			return true, nil
		}
	}
	return false, nil
}

// IsChairOrAdmin reports whether the actor may use chair-level
// operations on the conference.
func (s *MembershipService) IsChairOrAdmin(conferenceID uint64, actor *models.User) (bool, error) {
	if actor.IsAdmin {
		return true, nil
	}
	return s.HasRole(conferenceID, actor.ID, models.RoleChair)
}

// AddMemberInput represents a role grant request.
type AddMemberInput struct {
	ConferenceID uint64
	UserID       uint64
	Role         models.ConferenceRole
	Actor        *models.User
}

// AddMember grants one role to a user within a conference.
func (s *MembershipService) AddMember(input AddMemberInput) (*models.ConferenceMembership, error) {
	switch input.Role {
	case models.RoleChair, models.RoleReviewer, models.RoleAuthor, models.RoleMetaReviewer:
	default:
		return nil, ErrInvalidRole
	}

	if _, err := s.confRepo.FindByID(input.ConferenceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConferenceNotFound
		}
		return nil, fmt.Errorf("failed to find conference: %w", err)
	}

	allowed, err := s.IsChairOrAdmin(input.ConferenceID, input.Actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotChairOrAdmin
	}

	existing, err := s.confRepo.FindMemberships(input.ConferenceID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memberships: %w", err)
	}
	for _, m := range existing {
		if m.Role == input.Role {
			return nil, ErrMembershipExists
		}
	}

	member := &models.ConferenceMembership{
		ConferenceID: input.ConferenceID,
		UserID:       input.UserID,
		Role:         input.Role,
	}
	if err := s.confRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// RemoveMember revokes one role grant. Removing the last chair of a
// conference is rejected.
func (s *MembershipService) RemoveMember(conferenceID, userID uint64, role models.ConferenceRole, actor *models.User) error {
	allowed, err := s.IsChairOrAdmin(conferenceID, actor)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrNotChairOrAdmin
	}

	if role == models.RoleChair {
		chairs, err := s.confRepo.CountChairs(conferenceID)
		if err != nil {
			return fmt.Errorf("failed to count chairs: %w", err)
		}
		if chairs <= 1 {
			return ErrLastChair
		}
	}

	if err := s.confRepo.RemoveMember(conferenceID, userID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// ListMembers lists all role grants of a conference.
func (s *MembershipService) ListMembers(conferenceID uint64, actor *models.User) ([]models.ConferenceMembership, error) {
	if _, err := s.confRepo.FindByID(conferenceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConferenceNotFound
		}
		return nil, fmt.Errorf("failed to find conference: %w", err)
	}

	allowed, err := s.IsChairOrAdmin(conferenceID, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotChairOrAdmin
	}

	members, err := s.confRepo.ListMembers(conferenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}
