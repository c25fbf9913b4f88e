package repository

import (
	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// ConferenceRepository defines the interface for conference and
// membership data access
type ConferenceRepository interface {
	// FindByID finds a conference by ID
	FindByID(id uint64) (*models.Conference, error)

	// AddMember adds a membership row (one role grant)
	AddMember(member *models.ConferenceMembership) error

	// RemoveMember removes a single role grant
	RemoveMember(conferenceID, userID uint64, role models.ConferenceRole) error

	// FindMemberships returns all role rows a user holds in a conference
	FindMemberships(conferenceID, userID uint64) ([]models.ConferenceMembership, error)

	// ListMembers lists all membership rows of a conference
	ListMembers(conferenceID uint64) ([]models.ConferenceMembership, error)

	// ListMembersByRoles lists membership rows holding any of the given roles
	ListMembersByRoles(conferenceID uint64, roles []models.ConferenceRole) ([]models.ConferenceMembership, error)

	// CountChairs counts chair role rows for a conference
	CountChairs(conferenceID uint64) (int64, error)
}

// PaperRepository defines the interface for paper data access
type PaperRepository interface {
	// Create creates a new paper with its author rows
	Create(paper *models.Paper) error

	// FindByID finds a paper by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Paper, error)

	// ListByConference lists papers of a conference with authors and
	// assignments preloaded, ordered by ID for deterministic processing
	ListByConference(conferenceID uint64) ([]models.Paper, error)

	// ListByConferencePage lists one page of a conference's papers and
	// returns the total count
	ListByConferencePage(conferenceID uint64, params utils.PaginationParams) ([]models.Paper, int64, error)

	// AuthorIDs returns the user IDs of a paper's authors
	AuthorIDs(paperID uint64) ([]uint64, error)

	// TransitionStatus updates the paper status only when the paper is
	// currently in the from status; no-op otherwise
	TransitionStatus(paperID uint64, from, to models.PaperStatus) error

	// HasDecision reports whether a decision has been recorded
	HasDecision(paperID uint64) (bool, error)

	// CreateDecision records a decision for a paper
	CreateDecision(decision *models.Decision) error
}

// BidRepository defines the interface for bid and declared-conflict
// data access
type BidRepository interface {
	// UpsertBid creates or replaces the reviewer's bid for a paper
	UpsertBid(bid *models.ReviewerBid) error

	// FindBid finds the current bid for a (paper, reviewer) pair
	FindBid(paperID, reviewerID uint64) (*models.ReviewerBid, error)

	// ListBidsByConference lists all bids on a conference's papers
	ListBidsByConference(conferenceID uint64) ([]models.ReviewerBid, error)

	// ListBidsByReviewer lists one reviewer's bids within a conference
	ListBidsByReviewer(conferenceID, reviewerID uint64) ([]models.ReviewerBid, error)

	// DeclareConflict records a conflict declaration; declaring twice is
	// a no-op
	DeclareConflict(conflict *models.ReviewerConflict) error

	// RemoveConflict deletes a declaration and reports whether one existed
	RemoveConflict(paperID, reviewerID uint64) (bool, error)

	// ListConflictsByPaper lists declared conflicts for a paper
	ListConflictsByPaper(paperID uint64) ([]models.ReviewerConflict, error)

	// ListConflictsByConference lists declared conflicts across a conference
	ListConflictsByConference(conferenceID uint64) ([]models.ReviewerConflict, error)
}

// AssignmentRepository defines the interface for review assignment
// data access
type AssignmentRepository interface {
	// Create creates a single assignment
	Create(assignment *models.ReviewAssignment) error

	// CreateBatch persists a set of assignments atomically; on failure
	// none of the batch is retained
	CreateBatch(assignments []models.ReviewAssignment) error

	// FindByID finds an assignment by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.ReviewAssignment, error)

	// FindPair finds the assignment for a (paper, reviewer) pair
	FindPair(paperID, reviewerID uint64) (*models.ReviewAssignment, error)

	// ListByPaper lists assignments of a paper
	ListByPaper(paperID uint64) ([]models.ReviewAssignment, error)

	// LoadCounts returns each reviewer's assignment count across the
	// whole conference
	LoadCounts(conferenceID uint64) (map[uint64]int, error)

	// UpdateStatus sets the assignment status unconditionally
	UpdateStatus(id uint64, status models.AssignmentStatus) error

	// Delete removes an assignment
	Delete(id uint64) error

	// PaperStats aggregates per-paper assignment counts for a conference
	PaperStats(conferenceID uint64) ([]PaperStatsRow, error)

	// ReviewerStats aggregates per-reviewer load and completion counts
	ReviewerStats(conferenceID uint64) ([]ReviewerStatsRow, error)
}

// PaperStatsRow is one paper's aggregate in the stats view
type PaperStatsRow struct {
	PaperID   uint64 `json:"paper_id"`
	Title     string `json:"title"`
	Assigned  int64  `json:"assigned"`
	Submitted int64  `json:"submitted"`
}

// ReviewerStatsRow is one reviewer's aggregate in the stats view
type ReviewerStatsRow struct {
	ReviewerID uint64 `json:"reviewer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Load       int64  `gorm:"column:load_count" json:"load"`
	Submitted  int64  `json:"submitted"`
}

// ReviewRepository defines the interface for review content data access
type ReviewRepository interface {
	// FindByAssignmentID finds the review belonging to an assignment
	FindByAssignmentID(assignmentID uint64) (*models.Review, error)

	// SaveWithStatus writes the review and moves the assignment to the
	// given status in one transaction. The status update is conditional
	// on the assignment not being SUBMITTED, so a late draft can never
	// overwrite a submitted review.
	SaveWithStatus(review *models.Review, assignmentID uint64, status models.AssignmentStatus) error

	// ListByPaper lists reviews of a paper with reviewer identities
	// preloaded, ordered by assignment ID
	ListByPaper(paperID uint64) ([]models.Review, error)
}
