package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hmizuno/conference-review-api/internal/constants"
	"github.com/hmizuno/conference-review-api/internal/models"
	"github.com/hmizuno/conference-review-api/internal/repository"
	"github.com/hmizuno/conference-review-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrReviewerIsAuthor    = errors.New("a paper author cannot review their own paper")
	ErrReviewerConflicted  = errors.New("reviewer has a conflict of interest with this paper")
	ErrAlreadyAssigned     = errors.New("reviewer is already assigned to this paper")
	ErrAssignmentSubmitted = errors.New("a submitted assignment cannot be deleted")
	ErrInvalidStatus       = errors.New("invalid assignment status")
	ErrStatusLocked        = errors.New("a submitted assignment cannot change status")
)

// Bid scores. An eligible reviewer with no recorded bid ranks above one
// who explicitly declined.
const (
	scoreBidYes   = 3
	scoreBidMaybe = 2
	scoreNoBid    = 1
	scoreBidNo    = 0
)

const (
	skipReasonEnough      = "already has enough reviewers"
	skipReasonNoEligible  = "no eligible reviewers available"
	shortfallReasonFormat = "only %d of %d needed reviewers available"
)

// AssignmentService matches reviewers to papers and manages individual
// assignments. Auto-assignment runs are serialized per conference so
// concurrent runs cannot double-assign past the target.
type AssignmentService struct {
	confRepo   repository.ConferenceRepository
	paperRepo  repository.PaperRepository
	bidRepo    repository.BidRepository
	assignRepo repository.AssignmentRepository
	membership *MembershipService
	notifier   *NotificationService
	confLocks  *utils.KeyedMutex
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(
	confRepo repository.ConferenceRepository,
	paperRepo repository.PaperRepository,
	bidRepo repository.BidRepository,
	assignRepo repository.AssignmentRepository,
	membership *MembershipService,
	notifier *NotificationService,
) *AssignmentService {
	return &AssignmentService{
		confRepo:   confRepo,
		paperRepo:  paperRepo,
		bidRepo:    bidRepo,
		assignRepo: assignRepo,
		membership: membership,
		notifier:   notifier,
		confLocks:  utils.NewKeyedMutex(),
	}
}

// AutoAssignInput holds the parameters of one engine run.
type AutoAssignInput struct {
	ConferenceID uint64
	Target       int
	Actor        *models.User
}

// PaperOutcome reports what the engine did for one paper.
type PaperOutcome struct {
	PaperID             uint64   `json:"paper_id"`
	Title               string   `json:"title"`
	AssignedReviewerIDs []uint64 `json:"assigned_reviewer_ids"`
	Skipped             bool     `json:"skipped"`
	Reason              string   `json:"reason,omitempty"`
}

// AutoAssignReport is the chair-facing result of one engine run.
type AutoAssignReport struct {
	RunID          string         `json:"run_id"`
	ConferenceID   uint64         `json:"conference_id"`
	Target         int            `json:"target"`
	Papers         []PaperOutcome `json:"papers"`
	ReviewerLoads  map[uint64]int `json:"reviewer_loads"`
	NewAssignments int            `json:"new_assignments"`
}

// candidate is one scored entry in a paper's eligible pool.
type candidate struct {
	reviewerID uint64
	score      int
	load       int
}

// AutoAssign runs the matching engine over one conference. For each
// paper needing reviewers it builds an exclusion-filtered candidate
// pool, scores it from bids, prefers the least-loaded reviewer among
// equals, and appends assignments while feeding the updated load back
// into later papers. All new assignments persist as one batch.
func (s *AssignmentService) AutoAssign(input AutoAssignInput) (*AutoAssignReport, error) {
	s.confLocks.Lock(input.ConferenceID)
	defer s.confLocks.Unlock(input.ConferenceID)

	if _, err := s.confRepo.FindByID(input.ConferenceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConferenceNotFound
		}
		return nil, fmt.Errorf("failed to find conference: %w", err)
	}

	allowed, err := s.membership.IsChairOrAdmin(input.ConferenceID, input.Actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotChairOrAdmin
	}

	target := input.Target
	if target <= 0 {
		target = constants.DefaultReviewersPerPaper
	}

	papers, err := s.paperRepo.ListByConference(input.ConferenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load papers: %w", err)
	}

	members, err := s.confRepo.ListMembersByRoles(input.ConferenceID,
		[]models.ConferenceRole{models.RoleReviewer, models.RoleChair})
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	// A user holding both roles appears once in the pool.
	reviewerIDs := make([]uint64, 0, len(members))
	seen := make(map[uint64]bool, len(members))
	for _, m := range members {
		if !seen[m.UserID] {
			seen[m.UserID] = true
			reviewerIDs = append(reviewerIDs, m.UserID)
		}
	}
	sort.Slice(reviewerIDs, func(i, j int) bool { return reviewerIDs[i] < reviewerIDs[j] })

	loads, err := s.assignRepo.LoadCounts(input.ConferenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment counts: %w", err)
	}

	bids, err := s.bidRepo.ListBidsByConference(input.ConferenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bids: %w", err)
	}
	bidByPair := make(map[uint64]map[uint64]models.BidValue)
	for _, b := range bids {
		if bidByPair[b.PaperID] == nil {
			bidByPair[b.PaperID] = make(map[uint64]models.BidValue)
		}
		bidByPair[b.PaperID][b.ReviewerID] = b.Bid
	}

	conflicts, err := s.bidRepo.ListConflictsByConference(input.ConferenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conflicts: %w", err)
	}
	conflictByPair := make(map[uint64]map[uint64]bool)
	for _, c := range conflicts {
		if conflictByPair[c.PaperID] == nil {
			conflictByPair[c.PaperID] = make(map[uint64]bool)
		}
		conflictByPair[c.PaperID][c.ReviewerID] = true
	}

	report := &AutoAssignReport{
		RunID:        uuid.NewString(),
		ConferenceID: input.ConferenceID,
		Target:       target,
		Papers:       make([]PaperOutcome, 0, len(papers)),
	}

	var newAssignments []models.ReviewAssignment
	var firstAssigned []uint64

	for _, paper := range papers {
		outcome := PaperOutcome{PaperID: paper.ID, Title: paper.Title}

		needed := target - len(paper.Assignments)
		if needed <= 0 {
			outcome.Skipped = true
			outcome.Reason = skipReasonEnough
			report.Papers = append(report.Papers, outcome)
			continue
		}

		authors := make(map[uint64]bool, len(paper.Authors))
		for _, a := range paper.Authors {
			authors[a.UserID] = true
		}
		assigned := make(map[uint64]bool, len(paper.Assignments))
		for _, a := range paper.Assignments {
			assigned[a.ReviewerID] = true
		}

		pool := make([]candidate, 0, len(reviewerIDs))
		for _, reviewerID := range reviewerIDs {
			if authors[reviewerID] || assigned[reviewerID] {
				continue
			}
			if conflictByPair[paper.ID][reviewerID] {
				continue
			}

			score := scoreNoBid
			if bid, ok := bidByPair[paper.ID][reviewerID]; ok {
				switch bid {
				case models.BidConflict:
					continue
				case models.BidYes:
					score = scoreBidYes
				case models.BidMaybe:
					score = scoreBidMaybe
				case models.BidNo:
					score = scoreBidNo
				}
			}

			pool = append(pool, candidate{
				reviewerID: reviewerID,
				score:      score,
				load:       loads[reviewerID],
			})
		}

		sort.SliceStable(pool, func(i, j int) bool {
			if pool[i].score != pool[j].score {
				return pool[i].score > pool[j].score
			}
			if pool[i].load != pool[j].load {
				return pool[i].load < pool[j].load
			}
			return pool[i].reviewerID < pool[j].reviewerID
		})

		if len(pool) == 0 {
			outcome.Skipped = true
			outcome.Reason = skipReasonNoEligible
			report.Papers = append(report.Papers, outcome)
			continue
		}

		take := needed
		if take > len(pool) {
			take = len(pool)
			outcome.Reason = fmt.Sprintf(shortfallReasonFormat, take, needed)
		}

		for _, chosen := range pool[:take] {
			newAssignments = append(newAssignments, models.ReviewAssignment{
				PaperID:    paper.ID,
				ReviewerID: chosen.reviewerID,
				Status:     models.AssignmentNotStarted,
			})
			loads[chosen.reviewerID]++
			outcome.AssignedReviewerIDs = append(outcome.AssignedReviewerIDs, chosen.reviewerID)
		}

		if len(paper.Assignments) == 0 && len(outcome.AssignedReviewerIDs) > 0 {
			firstAssigned = append(firstAssigned, paper.ID)
		}

		report.Papers = append(report.Papers, outcome)
	}

	if err := s.assignRepo.CreateBatch(newAssignments); err != nil {
		return nil, fmt.Errorf("failed to persist assignments: %w", err)
	}
	report.NewAssignments = len(newAssignments)
	report.ReviewerLoads = loads

	for _, paperID := range firstAssigned {
		if err := s.paperRepo.TransitionStatus(paperID, models.PaperStatusSubmitted, models.PaperStatusUnderReview); err != nil {
			log.Printf("Warning: failed to transition paper %d to under_review: %v", paperID, err)
		}
	}

	if s.notifier != nil && len(newAssignments) > 0 {
		go s.notifier.NotifyNewAssignments(input.ConferenceID, newAssignments)
	}

	return report, nil
}

// ManualAssignInput represents a single chair-made assignment.
type ManualAssignInput struct {
	PaperID    uint64
	ReviewerID uint64
	DueDate    *time.Time
	Actor      *models.User
}

// ManualAssign creates one assignment, applying the same exclusion
// checks the engine applies to its candidate pool.
func (s *AssignmentService) ManualAssign(input ManualAssignInput) (*models.ReviewAssignment, error) {
	paper, err := s.paperRepo.FindByID(input.PaperID, "Assignments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to find paper: %w", err)
	}

	allowed, err := s.membership.IsChairOrAdmin(paper.ConferenceID, input.Actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotChairOrAdmin
	}

	authorIDs, err := s.paperRepo.AuthorIDs(input.PaperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	for _, authorID := range authorIDs {
		if authorID == input.ReviewerID {
			return nil, ErrReviewerIsAuthor
		}
	}

	if _, err := s.assignRepo.FindPair(input.PaperID, input.ReviewerID); err == nil {
		return nil, ErrAlreadyAssigned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}

	declared, err := s.bidRepo.ListConflictsByPaper(input.PaperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conflicts: %w", err)
	}
	for _, c := range declared {
		if c.ReviewerID == input.ReviewerID {
			return nil, ErrReviewerConflicted
		}
	}
	if bid, err := s.bidRepo.FindBid(input.PaperID, input.ReviewerID); err == nil {
		if bid.Bid == models.BidConflict {
			return nil, ErrReviewerConflicted
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load bid: %w", err)
	}

	assignment := &models.ReviewAssignment{
		PaperID:    input.PaperID,
		ReviewerID: input.ReviewerID,
		Status:     models.AssignmentNotStarted,
		DueDate:    input.DueDate,
	}
	if err := s.assignRepo.Create(assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	if len(paper.Assignments) == 0 {
		if err := s.paperRepo.TransitionStatus(paper.ID, models.PaperStatusSubmitted, models.PaperStatusUnderReview); err != nil {
			log.Printf("Warning: failed to transition paper %d to under_review: %v", paper.ID, err)
		}
	}

	if s.notifier != nil {
		go s.notifier.NotifyNewAssignments(paper.ConferenceID, []models.ReviewAssignment{*assignment})
	}

	return assignment, nil
}

// DeleteAssignment removes an assignment unless its review has been
// submitted.
func (s *AssignmentService) DeleteAssignment(assignmentID uint64, actor *models.User) error {
	assignment, err := s.assignRepo.FindByID(assignmentID, "Paper")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to find assignment: %w", err)
	}

	allowed, err := s.membership.IsChairOrAdmin(assignment.Paper.ConferenceID, actor)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrNotChairOrAdmin
	}

	if assignment.Status == models.AssignmentSubmitted {
		return ErrAssignmentSubmitted
	}

	if err := s.assignRepo.Delete(assignmentID); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

// UpdateStatus sets the lifecycle status directly. SUBMITTED stays
// terminal for everyone but admins.
func (s *AssignmentService) UpdateStatus(assignmentID uint64, status models.AssignmentStatus, actor *models.User) (*models.ReviewAssignment, error) {
	if !models.ValidAssignmentStatus(status) {
		return nil, ErrInvalidStatus
	}

	assignment, err := s.assignRepo.FindByID(assignmentID, "Paper")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	if !actor.IsAdmin && assignment.ReviewerID != actor.ID {
		allowed, err := s.membership.IsChairOrAdmin(assignment.Paper.ConferenceID, actor)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrNotChairOrAdmin
		}
	}

	if assignment.Status == models.AssignmentSubmitted && status != models.AssignmentSubmitted && !actor.IsAdmin {
		return nil, ErrStatusLocked
	}

	if err := s.assignRepo.UpdateStatus(assignmentID, status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	assignment.Status = status
	return assignment, nil
}

// StatsReport aggregates the current persisted assignment state for
// chairs.
type StatsReport struct {
	Papers    []repository.PaperStatsRow    `json:"papers"`
	Reviewers []repository.ReviewerStatsRow `json:"reviewers"`
}

// Stats returns per-paper assignment counts and per-reviewer load and
// completion counts, derived purely from persisted state.
func (s *AssignmentService) Stats(conferenceID uint64, actor *models.User) (*StatsReport, error) {
	if _, err := s.confRepo.FindByID(conferenceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConferenceNotFound
		}
		return nil, fmt.Errorf("failed to find conference: %w", err)
	}

	allowed, err := s.membership.IsChairOrAdmin(conferenceID, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotChairOrAdmin
	}

	papers, err := s.assignRepo.PaperStats(conferenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate paper stats: %w", err)
	}
	reviewers, err := s.assignRepo.ReviewerStats(conferenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reviewer stats: %w", err)
	}

	return &StatsReport{Papers: papers, Reviewers: reviewers}, nil
}
