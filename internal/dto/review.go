package dto

import (
	"fmt"
	"time"

	"github.com/hmizuno/conference-review-api/internal/models"
)

// ReviewerIdentity carries the real reviewer identity; it is only
// populated for chair/admin callers.
type ReviewerIdentity struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ReviewView is a review as surfaced by the API. For non-privileged
// callers Reviewer is nil, ReviewerLabel holds a sequential pseudonym
// and CommentsToChair is null.
type ReviewView struct {
	AssignmentID     uint64            `json:"assignment_id"`
	ReviewerLabel    string            `json:"reviewer_label"`
	Reviewer         *ReviewerIdentity `json:"reviewer,omitempty"`
	Score            *int              `json:"score"`
	Confidence       *int              `json:"confidence"`
	Summary          string            `json:"summary"`
	Strengths        string            `json:"strengths"`
	Weaknesses       string            `json:"weaknesses"`
	CommentsToAuthor string            `json:"comments_to_author"`
	CommentsToChair  *string           `json:"comments_to_chair"`
	SubmittedAt      *time.Time        `json:"submitted_at"`
}

// ToReviewViews shapes reviews for the API. Anonymization is a pure
// transform over the unredacted query result: identity fields are
// replaced by list-position pseudonyms and the chair-only commentary is
// nulled. The authorization decision stays with the caller.
func ToReviewViews(reviews []models.Review, privileged bool) []ReviewView {
	views := make([]ReviewView, len(reviews))
	for i, review := range reviews {
		view := ReviewView{
			AssignmentID:     review.AssignmentID,
			Score:            review.Score,
			Confidence:       review.Confidence,
			Summary:          review.Summary,
			Strengths:        review.Strengths,
			Weaknesses:       review.Weaknesses,
			CommentsToAuthor: review.CommentsToAuthor,
			SubmittedAt:      review.SubmittedAt,
		}

		if privileged {
			comments := review.CommentsToChair
			view.CommentsToChair = &comments
			view.ReviewerLabel = review.Assignment.Reviewer.Name
			view.Reviewer = &ReviewerIdentity{
				ID:    review.Assignment.Reviewer.ID,
				Name:  review.Assignment.Reviewer.Name,
				Email: review.Assignment.Reviewer.Email,
			}
		} else {
			view.ReviewerLabel = fmt.Sprintf("Reviewer %d", i+1)
		}

		views[i] = view
	}
	return views
}
