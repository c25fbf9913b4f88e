package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/hmizuno/conference-review-api/internal/errors"
	"github.com/hmizuno/conference-review-api/internal/services"
)

// respondServiceError maps service sentinel errors onto the API error
// taxonomy. Unknown errors surface as 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrConferenceNotFound),
		errors.Is(err, services.ErrPaperNotFound),
		errors.Is(err, services.ErrAssignmentNotFound),
		errors.Is(err, services.ErrMembershipNotFound),
		errors.Is(err, services.ErrConflictNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrNotChairOrAdmin),
		errors.Is(err, services.ErrNotReviewer),
		errors.Is(err, services.ErrReviewAccessDenied),
		errors.Is(err, services.ErrSelfReview),
		errors.Is(err, services.ErrReviewerIsAuthor),
		errors.Is(err, services.ErrReviewerConflicted),
		errors.Is(err, services.ErrReviewsHidden),
		errors.Is(err, services.ErrStatusLocked),
		errors.Is(err, services.ErrLastChair):
		apierrors.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrDeadlinePassed):
		apierrors.DeadlinePassed(c, err.Error())

	case errors.Is(err, services.ErrAlreadyAssigned),
		errors.Is(err, services.ErrAlreadySubmitted),
		errors.Is(err, services.ErrAlreadyDecided),
		errors.Is(err, services.ErrMembershipExists),
		errors.Is(err, services.ErrAssignmentSubmitted):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrInvalidBid),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidVerdict),
		errors.Is(err, services.ErrScoreOutOfRange),
		errors.Is(err, services.ErrConfidenceOutOfRange):
		apierrors.BadRequest(c, err.Error())

	default:
		apierrors.InternalError(c, "")
	}
}
