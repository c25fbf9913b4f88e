package constants

// Session / context keys
const (
	ContextKeyUserID = "user_id"
	SessionName      = "review_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const MinPasswordLength = 8

// DefaultReviewersPerPaper is the auto-assign target used when the chair
// does not specify one.
const DefaultReviewersPerPaper = 3
