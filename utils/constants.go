package utils

const (
	// ID and code generation
	CodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength  = 6

	// Group configuration bounds
	MinContributionAmount = 1000
	MinTotalTours         = 2
	MaxTotalTours         = 100
	MinGraceDays          = 0
	MaxGraceDays          = 30

	// Review notes and messages
	MaxReviewNoteLength = 500

	// HTTP status messages
	ErrInvalidRequest      = "Invalid request"
	ErrGroupNotFound       = "Group not found"
	ErrTourNotFound        = "Tour not found"
	ErrContributionMissing = "Contribution not found"
	ErrPaymentNotFound     = "Payment not found"
)
