package model

import "errors"

// Error codes
const (
	ErrCodeReviewNotFound = "REVIEW001"
	ErrCodeNotReviewOwner = "REVIEW002"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrNotReviewOwner = errors.New("review belongs to another user")
)
