package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 2000

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SubmitReviewRequest creates or replaces the caller's review of a book.
type SubmitReviewRequest struct {
	BookID  int64  `json:"book_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (r SubmitReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Rating, validation.Required, validation.Min(MinRating), validation.Max(MaxRating)),
		validation.Field(&r.Comment, validation.Length(0, MaxCommentLength)),
	)
}

// UpdateReviewRequest edits an existing review. A nil rating leaves the
// aggregate untouched and only changes the comment.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

func (r UpdateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.Min(MinRating), validation.Max(MaxRating)),
		validation.Field(&r.Comment, validation.Length(0, MaxCommentLength)),
	)
}

// ListReviewsRequest pages through a book's reviews, newest first.
type ListReviewsRequest struct {
	BookID int64
	Page   int
	Size   int
}

func (r ListReviewsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Page, validation.Min(0)),
		validation.Field(&r.Size, validation.Required, validation.Min(1), validation.Max(MaxPageSize)),
	)
}
