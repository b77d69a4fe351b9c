package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxTitleLength  = 500
)

// ListBooksRequest is the listing contract: optional genre filter,
// optional author filter (accepted but not yet backed by a predicate),
// optional title-prefix search, sort specification, zero-based page.
type ListBooksRequest struct {
	GenreID  *int64
	AuthorID *int64
	Search   string
	Sort     []SortOrder
	Page     int
	Size     int
}

func (r ListBooksRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Page, validation.Min(0)),
		validation.Field(&r.Size, validation.Required, validation.Min(1), validation.Max(MaxPageSize)),
		validation.Field(&r.Search, validation.Length(0, MaxTitleLength)),
	)
}

// HasFilters reports whether any filter narrows the result set; without
// one the total comes from the precomputed counter instead of a COUNT scan.
func (r ListBooksRequest) HasFilters() bool {
	return r.GenreID != nil || r.AuthorID != nil || r.Search != ""
}

// CreateBookRequest creates a catalog entry.
type CreateBookRequest struct {
	Title           string  `json:"title"`
	ISBN            *string `json:"isbn"`
	PublicationYear *int    `json:"publication_year"`
	GenreIDs        []int64 `json:"genre_ids"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, MaxTitleLength)),
		validation.Field(&r.ISBN, validation.Length(10, 17)),
		validation.Field(&r.PublicationYear, validation.Min(0), validation.Max(time.Now().Year()+1)),
	)
}

// UpdateBookRequest mutates title/isbn/publication year. Nil fields are
// left unchanged; ClearPublicationYear removes the year explicitly.
type UpdateBookRequest struct {
	Title                *string `json:"title"`
	ISBN                 *string `json:"isbn"`
	PublicationYear      *int    `json:"publication_year"`
	ClearPublicationYear bool    `json:"clear_publication_year"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, MaxTitleLength)),
		validation.Field(&r.ISBN, validation.Length(10, 17)),
		validation.Field(&r.PublicationYear, validation.Min(0), validation.Max(time.Now().Year()+1)),
	)
}

// GenreRef is a genre attached to a book in the detail response.
type GenreRef struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ReviewHighlight is one of the most recent reviews shown on the detail page.
type ReviewHighlight struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BookDetailResponse is the detail payload.
type BookDetailResponse struct {
	ID              int64             `json:"id"`
	Title           string            `json:"title"`
	ISBN            *string           `json:"isbn"`
	PublicationYear *int              `json:"publication_year"`
	AverageRating   decimal.Decimal   `json:"average_rating"`
	ReviewCount     int               `json:"review_count"`
	Genres          []GenreRef        `json:"genres"`
	RecentReviews   []ReviewHighlight `json:"recent_reviews"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
