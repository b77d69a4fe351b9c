package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Book is the canonical catalog row. The rating aggregate fields
// (AverageRating, ReviewCount) are maintained incrementally by the review
// service; AverageRating is always the half-up mean of the existing
// ratings, 0.00 when ReviewCount is 0.
type Book struct {
	ID    int64   `json:"id" db:"id"`
	Title string  `json:"title" db:"title"`
	ISBN  *string `json:"isbn" db:"isbn"`

	// PublicationYearIsNull mirrors PublicationYear == nil as a stored
	// column so "missing year sorts last" can be expressed as a plain
	// two-key ORDER BY instead of engine-specific NULL ordering.
	PublicationYear       *int `json:"publication_year" db:"publication_year"`
	PublicationYearIsNull bool `json:"-" db:"publication_year_is_null"`

	AverageRating decimal.Decimal `json:"average_rating" db:"average_rating"`
	ReviewCount   int             `json:"review_count" db:"review_count"`

	IsDeleted bool `json:"-" db:"is_deleted"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BookGenre is one row of the genre membership index: a (book, genre)
// pair carrying denormalized copies of the book's filterable and sortable
// fields. Genre-filtered listings run entirely against this table.
type BookGenre struct {
	BookID  int64 `json:"book_id" db:"book_id"`
	GenreID int64 `json:"genre_id" db:"genre_id"`

	// Shadow copies of the owning book's fields. Must equal the book's
	// values whenever a transaction commits.
	Title                 string          `json:"title" db:"title"`
	IsDeleted             bool            `json:"-" db:"is_deleted"`
	AverageRating         decimal.Decimal `json:"average_rating" db:"average_rating"`
	ReviewCount           int             `json:"review_count" db:"review_count"`
	PublicationYear       *int            `json:"publication_year" db:"publication_year"`
	PublicationYearIsNull bool            `json:"-" db:"publication_year_is_null"`

	AssignedBy int64     `json:"assigned_by" db:"assigned_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CopyFromBook refreshes the shadow fields from the owning book.
func (bg *BookGenre) CopyFromBook(b *Book) {
	bg.Title = b.Title
	bg.IsDeleted = b.IsDeleted
	bg.AverageRating = b.AverageRating
	bg.ReviewCount = b.ReviewCount
	bg.PublicationYear = b.PublicationYear
	bg.PublicationYearIsNull = b.PublicationYearIsNull
}

// BookSummary is the listing row. When a genre filter is active it is
// read straight from the membership index, otherwise from books.
type BookSummary struct {
	ID              int64           `json:"id" db:"id"`
	Title           string          `json:"title" db:"title"`
	AverageRating   decimal.Decimal `json:"average_rating" db:"average_rating"`
	ReviewCount     int             `json:"review_count" db:"review_count"`
	PublicationYear *int            `json:"publication_year" db:"publication_year"`
}

// BookCount is one row of the precomputed counter table. The worker
// refreshes these out-of-band; the listing path only reads them.
type BookCount struct {
	ID           int    `json:"id" db:"id"`
	CountName    string `json:"count_name" db:"count_name"`
	CurrentCount int64  `json:"current_count" db:"current_count"`
}

// CountActiveBooks is the counter consulted for unfiltered listing totals.
const CountActiveBooks = "active_books"

// DetailCacheKey is the cache key of a book's detail payload. Review
// writes invalidate it so a cached detail never outlives its aggregate.
func DetailCacheKey(id int64) string {
	return fmt.Sprintf("book:detail:%d", id)
}
