package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"book-review-backend/internal/domains/book/model"
)

// BookRepository is the catalog storage contract. The Tx variants run
// inside a caller-owned transaction; the review service uses them to lock
// a book row and write the refreshed aggregate atomically with the review.
type BookRepository interface {
	// List runs the two-pass keyset listing and returns the page rows
	// plus the total matching count.
	List(ctx context.Context, req model.ListBooksRequest) ([]model.BookSummary, int64, error)

	GetByID(ctx context.Context, id int64) (*model.Book, error)
	GetGenres(ctx context.Context, bookID int64) ([]model.GenreRef, error)
	GetRecentReviews(ctx context.Context, bookID int64, limit int) ([]model.ReviewHighlight, error)

	Create(ctx context.Context, book *model.Book, genreIDs []int64, assignedBy int64) error
	Update(ctx context.Context, book *model.Book) error
	SoftDelete(ctx context.Context, id int64) error

	// GetByIDForUpdateTx locks the book row for the duration of tx,
	// serializing concurrent aggregate writers per book.
	GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Book, error)

	// UpdateRatingTx writes a new rating aggregate to the book and all of
	// its membership index rows in the same transaction.
	UpdateRatingTx(ctx context.Context, tx pgx.Tx, bookID int64, avg decimal.Decimal, count int) error

	GetActiveBookCount(ctx context.Context) (int64, error)
	RefreshActiveBookCount(ctx context.Context) error
	RebuildRating(ctx context.Context, bookID int64) error
}
