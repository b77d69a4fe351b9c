package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"book-review-backend/internal/domains/review/model"
)

// ReviewRepository is the review storage contract. The Tx variants run
// inside the caller's transaction; the service opens one, locks the book
// row, and performs the review write and the aggregate write together.
type ReviewRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, review *model.Review) error
	UpdateTx(ctx context.Context, tx pgx.Tx, review *model.Review) error
	DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error

	GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Review, error)
	GetByUserAndBookTx(ctx context.Context, tx pgx.Tx, userID, bookID int64) (*model.Review, error)

	GetByID(ctx context.Context, id int64) (*model.Review, error)
	GetByUserAndBook(ctx context.Context, userID, bookID int64) (*model.Review, error)
	ListByBook(ctx context.Context, req model.ListReviewsRequest) ([]model.Review, int64, error)
}
