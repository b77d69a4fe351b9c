package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"book-review-backend/internal/domains/review/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresReviewRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &postgresReviewRepository{pool: pool}
}

const reviewColumns = `id, user_id, book_id, rating, comment, created_at, updated_at`

func scanReview(row pgx.Row) (*model.Review, error) {
	var rv model.Review
	err := row.Scan(
		&rv.ID,
		&rv.UserID,
		&rv.BookID,
		&rv.Rating,
		&rv.Comment,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to scan review: %w", err)
	}
	return &rv, nil
}

// =====================================================
// TRANSACTIONAL WRITES
// =====================================================

func (r *postgresReviewRepository) CreateTx(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	query := `
		INSERT INTO reviews (user_id, book_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		review.UserID, review.BookID, review.Rating, review.Comment,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

func (r *postgresReviewRepository) UpdateTx(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	query := `
		UPDATE reviews
		SET rating = $1, comment = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	err := tx.QueryRow(ctx, query, review.Rating, review.Comment, review.ID).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrReviewNotFound
		}
		return fmt.Errorf("failed to update review: %w", err)
	}

	return nil
}

func (r *postgresReviewRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	result, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}

	return nil
}

// =====================================================
// TRANSACTIONAL READS
// =====================================================

func (r *postgresReviewRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	return scanReview(tx.QueryRow(ctx, query, id))
}

func (r *postgresReviewRepository) GetByUserAndBookTx(ctx context.Context, tx pgx.Tx, userID, bookID int64) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 AND book_id = $2`
	return scanReview(tx.QueryRow(ctx, query, userID, bookID))
}

// =====================================================
// READS
// =====================================================

func (r *postgresReviewRepository) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	return scanReview(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresReviewRepository) GetByUserAndBook(ctx context.Context, userID, bookID int64) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 AND book_id = $2`
	return scanReview(r.pool.QueryRow(ctx, query, userID, bookID))
}

func (r *postgresReviewRepository) ListByBook(ctx context.Context, req model.ListReviewsRequest) ([]model.Review, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE book_id = $1`, req.BookID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count query failed: %w", err)
	}

	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE book_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, req.BookID, req.Page*req.Size, req.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]model.Review, 0, req.Size)
	for rows.Next() {
		var rv model.Review
		err := rows.Scan(&rv.ID, &rv.UserID, &rv.BookID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to query reviews: %w", err)
	}

	return reviews, total, nil
}
