package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	bookModel "book-review-backend/internal/domains/book/model"
	bookRepo "book-review-backend/internal/domains/book/repository"
	"book-review-backend/internal/domains/review/model"
	"book-review-backend/internal/domains/review/repository"
	"book-review-backend/pkg/cache"
	"book-review-backend/pkg/database"
	"book-review-backend/pkg/logger"
)

// ReviewService maintains reviews and keeps each book's rating aggregate
// exact. Every mutation runs in one transaction that first locks the book
// row, so concurrent reviewers of the same book are serialized and the
// stored (average, count) pair always matches the committed review set.
type ReviewService interface {
	SubmitReview(ctx context.Context, userID int64, req model.SubmitReviewRequest) (*model.Review, error)
	UpdateReview(ctx context.Context, userID, reviewID int64, req model.UpdateReviewRequest) (*model.Review, error)
	DeleteReview(ctx context.Context, userID, reviewID int64, isAdmin bool) error
	ListBookReviews(ctx context.Context, req model.ListReviewsRequest) ([]model.Review, int64, error)
	GetUserReview(ctx context.Context, userID, bookID int64) (*model.Review, error)
}

type reviewService struct {
	tx      database.TxRunner
	reviews repository.ReviewRepository
	books   bookRepo.BookRepository
	cache   cache.Cache
}

func NewReviewService(tx database.TxRunner, reviews repository.ReviewRepository, books bookRepo.BookRepository, c cache.Cache) ReviewService {
	return &reviewService{
		tx:      tx,
		reviews: reviews,
		books:   books,
		cache:   c,
	}
}

// checkAggregate verifies the stored aggregate is in a state the formulas
// can legally start from. Failing here means a bug or out-of-band data
// damage, so the mutation is refused rather than papered over.
func checkAggregate(book *bookModel.Book) error {
	if book.ReviewCount < 0 {
		return fmt.Errorf("%w: negative review count on book %d", bookModel.ErrInvariantViolation, book.ID)
	}
	if book.ReviewCount == 0 && !book.AverageRating.IsZero() {
		return fmt.Errorf("%w: nonzero average with no reviews on book %d", bookModel.ErrInvariantViolation, book.ID)
	}
	return nil
}

// =====================================================
// SUBMIT (create or replace)
// =====================================================

// SubmitReview records the caller's rating of a book. A second submission
// for the same book replaces the first one instead of failing, and the
// aggregate moves by the update formula rather than the add formula.
func (s *reviewService) SubmitReview(ctx context.Context, userID int64, req model.SubmitReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var review *model.Review

	err := s.tx.RunTx(ctx, func(tx pgx.Tx) error {
		book, err := s.books.GetByIDForUpdateTx(ctx, tx, req.BookID)
		if err != nil {
			return err
		}
		if err := checkAggregate(book); err != nil {
			return err
		}

		existing, err := s.reviews.GetByUserAndBookTx(ctx, tx, userID, req.BookID)
		if err != nil && !errors.Is(err, model.ErrReviewNotFound) {
			return err
		}

		if existing != nil {
			if book.ReviewCount == 0 {
				return fmt.Errorf("%w: review exists but count is zero on book %d", bookModel.ErrInvariantViolation, book.ID)
			}

			newAvg := model.RatingAfterUpdate(book.AverageRating, book.ReviewCount, existing.Rating, req.Rating)

			existing.Rating = req.Rating
			existing.Comment = req.Comment
			if err := s.reviews.UpdateTx(ctx, tx, existing); err != nil {
				return err
			}

			review = existing
			return s.books.UpdateRatingTx(ctx, tx, book.ID, newAvg, book.ReviewCount)
		}

		newAvg := model.RatingAfterAdd(book.AverageRating, book.ReviewCount, req.Rating)

		review = &model.Review{
			UserID:  userID,
			BookID:  req.BookID,
			Rating:  req.Rating,
			Comment: req.Comment,
		}
		if err := s.reviews.CreateTx(ctx, tx, review); err != nil {
			return err
		}

		return s.books.UpdateRatingTx(ctx, tx, book.ID, newAvg, book.ReviewCount+1)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBookDetail(ctx, req.BookID)

	return review, nil
}

// =====================================================
// UPDATE
// =====================================================

func (s *reviewService) UpdateReview(ctx context.Context, userID, reviewID int64, req model.UpdateReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Resolve the book id outside the transaction; ownership and state
	// are re-checked under the lock.
	current, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if current.UserID != userID {
		return nil, model.ErrNotReviewOwner
	}

	var review *model.Review

	err = s.tx.RunTx(ctx, func(tx pgx.Tx) error {
		book, err := s.books.GetByIDForUpdateTx(ctx, tx, current.BookID)
		if err != nil {
			return err
		}
		if err := checkAggregate(book); err != nil {
			return err
		}

		review, err = s.reviews.GetByIDTx(ctx, tx, reviewID)
		if err != nil {
			return err
		}
		if review.UserID != userID {
			return model.ErrNotReviewOwner
		}

		oldRating := review.Rating
		if req.Rating != nil {
			review.Rating = *req.Rating
		}
		if req.Comment != nil {
			review.Comment = *req.Comment
		}

		if err := s.reviews.UpdateTx(ctx, tx, review); err != nil {
			return err
		}

		if req.Rating == nil || *req.Rating == oldRating {
			return nil
		}
		if book.ReviewCount == 0 {
			return fmt.Errorf("%w: review exists but count is zero on book %d", bookModel.ErrInvariantViolation, book.ID)
		}

		newAvg := model.RatingAfterUpdate(book.AverageRating, book.ReviewCount, oldRating, *req.Rating)
		return s.books.UpdateRatingTx(ctx, tx, book.ID, newAvg, book.ReviewCount)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBookDetail(ctx, current.BookID)

	return review, nil
}

// =====================================================
// DELETE
// =====================================================

func (s *reviewService) DeleteReview(ctx context.Context, userID, reviewID int64, isAdmin bool) error {
	current, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !isAdmin && current.UserID != userID {
		return model.ErrNotReviewOwner
	}

	err = s.tx.RunTx(ctx, func(tx pgx.Tx) error {
		book, err := s.books.GetByIDForUpdateTx(ctx, tx, current.BookID)
		if err != nil {
			return err
		}
		if err := checkAggregate(book); err != nil {
			return err
		}
		if book.ReviewCount == 0 {
			return fmt.Errorf("%w: review exists but count is zero on book %d", bookModel.ErrInvariantViolation, book.ID)
		}

		review, err := s.reviews.GetByIDTx(ctx, tx, reviewID)
		if err != nil {
			return err
		}

		if err := s.reviews.DeleteTx(ctx, tx, reviewID); err != nil {
			return err
		}

		newAvg := model.RatingAfterDelete(book.AverageRating, book.ReviewCount, review.Rating)
		return s.books.UpdateRatingTx(ctx, tx, book.ID, newAvg, book.ReviewCount-1)
	})
	if err != nil {
		return err
	}

	s.invalidateBookDetail(ctx, current.BookID)

	return nil
}

// =====================================================
// LISTING
// =====================================================

func (s *reviewService) ListBookReviews(ctx context.Context, req model.ListReviewsRequest) ([]model.Review, int64, error) {
	if req.Size == 0 {
		req.Size = model.DefaultPageSize
	}
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}

	return s.reviews.ListByBook(ctx, req)
}

// GetUserReview returns the caller's own review of a book, if any.
func (s *reviewService) GetUserReview(ctx context.Context, userID, bookID int64) (*model.Review, error) {
	return s.reviews.GetByUserAndBook(ctx, userID, bookID)
}

func (s *reviewService) invalidateBookDetail(ctx context.Context, bookID int64) {
	if err := s.cache.Delete(ctx, bookModel.DetailCacheKey(bookID)); err != nil {
		logger.Warn("book detail cache invalidation failed", err)
	}
}
