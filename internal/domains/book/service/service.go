package service

import (
	"context"
	"time"

	"book-review-backend/internal/domains/book/model"
	"book-review-backend/internal/domains/book/repository"
	"book-review-backend/internal/infrastructure/queue"
	"book-review-backend/pkg/cache"
	"book-review-backend/pkg/logger"
)

const (
	bookDetailCacheTTL = 5 * time.Minute
	recentReviewsLimit = 5
)

// BookService is the catalog use-case layer.
type BookService interface {
	ListBooks(ctx context.Context, req model.ListBooksRequest) ([]model.BookSummary, int64, error)
	GetBookDetail(ctx context.Context, id int64) (*model.BookDetailResponse, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest, userID int64) (*model.Book, error)
	UpdateBook(ctx context.Context, id int64, req model.UpdateBookRequest) (*model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	RebuildBookRating(ctx context.Context, id int64) error
}

type bookService struct {
	repo  repository.BookRepository
	cache cache.Cache
	queue queue.Enqueuer
}

func NewBookService(repo repository.BookRepository, c cache.Cache, q queue.Enqueuer) BookService {
	return &bookService{repo: repo, cache: c, queue: q}
}

// =====================================================
// LISTING
// =====================================================

func (s *bookService) ListBooks(ctx context.Context, req model.ListBooksRequest) ([]model.BookSummary, int64, error) {
	if req.Size == 0 {
		req.Size = model.DefaultPageSize
	}
	if len(req.Sort) == 0 {
		req.Sort = model.DefaultSort()
	}

	if err := req.Validate(); err != nil {
		return nil, 0, err
	}

	return s.repo.List(ctx, req)
}

// =====================================================
// DETAIL
// =====================================================

func (s *bookService) GetBookDetail(ctx context.Context, id int64) (*model.BookDetailResponse, error) {
	key := model.DetailCacheKey(id)

	var cached model.BookDetailResponse
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		logger.Warn("book detail cache read failed", err)
	} else if hit {
		return &cached, nil
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	genres, err := s.repo.GetGenres(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repo.GetRecentReviews(ctx, id, recentReviewsLimit)
	if err != nil {
		return nil, err
	}

	detail := &model.BookDetailResponse{
		ID:              book.ID,
		Title:           book.Title,
		ISBN:            book.ISBN,
		PublicationYear: book.PublicationYear,
		AverageRating:   book.AverageRating,
		ReviewCount:     book.ReviewCount,
		Genres:          genres,
		RecentReviews:   reviews,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}

	if err := s.cache.Set(ctx, key, detail, bookDetailCacheTTL); err != nil {
		logger.Warn("book detail cache write failed", err)
	}

	return detail, nil
}

// =====================================================
// MUTATIONS
// =====================================================

func (s *bookService) CreateBook(ctx context.Context, req model.CreateBookRequest, userID int64) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book := &model.Book{
		Title:           req.Title,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
	}

	if err := s.repo.Create(ctx, book, req.GenreIDs, userID); err != nil {
		return nil, err
	}

	if err := s.queue.RefreshBookCounts(ctx); err != nil {
		logger.Warn("failed to schedule count refresh", err)
	}

	return book, nil
}

func (s *bookService) UpdateBook(ctx context.Context, id int64, req model.UpdateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.ISBN != nil {
		book.ISBN = req.ISBN
	}
	if req.ClearPublicationYear {
		book.PublicationYear = nil
	} else if req.PublicationYear != nil {
		book.PublicationYear = req.PublicationYear
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}

	s.invalidateDetail(ctx, id)

	return book, nil
}

func (s *bookService) DeleteBook(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.invalidateDetail(ctx, id)

	if err := s.queue.RefreshBookCounts(ctx); err != nil {
		logger.Warn("failed to schedule count refresh", err)
	}

	return nil
}

// RebuildBookRating schedules a recomputation of one book's aggregate
// from its review rows. This is the repair path for a corrupt aggregate;
// the worker does the rebuild under the book lock.
func (s *bookService) RebuildBookRating(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.queue.RebuildBookRating(ctx, id); err != nil {
		return err
	}

	s.invalidateDetail(ctx, id)
	return nil
}

func (s *bookService) invalidateDetail(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, model.DetailCacheKey(id)); err != nil {
		logger.Warn("book detail cache invalidation failed", err)
	}
}
