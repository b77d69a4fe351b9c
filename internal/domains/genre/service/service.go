package service

import (
	"context"

	bookModel "book-review-backend/internal/domains/book/model"
	"book-review-backend/internal/domains/genre/model"
	"book-review-backend/internal/domains/genre/repository"
	"book-review-backend/pkg/cache"
	"book-review-backend/pkg/logger"
)

type GenreService interface {
	ListGenres(ctx context.Context) ([]model.Genre, error)
	GetGenre(ctx context.Context, id int64) (*model.Genre, error)
	CreateGenre(ctx context.Context, req model.CreateGenreRequest) (*model.Genre, error)
	UpdateGenre(ctx context.Context, id int64, req model.UpdateGenreRequest) (*model.Genre, error)
	DeleteGenre(ctx context.Context, id int64) error

	AssignToBook(ctx context.Context, req model.AssignGenreRequest, userID int64) error
	RemoveFromBook(ctx context.Context, bookID, genreID int64) error
}

type genreService struct {
	repo  repository.GenreRepository
	cache cache.Cache
}

func NewGenreService(repo repository.GenreRepository, c cache.Cache) GenreService {
	return &genreService{repo: repo, cache: c}
}

func (s *genreService) ListGenres(ctx context.Context) ([]model.Genre, error) {
	return s.repo.List(ctx)
}

func (s *genreService) GetGenre(ctx context.Context, id int64) (*model.Genre, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *genreService) CreateGenre(ctx context.Context, req model.CreateGenreRequest) (*model.Genre, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	genre := &model.Genre{Name: req.Name, Description: req.Description}
	if err := s.repo.Create(ctx, genre); err != nil {
		return nil, err
	}

	return genre, nil
}

func (s *genreService) UpdateGenre(ctx context.Context, id int64, req model.UpdateGenreRequest) (*model.Genre, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	genre, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		genre.Name = *req.Name
	}
	if req.Description != nil {
		genre.Description = *req.Description
	}

	if err := s.repo.Update(ctx, genre); err != nil {
		return nil, err
	}

	return genre, nil
}

func (s *genreService) DeleteGenre(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *genreService) AssignToBook(ctx context.Context, req model.AssignGenreRequest, userID int64) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.repo.AssignToBook(ctx, req.BookID, req.GenreID, userID); err != nil {
		return err
	}

	s.invalidateBookDetail(ctx, req.BookID)
	return nil
}

func (s *genreService) RemoveFromBook(ctx context.Context, bookID, genreID int64) error {
	if err := s.repo.RemoveFromBook(ctx, bookID, genreID); err != nil {
		return err
	}

	s.invalidateBookDetail(ctx, bookID)
	return nil
}

func (s *genreService) invalidateBookDetail(ctx context.Context, bookID int64) {
	if err := s.cache.Delete(ctx, bookModel.DetailCacheKey(bookID)); err != nil {
		logger.Warn("book detail cache invalidation failed", err)
	}
}
