package main

import (
	"github.com/hibiken/asynq"

	bookJob "book-review-backend/internal/domains/book/job"
	"book-review-backend/internal/shared"
	"book-review-backend/pkg/container"
)

// HandlerRegistry holds all job handlers.
type HandlerRegistry struct {
	countRefresh  *bookJob.CountRefreshHandler
	ratingRebuild *bookJob.RatingRebuildHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		countRefresh:  bookJob.NewCountRefreshHandler(c.BookRepo),
		ratingRebuild: bookJob.NewRatingRebuildHandler(c.BookRepo),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.Handle(shared.TypeRefreshBookCounts, h.countRefresh)
	mux.Handle(shared.TypeRebuildBookRating, h.ratingRebuild)
}
