package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"book-review-backend/internal/domains/book/repository"
)

// CountRefreshHandler recomputes the precomputed active-book counter.
// This is the only writer of that counter; the listing path never is.
type CountRefreshHandler struct {
	bookRepo repository.BookRepository
}

func NewCountRefreshHandler(bookRepo repository.BookRepository) *CountRefreshHandler {
	return &CountRefreshHandler{bookRepo: bookRepo}
}

func (h *CountRefreshHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	if err := h.bookRepo.RefreshActiveBookCount(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to refresh book counts")
		return fmt.Errorf("refresh book counts: %w", err)
	}

	log.Info().Msg("Book counts refreshed")
	return nil
}
