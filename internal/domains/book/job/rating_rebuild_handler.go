package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"book-review-backend/internal/domains/book/model"
	"book-review-backend/internal/domains/book/repository"
	"book-review-backend/internal/infrastructure/queue"
)

// RatingRebuildHandler recomputes one book's rating aggregate from its
// full review set. The incremental path keeps aggregates exact on its
// own; this repairs books whose data was touched outside the service.
type RatingRebuildHandler struct {
	bookRepo repository.BookRepository
}

func NewRatingRebuildHandler(bookRepo repository.BookRepository) *RatingRebuildHandler {
	return &RatingRebuildHandler{bookRepo: bookRepo}
}

func (h *RatingRebuildHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.RebuildRatingPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal RebuildRating payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := h.bookRepo.RebuildRating(ctx, payload.BookID); err != nil {
		// A book deleted between enqueue and execution is not a failure
		// worth retrying.
		if errors.Is(err, model.ErrBookNotFound) {
			log.Warn().Int64("book_id", payload.BookID).Msg("Skipping rating rebuild, book is gone")
			return nil
		}
		log.Error().Err(err).Int64("book_id", payload.BookID).Msg("Failed to rebuild rating")
		return fmt.Errorf("rebuild rating: %w", err)
	}

	log.Info().Int64("book_id", payload.BookID).Msg("Rating aggregate rebuilt")
	return nil
}
