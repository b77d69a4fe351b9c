package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"book-review-backend/internal/shared"
)

// Enqueuer is the producer side of the background queue. Services depend
// on this interface so tests can swap in a recording fake.
type Enqueuer interface {
	RefreshBookCounts(ctx context.Context) error
	RebuildBookRating(ctx context.Context, bookID int64) error
}

// RebuildRatingPayload identifies the book whose aggregate gets recomputed.
type RebuildRatingPayload struct {
	BookID int64 `json:"book_id"`
}

type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, password string, db int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// RefreshBookCounts asks the worker to recompute the precomputed counter.
// Dedup window keeps a burst of catalog writes from stacking identical
// refreshes.
func (c *Client) RefreshBookCounts(ctx context.Context) error {
	task := asynq.NewTask(shared.TypeRefreshBookCounts, nil)

	_, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueBook),
		asynq.TaskID("refresh-book-counts"),
		asynq.Retention(30*time.Second),
		asynq.MaxRetry(3),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("failed to enqueue count refresh: %w", err)
	}

	return nil
}

// RebuildBookRating schedules a full recomputation of one book's rating
// aggregate from its reviews.
func (c *Client) RebuildBookRating(ctx context.Context, bookID int64) error {
	payload, err := json.Marshal(RebuildRatingPayload{BookID: bookID})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeRebuildBookRating, payload)

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueBook),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue rating rebuild: %w", err)
	}

	return nil
}
