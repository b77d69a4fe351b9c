package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"book-review-backend/internal/config"
	"book-review-backend/internal/shared"
)

// Scheduler registers the periodic maintenance jobs. The scheduled count
// refresh is the safety net behind the event-driven refreshes the API
// enqueues on catalog writes.
type Scheduler struct {
	scheduler *asynq.Scheduler
	workerCfg config.WorkerConfig
}

func NewScheduler(redisAddr, password string, db int, workerCfg config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr, Password: password, DB: db},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler, workerCfg: workerCfg}
}

func (s *Scheduler) RegisterJobs() error {
	task := asynq.NewTask(shared.TypeRefreshBookCounts, nil)

	_, err := s.scheduler.Register(
		s.workerCfg.CountRefreshSchedule,
		task,
		asynq.Queue(shared.QueueBook),
		asynq.MaxRetry(1),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register count refresh job")
		return fmt.Errorf("register count refresh job: %w", err)
	}

	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
