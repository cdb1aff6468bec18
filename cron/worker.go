package cron

import (
	"context"
	"fmt"
	"time"

	"busreserve/config"
	reservationRepo "busreserve/database/repository/reservation"
	"busreserve/services/notification"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeHoldSweep = "holds:sweep"

// Worker delivers queued booking events and runs the periodic hold sweep.
type Worker struct {
	srv       *asynq.Server
	scheduler *asynq.Scheduler
	logger    *zap.Logger
	stopPing  context.CancelFunc
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewQueueClient returns the producer side of the event queue.
func NewQueueClient() *asynq.Client {
	return asynq.NewClient(redisOpts())
}

// InitEventWorker starts the asynq server and scheduler in the background.
// deliver is the synchronous dispatcher queued events are finally handed to.
func InitEventWorker(deliver notification.Dispatcher, repo reservationRepo.ReservationRepository, logger *zap.Logger) (*Worker, error) {
	opts := redisOpts()
	srv := asynq.NewServer(
		opts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeEventDelivery, handleEventTask(deliver, logger))
	mux.HandleFunc(TypeHoldSweep, handleHoldSweepTask(repo, logger))

	const maxAttempts = 5
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err := srv.Start(mux)
		if err == nil {
			break
		}
		logger.Warn("Event worker failed to start", zap.Int("attempt", attempts), zap.Error(err))
		if attempts == maxAttempts {
			return nil, fmt.Errorf("event worker: max start attempts reached: %w", err)
		}
		time.Sleep(time.Duration(attempts*2) * time.Second)
	}

	scheduler := asynq.NewScheduler(opts, nil)
	spec := fmt.Sprintf("@every %s", config.AppConfig.HoldSweepInterval)
	if _, err := scheduler.Register(spec, asynq.NewTask(TypeHoldSweep, nil)); err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("event worker: failed to register hold sweep: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("event worker: failed to start scheduler: %w", err)
	}

	pingCtx, stopPing := context.WithCancel(context.Background())
	go monitorRedisConnection(pingCtx, logger)

	logger.Info("Event worker started", zap.String("holdSweep", spec))
	return &Worker{srv: srv, scheduler: scheduler, logger: logger, stopPing: stopPing}, nil
}

// Shutdown stops the scheduler and waits for in-flight tasks.
func (w *Worker) Shutdown() {
	w.stopPing()
	w.scheduler.Shutdown()
	w.srv.Shutdown()
	w.logger.Info("Event worker stopped")
}

func handleEventTask(deliver notification.Dispatcher, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		event, err := notification.ParseEventDeliveryTask(task)
		if err != nil {
			logger.Error("Dropping invalid event task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := deliver.Dispatch(ctx, event); err != nil {
			logger.Warn("Event delivery failed, will retry",
				zap.String("eventId", event.ID),
				zap.String("type", string(event.Type)),
				zap.Error(err),
			)
			return err
		}
		return nil
	}
}

func handleHoldSweepTask(repo reservationRepo.ReservationRepository, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		return SweepHolds(ctx, repo, time.Now(), logger)
	}
}

// monitorRedisConnection pings the queue Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil && ctx.Err() == nil {
				logger.Warn("Queue Redis connection lost", zap.Error(err))
			}
		}
	}
}
