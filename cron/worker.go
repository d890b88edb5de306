package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"trimly/config"
	"trimly/models"
	"trimly/services/expiry"
	"trimly/services/notification"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// TypeExpirySweep is the periodic task that cancels timed-out requests and
// lapses stale offers.
const TypeExpirySweep = "expiry:sweep"

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}
}

// InitWorker runs the async worker in background: it drains queued pushes
// through the FCM dispatcher and runs the expiry sweep when scheduled.
func InitWorker(pusher *notification.FCMDispatcher, sweeper expiry.Sweeper) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeNotifyPush, handlePushTask(pusher))
	mux.HandleFunc(TypeExpirySweep, handleSweepTask(sweeper))

	go monitorRedisConnection()

	go func() {
		log.Println("[Worker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// InitScheduler registers the periodic expiry sweep. The lazy checks on the
// read/write paths keep semantics correct even when the sweep is late; the
// schedule only bounds how stale a timed-out request can get.
func InitScheduler() {
	scheduler := asynq.NewScheduler(redisOpts(), nil)

	interval := config.SweepInterval()
	if _, err := scheduler.Register("@every "+interval.String(), asynq.NewTask(TypeExpirySweep, nil)); err != nil {
		log.Fatalf("[Scheduler] Failed to register expiry sweep: %v", err)
	}

	go func() {
		log.Println("[Scheduler] Starting periodic scheduler...")
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[Scheduler] Failed to run: %v", err)
		}
	}()
}

func handlePushTask(pusher *notification.FCMDispatcher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.PushPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[PushHandler] Invalid payload: %v", err)
			return err
		}

		if err := pusher.Send(ctx, p); err != nil {
			log.Printf("[PushHandler] Failed to send push to %s: %v", p.Topic, err)
			return err
		}
		return nil
	}
}

func handleSweepTask(sweeper expiry.Sweeper) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		stats, err := sweeper.Sweep(ctx)
		if err != nil {
			log.Printf("[SweepHandler] Sweep failed: %v", err)
			return err
		}
		if stats.RequestsCancelled > 0 || stats.ResponsesExpired > 0 || stats.OffersExpired > 0 {
			log.Printf("[SweepHandler] Cancelled %d requests, rejected %d / expired %d responses, expired %d offers",
				stats.RequestsCancelled, stats.ResponsesRejected, stats.ResponsesExpired, stats.OffersExpired)
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[Worker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
