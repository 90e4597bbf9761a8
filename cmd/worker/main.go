package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/ghuser/messhall/pkg/app"
	"github.com/ghuser/messhall/pkg/cache"
	"github.com/ghuser/messhall/pkg/config"
	"github.com/ghuser/messhall/pkg/database"
	"github.com/ghuser/messhall/pkg/events"
	"github.com/ghuser/messhall/pkg/logger"
	"github.com/ghuser/messhall/pkg/telemetry"
	"github.com/ghuser/messhall/pkg/workflows"
	appsvcs "github.com/ghuser/messhall/services/ration/application/services"
	rationEvents "github.com/ghuser/messhall/services/ration/domain/events"
	rationWorkflows "github.com/ghuser/messhall/services/ration/workflows"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	temporalClient, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
	if err != nil {
		log.Error("failed to initialize temporal client", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer temporalClient.Close()

	appConfig := &app.Application{
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		TemporalClient: temporalClient,
	}
	svcs := appsvcs.New(appConfig)

	if err := registerSubscribers(ctx, appConfig, svcs); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	w, err := startTemporalWorker(ctx, appConfig, svcs)
	if err != nil {
		log.Error("failed to start temporal worker", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer w.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application, svcs *appsvcs.Services) error {
	topics := map[string]func(context.Context, *message.Message) error{
		rationEvents.TopicWithdrawalRecorded: handleWithdrawalRecorded(a, svcs),
		rationEvents.TopicWithdrawalReversed: handleWithdrawalReversed(a),
	}

	names := make([]string, 0, len(topics))
	for topic, handler := range topics {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}
		names = append(names, topic)

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
	}

	a.Logger.Info("event subscribers registered", "topics", names)
	return nil
}

// handleWithdrawalRecorded refreshes the availability read model after a
// withdrawal depleted the ledger. Handlers must be idempotent since the
// EventBus retries up to 3x on failure: recomputing availability from the
// ledger yields the same value on every delivery.
func handleWithdrawalRecorded(a *app.Application, svcs *appsvcs.Services) func(context.Context, *message.Message) error {
	availCache := cache.NewAvailabilityCache(a.Redis)
	return func(ctx context.Context, msg *message.Message) error {
		var evt rationEvents.WithdrawalRecordedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		if err := availCache.Invalidate(ctx, evt.ProductID, evt.Date); err != nil {
			a.Logger.WarnContext(ctx, "cache invalidate failed for withdrawal.recorded",
				"product_id", evt.ProductID, "error", err)
			return nil
		}

		// Re-warm so the next availability read is served from cache.
		if _, err := svcs.Availability.Available(ctx, evt.ProductID, evt.Date); err != nil {
			a.Logger.WarnContext(ctx, "cache warm failed for withdrawal.recorded",
				"product_id", evt.ProductID, "error", err)
		} else {
			a.Logger.InfoContext(ctx, "availability cache refreshed",
				"product_id", evt.ProductID, "withdrawal_id", evt.WithdrawalID)
		}
		return nil
	}
}

// handleWithdrawalReversed drops the stale availability entry after a
// reversal restored batch quantities.
func handleWithdrawalReversed(a *app.Application) func(context.Context, *message.Message) error {
	availCache := cache.NewAvailabilityCache(a.Redis)
	return func(ctx context.Context, msg *message.Message) error {
		var evt rationEvents.WithdrawalReversedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		if err := availCache.Invalidate(ctx, evt.ProductID, evt.Date); err != nil {
			// Invalidation is best-effort; the short TTL bounds staleness.
			a.Logger.WarnContext(ctx, "cache invalidate failed for withdrawal.reversed",
				"product_id", evt.ProductID, "error", err)
		}
		return nil
	}
}

// startTemporalWorker registers the ration workflows and kicks off the
// recurring planned-generation schedule.
func startTemporalWorker(ctx context.Context, a *app.Application, svcs *appsvcs.Services) (worker.Worker, error) {
	w := worker.New(a.TemporalClient.Client, rationWorkflows.TaskQueue, worker.Options{})
	w.RegisterWorkflow(rationWorkflows.PlannedGenerationWorkflow)
	w.RegisterActivity(rationWorkflows.NewActivities(svcs))

	if err := w.Start(); err != nil {
		return nil, err
	}

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := a.TemporalClient.Client.ExecuteWorkflow(startCtx, client.StartWorkflowOptions{
		ID:           rationWorkflows.PlannedGenerationWorkflowID,
		TaskQueue:    rationWorkflows.TaskQueue,
		CronSchedule: rationWorkflows.PlannedGenerationCron,
	}, rationWorkflows.PlannedGenerationWorkflow)
	if err != nil {
		var already *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &already) {
			w.Stop()
			return nil, err
		}
	}

	a.Logger.Info("temporal worker started", "task_queue", rationWorkflows.TaskQueue)
	return w, nil
}
