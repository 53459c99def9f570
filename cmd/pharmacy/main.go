package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/app"
	"github.com/neilpimley/McKenziesPharmacy-backend/internal/customers"
	"github.com/neilpimley/McKenziesPharmacy-backend/internal/notify"
	"github.com/neilpimley/McKenziesPharmacy-backend/internal/orders"
	"github.com/neilpimley/McKenziesPharmacy-backend/internal/platform/db"
	"github.com/neilpimley/McKenziesPharmacy-backend/internal/reminders"
	"github.com/neilpimley/McKenziesPharmacy-backend/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	units := db.NewUnitSource(pool)
	notifier := notify.NewMailNotifier(jobsClient, cfg.MailFrom, logger)

	customerRepo := customers.NewRepository(pool)
	customerService := customers.NewService(customerRepo, units, notifier, logger)
	customerHandler := customers.NewHandler(logger, customerService)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo, units)
	orderHandler := orders.NewHandler(logger, orderService)

	reminderRepo := reminders.NewRepository(pool)
	reminderService := reminders.NewService(reminderRepo, orderRepo, units, cfg.ReminderLead, logger)
	reminderHandler := reminders.NewHandler(logger, reminderService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CustomersHandler: customerHandler,
		OrdersHandler:    orderHandler,
		RemindersHandler: reminderHandler,
		JobsHandler:      jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
