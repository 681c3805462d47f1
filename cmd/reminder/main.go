package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/mykocapp/notifier/internal/config"
	"github.com/mykocapp/notifier/internal/push/fcm"
	"github.com/mykocapp/notifier/internal/repository/firestore"
	"github.com/mykocapp/notifier/internal/service/notifier"
	"github.com/mykocapp/notifier/internal/worker"
	"github.com/mykocapp/notifier/pkg/logger"
	"github.com/mykocapp/notifier/pkg/messaging"
	"github.com/mykocapp/notifier/pkg/messaging/redis"
	"github.com/mykocapp/notifier/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil).WithComponent("reminder")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fsClient, err := firestore.NewClient(ctx, cfg.Firestore)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to firestore")
	}
	defer fsClient.Close()

	sender, err := fcm.NewSender(ctx, cfg.FCM, appLogger.WithComponent("fcm"))
	if err != nil {
		appLogger.Fatal(err, "failed to create fcm sender")
	}

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &log.Logger)
		if err != nil {
			appLogger.Fatal(err, "failed to create redis broker")
		}
		defer broker.Close()
	}

	m := metrics.New("notifier")
	svc := notifier.NewService(
		firestore.NewStudentRepository(fsClient),
		firestore.NewTokenRepository(fsClient, cfg.Cache.TokenTTL()),
		firestore.NewTaskRepository(fsClient),
		firestore.NewCalendarNoteRepository(fsClient),
		firestore.NewChatRoomRepository(fsClient),
		firestore.NewUserRepository(fsClient),
		sender, broker, appLogger.WithComponent("notifier"), m,
	)

	w, err := worker.NewReminderWorker(svc, cfg.Scheduler, appLogger)
	if err != nil {
		appLogger.Fatal(err, "failed to create reminder worker")
	}

	go serveHealth(appLogger, m)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutting down")
		cancel()
	}()

	if err := w.Start(ctx); err != nil {
		appLogger.Fatal(err, "reminder worker failed")
	}
}

// serveHealth exposes liveness and metrics endpoints for the worker process.
func serveHealth(appLogger *logger.Logger, m *metrics.Metrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(m.Collectors()...)

	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"UP"}`))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("health server listening", "addr", ":8081")
	if err := http.ListenAndServe(":8081", mux); err != nil {
		appLogger.Error(err, "health server failed")
	}
}
