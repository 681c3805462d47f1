package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mykocapp/notifier/internal/config"
	eventHandler "github.com/mykocapp/notifier/internal/handler/event"
	healthHandler "github.com/mykocapp/notifier/internal/handler/health"
	promHandler "github.com/mykocapp/notifier/internal/handler/prometheus"
	"github.com/mykocapp/notifier/internal/push/fcm"
	"github.com/mykocapp/notifier/internal/repository/firestore"
	"github.com/mykocapp/notifier/internal/router"
	"github.com/mykocapp/notifier/internal/service/notifier"
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

	appLogger := logger.NewLogger(nil)
	ctx := context.Background()

	// Document store client
	fsClient, err := firestore.NewClient(ctx, cfg.Firestore)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to firestore")
	}
	defer fsClient.Close()

	// Push platform client
	sender, err := fcm.NewSender(ctx, cfg.FCM, appLogger.WithComponent("fcm"))
	if err != nil {
		appLogger.Fatal(err, "failed to create fcm sender")
	}

	// Operational event stream (optional)
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

	// Repositories
	studentRepo := firestore.NewStudentRepository(fsClient)
	tokenRepo := firestore.NewTokenRepository(fsClient, cfg.Cache.TokenTTL())
	taskRepo := firestore.NewTaskRepository(fsClient)
	noteRepo := firestore.NewCalendarNoteRepository(fsClient)
	roomRepo := firestore.NewChatRoomRepository(fsClient)
	userRepo := firestore.NewUserRepository(fsClient)

	// Notification service
	m := metrics.New("notifier")
	svc := notifier.NewService(
		studentRepo, tokenRepo, taskRepo, noteRepo, roomRepo, userRepo,
		sender, broker, appLogger.WithComponent("notifier"), m,
	)

	// Handlers
	promH := promHandler.New()
	promH.MustRegister(m.Collectors()...)
	eventH := eventHandler.NewHandler(svc)
	healthH := healthHandler.NewHandler(map[string]healthHandler.CheckFunc{
		"firestore": func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_, err := fsClient.Collection("fcmTokens").Limit(1).Documents(checkCtx).GetAll()
			return err
		},
	})

	r := router.NewRouter(eventH, healthH, promH)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		appLogger.Info("trigger server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(err, "server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "graceful shutdown failed")
	}
}
