package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	api "mailsweep-backend/cmd/api"
	analysisDelivery "mailsweep-backend/internal/analysis/delivery"
	analysisdomain "mailsweep-backend/internal/analysis/domain"
	analysisRepo "mailsweep-backend/internal/analysis/repository"
	analysisUsecase "mailsweep-backend/internal/analysis/usecase"
	authDelivery "mailsweep-backend/internal/auth/delivery"
	authdomain "mailsweep-backend/internal/auth/domain"
	authRepo "mailsweep-backend/internal/auth/repository"
	authUsecase "mailsweep-backend/internal/auth/usecase"
	emailDelivery "mailsweep-backend/internal/email/delivery"
	emailUsecase "mailsweep-backend/internal/email/usecase"
	labelsDelivery "mailsweep-backend/internal/labels/delivery"
	labelsdomain "mailsweep-backend/internal/labels/domain"
	labelsRepo "mailsweep-backend/internal/labels/repository"
	labelsUsecase "mailsweep-backend/internal/labels/usecase"
	sendersDelivery "mailsweep-backend/internal/senders/delivery"
	sendersdomain "mailsweep-backend/internal/senders/domain"
	sendersRepo "mailsweep-backend/internal/senders/repository"
	"mailsweep-backend/internal/senders/scheduler"
	sendersUsecase "mailsweep-backend/internal/senders/usecase"
	"mailsweep-backend/pkg/config"
	"mailsweep-backend/pkg/database"
	"mailsweep-backend/pkg/gmail"
	"mailsweep-backend/pkg/lock"
	"mailsweep-backend/pkg/logger"
	"mailsweep-backend/pkg/retry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const purgeLockTTL = 10 * time.Minute

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&analysisdomain.SenderStat{},
		&analysisdomain.AnalysisCheckpoint{},
		&sendersdomain.UnsubscribedSender{},
		&sendersdomain.SafeSender{},
		&labelsdomain.GmailLabel{},
	); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	statsRepo := analysisRepo.NewStatsRepository(db)
	checkpointRepo := analysisRepo.NewCheckpointRepository(db)
	unsubscribedRepo := sendersRepo.NewUnsubscribedSenderRepository(db)
	safeRepo := sendersRepo.NewSafeSenderRepository(db)
	labelRepo := labelsRepo.NewLabelRepository(db)

	// Gmail service opens a provider client per credential
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, retry.Policy{
		MaxRetries:   cfg.Retry.MaxRetries,
		InitialDelay: cfg.Retry.InitialDelay,
	}, log)

	// Redis is optional; without it the purge runs unlocked
	rdb := lock.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb == nil {
		log.Warn("REDIS_ADDR not configured, purge lock disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}
	locker := lock.NewLocker(rdb, purgeLockTTL, log)

	// Initialize use cases (dependency injection)
	authUc := authUsecase.NewAuthUsecase(userRepo, gmailService.OAuthConfig(cfg.GoogleRedirectURI), gmailService, cfg, log)
	analysisUc := analysisUsecase.NewAnalysisUsecase(statsRepo, checkpointRepo, safeRepo, unsubscribedRepo, gmailService, cfg.Analysis, log)
	sendersUc := sendersUsecase.NewSendersUsecase(unsubscribedRepo, safeRepo, statsRepo, gmailService, authUc, locker, cfg.Actions, log)
	labelsUc := labelsUsecase.NewLabelsUsecase(labelRepo, gmailService, cfg.Actions, log)
	emailUc := emailUsecase.NewEmailUsecase(gmailService, cfg.Actions, log)

	// Initialize HTTP handlers
	resolver := authDelivery.NewResolver(authUc, cfg.FallbackAccessToken)
	handler := api.NewHandler(
		authUc,
		authDelivery.NewAuthHandler(authUc, int(cfg.JWTRefreshExpiry.Seconds()), strings.HasPrefix(cfg.FrontendURL, "https://")),
		analysisDelivery.NewAnalysisHandler(analysisUc, resolver),
		sendersDelivery.NewSendersHandler(sendersUc, resolver, cfg.CronSecret),
		labelsDelivery.NewLabelsHandler(labelsUc, resolver),
		emailDelivery.NewEmailHandler(emailUc, resolver),
		cfg,
		log,
	)

	// Background purge of messages tagged for deletion
	purgeScheduler := scheduler.NewPurgeScheduler(sendersUc, cfg.PurgeInterval, log)
	purgeScheduler.Start()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler.Engine(),
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	purgeScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("shutdown complete")
}
