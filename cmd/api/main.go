package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"gradtrack/internal/config"
	"gradtrack/internal/db"
	"gradtrack/internal/email"
	apihttp "gradtrack/internal/http"
	"gradtrack/internal/repository"
	"gradtrack/internal/service"
	"gradtrack/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	otpRepo := repository.NewPgOTPRepository(pool)
	milestoneRepo := repository.NewPgMilestoneRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var objectStore storage.ObjectStore
	if cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(ctx, storage.Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
		})
		if err != nil {
			logger.Warn("object storage init failed", zap.Error(err))
		} else {
			objectStore = store
		}
	}

	var tokenStore service.RefreshTokenStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)

	otpSvc := service.NewOTPService(logger, otpRepo, emailSender)
	authSvc := service.NewAuthService(logger, userRepo, profileRepo, otpSvc)
	avatarSvc := service.NewAvatarService(logger, profileRepo, objectStore)
	progressSvc := service.NewProgressService(logger, milestoneRepo, userRepo)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, avatarSvc, jwtSvc)
	otpHandler := apihttp.NewOTPHandler(logger, authSvc, otpSvc, jwtSvc)
	gradHandler := apihttp.NewGraduateHandler(logger, progressSvc)
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, otpHandler, gradHandler)

	if err := otpSvc.PurgeExpired(ctx); err != nil {
		logger.Warn("startup otp purge failed", zap.Error(err))
	}
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.OTPPurgeSchedule, func() {
		if err := otpSvc.PurgeExpired(context.Background()); err != nil {
			logger.Warn("otp purge sweep failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("schedule otp purge", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
