package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/chachabrian/swiftparcel-backend/internal/config"
	"github.com/chachabrian/swiftparcel-backend/internal/database"
	"github.com/chachabrian/swiftparcel-backend/internal/logger"
	"github.com/chachabrian/swiftparcel-backend/internal/routes"
	"github.com/chachabrian/swiftparcel-backend/internal/services"
	"github.com/chachabrian/swiftparcel-backend/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	nrApp, err := logger.NewRelicApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start new relic")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}

	hub := services.NewHub(log)
	mailer := services.NewMailer(cfg.Email.ResendAPIKey, cfg.Email.SendingDomain, cfg.Email.FromName, cfg.Server.BaseURL, log)

	var (
		events      services.ParcelPublisher
		notifier    services.Notifier
		jobs        *services.JobService
		redisClient *redis.Client
	)
	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()

	if cfg.Redis.URL != "" {
		redisClient, err = services.NewRedisClient(ctx, cfg.Redis.URL, nrApp != nil)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}

		redisEvents := services.NewRedisParcelEvents(redisClient, log)
		go func() {
			if err := redisEvents.Relay(relayCtx, hub); err != nil {
				log.Error().Err(err).Msg("parcel event relay stopped")
			}
		}()
		events = redisEvents

		jobs, err = services.NewJobService(cfg.Redis.URL, mailer, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create job service")
		}
		if err := jobs.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start job workers")
		}
		notifier = services.NewQueueNotifier(jobs, log)
	} else {
		log.Warn().Msg("redis not configured, parcel events and emails stay in-process")
		events = services.NewLocalParcelEvents(hub)
		notifier = services.NewDirectNotifier(mailer, log)
	}

	images, err := services.NewImageStore(cfg.Storage.S3Bucket, cfg.Storage.AWSRegion, cfg.Storage.UploadDir, cfg.Server.BaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize image storage")
	}

	router := routes.NewRouter(routes.Dependencies{
		Store:              st,
		Tokens:             utils.NewTokenManager(cfg.Auth.AccessTokenSecret, cfg.Auth.TokenTTL),
		Intents:            services.NewStripeIntents(cfg.Stripe.SecretKey),
		Notifier:           notifier,
		Events:             events,
		Hub:                hub,
		Images:             images,
		Logger:             log,
		NewRelic:           nrApp,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shut down")
	}
	stopRelay()
	if jobs != nil {
		jobs.Stop()
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to close store")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info().Msg("server exited")
}
