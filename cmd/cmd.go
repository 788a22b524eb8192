package cmd

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"collab-match-backend/internal/config"
	"collab-match-backend/internal/handlers"
	"collab-match-backend/internal/notify"
	"collab-match-backend/internal/repository"
	"collab-match-backend/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Initialize store
	store := repository.NewStore(nil)
	if cfg.Seed {
		if err := services.Seed(context.Background(), store); err != nil {
			log.Fatal().Err(err).Msg("Failed to load sample data")
		}
	}

	// Initialize notifiers
	notifier, closeNotifiers := buildNotifier(cfg)
	defer closeNotifiers()

	// Initialize services
	limits := services.Limits{
		TitleMax:         cfg.Limits.TitleMax,
		DescriptionMax:   cfg.Limits.DescriptionMax,
		BioMax:           cfg.Limits.BioMax,
		MessageMax:       cfg.Limits.MessageMax,
		ChatDefaultLimit: cfg.Limits.ChatDefaultLimit,
		ChatMaxLimit:     cfg.Limits.ChatMaxLimit,
	}
	collabService := services.NewCollaborationService(store)
	chatService := services.NewChatService(store, collabService, limits)
	matchService := services.NewMatchService(store, collabService, chatService, notifier)
	swipeService := services.NewSwipeService(store, matchService)
	taskService := services.NewTaskService(store, collabService, limits)
	userService := services.NewUserService(store.Users, cfg.JWT.Secret, limits)
	listingService := services.NewListingService(store, limits)
	avatarService, err := services.NewAvatarService(context.Background(), store.Users, services.S3Options{
		Region:    cfg.AWS.Region,
		Bucket:    cfg.AWS.S3Bucket,
		AccessKey: cfg.AWS.AccessKey,
		SecretKey: cfg.AWS.SecretKey,
		Endpoint:  cfg.AWS.Endpoint,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create avatar service")
	}

	if !userService.TokensEnabled() {
		log.Warn().Msg("No JWT secret configured, trusting X-User-ID header")
	}

	// Setup router
	router := handlers.Router{
		Users:          handlers.NewUserHandler(userService, avatarService),
		Listings:       handlers.NewListingHandler(listingService, swipeService),
		Matches:        handlers.NewMatchHandler(matchService, chatService, taskService),
		Tasks:          handlers.NewTaskHandler(taskService, matchService),
		System:         handlers.NewSystemHandler(store),
		Auth:           userService,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestLogging: true,
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// buildNotifier wires the enabled match notifiers and returns a cleanup func
func buildNotifier(cfg *config.Config) (notify.Notifier, func()) {
	var notifiers notify.Multi
	cleanup := func() {}

	if cfg.APNs.Enabled {
		apns, err := notify.NewAPNs(notify.APNsConfig{
			KeyFile:    cfg.APNs.KeyFile,
			KeyID:      cfg.APNs.KeyID,
			TeamID:     cfg.APNs.TeamID,
			Topic:      cfg.APNs.Topic,
			Production: cfg.APNs.Production,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs client")
		}
		notifiers = append(notifiers, apns)
		log.Info().Bool("production", cfg.APNs.Production).Msg("APNs notifications enabled")
	}

	if cfg.NATS.Enabled {
		js, err := notify.ConnectJetStream(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		notifiers = append(notifiers, js)
		cleanup = js.Close
		log.Info().Str("subject", js.Subject()).Msg("Match events enabled")
	}

	if len(notifiers) == 0 {
		return notify.Nop{}, cleanup
	}
	return notifiers, cleanup
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
