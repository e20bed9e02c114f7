package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"football-analysis/config"
	"football-analysis/footballapi"
	"football-analysis/handlers"
	"football-analysis/middleware"
	"football-analysis/services"
	"football-analysis/store"
	"football-analysis/store/memstore"
	"football-analysis/utils"
	"football-analysis/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}

	media, err := openMedia(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize media storage")
	}

	statsService := services.NewStatsService(st)
	matchService := services.NewMatchService(st, statsService, footballapi.New(cfg.Football))
	predictionService := services.NewPredictionService(st, statsService)
	rankingService := services.NewRankingService(st)
	postService := services.NewPostService(st, media)
	contentService := services.NewContentService(st)
	teamService := services.NewTeamService(st)

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	origins := make([]string, 0)
	for _, origin := range strings.Split(cfg.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	allowOrigins := strings.Join(origins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Name",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: allowOrigins != "*", // fiber refuses credentials with a wildcard origin
		MaxAge:           86400,
	}))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.UserContextMiddleware())

	admin := app.Group("/admin", middleware.AdminTokenMiddleware(cfg.AdminToken))

	handlers.SetupHealthRoutes(app, cfg.StorageDriver)
	handlers.SetupMatchRoutes(app, admin, matchService, predictionService)
	handlers.SetupPredictionRoutes(app, admin, predictionService, statsService, rankingService)
	handlers.SetupPostRoutes(app, postService, contentService)
	handlers.SetupCatalogRoutes(app, admin, contentService, teamService)

	if !cfg.R2.Enabled() {
		app.Static("/uploads", cfg.UploadDir)
	}

	syncWorker := workers.NewFixtureSyncWorker(matchService, cfg.Jobs.FixtureSyncInterval)
	syncWorker.Start(ctx)

	scheduler := services.NewScheduler(matchService, statsService, postService)
	if err := scheduler.Start(ctx, cfg.Jobs); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Str("origins", allowOrigins).
		Bool("r2", cfg.R2.Enabled()).Msg("✅ server running")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown")
	}
	select {
	case <-syncWorker.Done():
	case <-shutdownCtx.Done():
		log.Warn().Msg("fixture sync worker did not stop in time")
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return memstore.New(), nil
	}
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(db); err != nil {
		return nil, err
	}
	return store.NewGormStore(db), nil
}

func openMedia(ctx context.Context, cfg *config.Config) (utils.MediaStore, error) {
	if cfg.R2.Enabled() {
		return utils.NewR2MediaStore(ctx, cfg.R2)
	}
	return utils.NewLocalMediaStore(cfg.UploadDir, "/uploads")
}
