package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/config"
	"cosmovid/media-api/internal/domain/proxy"
	"cosmovid/media-api/internal/domain/resolve"
	"cosmovid/media-api/internal/domain/shrink"
	"cosmovid/media-api/internal/infrastructure/extractor"
	"cosmovid/media-api/internal/infrastructure/logger"
	"cosmovid/media-api/internal/infrastructure/observability"
	"cosmovid/media-api/internal/infrastructure/transcoder"
	"cosmovid/media-api/internal/interfaces/httpserver"
	"cosmovid/media-api/internal/interfaces/httpserver/handlers"
)

// @title Media API
// @version 1.0
// @description Social media download and compression service
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	ytdlp := extractor.New(cfg, log)
	cache := resolve.NewCache(cfg.CacheTTL)
	resolveService := resolve.NewService(cfg, ytdlp, cache, log)
	proxyService := proxy.NewService(cfg, ytdlp, log)
	ffmpeg := transcoder.New(cfg, log)
	shrinkService := shrink.NewService(cfg, ffmpeg, log)

	handlerProvider := handlers.NewProvider(resolveService, proxyService, shrinkService, log)
	httpServer := httpserver.New(cfg, log, handlerProvider)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
