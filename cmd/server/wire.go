//go:build wireinject

package main

import (
	"github.com/google/wire"

	"cosmovid/media-api/internal/config"
	"cosmovid/media-api/internal/domain/proxy"
	"cosmovid/media-api/internal/domain/resolve"
	"cosmovid/media-api/internal/domain/shrink"
	"cosmovid/media-api/internal/infrastructure/extractor"
	"cosmovid/media-api/internal/infrastructure/logger"
	"cosmovid/media-api/internal/infrastructure/transcoder"
	"cosmovid/media-api/internal/interfaces/httpserver"
	"cosmovid/media-api/internal/interfaces/httpserver/handlers"
)

var domainSet = wire.NewSet(
	extractor.New,
	wire.Bind(new(resolve.Extractor), new(*extractor.YtDlp)),
	provideCache,
	resolve.NewService,
	proxy.NewService,
	transcoder.New,
	wire.Bind(new(shrink.Transcoder), new(*transcoder.Ffmpeg)),
	shrink.NewService,
)

// BuildApplication assembles the media API with Wire.
func BuildApplication() (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		domainSet,
		handlers.NewProvider,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func provideCache(cfg *config.Config) *resolve.Cache {
	return resolve.NewCache(cfg.CacheTTL)
}
