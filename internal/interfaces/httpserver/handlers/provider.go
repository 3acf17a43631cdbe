package handlers

import (
	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/domain/proxy"
	"cosmovid/media-api/internal/domain/resolve"
	"cosmovid/media-api/internal/domain/shrink"
)

// Provider wires HTTP handlers.
type Provider struct {
	Resolve *ResolveHandler
	Proxy   *ProxyHandler
	Shrink  *ShrinkHandler
}

func NewProvider(resolveSvc *resolve.Service, proxySvc *proxy.Service, shrinkSvc *shrink.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Resolve: NewResolveHandler(resolveSvc, log),
		Proxy:   NewProxyHandler(proxySvc, log),
		Shrink:  NewShrinkHandler(shrinkSvc, log),
	}
}
