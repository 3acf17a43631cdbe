package v1

import (
	"github.com/gin-gonic/gin"

	"cosmovid/media-api/internal/config"
	"cosmovid/media-api/internal/interfaces/httpserver/handlers"
	"cosmovid/media-api/internal/interfaces/httpserver/middlewares"
)

// Routes encapsulates API route registration.
type Routes struct {
	handlers *handlers.Provider
	cfg      *config.Config
}

func NewRoutes(provider *handlers.Provider, cfg *config.Config) *Routes {
	return &Routes{handlers: provider, cfg: cfg}
}

// Register attaches all routes under the /api prefix. Each route family
// carries its own per-IP rate limit so the expensive extraction paths
// cannot starve the cheap ones.
func (r *Routes) Register(router gin.IRouter) {
	api := router.Group("/api")

	resolve := api.Group("/", middlewares.RateLimit(r.cfg.ResolveRateLimit))
	resolve.POST("/download", r.handlers.Resolve.TikTok)
	resolve.POST("/x", r.handlers.Resolve.X)
	resolve.POST("/instagram", r.handlers.Resolve.Instagram)
	resolve.POST("/instagram/stories", r.handlers.Resolve.Stories)

	stream := api.Group("/", middlewares.RateLimit(r.cfg.ProxyRateLimit))
	stream.GET("/download/proxy", r.handlers.Proxy.TikTok)
	stream.GET("/x/proxy", r.handlers.Proxy.X)
	stream.GET("/instagram/proxy", r.handlers.Proxy.Instagram)

	shrink := api.Group("/shrink", middlewares.RateLimit(r.cfg.ShrinkRateLimit))
	shrink.POST("", r.handlers.Shrink.Shrink)
	shrink.GET("/limit", r.handlers.Shrink.Limit)
}
