package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	promHandler "github.com/frontierlab/labdesk/internal/handler/prometheus"
	"github.com/frontierlab/labdesk/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RequestTimeout time.Duration
	RateLimit      bool
	RateRPS        float64
	RateBurst      int
}

type Router struct {
	engine *gin.Engine
}

// New builds the engine: ops endpoints at the root, the lab API under
// /api/v1 behind operator authentication.
func New(
	cfg Config,
	auth *middleware.OperatorAuth,
	metrics *promHandler.Handler,
	health Handler,
	api ...Handler,
) *Router {
	engine := gin.New()
	middleware.RegisterValidators()

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		metrics.Middleware(),
		middleware.ErrorHandler(),
		middleware.Timeout(cfg.RequestTimeout),
	)

	if cfg.RateLimit {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateRPS),
			Burst: cfg.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	engine.GET("/metrics", metrics.Handler())
	health.RegisterRoutes(&engine.RouterGroup)

	v1 := engine.Group("/api/v1")
	v1.Use(auth.Authenticate())
	for _, h := range api {
		h.RegisterRoutes(v1)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
