package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-calendar/internal/middleware"
)

const apiVersion = "1.0"

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// MetricsHandler records request metrics and serves the registry.
type MetricsHandler interface {
	Middleware() gin.HandlerFunc
	Handler() gin.HandlerFunc
}

type Router struct {
	engine       *gin.Engine
	healthH      Handler
	authH        Handler
	appointmentH Handler
	calendarH    Handler
	metricsH     MetricsHandler
}

type RouterConfig struct {
	Mode           string
	RequestTimeout time.Duration
	// RateLimit of zero disables rate limiting.
	RateLimit   rate.Limit
	RateBurst   int
	MaxBodySize int64
	// TrustedProxies may set X-Forwarded-For. Empty trusts none, so the
	// rate limiter and login lockout key on the peer address.
	TrustedProxies []string
	CORSConfig     middleware.CORSConfig
	Security       middleware.SecurityConfig
}

func NewRouter(
	healthH Handler,
	authH Handler,
	appointmentH Handler,
	calendarH Handler,
	metricsH MetricsHandler,
	config RouterConfig,
) *Router {
	if config.Mode == "" {
		config.Mode = gin.ReleaseMode
	}
	gin.SetMode(config.Mode)
	middleware.RegisterValidators()

	engine := gin.New()
	if err := engine.SetTrustedProxies(config.TrustedProxies); err != nil {
		log.Error().Err(err).Msg("invalid trusted proxies, ignoring forwarded headers")
		_ = engine.SetTrustedProxies(nil)
	}

	r := &Router{
		engine:       engine,
		healthH:      healthH,
		authH:        authH,
		appointmentH: appointmentH,
		calendarH:    calendarH,
		metricsH:     metricsH,
	}

	// Add core middlewares
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		metricsH.Middleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(config.Security),
		middleware.SizeLimit(config.MaxBodySize),
	)

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", apiVersion)
		c.Next()
	})

	r.healthH.RegisterRoutes(api)
	api.GET("/health/metrics", r.metricsH.Handler())

	r.authH.RegisterRoutes(api)

	// Calendar data changes with every intent.
	data := api.Group("")
	data.Use(middleware.NoStore())
	r.appointmentH.RegisterRoutes(data)
	r.calendarH.RegisterRoutes(data)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
