package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/commexhq/comms-api/internal/handler"
	"github.com/commexhq/comms-api/internal/middleware"
)

// Handler is anything that mounts routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	ops      *handler.Handler
	statusH  Handler
	typeH    Handler
	commH    Handler
	memberH  Handler
	eventH   Handler
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type Config struct {
	JWTSecret  string
	Timeout    time.Duration
	RateLimit  middleware.RateLimitConfig
	CORSConfig middleware.CORSConfig
	Namespace  string
}

func NewRouter(
	ops *handler.Handler,
	statusH Handler,
	typeH Handler,
	commH Handler,
	memberH Handler,
	eventH Handler,
	logger zerolog.Logger,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:  engine,
		ops:     ops,
		statusH: statusH,
		typeH:   typeH,
		commH:   commH,
		memberH: memberH,
		eventH:  eventH,
		metrics: initRouterMetrics(config.Namespace),
	}

	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.ErrorHandler(logger),
		r.metricsMiddleware(),
		middleware.Timeout(config.Timeout),
		middleware.CORS(config.CORSConfig),
		middleware.RateLimit(config.RateLimit),
		middleware.Identity(config.JWTSecret),
	)

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.ops.MetricsHandler)

	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)

	r.statusH.RegisterRoutes(api)
	r.typeH.RegisterRoutes(api)
	r.commH.RegisterRoutes(api)
	r.memberH.RegisterRoutes(api)
	r.eventH.RegisterRoutes(api)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.ops.LivenessCheck)
		health.GET("/ready", r.ops.ReadinessCheck)
		health.GET("/metrics", r.ops.MetricsHandler)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(namespace string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_errors_total",
				Help:      "Total number of HTTP error responses",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
