package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/config"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/service"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger func(ctx context.Context) error

type RouterDeps struct {
	Config  *config.Config
	Log     *zap.Logger
	Metrics *metrics.Collector
	// Gatherer backs GET /metrics; nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	Ping     Pinger

	Patients     *service.PatientService
	Appointments *service.AppointmentService
	Results      *service.ResultService
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Config.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Tracing(d.Config.Tracing.ServiceName),
		middleware.Metrics(d.Metrics),
		middleware.AccessLog(d.Log),
		middleware.CORS(d.Config.CORS),
		// Innermost, so a recovered panic is seen as a 500 by the middleware above.
		middleware.Recovery(d.Log),
	)
	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not found")
	})

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.GET("/", root(d.Config.App))
	r.GET("/health", health(d.Config.App))
	r.GET("/ready", ready(d.Ping, d.Log))
	r.GET("/metrics", gin.WrapH(metrics.HandlerFor(gatherer)))

	api := r.Group(d.Config.API.Prefix)
	if d.Config.RateLimit.RequestsPerSecond > 0 {
		api.Use(middleware.RateLimit(middleware.NewIPRateLimiter(
			d.Config.RateLimit.RequestsPerSecond,
			d.Config.RateLimit.BurstSize,
		)))
	}

	maxPage := d.Config.API.MaxPageSize
	NewPatientHandler(d.Patients, maxPage, d.Log).Register(api)
	NewAppointmentHandler(d.Appointments, maxPage, d.Log).Register(api)
	NewResultHandler(d.Results, maxPage, d.Log).Register(api)

	return r
}

func root(app config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to " + app.Name,
			"version": app.Version,
			"health":  "/health",
		})
	}
}

func health(app config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"app":     app.Name,
			"version": app.Version,
		})
	}
}

func ready(ping Pinger, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if ping != nil {
			if err := ping(ctx); err != nil {
				log.Warn("readiness check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "database": "ok"})
	}
}
