package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nordiqa/partnerops/internal/config"
	"github.com/nordiqa/partnerops/internal/consumption"
	"github.com/nordiqa/partnerops/internal/db"
	"github.com/nordiqa/partnerops/internal/forecast"
	"github.com/nordiqa/partnerops/internal/http/api/admin"
	"github.com/nordiqa/partnerops/internal/http/api/front"
	"github.com/nordiqa/partnerops/internal/logging"
	"github.com/nordiqa/partnerops/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(config.ResolveConfigPath(configPath))
	if errLoad != nil {
		return errLoad
	}
	logging.Setup(cfg.Log)

	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	return db.Migrate(conn)
}

// RunServer boots the portal API server.
func RunServer(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(config.ResolveConfigPath(configPath))
	if errLoad != nil {
		return errLoad
	}
	logging.Setup(cfg.Log)

	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	if errRefresh := settings.Refresh(ctx, conn); errRefresh != nil {
		log.WithError(errRefresh).Warn("app: initial settings refresh failed")
	}

	var cache *redis.Client
	if cfg.Redis.Addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if errPing := cache.Ping(pingCtx).Err(); errPing != nil {
			log.WithError(errPing).Warn("app: redis unreachable, forecast cache disabled")
			cache = nil
		}
		cancel()
	}

	forecastSvc := forecast.NewService(conn, cache)
	recorder := consumption.NewRecorder(conn)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogMiddleware())
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	admin.RegisterAdminRoutes(engine, conn, cfg.JWT, forecastSvc)
	front.RegisterFrontRoutes(engine, conn, cfg.JWT, forecastSvc, recorder)

	if poller := forecast.NewPoller(conn, forecastSvc); poller != nil {
		poller.Start(ctx)
	}

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}

// requestLogMiddleware logs each request with method, path and status.
func requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}
