package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrocontrol_app_go/config"
	"agrocontrol_app_go/db"
	"agrocontrol_app_go/handlers"
	"agrocontrol_app_go/middleware"
	"agrocontrol_app_go/models"
	"agrocontrol_app_go/pkg/logger"
	"agrocontrol_app_go/services"
	"agrocontrol_app_go/services/i18n"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.Must(logger.New(cfg.Environment))
	defer log.Sync() //nolint:errcheck

	if _, err := i18n.Load(); err != nil {
		log.Fatal("Failed to load translations", zap.Error(err))
	}
	i18n.SetDefault(cfg.DefaultLocale)

	// The single shared connection; nothing works without it
	gw := db.NewGateway(db.OpenerFor(cfg), cfg.DBDriver, logger.Named(log, "db"))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := gw.Connect(ctx); err != nil {
		cancel()
		log.Fatal("No se pudo conectar a la base de datos", zap.Error(err))
	}
	defer gw.Close()

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(gw.GORM(), models.All()...); err != nil {
			cancel()
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	procs, err := gw.ProbeProcedures(ctx)
	cancel()
	if err != nil {
		log.Warn("Stored procedure probe failed, using SQL statements", zap.Error(err))
	} else {
		log.Info("Stored procedures detected", zap.Int("count", len(procs)))
	}

	// Models, controllers and views
	opts := services.EntityOptions{
		InUseMarkers: cfg.InUseMarkers,
		Audit:        cfg.AuditLog,
		Log:          logger.Named(log, "services"),
	}
	storage := services.NewStorage(cfg, logger.Named(log, "storage"))
	viewLog := logger.Named(log, "handlers")

	uploadLimiter := middleware.NewUploadRateLimiter()
	defer uploadLimiter.Stop()
	apiLimiter := middleware.NewAPIRateLimiter()
	defer apiLimiter.Stop()

	tabs := []handlers.Tab{
		{Plural: "fincas", View: handlers.NewFincaView(services.NewFincaService(gw, opts), cfg.Theme, viewLog)},
		{Plural: "cultivos", View: handlers.NewCultivoView(services.NewCultivoService(gw, storage, opts), cfg.Theme, uploadLimiter.Middleware(), viewLog)},
		{Plural: "parcelas", View: handlers.NewEntityView(services.NewParcelaService(gw, opts), cfg.Theme, viewLog)},
		{Plural: "clientes", View: handlers.NewEntityView(services.NewClienteService(gw, opts), cfg.Theme, viewLog)},
		{Plural: "hoteles", View: handlers.NewEntityView(services.NewHotelService(gw, opts), cfg.Theme, viewLog)},
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				log.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))
	e.Use(echomiddleware.BodyLimit("6M"))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	e.Use(middleware.Locale(cfg))
	e.Use(middleware.AuditContext())

	// Local photo storage is served from disk
	e.Static("/"+cfg.UploadDir, cfg.UploadDir)

	e.GET("/health", handlers.HealthHandler(gw))

	api := e.Group("/api")
	api.Use(apiLimiter.Middleware())
	handlers.RegisterTabs(api, tabs...)

	// Start server
	go func() {
		log.Info("Server starting", zap.String("port", cfg.ServerPort), zap.String("environment", cfg.Environment))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	services.WaitForAuditEvents()
	log.Info("Server stopped")
}
