package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/frontierlab/labdesk/internal/app"
	"github.com/frontierlab/labdesk/internal/config"
	catalogHandler "github.com/frontierlab/labdesk/internal/handler/catalog"
	"github.com/frontierlab/labdesk/internal/handler/health"
	promHandler "github.com/frontierlab/labdesk/internal/handler/prometheus"
	receiptHandler "github.com/frontierlab/labdesk/internal/handler/receipt"
	reportHandler "github.com/frontierlab/labdesk/internal/handler/report"
	resultHandler "github.com/frontierlab/labdesk/internal/handler/result"
	visitHandler "github.com/frontierlab/labdesk/internal/handler/visit"
	"github.com/frontierlab/labdesk/internal/middleware"
	"github.com/frontierlab/labdesk/internal/router"
	"github.com/frontierlab/labdesk/pkg/auth"
	"github.com/frontierlab/labdesk/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	a, err := app.New(ctx, cfg, lg)
	cancel()
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to initialize")
	}
	defer a.Close()

	checks := map[string]health.Check{"database": a.DB.PingContext}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}

	r := router.New(
		router.Config{
			RequestTimeout: cfg.Server.RequestTimeout,
			RateLimit:      cfg.RateLimit.Enabled,
			RateRPS:        cfg.RateLimit.RequestsPerSecond,
			RateBurst:      cfg.RateLimit.Burst,
		},
		middleware.NewOperatorAuth(auth.NewTokenService(cfg.Auth.Secret), cfg.Auth.Enabled),
		promHandler.New("labdesk", a.Registry),
		health.NewHandler(checks),
		catalogHandler.NewHandler(a.Catalog, a.Orders),
		visitHandler.NewHandler(a.Visits),
		resultHandler.NewHandler(a.Results),
		reportHandler.NewHandler(a.Reports),
		receiptHandler.NewHandler(a.Receipt, a.Visits),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		lg.Info().Int("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info().Msg("shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("server forced to shutdown")
	}

	lg.Info().Msg("server exited properly")
}
