// Package app wires configuration, storage and services into the pieces the
// binaries run.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/frontierlab/labdesk/internal/config"
	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/render"
	"github.com/frontierlab/labdesk/internal/repository"
	"github.com/frontierlab/labdesk/internal/repository/cached"
	"github.com/frontierlab/labdesk/internal/repository/postgres"
	"github.com/frontierlab/labdesk/internal/repository/redis"
	"github.com/frontierlab/labdesk/internal/service/catalog"
	"github.com/frontierlab/labdesk/internal/service/order"
	"github.com/frontierlab/labdesk/internal/service/receipt"
	"github.com/frontierlab/labdesk/internal/service/report"
	"github.com/frontierlab/labdesk/internal/service/result"
	"github.com/frontierlab/labdesk/internal/service/visit"
	"github.com/frontierlab/labdesk/pkg/metrics"
	"github.com/frontierlab/labdesk/pkg/security"
)

const namespace = "labdesk"

type App struct {
	Config   *config.Config
	DB       *sqlx.DB
	Redis    *goredis.Client
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Catalog *catalog.Service
	Orders  *order.Service
	Visits  *visit.Service
	Results *result.Service
	Reports *report.Service
	Receipt *receipt.Service
}

// New connects to the database (and redis when it backs the sequences) and
// builds every service.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, DB: db}

	seq, err := a.sequence(ctx, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	renderer, err := render.New(cfg.Lab.Currency)
	if err != nil {
		a.Close()
		return nil, err
	}

	signer, err := security.NewSigner(cfg.Report.VerificationKey)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid report verification key: %w", err)
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.New(namespace, a.Registry)

	cacheCfg := cached.Config{TTL: cfg.Cache.TTL, CleanupInterval: cfg.Cache.CleanupInterval}
	labs := cached.NewLabRepository(postgres.NewLabRepository(db), cacheCfg)
	doctors := cached.NewDoctorRepository(postgres.NewDoctorRepository(db), cacheCfg)

	lab := model.LabIdentity{Name: cfg.Lab.Name, Address: cfg.Lab.Address, Phone: cfg.Lab.Phone}
	loc := cfg.Lab.Location()

	a.Catalog = catalog.NewService(postgres.NewCatalogRepository(db))
	a.Orders = order.NewService(a.Catalog)
	a.Visits = visit.NewService(
		postgres.NewVisitRepository(db, seq),
		a.Orders,
		doctors,
		labs,
		a.Metrics,
		logger,
		visit.Options{Lab: lab, Location: loc},
	)
	a.Results = result.NewService(postgres.NewResultRepository(db, seq), a.Metrics, logger)
	a.Reports = report.NewService(
		postgres.NewReportRepository(db),
		labs,
		signer,
		renderer,
		a.Metrics,
		logger,
		report.Options{Lab: lab, Location: loc, QRSize: cfg.Report.QRSize},
	)
	a.Receipt = receipt.NewService(renderer, a.Metrics, cfg.Lab.DefaultReturnTime)

	return a, nil
}

func (a *App) sequence(ctx context.Context, logger zerolog.Logger) (repository.Sequence, error) {
	if a.Config.Sequence.Backend != "redis" {
		return postgres.NewSequence(a.DB), nil
	}

	client, err := redis.NewClient(ctx, a.Config.Redis)
	if err != nil {
		return nil, err
	}
	a.Redis = client
	logger.Info().Msg("Using redis id sequences")
	return redis.NewSequence(client, a.DB, logger), nil
}

// Ping checks the database and, when configured, redis.
func (a *App) Ping(ctx context.Context) error {
	if err := a.DB.PingContext(ctx); err != nil {
		return err
	}
	if a.Redis != nil {
		return a.Redis.Ping(ctx).Err()
	}
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
