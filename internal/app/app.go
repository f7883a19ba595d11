package app

import (
	"fmt"
	"net/http"

	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"github.com/veloleague/veloleague/external/firstcycling"
	"github.com/veloleague/veloleague/internal/config"
	"github.com/veloleague/veloleague/internal/domain/auction"
	"github.com/veloleague/veloleague/internal/domain/game"
	"github.com/veloleague/veloleague/internal/domain/race"
	"github.com/veloleague/veloleague/internal/domain/rider"
	"github.com/veloleague/veloleague/internal/domain/roster"
	"github.com/veloleague/veloleague/internal/infrastructure/repository/memory"
	"github.com/veloleague/veloleague/internal/infrastructure/repository/postgres"
	"github.com/veloleague/veloleague/internal/interfaces/httpapi"
	"github.com/veloleague/veloleague/internal/platform/id"
	"github.com/veloleague/veloleague/internal/platform/logging"
	"github.com/veloleague/veloleague/internal/platform/resilience"
	"github.com/veloleague/veloleague/internal/usecase"

	_ "github.com/lib/pq"
)

type repositories struct {
	games        game.Repository
	participants game.ParticipantRepository
	bids         auction.BidRepository
	periods      auction.PeriodRepository
	rosters      roster.Repository
	catalog      rider.Catalog
	feed         race.ResultFeed
	close        func() error
}

// NewHTTPServer wires storage, services and the router into a ready
// http.Server. The returned cleanup releases the database handle and
// must run after Shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	ids := id.NewRandomGenerator()

	bidSvc := usecase.NewBidService(repos.games, repos.bids, repos.periods, repos.rosters, repos.catalog, ids, logger)
	settlementSvc := usecase.NewSettlementService(repos.games, repos.participants, repos.bids, repos.periods, repos.rosters, ids, logger).
		WithMaxWorkers(cfg.SettlementWorkers)
	pointsSvc := usecase.NewPointsService(repos.games, repos.participants, repos.rosters, repos.catalog, repos.feed, logger).
		WithMaxWorkers(cfg.PointsWorkers)
	reconciliationSvc := usecase.NewReconciliationService(repos.games, repos.participants, repos.rosters, logger)

	handler := httpapi.NewHandler(bidSvc, settlementSvc, pointsSvc, reconciliationSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = repos.close()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, repos.close, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, error) {
	feed := buildResultFeed(cfg, logger)

	if cfg.StorageDriver == config.StorageMemory {
		logger.Info("storage driver", "driver", config.StorageMemory)
		return repositories{
			games:        memory.NewGameRepository(memory.SeedGames()),
			participants: memory.NewParticipantRepository(),
			bids:         memory.NewBidRepository(),
			periods:      memory.NewPeriodRepository(memory.SeedPeriods()),
			rosters:      memory.NewRosterRepository(),
			catalog:      memory.NewRiderCatalog(memory.SeedRiders(), memory.SeedSeasonRankings()),
			feed:         feed,
			close:        func() error { return nil },
		}, nil
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return repositories{}, fmt.Errorf("connect postgres: %w", err)
	}

	logger.Info("storage driver", "driver", config.StoragePostgres, "db", dbNameFromURL(cfg.DBURL))
	return repositories{
		games:        postgres.NewGameRepository(db),
		participants: postgres.NewParticipantRepository(db),
		bids:         postgres.NewBidRepository(db),
		periods:      postgres.NewPeriodRepository(db),
		rosters:      postgres.NewRosterRepository(db),
		catalog:      postgres.NewRiderCatalog(db),
		feed:         feed,
		close:        db.Close,
	}, nil
}

func buildResultFeed(cfg config.Config, logger *logging.Logger) race.ResultFeed {
	if !cfg.FirstCyclingEnabled {
		logger.Info("result feed", "mode", "seeded", "reason", "FIRSTCYCLING_ENABLED=false")
		return memory.NewStageResultFeed(memory.SeedStageResults())
	}

	logger.Info("result feed", "mode", "firstcycling", "base_url", cfg.FirstCyclingBaseURL)
	return firstcycling.NewClient(firstcycling.ClientConfig{
		BaseURL:    cfg.FirstCyclingBaseURL,
		Timeout:    cfg.FirstCyclingTimeout,
		MaxRetries: cfg.FirstCyclingMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FirstCyclingCircuitEnabled,
			FailureThreshold: cfg.FirstCyclingCircuitFailureCount,
			OpenTimeout:      cfg.FirstCyclingCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FirstCyclingCircuitHalfOpenMaxRq,
		},
	})
}
