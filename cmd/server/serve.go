package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/cricket-tournament-service/internal/config"
	"github.com/maxviazov/cricket-tournament-service/internal/handler"
	"github.com/maxviazov/cricket-tournament-service/internal/metrics"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
	"github.com/maxviazov/cricket-tournament-service/internal/repository/memory"
	"github.com/maxviazov/cricket-tournament-service/internal/repository/postgres"
	"github.com/maxviazov/cricket-tournament-service/internal/service"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// backend bundles whichever storage driver the config selected.
type backend struct {
	stores service.Stores
	pinger repository.Pinger
	close  func()
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (backend, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		s := memory.NewStore()
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return backend{
			stores: service.Stores{Teams: s.Teams(), Players: s.Players(), Matches: s.Matches(), Tx: s, Seq: s},
			pinger: s,
			close:  func() {},
		}, nil
	}

	pool, err := postgres.Connect(ctx, cfg.Postgres, log)
	if err != nil {
		return backend{}, fmt.Errorf("postgres connection failed: %w", err)
	}
	if cfg.Postgres.MigrateOnStart {
		if err := postgres.Migrate(ctx, pool, postgres.MigrateUp, log); err != nil {
			pool.Close()
			return backend{}, err
		}
	}
	return backend{
		stores: service.Stores{
			Teams:   postgres.NewTeamRepository(pool),
			Players: postgres.NewPlayerRepository(pool),
			Matches: postgres.NewMatchRepository(pool),
			Tx:      postgres.NewTxManager(pool),
			Seq:     postgres.NewSequenceAllocator(pool),
		},
		pinger: postgres.NewPinger(pool),
		close:  pool.Close,
	}, nil
}

func newEngine(cfg *config.Config, b backend, rec *metrics.Recorder, log zerolog.Logger) *gin.Engine {
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	roster := service.NewRosterManager(b.stores.Teams, b.stores.Players, rec, log)
	teamSvc := service.NewTeamService(b.stores, roster, log)
	playerSvc := service.NewPlayerService(b.stores, roster, log)
	matchSvc := service.NewMatchService(b.stores, service.NewResultResolver(b.stores.Players), log)

	r := gin.New()
	r.Use(
		handler.RequestID(),
		handler.Recovery(log),
		handler.AccessLog(log),
		rec.Middleware(),
		handler.RateLimit(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
	)
	r.GET("/metrics", gin.WrapH(rec.Handler()))
	handler.Register(r, b.pinger, teamSvc, playerSvc, matchSvc)
	return r
}

func runServe(parent context.Context, configPath string) error {
	cfg, log, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	rec := metrics.NewRecorder("cricket")
	corsMW := cors.New(cors.Options{
		AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", handler.RequestIDHeader},
		ExposedHeaders: []string{handler.RequestIDHeader},
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      corsMW.Handler(newEngine(cfg, b, rec, log)),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func runMigrate(ctx context.Context, configPath, command string) error {
	cfg, log, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires storage.driver=%s, got %q", config.DriverPostgres, cfg.Storage.Driver)
	}
	pool, err := postgres.Connect(ctx, cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer pool.Close()
	return postgres.Migrate(ctx, pool, command, log)
}
