package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vancomm/cubehunt/internal/chain"
	"github.com/vancomm/cubehunt/internal/config"
	"github.com/vancomm/cubehunt/internal/database"
	"github.com/vancomm/cubehunt/internal/handlers"
	"github.com/vancomm/cubehunt/internal/middleware"
	"github.com/vancomm/cubehunt/internal/repository"
	"github.com/vancomm/cubehunt/internal/session"
	"github.com/vancomm/cubehunt/internal/store"
)

// records is what both the PostgreSQL queries and the in-process repository
// provide.
type records interface {
	session.Repo
	session.ScoreStore
	handlers.Leaderboard
	handlers.MintRecords
}

type App struct {
	logger     *slog.Logger
	router     *http.ServeMux
	migrations fs.FS

	chain       chain.Client
	records     records
	scores      session.ScoreStore
	leaderboard handlers.Leaderboard
	ws          *config.WebSocket
	luckFactor  float64
	cache       []session.Option

	closers []func()
}

func New(logger *slog.Logger, migrations fs.FS) *App {
	return &App{
		logger:     logger,
		router:     http.NewServeMux(),
		migrations: migrations,
	}
}

func (a *App) setupChain() error {
	if config.ChainOffline() {
		a.logger.Warn("chain offline, using in-process state")
		a.chain = chain.NewMemory()
		return nil
	}
	cfg, err := config.NewChain()
	if err != nil {
		return err
	}
	a.chain = chain.NewRPC(cfg.RPCURL, chain.Objects{
		PackageID:   cfg.PackageID,
		GameStateID: cfg.GameStateID,
		Module:      cfg.Module,
		GasBudget:   cfg.GasBudget,
	}, chain.NewRelay(cfg.RelayURL, cfg.Timeout), cfg.Timeout)
	a.logger.Info("chain configured",
		slog.String("rpc", cfg.RPCURL),
		slog.String("package", cfg.PackageID),
	)
	return nil
}

func (a *App) setupRecords(ctx context.Context) error {
	if _, err := config.DbURL(); err != nil && config.ChainOffline() {
		a.logger.Warn("no database configured, keeping records in memory")
		a.records = repository.NewMemory()
		return nil
	}
	pool, migrator, err := database.ConnectAndMigrate(ctx, a.migrations)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if version, dirty, err := migrator.Version(); err == nil {
		a.logger.Info("database migrated", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	}
	a.records = repository.New(pool)
	return nil
}

func (a *App) setupScores(ctx context.Context) error {
	a.scores = a.records
	a.leaderboard = a.records

	path, ok := config.ScoresSQLitePath()
	if !ok {
		return nil
	}
	s, err := store.Open(ctx, path, "scores")
	if err != nil {
		return fmt.Errorf("unable to open score store: %w", err)
	}
	a.closers = append(a.closers, func() { s.Close() })
	scores := store.NewScores(s)
	a.scores = scores
	a.leaderboard = scores
	a.logger.Info("scores kept in sqlite", slog.String("path", path))
	return nil
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *App) Start(ctx context.Context) error {
	defer a.close()

	if err := a.setupChain(); err != nil {
		return err
	}
	if err := a.setupRecords(ctx); err != nil {
		return err
	}
	if err := a.setupScores(ctx); err != nil {
		return err
	}

	luck, err := config.LuckFactor()
	if err != nil {
		return err
	}
	a.luckFactor = luck

	size, ttl, err := config.SessionCache()
	if err != nil {
		return err
	}
	a.cache = []session.Option{session.WithCacheSize(size), session.WithIdleTTL(ttl)}

	ws, err := config.NewWebSocket()
	if err != nil {
		return err
	}
	a.ws = ws

	a.loadRoutes()

	addr := ":" + config.Port()
	server := &http.Server{
		Addr: addr,
		Handler: middleware.Wrap(
			a.router,
			middleware.Recover(a.logger),
			middleware.Logging(a.logger),
			middleware.Owner(),
			middleware.Cors(a.ws.Origins...),
		),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
