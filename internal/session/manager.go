package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/vancomm/cubehunt/internal/chain"
	"github.com/vancomm/cubehunt/internal/cubes"
	"github.com/vancomm/cubehunt/internal/repository"
)

const (
	DefaultCacheSize = 1024
	DefaultIdleTTL   = 30 * time.Minute
)

// Manager creates sessions and keeps the recently used ones in memory.
// Sessions idle for longer than the TTL, or pushed out by the size cap, are
// dropped and rebuilt from their seed, luck and stored bitmap on next use.
type Manager struct {
	// mu makes lookup-then-insert atomic; the cache has its own lock.
	mu       sync.Mutex
	sessions *expirable.LRU[int64, *Session]
	owners   *ownerLocks

	chain  chain.Client
	repo   Repo
	scores ScoreStore
	logger *slog.Logger
	now    func() time.Time
}

type options struct {
	cacheSize int
	idleTTL   time.Duration
}

type Option func(*options)

// WithCacheSize caps the number of live sessions.
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithIdleTTL sets how long an unused session stays in memory.
func WithIdleTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.idleTTL = d
		}
	}
}

func NewManager(logger *slog.Logger, repo Repo, scores ScoreStore, client chain.Client, opts ...Option) *Manager {
	o := options{cacheSize: DefaultCacheSize, idleTTL: DefaultIdleTTL}
	for _, opt := range opts {
		opt(&o)
	}
	evicted := func(id int64, _ *Session) {
		logger.Debug("session evicted", slog.Int64("session", id))
	}
	return &Manager{
		sessions: expirable.NewLRU[int64, *Session](o.cacheSize, evicted, o.idleTTL),
		owners:   newOwnerLocks(),
		chain:    client,
		repo:     repo,
		scores:   scores,
		logger:   logger,
		now:      time.Now,
	}
}

func (m *Manager) newSession(row *repository.GameSession, grid *cubes.Grid) *Session {
	s := &Session{
		ID:         row.GameSessionId,
		Seed:       row.Seed,
		LuckFactor: row.LuckFactor,
		StartedAt:  row.StartedAt,
		grid:       grid,
		owners:     m.owners,
		chain:      m.chain,
		repo:       m.repo,
		scores:     m.scores,
		logger:     m.logger,
		now:        m.now,
	}
	if row.Owner != nil {
		s.Owner = *row.Owner
	}
	return s
}

func (m *Manager) loadScore(ctx context.Context, s *Session) error {
	if s.Owner == "" {
		return nil
	}
	score, err := m.scores.LoadScore(ctx, s.Owner)
	if err != nil {
		return fmt.Errorf("unable to load score: %w", err)
	}
	s.score = score
	return nil
}

// cache stores s unless another copy of the same session got there first.
func (m *Manager) cache(s *Session) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.sessions.Get(s.ID); ok {
		m.sessions.Add(s.ID, cached)
		return cached
	}
	m.sessions.Add(s.ID, s)
	return s
}

// Touch keeps a session in use by a long-lived connection from going idle.
func (m *Manager) Touch(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.sessions.Get(s.ID); ok && cached != s {
		return
	}
	m.sessions.Add(s.ID, s)
}

// Create generates a new grid and merges the cells already revealed on chain.
// An unreachable chain is logged and the grid starts unrevealed.
func (m *Manager) Create(ctx context.Context, owner string, seed int64, luckFactor float64) (*Session, error) {
	grid := cubes.Generate(seed, luckFactor)

	if bitmap, err := m.chain.RevealedBitmap(ctx); err != nil {
		m.logger.Warn("unable to fetch revealed cells", slog.Any("error", err))
	} else {
		grid.Reconcile(bitmap)
	}

	params := repository.CreateGameSessionParams{
		Seed:       seed,
		LuckFactor: luckFactor,
		Revealed:   grid.Bitmap(),
	}
	if owner != "" {
		params.Owner = &owner
	}
	row, err := m.repo.CreateGameSession(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("unable to create game session: %w", err)
	}

	s := m.newSession(row, grid)
	if err := m.loadScore(ctx, s); err != nil {
		return nil, err
	}

	m.logger.Info("session created",
		slog.Int64("session", s.ID),
		slog.String("owner", owner),
		slog.Int64("seed", seed),
		slog.Float64("luck_factor", luckFactor),
	)
	return m.cache(s), nil
}

func (m *Manager) Get(ctx context.Context, id int64) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions.Get(id)
	if ok {
		m.sessions.Add(id, s)
	}
	m.mu.Unlock()
	if ok {
		return s, nil
	}

	row, err := m.repo.FetchGameSession(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("unable to fetch game session: %w", err)
	}

	grid := cubes.Generate(row.Seed, row.LuckFactor)
	grid.Reconcile(row.Revealed)

	minted, err := m.repo.SessionArtifacts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch artifacts: %w", err)
	}
	for _, a := range minted {
		cell, err := grid.Cell(a.CellId)
		if err != nil {
			m.logger.Warn("stored artifact outside grid", slog.String("artifact", a.ArtifactId))
			continue
		}
		artifact := a.Artifact()
		cell.Artifact = &artifact
	}

	s = m.newSession(row, grid)
	if err := m.loadScore(ctx, s); err != nil {
		return nil, err
	}
	return m.cache(s), nil
}

func (m *Manager) Score(ctx context.Context, owner string) (cubes.ScoreState, error) {
	return m.scores.LoadScore(ctx, owner)
}

// Forget drops a session from the cache.
func (m *Manager) Forget(id int64) {
	m.sessions.Remove(id)
}

// Cached is the number of sessions held in memory.
func (m *Manager) Cached() int {
	return m.sessions.Len()
}
