// Package session ties one generated grid to its owner's score, the chain and
// persistence.
package session

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vancomm/cubehunt/internal/chain"
	"github.com/vancomm/cubehunt/internal/cubes"
	"github.com/vancomm/cubehunt/internal/repository"
)

var (
	ErrRevealPending = errors.New("another reveal is in flight")
	ErrNoOwner       = errors.New("session has no owner")
	ErrChainRejected = errors.New("chain rejected the reveal")
	ErrNotFound      = errors.New("session not found")
)

type ScoreStore interface {
	LoadScore(ctx context.Context, owner string) (cubes.ScoreState, error)
	SaveScore(ctx context.Context, owner string, state cubes.ScoreState) error
}

type Repo interface {
	CreateGameSession(ctx context.Context, params repository.CreateGameSessionParams) (*repository.GameSession, error)
	FetchGameSession(ctx context.Context, gameSessionId int64) (*repository.GameSession, error)
	UpdateGameSession(ctx context.Context, gameSessionId int64, params repository.UpdateGameSessionParams) (*repository.GameSession, error)
	InsertArtifact(ctx context.Context, m repository.MintedArtifact) error
	SessionArtifacts(ctx context.Context, gameSessionId int64) ([]repository.MintedArtifact, error)
}

// persistTimeout bounds the writes that follow a confirmed reveal. They run
// detached from the request so a client hanging up cannot drop them.
const persistTimeout = 10 * time.Second

const ownerStripes = 64

// ownerLocks serialises score updates per owner across all of their sessions.
// Owners share one of a fixed set of mutexes.
type ownerLocks struct {
	seed  maphash.Seed
	locks [ownerStripes]sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{seed: maphash.MakeSeed()}
}

func (l *ownerLocks) of(owner string) *sync.Mutex {
	return &l.locks[maphash.String(l.seed, owner)%ownerStripes]
}

type Session struct {
	ID         int64
	Owner      string
	Seed       int64
	LuckFactor float64
	StartedAt  time.Time

	// inflight admits one reveal or sync at a time; mu guards grid and score.
	inflight sync.Mutex
	mu       sync.RWMutex
	grid     *cubes.Grid
	// score is the owner's state as of this session's last reveal. The score
	// store is the shared truth.
	score cubes.ScoreState

	owners *ownerLocks
	chain  chain.Client
	repo   Repo
	scores ScoreStore
	logger *slog.Logger
	now    func() time.Time
}

// Snapshot is a consistent copy of a session for rendering.
type Snapshot struct {
	ID         int64
	Owner      string
	Seed       int64
	LuckFactor float64
	StartedAt  time.Time
	Grid       *cubes.Grid
	Score      cubes.ScoreState
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:         s.ID,
		Owner:      s.Owner,
		Seed:       s.Seed,
		LuckFactor: s.LuckFactor,
		StartedAt:  s.StartedAt,
		Grid:       s.grid.Clone(),
		Score:      s.score,
	}
}

func (s *Session) Score() cubes.ScoreState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.score
}

type RevealOutcome struct {
	Result   cubes.RevealResult `json:"result"`
	Award    cubes.Award        `json:"award"`
	Score    cubes.ScoreState   `json:"score"`
	Artifact *cubes.Artifact    `json:"artifact,omitempty"`
	Digest   string             `json:"digest,omitempty"`
}

// Reveal opens cell id. Minting cells are only committed after the chain
// accepts the reveal transaction; on rejection nothing changes and the cell
// may be retried.
func (s *Session) Reveal(ctx context.Context, id int) (RevealOutcome, error) {
	if s.Owner == "" {
		return RevealOutcome{}, ErrNoOwner
	}
	if !s.inflight.TryLock() {
		return RevealOutcome{}, ErrRevealPending
	}
	defer s.inflight.Unlock()

	s.mu.RLock()
	res, err := cubes.Plan(s.grid, id)
	s.mu.RUnlock()
	if err != nil {
		return RevealOutcome{}, err
	}

	var receipt chain.Receipt
	if res.Outcome == cubes.Minted {
		x, y := cubes.Position(id)
		receipt, err = s.chain.SubmitReveal(ctx, s.Owner, x, y)
		if err != nil {
			s.logger.Warn("reveal rejected by chain",
				slog.Int64("session", s.ID),
				slog.Int("cell", id),
				slog.Any("error", err),
			)
			return RevealOutcome{}, fmt.Errorf("%w: %w", ErrChainRejected, err)
		}
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	owner := s.owners.of(s.Owner)
	owner.Lock()
	score, err := s.scores.LoadScore(pctx, s.Owner)
	if err != nil {
		s.logger.Warn("unable to reload score, using cached",
			slog.String("owner", s.Owner),
			slog.Any("error", err),
		)
		score = s.Score()
	}

	s.mu.Lock()
	award := cubes.Commit(s.grid, res, &score)
	s.score = score
	out := RevealOutcome{
		Result: res,
		Award:  award,
		Score:  score,
		Digest: receipt.Digest,
	}
	if res.Outcome == cubes.Minted {
		cell := &s.grid.Cells[id]
		a := cubes.GenerateArtifact(id, cell.Rarity, s.Owner, s.now())
		if receipt.ObjectID != "" {
			a.ID = receipt.ObjectID
		}
		cell.Artifact = a
		copied := *a
		out.Artifact = &copied
	}
	bitmap := s.grid.Bitmap()
	s.mu.Unlock()

	if err := s.scores.SaveScore(pctx, s.Owner, score); err != nil {
		s.logger.Error("unable to save score", slog.String("owner", s.Owner), slog.Any("error", err))
	}
	owner.Unlock()

	s.logger.Debug("cell revealed",
		slog.Int64("session", s.ID),
		slog.Int("cell", id),
		slog.String("outcome", res.Outcome.String()),
		slog.Int("revealed", len(res.Revealed)),
		slog.Int64("points", award.Points),
	)

	s.persist(pctx, bitmap, out)
	return out, nil
}

// persist logs failures instead of returning them. The reveal is already
// final on chain and in memory.
func (s *Session) persist(ctx context.Context, bitmap []byte, out RevealOutcome) {
	if _, err := s.repo.UpdateGameSession(ctx, s.ID, repository.UpdateGameSessionParams{
		Revealed: &bitmap,
	}); err != nil {
		s.logger.Error("unable to save revealed cells", slog.Int64("session", s.ID), slog.Any("error", err))
	}

	if out.Artifact == nil {
		return
	}
	m := repository.NewMintedArtifact(s.ID, out.Result.Target, out.Artifact, out.Digest)
	err := s.repo.InsertArtifact(ctx, m)
	if errors.Is(err, repository.ErrDuplicate) {
		s.logger.Warn("artifact already recorded", slog.String("artifact", m.ArtifactId))
	} else if err != nil {
		s.logger.Error("unable to record artifact", slog.String("artifact", m.ArtifactId), slog.Any("error", err))
	}
}

type SyncResult struct {
	Revealed  []int            `json:"revealed"`
	Artifacts []cubes.Artifact `json:"artifacts,omitempty"`
}

// Sync ORs the chain's revealed bitmap into the grid and, for owned sessions,
// fetches the owner's artifacts alongside it.
func (s *Session) Sync(ctx context.Context) (SyncResult, error) {
	s.inflight.Lock()
	defer s.inflight.Unlock()

	var (
		bitmap    []byte
		artifacts []cubes.Artifact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		bitmap, err = s.chain.RevealedBitmap(gctx)
		return
	})
	if s.Owner != "" {
		g.Go(func() (err error) {
			artifacts, err = s.chain.OwnedArtifacts(gctx, s.Owner)
			return
		})
	}
	if err := g.Wait(); err != nil {
		return SyncResult{}, fmt.Errorf("unable to sync with chain: %w", err)
	}

	s.mu.Lock()
	flipped := s.grid.Reconcile(bitmap)
	merged := s.grid.Bitmap()
	s.mu.Unlock()

	if len(flipped) > 0 {
		s.logger.Debug("synced revealed cells", slog.Int64("session", s.ID), slog.Int("count", len(flipped)))
		if _, err := s.repo.UpdateGameSession(ctx, s.ID, repository.UpdateGameSessionParams{
			Revealed: &merged,
		}); err != nil {
			return SyncResult{}, fmt.Errorf("unable to save synced cells: %w", err)
		}
	}

	if flipped == nil {
		flipped = []int{}
	}
	return SyncResult{Revealed: flipped, Artifacts: artifacts}, nil
}
