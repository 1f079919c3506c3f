package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/vancomm/cubehunt/internal/cubes"
)

// Memory keeps sessions, artifacts and scores in process. It stands in for
// PostgreSQL when the server runs offline.
type Memory struct {
	mu        sync.Mutex
	nextID    int64
	sessions  map[int64]GameSession
	artifacts []MintedArtifact
	scores    map[string]cubes.ScoreState
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[int64]GameSession),
		scores:   make(map[string]cubes.ScoreState),
	}
}

func clone(s GameSession) *GameSession {
	s.Revealed = slices.Clone(s.Revealed)
	return &s
}

func (m *Memory) CreateGameSession(_ context.Context, params CreateGameSessionParams) (*GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := time.Now()
	s := GameSession{
		GameSessionId: m.nextID,
		Owner:         params.Owner,
		Seed:          params.Seed,
		LuckFactor:    params.LuckFactor,
		Revealed:      slices.Clone(params.Revealed),
		StartedAt:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.sessions[s.GameSessionId] = s
	return clone(s), nil
}

func (m *Memory) FetchGameSession(_ context.Context, gameSessionId int64) (*GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[gameSessionId]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *Memory) UpdateGameSession(_ context.Context, gameSessionId int64, params UpdateGameSessionParams) (*GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[gameSessionId]
	if !ok {
		return nil, ErrNotFound
	}
	if params.Owner != nil {
		owner := *params.Owner
		s.Owner = &owner
	}
	if params.Revealed != nil {
		s.Revealed = slices.Clone(*params.Revealed)
	}
	s.UpdatedAt = time.Now()
	m.sessions[gameSessionId] = s
	return clone(s), nil
}

func (m *Memory) InsertArtifact(_ context.Context, a MintedArtifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.artifacts {
		if existing.ArtifactId == a.ArtifactId {
			return ErrDuplicate
		}
		if existing.GameSessionId == a.GameSessionId && existing.CellId == a.CellId {
			return ErrDuplicate
		}
	}
	m.artifacts = append(m.artifacts, a)
	return nil
}

func (m *Memory) filter(keep func(MintedArtifact) bool) []MintedArtifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MintedArtifact
	for _, a := range m.artifacts {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (m *Memory) SessionArtifacts(_ context.Context, gameSessionId int64) ([]MintedArtifact, error) {
	out := m.filter(func(a MintedArtifact) bool { return a.GameSessionId == gameSessionId })
	slices.SortFunc(out, func(a, b MintedArtifact) int { return cmp.Compare(a.CellId, b.CellId) })
	return out, nil
}

func (m *Memory) OwnerArtifacts(_ context.Context, owner string) ([]MintedArtifact, error) {
	out := m.filter(func(a MintedArtifact) bool { return a.Owner == owner })
	slices.SortFunc(out, func(a, b MintedArtifact) int { return b.MintedAt.Compare(a.MintedAt) })
	return out, nil
}

func (m *Memory) LoadScore(_ context.Context, owner string) (cubes.ScoreState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scores[owner], nil
}

func (m *Memory) SaveScore(_ context.Context, owner string, s cubes.ScoreState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[owner] = s
	return nil
}

func (m *Memory) GetLeaderboard(_ context.Context, filter LeaderboardFilter) ([]LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int)
	for _, a := range m.artifacts {
		if len(filter.Rarities) == 0 || slices.Contains(filter.Rarities, a.Rarity) {
			counts[a.Owner]++
		}
	}

	entries := make([]LeaderboardEntry, 0, len(m.scores))
	for owner, s := range m.scores {
		entries = append(entries, LeaderboardEntry{
			Owner:     owner,
			Score:     s.Score,
			MaxCombo:  s.MaxCombo,
			Artifacts: counts[owner],
		})
	}
	slices.SortFunc(entries, func(a, b LeaderboardEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.MaxCombo, a.MaxCombo); c != 0 {
			return c
		}
		return cmp.Compare(a.Owner, b.Owner)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
