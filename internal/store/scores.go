package store

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/vancomm/cubehunt/internal/cubes"
	"github.com/vancomm/cubehunt/internal/repository"
)

// Scores persists per-hunter score state as three keys per address.
type Scores struct {
	store *Store
}

func NewScores(s *Store) *Scores {
	return &Scores{store: s}
}

func scoreKeys(owner string) (score, combo, maxCombo string) {
	return "score_" + owner, "combo_" + owner, "maxCombo_" + owner
}

// LoadScore returns the zero state for hunters never seen before.
func (s *Scores) LoadScore(ctx context.Context, owner string) (cubes.ScoreState, error) {
	var state cubes.ScoreState
	scoreKey, comboKey, maxKey := scoreKeys(owner)

	for key, dst := range map[string]any{
		scoreKey: &state.Score,
		comboKey: &state.Combo,
		maxKey:   &state.MaxCombo,
	} {
		err := s.store.Get(ctx, key, dst)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return cubes.ScoreState{}, err
		}
	}
	return state, nil
}

func (s *Scores) SaveScore(ctx context.Context, owner string, state cubes.ScoreState) error {
	scoreKey, comboKey, maxKey := scoreKeys(owner)
	return s.store.SetMany(ctx, map[string]any{
		scoreKey: state.Score,
		comboKey: state.Combo,
		maxKey:   state.MaxCombo,
	})
}

// Hunters lists every address with a saved score.
func (s *Scores) Hunters(ctx context.Context) ([]string, error) {
	keys, err := s.store.Keys(ctx, "score_")
	if err != nil {
		return nil, err
	}
	hunters := make([]string, len(keys))
	for i, k := range keys {
		hunters[i] = strings.TrimPrefix(k, "score_")
	}
	return hunters, nil
}

// GetLeaderboard ranks saved hunters by score, then by best combo. Artifact
// counts are not tracked here and the rarity filter is ignored.
func (s *Scores) GetLeaderboard(ctx context.Context, filter repository.LeaderboardFilter) ([]repository.LeaderboardEntry, error) {
	hunters, err := s.Hunters(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]repository.LeaderboardEntry, 0, len(hunters))
	for _, owner := range hunters {
		state, err := s.LoadScore(ctx, owner)
		if err != nil {
			return nil, err
		}
		entries = append(entries, repository.LeaderboardEntry{
			Owner:    owner,
			Score:    state.Score,
			MaxCombo: state.MaxCombo,
		})
	}

	slices.SortStableFunc(entries, func(a, b repository.LeaderboardEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.MaxCombo, a.MaxCombo)
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
