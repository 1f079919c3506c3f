package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/cubehunt/internal/cubes"
)

// LoadScore returns the zero state for hunters never seen before.
func (q Queries) LoadScore(ctx context.Context, owner string) (cubes.ScoreState, error) {
	var s cubes.ScoreState
	err := q.db.QueryRow(
		ctx,
		"SELECT score, combo, max_combo FROM hunter_score WHERE owner = $1",
		owner,
	).Scan(&s.Score, &s.Combo, &s.MaxCombo)
	if errors.Is(err, pgx.ErrNoRows) {
		return cubes.ScoreState{}, nil
	}
	return s, err
}

func (q Queries) SaveScore(ctx context.Context, owner string, s cubes.ScoreState) error {
	_, err := q.db.Exec(
		ctx,
		`INSERT INTO hunter_score (owner, score, combo, max_combo)
		VALUES (@owner, @score, @combo, @max_combo)
		ON CONFLICT (owner) DO UPDATE SET
			score = excluded.score,
			combo = excluded.combo,
			max_combo = excluded.max_combo,
			updated_at = now();`,
		pgx.NamedArgs{
			"owner":     owner,
			"score":     s.Score,
			"combo":     s.Combo,
			"max_combo": s.MaxCombo,
		},
	)
	return err
}
