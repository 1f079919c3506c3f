package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type LeaderboardEntry struct {
	Owner     string `json:"owner"`
	Score     int64  `json:"score"`
	MaxCombo  int    `json:"max_combo"`
	Artifacts int    `json:"artifacts"`
}

type LeaderboardFilter struct {
	// Rarities restricts the artifact count to the given rarities.
	Rarities []string
	Limit    int
}

func (f LeaderboardFilter) ArtifactClause() (string, pgx.NamedArgs) {
	args := pgx.NamedArgs{"limit": f.Limit}
	if f.Limit <= 0 {
		args["limit"] = 100
	}
	if len(f.Rarities) == 0 {
		return "", args
	}
	args["rarities"] = f.Rarities
	return "AND a.rarity = ANY(@rarities)", args
}

func (q Queries) GetLeaderboard(
	ctx context.Context, filter LeaderboardFilter,
) ([]LeaderboardEntry, error) {
	clause, args := filter.ArtifactClause()
	query := `
	SELECT
		s.owner,
		s.score,
		s.max_combo,
		count(a.artifact_id)::int artifacts
	FROM hunter_score s
		LEFT OUTER JOIN artifact a ON a.owner = s.owner ` + clause + `
	GROUP BY s.owner, s.score, s.max_combo
	ORDER BY s.score DESC, s.max_combo DESC
	LIMIT @limit;`

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[LeaderboardEntry])
}
