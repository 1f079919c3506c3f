package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type GameSession struct {
	GameSessionId int64
	Owner         *string
	Seed          int64
	LuckFactor    float64
	Revealed      []byte
	StartedAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CreateGameSessionParams struct {
	Owner      *string
	Seed       int64
	LuckFactor float64
	Revealed   []byte
}

func (q Queries) CreateGameSession(
	ctx context.Context, params CreateGameSessionParams,
) (*GameSession, error) {
	args := pgx.NamedArgs{
		"owner":       params.Owner,
		"seed":        params.Seed,
		"luck_factor": params.LuckFactor,
		"revealed":    params.Revealed,
	}
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (owner, seed, luck_factor, revealed)
		VALUES (@owner, @seed, @luck_factor, @revealed)
		RETURNING *;`,
		args,
	)
	session, err := pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameSession],
	)
	return session, translate(err)
}

func (q Queries) FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		gameSessionId,
	)
	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	return session, translate(err)
}

type UpdateGameSessionParams struct {
	Owner    *string
	Revealed *[]byte
}

func (p UpdateGameSessionParams) SetClause() (string, pgx.NamedArgs) {
	parts := []string{"updated_at = now()"}
	args := pgx.NamedArgs{}

	if p.Owner != nil {
		parts = append(parts, "owner = @owner")
		args["owner"] = *p.Owner
	}
	if p.Revealed != nil {
		parts = append(parts, "revealed = @revealed")
		args["revealed"] = *p.Revealed
	}

	return strings.Join(parts, ", "), args
}

func (q Queries) UpdateGameSession(
	ctx context.Context, gameSessionId int64, params UpdateGameSessionParams,
) (*GameSession, error) {
	setClause, args := params.SetClause()
	args["game_session_id"] = gameSessionId
	rows, _ := q.db.Query(
		ctx,
		"UPDATE game_session SET "+setClause+" WHERE game_session_id = @game_session_id RETURNING *",
		args,
	)
	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	return session, translate(err)
}
