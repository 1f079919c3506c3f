package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/cubehunt/internal/cubes"
)

// MintedArtifact is the local record of an NFT minted through a session.
type MintedArtifact struct {
	ArtifactId    string
	GameSessionId int64
	CellId        int
	Name          string
	Rarity        string
	Color         string
	Pattern       string
	Glow          bool
	Animation     string
	Owner         string
	TxDigest      *string
	MintedAt      time.Time
}

func NewMintedArtifact(gameSessionId int64, cellId int, a *cubes.Artifact, digest string) MintedArtifact {
	m := MintedArtifact{
		ArtifactId:    a.ID,
		GameSessionId: gameSessionId,
		CellId:        cellId,
		Name:          a.Name,
		Rarity:        a.Rarity.String(),
		Color:         a.Traits.Color,
		Pattern:       a.Traits.Pattern,
		Glow:          a.Traits.Glow,
		Animation:     a.Traits.Animation,
		Owner:         a.Owner,
		MintedAt:      a.MintedAt,
	}
	if digest != "" {
		m.TxDigest = &digest
	}
	return m
}

func (m MintedArtifact) Artifact() cubes.Artifact {
	rarity, err := cubes.ParseRarity(m.Rarity)
	if err != nil {
		rarity = cubes.Common
	}
	return cubes.Artifact{
		ID:     m.ArtifactId,
		Name:   m.Name,
		Rarity: rarity,
		Traits: cubes.Traits{
			Color:     m.Color,
			Pattern:   m.Pattern,
			Glow:      m.Glow,
			Animation: m.Animation,
		},
		MintedAt: m.MintedAt,
		Owner:    m.Owner,
	}
}

// InsertArtifact records a mint. A second mint for the same session cell
// returns [ErrDuplicate].
func (q Queries) InsertArtifact(ctx context.Context, m MintedArtifact) error {
	_, err := q.db.Exec(
		ctx,
		`INSERT INTO artifact (
			artifact_id, game_session_id, cell_id, name, rarity, color,
			pattern, glow, animation, owner, tx_digest, minted_at
		)
		VALUES (
			@artifact_id, @game_session_id, @cell_id, @name, @rarity, @color,
			@pattern, @glow, @animation, @owner, @tx_digest, @minted_at
		);`,
		pgx.NamedArgs{
			"artifact_id":     m.ArtifactId,
			"game_session_id": m.GameSessionId,
			"cell_id":         m.CellId,
			"name":            m.Name,
			"rarity":          m.Rarity,
			"color":           m.Color,
			"pattern":         m.Pattern,
			"glow":            m.Glow,
			"animation":       m.Animation,
			"owner":           m.Owner,
			"tx_digest":       m.TxDigest,
			"minted_at":       m.MintedAt,
		},
	)
	return translate(err)
}

func (q Queries) SessionArtifacts(ctx context.Context, gameSessionId int64) ([]MintedArtifact, error) {
	rows, err := q.db.Query(
		ctx,
		"SELECT * FROM artifact WHERE game_session_id = $1 ORDER BY cell_id",
		gameSessionId,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[MintedArtifact])
}

func (q Queries) OwnerArtifacts(ctx context.Context, owner string) ([]MintedArtifact, error) {
	rows, err := q.db.Query(
		ctx,
		"SELECT * FROM artifact WHERE owner = $1 ORDER BY minted_at DESC",
		owner,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[MintedArtifact])
}
