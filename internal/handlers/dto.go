package handlers

import (
	"strconv"

	"github.com/gorilla/schema"

	"github.com/vancomm/cubehunt/internal/cubes"
	"github.com/vancomm/cubehunt/internal/session"
)

var decoder = func() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}()

func decode[T any](src map[string][]string) (T, error) {
	var dto T
	err := decoder.Decode(&dto, src)
	return dto, err
}

type CreateSessionDTO struct {
	Seed       *int64   `schema:"seed"`
	LuckFactor *float64 `schema:"luck_factor"`
}

type PositionDTO struct {
	X int `schema:"x,required"`
	Y int `schema:"y,required"`
}

type ListArtifactDTO struct {
	ArtifactID string  `schema:"artifact_id,required"`
	Price      float64 `schema:"price,required"`
}

type BuyListingDTO struct {
	ListingID string  `schema:"listing_id,required"`
	Price     float64 `schema:"price,required"`
}

type LeaderboardDTO struct {
	Limit  int      `schema:"limit"`
	Rarity []string `schema:"rarity"`
}

// CellDTO hides kind and hint of cells that are still covered.
type CellDTO struct {
	ID            int             `json:"id"`
	X             int             `json:"x"`
	Y             int             `json:"y"`
	Rarity        cubes.Rarity    `json:"rarity"`
	Revealed      bool            `json:"revealed"`
	Kind          *cubes.Kind     `json:"kind,omitempty"`
	NeighborCount *int            `json:"neighbor_count,omitempty"`
	Artifact      *cubes.Artifact `json:"artifact,omitempty"`
}

func NewCellDTO(c cubes.Cell) CellDTO {
	dto := CellDTO{
		ID:       c.ID,
		X:        c.X,
		Y:        c.Y,
		Rarity:   c.Rarity,
		Revealed: c.Revealed,
	}
	if !c.Revealed {
		return dto
	}
	kind := c.Kind
	dto.Kind = &kind
	if c.Kind == cubes.Empty {
		count := c.NeighborCount
		dto.NeighborCount = &count
	}
	dto.Artifact = c.Artifact
	return dto
}

type SessionDTO struct {
	GameSessionId string           `json:"game_session_id"`
	Owner         string           `json:"owner,omitempty"`
	Seed          int64            `json:"seed"`
	LuckFactor    float64          `json:"luck_factor"`
	StartedAt     int64            `json:"started_at"`
	Revealed      int              `json:"revealed"`
	Score         cubes.ScoreState `json:"score"`
	Cells         []CellDTO        `json:"cells"`
}

func NewSessionDTO(snap session.Snapshot) *SessionDTO {
	cells := make([]CellDTO, len(snap.Grid.Cells))
	for i, c := range snap.Grid.Cells {
		cells[i] = NewCellDTO(c)
	}
	return &SessionDTO{
		GameSessionId: strconv.FormatInt(snap.ID, 10),
		Owner:         snap.Owner,
		Seed:          snap.Seed,
		LuckFactor:    snap.LuckFactor,
		StartedAt:     snap.StartedAt.UnixMilli(),
		Revealed:      snap.Grid.RevealedCount(),
		Score:         snap.Score,
		Cells:         cells,
	}
}

type RevealDTO struct {
	Outcome  cubes.Outcome    `json:"outcome"`
	Revealed []CellDTO        `json:"revealed"`
	Points   int64            `json:"points"`
	Combo    int              `json:"combo"`
	Score    cubes.ScoreState `json:"score"`
	Artifact *cubes.Artifact  `json:"artifact,omitempty"`
	Digest   string           `json:"digest,omitempty"`
}

// NewRevealDTO renders the cells a reveal opened from a snapshot taken after
// it.
func NewRevealDTO(out session.RevealOutcome, snap session.Snapshot) *RevealDTO {
	cells := make([]CellDTO, len(out.Result.Revealed))
	for i, id := range out.Result.Revealed {
		cells[i] = NewCellDTO(snap.Grid.Cells[id])
	}
	return &RevealDTO{
		Outcome:  out.Result.Outcome,
		Revealed: cells,
		Points:   out.Award.Points,
		Combo:    out.Award.Combo,
		Score:    out.Score,
		Artifact: out.Artifact,
		Digest:   out.Digest,
	}
}
