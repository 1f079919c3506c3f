package cubes

import (
	"encoding/json"
	"fmt"
)

type Outcome int8

const (
	NoOutcome Outcome = iota
	Minted
	Trapped
	Scanned
)

func (o Outcome) String() string {
	switch o {
	case Minted:
		return "minted"
	case Trapped:
		return "trapped"
	case Scanned:
		return "scanned"
	default:
		return "none"
	}
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, candidate := range []Outcome{NoOutcome, Minted, Trapped, Scanned} {
		if candidate.String() == s {
			*o = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", s)
}

const (
	scanReward  = 10
	trapPenalty = -50
)

// RevealResult is the delta a reveal would apply to a grid. Revealed lists
// ids in the order they were reached.
type RevealResult struct {
	Target     int
	Outcome    Outcome
	Revealed   []int
	BaseDelta  int
	ComboReset bool
}

// Plan works out what revealing id would do without touching the grid.
func Plan(g *Grid, id int) (RevealResult, error) {
	res := RevealResult{Target: id}

	c, err := g.Cell(id)
	if err != nil {
		return res, err
	}
	if c.Revealed {
		return res, fmt.Errorf("%w: %d", ErrAlreadyRevealed, id)
	}

	switch {
	case c.Kind == NFT:
		res.Outcome = Minted
		res.Revealed = []int{id}
		res.BaseDelta = c.Rarity.Reward()
	case c.Kind == Trap:
		res.Outcome = Trapped
		res.Revealed = []int{id}
		res.BaseDelta = trapPenalty
		res.ComboReset = true
	case c.NeighborCount > 0:
		res.Outcome = Scanned
		res.Revealed = []int{id}
		res.BaseDelta = scanReward
	default:
		res.Outcome = Scanned
		res.Revealed = cascade(g, c)
		res.BaseDelta = scanReward * len(res.Revealed)
	}

	return res, nil
}

// cascade walks breadth first from start through empty cells, expanding only
// through cells with no hidden neighbours. Nft and trap cells are the border
// and are never entered.
func cascade(g *Grid, start *Cell) []int {
	visited := map[int]struct{}{start.ID: {}}
	queue := []*Cell{start}
	var ids []int

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		ids = append(ids, c.ID)

		if c.NeighborCount != 0 {
			continue
		}
		g.neighbors(c.X, c.Y, func(nb *Cell) {
			if nb.Kind != Empty || nb.Revealed {
				return
			}
			if _, seen := visited[nb.ID]; seen {
				return
			}
			visited[nb.ID] = struct{}{}
			queue = append(queue, nb)
		})
	}

	return ids
}

// Commit applies a planned reveal: flags the cells and folds the base delta
// into score. The result must come from Plan on the same grid with no other
// commit in between.
func Commit(g *Grid, res RevealResult, score *ScoreState) Award {
	for _, id := range res.Revealed {
		g.Cells[id].Revealed = true
	}
	return score.Apply(res.BaseDelta, res.ComboReset)
}

// Reveal plans and commits in one step, for callers with nothing to confirm
// in between.
func Reveal(g *Grid, id int, score *ScoreState) (RevealResult, Award, error) {
	res, err := Plan(g, id)
	if err != nil {
		return res, Award{}, err
	}
	return res, Commit(g, res, score), nil
}
