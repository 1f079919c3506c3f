package cubes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// layout builds an all-empty common grid with the given cells overridden.
func layout(kinds map[[2]int]Kind) *Grid {
	g := &Grid{LuckFactor: 1, Cells: make([]Cell, CellCount)}
	for id := range g.Cells {
		x, y := Position(id)
		g.Cells[id] = Cell{ID: id, X: x, Y: y, Kind: kinds[[2]int{x, y}]}
	}
	g.countNeighbors()
	return g
}

func revealedIDs(g *Grid) map[int]bool {
	ids := map[int]bool{}
	for _, c := range g.Cells {
		if c.Revealed {
			ids[c.ID] = true
		}
	}
	return ids
}

func TestRevealEmptyBoardCascadesEverywhere(t *testing.T) {
	g := layout(nil)
	var score ScoreState

	res, award, err := Reveal(g, CellID(50, 50), &score)
	require.NoError(t, err)

	assert.Equal(t, Scanned, res.Outcome)
	assert.Len(t, res.Revealed, CellCount)
	assert.Equal(t, CellID(50, 50), res.Revealed[0])
	assert.Equal(t, 10*CellCount, res.BaseDelta)
	assert.False(t, res.ComboReset)
	assert.Equal(t, CellCount, g.RevealedCount())
	assert.Equal(t, int64(11*CellCount), award.Points)
}

func TestRevealCascadeStopsAtBorder(t *testing.T) {
	kinds := map[[2]int]Kind{}
	for i := 10; i <= 20; i++ {
		kinds[[2]int{i, 10}] = NFT
		kinds[[2]int{i, 20}] = NFT
		kinds[[2]int{10, i}] = Trap
		kinds[[2]int{20, i}] = Trap
	}
	g := layout(kinds)

	res, err := Plan(g, CellID(15, 15))
	require.NoError(t, err)
	assert.Zero(t, g.RevealedCount(), "plan must not mutate")

	assert.Len(t, res.Revealed, 81)
	for _, id := range res.Revealed {
		x, y := Position(id)
		assert.True(t, 10 < x && x < 20 && 10 < y && y < 20, "cell (%d, %d) escaped the ring", x, y)
		assert.Equal(t, Empty, g.Cells[id].Kind)
	}
	assert.Equal(t, 810, res.BaseDelta)

	var score ScoreState
	Commit(g, res, &score)
	assert.True(t, g.Cells[CellID(11, 11)].Revealed)
	assert.Positive(t, g.Cells[CellID(11, 11)].NeighborCount)
	assert.False(t, g.Cells[CellID(10, 10)].Revealed)
	assert.False(t, g.Cells[CellID(15, 10)].Revealed)
	assert.False(t, g.Cells[CellID(5, 5)].Revealed)
}

func TestRevealCascadeRevealsButDoesNotExpandHints(t *testing.T) {
	// a single trap: everything else is reachable, the trap itself is not
	g := layout(map[[2]int]Kind{{5, 5}: Trap})

	res, err := Plan(g, CellID(0, 0))
	require.NoError(t, err)
	assert.Len(t, res.Revealed, CellCount-1)
	assert.NotContains(t, res.Revealed, CellID(5, 5))
	assert.Contains(t, res.Revealed, CellID(4, 4))
}

func TestRevealHint(t *testing.T) {
	g := layout(map[[2]int]Kind{{5, 5}: Trap})

	res, err := Plan(g, CellID(4, 4))
	require.NoError(t, err)
	assert.Equal(t, Scanned, res.Outcome)
	assert.Equal(t, []int{CellID(4, 4)}, res.Revealed)
	assert.Equal(t, 10, res.BaseDelta)
}

func TestRevealNFT(t *testing.T) {
	tests := []struct {
		rarity Rarity
		want   int
	}{
		{Common, 100},
		{Uncommon, 200},
		{Rare, 500},
		{Epic, 1000},
		{Legendary, 5000},
	}
	for _, test := range tests {
		t.Run(test.rarity.String(), func(t *testing.T) {
			g := layout(map[[2]int]Kind{{3, 3}: NFT})
			g.Cells[CellID(3, 3)].Rarity = test.rarity

			res, err := Plan(g, CellID(3, 3))
			require.NoError(t, err)
			assert.Equal(t, Minted, res.Outcome)
			assert.Equal(t, []int{CellID(3, 3)}, res.Revealed)
			assert.Equal(t, test.want, res.BaseDelta)
			assert.False(t, res.ComboReset)
		})
	}
}

func TestRevealScoreScenario(t *testing.T) {
	g := layout(map[[2]int]Kind{
		{0, 0}: Trap,
		{1, 0}: Trap,
		{2, 0}: Trap,
	})
	require.Equal(t, 3, g.Cells[CellID(1, 1)].NeighborCount)

	var score ScoreState

	res, award, err := Reveal(g, CellID(1, 1), &score)
	require.NoError(t, err)
	assert.Equal(t, Scanned, res.Outcome)
	assert.Equal(t, int64(11), award.Points)
	assert.Equal(t, ScoreState{Score: 11, Combo: 1, MaxCombo: 1}, score)

	res, award, err = Reveal(g, CellID(0, 0), &score)
	require.NoError(t, err)
	assert.Equal(t, Trapped, res.Outcome)
	assert.True(t, res.ComboReset)
	assert.Equal(t, -50, res.BaseDelta)
	assert.Equal(t, 1.0, award.Multiplier)
	assert.Equal(t, ScoreState{Score: -39, Combo: 0, MaxCombo: 1}, score)
}

func TestRevealRejects(t *testing.T) {
	g := layout(map[[2]int]Kind{{5, 5}: Trap})
	var score ScoreState
	_, _, err := Reveal(g, CellID(4, 4), &score)
	require.NoError(t, err)

	before := revealedIDs(g)
	snapshot := score

	tests := []struct {
		name string
		id   int
		want error
	}{
		{"negative", -1, ErrOutOfRange},
		{"past end", CellCount, ErrOutOfRange},
		{"revealed", CellID(4, 4), ErrAlreadyRevealed},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res, award, err := Reveal(g, test.id, &score)
			assert.ErrorIs(t, err, test.want)
			assert.Empty(t, res.Revealed)
			assert.Zero(t, res.BaseDelta)
			assert.Equal(t, Award{}, award)
			assert.Equal(t, snapshot, score)
			assert.Equal(t, before, revealedIDs(g))
		})
	}
}

func TestRevealCascadeOnGeneratedGrids(t *testing.T) {
	for _, seed := range []int64{1, 42, 1700000000000} {
		g := Generate(seed, 1.0)

		start := -1
		for _, c := range g.Cells {
			if c.Kind == Empty && c.NeighborCount == 0 {
				start = c.ID
				break
			}
		}
		if start < 0 {
			t.Logf("seed %d has no zero cell", seed)
			continue
		}

		res, err := Plan(g, start)
		require.NoError(t, err)

		in := map[int]bool{}
		for _, id := range res.Revealed {
			require.False(t, in[id], "cell %d visited twice", id)
			in[id] = true
		}

		for _, id := range res.Revealed {
			c := g.Cells[id]
			require.Equal(t, Empty, c.Kind)

			// every zero cell is closed over its empty neighbours
			if c.NeighborCount == 0 {
				g.neighbors(c.X, c.Y, func(nb *Cell) {
					if nb.Kind == Empty {
						assert.True(t, in[nb.ID], "seed %d: %d not reached from %d", seed, nb.ID, id)
					}
				})
			}

			// every non-start cell was reached through a zero cell
			if id != start {
				reached := false
				g.neighbors(c.X, c.Y, func(nb *Cell) {
					if in[nb.ID] && nb.NeighborCount == 0 {
						reached = true
					}
				})
				assert.True(t, reached, "seed %d: %d is not connected", seed, id)
			}
		}
	}
}

func TestRevealMonotone(t *testing.T) {
	g := Generate(3, 1.0)
	var score ScoreState
	for id := 0; id < 500; id++ {
		before := revealedIDs(g)
		Reveal(g, id, &score)
		g.Reconcile(make([]byte, BitmapLen))
		after := revealedIDs(g)
		for prev := range before {
			require.True(t, after[prev])
		}
	}
}

func TestScoreApply(t *testing.T) {
	var s ScoreState
	for i := 1; i <= 3; i++ {
		s.Apply(100, false)
	}
	// 110 + 120 + 130
	assert.Equal(t, ScoreState{Score: 360, Combo: 3, MaxCombo: 3}, s)

	award := s.Apply(-50, true)
	assert.Equal(t, int64(-50), award.Points)
	assert.Equal(t, ScoreState{Score: 310, Combo: 0, MaxCombo: 3}, s)
}
