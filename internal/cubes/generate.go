package cubes

import "log/slog"

var Log *slog.Logger = slog.Default()

const (
	nftThreshold  = 0.8
	trapThreshold = 0.05
)

func kindFor(r float64) Kind {
	switch {
	case r > nftThreshold:
		return NFT
	case r < trapThreshold:
		return Trap
	default:
		return Empty
	}
}

// Generate builds the grid for a seed and luck factor. Equal inputs always
// yield equal layouts; luck factors below 1.0 behave as 1.0.
func Generate(seed int64, luckFactor float64) *Grid {
	luckFactor = NormalizeLuck(luckFactor)
	rng := newLCG(seed)

	g := &Grid{
		Seed:       seed,
		LuckFactor: luckFactor,
		Cells:      make([]Cell, CellCount),
	}

	for y := range GridSize {
		for x := range GridSize {
			id := CellID(x, y)
			kind := kindFor(rng.Next())
			// rarity is drawn for every cell, it tints non-nft cells too
			rarity := RarityFor(rng.Next(), luckFactor)
			g.Cells[id] = Cell{
				ID:            id,
				X:             x,
				Y:             y,
				Kind:          kind,
				Rarity:        rarity,
				NeighborCount: -1,
			}
		}
	}

	g.countNeighbors()

	Log.Debug("generated grid",
		slog.Int64("seed", seed),
		slog.Float64("luckFactor", luckFactor),
	)

	return g
}

// countNeighbors fills NeighborCount from the kind layout.
func (g *Grid) countNeighbors() {
	for i := range g.Cells {
		c := &g.Cells[i]
		if c.Kind != Empty {
			c.NeighborCount = -1
			continue
		}
		n := 0
		g.neighbors(c.X, c.Y, func(nb *Cell) {
			if nb.Kind.hidden() {
				n++
			}
		})
		c.NeighborCount = n
	}
}
