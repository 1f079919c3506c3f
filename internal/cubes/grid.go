package cubes

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	GridSize  = 100
	CellCount = GridSize * GridSize
)

type Kind int8

const (
	Empty Kind = iota
	NFT
	Trap
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case NFT:
		return "nft"
	case Trap:
		return "trap"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, candidate := range []Kind{Empty, NFT, Trap} {
		if candidate.String() == s {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", s)
}

// hidden reports whether the kind counts towards a neighbour's hint.
func (k Kind) hidden() bool {
	return k == NFT || k == Trap
}

type Cell struct {
	ID, X, Y int
	Kind     Kind
	Rarity   Rarity
	// NeighborCount is the number of nft and trap cells around an empty
	// cell; -1 for any other kind.
	NeighborCount int
	Revealed      bool
	Artifact      *Artifact
}

func (c Cell) String() string {
	switch {
	case c.Kind == NFT:
		return "#"
	case c.Kind == Trap:
		return "x"
	case c.NeighborCount == 0:
		return " "
	default:
		return strconv.Itoa(c.NeighborCount)
	}
}

// Grid is the full 100x100 board. The layout is fixed by Seed and LuckFactor;
// only Revealed flags and artifacts change afterwards.
type Grid struct {
	Seed       int64
	LuckFactor float64
	Cells      []Cell
}

func CellID(x, y int) int {
	return y*GridSize + x
}

func InBounds(x, y int) bool {
	return 0 <= x && x < GridSize && 0 <= y && y < GridSize
}

func ValidID(id int) bool {
	return 0 <= id && id < CellCount
}

// Position decodes an id back into coordinates.
func Position(id int) (x, y int) {
	return id % GridSize, id / GridSize
}

func (g *Grid) Cell(id int) (*Cell, error) {
	if !ValidID(id) || id >= len(g.Cells) {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, id)
	}
	return &g.Cells[id], nil
}

func (g *Grid) At(x, y int) (*Cell, error) {
	if !InBounds(x, y) {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrOutOfRange, x, y)
	}
	return &g.Cells[CellID(x, y)], nil
}

// neighbors calls fn for every in-bounds cell of the 8-neighbourhood of (x, y).
func (g *Grid) neighbors(x, y int, fn func(*Cell)) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if InBounds(nx, ny) {
				fn(&g.Cells[CellID(nx, ny)])
			}
		}
	}
}

func (g *Grid) RevealedCount() (n int) {
	for i := range g.Cells {
		if g.Cells[i].Revealed {
			n++
		}
	}
	return
}

// Clone copies the grid including revealed flags and artifacts.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		Seed:       g.Seed,
		LuckFactor: g.LuckFactor,
		Cells:      make([]Cell, len(g.Cells)),
	}
	copy(c.Cells, g.Cells)
	for i := range c.Cells {
		if a := c.Cells[i].Artifact; a != nil {
			dup := *a
			c.Cells[i].Artifact = &dup
		}
	}
	return c
}

// ToString renders the layout. With fog set, unrevealed cells print as ".".
func (g *Grid) ToString(fog bool) string {
	var b strings.Builder
	for y := range GridSize {
		for x := range GridSize {
			c := g.Cells[CellID(x, y)]
			if fog && !c.Revealed {
				b.WriteString(".")
			} else {
				b.WriteString(c.String())
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
