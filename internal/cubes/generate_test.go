package cubes

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

func TestLCG(t *testing.T) {
	tests := []struct {
		name string
		seed int64
		want int64
	}{
		{"zero", 0, 49297},
		{"one", 1, 58598},
		{"negative", -1, 39996},
		{"wraps", lcgModulus + 1, 58598},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := newLCG(test.seed)
			v := r.Next()
			assert.Equal(t, test.want, r.state)
			assert.InDelta(t, float64(test.want)/lcgModulus, v, 1e-15)
		})
	}
}

// Layouts must match the browser client draw for draw.
func TestGenerateMatchesClientLayout(t *testing.T) {
	type cell struct {
		kind   Kind
		rarity Rarity
	}
	tests := []struct {
		seed int64
		want []cell
	}{
		{12345, []cell{
			{Empty, Epic}, {Empty, Uncommon}, {Empty, Uncommon}, {Empty, Epic},
			{Trap, Common}, {Empty, Uncommon}, {Empty, Common}, {Empty, Common},
			{Empty, Common}, {NFT, Common}, {Empty, Uncommon}, {NFT, Uncommon},
		}},
		{42, []cell{
			{NFT, Common}, {NFT, Common}, {Empty, Common}, {Empty, Rare},
			{Empty, Common}, {Empty, Common}, {Empty, Common}, {NFT, Common},
			{Empty, Uncommon}, {Empty, Common}, {Empty, Common}, {Empty, Common},
		}},
	}
	for _, test := range tests {
		g := Generate(test.seed, 1.0)
		for id, want := range test.want {
			got := cell{g.Cells[id].Kind, g.Cells[id].Rarity}
			assert.Equal(t, want, got, "seed %d cell %d", test.seed, id)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		seed int64
		luck float64
	}{
		{"plain", 42, 1.0},
		{"lucky", 42, 2.5},
		{"timestamp", 1700000000000, 1.0},
		{"negative", -987654321, 1.3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			a := Generate(test.seed, test.luck)
			b := Generate(test.seed, test.luck)
			require.Len(t, a.Cells, CellCount)
			require.Len(t, b.Cells, CellCount)
			for i := range a.Cells {
				if a.Cells[i].Kind != b.Cells[i].Kind ||
					a.Cells[i].Rarity != b.Cells[i].Rarity ||
					a.Cells[i].NeighborCount != b.Cells[i].NeighborCount {
					t.Fatalf("cell %d differs: %+v vs %+v", i, a.Cells[i], b.Cells[i])
				}
			}
		})
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	a := Generate(1, 1.0)
	b := Generate(2, 1.0)
	same := 0
	for i := range a.Cells {
		if a.Cells[i].Kind == b.Cells[i].Kind {
			same++
		}
	}
	assert.Less(t, same, CellCount)
}

func TestGenerateBijection(t *testing.T) {
	g := Generate(7, 1.0)
	require.Len(t, g.Cells, CellCount)
	for id, c := range g.Cells {
		assert.Equal(t, id, c.ID)
		assert.Equal(t, id, c.Y*GridSize+c.X)
		x, y := Position(id)
		assert.Equal(t, c.X, x)
		assert.Equal(t, c.Y, y)
		assert.False(t, c.Revealed)
		assert.Nil(t, c.Artifact)
	}
}

func TestGenerateNeighborCounts(t *testing.T) {
	for _, seed := range []int64{0, 3, 99, 123456789} {
		g := Generate(seed, 1.0)
		for _, c := range g.Cells {
			if c.Kind != Empty {
				assert.Equal(t, -1, c.NeighborCount, "cell %d", c.ID)
				continue
			}
			want := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					x, y := c.X+dx, c.Y+dy
					if (dx == 0 && dy == 0) || x < 0 || y < 0 || x >= GridSize || y >= GridSize {
						continue
					}
					if k := g.Cells[y*GridSize+x].Kind; k == NFT || k == Trap {
						want++
					}
				}
			}
			require.Equal(t, want, c.NeighborCount, "seed %d cell %d", seed, c.ID)
			require.GreaterOrEqual(t, c.NeighborCount, 0)
			require.LessOrEqual(t, c.NeighborCount, 8)
		}
	}
}

func TestGenerateCornerCountsAtMostThree(t *testing.T) {
	g := Generate(11, 1.0)
	for _, id := range []int{CellID(0, 0), CellID(99, 0), CellID(0, 99), CellID(99, 99)} {
		if c := g.Cells[id]; c.Kind == Empty {
			assert.LessOrEqual(t, c.NeighborCount, 3)
		}
	}
}

func TestGenerateAllKindsPresent(t *testing.T) {
	g := Generate(2024, 1.0)
	seen := map[Kind]int{}
	for _, c := range g.Cells {
		seen[c.Kind]++
	}
	assert.Positive(t, seen[Empty])
	assert.Positive(t, seen[NFT])
	assert.Positive(t, seen[Trap])
}

func TestGenerateLowLuckIsBaseline(t *testing.T) {
	base := Generate(5, 1.0)
	for _, luck := range []float64{0.2, -4, 0} {
		g := Generate(5, luck)
		assert.Equal(t, 1.0, g.LuckFactor)
		for i := range g.Cells {
			require.Equal(t, base.Cells[i].Rarity, g.Cells[i].Rarity)
		}
	}
}

func TestRarityDistribution(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	want := map[Rarity]float64{
		Legendary: 0.005,
		Epic:      0.015,
		Rare:      0.08,
		Uncommon:  0.20,
		Common:    0.70,
	}

	sources := []struct {
		name  string
		draws int
		next  func() float64
	}{
		{"lcg full period", lcgModulus, newLCG(9).Next},
		{"pcg", 200_000, rand.New(rand.NewPCG(1, 2)).Float64},
	}

	for _, src := range sources {
		t.Run(src.name, func(t *testing.T) {
			counts := map[Rarity]int{}
			for range src.draws {
				counts[RarityFor(src.next(), 1.0)]++
			}
			for r, p := range want {
				got := float64(counts[r]) / float64(src.draws)
				assert.InDelta(t, p, got, 0.01, "rarity %s", r)
			}
		})
	}
}

func TestRarityFor(t *testing.T) {
	tests := []struct {
		r    float64
		luck float64
		want Rarity
	}{
		{0, 1, Legendary},
		{0.0049, 1, Legendary},
		{0.0051, 1, Epic},
		{0.0199, 1, Epic},
		{0.0201, 1, Rare},
		{0.099, 1, Rare},
		{0.101, 1, Uncommon},
		{0.299, 1, Uncommon},
		{0.301, 1, Common},
		{0.999, 1, Common},
		// boost 1: .015 / .0525 / .2125 / .5125
		{0.014, 2, Legendary},
		{0.05, 2, Epic},
		{0.2, 2, Rare},
		{0.5, 2, Uncommon},
		{0.6, 2, Common},
		// boost 4 pushes the uncommon threshold past 1
		{0.999, 5, Uncommon},
		{0.0049, 0.5, Legendary},
		{0.0051, -1, Epic},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, RarityFor(test.r, test.luck), "r=%v luck=%v", test.r, test.luck)
	}
}

func TestRarityJSON(t *testing.T) {
	b, err := Legendary.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"legendary"`, string(b))

	var r Rarity
	require.NoError(t, r.UnmarshalJSON([]byte(`"epic"`)))
	assert.Equal(t, Epic, r)
	assert.Error(t, r.UnmarshalJSON([]byte(`"mythic"`)))
}
