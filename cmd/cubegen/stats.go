package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/vancomm/cubehunt/internal/cubes"
)

type stats struct {
	kinds    map[cubes.Kind]int
	rarities map[cubes.Rarity]int
	// nftRarities counts only the rarities that can actually be minted.
	nftRarities map[cubes.Rarity]int
	zeroCells   int
	maxCount    int
}

func collectStats(g *cubes.Grid) stats {
	s := stats{
		kinds:       make(map[cubes.Kind]int),
		rarities:    make(map[cubes.Rarity]int),
		nftRarities: make(map[cubes.Rarity]int),
	}
	for _, c := range g.Cells {
		s.kinds[c.Kind]++
		s.rarities[c.Rarity]++
		switch c.Kind {
		case cubes.NFT:
			s.nftRarities[c.Rarity]++
		case cubes.Empty:
			if c.NeighborCount == 0 {
				s.zeroCells++
			}
			s.maxCount = max(s.maxCount, c.NeighborCount)
		}
	}
	return s
}

func percent(n int) float64 {
	return float64(n) * 100 / cubes.CellCount
}

func (s stats) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "kind\tcells\tpct\t")
	for _, k := range []cubes.Kind{cubes.Empty, cubes.NFT, cubes.Trap} {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t\n", k, s.kinds[k], percent(s.kinds[k]))
	}
	fmt.Fprintln(tw, "\t\t\t")
	fmt.Fprintln(tw, "rarity\tcells\tpct\tnft\t")
	for r := cubes.Common; r <= cubes.Legendary; r++ {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%d\t\n", r, s.rarities[r], percent(s.rarities[r]), s.nftRarities[r])
	}
	fmt.Fprintln(tw, "\t\t\t")
	fmt.Fprintf(tw, "zero cells\t%d\t\t\n", s.zeroCells)
	fmt.Fprintf(tw, "max hint\t%d\t\t\n", s.maxCount)
	return tw.Flush()
}
