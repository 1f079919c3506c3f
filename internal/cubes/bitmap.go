package cubes

// BitmapLen is the number of bytes needed for one bit per cell.
const BitmapLen = (CellCount + 7) / 8

// Bitmap packs the revealed flags, bit id%8 of byte id/8, the same layout as
// the game state object on chain.
func (g *Grid) Bitmap() []byte {
	b := make([]byte, BitmapLen)
	for i := range g.Cells {
		if g.Cells[i].Revealed {
			b[i/8] |= 1 << (i % 8)
		}
	}
	return b
}

// BitSet reports whether id is marked in a packed bitmap. Short bitmaps read
// as zero past their end.
func BitSet(bitmap []byte, id int) bool {
	i := id / 8
	if id < 0 || i >= len(bitmap) {
		return false
	}
	return bitmap[i]>>(id%8)&1 == 1
}

// Reconcile ORs a packed bitmap into the revealed flags and returns the ids
// that flipped. Cells already revealed stay revealed whatever the bitmap says.
func (g *Grid) Reconcile(bitmap []byte) []int {
	var flipped []int
	for i := range g.Cells {
		if !g.Cells[i].Revealed && BitSet(bitmap, i) {
			g.Cells[i].Revealed = true
			flipped = append(flipped, i)
		}
	}
	return flipped
}
