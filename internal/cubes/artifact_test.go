package cubes

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTraitsDeterministic(t *testing.T) {
	for id := 0; id < 200; id++ {
		for r := Common; r <= Legendary; r++ {
			a := GenerateTraits(id, r)
			b := GenerateTraits(id, r)
			assert.Equal(t, a, b)
			assert.Contains(t, palettes[r], a.Color)
			assert.True(t, slices.Contains(patterns, a.Pattern))
			assert.True(t, slices.Contains(animations, a.Animation))
			if r >= Epic {
				assert.True(t, a.Glow)
			}
		}
	}
}

func TestGenerateArtifact(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	a := GenerateArtifact(42, Legendary, "0xabc", now)

	assert.Equal(t, "NFT-42-1700000000123", a.ID)
	assert.Equal(t, "Legendary Cube #42", a.Name)
	assert.Equal(t, Legendary, a.Rarity)
	assert.Equal(t, "0xabc", a.Owner)
	assert.Equal(t, now, a.MintedAt)
	assert.False(t, a.Listed)
	assert.Nil(t, a.Price)
	assert.Equal(t, GenerateTraits(42, Legendary), a.Traits)
}

func TestRarityColor(t *testing.T) {
	assert.Equal(t, "#F59E0B", Legendary.Color())
	assert.Equal(t, "#6B7280", Rarity(42).Color())
}
