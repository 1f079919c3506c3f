package cubes

import (
	"fmt"
	"strings"
	"time"
)

type Traits struct {
	Color     string `json:"color"`
	Pattern   string `json:"pattern"`
	Glow      bool   `json:"glow"`
	Animation string `json:"animation"`
}

// Artifact is a minted cube NFT.
type Artifact struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Rarity   Rarity    `json:"rarity"`
	Traits   Traits    `json:"traits"`
	MintedAt time.Time `json:"minted_at"`
	Owner    string    `json:"owner"`
	Listed   bool      `json:"listed"`
	Price    *float64  `json:"price,omitempty"`
}

var (
	palettes = map[Rarity][]string{
		Common:    {"#6B7280", "#9CA3AF", "#D1D5DB"},
		Uncommon:  {"#10B981", "#34D399", "#6EE7B7"},
		Rare:      {"#3B82F6", "#60A5FA", "#93C5FD"},
		Epic:      {"#8B5CF6", "#A78BFA", "#C4B5FD"},
		Legendary: {"#F59E0B", "#FBBF24", "#FCD34D", "#FFD700"},
	}
	patterns   = []string{"solid", "striped", "dotted", "gradient", "crystalline", "nebula"}
	animations = []string{"pulse", "rotate", "float", "shimmer", "none"}
)

func pick(rng *lcg, from []string) string {
	return from[int(rng.Next()*float64(len(from)))]
}

// GenerateTraits draws the visual traits of the artifact minted from a cell.
// They depend only on the cell id and rarity.
func GenerateTraits(cellID int, rarity Rarity) Traits {
	rng := newLCG(int64(cellID))
	palette, ok := palettes[rarity]
	if !ok {
		palette = palettes[Common]
	}
	t := Traits{
		Color:     pick(rng, palette),
		Pattern:   pick(rng, patterns),
		Animation: pick(rng, animations),
	}
	// epic and above always glow and skip the draw
	t.Glow = rarity >= Epic || rng.Next() > 0.7
	return t
}

func ArtifactName(cellID int, rarity Rarity) string {
	name := rarity.String()
	return fmt.Sprintf("%s%s Cube #%d", strings.ToUpper(name[:1]), name[1:], cellID)
}

func GenerateArtifact(cellID int, rarity Rarity, owner string, now time.Time) *Artifact {
	return &Artifact{
		ID:       fmt.Sprintf("NFT-%d-%d", cellID, now.UnixMilli()),
		Name:     ArtifactName(cellID, rarity),
		Rarity:   rarity,
		Traits:   GenerateTraits(cellID, rarity),
		MintedAt: now,
		Owner:    owner,
	}
}
