package cubes

import (
	"encoding/json"
	"fmt"
	"math"
)

type Rarity int8

const (
	Common Rarity = iota
	Uncommon
	Rare
	Epic
	Legendary
)

var rarityNames = [...]string{"common", "uncommon", "rare", "epic", "legendary"}

func (r Rarity) String() string {
	if r < Common || r > Legendary {
		return "unknown"
	}
	return rarityNames[r]
}

func ParseRarity(s string) (Rarity, error) {
	for i, name := range rarityNames {
		if name == s {
			return Rarity(i), nil
		}
	}
	return Common, fmt.Errorf("unknown rarity %q", s)
}

func (r Rarity) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Rarity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRarity(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Color is the tint a cell or artifact of this rarity is drawn with.
func (r Rarity) Color() string {
	switch r {
	case Uncommon:
		return "#10B981"
	case Rare:
		return "#3B82F6"
	case Epic:
		return "#8B5CF6"
	case Legendary:
		return "#F59E0B"
	default:
		return "#6B7280"
	}
}

// Reward is the base score for minting an artifact of this rarity.
func (r Rarity) Reward() int {
	switch r {
	case Uncommon:
		return 200
	case Rare:
		return 500
	case Epic:
		return 1000
	case Legendary:
		return 5000
	default:
		return 100
	}
}

type rarityWeights struct {
	legendary, epic, rare, uncommon, common float64
}

var baseWeights = rarityWeights{
	legendary: 0.005,
	epic:      0.015,
	rare:      0.08,
	uncommon:  0.20,
	common:    0.70,
}

// NormalizeLuck maps anything below 1.0 (including NaN) to 1.0.
func NormalizeLuck(luckFactor float64) float64 {
	if math.IsNaN(luckFactor) || luckFactor < 1.0 {
		return 1.0
	}
	return luckFactor
}

// weights are deliberately not renormalised: a boost pushes the upper tier
// thresholds up directly and can make common unreachable.
func luckWeights(luckFactor float64) rarityWeights {
	w := baseWeights
	if luckFactor > 1.0 {
		boost := luckFactor - 1.0
		w.legendary *= 1 + boost*2
		w.epic *= 1 + boost*1.5
		w.rare *= 1 + boost
		w.uncommon *= 1 + boost*0.5
	}
	return w
}

// RarityFor classifies a draw r in [0, 1) under the given luck factor.
func RarityFor(r float64, luckFactor float64) Rarity {
	w := luckWeights(NormalizeLuck(luckFactor))
	switch {
	case r < w.legendary:
		return Legendary
	case r < w.legendary+w.epic:
		return Epic
	case r < w.legendary+w.epic+w.rare:
		return Rare
	case r < w.legendary+w.epic+w.rare+w.uncommon:
		return Uncommon
	default:
		return Common
	}
}
