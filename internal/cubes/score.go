package cubes

import "math"

const comboBonus = 0.1

type ScoreState struct {
	Score    int64 `json:"score"`
	Combo    int   `json:"combo"`
	MaxCombo int   `json:"max_combo"`
}

// Award is what a single Apply added.
type Award struct {
	Points     int64   `json:"points"`
	Multiplier float64 `json:"multiplier"`
	Combo      int     `json:"combo"`
}

// Apply folds one reveal into the state. A reset zeroes the combo first, so
// penalties are never amplified.
func (s *ScoreState) Apply(base int, reset bool) Award {
	if reset {
		s.Combo = 0
	} else {
		s.Combo++
	}
	multiplier := 1 + float64(s.Combo)*comboBonus
	points := int64(math.Floor(float64(base) * multiplier))
	s.Score += points
	s.MaxCombo = max(s.MaxCombo, s.Combo)
	return Award{Points: points, Multiplier: multiplier, Combo: s.Combo}
}
