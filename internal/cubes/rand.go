package cubes

const (
	lcgMul     = 9301
	lcgInc     = 49297
	lcgModulus = 233280
)

// lcg is the linear congruential stream every grid and artifact is drawn from.
// It is weak and has a short period, but it is what the deployed clients use,
// so layouts must match it bit for bit.
type lcg struct {
	state int64
}

func newLCG(seed int64) *lcg {
	s := seed % lcgModulus
	if s < 0 {
		s += lcgModulus
	}
	return &lcg{state: s}
}

// Next returns the next value in [0, 1).
func (r *lcg) Next() float64 {
	r.state = (r.state*lcgMul + lcgInc) % lcgModulus
	return float64(r.state) / lcgModulus
}
