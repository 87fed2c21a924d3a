package stat

import "math"

// EffectSize is the qualitative label for the magnitude of Cohen's d
type EffectSize string

// Cohen's breakpoints.  Each label covers [lower, next lower).
const (
	VerySmall = EffectSize("Very Small")
	Small     = EffectSize("Small")
	Medium    = EffectSize("Medium")
	Large     = EffectSize("Large")
)

const (
	SmallD  = 0.2
	MediumD = 0.5
	LargeD  = 0.8
)

// ClassifyEffect labels the absolute value of Cohen's d
func ClassifyEffect(d float64) EffectSize {
	d = math.Abs(d)
	switch {
	case d < SmallD:
		return VerySmall
	case d < MediumD:
		return Small
	case d < LargeD:
		return Medium
	default:
		return Large
	}
}

func (e EffectSize) String() string {
	return string(e)
}
