package stat

import "math"

// CriticalZ is the two-sided critical value at alpha = 0.05.  It is fixed.
const CriticalZ = 1.96

// Interval is a closed interval [Lower, Upper]
type Interval struct {
	Lower float64
	Upper float64
}

// Width returns Upper - Lower
func (i Interval) Width() float64 {
	return i.Upper - i.Lower
}

// Contains reports whether x lies inside the interval
func (i Interval) Contains(x float64) bool {
	return i.Lower <= x && x <= i.Upper
}

// Analysis is the complete result of comparing a test group against a control group.  It is computed in one call to
// Analyze and never updated in place.
type Analysis struct {
	Control GroupSummary
	Test    GroupSummary

	ZScore  float64
	PValue  float64
	CohensD float64
	CI      Interval
	Power   float64
}

// Analyze compares test against control.  Both summaries are normalized first, so degenerate parameters never make
// the result undefined.  The z-score and Cohen's d are computed first since the p-value and power depend on them.
func Analyze(control, test GroupSummary) Analysis {
	control, test = control.Normalize(), test.Normalize()

	z := ZScore(control, test)
	d := CohensD(control, test)
	return Analysis{
		Control: control,
		Test:    test,
		ZScore:  z,
		PValue:  PValue(z),
		CohensD: d,
		CI:      ConfidenceInterval(control, test),
		Power:   Power(d, test.Size),
	}
}

// Significant reports whether the null hypothesis is rejected
func (a Analysis) Significant() bool {
	return Significant(a.ZScore)
}

// Effect returns the qualitative size of the effect
func (a Analysis) Effect() EffectSize {
	return ClassifyEffect(a.CohensD)
}

// TypeIIError returns 1 - power
func (a Analysis) TypeIIError() float64 {
	return 1 - a.Power
}

// StandardError is the standard error of the test mean measured against the control population: control.Std / sqrt(test.Size).
// The control group is treated as the reference population with a known standard deviation, so the test group's own
// spread does not enter.
func StandardError(control, test GroupSummary) float64 {
	return control.Std / math.Sqrt(float64(test.Size))
}

// ZScore is the distance of the test mean from the control mean in units of the control standard error
func ZScore(control, test GroupSummary) float64 {
	return (test.Mean - control.Mean) / StandardError(control, test)
}

// Significant reports whether |z| exceeds the critical value
func Significant(z float64) bool {
	return math.Abs(z) > CriticalZ
}

// CohensD is the mean difference in units of the control standard deviation.  Its sign follows test.Mean - control.Mean.
func CohensD(control, test GroupSummary) float64 {
	return (test.Mean - control.Mean) / control.Std
}

// ConfidenceInterval returns the 95% interval around the test mean using the control standard error
func ConfidenceInterval(control, test GroupSummary) Interval {
	margin := CriticalZ * StandardError(control, test)
	return Interval{
		Lower: test.Mean - margin,
		Upper: test.Mean + margin,
	}
}

// Power approximates the two-sided power at alpha = 0.05 for effect size d and a test group of n observations:
//
//	delta = |d| * sqrt(n)
//	power = 1 - (Φ(delta - 1.96) + Φ(-delta - 1.96))
//
// Φ is NormalCDF.  The result lies in [0, 1].
func Power(d float64, n int) float64 {
	delta := math.Abs(d) * math.Sqrt(float64(n))
	return 1 - (NormalCDF(delta-CriticalZ) + NormalCDF(-delta-CriticalZ))
}
