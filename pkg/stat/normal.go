package stat

import "math"

// Coefficients of the Zelen & Severo polynomial approximation of the standard normal CDF (Abramowitz & Stegun
// 26.2.17).  Absolute error is about 7.5e-8.
const (
	zsP  = 0.2316419
	zsD  = 0.3989423
	zsB1 = 0.3193815
	zsB2 = -0.3565638
	zsB3 = 1.781478
	zsB4 = -1.821256
	zsB5 = 1.330274
)

// NormalCDF returns the approximate probability that a standard normal variable is <= x.
func NormalCDF(x float64) float64 {
	t := 1 / (1 + zsP*math.Abs(x))
	d := zsD * math.Exp(-x*x/2)
	poly := d * t * (zsB1 + t*(zsB2+t*(zsB3+t*(zsB4+t*zsB5))))
	if x > 0 {
		return 1 - poly
	}
	return poly
}

// PValue returns the two-sided p-value of a z statistic.  It is symmetric in the sign of z.
func PValue(z float64) float64 {
	return 2 * (1 - NormalCDF(math.Abs(z)))
}
