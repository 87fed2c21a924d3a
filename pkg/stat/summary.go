package stat

import (
	"fmt"
	"math"

	gstat "gonum.org/v1/gonum/stat"
)

const (
	// MinStd is the floor applied to a non-positive standard deviation so the engine never divides by zero
	MinStd float64 = 0.1
	// MinSize is the smallest group size the engine will analyze
	MinSize int = 1
)

// GroupSummary describes one group (control or test) by its size, mean and spread.  A summary is a value; re-analysis
// replaces it rather than changing it.
type GroupSummary struct {
	Size     int
	Mean     float64
	Std      float64
	Variance float64
}

// NewGroupSummary returns a normalized summary from manually entered values.  The variance is derived from the
// normalized standard deviation.
func NewGroupSummary(size int, mean float64, std float64) GroupSummary {
	return GroupSummary{Size: size, Mean: mean, Std: std, Variance: std * std}.Normalize()
}

// Normalize coerces degenerate parameters to safe values: a standard deviation <= 0 becomes MinStd and a size < 1
// becomes MinSize.  This never fails so that a result can always be rendered.
func (g GroupSummary) Normalize() GroupSummary {
	if g.Std <= 0 {
		g.Std = MinStd
		g.Variance = MinStd * MinStd
	}
	if g.Size < MinSize {
		g.Size = MinSize
	}
	return g
}

// Summarize computes the summary of a raw sample.  The variance is the population variance (divisor n), and the
// standard deviation is its square root.  An empty sample, or one that holds NaN or infinite values, is rejected
// with InvalidInput.
func Summarize(xs []float64) (GroupSummary, error) {
	if len(xs) == 0 {
		return GroupSummary{}, InvalidInput{Msg: "sample is empty"}
	}
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return GroupSummary{}, InvalidInput{Msg: fmt.Sprintf("sample value %d is not a finite number", i+1)}
		}
	}
	mean, variance := gstat.PopMeanVariance(xs, nil)
	return GroupSummary{
		Size:     len(xs),
		Mean:     mean,
		Std:      math.Sqrt(variance),
		Variance: variance,
	}, nil
}
