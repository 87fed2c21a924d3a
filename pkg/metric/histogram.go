package metric

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// MaxBins caps the number of histogram bins
const MaxBins = 20

// Bin is one bar of a histogram covering [Lower, Upper).  The last bin also holds the sample maximum.
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// Label formats the bin range with one decimal, e.g. 1.0-2.5
func (b Bin) Label() string {
	return fmt.Sprintf("%.1f-%.1f", b.Lower, b.Upper)
}

// Histogram is the frequency distribution of a raw sample
type Histogram struct {
	Bins []Bin
}

// NewHistogram bins xs into min(MaxBins, ceil(sqrt(n))) equal-width bins spanning the sample range.  When every
// value is equal the width is zero and all values land in the first bin.  An empty sample has no bins.
func NewHistogram(xs []float64) Histogram {
	if len(xs) == 0 {
		return Histogram{}
	}
	min, max := stats.Sample{Xs: xs}.Bounds()
	count := int(math.Min(MaxBins, math.Ceil(math.Sqrt(float64(len(xs))))))
	width := (max - min) / float64(count)

	bins := make([]Bin, count)
	for i := range bins {
		lower := min + float64(i)*width
		bins[i] = Bin{Lower: lower, Upper: lower + width}
	}
	for _, x := range xs {
		i := 0
		if width > 0 {
			i = int(math.Min(math.Floor((x-min)/width), float64(count-1)))
		}
		bins[i].Count++
	}
	return Histogram{Bins: bins}
}

// Total returns the number of values binned
func (h Histogram) Total() int {
	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	return total
}
