package stat

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/BTBurke/abtest/pkg/rng"
	"github.com/aclements/go-moremath/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	defaultControl = GroupSummary{Size: 10000, Mean: 55, Std: 10, Variance: 100}
	defaultTest    = GroupSummary{Size: 100, Mean: 66, Std: 40, Variance: 1600}
)

// randomSummary returns a non-degenerate summary with a random size, mean and standard deviation
func randomSummary(r *rand.Rand) GroupSummary {
	std := 0.01 + r.Float64()*50
	return GroupSummary{
		Size:     1 + r.Intn(20000),
		Mean:     (r.Float64() - 0.5) * 1000,
		Std:      std,
		Variance: std * std,
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Size)
	assert.Equal(t, 3.0, s.Mean)
	assert.Equal(t, 2.0, s.Variance)
	assert.Equal(t, math.Sqrt(2), s.Std)
}

func TestSummarizeMatchesDirectComputation(t *testing.T) {
	xs := rng.NewNormalRNG(20, 3, rng.WithSeed(7)).Sample(5000)
	s, err := Summarize(xs)
	require.NoError(t, err)

	mean := stats.Mean(xs)
	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance = variance / float64(len(xs))

	assert.InDelta(t, mean, s.Mean, 1e-9)
	assert.InDelta(t, variance, s.Variance, 1e-9)
	assert.InDelta(t, math.Sqrt(variance), s.Std, 1e-9)
	assert.InDelta(t, 20, s.Mean, 0.2)
}

func TestSummarizeInvalidInput(t *testing.T) {
	tt := []struct {
		name string
		xs   []float64
	}{
		{name: "nil", xs: nil},
		{name: "empty", xs: []float64{}},
		{name: "nan", xs: []float64{1, math.NaN()}},
		{name: "inf", xs: []float64{math.Inf(1), 2}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Summarize(tc.xs)
			assert.Error(t, err)
			var invalid InvalidInput
			assert.True(t, errors.As(err, &invalid))
			assert.Equal(t, GroupSummary{}, s)
		})
	}
}

func TestNormalize(t *testing.T) {
	tt := []struct {
		name string
		in   GroupSummary
		exp  GroupSummary
	}{
		{name: "valid", in: GroupSummary{Size: 10, Mean: 1, Std: 2, Variance: 4}, exp: GroupSummary{Size: 10, Mean: 1, Std: 2, Variance: 4}},
		{name: "zero std", in: GroupSummary{Size: 10, Mean: 1}, exp: GroupSummary{Size: 10, Mean: 1, Std: 0.1, Variance: MinStd * MinStd}},
		{name: "negative std", in: GroupSummary{Size: 10, Mean: 1, Std: -3, Variance: 9}, exp: GroupSummary{Size: 10, Mean: 1, Std: 0.1, Variance: MinStd * MinStd}},
		{name: "zero size", in: GroupSummary{Size: 0, Mean: 1, Std: 2, Variance: 4}, exp: GroupSummary{Size: 1, Mean: 1, Std: 2, Variance: 4}},
		{name: "negative size", in: GroupSummary{Size: -5, Mean: 1, Std: 2, Variance: 4}, exp: GroupSummary{Size: 1, Mean: 1, Std: 2, Variance: 4}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, tc.in.Normalize())
		})
	}
	assert.Equal(t, GroupSummary{Size: 1, Mean: 3, Std: 0.1, Variance: MinStd * MinStd}, NewGroupSummary(0, 3, 0))
	assert.Equal(t, GroupSummary{Size: 4, Mean: 3, Std: 2, Variance: 4}, NewGroupSummary(4, 3, 2))
}

func TestAnalyzeDefaults(t *testing.T) {
	a := Analyze(defaultControl, defaultTest)
	assert.InDelta(t, 11.0, a.ZScore, 1e-9)
	assert.True(t, a.PValue < 0.0001)
	assert.True(t, a.Significant())
	assert.InDelta(t, 1.1, a.CohensD, 1e-9)
	assert.Equal(t, Large, a.Effect())
	assert.InDelta(t, 66-1.96, a.CI.Lower, 1e-9)
	assert.InDelta(t, 66+1.96, a.CI.Upper, 1e-9)
	assert.InDelta(t, 0.0, a.Power, 1e-9)
	assert.InDelta(t, 1.0, a.TypeIIError(), 1e-9)
}

func TestAnalyzeNotSignificant(t *testing.T) {
	control := GroupSummary{Size: 1000, Mean: 50, Std: 10}
	test := GroupSummary{Size: 25, Mean: 51, Std: 12}
	a := Analyze(control, test)
	assert.InDelta(t, 0.5, a.ZScore, 1e-9)
	assert.False(t, a.Significant())
	assert.InDelta(t, 0.617, a.PValue, 1e-3)
	assert.Equal(t, VerySmall, a.Effect())
}

func TestAnalyzeNormalizesInputs(t *testing.T) {
	a := Analyze(GroupSummary{Size: 0, Mean: 10, Std: 0}, GroupSummary{Size: -1, Mean: 10.1, Std: 0})
	assert.Equal(t, 0.1, a.Control.Std)
	assert.Equal(t, 1, a.Control.Size)
	assert.Equal(t, 1, a.Test.Size)
	assert.InDelta(t, 1.0, a.ZScore, 1e-9)
	assert.False(t, math.IsNaN(a.PValue))
	assert.False(t, math.IsInf(a.ZScore, 0))
}

func TestAnalyzeDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		control, test := randomSummary(r), randomSummary(r)
		assert.Equal(t, Analyze(control, test), Analyze(control, test))
	}
}

func TestZScoreEqualMeans(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		control, test := randomSummary(r), randomSummary(r)
		test.Mean = control.Mean
		assert.Equal(t, 0.0, ZScore(control, test))
		assert.Equal(t, 0.0, CohensD(control, test))
	}
}

func TestZScoreUsesControlStd(t *testing.T) {
	control := GroupSummary{Size: 50, Mean: 0, Std: 2}
	narrow := GroupSummary{Size: 16, Mean: 1, Std: 0.5}
	wide := GroupSummary{Size: 16, Mean: 1, Std: 50}
	assert.Equal(t, ZScore(control, narrow), ZScore(control, wide))
	assert.InDelta(t, 2.0, ZScore(control, narrow), 1e-12)
}

func TestCohensDSign(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		control, test := randomSummary(r), randomSummary(r)
		diff := test.Mean - control.Mean
		d := CohensD(control, test)
		assert.Equal(t, math.Signbit(diff), math.Signbit(d), "diff=%f d=%f", diff, d)
	}
}

func TestClassifyEffect(t *testing.T) {
	tt := []struct {
		d   float64
		exp EffectSize
	}{
		{d: 0, exp: VerySmall},
		{d: 0.19999, exp: VerySmall},
		{d: 0.2, exp: Small},
		{d: -0.2, exp: Small},
		{d: 0.49999, exp: Small},
		{d: 0.5, exp: Medium},
		{d: -0.7, exp: Medium},
		{d: 0.79999, exp: Medium},
		{d: 0.8, exp: Large},
		{d: -3, exp: Large},
	}
	for _, tc := range tt {
		assert.Equal(t, tc.exp, ClassifyEffect(tc.d), "d=%f", tc.d)
	}
}

func TestConfidenceInterval(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 500; i++ {
		control, test := randomSummary(r), randomSummary(r)
		ci := ConfidenceInterval(control, test)
		assert.True(t, ci.Contains(test.Mean))
		exp := 2 * 1.96 * control.Std / math.Sqrt(float64(test.Size))
		assert.InDelta(t, exp, ci.Width(), 1e-9*math.Max(1, exp))
	}
}

func TestPower(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for i := 0; i < 1000; i++ {
		d := (r.Float64() - 0.5) * 10
		n := 1 + r.Intn(50000)
		p := Power(d, n)
		assert.True(t, p >= 0 && p <= 1, "power out of range for d=%f n=%d: %f", d, n, p)

		delta := math.Abs(d) * math.Sqrt(float64(n))
		exact := 1 - (distuv.UnitNormal.CDF(delta-1.96) + distuv.UnitNormal.CDF(-delta-1.96))
		assert.InDelta(t, exact, p, 1e-6)
	}
	assert.Equal(t, Power(0.3, 40), Power(-0.3, 40))
}
