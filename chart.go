package abtest

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/aclements/go-moremath/stats"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/BTBurke/abtest/pkg/metric"
	"github.com/BTBurke/abtest/pkg/stat"
)

// DensityPoints is the number of x positions in the density curves
const DensityPoints = 101

// ciPadding widens the confidence interval axis on both sides
const ciPadding = 10.0

var (
	controlColor = drawing.ColorFromHex("36a2eb")
	testColor    = drawing.ColorFromHex("ff6384")
	effectColors = []drawing.Color{
		drawing.ColorFromHex("28a745"),
		drawing.ColorFromHex("ffc107"),
		drawing.ColorFromHex("fd7e14"),
		drawing.ColorFromHex("dc3545"),
	}
)

// DensityCurves are the normal densities of both groups over a shared x range
type DensityCurves struct {
	X       []float64
	Labels  []string
	Control []float64
	Test    []float64
}

// NewDensityCurves evaluates both normal densities on DensityPoints evenly spaced values from
// min(control.Mean - 4 control.Std, test.Mean - 2 test.Std) to max(control.Mean + 4 control.Std, test.Mean + 2 test.Std)
func NewDensityCurves(control, test stat.GroupSummary) DensityCurves {
	control, test = control.Normalize(), test.Normalize()
	minX := math.Min(control.Mean-4*control.Std, test.Mean-2*test.Std)
	maxX := math.Max(control.Mean+4*control.Std, test.Mean+2*test.Std)
	step := (maxX - minX) / float64(DensityPoints-1)

	c := stats.NormalDist{Mu: control.Mean, Sigma: control.Std}
	t := stats.NormalDist{Mu: test.Mean, Sigma: test.Std}

	d := DensityCurves{
		X:       make([]float64, DensityPoints),
		Labels:  make([]string, DensityPoints),
		Control: make([]float64, DensityPoints),
		Test:    make([]float64, DensityPoints),
	}
	for i := 0; i < DensityPoints; i++ {
		x := minX + float64(i)*step
		d.X[i] = x
		d.Labels[i] = fmt.Sprintf("%.1f", x)
		d.Control[i] = c.PDF(x)
		d.Test[i] = t.PDF(x)
	}
	return d
}

// EffectBar is one bar of the effect size comparison
type EffectBar struct {
	Label string
	Value float64
}

// EffectChart compares the observed |d| with the conventional thresholds
type EffectChart struct {
	Bars []EffectBar
	// Marker is the position of |d| on a 0 to 2 scale, as a percentage capped at 100
	Marker float64
}

// NewEffectChart returns the threshold bars followed by the observed effect
func NewEffectChart(d float64) EffectChart {
	abs := math.Abs(d)
	return EffectChart{
		Bars: []EffectBar{
			{Label: "Small (0.2)", Value: stat.SmallD},
			{Label: "Medium (0.5)", Value: stat.MediumD},
			{Label: "Large (0.8)", Value: stat.LargeD},
			{Label: "Your Effect", Value: abs},
		},
		Marker: math.Min(abs/2*100, 100),
	}
}

// CIChart places both means and the confidence interval on one axis
type CIChart struct {
	ControlMean float64
	TestMean    float64
	CI          stat.Interval
	Min         float64
	Max         float64
}

// NewCIChart returns the chart with an axis padded by 10 on both sides of the plotted values
func NewCIChart(a stat.Analysis) CIChart {
	return CIChart{
		ControlMean: a.Control.Mean,
		TestMean:    a.Test.Mean,
		CI:          a.CI,
		Min:         math.Min(a.Control.Mean, a.CI.Lower) - ciPadding,
		Max:         math.Max(a.Test.Mean, a.CI.Upper) + ciPadding,
	}
}

// ChartSet holds the series for every chart of one result.  It is rebuilt for each result.  Histograms are nil for
// manual analyses.
type ChartSet struct {
	ControlHistogram *metric.Histogram
	TestHistogram    *metric.Histogram
	Density          DensityCurves
	Effect           EffectChart
	CI               CIChart

	controlSize int
	testSize    int
}

// NewChartSet builds the chart series for a result
func NewChartSet(r Result) ChartSet {
	a := r.Analysis
	cs := ChartSet{
		Density:     NewDensityCurves(a.Control, a.Test),
		Effect:      NewEffectChart(a.CohensD),
		CI:          NewCIChart(a),
		controlSize: a.Control.Size,
		testSize:    a.Test.Size,
	}
	if r.Uploaded() {
		ch, th := metric.NewHistogram(r.Control), metric.NewHistogram(r.Test)
		cs.ControlHistogram, cs.TestHistogram = &ch, &th
	}
	return cs
}

// Render writes every chart as SVG into dir and returns the written paths
func (cs ChartSet) Render(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create chart directory: %w", err)
	}

	charts := map[string]renderer{}
	if cs.ControlHistogram != nil {
		charts["control_histogram.svg"] = histogramChart("Control Group Distribution", *cs.ControlHistogram, controlColor)
	}
	if cs.TestHistogram != nil {
		charts["test_histogram.svg"] = histogramChart("Test Group Distribution", *cs.TestHistogram, testColor)
	}
	charts["distribution.svg"] = cs.densityChart()
	charts["effect_size.svg"] = cs.effectChart()
	charts["confidence_interval.svg"] = cs.ciChart()

	var written []string
	for _, name := range chartOrder {
		path := filepath.Join(dir, name)
		c, ok := charts[name]
		if !ok {
			// remove histograms left by a previous uploaded analysis
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return written, err
			}
			continue
		}
		if err := renderFile(path, c); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

var chartOrder = []string{
	"control_histogram.svg",
	"test_histogram.svg",
	"distribution.svg",
	"effect_size.svg",
	"confidence_interval.svg",
}

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderFile(path string, c renderer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Render(chart.SVG, f); err != nil {
		f.Close()
		return fmt.Errorf("could not render %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func histogramChart(title string, h metric.Histogram, color drawing.Color) *chart.BarChart {
	bars := make([]chart.Value, len(h.Bins))
	top := 1.0
	for i, b := range h.Bins {
		bars[i] = chart.Value{
			Label: b.Label(),
			Value: float64(b.Count),
			Style: chart.Style{FillColor: color.WithAlpha(180), StrokeColor: color, StrokeWidth: 1},
		}
		top = math.Max(top, float64(b.Count))
	}
	return &chart.BarChart{
		Title:    title,
		Width:    800,
		Height:   400,
		BarWidth: barWidth(len(bars)),
		Bars:     bars,
		YAxis:    chart.YAxis{Name: "Frequency", Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1}},
	}
}

func barWidth(n int) int {
	w := 600 / n
	if w < 8 {
		return 8
	}
	if w > 60 {
		return 60
	}
	return w
}

func (cs ChartSet) densityChart() *chart.Chart {
	d := cs.Density
	c := &chart.Chart{
		Title:  "Distribution Comparison: Control vs Test Groups",
		Width:  800,
		Height: 400,
		XAxis:  chart.XAxis{Name: "Value"},
		YAxis:  chart.YAxis{Name: "Probability Density"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("Control Distribution (n=%s)", FormatSize(cs.controlSize)),
				XValues: d.X,
				YValues: d.Control,
				Style:   chart.Style{StrokeColor: controlColor, StrokeWidth: 2, FillColor: controlColor.WithAlpha(25)},
			},
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("Test Distribution (n=%s)", FormatSize(cs.testSize)),
				XValues: d.X,
				YValues: d.Test,
				Style:   chart.Style{StrokeColor: testColor, StrokeWidth: 2},
			},
		},
	}
	c.Elements = []chart.Renderable{chart.Legend(c)}
	return c
}

func (cs ChartSet) effectChart() *chart.BarChart {
	bars := make([]chart.Value, len(cs.Effect.Bars))
	top := 1.0
	for i, b := range cs.Effect.Bars {
		color := effectColors[i%len(effectColors)]
		bars[i] = chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{FillColor: color.WithAlpha(204), StrokeColor: color, StrokeWidth: 2},
		}
		top = math.Max(top, b.Value)
	}
	return &chart.BarChart{
		Title:    "Cohen's d Effect Size Comparison",
		Width:    600,
		Height:   400,
		BarWidth: 80,
		Bars:     bars,
		YAxis:    chart.YAxis{Name: "Cohen's d Value", Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1}},
	}
}

func (cs ChartSet) ciChart() *chart.Chart {
	ci := cs.CI
	dot := func(color drawing.Color) chart.Style {
		return chart.Style{StrokeWidth: chart.Disabled, DotWidth: 8, DotColor: color}
	}
	c := &chart.Chart{
		Title:  "Means Comparison with Confidence Intervals",
		Width:  800,
		Height: 300,
		XAxis:  chart.XAxis{Name: "Value", Range: &chart.ContinuousRange{Min: ci.Min, Max: ci.Max}},
		YAxis:  chart.YAxis{Range: &chart.ContinuousRange{Min: 0.5, Max: 2.5}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("Control Mean (n=%s)", FormatSize(cs.controlSize)),
				XValues: []float64{ci.ControlMean},
				YValues: []float64{1},
				Style:   dot(controlColor),
			},
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("Test Mean (n=%s)", FormatSize(cs.testSize)),
				XValues: []float64{ci.TestMean},
				YValues: []float64{2},
				Style:   dot(testColor),
			},
			chart.ContinuousSeries{
				Name:    "95% Confidence Interval",
				XValues: []float64{ci.CI.Lower, ci.CI.Upper},
				YValues: []float64{1.5, 1.5},
				Style:   chart.Style{StrokeColor: testColor.WithAlpha(178), StrokeWidth: 3, StrokeDashArray: []float64{5, 5}},
			},
		},
	}
	c.Elements = []chart.Renderable{chart.Legend(c)}
	return c
}
