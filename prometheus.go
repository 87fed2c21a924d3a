package abtest

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "abtest"

// newRegistry returns a registry holding one gauge per statistic of the result
func newRegistry(r Result) (*prometheus.Registry, error) {
	a := r.Analysis
	reg := prometheus.NewRegistry()

	gauge := func(name, help string, value float64) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
		g.Set(value)
		return g
	}
	significant := 0.0
	if a.Significant() {
		significant = 1
	}

	effect := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cohens_d",
		Help:      "Mean difference in control standard deviations.",
	}, []string{"effect"})
	effect.WithLabelValues(a.Effect().String()).Set(a.CohensD)

	ci := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "confidence_interval",
		Help:      "Bounds of the 95% confidence interval around the test mean.",
	}, []string{"bound"})
	ci.WithLabelValues("lower").Set(a.CI.Lower)
	ci.WithLabelValues("upper").Set(a.CI.Upper)

	group := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Subsystem: "group", Name: name, Help: help}, []string{"group"})
	}
	size := group("size", "Number of observations.")
	mean := group("mean", "Mean of the observations.")
	std := group("std", "Population standard deviation of the observations.")
	for _, g := range groups(a) {
		size.WithLabelValues(string(g.name)).Set(float64(g.summary.Size))
		mean.WithLabelValues(string(g.name)).Set(g.summary.Mean)
		std.WithLabelValues(string(g.name)).Set(g.summary.Std)
	}

	collectors := []prometheus.Collector{
		gauge("z_score", "Test mean distance from the control mean in standard errors.", a.ZScore),
		gauge("p_value", "Two-sided p-value of the z-score.", a.PValue),
		gauge("power", "Approximate power of the test.", a.Power),
		gauge("significant", "1 if the null hypothesis is rejected.", significant),
		effect, ci, size, mean, std,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// WritePrometheus writes the result in the Prometheus text exposition format
func WritePrometheus(w io.Writer, r Result) error {
	reg, err := newRegistry(r)
	if err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
