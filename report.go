package abtest

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/BTBurke/abtest/pkg/metric"
	"github.com/BTBurke/abtest/pkg/stat"
)

// Verdicts and conclusions shown for an analysis
const (
	RejectNull      = "Reject Null Hypothesis"
	DoNotRejectNull = "Do Not Reject Null Hypothesis"

	DifferentDistribution = "Test Group does NOT belong to the same distribution as Control Group."
	SameDistribution      = "Test Group likely belongs to the same distribution as Control Group."
)

// smallestP is the smallest p-value shown as a number
const smallestP = 0.0001

var printer = message.NewPrinter(language.English)

// Labels are the display strings of one analysis
type Labels struct {
	ZScore      string
	PValue      string
	CohensD     string
	Effect      string
	Power       string
	TypeIIError string
	CI          string
	Verdict     string
	Conclusion  string
	Detail      string
}

// NewLabels formats an analysis for display
func NewLabels(a stat.Analysis) Labels {
	l := Labels{
		ZScore:      fmt.Sprintf("%.2f", a.ZScore),
		PValue:      FormatPValue(a.PValue),
		CohensD:     fmt.Sprintf("%.2f", math.Abs(a.CohensD)),
		Effect:      a.Effect().String(),
		Power:       fmt.Sprintf("%.1f%%", a.Power*100),
		TypeIIError: fmt.Sprintf("%.1f%%", a.TypeIIError()*100),
		CI:          fmt.Sprintf("[%.2f, %.2f]", a.CI.Lower, a.CI.Upper),
	}
	if a.Significant() {
		l.Verdict = RejectNull
		l.Conclusion = DifferentDistribution
		l.Detail = fmt.Sprintf("The mean difference is statistically significant (p %s).", pDetail(a.PValue))
	} else {
		l.Verdict = DoNotRejectNull
		l.Conclusion = SameDistribution
		l.Detail = fmt.Sprintf("The mean difference is not statistically significant (p = %.4f).", a.PValue)
	}
	return l
}

// FormatPValue shows p-values below 0.0001 as "< 0.0001" and others with four decimals
func FormatPValue(p float64) string {
	if p < smallestP {
		return "< 0.0001"
	}
	return fmt.Sprintf("%.4f", p)
}

func pDetail(p float64) string {
	if p < smallestP {
		return "< 0.0001"
	}
	return fmt.Sprintf("= %.4f", p)
}

// FormatSize formats a group size with thousands separators
func FormatSize(n int) string {
	return printer.Sprintf("%d", n)
}

// WriteText writes a human readable report of the result
func WriteText(w io.Writer, r Result) error {
	a := r.Analysis
	l := NewLabels(a)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n%s\n%s\n\n", l.Verdict, l.Conclusion, l.Detail)
	fmt.Fprintf(tw, "Z-Score:\t%s\n", l.ZScore)
	fmt.Fprintf(tw, "P-Value:\t%s\n", l.PValue)
	fmt.Fprintf(tw, "Cohen's d:\t%s (%s)\n", l.CohensD, l.Effect)
	fmt.Fprintf(tw, "95%% CI:\t%s\n", l.CI)
	fmt.Fprintf(tw, "Power:\t%s\n", l.Power)
	fmt.Fprintf(tw, "Type II Error:\t%s\n\n", l.TypeIIError)

	fmt.Fprintf(tw, "Group\tSize\tMean\tSTD\tVariance\n")
	for _, g := range groups(a) {
		s := g.summary
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\n", g.name, FormatSize(s.Size), s.Mean, s.Std, s.Variance)
	}
	return tw.Flush()
}

type namedSummary struct {
	name    Group
	summary stat.GroupSummary
}

func groups(a stat.Analysis) []namedSummary {
	return []namedSummary{{ControlGroup, a.Control}, {TestGroup, a.Test}}
}

type line struct {
	name  metric.Name
	value float64
}

// WriteLogfmt writes one line per statistic, e.g. analysis[stat=z_score] 11
func WriteLogfmt(w io.Writer, r Result) error {
	a := r.Analysis
	analysis := metric.NewName("analysis", nil)
	group := metric.NewName("group", nil)

	significant := 0.0
	if a.Significant() {
		significant = 1
	}
	lines := []line{
		{analysis.With(map[string]string{"stat": "z_score"}), a.ZScore},
		{analysis.With(map[string]string{"stat": "p_value"}), a.PValue},
		{analysis.With(map[string]string{"stat": "cohens_d", "effect": a.Effect().String()}), a.CohensD},
		{analysis.With(map[string]string{"stat": "ci", "bound": "lower"}), a.CI.Lower},
		{analysis.With(map[string]string{"stat": "ci", "bound": "upper"}), a.CI.Upper},
		{analysis.With(map[string]string{"stat": "power"}), a.Power},
		{analysis.With(map[string]string{"stat": "significant"}), significant},
	}
	for _, g := range groups(a) {
		n, s := group.With(map[string]string{"group": string(g.name)}), g.summary
		lines = append(lines,
			line{n.With(map[string]string{"stat": "size"}), float64(s.Size)},
			line{n.With(map[string]string{"stat": "mean"}), s.Mean},
			line{n.With(map[string]string{"stat": "std"}), s.Std},
		)
	}

	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s %s\n", l.name, strconv.FormatFloat(l.value, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}

// Write writes the result in the given format
func Write(w io.Writer, r Result, f Format) error {
	switch f {
	case FormatLogfmt:
		return WriteLogfmt(w, r)
	case FormatPrometheus:
		return WritePrometheus(w, r)
	default:
		return WriteText(w, r)
	}
}
