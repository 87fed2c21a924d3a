package abtest

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/BTBurke/abtest/pkg/stat"
)

// PreviewRows is the number of observations shown in a sample preview
const PreviewRows = 10

// PreviewRow is one observation with its 1-based position in the sample
type PreviewRow struct {
	Index int
	Value string
}

// Preview summarizes a loaded sample for display before analysis
type Preview struct {
	Group   Group
	Rows    []PreviewRow
	Records int
	Mean    string
	Std     string
}

// NewPreview returns the first rows of the sample and its summary
func NewPreview(group Group, xs []float64) (Preview, error) {
	s, err := stat.Summarize(xs)
	if err != nil {
		return Preview{}, fmt.Errorf("%s sample: %w", group, err)
	}
	n := len(xs)
	if n > PreviewRows {
		n = PreviewRows
	}
	rows := make([]PreviewRow, n)
	for i := 0; i < n; i++ {
		rows[i] = PreviewRow{Index: i + 1, Value: fmt.Sprintf("%.2f", xs[i])}
	}
	return Preview{
		Group:   group,
		Rows:    rows,
		Records: len(xs),
		Mean:    fmt.Sprintf("%.2f", s.Mean),
		Std:     fmt.Sprintf("%.2f", s.Std),
	}, nil
}

// Write writes the preview as a small table
func (p Preview) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s: %s records, mean %s, std %s\n", p.Group, FormatSize(p.Records), p.Mean, p.Std)
	fmt.Fprintf(tw, "Index\tValue\n")
	for _, r := range p.Rows {
		fmt.Fprintf(tw, "%d\t%s\n", r.Index, r.Value)
	}
	return tw.Flush()
}
