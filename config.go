package abtest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/BTBurke/abtest/pkg/stat"
)

// Format selects how an analysis is written by the report writers
type Format string

const (
	// FormatText is a human readable report
	FormatText Format = "text"
	// FormatLogfmt writes one line per statistic as name[labels] value
	FormatLogfmt Format = "logfmt"
	// FormatPrometheus writes the Prometheus text exposition format, e.g. for a node exporter textfile collector
	FormatPrometheus Format = "prometheus"
)

// Config holds the inputs for one analysis.  When both files are set the groups are summarized from the named
// columns, otherwise the manual summaries are used.
type Config struct {
	ControlFile   string
	TestFile      string
	ControlColumn string
	TestColumn    string
	Delimiter     rune
	Control       stat.GroupSummary
	Test          stat.GroupSummary
	ChartDir      string
	Format        Format
	Watch         bool
	Verbose       bool
}

// ConfigOption is a functional option that configures the analysis
type ConfigOption func(c *Config) error

// DefaultControl and DefaultTest are the manual summaries used until the user provides their own
var (
	DefaultControl = stat.NewGroupSummary(10000, 55, 10)
	DefaultTest    = stat.NewGroupSummary(100, 66, 40)
)

// NewConfig returns the analysis configuration after applying options.  All option errors are returned together.
func NewConfig(options ...ConfigOption) (*Config, []error) {
	c := &Config{
		ControlColumn: "control",
		TestColumn:    "test",
		Delimiter:     ',',
		Control:       DefaultControl,
		Test:          DefaultTest,
		Format:        FormatText,
	}

	var errors []error
	for _, option := range options {
		if err := option(c); err != nil {
			errors = append(errors, err)
		}
	}
	if (c.ControlFile == "") != (c.TestFile == "") {
		errors = append(errors, fmt.Errorf("both --control-file and --test-file are required to analyze uploaded data"))
	}
	if c.Watch && !c.Uploaded() {
		errors = append(errors, fmt.Errorf("--watch requires --control-file and --test-file"))
	}

	if len(errors) > 0 {
		return nil, errors
	}
	c.Control = c.Control.Normalize()
	c.Test = c.Test.Normalize()
	return c, nil
}

// Uploaded reports whether the groups should be read from files
func (c *Config) Uploaded() bool {
	return c.ControlFile != "" && c.TestFile != ""
}

// ControlFile sets the delimited file with control observations
func ControlFile(path string) ConfigOption {
	return func(c *Config) error {
		c.ControlFile = path
		return nil
	}
}

// TestFile sets the delimited file with test observations
func TestFile(path string) ConfigOption {
	return func(c *Config) error {
		c.TestFile = path
		return nil
	}
}

// Delimiter sets the field separator of both files.  "tab" or "\t" selects a tab.
func Delimiter(d string) ConfigOption {
	return func(c *Config) error {
		if d == "tab" || d == `\t` {
			d = "\t"
		}
		r, n := utf8.DecodeRuneInString(d)
		if n == 0 || n != len(d) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
			return fmt.Errorf("delimiter must be a single character other than a quote or newline: %q", d)
		}
		c.Delimiter = r
		return nil
	}
}

// ControlColumn sets the header of the column holding control observations
func ControlColumn(name string) ConfigOption {
	return func(c *Config) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("control-column can not be empty")
		}
		c.ControlColumn = name
		return nil
	}
}

// TestColumn sets the header of the column holding test observations
func TestColumn(name string) ConfigOption {
	return func(c *Config) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("test-column can not be empty")
		}
		c.TestColumn = name
		return nil
	}
}

func ControlMean(mean string) ConfigOption {
	return func(c *Config) error {
		m, err := parseFloat("control-mean", mean)
		if err != nil {
			return err
		}
		c.Control.Mean = m
		return nil
	}
}

func ControlStd(std string) ConfigOption {
	return func(c *Config) error {
		s, err := parseFloat("control-std", std)
		if err != nil {
			return err
		}
		c.Control.Std = s
		c.Control.Variance = s * s
		return nil
	}
}

func ControlSize(size string) ConfigOption {
	return func(c *Config) error {
		n, err := strconv.Atoi(size)
		if err != nil {
			return fmt.Errorf("could not convert control-size to integer")
		}
		c.Control.Size = n
		return nil
	}
}

func TestMean(mean string) ConfigOption {
	return func(c *Config) error {
		m, err := parseFloat("test-mean", mean)
		if err != nil {
			return err
		}
		c.Test.Mean = m
		return nil
	}
}

func TestStd(std string) ConfigOption {
	return func(c *Config) error {
		s, err := parseFloat("test-std", std)
		if err != nil {
			return err
		}
		c.Test.Std = s
		c.Test.Variance = s * s
		return nil
	}
}

func TestSize(size string) ConfigOption {
	return func(c *Config) error {
		n, err := strconv.Atoi(size)
		if err != nil {
			return fmt.Errorf("could not convert test-size to integer")
		}
		c.Test.Size = n
		return nil
	}
}

// Charts writes SVG charts for each analysis into dir
func Charts(dir string) ConfigOption {
	return func(c *Config) error {
		c.ChartDir = dir
		return nil
	}
}

// ReportFormat sets the report format, text, logfmt or prometheus
func ReportFormat(format string) ConfigOption {
	return func(c *Config) error {
		switch f := Format(strings.ToLower(format)); f {
		case FormatText, FormatLogfmt, FormatPrometheus:
			c.Format = f
			return nil
		default:
			return fmt.Errorf("unknown format %q, must be text, logfmt or prometheus", format)
		}
	}
}

// Watch analyzes the uploaded files again whenever they change
func Watch() ConfigOption {
	return func(c *Config) error {
		c.Watch = true
		return nil
	}
}

// Verbose enables development logging
func Verbose() ConfigOption {
	return func(c *Config) error {
		c.Verbose = true
		return nil
	}
}

// NoErrorReports will not report unhandled errors to the crash reporting service
func NoErrorReports() ConfigOption {
	return func(c *Config) error {
		SuppressErrorReporting = true
		return nil
	}
}

func parseFloat(name string, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("could not convert %s to a number: %s", name, value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be a finite number: %s", name, value)
	}
	return f, nil
}
