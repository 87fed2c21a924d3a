package abtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BTBurke/abtest/pkg/stat"
)

func TestConfigOptions(t *testing.T) {
	assert := assert.New(t)

	tt := []struct {
		Name   string
		Option ConfigOption
		Expect Config
		Error  bool
	}{
		{Name: "control file", Option: ControlFile("c.csv"), Expect: Config{ControlFile: "c.csv"}},
		{Name: "test file", Option: TestFile("t.csv"), Expect: Config{TestFile: "t.csv"}},
		{Name: "control column", Option: ControlColumn("before"), Expect: Config{ControlColumn: "before"}},
		{Name: "control column empty", Option: ControlColumn(" "), Error: true},
		{Name: "test column", Option: TestColumn("after"), Expect: Config{TestColumn: "after"}},
		{Name: "test column empty", Option: TestColumn(""), Error: true},
		{Name: "control mean", Option: ControlMean("12.5"), Expect: Config{Control: stat.GroupSummary{Mean: 12.5}}},
		{Name: "control mean negative", Option: ControlMean("-3"), Expect: Config{Control: stat.GroupSummary{Mean: -3}}},
		{Name: "control mean non-numeric", Option: ControlMean("abc"), Error: true},
		{Name: "control std", Option: ControlStd("2"), Expect: Config{Control: stat.GroupSummary{Std: 2, Variance: 4}}},
		{Name: "control std non-numeric", Option: ControlStd("2a"), Error: true},
		{Name: "control std NaN", Option: ControlStd("NaN"), Error: true},
		{Name: "control std Inf", Option: ControlStd("Inf"), Error: true},
		{Name: "control mean -Inf", Option: ControlMean("-Inf"), Error: true},
		{Name: "control size", Option: ControlSize("50"), Expect: Config{Control: stat.GroupSummary{Size: 50}}},
		{Name: "control size non-integer", Option: ControlSize("5.5"), Error: true},
		{Name: "test mean", Option: TestMean("7"), Expect: Config{Test: stat.GroupSummary{Mean: 7}}},
		{Name: "test mean non-numeric", Option: TestMean(""), Error: true},
		{Name: "test std", Option: TestStd("3"), Expect: Config{Test: stat.GroupSummary{Std: 3, Variance: 9}}},
		{Name: "test std non-numeric", Option: TestStd("x"), Error: true},
		{Name: "test std NaN", Option: TestStd("nan"), Error: true},
		{Name: "test mean +Inf", Option: TestMean("+Inf"), Error: true},
		{Name: "test size", Option: TestSize("20"), Expect: Config{Test: stat.GroupSummary{Size: 20}}},
		{Name: "test size non-integer", Option: TestSize("many"), Error: true},
		{Name: "charts", Option: Charts("out"), Expect: Config{ChartDir: "out"}},
		{Name: "format text", Option: ReportFormat("text"), Expect: Config{Format: FormatText}},
		{Name: "format logfmt", Option: ReportFormat("LOGFMT"), Expect: Config{Format: FormatLogfmt}},
		{Name: "format prometheus", Option: ReportFormat("prometheus"), Expect: Config{Format: FormatPrometheus}},
		{Name: "format unknown", Option: ReportFormat("xml"), Error: true},
		{Name: "delimiter", Option: Delimiter(";"), Expect: Config{Delimiter: ';'}},
		{Name: "delimiter tab", Option: Delimiter("tab"), Expect: Config{Delimiter: '\t'}},
		{Name: "delimiter escaped tab", Option: Delimiter(`\t`), Expect: Config{Delimiter: '\t'}},
		{Name: "delimiter empty", Option: Delimiter(""), Error: true},
		{Name: "delimiter too long", Option: Delimiter(";;"), Error: true},
		{Name: "delimiter quote", Option: Delimiter(`"`), Error: true},
		{Name: "watch", Option: Watch(), Expect: Config{Watch: true}},
		{Name: "verbose", Option: Verbose(), Expect: Config{Verbose: true}},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			c := Config{}
			err := tc.Option(&c)
			if tc.Error {
				assert.Error(err)
			} else {
				assert.NoError(err)
				assert.Equal(tc.Expect, c)
			}
		})
	}
}

func TestNewConfigDefaults(t *testing.T) {
	c, errs := NewConfig()
	require.Nil(t, errs)

	assert.Equal(t, "control", c.ControlColumn)
	assert.Equal(t, "test", c.TestColumn)
	assert.Equal(t, ',', c.Delimiter)
	assert.Equal(t, FormatText, c.Format)
	assert.Equal(t, stat.GroupSummary{Size: 10000, Mean: 55, Std: 10, Variance: 100}, c.Control)
	assert.Equal(t, stat.GroupSummary{Size: 100, Mean: 66, Std: 40, Variance: 1600}, c.Test)
	assert.False(t, c.Uploaded())
}

func TestNewConfig(t *testing.T) {
	tt := []struct {
		Name    string
		Options []ConfigOption
		Errors  int
		Check   func(t *testing.T, c *Config)
	}{
		{Name: "both files", Options: []ConfigOption{ControlFile("c.csv"), TestFile("t.csv")}, Check: func(t *testing.T, c *Config) {
			assert.True(t, c.Uploaded())
		}},
		{Name: "only control file", Options: []ConfigOption{ControlFile("c.csv")}, Errors: 1},
		{Name: "only test file", Options: []ConfigOption{TestFile("t.csv")}, Errors: 1},
		{Name: "watch without files", Options: []ConfigOption{Watch()}, Errors: 1},
		{Name: "watch with files", Options: []ConfigOption{Watch(), ControlFile("c.csv"), TestFile("t.csv")}, Check: func(t *testing.T, c *Config) {
			assert.True(t, c.Watch)
		}},
		{Name: "non-finite manual input rejected", Options: []ConfigOption{ControlStd("NaN"), TestSize("100")}, Errors: 1},
		{Name: "all errors returned", Options: []ConfigOption{ControlMean("a"), TestSize("b"), ReportFormat("c")}, Errors: 3},
		{Name: "degenerate manual input normalized", Options: []ConfigOption{ControlStd("0"), TestSize("0")}, Check: func(t *testing.T, c *Config) {
			assert.Equal(t, stat.MinStd, c.Control.Std)
			assert.Equal(t, stat.MinSize, c.Test.Size)
		}},
		{Name: "manual values kept", Options: []ConfigOption{ControlMean("1"), ControlStd("2"), ControlSize("3")}, Check: func(t *testing.T, c *Config) {
			assert.Equal(t, stat.GroupSummary{Size: 3, Mean: 1, Std: 2, Variance: 4}, c.Control)
			assert.Equal(t, DefaultTest, c.Test)
		}},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			c, errs := NewConfig(tc.Options...)
			if tc.Errors > 0 {
				assert.Len(t, errs, tc.Errors)
				assert.Nil(t, c)
				return
			}
			require.Nil(t, errs)
			tc.Check(t, c)
		})
	}
}

func TestNoErrorReports(t *testing.T) {
	defer func() { SuppressErrorReporting = false }()

	_, errs := NewConfig(NoErrorReports())
	require.Nil(t, errs)
	assert.True(t, SuppressErrorReporting)
}
