package abtest

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"

	"github.com/go-yaml/yaml"
	"github.com/spf13/pflag"
)

type options struct {
	options []ConfigOption
	err     error
}

// ParseCommandLine configures the analysis from command line options or from
// a YAML configuration file passed with the -c flag.  Returns a slice of
// functional options that can be applied to the configuration.
func ParseCommandLine() ([]ConfigOption, error) {
	pf := createFlagSet()
	return parse(os.Args[1:], pf)
}

func parse(args []string, pf *pflag.FlagSet) ([]ConfigOption, error) {
	options := options{}
	if err := pf.ParseAll(args, parseFlag(&options)); err != nil {
		return options.options, err
	}
	if pf.NArg() > 0 {
		return options.options, fmt.Errorf("unexpected arguments: %v", pf.Args())
	}
	return options.options, options.err
}

func createFlagSet() *pflag.FlagSet {
	pf := pflag.NewFlagSet("abtest", pflag.ContinueOnError)
	pf.Usage = func() {
		fmt.Printf("Usage of abtest:\nabtest <options>\nabtest --control-file control.csv --test-file test.csv <options>\n")
		fmt.Printf("\n%s", pf.FlagUsagesWrapped(10))
		fmt.Printf("\n\nWithout files the control and test groups are described by their mean, std and size.  Example:\n\nabtest --control-mean 55 --control-std 10 --control-size 10000 --test-mean 66 --test-std 40 --test-size 100\n")
	}

	pf.StringP("config", "c", "", "Use yaml configuration file")
	pf.String("control-file", "", "CSV file with control group observations")
	pf.String("test-file", "", "CSV file with test group observations")
	pf.String("control-column", "control", "Header of the column holding control observations")
	pf.String("test-column", "test", "Header of the column holding test observations")
	pf.String("delimiter", ",", "Field separator of the files.  Use tab for tab separated files")
	pf.Float64("control-mean", 55, "Mean of the control group")
	pf.Float64("control-std", 10, "Standard deviation of the control group.  Values <= 0 are replaced with 0.1")
	pf.Int("control-size", 10000, "Number of observations in the control group.  Values < 1 are replaced with 1")
	pf.Float64("test-mean", 66, "Mean of the test group")
	pf.Float64("test-std", 40, "Standard deviation of the test group.  Values <= 0 are replaced with 0.1")
	pf.Int("test-size", 100, "Number of observations in the test group.  Values < 1 are replaced with 1")
	pf.String("charts", "", "Write SVG charts of the analysis to this directory")
	pf.String("format", "text", "Report format: text, logfmt or prometheus")
	pf.BoolP("watch", "w", false, "Analyze the files again whenever they change.  Requires --control-file and --test-file")
	pf.BoolP("verbose", "v", false, "Log analysis steps to stderr")
	pf.Bool("no-error-reports", false, "Do not send reports when there are unexpected errors in the client")

	return pf
}

func parseFlag(o *options) func(*pflag.Flag, string) error {
	return func(flag *pflag.Flag, value string) error {
		switch flag.Name {
		case "config":
			opts, err := parseFromFile(value)
			if err != nil {
				o.err = err
				return err
			}
			o.options = append(o.options, opts...)
		default:
			option, err := handleOption(flag.Name, value)
			if err != nil {
				o.err = err
				return err
			}
			o.options = append(o.options, option)
		}
		return nil
	}
}

func handleOption(name string, value string) (ConfigOption, error) {
	switch name {
	case "control-file":
		return ControlFile(value), nil
	case "test-file":
		return TestFile(value), nil
	case "control-column":
		return ControlColumn(value), nil
	case "test-column":
		return TestColumn(value), nil
	case "delimiter":
		return Delimiter(value), nil
	case "control-mean":
		return ControlMean(value), nil
	case "control-std":
		return ControlStd(value), nil
	case "control-size":
		return ControlSize(value), nil
	case "test-mean":
		return TestMean(value), nil
	case "test-std":
		return TestStd(value), nil
	case "test-size":
		return TestSize(value), nil
	case "charts":
		return Charts(value), nil
	case "format":
		return ReportFormat(value), nil
	case "watch":
		return Watch(), nil
	case "verbose":
		return Verbose(), nil
	case "no-error-reports":
		return NoErrorReports(), nil
	default:
		return nil, fmt.Errorf("Unknown option: %s", name)
	}
}

func parseFromFile(fpath string) ([]ConfigOption, error) {
	var options []ConfigOption
	data, err := ioutil.ReadFile(fpath)
	if err != nil {
		return options, err
	}

	cfg := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return options, err
	}
	for k, v := range cfg {
		var value string
		switch val := v.(type) {
		case string:
			value = val
		case int:
			value = strconv.Itoa(val)
		case float64:
			value = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			// flags that take no value are only applied when true
			if !val {
				if _, err := handleOption(k, ""); err != nil {
					return options, err
				}
				continue
			}
		default:
			return options, fmt.Errorf("Could not process config key %s, unknown type", k)
		}
		opt, err := handleOption(k, value)
		if err != nil {
			return options, err
		}
		options = append(options, opt)
	}
	return options, nil
}
