package abtest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/BTBurke/abtest/pkg/eventbus"
	"github.com/BTBurke/abtest/pkg/sample"
	"github.com/BTBurke/abtest/pkg/stat"
)

const (
	// shutdownTimeout bounds how long Run waits for renderers to finish
	shutdownTimeout = 30 * time.Second
	// debounce collects bursts of file events into one reload
	debounce = 200 * time.Millisecond
)

// Analyzer runs an analysis from a configuration and renders it
type Analyzer struct {
	Config Config

	out      io.Writer
	errOut   io.Writer
	log      *zap.Logger
	errors   ErrorReporter
	debounce time.Duration
}

// New returns an analyzer configured with options.  All configuration errors are returned together.
func New(options ...ConfigOption) (*Analyzer, []error) {
	c, errs := NewConfig(options...)
	if len(errs) > 0 {
		return nil, errs
	}

	log := zap.NewNop()
	if c.Verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, []error{fmt.Errorf("could not create logger: %w", err)}
		}
		log = l
	}
	return &Analyzer{
		Config:   *c,
		out:      os.Stdout,
		errOut:   os.Stderr,
		log:      log,
		errors:   NewErrorReporter(),
		debounce: debounce,
	}, nil
}

// Run reads the samples when files are configured, analyzes them or the manual summaries and writes the report and
// charts.  With Watch set, uploaded files are analyzed again on every change until the context is done.  It returns
// after every renderer has finished.
func (a *Analyzer) Run(ctx context.Context) error {
	defer a.log.Sync()

	bus := eventbus.New()
	Renderer{
		OnResult: ReportWriter(a.out, a.Config.Format),
		OnSample: a.previewWriter(),
		Errors:   a.errors,
		Log:      a.log,
	}.Listen(bus)
	if a.Config.ChartDir != "" {
		Renderer{OnResult: ChartWriter(a.Config.ChartDir, a.log), Errors: a.errors, Log: a.log}.Listen(bus)
	}

	err := a.analyze(ctx, bus)

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := bus.Shutdown(sctx); serr != nil && err == nil {
		err = serr
	}
	// flush queued error reports before the process exits
	if w, ok := a.errors.(interface{ Wait() }); ok {
		w.Wait()
	}
	return err
}

func (a *Analyzer) analyze(ctx context.Context, bus *eventbus.EventBus) error {
	s, err := NewSession(a.Config.Control, a.Config.Test, WithBus(bus), WithLogger(a.log))
	if err != nil {
		return err
	}

	if !a.Config.Uploaded() {
		_, err := s.Reset()
		return err
	}

	for _, g := range []Group{ControlGroup, TestGroup} {
		if err := a.load(s, g); err != nil {
			return err
		}
	}
	if _, err := s.AnalyzeUploaded(); err != nil {
		return err
	}

	if !a.Config.Watch {
		return nil
	}
	return a.watch(ctx, s)
}

// load reads the group's column from its file into the session
func (a *Analyzer) load(s *Session, g Group) error {
	xs, err := a.read(g)
	if err != nil {
		return err
	}
	if g == ControlGroup {
		return s.LoadControl(xs)
	}
	return s.LoadTest(xs)
}

// read returns the group's sample from its file.  A sample the engine would reject is an error here so that callers
// can check every file before changing the session.
func (a *Analyzer) read(g Group) ([]float64, error) {
	path, column := a.Config.ControlFile, a.Config.ControlColumn
	if g == TestGroup {
		path, column = a.Config.TestFile, a.Config.TestColumn
	}
	var opts []sample.Option
	if a.Config.Delimiter != 0 {
		opts = append(opts, sample.Delimiter(a.Config.Delimiter))
	}
	xs, err := sample.ReadFile(path, column, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := stat.Summarize(xs); err != nil {
		return nil, fmt.Errorf("%s sample: %w", g, err)
	}
	return xs, nil
}

func (a *Analyzer) previewWriter() SampleHandler {
	if a.Config.Format != FormatText {
		return nil
	}
	w := PreviewWriter(a.out)
	return func(s SampleLoadedData) error {
		if err := w(s); err != nil {
			return err
		}
		_, err := fmt.Fprintln(a.out)
		return err
	}
}
