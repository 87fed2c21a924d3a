package abtest

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/BTBurke/abtest/pkg/eventbus"
)

// ResultHandler renders one analysis result
type ResultHandler func(r Result) error

// SampleHandler renders one loaded sample
type SampleHandler func(s SampleLoadedData) error

// Renderer consumes session events from the bus.  Handler errors are sent to the error reporter and logged, they do
// not stop the renderer.
type Renderer struct {
	OnResult ResultHandler
	OnSample SampleHandler
	Errors   ErrorReporter
	Log      *zap.Logger
}

// Listen subscribes the renderer to the analysis topic and handles events in the background until the bus shuts down
func (r Renderer) Listen(bus *eventbus.EventBus) {
	events, done := bus.Subscribe(AnalysisTopic)
	if r.Log == nil {
		r.Log = zap.NewNop()
	}
	go func() {
		defer done()
		for e := range events {
			if err := r.handle(e); err != nil {
				r.Log.Error("render failed", zap.String("event", string(e.EventType)), zap.Error(err))
				if r.Errors != nil {
					r.Errors.ReportError(err)
				}
			}
		}
	}()
}

func (r Renderer) handle(e eventbus.Event) error {
	switch e.EventType {
	case AnalysisReady:
		res, ok := e.Data.(Result)
		if !ok {
			return fmt.Errorf("unexpected data for %s: %T", e.EventType, e.Data)
		}
		if r.OnResult != nil {
			return r.OnResult(res)
		}
	case SampleLoaded:
		s, ok := e.Data.(SampleLoadedData)
		if !ok {
			return fmt.Errorf("unexpected data for %s: %T", e.EventType, e.Data)
		}
		if r.OnSample != nil {
			return r.OnSample(s)
		}
	}
	return nil
}

// ReportWriter writes each result to w in the given format
func ReportWriter(w io.Writer, f Format) ResultHandler {
	return func(r Result) error {
		return Write(w, r, f)
	}
}

// ChartWriter renders each result as SVG charts in dir.  Every result replaces the charts of the previous one.
func ChartWriter(dir string, log *zap.Logger) ResultHandler {
	return func(r Result) error {
		paths, err := NewChartSet(r).Render(dir)
		if err != nil {
			return err
		}
		log.Info("charts written", zap.Strings("paths", paths))
		return nil
	}
}

// PreviewWriter writes a preview of each loaded sample to w
func PreviewWriter(w io.Writer) SampleHandler {
	return func(s SampleLoadedData) error {
		p, err := NewPreview(s.Group, s.Sample)
		if err != nil {
			return err
		}
		return p.Write(w)
	}
}
