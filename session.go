package abtest

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/BTBurke/abtest/pkg/eventbus"
	"github.com/BTBurke/abtest/pkg/fsm"
	"github.com/BTBurke/abtest/pkg/stat"
)

// Session states
const (
	// Manual analyzes the manually entered summaries
	Manual fsm.State = "manual"
	// ControlLoaded has a control sample but no test sample
	ControlLoaded fsm.State = "control_loaded"
	// TestLoaded has a test sample but no control sample
	TestLoaded fsm.State = "test_loaded"
	// Ready has both samples and can analyze them
	Ready fsm.State = "ready"
	// Uploaded has analyzed both samples
	Uploaded fsm.State = "uploaded"
)

// Events dispatched on the session bus
const (
	// AnalysisReady carries a Result
	AnalysisReady eventbus.EventType = "analysis_ready"
	// SampleLoaded carries a SampleLoadedData
	SampleLoaded eventbus.EventType = "sample_loaded"
)

// AnalysisTopic is the bus topic for session events
const AnalysisTopic eventbus.Topic = "analysis"

// Group names one side of the comparison
type Group string

const (
	ControlGroup Group = "control"
	TestGroup    Group = "test"
)

// SampleLoadedData is the payload of a SampleLoaded event
type SampleLoadedData struct {
	Group  Group
	Sample []float64
}

// Result is one analysis and the raw samples it was computed from.  Control and Test are nil for manual analyses.
type Result struct {
	Analysis stat.Analysis
	Control  []float64
	Test     []float64
}

// Uploaded reports whether the result was computed from raw samples
func (r Result) Uploaded() bool {
	return r.Control != nil && r.Test != nil
}

// Session maps user actions (loading a sample, editing manual summaries, resetting, analyzing) onto the statistics
// engine.  Every analysis is dispatched as an AnalysisReady event when a bus is configured.
type Session struct {
	mu      sync.Mutex
	machine *fsm.Machine
	bus     *eventbus.EventBus
	log     *zap.Logger

	manualControl stat.GroupSummary
	manualTest    stat.GroupSummary
	control       []float64
	test          []float64
	last          *Result
}

// SessionOption configures a session
type SessionOption func(s *Session) error

// WithLogger logs session transitions and analyses
func WithLogger(log *zap.Logger) SessionOption {
	return func(s *Session) error {
		if log == nil {
			return fmt.Errorf("logger can not be nil")
		}
		s.log = log
		return nil
	}
}

// WithBus dispatches session events on the bus
func WithBus(bus *eventbus.EventBus) SessionOption {
	return func(s *Session) error {
		s.bus = bus
		return nil
	}
}

// NewSession returns a session in the manual state using the given summaries
func NewSession(control, test stat.GroupSummary, opts ...SessionOption) (*Session, error) {
	s := &Session{
		log:           zap.NewNop(),
		manualControl: control.Normalize(),
		manualTest:    test.Normalize(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	machine, err := fsm.NewMachine(Manual,
		fsm.WithTransitions(
			fsm.T(Manual, Manual, ControlLoaded, TestLoaded),
			fsm.T(ControlLoaded, Manual, ControlLoaded, Ready),
			fsm.T(TestLoaded, Manual, TestLoaded, Ready),
			fsm.T(Ready, Manual, Ready, Uploaded),
			fsm.T(Uploaded, Manual, Ready, Uploaded),
		),
		fsm.WithObserver(func(from, to fsm.State) {
			s.log.Debug("session transition", zap.String("from", string(from)), zap.String("to", string(to)))
		}),
	)
	if err != nil {
		return nil, err
	}
	s.machine = machine
	return s, nil
}

// State returns the current session state
func (s *Session) State() fsm.State {
	return s.machine.State()
}

// Last returns the most recent result, if any
func (s *Session) Last() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

// LoadControl stores the control sample.  An empty or non-finite sample is rejected with stat.InvalidInput and the
// session is unchanged.
func (s *Session) LoadControl(xs []float64) error {
	return s.load(ControlGroup, xs)
}

// LoadTest stores the test sample.  An empty or non-finite sample is rejected with stat.InvalidInput and the session
// is unchanged.
func (s *Session) LoadTest(xs []float64) error {
	return s.load(TestGroup, xs)
}

func (s *Session) load(group Group, xs []float64) error {
	if _, err := stat.Summarize(xs); err != nil {
		return fmt.Errorf("%s sample: %w", group, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sample := append([]float64(nil), xs...)
	var haveOther bool
	switch group {
	case ControlGroup:
		haveOther = s.test != nil
	case TestGroup:
		haveOther = s.control != nil
	}

	next := ControlLoaded
	if group == TestGroup {
		next = TestLoaded
	}
	if haveOther {
		next = Ready
	}
	if err := s.machine.Transition(next); err != nil {
		return err
	}

	if group == ControlGroup {
		s.control = sample
	} else {
		s.test = sample
	}
	s.log.Info("sample loaded", zap.String("group", string(group)), zap.Int("size", len(sample)))
	s.dispatch(eventbus.Event{EventType: SampleLoaded, Data: SampleLoadedData{Group: group, Sample: sample}})
	return nil
}

// AnalyzeUploaded analyzes the loaded samples.  Both samples must be loaded.
func (s *Session) AnalyzeUploaded() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.Transition(Uploaded); err != nil {
		return Result{}, fmt.Errorf("both samples must be loaded before analysis: %w", err)
	}
	// samples were validated when loaded
	control, _ := stat.Summarize(s.control)
	test, _ := stat.Summarize(s.test)

	r := Result{
		Analysis: stat.Analyze(control, test),
		Control:  s.control,
		Test:     s.test,
	}
	return s.publish(r), nil
}

// UpdateManual replaces the manual summaries, discards any loaded samples and analyzes the summaries.  Degenerate
// parameters are normalized.
func (s *Session) UpdateManual(control, test stat.GroupSummary) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manualControl = control.Normalize()
	s.manualTest = test.Normalize()
	return s.analyzeManual()
}

// Reset discards loaded samples and analyzes the current manual summaries
func (s *Session) Reset() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzeManual()
}

func (s *Session) analyzeManual() (Result, error) {
	if err := s.machine.Transition(Manual); err != nil {
		return Result{}, err
	}
	s.control, s.test = nil, nil
	return s.publish(Result{Analysis: stat.Analyze(s.manualControl, s.manualTest)}), nil
}

func (s *Session) publish(r Result) Result {
	s.last = &r
	a := r.Analysis
	s.log.Info("analysis complete",
		zap.Bool("uploaded", r.Uploaded()),
		zap.Float64("z", a.ZScore),
		zap.Float64("p", a.PValue),
		zap.Float64("d", a.CohensD),
		zap.Bool("significant", a.Significant()),
	)
	s.dispatch(eventbus.Event{EventType: AnalysisReady, Data: r})
	return r
}

func (s *Session) dispatch(e eventbus.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Dispatch(e, AnalysisTopic); err != nil {
		s.log.Warn("event not dispatched", zap.String("event", string(e.EventType)), zap.Error(err))
	}
}
