package abtest

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BTBurke/abtest/pkg/stat"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestAnalyzer(t *testing.T, opts ...ConfigOption) (*Analyzer, *bytes.Buffer) {
	a, errs := New(append(opts, NoErrorReports())...)
	require.Nil(t, errs)
	var b bytes.Buffer
	a.out = &b
	return a, &b
}

func TestAnalyzerManual(t *testing.T) {
	defer func() { SuppressErrorReporting = false }()

	a, out := newTestAnalyzer(t)
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), RejectNull)
	assert.Contains(t, out.String(), "11.00")
}

func TestAnalyzerUploaded(t *testing.T) {
	defer func() { SuppressErrorReporting = false }()

	dir, err := ioutil.TempDir("", "abtestrun")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	control := writeCSV(t, dir, "control.csv", "id,control\n1,10\n2,11\n3,9\n4,10\n5,n/a\n")
	test := writeCSV(t, dir, "test.csv", "test\n10\n10.5\n9.5\n")

	a, out := newTestAnalyzer(t, ControlFile(control), TestFile(test), Charts(filepath.Join(dir, "charts")))
	require.NoError(t, a.Run(context.Background()))

	assert.Contains(t, out.String(), "control: 4 records")
	assert.Contains(t, out.String(), "test: 3 records")
	assert.Contains(t, out.String(), DoNotRejectNull)
	for _, name := range chartOrder {
		_, err := os.Stat(filepath.Join(dir, "charts", name))
		assert.NoError(t, err, name)
	}
}

func TestAnalyzerLogfmt(t *testing.T) {
	defer func() { SuppressErrorReporting = false }()

	a, out := newTestAnalyzer(t, ReportFormat("logfmt"))
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "analysis[stat=z_score] 11\n")
	assert.NotContains(t, out.String(), "records")
}

func TestAnalyzerInvalidInput(t *testing.T) {
	defer func() { SuppressErrorReporting = false }()

	dir, err := ioutil.TempDir("", "abtestrun")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	tt := []struct {
		Name    string
		Control string
		Test    string
	}{
		{Name: "missing column", Control: "value\n1\n", Test: "test\n1\n"},
		{Name: "no numeric data", Control: "control\n1\n", Test: "test\na\nb\n"},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			control := writeCSV(t, dir, "control.csv", tc.Control)
			test := writeCSV(t, dir, "test.csv", tc.Test)

			a, out := newTestAnalyzer(t, ControlFile(control), TestFile(test))
			err := a.Run(context.Background())
			var invalid stat.InvalidInput
			assert.True(t, errors.As(err, &invalid))
			assert.NotContains(t, out.String(), "Null Hypothesis")
		})
	}
}

func TestAnalyzerMissingFile(t *testing.T) {
	defer func() { SuppressErrorReporting = false }()

	a, _ := newTestAnalyzer(t, ControlFile("/does/not/exist.csv"), TestFile("/does/not/exist.csv"))
	assert.Error(t, a.Run(context.Background()))
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestAnalyzerWatch(t *testing.T) {
	defer func() { SuppressErrorReporting = false }()

	dir, err := ioutil.TempDir("", "abtestwatch")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	control := writeCSV(t, dir, "control.csv", "control\n10\n11\n9\n10\n")
	test := writeCSV(t, dir, "test.csv", "test\n10\n10.5\n9.5\n")

	a, errs := New(ControlFile(control), TestFile(test), Watch(), NoErrorReports())
	require.Nil(t, errs)
	var out, errOut syncBuffer
	a.out, a.errOut = &out, &errOut
	a.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- a.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), DoNotRejectNull)
	}, 5*time.Second, 10*time.Millisecond)

	// rewrite until the watcher picks up the change
	assert.Eventually(t, func() bool {
		ioutil.WriteFile(test, []byte("test\n20\n21\n22\n"), 0644)
		return strings.Contains(out.String(), "\n"+RejectNull+"\n")
	}, 5*time.Second, 50*time.Millisecond)

	// an invalid file keeps the last samples
	assert.Eventually(t, func() bool {
		ioutil.WriteFile(test, []byte("other\n1\n"), 0644)
		return strings.Contains(errOut.String(), "Could not reload test data")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestAnalyzerReloadKeepsSamples(t *testing.T) {
	defer func() { SuppressErrorReporting = false }()

	dir, err := ioutil.TempDir("", "abtestreload")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	control := writeCSV(t, dir, "control.csv", "control\n10\n11\n9\n10\n")
	test := writeCSV(t, dir, "test.csv", "test\n10\n10.5\n9.5\n")

	a, _ := newTestAnalyzer(t, ControlFile(control), TestFile(test))
	var errOut bytes.Buffer
	a.errOut = &errOut

	s, err := NewSession(a.Config.Control, a.Config.Test)
	require.NoError(t, err)
	require.NoError(t, a.load(s, ControlGroup))
	require.NoError(t, a.load(s, TestGroup))
	_, err = s.AnalyzeUploaded()
	require.NoError(t, err)

	writeCSV(t, dir, "control.csv", "control\n100\n200\n")
	writeCSV(t, dir, "test.csv", "other\n1\n")
	a.reload(s, map[Group]bool{ControlGroup: true, TestGroup: true})

	assert.Contains(t, errOut.String(), "Could not reload test data")
	r, err := s.AnalyzeUploaded()
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11, 9, 10}, r.Control)
	assert.Equal(t, []float64{10, 10.5, 9.5}, r.Test)
}

func TestAnalyzerDelimiter(t *testing.T) {
	defer func() { SuppressErrorReporting = false }()

	dir, err := ioutil.TempDir("", "abtestdelim")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	control := writeCSV(t, dir, "control.tsv", "id\tcontrol\n1\t10\n2\t11\n3\t9\n")
	test := writeCSV(t, dir, "test.tsv", "test\n10\n10.5\n")

	a, out := newTestAnalyzer(t, ControlFile(control), TestFile(test), Delimiter("tab"))
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "control: 3 records")
	assert.Contains(t, out.String(), "test: 2 records")
}
