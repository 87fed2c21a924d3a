package abtest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watch reloads and analyzes the uploaded files after they change.  The directories holding the files are watched so
// that editors which replace a file on save are noticed.  A file that no longer parses is reported and the previous
// samples are kept.
func (a *Analyzer) watch(ctx context.Context, s *Session) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not watch files: %w", err)
	}
	defer w.Close()

	files := map[string]Group{}
	for g, f := range map[Group]string{ControlGroup: a.Config.ControlFile, TestGroup: a.Config.TestFile} {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		files[abs] = g
	}
	dirs := map[string]bool{}
	for f := range files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("could not watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	a.log.Info("watching", zap.String("control", a.Config.ControlFile), zap.String("test", a.Config.TestFile))

	pending := map[Group]bool{}
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			g, watched := files[filepath.Clean(e.Name)]
			if !watched || !(e.Has(fsnotify.Write) || e.Has(fsnotify.Create)) {
				continue
			}
			pending[g] = true
			if timer == nil {
				timer = time.NewTimer(a.debounce)
			} else {
				timer.Reset(a.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			a.reload(s, pending)
			pending = map[Group]bool{}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watch error", zap.Error(err))
		}
	}
}

// reload reads every changed file before loading any of them, so a file that fails leaves both samples as they were
func (a *Analyzer) reload(s *Session, changed map[Group]bool) {
	samples := map[Group][]float64{}
	for _, g := range []Group{ControlGroup, TestGroup} {
		if !changed[g] {
			continue
		}
		xs, err := a.read(g)
		if err != nil {
			a.log.Warn("reload failed", zap.String("group", string(g)), zap.Error(err))
			fmt.Fprintf(a.errOut, "Could not reload %s data: %s\n", g, err)
			return
		}
		samples[g] = xs
	}
	for _, g := range []Group{ControlGroup, TestGroup} {
		xs, ok := samples[g]
		if !ok {
			continue
		}
		var err error
		if g == ControlGroup {
			err = s.LoadControl(xs)
		} else {
			err = s.LoadTest(xs)
		}
		if err != nil {
			a.errors.ReportError(err)
			fmt.Fprintf(a.errOut, "Could not reload %s data: %s\n", g, err)
			return
		}
	}
	if _, err := s.AnalyzeUploaded(); err != nil {
		a.errors.ReportError(err)
		fmt.Fprintf(a.errOut, "Analysis error: %s\n", err)
	}
}
