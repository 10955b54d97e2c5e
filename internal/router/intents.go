package router

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/session"
	"github.com/HaiFongPan/reconsole/internal/values"
)

// Messages posted back to the UI thread

// QuitMsg asks the front-end to shut down
type QuitMsg struct{}

// ProgressMsg is an engine progress event for run ID
type ProgressMsg struct {
	ID       uint64
	Progress float64
}

// RunDoneMsg is the engine's completion signal for run ID
type RunDoneMsg struct {
	ID     uint64
	Result engine.Result
}

// FocusMsg carries the auto-focus result
type FocusMsg struct {
	Distance float64
	Err      error
}

// LightMsg carries the auto-light result
type LightMsg struct {
	Light engine.Light
	Err   error
	// Skipped is set when auto all dropped the light pass after a focus failure
	Skipped bool
}

// GeometryMsg carries a geometry test report
type GeometryMsg struct {
	Report engine.GeometryReport
	Err    error
}

// AutoGeometryMsg carries a fitted projection-angle table
type AutoGeometryMsg struct {
	Angles []values.ProjectionAngle
	Err    error
}

// LoadedMsg carries a configuration record read by Open
type LoadedMsg struct {
	Path   string
	Config values.ScanConfig
	Err    error
}

// SavedMsg reports the end of Save
type SavedMsg struct {
	Path string
	Err  error
}

func (r *Router) runTest(ctx context.Context, _ string) error {
	snap := r.Model.Snapshot()
	if err := snap.Validate(); err != nil {
		logrus.Warnf("router: run refused: %v", err)
		return err
	}
	id, err := r.Session.Begin()
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.runCancel = cancel
	eng := r.Engine
	r.post(func() any {
		res := eng.Run(runCtx, snap, func(p float64) {
			r.Post(ProgressMsg{ID: id, Progress: p})
		})
		return RunDoneMsg{ID: id, Result: res}
	})
	return nil
}

func (r *Router) cancelRun(ctx context.Context, _ string) error {
	if err := r.Session.RequestCancel(); err != nil {
		return err
	}
	if r.runCancel != nil {
		r.runCancel()
	}
	return nil
}

func (r *Router) testGeo(ctx context.Context, _ string) error {
	snap := r.Model.Snapshot()
	eng := r.Engine
	r.post(func() any {
		rep, err := eng.TestGeometry(ctx, snap)
		return GeometryMsg{Report: rep, Err: err}
	})
	return nil
}

func (r *Router) autoGeo(ctx context.Context, _ string) error {
	snap := r.Model.Snapshot()
	eng := r.Engine
	r.post(func() any {
		angles, err := eng.AutoGeometry(ctx, snap)
		return AutoGeometryMsg{Angles: angles, Err: err}
	})
	return nil
}

func (r *Router) autoFocus(ctx context.Context, _ string) error {
	hw := r.Hardware
	r.post(func() any {
		d, err := hw.AutoFocus(ctx)
		return FocusMsg{Distance: d, Err: err}
	})
	return nil
}

func (r *Router) autoLight(ctx context.Context, _ string) error {
	hw := r.Hardware
	r.post(func() any {
		l, err := hw.AutoLight(ctx)
		return LightMsg{Light: l, Err: err}
	})
	return nil
}

// autoAll focuses, then lights. A focus failure skips the light pass.
func (r *Router) autoAll(ctx context.Context, _ string) error {
	hw := r.Hardware
	r.post(func() any {
		d, err := hw.AutoFocus(ctx)
		r.Post(FocusMsg{Distance: d, Err: err})
		if err != nil {
			return LightMsg{Skipped: true}
		}
		l, err := hw.AutoLight(ctx)
		return LightMsg{Light: l, Err: err}
	})
	return nil
}

func (r *Router) open(ctx context.Context, path string) error {
	if path == "" {
		path = r.path
	}
	if path == "" {
		return fmt.Errorf("open: no path given")
	}
	store := r.Store
	r.post(func() any {
		cfg, err := store.Load(ctx, path)
		return LoadedMsg{Path: path, Config: cfg, Err: err}
	})
	return nil
}

func (r *Router) save(ctx context.Context, path string) error {
	if path == "" {
		path = r.path
	}
	if path == "" {
		return fmt.Errorf("save: no path given")
	}
	cfg := r.Model.Scan()
	store := r.Store
	r.post(func() any {
		return SavedMsg{Path: path, Err: store.Save(ctx, path, cfg)}
	})
	return nil
}

// Apply handles a posted message on the UI thread: it updates the session
// and the model and returns a notice for the status bar. ok is false for
// messages the router does not own.
func (r *Router) Apply(msg any) (n Notice, ok bool) {
	switch m := msg.(type) {
	case ProgressMsg:
		r.Session.SetProgress(m.ID, m.Progress)
		return Notice{}, true

	case RunDoneMsg:
		return r.finish(m), true

	case FocusMsg:
		if m.Err != nil {
			return errNotice("auto focus failed", m.Err), true
		}
		d, _ := r.Model.SetFloat(values.FieldDistance, m.Distance)
		return Notice{Level: Success, Text: fmt.Sprintf("focused at %.1f mm", d)}, true

	case LightMsg:
		if m.Skipped {
			return Notice{Level: Warning, Text: "auto light skipped after focus failure"}, true
		}
		if m.Err != nil {
			return errNotice("auto light failed", m.Err), true
		}
		err := r.Model.Batch(func(b *values.Batch) error {
			if err := b.Set(values.FieldWindow, values.Int(m.Light.Window)); err != nil {
				return err
			}
			return b.Set(values.FieldLevel, values.Int(m.Light.Level))
		})
		if err != nil {
			return errNotice("auto light failed", err), true
		}
		return Notice{Level: Success, Text: fmt.Sprintf("window %d, level %d",
			r.Model.Int(values.FieldWindow), r.Model.Int(values.FieldLevel))}, true

	case GeometryMsg:
		if m.Err != nil {
			return errNotice("geometry test failed", m.Err), true
		}
		return Notice{Level: Info, Text: m.Report.String()}, true

	case AutoGeometryMsg:
		if m.Err != nil {
			return errNotice("auto geometry failed", m.Err), true
		}
		if err := r.Model.SetAngles(m.Angles); err != nil {
			return errNotice("auto geometry failed", err), true
		}
		return Notice{Level: Success, Text: fmt.Sprintf("fitted %d projection angles", len(m.Angles))}, true

	case LoadedMsg:
		if m.Err != nil {
			return errNotice("open failed", m.Err), true
		}
		if err := r.Model.ApplyScan(m.Config); err != nil {
			return errNotice("open failed", err), true
		}
		r.path = m.Path
		return Notice{Level: Success, Text: "opened " + m.Path}, true

	case SavedMsg:
		if m.Err != nil {
			return errNotice("save failed", m.Err), true
		}
		r.path = m.Path
		return Notice{Level: Success, Text: "saved " + m.Path}, true
	}
	return Notice{}, false
}

func (r *Router) finish(m RunDoneMsg) Notice {
	o := session.Completed
	switch m.Result.Status {
	case engine.Cancelled:
		o = session.Cancelled
	case engine.Failed:
		o = session.Failed
	}
	if err := r.Session.Finish(m.ID, o, m.Result.Reason); err != nil {
		logrus.Warnf("router: stale completion: %v", err)
		return Notice{}
	}
	if r.runCancel != nil {
		r.runCancel()
		r.runCancel = nil
	}
	if r.quitting {
		r.quitting = false
		r.post(func() any { return QuitMsg{} })
	}

	switch o {
	case session.Cancelled:
		return Notice{Level: Warning, Text: "cancelled"}
	case session.Failed:
		return errNotice("run failed", m.Result.Err())
	}
	return Notice{Level: Success, Text: fmt.Sprintf("completed, %d slices", m.Result.Slices)}
}
