// Package sim is a simulated reconstruction bench: an engine that renders
// previews of a synthetic test object and a hardware stub for focus and
// lighting.
package sim

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/values"
)

// Options tune the simulation
type Options struct {
	// Steps is the number of progress events a run publishes
	Steps int
	// Interval is the work time per step
	Interval time.Duration
	// PreviewSize is the edge of the square preview in pixels
	PreviewSize int
	// FocusDistance is where the bench is in focus, in millimetres
	FocusDistance float64
	// Magnification is source-detector over source-object for synthesised tables
	Magnification float64
	// FailAfter makes runs fail after that many steps when positive
	FailAfter int
	// Seed drives the detector noise
	Seed uint64
}

// DefaultOptions returns a bench that runs for about two seconds
func DefaultOptions() Options {
	return Options{
		Steps:         50,
		Interval:      40 * time.Millisecond,
		PreviewSize:   128,
		FocusDistance: 180,
		Magnification: 2,
		Seed:          1,
	}
}

// Engine is the simulated engine. Run, TestGeometry and AutoGeometry run on
// worker goroutines while Refresh and Pan come from the UI, so the mutable
// state sits behind a mutex.
type Engine struct {
	opts Options

	mu      sync.Mutex
	pan     image.Point
	slices  int
	lastRaw plane
	hasRaw  bool
}

var _ engine.Engine = (*Engine)(nil)

// NewEngine creates a simulated engine
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

func (opts Options) withDefaults() Options {
	d := DefaultOptions()
	if opts.Steps <= 0 {
		opts.Steps = d.Steps
	}
	if opts.PreviewSize <= 0 {
		opts.PreviewSize = d.PreviewSize
	}
	if opts.FocusDistance <= 0 {
		opts.FocusDistance = d.FocusDistance
	}
	if opts.Magnification <= 0 {
		opts.Magnification = d.Magnification
	}
	return opts
}

// Run reconstructs the snapshot. Cancellation is checked between steps.
func (e *Engine) Run(ctx context.Context, snap values.Snapshot, progress engine.ProgressFunc) engine.Result {
	if snap.Distance == 0 {
		return engine.Result{Status: engine.Failed, Reason: "source-object distance is zero"}
	}
	if err := snap.Validate(); err != nil {
		return engine.Result{Status: engine.Failed, Reason: err.Error()}
	}

	total := sliceCount(snap.Scan.SliceThickness)
	logrus.Infof("sim: run started, %d slices at %g mm", total, snap.Scan.SliceThickness)

	var timer *time.Timer
	for i := 0; i < e.opts.Steps; i++ {
		done := total * i / e.opts.Steps
		if e.opts.FailAfter > 0 && i >= e.opts.FailAfter {
			return engine.Result{Status: engine.Failed, Reason: fmt.Sprintf("detector stopped responding at slice %d", done), Slices: done}
		}
		if e.opts.Interval > 0 {
			if timer == nil {
				timer = time.NewTimer(e.opts.Interval)
				defer timer.Stop()
			} else {
				timer.Reset(e.opts.Interval)
			}
			select {
			case <-ctx.Done():
				return engine.Result{Status: engine.Cancelled, Reason: "cancelled", Slices: done}
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return engine.Result{Status: engine.Cancelled, Reason: "cancelled", Slices: done}
		}
		if progress != nil {
			progress(float64(i+1) / float64(e.opts.Steps))
		}
	}

	raw := acquire(object(e.opts.PreviewSize, snap.ResolutionPhantoms, snap.ContrastPhantoms), snap.GainIndex, e.opts.Seed)
	e.mu.Lock()
	e.slices = total
	e.lastRaw = raw
	e.hasRaw = true
	e.mu.Unlock()
	return engine.Result{Status: engine.Completed, Slices: total}
}

func sliceCount(thickness float64) int {
	if !(thickness > 0) {
		return 0
	}
	return max(1, int(math.Round(fieldOfView/thickness)))
}

// Slices returns how many slices the last completed run produced
func (e *Engine) Slices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slices
}

// TestGeometry checks the projection table for consistent magnification
// and measures the detector offset drift per degree.
func (e *Engine) TestGeometry(ctx context.Context, snap values.Snapshot) (engine.GeometryReport, error) {
	rows := snap.Scan.Angles
	if len(rows) == 0 {
		return engine.GeometryReport{}, errors.New("projection table is empty")
	}
	mags := make([]float64, 0, len(rows))
	angles := make([]float64, 0, len(rows))
	offsets := make([]float64, 0, len(rows))
	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return engine.GeometryReport{}, err
		}
		if !(r.SourceObject > 0) || r.SourceDetector < r.SourceObject {
			return engine.GeometryReport{}, fmt.Errorf("row %d: source-detector %g must exceed source-object %g > 0", i+1, r.SourceDetector, r.SourceObject)
		}
		mags = append(mags, r.SourceDetector/r.SourceObject)
		angles = append(angles, r.Angle)
		offsets = append(offsets, r.DetectorOffset)
	}

	rep := engine.GeometryReport{Angles: len(rows)}
	if len(rows) == 1 {
		rep.MeanMagnification = mags[0]
		return rep, nil
	}
	rep.MeanMagnification, rep.StdMagnification = stat.MeanStdDev(mags, nil)
	if stat.Variance(angles, nil) > 0 {
		_, rep.OffsetDrift = stat.LinearRegression(angles, offsets, nil, false)
	}
	return rep, nil
}

// simulated detector offset at zero degrees and its drift per degree
const (
	trueOffset = 0.35
	trueDrift  = 0.002
)

// AutoGeometry measures the detector offset at every table angle and
// replaces the offsets with the fitted line. An empty table is synthesised
// at 45 degree steps from the current distance.
func (e *Engine) AutoGeometry(ctx context.Context, snap values.Snapshot) ([]values.ProjectionAngle, error) {
	rows := snap.Scan.Angles
	if len(rows) == 0 {
		if !(snap.Distance > 0) {
			return nil, errors.New("cannot synthesise a projection table at zero distance")
		}
		for a := 0.0; a < 360; a += 45 {
			rows = append(rows, values.ProjectionAngle{
				Angle:          a,
				SourceObject:   snap.Distance,
				SourceDetector: snap.Distance * e.opts.Magnification,
			})
		}
	}

	angles := make([]float64, len(rows))
	measured := make([]float64, len(rows))
	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		angles[i] = r.Angle
		// deterministic measurement jitter
		measured[i] = trueOffset + trueDrift*r.Angle + 0.01*math.Sin(float64(i)*2.3)
	}

	out := make([]values.ProjectionAngle, len(rows))
	copy(out, rows)
	if len(rows) == 1 || stat.Variance(angles, nil) == 0 {
		mean := stat.Mean(measured, nil)
		for i := range out {
			out[i].DetectorOffset = mean
		}
		return out, nil
	}
	alpha, beta := stat.LinearRegression(angles, measured, nil, false)
	for i := range out {
		out[i].DetectorOffset = math.Round((alpha+beta*out[i].Angle)*1e4) / 1e4
	}
	logrus.Debugf("sim: auto geometry offset %.4f drift %.5f", alpha, beta)
	return out, nil
}

// Refresh renders the preview of a page
func (e *Engine) Refresh(ctx context.Context, snap values.Snapshot, page engine.Page) (engine.Frame, error) {
	if err := ctx.Err(); err != nil {
		return engine.Frame{}, err
	}
	e.mu.Lock()
	raw, ok := e.lastRaw, e.hasRaw
	pan := e.pan
	e.mu.Unlock()
	if !ok || raw.n != e.opts.PreviewSize {
		raw = acquire(object(e.opts.PreviewSize, snap.ResolutionPhantoms, snap.ContrastPhantoms), snap.GainIndex, e.opts.Seed)
	}

	angle := 0.0
	if len(snap.Scan.Angles) > 0 {
		angle = snap.Scan.Angles[0].Angle
	}

	var src plane
	var inset *plane
	switch page {
	case engine.PageSlice:
		src = raw
		if snap.ProjectionView {
			p := projection(raw, angle)
			inset = &p
		}
	case engine.PageProjection:
		src = projection(raw, angle)
	case engine.PageSinogram:
		src = sinogram(raw)
	default:
		return engine.Frame{}, fmt.Errorf("unknown page %d", int(page))
	}

	img, used := render(src, snap, inset, pan)
	if used != pan {
		e.mu.Lock()
		e.pan = used
		e.mu.Unlock()
	}
	return engine.Frame{Page: page, Image: img}, nil
}

// Pan shifts the zoomed view. The offset is clamped at the next refresh.
func (e *Engine) Pan(dx, dy int) {
	e.mu.Lock()
	e.pan = e.pan.Add(image.Pt(dx, dy))
	e.mu.Unlock()
}

// PanOffset returns the current pan offset in preview pixels
func (e *Engine) PanOffset() image.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pan
}
