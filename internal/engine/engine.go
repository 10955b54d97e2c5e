// Package engine declares the collaborators the console drives: the
// reconstruction engine, the bench hardware and the configuration store.
package engine

import (
	"context"
	"fmt"
	"image"

	"github.com/HaiFongPan/reconsole/internal/values"
)

// Status is the outcome of a run
type Status int

const (
	Completed Status = iota
	Cancelled
	Failed
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result is the completion signal of a run
type Result struct {
	Status Status
	Reason string
	// Slices is the number of slices reconstructed before the run ended
	Slices int
}

// Err returns a *FailureError for failed runs and nil otherwise
func (r Result) Err() error {
	if r.Status != Failed {
		return nil
	}
	return &FailureError{Reason: r.Reason}
}

// FailureError is an engine-reported failure
type FailureError struct {
	Reason string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("engine failure: %s", e.Reason)
}

// ProgressFunc receives run progress in [0, 1]. It is called from the
// engine's goroutine.
type ProgressFunc func(p float64)

// Page is an image notebook tab
type Page int

const (
	PageSlice Page = iota
	PageProjection
	PageSinogram
)

// Pages lists the notebook tabs in order
var Pages = []Page{PageSlice, PageProjection, PageSinogram}

func (p Page) String() string {
	switch p {
	case PageSlice:
		return "Slice"
	case PageProjection:
		return "Projection"
	case PageSinogram:
		return "Sinogram"
	}
	return fmt.Sprintf("page(%d)", int(p))
}

// Frame is a rendered preview
type Frame struct {
	Page  Page
	Image image.Image
}

// GeometryReport summarises a geometry test over the projection table
type GeometryReport struct {
	Angles            int
	MeanMagnification float64
	StdMagnification  float64
	// OffsetDrift is the detector offset change per degree
	OffsetDrift float64
}

func (g GeometryReport) String() string {
	return fmt.Sprintf("%d angles, magnification %.3f ± %.3f, offset drift %.4f mm/deg",
		g.Angles, g.MeanMagnification, g.StdMagnification, g.OffsetDrift)
}

// Engine is the reconstruction engine. Run, TestGeometry and AutoGeometry
// may block and are never called on the UI thread. Run honours ctx
// cancellation cooperatively and always returns a Result.
type Engine interface {
	Run(ctx context.Context, snap values.Snapshot, progress ProgressFunc) Result
	TestGeometry(ctx context.Context, snap values.Snapshot) (GeometryReport, error)
	AutoGeometry(ctx context.Context, snap values.Snapshot) ([]values.ProjectionAngle, error)
	Refresh(ctx context.Context, snap values.Snapshot, page Page) (Frame, error)
	Pan(dx, dy int)
}

// Light is the result of an auto-light pass
type Light struct {
	Window int
	Level  int
}

// Hardware is the bench: focus and lighting
type Hardware interface {
	AutoFocus(ctx context.Context) (distance float64, err error)
	AutoLight(ctx context.Context) (Light, error)
}

// ConfigStore persists configuration records
type ConfigStore interface {
	Load(ctx context.Context, path string) (values.ScanConfig, error)
	Save(ctx context.Context, path string, cfg values.ScanConfig) error
}
