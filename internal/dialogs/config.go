// Package dialogs holds the state of the console's modal dialogs. Each
// editing dialog works on a private copy and touches the value model only
// when the operator confirms.
package dialogs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/store"
	"github.com/HaiFongPan/reconsole/internal/values"
)

// AngleColumns names the projection grid columns
var AngleColumns = []string{"angle", "source_object", "source_detector", "detector_offset"}

// Lengths lists the configuration entries in dialog order
var Lengths = []values.Field{
	values.FieldSliceThickness,
	values.FieldPixelWidth,
	values.FieldPixelHeight,
	values.FieldPitchWidth,
	values.FieldPitchHeight,
}

// ConfigDialog edits the configuration record. Edits go to a working copy;
// OK replaces the model's configuration fields in one batch and Cancel
// drops the copy.
type ConfigDialog struct {
	model  *values.Model
	limits values.Limits
	work   values.ScanConfig
	open   bool
	// load is bumped on every Load so a late result for an earlier one is dropped
	load uint64
}

// OpenConfig opens the dialog on a copy of the model's configuration fields
func OpenConfig(m *values.Model) *ConfigDialog {
	return &ConfigDialog{
		model:  m,
		limits: m.Limits(),
		work:   m.Scan(),
		open:   true,
	}
}

// Open reports whether the dialog is showing
func (d *ConfigDialog) Open() bool { return d.open }

// Working returns a copy of the working configuration
func (d *ConfigDialog) Working() values.ScanConfig { return d.work.Clone() }

// Length returns a length entry of the working copy
func (d *ConfigDialog) Length(f values.Field) float64 {
	switch f {
	case values.FieldSliceThickness:
		return d.work.SliceThickness
	case values.FieldPixelWidth:
		return d.work.PixelWidth
	case values.FieldPixelHeight:
		return d.work.PixelHeight
	case values.FieldPitchWidth:
		return d.work.PitchWidth
	case values.FieldPitchHeight:
		return d.work.PitchHeight
	}
	return math.NaN()
}

func (d *ConfigDialog) lengthRef(f values.Field) *float64 {
	switch f {
	case values.FieldSliceThickness:
		return &d.work.SliceThickness
	case values.FieldPixelWidth:
		return &d.work.PixelWidth
	case values.FieldPixelHeight:
		return &d.work.PixelHeight
	case values.FieldPitchWidth:
		return &d.work.PitchWidth
	case values.FieldPitchHeight:
		return &d.work.PitchHeight
	}
	return nil
}

// SetLength edits a length entry from its text. Text that is not a finite
// number leaves the entry unchanged; numbers clamp to [0, lengthMax]. The
// value now held is returned.
func (d *ConfigDialog) SetLength(f values.Field, text string) (float64, error) {
	ref := d.lengthRef(f)
	if ref == nil {
		return 0, fmt.Errorf("%s is not a configuration length", f)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return *ref, nil
	}
	*ref = math.Max(0, math.Min(d.limits.LengthMax, v))
	return *ref, nil
}

// SetOrientation selects an orientation by index
func (d *ConfigDialog) SetOrientation(idx int) error {
	if idx < 0 || idx >= len(d.limits.Orientations) {
		return &values.SelectionError{Field: values.FieldOrientation, Index: idx, Choices: len(d.limits.Orientations)}
	}
	d.work.Orientation = d.limits.Orientations[idx]
	return nil
}

// SetRotation selects a rotation mode by index
func (d *ConfigDialog) SetRotation(idx int) error {
	if idx < 0 || idx >= len(d.limits.RotationModes) {
		return &values.SelectionError{Field: values.FieldRotationEnabled, Index: idx, Choices: len(d.limits.RotationModes)}
	}
	d.work.Rotation = d.limits.RotationModes[idx]
	return nil
}

// Rows returns the projection grid
func (d *ConfigDialog) Rows() []values.ProjectionAngle { return slices.Clone(d.work.Angles) }

// AddRow appends a row continuing the angular step of the last two rows
// and returns its index
func (d *ConfigDialog) AddRow() int {
	row := values.ProjectionAngle{}
	if n := len(d.work.Angles); n > 0 {
		row = d.work.Angles[n-1]
		step := 1.0
		if n > 1 {
			step = d.work.Angles[n-1].Angle - d.work.Angles[n-2].Angle
		}
		row.Angle += step
	}
	d.work.Angles = append(d.work.Angles, row)
	return len(d.work.Angles) - 1
}

// RemoveRow deletes row i
func (d *ConfigDialog) RemoveRow(i int) error {
	if i < 0 || i >= len(d.work.Angles) {
		return &CellError{Row: i, Col: -1, Reason: "no such row"}
	}
	d.work.Angles = slices.Delete(d.work.Angles, i, i+1)
	return nil
}

// Cell formats a grid cell
func (d *ConfigDialog) Cell(row, col int) string {
	if row < 0 || row >= len(d.work.Angles) || col < 0 || col >= len(AngleColumns) {
		return ""
	}
	return strconv.FormatFloat(*angleCell(&d.work.Angles[row], col), 'g', -1, 64)
}

// SetCell edits a grid cell. Cells must be finite numbers.
func (d *ConfigDialog) SetCell(row, col int, text string) error {
	if row < 0 || row >= len(d.work.Angles) || col < 0 || col >= len(AngleColumns) {
		return &CellError{Row: row, Col: col, Text: text, Reason: "out of range"}
	}
	v, err := parseCell(row, col, text)
	if err != nil {
		return err
	}
	*angleCell(&d.work.Angles[row], col) = v
	return nil
}

func angleCell(a *values.ProjectionAngle, col int) *float64 {
	switch col {
	case 0:
		return &a.Angle
	case 1:
		return &a.SourceObject
	case 2:
		return &a.SourceDetector
	default:
		return &a.DetectorOffset
	}
}

// LoadedMsg carries a configuration record read into the dialog
type LoadedMsg struct {
	Dialog *ConfigDialog
	Path   string
	Config values.ScanConfig
	Err    error
	seq    uint64
}

// SavedMsg reports the end of a dialog save
type SavedMsg struct {
	Path string
	Err  error
}

// Load reads path on a goroutine and posts a LoadedMsg. Apply it with
// ApplyLoaded on the UI thread.
func (d *ConfigDialog) Load(ctx context.Context, cs engine.ConfigStore, path string, post func(any)) {
	d.load++
	seq := d.load
	go func() {
		cfg, err := cs.Load(ctx, path)
		post(LoadedMsg{Dialog: d, Path: path, Config: cfg, Err: err, seq: seq})
	}()
}

// ApplyLoaded replaces the working copy with a loaded record. Records that
// name an unknown orientation or rotation mode are refused as a whole. Every
// refusal matches store.ErrConfigLoadFailed.
func (d *ConfigDialog) ApplyLoaded(m LoadedMsg) error {
	if m.Dialog != d || !d.open || m.seq != d.load {
		return nil
	}
	if m.Err != nil {
		return loadFailed(m.Path, m.Err)
	}
	cfg := m.Config.Clone()
	if !slices.Contains(d.limits.Orientations, cfg.Orientation) {
		return loadFailed(m.Path, &values.ValidationError{Problems: []values.Problem{{
			Field: values.FieldOrientation.String(), Reason: fmt.Sprintf("%q is not one of %v", cfg.Orientation, d.limits.Orientations)}}})
	}
	if !slices.Contains(d.limits.RotationModes, cfg.Rotation) {
		return loadFailed(m.Path, &values.ValidationError{Problems: []values.Problem{{
			Field: values.FieldRotationEnabled.String(), Reason: fmt.Sprintf("%q is not one of %v", cfg.Rotation, d.limits.RotationModes)}}})
	}
	d.work = cfg
	logrus.Infof("config dialog: loaded %s", m.Path)
	return nil
}

func loadFailed(path string, err error) error {
	if errors.Is(err, store.ErrConfigLoadFailed) {
		return err
	}
	return &store.PersistError{Op: store.OpLoad, Path: path, Err: err}
}

// Save writes the working copy on a goroutine and posts a SavedMsg
func (d *ConfigDialog) Save(ctx context.Context, cs engine.ConfigStore, path string, post func(any)) {
	cfg := d.work.Clone()
	go func() {
		post(SavedMsg{Path: path, Err: cs.Save(ctx, path, cfg)})
	}()
}

// OK validates the working copy and commits it to the model in one batch.
// An invalid copy is reported and the dialog stays open.
func (d *ConfigDialog) OK() error {
	if !d.open {
		return nil
	}
	if err := d.work.Validate(d.limits); err != nil {
		return err
	}
	if err := d.model.ApplyScan(d.work); err != nil {
		return err
	}
	d.open = false
	logrus.Debug("config dialog: committed")
	return nil
}

// Cancel closes the dialog without touching the model
func (d *ConfigDialog) Cancel() {
	d.open = false
	logrus.Debug("config dialog: cancelled")
}
