package values

import (
	"fmt"
	"math"
	"slices"
)

// Limits carries the device-reported bounds and defaults the model is built with
type Limits struct {
	Distance      float64
	StepMax       int
	WindowDefault int
	LevelDefault  int
	ZoomMin       float64
	ZoomMax       float64
	ScanMax       int
	NoiseCap      int
	LengthMax     float64

	GainChoices   []string
	Orientations  []string
	RotationModes []string

	// Reset values for the configuration record
	SliceThickness float64
	PixelWidth     float64
	PixelHeight    float64
	PitchWidth     float64
	PitchHeight    float64
}

// Intensity bounds for window and level
const (
	IntensityMin = 0
	IntensityMax = 65535
)

// DefaultLimits returns the limits of a generic flat-panel bench
func DefaultLimits() Limits {
	return Limits{
		Distance:       250,
		StepMax:        100,
		WindowDefault:  4096,
		LevelDefault:   2048,
		ZoomMin:        0.25,
		ZoomMax:        8,
		ScanMax:        255,
		NoiseCap:       1000,
		LengthMax:      1000,
		GainChoices:    []string{"low", "medium", "high"},
		Orientations:   []string{"horizontal", "vertical"},
		RotationModes:  []string{"continuous", "step-and-shoot", "disabled"},
		SliceThickness: 0.5,
		PixelWidth:     0.1,
		PixelHeight:    0.1,
		PitchWidth:     0.1,
		PitchHeight:    0.1,
	}
}

// Check verifies the limits describe non-empty domains
func (l Limits) Check() error {
	if l.StepMax < 1 {
		return fmt.Errorf("step_max must be at least 1, got: %d", l.StepMax)
	}
	if !(l.ZoomMin > 0) || l.ZoomMin > l.ZoomMax || math.IsInf(l.ZoomMax, 0) {
		return fmt.Errorf("zoom range [%g, %g] is invalid", l.ZoomMin, l.ZoomMax)
	}
	if l.ScanMax < 0 || l.NoiseCap < 0 {
		return fmt.Errorf("scan_max and noise_cap must be non-negative")
	}
	if !(l.LengthMax > 0) {
		return fmt.Errorf("length_max must be positive, got: %g", l.LengthMax)
	}
	if len(l.GainChoices) == 0 {
		return fmt.Errorf("gain_choices must not be empty")
	}
	if len(l.Orientations) == 0 || len(l.RotationModes) == 0 {
		return fmt.Errorf("orientation and rotation choices must not be empty")
	}
	return nil
}

// domain describes what a field may hold and what reset restores
type domain struct {
	kind    Kind
	lo, hi  float64
	choices []string
	reset   Value
}

func buildDomains(l Limits) [fieldCount]domain {
	var d [fieldCount]domain

	intRange := func(lo, hi, reset int) domain {
		return domain{kind: KindInt, lo: float64(lo), hi: float64(hi), reset: Int(reset)}
	}
	floatRange := func(lo, hi, reset float64) domain {
		return domain{kind: KindFloat, lo: lo, hi: hi, reset: Float(reset)}
	}
	flag := domain{kind: KindBool, reset: Bool(false)}
	choice := func(names []string) domain {
		return domain{kind: KindChoice, lo: 0, hi: float64(len(names) - 1), choices: slices.Clone(names), reset: Choice(0)}
	}

	d[FieldDistance] = floatRange(0, math.MaxFloat64, math.Max(0, l.Distance))
	d[FieldStep] = intRange(1, l.StepMax, 1)
	d[FieldWindow] = intRange(IntensityMin, IntensityMax, clampInt(l.WindowDefault, IntensityMin, IntensityMax))
	d[FieldLevel] = intRange(IntensityMin, IntensityMax, clampInt(l.LevelDefault, IntensityMin, IntensityMax))
	d[FieldZoom] = floatRange(l.ZoomMin, l.ZoomMax, clampFloat(1.0, l.ZoomMin, l.ZoomMax))
	d[FieldVertFlip] = flag
	d[FieldHorFlip] = flag
	d[FieldLogView] = flag
	d[FieldProjectionView] = flag
	d[FieldGainSelection] = choice(l.GainChoices)

	d[FieldXEnhance] = flag
	d[FieldYEnhance] = flag
	d[FieldAbsEnhance] = flag
	d[FieldEnhanceRatio] = floatRange(0, 1, 0.5)

	d[FieldScanVertEnable] = flag
	d[FieldScanVert] = intRange(0, l.ScanMax, 0)
	d[FieldScanHorEnable] = flag
	d[FieldScanHor] = intRange(0, l.ScanMax, 0)

	d[FieldOutlierEnable] = flag
	d[FieldNoiseMax] = intRange(0, l.NoiseCap, l.NoiseCap)

	// Lengths clamp to [0, max]; the strict positive rule belongs to snapshot validation.
	d[FieldSliceThickness] = floatRange(0, l.LengthMax, l.SliceThickness)
	d[FieldPixelWidth] = floatRange(0, l.LengthMax, l.PixelWidth)
	d[FieldPixelHeight] = floatRange(0, l.LengthMax, l.PixelHeight)
	d[FieldPitchWidth] = floatRange(0, l.LengthMax, l.PitchWidth)
	d[FieldPitchHeight] = floatRange(0, l.LengthMax, l.PitchHeight)
	d[FieldOrientation] = choice(l.Orientations)
	d[FieldRotationEnabled] = choice(l.RotationModes)
	d[FieldProjectionAngles] = domain{kind: KindAngles, reset: Angles(nil)}

	d[FieldResolutionPhantoms] = domain{kind: KindPhantoms, reset: Phantoms(nil)}
	d[FieldContrastPhantoms] = domain{kind: KindPhantoms, reset: Phantoms(nil)}

	for f := range d {
		if d[f].kind == KindFloat {
			d[f].reset = Float(clampFloat(d[f].reset.f, d[f].lo, d[f].hi))
		}
	}
	return d
}

// coerce brings v into the domain. Numbers clamp silently, enumerations
// reject with ErrInvalidSelection.
func (d domain) coerce(f Field, v Value) (Value, error) {
	switch d.kind {
	case KindInt:
		switch v.kind {
		case KindInt:
			return Int(clampInt(v.i, int(d.lo), int(d.hi))), nil
		case KindFloat:
			return Int(clampInt(roundToInt(v.f, d.lo), int(d.lo), int(d.hi))), nil
		}
	case KindFloat:
		switch v.kind {
		case KindFloat:
			return Float(clampFloat(v.f, d.lo, d.hi)), nil
		case KindInt:
			return Float(clampFloat(float64(v.i), d.lo, d.hi)), nil
		}
	case KindBool:
		if v.kind == KindBool {
			return v, nil
		}
	case KindChoice:
		if v.kind == KindChoice || v.kind == KindInt {
			if v.i < 0 || v.i >= len(d.choices) {
				return Value{}, &SelectionError{Field: f, Index: v.i, Choices: len(d.choices)}
			}
			return Choice(v.i), nil
		}
	case KindPhantoms:
		if v.kind == KindPhantoms {
			if err := finitePhantoms(f, v.phantoms); err != nil {
				return Value{}, err
			}
			return Phantoms(v.phantoms), nil
		}
	case KindAngles:
		if v.kind == KindAngles {
			if err := finiteAngles(f, v.angles); err != nil {
				return Value{}, err
			}
			return Angles(v.angles), nil
		}
	}
	return Value{}, fmt.Errorf("field %s holds %s, cannot store %s", f, d.kind, v.kind)
}

// finiteAngles rejects table rows holding NaN or an infinity
func finiteAngles(f Field, rows []ProjectionAngle) error {
	ve := &ValidationError{}
	for i, a := range rows {
		if !allFinite(a.Angle, a.SourceObject, a.SourceDetector, a.DetectorOffset) {
			ve.add(f.String(), "row %d has a non-finite cell", i+1)
		}
	}
	return ve.orNil()
}

func finitePhantoms(f Field, rows []Phantom) error {
	ve := &ValidationError{}
	for i, p := range rows {
		if !allFinite(p.CenterX, p.CenterY, p.Radius, p.Target) {
			ve.add(f.String(), "row %d has a non-finite cell", i+1)
		}
	}
	return ve.orNil()
}

func allFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampFloat clamps into [lo, hi]; NaN falls to lo
func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundToInt(v, nan float64) int {
	if math.IsNaN(v) {
		return int(nan)
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	if v <= math.MinInt32 {
		return math.MinInt32
	}
	return int(math.Round(v))
}
