package values

import (
	"math"
	"slices"
)

// ScanConfig is the persisted configuration record: slice and detector
// geometry, orientation, rotation mode and the per-angle table.
type ScanConfig struct {
	SliceThickness float64           `yaml:"slice_thickness"`
	PixelWidth     float64           `yaml:"pixel_width"`
	PixelHeight    float64           `yaml:"pixel_height"`
	PitchWidth     float64           `yaml:"pitch_width"`
	PitchHeight    float64           `yaml:"pitch_height"`
	Orientation    string            `yaml:"orientation"`
	Rotation       string            `yaml:"rotation"`
	Angles         []ProjectionAngle `yaml:"angles"`
}

// Clone returns a deep copy
func (c ScanConfig) Clone() ScanConfig {
	c.Angles = slices.Clone(c.Angles)
	return c
}

// DefaultScanConfig builds the configuration record restored by reset
func DefaultScanConfig(l Limits) ScanConfig {
	return ScanConfig{
		SliceThickness: l.SliceThickness,
		PixelWidth:     l.PixelWidth,
		PixelHeight:    l.PixelHeight,
		PitchWidth:     l.PitchWidth,
		PitchHeight:    l.PitchHeight,
		Orientation:    first(l.Orientations),
		Rotation:       first(l.RotationModes),
	}
}

// Validate checks a configuration record against the device limits
func (c ScanConfig) Validate(l Limits) error {
	ve := &ValidationError{}
	c.check(l, ve)
	return ve.orNil()
}

func (c ScanConfig) check(l Limits, ve *ValidationError) {
	lengths := []struct {
		name string
		v    float64
	}{
		{FieldSliceThickness.String(), c.SliceThickness},
		{FieldPixelWidth.String(), c.PixelWidth},
		{FieldPixelHeight.String(), c.PixelHeight},
		{FieldPitchWidth.String(), c.PitchWidth},
		{FieldPitchHeight.String(), c.PitchHeight},
	}
	for _, ln := range lengths {
		switch {
		case math.IsNaN(ln.v) || math.IsInf(ln.v, 0):
			ve.add(ln.name, "must be finite")
		case ln.v <= 0:
			ve.add(ln.name, "must be > 0, got %g", ln.v)
		case ln.v > l.LengthMax:
			ve.add(ln.name, "must be <= %g, got %g", l.LengthMax, ln.v)
		}
	}
	if !slices.Contains(l.Orientations, c.Orientation) {
		ve.add(FieldOrientation.String(), "%q is not one of %v", c.Orientation, l.Orientations)
	}
	if !slices.Contains(l.RotationModes, c.Rotation) {
		ve.add(FieldRotationEnabled.String(), "%q is not one of %v", c.Rotation, l.RotationModes)
	}
	for i, a := range c.Angles {
		for _, cell := range []float64{a.Angle, a.SourceObject, a.SourceDetector, a.DetectorOffset} {
			if math.IsNaN(cell) || math.IsInf(cell, 0) {
				ve.add(FieldProjectionAngles.String(), "row %d has a non-finite cell", i+1)
				break
			}
		}
	}
}

// Snapshot is an immutable copy of the model handed to the engine
type Snapshot struct {
	Distance       float64
	Step           int
	Window         int
	Level          int
	Zoom           float64
	VertFlip       bool
	HorFlip        bool
	LogView        bool
	ProjectionView bool
	GainIndex      int
	Gain           string

	XEnhance     bool
	YEnhance     bool
	AbsEnhance   bool
	EnhanceRatio float64

	ScanVertEnable bool
	ScanVert       int
	ScanHorEnable  bool
	ScanHor        int

	OutlierEnable bool
	NoiseMax      int

	Scan               ScanConfig
	ResolutionPhantoms []Phantom
	ContrastPhantoms   []Phantom

	limits Limits
}

// Snapshot copies the current values
func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		Distance:           m.Float(FieldDistance),
		Step:               m.Int(FieldStep),
		Window:             m.Int(FieldWindow),
		Level:              m.Int(FieldLevel),
		Zoom:               m.Float(FieldZoom),
		VertFlip:           m.Bool(FieldVertFlip),
		HorFlip:            m.Bool(FieldHorFlip),
		LogView:            m.Bool(FieldLogView),
		ProjectionView:     m.Bool(FieldProjectionView),
		GainIndex:          m.Choice(FieldGainSelection),
		Gain:               m.ChoiceName(FieldGainSelection),
		XEnhance:           m.Bool(FieldXEnhance),
		YEnhance:           m.Bool(FieldYEnhance),
		AbsEnhance:         m.Bool(FieldAbsEnhance),
		EnhanceRatio:       m.Float(FieldEnhanceRatio),
		ScanVertEnable:     m.Bool(FieldScanVertEnable),
		ScanVert:           m.Int(FieldScanVert),
		ScanHorEnable:      m.Bool(FieldScanHorEnable),
		ScanHor:            m.Int(FieldScanHor),
		OutlierEnable:      m.Bool(FieldOutlierEnable),
		NoiseMax:           m.Int(FieldNoiseMax),
		Scan:               m.Scan(),
		ResolutionPhantoms: m.Phantoms(FieldResolutionPhantoms),
		ContrastPhantoms:   m.Phantoms(FieldContrastPhantoms),
		limits:             m.limits,
	}
}

// Scan returns the configuration record currently held by the model
func (m *Model) Scan() ScanConfig {
	return ScanConfig{
		SliceThickness: m.Float(FieldSliceThickness),
		PixelWidth:     m.Float(FieldPixelWidth),
		PixelHeight:    m.Float(FieldPixelHeight),
		PitchWidth:     m.Float(FieldPitchWidth),
		PitchHeight:    m.Float(FieldPitchHeight),
		Orientation:    m.ChoiceName(FieldOrientation),
		Rotation:       m.ChoiceName(FieldRotationEnabled),
		Angles:         m.Angles(),
	}
}

// ApplyScan replaces every configuration field in one atomic publish. An
// unknown orientation or rotation mode rejects the whole record.
func (m *Model) ApplyScan(c ScanConfig) error {
	return m.Batch(func(b *Batch) error {
		if err := b.SelectName(FieldOrientation, c.Orientation); err != nil {
			return err
		}
		if err := b.SelectName(FieldRotationEnabled, c.Rotation); err != nil {
			return err
		}
		lengths := []struct {
			f Field
			v float64
		}{
			{FieldSliceThickness, c.SliceThickness},
			{FieldPixelWidth, c.PixelWidth},
			{FieldPixelHeight, c.PixelHeight},
			{FieldPitchWidth, c.PitchWidth},
			{FieldPitchHeight, c.PitchHeight},
		}
		for _, ln := range lengths {
			if err := b.Set(ln.f, Float(ln.v)); err != nil {
				return err
			}
		}
		return b.Set(FieldProjectionAngles, Angles(c.Angles))
	})
}

// Limits returns the device limits the snapshot was taken under
func (s Snapshot) Limits() Limits {
	return s.limits
}

// Validate reports whether the snapshot may be handed to the engine: every
// numeric field inside its domain, a gain selected and strictly positive
// lengths.
func (s Snapshot) Validate() error {
	l := s.limits
	ve := &ValidationError{}

	if math.IsNaN(s.Distance) || math.IsInf(s.Distance, 0) || s.Distance < 0 {
		ve.add(FieldDistance.String(), "must be a finite length >= 0, got %g", s.Distance)
	}
	intIn := func(f Field, v, lo, hi int) {
		if v < lo || v > hi {
			ve.add(f.String(), "must be in [%d, %d], got %d", lo, hi, v)
		}
	}
	intIn(FieldStep, s.Step, 1, l.StepMax)
	intIn(FieldWindow, s.Window, IntensityMin, IntensityMax)
	intIn(FieldLevel, s.Level, IntensityMin, IntensityMax)
	intIn(FieldScanVert, s.ScanVert, 0, l.ScanMax)
	intIn(FieldScanHor, s.ScanHor, 0, l.ScanMax)
	intIn(FieldNoiseMax, s.NoiseMax, 0, l.NoiseCap)

	if math.IsNaN(s.Zoom) || s.Zoom < l.ZoomMin || s.Zoom > l.ZoomMax {
		ve.add(FieldZoom.String(), "must be in [%g, %g], got %g", l.ZoomMin, l.ZoomMax, s.Zoom)
	}
	if math.IsNaN(s.EnhanceRatio) || s.EnhanceRatio < 0 || s.EnhanceRatio > 1 {
		ve.add(FieldEnhanceRatio.String(), "must be in [0, 1], got %g", s.EnhanceRatio)
	}
	if s.Gain == "" || s.GainIndex < 0 || s.GainIndex >= len(l.GainChoices) {
		ve.add(FieldGainSelection.String(), "must select a gain")
	}

	s.Scan.check(l, ve)
	return ve.orNil()
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}
