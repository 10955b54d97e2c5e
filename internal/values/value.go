package values

import (
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Kind is the semantic type carried by a Value
type Kind int

// Value kinds
const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindChoice
	KindPhantoms
	KindAngles
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindChoice:
		return "choice"
	case KindPhantoms:
		return "phantoms"
	case KindAngles:
		return "angles"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Phantom is a calibration target record used to measure resolution or contrast
type Phantom struct {
	Name    string  `yaml:"name" json:"name"`
	CenterX float64 `yaml:"center_x" json:"center_x"`
	CenterY float64 `yaml:"center_y" json:"center_y"`
	Radius  float64 `yaml:"radius" json:"radius"`
	// Target is line pairs per mm for resolution phantoms, percent contrast for contrast phantoms
	Target float64 `yaml:"target" json:"target"`
}

// ProjectionAngle is one row of the acquisition geometry table
type ProjectionAngle struct {
	Angle          float64 `yaml:"angle" json:"angle"`
	SourceObject   float64 `yaml:"source_object" json:"source_object"`
	SourceDetector float64 `yaml:"source_detector" json:"source_detector"`
	DetectorOffset float64 `yaml:"detector_offset" json:"detector_offset"`
}

// Value is a tagged variant holding one field's value
type Value struct {
	kind     Kind
	b        bool
	i        int
	f        float64
	phantoms []Phantom
	angles   []ProjectionAngle
}

// Bool wraps a boolean
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer
func Int(i int) Value { return Value{kind: KindInt, i: i} }

// Float wraps a rational/length value
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Choice wraps an enumeration index
func Choice(idx int) Value { return Value{kind: KindChoice, i: idx} }

// Phantoms wraps a copy of a phantom list
func Phantoms(p []Phantom) Value {
	return Value{kind: KindPhantoms, phantoms: slices.Clone(p)}
}

// Angles wraps a copy of a projection angle table
func Angles(a []ProjectionAngle) Value {
	return Value{kind: KindAngles, angles: slices.Clone(a)}
}

// Kind returns the variant tag
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload
func (v Value) AsBool() bool { return v.b }

// AsInt returns the integer payload (also the index of a choice)
func (v Value) AsInt() int { return v.i }

// AsFloat returns the float payload; integers are widened
func (v Value) AsFloat() float64 {
	if v.kind == KindInt || v.kind == KindChoice {
		return float64(v.i)
	}
	return v.f
}

// AsPhantoms returns a copy of the phantom list
func (v Value) AsPhantoms() []Phantom { return slices.Clone(v.phantoms) }

// AsAngles returns a copy of the angle table
func (v Value) AsAngles() []ProjectionAngle { return slices.Clone(v.angles) }

// Equal reports bitwise equality. Floats compare by their IEEE bits so that
// a re-set of the same value never publishes.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt, KindChoice:
		return v.i == o.i
	case KindFloat:
		return math.Float64bits(v.f) == math.Float64bits(o.f)
	case KindPhantoms:
		return slices.EqualFunc(v.phantoms, o.phantoms, func(a, b Phantom) bool {
			return a.Name == b.Name &&
				math.Float64bits(a.CenterX) == math.Float64bits(b.CenterX) &&
				math.Float64bits(a.CenterY) == math.Float64bits(b.CenterY) &&
				math.Float64bits(a.Radius) == math.Float64bits(b.Radius) &&
				math.Float64bits(a.Target) == math.Float64bits(b.Target)
		})
	case KindAngles:
		return slices.EqualFunc(v.angles, o.angles, func(a, b ProjectionAngle) bool {
			return math.Float64bits(a.Angle) == math.Float64bits(b.Angle) &&
				math.Float64bits(a.SourceObject) == math.Float64bits(b.SourceObject) &&
				math.Float64bits(a.SourceDetector) == math.Float64bits(b.SourceDetector) &&
				math.Float64bits(a.DetectorOffset) == math.Float64bits(b.DetectorOffset)
		})
	}
	return false
}

// String formats the value for labels and logs
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt, KindChoice:
		return strconv.Itoa(v.i)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindPhantoms:
		return fmt.Sprintf("%d phantoms", len(v.phantoms))
	case KindAngles:
		return fmt.Sprintf("%d angles", len(v.angles))
	}
	return "?"
}
