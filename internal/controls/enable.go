package controls

import "github.com/HaiFongPan/reconsole/internal/values"

// Reader is the part of the value model the enable graph looks at
type Reader interface {
	Bool(f values.Field) bool
}

// Capabilities describes what the attached hardware can do
type Capabilities struct {
	AutoFocus bool
	AutoLight bool
}

// EnableSet is the enabled flag of every control
type EnableSet [idCount]bool

// Enabled reports whether id accepts input
func (e EnableSet) Enabled(id ID) bool {
	if id < 0 || id >= idCount {
		return false
	}
	return e[id]
}

// Disabled lists the disabled controls in layout order
func (e EnableSet) Disabled() []ID {
	var out []ID
	for id := ID(0); id < idCount; id++ {
		if !e[id] {
			out = append(out, id)
		}
	}
	return out
}

// idleOnly are the run commands refused while a session is active
var idleOnly = []ID{
	NewItem, OpenItem, SaveItem, ConfigureItem, ResolutionItem, ContrastItem,
	RunTestItem, TestGeoItem, AutoGeoItem,
}

// Evaluate derives the enabled state of every control. It reads nothing but
// its arguments, so equal inputs always give equal sets.
func Evaluate(m Reader, caps Capabilities, running bool) EnableSet {
	var e EnableSet
	for id := range e {
		e[id] = true
	}

	e[ScanVertSlider] = m.Bool(values.FieldScanVertEnable)
	e[ScanHorSlider] = m.Bool(values.FieldScanHorEnable)
	e[NoiseMaxSlider] = m.Bool(values.FieldOutlierEnable)

	enhance := m.Bool(values.FieldXEnhance) || m.Bool(values.FieldYEnhance)
	e[EnhanceSlider] = enhance
	e[AbsEnhanceBox] = enhance

	e[AutoFocusButton] = caps.AutoFocus && !running
	e[AutoLightButton] = caps.AutoLight && !running
	e[AutoAllButton] = e[AutoFocusButton] && e[AutoLightButton]

	for _, id := range idleOnly {
		e[id] = !running
	}
	return e
}
