package values

import (
	"fmt"
	"strings"
)

// Field identifies one observable console parameter
type Field int

// Field identities, in panel order
const (
	// navigation toolbar
	FieldDistance Field = iota
	FieldStep
	FieldWindow
	FieldLevel
	FieldZoom
	FieldVertFlip
	FieldHorFlip
	FieldLogView
	FieldProjectionView
	FieldGainSelection

	// edge enhancement toolbar
	FieldXEnhance
	FieldYEnhance
	FieldAbsEnhance
	FieldEnhanceRatio

	// scan correction toolbar
	FieldScanVertEnable
	FieldScanVert
	FieldScanHorEnable
	FieldScanHor

	// noise toolbar
	FieldOutlierEnable
	FieldNoiseMax

	// configuration record
	FieldSliceThickness
	FieldPixelWidth
	FieldPixelHeight
	FieldPitchWidth
	FieldPitchHeight
	FieldOrientation
	FieldRotationEnabled
	FieldProjectionAngles

	// calibration
	FieldResolutionPhantoms
	FieldContrastPhantoms

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldDistance:           "distance",
	FieldStep:               "step",
	FieldWindow:             "window",
	FieldLevel:              "level",
	FieldZoom:               "zoom",
	FieldVertFlip:           "vertFlip",
	FieldHorFlip:            "horFlip",
	FieldLogView:            "logView",
	FieldProjectionView:     "projectionView",
	FieldGainSelection:      "gainSelection",
	FieldXEnhance:           "xEnhance",
	FieldYEnhance:           "yEnhance",
	FieldAbsEnhance:         "absEnhance",
	FieldEnhanceRatio:       "enhanceRatio",
	FieldScanVertEnable:     "scanVertEnable",
	FieldScanVert:           "scanVert",
	FieldScanHorEnable:      "scanHorEnable",
	FieldScanHor:            "scanHor",
	FieldOutlierEnable:      "outlierEnable",
	FieldNoiseMax:           "noiseMax",
	FieldSliceThickness:     "sliceThickness",
	FieldPixelWidth:         "pixelWidth",
	FieldPixelHeight:        "pixelHeight",
	FieldPitchWidth:         "pitchWidth",
	FieldPitchHeight:        "pitchHeight",
	FieldOrientation:        "orientation",
	FieldRotationEnabled:    "rotationEnabled",
	FieldProjectionAngles:   "projectionAngles",
	FieldResolutionPhantoms: "resolutionPhantoms",
	FieldContrastPhantoms:   "contrastPhantoms",
}

// String returns the field's wire name
func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// Valid reports whether f names a known field
func (f Field) Valid() bool {
	return f >= 0 && f < fieldCount
}

// Fields returns every field in declaration order
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// ParseField resolves a field by its name, ignoring case
func ParseField(name string) (Field, error) {
	for f := Field(0); f < fieldCount; f++ {
		if strings.EqualFold(fieldNames[f], name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field: %s", name)
}

// ScanFields are the fields owned by the configuration record
var ScanFields = []Field{
	FieldSliceThickness,
	FieldPixelWidth,
	FieldPixelHeight,
	FieldPitchWidth,
	FieldPitchHeight,
	FieldOrientation,
	FieldRotationEnabled,
	FieldProjectionAngles,
}
