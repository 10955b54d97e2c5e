package controls

import (
	"fmt"

	"github.com/HaiFongPan/reconsole/internal/values"
)

// ID identifies a console control
type ID int

// Controls in layout order. The focus ring walks them in this order.
const (
	ToolbarChoice ID = iota
	GainChoice

	// navigation toolbar
	DistanceEntry
	AutoFocusButton
	StepSlider
	AutoLightButton
	WindowSlider
	LevelSlider
	ZoomSlider
	AutoAllButton
	VertFlipBox
	HorFlipBox
	LogViewBox
	ProjectionViewBox

	// edge toolbar
	XEnhanceBox
	YEnhanceBox
	AbsEnhanceBox
	ResetEnhanceButton
	EnhanceSlider

	// scan toolbar
	ScanVertBox
	ResetScanVertButton
	ScanVertSlider
	ScanHorBox
	ResetScanHorButton
	ScanHorSlider

	// noise toolbar
	OutlierBox
	ResetNoiseMaxButton
	NoiseMaxSlider

	// menu items
	NewItem
	OpenItem
	SaveItem
	QuitItem
	ConfigureItem
	ResolutionItem
	ContrastItem
	RunTestItem
	TestGeoItem
	AutoGeoItem
	AboutItem

	idCount
)

var idNames = [idCount]string{
	ToolbarChoice:       "toolbarChoice",
	GainChoice:          "gainChoice",
	DistanceEntry:       "distanceEntry",
	AutoFocusButton:     "autoFocusButton",
	StepSlider:          "stepSlider",
	AutoLightButton:     "autoLightButton",
	WindowSlider:        "windowSlider",
	LevelSlider:         "levelSlider",
	ZoomSlider:          "zoomSlider",
	AutoAllButton:       "autoAllButton",
	VertFlipBox:         "vertFlip",
	HorFlipBox:          "horFlip",
	LogViewBox:          "logView",
	ProjectionViewBox:   "projectionView",
	XEnhanceBox:         "xEnhance",
	YEnhanceBox:         "yEnhance",
	AbsEnhanceBox:       "absEnhance",
	ResetEnhanceButton:  "resetEnhance",
	EnhanceSlider:       "enhanceSlider",
	ScanVertBox:         "scanVertEnable",
	ResetScanVertButton: "resetScanVert",
	ScanVertSlider:      "scanVertSlider",
	ScanHorBox:          "scanHorEnable",
	ResetScanHorButton:  "resetScanHor",
	ScanHorSlider:       "scanHorSlider",
	OutlierBox:          "outlierEnable",
	ResetNoiseMaxButton: "resetNoiseMax",
	NoiseMaxSlider:      "noiseMaxSlider",
	NewItem:             "new",
	OpenItem:            "open",
	SaveItem:            "save",
	QuitItem:            "quit",
	ConfigureItem:       "configure",
	ResolutionItem:      "resolutionPhantoms",
	ContrastItem:        "contrastPhantoms",
	RunTestItem:         "runTest",
	TestGeoItem:         "testGeo",
	AutoGeoItem:         "autoGeo",
	AboutItem:           "about",
}

func (id ID) String() string {
	if id < 0 || id >= idCount {
		return fmt.Sprintf("control(%d)", int(id))
	}
	return idNames[id]
}

// IDs returns every control in layout order
func IDs() []ID {
	out := make([]ID, 0, idCount)
	for id := ID(0); id < idCount; id++ {
		out = append(out, id)
	}
	return out
}

// Kind is the affordance a control presents
type Kind int

const (
	KindSlider Kind = iota
	KindCheckbox
	KindButton
	KindEntry
	KindChoice
	KindMenuItem
)

// Direction says which way values flow between control and model
type Direction int

const (
	ViewOnly Direction = iota
	EditOnly
	Bidirectional
)

// Trigger says when an edit is published to the model
type Trigger int

const (
	// Live publishes on every movement
	Live Trigger = iota
	// Final publishes on release
	Final
	// Explicit publishes on Enter or focus loss
	Explicit
)

func (t Trigger) String() string {
	switch t {
	case Live:
		return "live"
	case Final:
		return "final"
	case Explicit:
		return "explicit"
	}
	return "unknown"
}

// Toolbars selectable through the toolbar choice
var Toolbars = []string{"navigation", "edge", "scan", "noise"}

// Binding declares how one control is tied to the value model
type Binding struct {
	Control   ID
	Kind      Kind
	Field     values.Field
	Direction Direction
	Trigger   Trigger
	// Scale is slider ticks per field unit
	Scale float64
	// Format renders the adjacent label, empty when the control has none
	Format string
	// Command is the router command a button or menu item issues
	Command string
}

// Bound reports whether the control is tied to a model field
func (b Binding) Bound() bool {
	return b.Kind != KindButton && b.Kind != KindMenuItem && b.Control != ToolbarChoice
}

// DefaultBindings returns the binding table of the main window
func DefaultBindings() [idCount]Binding {
	var t [idCount]Binding

	slider := func(id ID, f values.Field, trig Trigger, scale float64, format string) {
		t[id] = Binding{Control: id, Kind: KindSlider, Field: f, Direction: Bidirectional, Trigger: trig, Scale: scale, Format: format}
	}
	check := func(id ID, f values.Field) {
		t[id] = Binding{Control: id, Kind: KindCheckbox, Field: f, Direction: Bidirectional, Trigger: Live}
	}
	button := func(id ID, cmd string) {
		t[id] = Binding{Control: id, Kind: KindButton, Field: -1, Command: cmd}
	}
	item := func(id ID, cmd string) {
		t[id] = Binding{Control: id, Kind: KindMenuItem, Field: -1, Command: cmd}
	}

	t[ToolbarChoice] = Binding{Control: ToolbarChoice, Kind: KindChoice, Field: -1, Direction: EditOnly, Trigger: Live}
	t[GainChoice] = Binding{Control: GainChoice, Kind: KindChoice, Field: values.FieldGainSelection, Direction: Bidirectional, Trigger: Live}
	t[DistanceEntry] = Binding{Control: DistanceEntry, Kind: KindEntry, Field: values.FieldDistance, Direction: Bidirectional, Trigger: Explicit, Format: "%g"}

	slider(StepSlider, values.FieldStep, Final, 1, "%d")
	slider(WindowSlider, values.FieldWindow, Live, 1, "%d")
	slider(LevelSlider, values.FieldLevel, Live, 1, "%d")
	slider(ZoomSlider, values.FieldZoom, Live, 100, "%.2f")
	slider(EnhanceSlider, values.FieldEnhanceRatio, Live, 100, "%.2f")
	slider(ScanVertSlider, values.FieldScanVert, Live, 1, "%d")
	slider(ScanHorSlider, values.FieldScanHor, Live, 1, "%d")
	slider(NoiseMaxSlider, values.FieldNoiseMax, Final, 1, "%d")

	check(VertFlipBox, values.FieldVertFlip)
	check(HorFlipBox, values.FieldHorFlip)
	check(LogViewBox, values.FieldLogView)
	check(ProjectionViewBox, values.FieldProjectionView)
	check(XEnhanceBox, values.FieldXEnhance)
	check(YEnhanceBox, values.FieldYEnhance)
	check(AbsEnhanceBox, values.FieldAbsEnhance)
	check(ScanVertBox, values.FieldScanVertEnable)
	check(ScanHorBox, values.FieldScanHorEnable)
	check(OutlierBox, values.FieldOutlierEnable)

	button(AutoFocusButton, "autoFocus")
	button(AutoLightButton, "autoLight")
	button(AutoAllButton, "autoAll")
	button(ResetEnhanceButton, "resetEnhance")
	button(ResetScanVertButton, "resetScanVert")
	button(ResetScanHorButton, "resetScanHor")
	button(ResetNoiseMaxButton, "resetNoiseMax")

	item(NewItem, "new")
	item(OpenItem, "open")
	item(SaveItem, "save")
	item(QuitItem, "quit")
	item(ConfigureItem, "configure")
	item(ResolutionItem, "resolutionPhantoms")
	item(ContrastItem, "contrastPhantoms")
	item(RunTestItem, "runTest")
	item(TestGeoItem, "testGeo")
	item(AutoGeoItem, "autoGeo")
	item(AboutItem, "about")

	return t
}

// ToolbarOf names the toolbar id sits on. The two choices above the
// toolbars and the menu items return "".
func ToolbarOf(id ID) string {
	switch {
	case id >= DistanceEntry && id <= ProjectionViewBox:
		return Toolbars[0]
	case id >= XEnhanceBox && id <= EnhanceSlider:
		return Toolbars[1]
	case id >= ScanVertBox && id <= ScanHorSlider:
		return Toolbars[2]
	case id >= OutlierBox && id <= NoiseMaxSlider:
		return Toolbars[3]
	}
	return ""
}

// IsMenuItem reports whether id lives in the menu bar
func IsMenuItem(id ID) bool {
	return id >= NewItem && id < idCount
}
