package config

// Layout constants
const (
	// Panel layout
	ControlPanelWidthRatio = 0.4
	MinControlPanelWidth   = 36

	// Preview dimensions in cells
	DefaultPreviewCols = 48
	DefaultPreviewRows = 20

	// Log area
	DefaultLogHeight = 6

	// Table dimensions
	DefaultColumnWidth = 12
	NameColumnWidth    = 20
	DefaultTableHeight = 8

	// Dialog dimensions
	DialogDefaultWidth = 50
	DialogLargeWidth   = 78

	// Gauge
	ProgressBarWidth = 40
)
