package theme

// Terminal-compatible color constants using ANSI standard colors
// These colors work consistently across different terminal themes
const (
	// Primary colors (ANSI standard)
	ColorWhite        = "#FFFFFF" // ANSI 15 - primary text
	ColorBrightBlack  = "#808080" // ANSI 8 - secondary text
	ColorBrightBlue   = "#5C7CFA" // ANSI 12 - primary accent
	ColorBrightCyan   = "#51CF66" // ANSI 14 - secondary accent
	ColorBrightGreen  = "#51CF66" // ANSI 10 - success
	ColorBrightYellow = "#FFD43B" // ANSI 11 - warning
	ColorBrightRed    = "#FF6B6B" // ANSI 9 - error

	// Control colors
	ColorFocus    = "#4A90E2"
	ColorDisabled = "#4D4D4D"
	ColorSlider   = "#74C0FC"
	ColorChecked  = "#69DB7C"
	ColorButton   = "#B197FC"
)

// Message levels, in the order the console reports them
const (
	LevelInfo = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// GetMessageColor returns the color for a message level
func GetMessageColor(level int) string {
	switch level {
	case LevelError:
		return ColorBrightRed
	case LevelSuccess:
		return ColorBrightGreen
	case LevelWarning:
		return ColorBrightYellow
	default:
		return ColorBrightCyan
	}
}

// GetMessageIcon returns the icon for a message level
func GetMessageIcon(level int) string {
	switch level {
	case LevelError:
		return "❌ "
	case LevelSuccess:
		return "✅ "
	case LevelWarning:
		return "⚠️ "
	default:
		return "ℹ️ "
	}
}
