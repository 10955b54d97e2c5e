package dialogs

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrCellInvalid is returned for grid cells that are not finite numbers
var ErrCellInvalid = errors.New("invalid cell")

// CellError locates a rejected grid edit
type CellError struct {
	Row    int
	Col    int
	Text   string
	Reason string
}

func (e *CellError) Error() string {
	if e.Col < 0 {
		return fmt.Sprintf("row %d: %s", e.Row+1, e.Reason)
	}
	return fmt.Sprintf("row %d column %d %q: %s", e.Row+1, e.Col+1, e.Text, e.Reason)
}

func (e *CellError) Unwrap() error {
	return ErrCellInvalid
}

func parseCell(row, col int, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, &CellError{Row: row, Col: col, Text: text, Reason: "not a number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &CellError{Row: row, Col: col, Text: text, Reason: "not finite"}
	}
	return v, nil
}
