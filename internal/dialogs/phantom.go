package dialogs

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/values"
)

// PhantomColumns names the phantom editor columns
var PhantomColumns = []string{"name", "center_x", "center_y", "radius", "target"}

// PhantomEditor edits a phantom list field. OK commits the whole list,
// Cancel reverts.
type PhantomEditor struct {
	model    *values.Model
	field    values.Field
	work     []values.Phantom
	selected map[int]bool
	open     bool
}

// OpenPhantoms opens the editor on a copy of a phantom list field
func OpenPhantoms(m *values.Model, f values.Field) (*PhantomEditor, error) {
	if m.Kind(f) != values.KindPhantoms {
		return nil, fmt.Errorf("%s is not a phantom list", f)
	}
	return &PhantomEditor{
		model:    m,
		field:    f,
		work:     m.Phantoms(f),
		selected: make(map[int]bool),
		open:     true,
	}, nil
}

// Field is the list being edited
func (e *PhantomEditor) Field() values.Field { return e.field }

// Open reports whether the editor is showing
func (e *PhantomEditor) Open() bool { return e.open }

// Rows returns the working list
func (e *PhantomEditor) Rows() []values.Phantom { return slices.Clone(e.work) }

// Add appends a blank record and returns its index
func (e *PhantomEditor) Add() int {
	e.work = append(e.work, values.Phantom{})
	return len(e.work) - 1
}

// Select toggles row i in the selection
func (e *PhantomEditor) Select(i int) {
	if i < 0 || i >= len(e.work) {
		return
	}
	if e.selected[i] {
		delete(e.selected, i)
		return
	}
	e.selected[i] = true
}

// Selected returns the selected rows in order
func (e *PhantomEditor) Selected() []int {
	rows := make([]int, 0, len(e.selected))
	for i := range e.selected {
		rows = append(rows, i)
	}
	slices.Sort(rows)
	return rows
}

// Remove deletes the selected rows and returns how many went
func (e *PhantomEditor) Remove() int {
	n := len(e.selected)
	if n == 0 {
		return 0
	}
	kept := e.work[:0:0]
	for i, p := range e.work {
		if !e.selected[i] {
			kept = append(kept, p)
		}
	}
	e.work = kept
	clear(e.selected)
	return n
}

// Cell formats a cell
func (e *PhantomEditor) Cell(row, col int) string {
	if row < 0 || row >= len(e.work) {
		return ""
	}
	p := e.work[row]
	switch col {
	case 0:
		return p.Name
	case 1:
		return strconv.FormatFloat(p.CenterX, 'g', -1, 64)
	case 2:
		return strconv.FormatFloat(p.CenterY, 'g', -1, 64)
	case 3:
		return strconv.FormatFloat(p.Radius, 'g', -1, 64)
	case 4:
		return strconv.FormatFloat(p.Target, 'g', -1, 64)
	}
	return ""
}

// SetCell edits a cell in place. The name column takes any text, the rest
// must be finite numbers.
func (e *PhantomEditor) SetCell(row, col int, text string) error {
	if row < 0 || row >= len(e.work) || col < 0 || col >= len(PhantomColumns) {
		return &CellError{Row: row, Col: col, Text: text, Reason: "out of range"}
	}
	p := &e.work[row]
	if col == 0 {
		p.Name = text
		return nil
	}
	v, err := parseCell(row, col, text)
	if err != nil {
		return err
	}
	switch col {
	case 1:
		p.CenterX = v
	case 2:
		p.CenterY = v
	case 3:
		p.Radius = v
	case 4:
		p.Target = v
	}
	return nil
}

// OK commits the working list
func (e *PhantomEditor) OK() error {
	if !e.open {
		return nil
	}
	if err := e.model.SetPhantoms(e.field, e.work); err != nil {
		return err
	}
	e.open = false
	logrus.Debugf("phantom editor: committed %d rows to %s", len(e.work), e.field)
	return nil
}

// Cancel closes without committing
func (e *PhantomEditor) Cancel() {
	e.open = false
}
