package tui

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/HaiFongPan/reconsole/internal/dialogs"
	uiconfig "github.com/HaiFongPan/reconsole/internal/tui/config"
	"github.com/HaiFongPan/reconsole/internal/tui/theme"
	"github.com/HaiFongPan/reconsole/internal/values"
)

// formAction is what a dialog form asks the front-end to do
type formAction int

const (
	actNone formAction = iota
	actAccept
	actCancel
	actLoad
	actSave
)

var lengthLabels = map[values.Field]string{
	values.FieldSliceThickness: "Slice thickness",
	values.FieldPixelWidth:     "Pixel width",
	values.FieldPixelHeight:    "Pixel height",
	values.FieldPitchWidth:     "Pitch width",
	values.FieldPitchHeight:    "Pitch height",
}

// Focus stops of the configuration form: the length entries, the two
// choices, then the projection grid
var (
	cfgOrientation = len(dialogs.Lengths)
	cfgRotation    = cfgOrientation + 1
	cfgGrid        = cfgRotation + 1
	cfgStops       = cfgGrid + 1
)

// cellEditor is the in-place text input shared by the forms
type cellEditor struct {
	editing bool
	input   textinput.Model
	err     string
}

func newCellEditor() cellEditor {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 32
	ti.Width = uiconfig.DefaultColumnWidth
	return cellEditor{input: ti}
}

func (e *cellEditor) begin(text string) tea.Cmd {
	e.editing = true
	e.err = ""
	e.input.SetValue(text)
	e.input.CursorEnd()
	return e.input.Focus()
}

func (e *cellEditor) stop() {
	e.editing = false
	e.input.Blur()
}

// update feeds a key to the input. commit is set when enter ends the edit.
func (e *cellEditor) update(msg tea.KeyMsg, keys DialogKeys) (commit bool, cmd tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Edit):
		e.stop()
		return true, nil
	case key.Matches(msg, keys.Cancel):
		e.stop()
		return false, nil
	}
	e.input, cmd = e.input.Update(msg)
	return false, cmd
}

func newGrid(columns []string) table.Model {
	cols := make([]table.Column, 0, len(columns))
	for _, c := range columns {
		w := uiconfig.DefaultColumnWidth
		if c == "name" {
			w = uiconfig.NameColumnWidth
		}
		cols = append(cols, table.Column{Title: c, Width: max(w, len(c)+1)})
	}
	return table.New(
		table.WithColumns(cols),
		table.WithHeight(uiconfig.DefaultTableHeight),
		table.WithStyles(table.Styles{
			Header: lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color(theme.ColorBrightBlue)).
				BorderBottom(true).
				Bold(true).
				Foreground(lipgloss.Color(theme.ColorBrightCyan)),
			Selected: lipgloss.NewStyle().
				Foreground(lipgloss.Color(theme.ColorWhite)).
				Background(lipgloss.Color(theme.ColorFocus)),
			Cell: lipgloss.NewStyle().
				Foreground(lipgloss.Color(theme.ColorWhite)),
		}),
	)
}

// configForm renders and edits a ConfigDialog
type configForm struct {
	d            *dialogs.ConfigDialog
	orientations []string
	rotations    []string
	focus        int
	row, col     int
	cell         cellEditor
	grid         table.Model
}

func newConfigForm(d *dialogs.ConfigDialog, orientations, rotations []string) *configForm {
	return &configForm{
		d:            d,
		orientations: orientations,
		rotations:    rotations,
		cell:         newCellEditor(),
		grid:         newGrid(dialogs.AngleColumns),
	}
}

func (f *configForm) update(msg tea.KeyMsg, keys DialogKeys) (formAction, tea.Cmd) {
	if f.cell.editing {
		commit, cmd := f.cell.update(msg, keys)
		if commit {
			f.commit()
		}
		return actNone, cmd
	}

	rows := len(f.d.Rows())
	switch {
	case key.Matches(msg, keys.Accept):
		return actAccept, nil
	case key.Matches(msg, keys.Cancel):
		return actCancel, nil
	case key.Matches(msg, keys.Load):
		return actLoad, nil
	case key.Matches(msg, keys.Save):
		return actSave, nil
	case key.Matches(msg, keys.Next):
		f.focus = (f.focus + 1) % cfgStops
	case key.Matches(msg, keys.Prev):
		f.focus = (f.focus + cfgStops - 1) % cfgStops

	case key.Matches(msg, keys.Edit):
		switch {
		case f.focus < cfgOrientation:
			return actNone, f.cell.begin(f.lengthText(f.focus))
		case f.focus == cfgGrid && rows > 0:
			return actNone, f.cell.begin(f.d.Cell(f.row, f.col))
		default:
			f.cycle(1)
		}

	case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
		dir := 1
		if key.Matches(msg, keys.Left) {
			dir = -1
		}
		if f.focus == cfgGrid {
			f.col = min(max(f.col+dir, 0), len(dialogs.AngleColumns)-1)
		} else {
			f.cycle(dir)
		}

	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		dir := 1
		if key.Matches(msg, keys.Up) {
			dir = -1
		}
		if f.focus == cfgGrid && rows > 0 {
			f.row = min(max(f.row+dir, 0), rows-1)
		} else {
			f.focus = (f.focus + cfgStops + dir) % cfgStops
		}

	case key.Matches(msg, keys.AddRow):
		f.focus = cfgGrid
		f.row = f.d.AddRow()
	case key.Matches(msg, keys.RemoveRow):
		if f.focus == cfgGrid {
			if err := f.d.RemoveRow(f.row); err != nil {
				f.cell.err = err.Error()
			}
			f.row = min(f.row, max(len(f.d.Rows())-1, 0))
		}
	}
	return actNone, nil
}

func (f *configForm) lengthText(i int) string {
	return strconv.FormatFloat(f.d.Length(dialogs.Lengths[i]), 'g', -1, 64)
}

// cycle steps the focused choice
func (f *configForm) cycle(dir int) {
	w := f.d.Working()
	switch f.focus {
	case cfgOrientation:
		n := len(f.orientations)
		if n > 0 {
			f.setErr(f.d.SetOrientation((slices.Index(f.orientations, w.Orientation) + dir + n) % n))
		}
	case cfgRotation:
		n := len(f.rotations)
		if n > 0 {
			f.setErr(f.d.SetRotation((slices.Index(f.rotations, w.Rotation) + dir + n) % n))
		}
	}
}

func (f *configForm) setErr(err error) {
	f.cell.err = ""
	if err != nil {
		f.cell.err = err.Error()
	}
}

func (f *configForm) commit() {
	text := f.cell.input.Value()
	switch {
	case f.focus < cfgOrientation:
		_, err := f.d.SetLength(dialogs.Lengths[f.focus], text)
		f.setErr(err)
	case f.focus == cfgGrid:
		f.setErr(f.d.SetCell(f.row, f.col, text))
	}
}

func (f *configForm) view(width int, keys DialogKeys, help func(DialogKeys) string) string {
	w := f.d.Working()
	label := lipgloss.NewStyle().Width(18)

	var lines []string
	lines = append(lines, theme.CreateSectionHeaderStyle().Render("Configuration"))
	for i, fld := range dialogs.Lengths {
		text := f.lengthText(i)
		if f.cell.editing && f.focus == i {
			text = f.cell.input.View()
		}
		lines = append(lines, label.Render(lengthLabels[fld])+
			theme.CreateControlStyle(f.focus == i, true).Render("["+text+"]"))
	}
	lines = append(lines,
		label.Render("Orientation")+theme.CreateControlStyle(f.focus == cfgOrientation, true).Render("< "+w.Orientation+" >"),
		label.Render("Rotation")+theme.CreateControlStyle(f.focus == cfgRotation, true).Render("< "+w.Rotation+" >"),
		"",
		theme.CreateTabStyle(f.focus == cfgGrid).Render(fmt.Sprintf("Projection angles (%d)", len(w.Angles))),
	)

	rows := make([]table.Row, 0, len(w.Angles))
	for r := range w.Angles {
		row := make(table.Row, len(dialogs.AngleColumns))
		for c := range dialogs.AngleColumns {
			row[c] = f.gridCell(r, c)
		}
		rows = append(rows, row)
	}
	f.grid.SetRows(rows)
	if len(rows) > 0 {
		f.grid.SetCursor(f.row)
	}
	if f.focus == cfgGrid {
		f.grid.Focus()
	} else {
		f.grid.Blur()
	}
	lines = append(lines, f.grid.View())

	if f.cell.err != "" {
		lines = append(lines, theme.CreateErrorStyle().Render(f.cell.err))
	}
	lines = append(lines, help(keys))
	return theme.CreateDialogStyle(min(width, uiconfig.DialogLargeWidth), "").
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (f *configForm) gridCell(r, c int) string {
	if f.focus != cfgGrid || r != f.row || c != f.col {
		return f.d.Cell(r, c)
	}
	if f.cell.editing {
		return f.cell.input.Value() + "▏"
	}
	return "›" + f.d.Cell(r, c)
}

// phantomForm renders and edits a PhantomEditor
type phantomForm struct {
	e        *dialogs.PhantomEditor
	title    string
	row, col int
	cell     cellEditor
	grid     table.Model
}

func newPhantomForm(e *dialogs.PhantomEditor, title string) *phantomForm {
	return &phantomForm{
		e:     e,
		title: title,
		cell:  newCellEditor(),
		grid:  newGrid(append([]string{"sel"}, dialogs.PhantomColumns...)),
	}
}

func (f *phantomForm) update(msg tea.KeyMsg, keys DialogKeys) (formAction, tea.Cmd) {
	if f.cell.editing {
		commit, cmd := f.cell.update(msg, keys)
		if commit {
			f.cell.err = ""
			if err := f.e.SetCell(f.row, f.col, f.cell.input.Value()); err != nil {
				f.cell.err = err.Error()
			}
		}
		return actNone, cmd
	}

	rows := len(f.e.Rows())
	switch {
	case key.Matches(msg, keys.Accept):
		return actAccept, nil
	case key.Matches(msg, keys.Cancel):
		return actCancel, nil
	case key.Matches(msg, keys.Edit):
		if rows > 0 {
			return actNone, f.cell.begin(f.e.Cell(f.row, f.col))
		}
	case key.Matches(msg, keys.Select):
		f.e.Select(f.row)
	case key.Matches(msg, keys.AddRow):
		f.row = f.e.Add()
		f.col = 0
	case key.Matches(msg, keys.RemoveRow):
		f.e.Remove()
		f.row = min(f.row, max(len(f.e.Rows())-1, 0))
	case key.Matches(msg, keys.Up):
		f.row = max(f.row-1, 0)
	case key.Matches(msg, keys.Down):
		f.row = min(f.row+1, max(rows-1, 0))
	case key.Matches(msg, keys.Left), key.Matches(msg, keys.Prev):
		f.col = max(f.col-1, 0)
	case key.Matches(msg, keys.Right), key.Matches(msg, keys.Next):
		f.col = min(f.col+1, len(dialogs.PhantomColumns)-1)
	}
	return actNone, nil
}

func (f *phantomForm) view(width int, keys DialogKeys, help func(DialogKeys) string) string {
	selected := f.e.Selected()
	n := len(f.e.Rows())
	rows := make([]table.Row, 0, n)
	for r := 0; r < n; r++ {
		mark := " "
		if slices.Contains(selected, r) {
			mark = "✓"
		}
		row := table.Row{mark}
		for c := range dialogs.PhantomColumns {
			text := f.e.Cell(r, c)
			if r == f.row && c == f.col {
				if f.cell.editing {
					text = f.cell.input.Value() + "▏"
				} else {
					text = "›" + text
				}
			}
			row = append(row, text)
		}
		rows = append(rows, row)
	}
	f.grid.SetRows(rows)
	if n > 0 {
		f.grid.SetCursor(f.row)
	}
	f.grid.Focus()

	lines := []string{
		theme.CreateSectionHeaderStyle().Render(f.title),
		f.grid.View(),
	}
	if f.cell.err != "" {
		lines = append(lines, theme.CreateErrorStyle().Render(f.cell.err))
	}
	lines = append(lines, help(keys))
	return theme.CreateDialogStyle(min(width, uiconfig.DialogLargeWidth), "").
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
