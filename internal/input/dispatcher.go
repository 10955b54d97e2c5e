package input

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/controls"
	"github.com/HaiFongPan/reconsole/internal/router"
)

// ImagePanel is the focus stop of the image notebook
const ImagePanel controls.ID = -1

// PanStep is how far one arrow press pans the preview, in pixels
const PanStep = 8

// Host is what the dispatcher drives
type Host interface {
	// Enabled and Visible decide whether a control can hold focus
	Enabled(id controls.ID) bool
	Visible(id controls.ID) bool
	// IsSlider reports whether arrows step id
	IsSlider(id controls.ID) bool
	// Command dispatches a router command
	Command(name, arg string) error
	Pan(dx, dy int)
	Step(id controls.ID, delta int) error
	// Forward hands an unbound key to the focused control
	Forward(id controls.ID, msg tea.KeyMsg, up bool) error
	// Focused is called whenever focus moves; from is blurred first
	Focused(from, to controls.ID)
	NextPage()
	// Locked reports whether the run dialog holds the screen
	Locked() bool
}

// Dispatcher applies the accelerator table and the focus ring
type Dispatcher struct {
	keys  KeyMap
	host  Host
	ring  []controls.ID
	focus controls.ID
	accel []accelerator
}

type accelerator struct {
	binding *key.Binding
	command string
	arg     string
	// whileLocked accelerators still work with the run dialog up
	whileLocked bool
}

// NewDispatcher builds a dispatcher over the main-window controls in layout
// order followed by the image panel
func NewDispatcher(keys KeyMap, host Host) *Dispatcher {
	d := &Dispatcher{keys: keys, host: host, focus: ImagePanel}
	for _, id := range controls.IDs() {
		if !controls.IsMenuItem(id) {
			d.ring = append(d.ring, id)
		}
	}
	d.ring = append(d.ring, ImagePanel)

	d.accel = []accelerator{
		{binding: &d.keys.New, command: router.CmdNew},
		{binding: &d.keys.Open, command: router.CmdOpen},
		{binding: &d.keys.Save, command: router.CmdSave},
		{binding: &d.keys.Quit, command: router.CmdQuit, whileLocked: true},
		{binding: &d.keys.Configure, command: router.CmdConfigure},
		{binding: &d.keys.RunTest, command: router.CmdRunTest},
		{binding: &d.keys.About, command: router.CmdAbout},
		{binding: &d.keys.Cancel, command: router.CmdCancelRun, whileLocked: true},
	}
	return d
}

// Keys returns the key map
func (d *Dispatcher) Keys() KeyMap { return d.keys }

// Focus returns the focused control
func (d *Dispatcher) Focus() controls.ID { return d.focus }

// accelerator finds the binding for msg
func (d *Dispatcher) accelerator(msg tea.KeyMsg) (accelerator, bool) {
	for _, a := range d.accel {
		if key.Matches(msg, *a.binding) {
			return a, true
		}
	}
	return accelerator{}, false
}

// Bound reports whether msg is an accelerator
func (d *Dispatcher) Bound(msg tea.KeyMsg) bool {
	_, ok := d.accelerator(msg)
	return ok
}

// KeyDown handles a key press
func (d *Dispatcher) KeyDown(msg tea.KeyMsg) error {
	locked := d.host.Locked()

	if a, ok := d.accelerator(msg); ok {
		if locked && !a.whileLocked {
			return nil
		}
		if a.command == router.CmdCancelRun && !locked {
			// esc outside a run belongs to the focused control
			return d.host.Forward(d.focus, msg, false)
		}
		logrus.Debugf("input: %s -> %s", msg.String(), a.command)
		return d.host.Command(a.command, a.arg)
	}
	if locked {
		return nil
	}

	switch {
	case key.Matches(msg, d.keys.Next):
		d.move(1)
		return nil
	case key.Matches(msg, d.keys.Prev):
		d.move(-1)
		return nil
	case key.Matches(msg, d.keys.Page):
		d.host.NextPage()
		return nil
	}

	if dx, dy, ok := d.arrow(msg); ok {
		if d.focus == ImagePanel {
			d.host.Pan(dx*PanStep, dy*PanStep)
			return nil
		}
		if d.host.IsSlider(d.focus) {
			delta := dx
			if delta == 0 {
				delta = -dy
			}
			return d.host.Step(d.focus, delta)
		}
	}
	return d.host.Forward(d.focus, msg, false)
}

// KeyUp forwards a key release to the focused control unless it is an
// accelerator
func (d *Dispatcher) KeyUp(msg tea.KeyMsg) error {
	if d.Bound(msg) || d.host.Locked() {
		return nil
	}
	return d.host.Forward(d.focus, msg, true)
}

// arrow maps arrow keys to a direction; up is negative y on screen
func (d *Dispatcher) arrow(msg tea.KeyMsg) (dx, dy int, ok bool) {
	switch {
	case key.Matches(msg, d.keys.Left):
		return -1, 0, true
	case key.Matches(msg, d.keys.Right):
		return 1, 0, true
	case key.Matches(msg, d.keys.Up):
		return 0, -1, true
	case key.Matches(msg, d.keys.Down):
		return 0, 1, true
	}
	return 0, 0, false
}

// canFocus reports whether id is a ring stop that may hold focus now
func (d *Dispatcher) canFocus(id controls.ID) bool {
	if id == ImagePanel {
		return true
	}
	if !slices.Contains(d.ring, id) {
		return false
	}
	return d.host.Enabled(id) && d.host.Visible(id)
}

func (d *Dispatcher) index(id controls.ID) int {
	for i, r := range d.ring {
		if r == id {
			return i
		}
	}
	return len(d.ring) - 1
}

// move walks the ring to the next focusable stop. The image panel always
// accepts focus, so the walk terminates.
func (d *Dispatcher) move(dir int) {
	n := len(d.ring)
	i := d.index(d.focus)
	for step := 1; step <= n; step++ {
		next := d.ring[((i+dir*step)%n+n)%n]
		if d.canFocus(next) {
			d.SetFocus(next)
			return
		}
	}
}

// SetFocus moves focus to id if it can hold it
func (d *Dispatcher) SetFocus(id controls.ID) bool {
	if d.host.Locked() || !d.canFocus(id) {
		return false
	}
	if id == d.focus {
		return true
	}
	from := d.focus
	d.focus = id
	d.host.Focused(from, id)
	return true
}

// Revalidate moves focus on when the focused control was disabled or
// hidden
func (d *Dispatcher) Revalidate() {
	if d.canFocus(d.focus) {
		return
	}
	n := len(d.ring)
	i := d.index(d.focus)
	for step := 1; step <= n; step++ {
		next := d.ring[(i+step)%n]
		if d.canFocus(next) {
			from := d.focus
			d.focus = next
			d.host.Focused(from, next)
			return
		}
	}
}
