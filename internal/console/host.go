package console

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/controls"
	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/input"
)

var _ input.Host = (*Console)(nil)

// Key feeds a key press through the dispatcher
func (c *Console) Key(msg tea.KeyMsg) {
	c.control(c.input.KeyDown(msg))
}

// KeyUp feeds a key release through the dispatcher
func (c *Console) KeyUp(msg tea.KeyMsg) {
	c.control(c.input.KeyUp(msg))
}

// control surfaces an error from a control action. Input to a disabled
// control is ignored; command errors were already reported.
func (c *Console) control(err error) {
	if err == nil || errors.Is(err, controls.ErrDisabled) {
		return
	}
	var ce commandError
	if errors.As(err, &ce) {
		return
	}
	c.fail("Input", err)
}

// commandError marks an error Command has already surfaced
type commandError struct{ error }

func (e commandError) Unwrap() error { return e.error }

// Enabled implements input.Host
func (c *Console) Enabled(id controls.ID) bool { return c.panel.Enabled(id) }

// Visible implements input.Host
func (c *Console) Visible(id controls.ID) bool { return c.panel.Visible(id) }

// IsSlider implements input.Host
func (c *Console) IsSlider(id controls.ID) bool {
	return id != input.ImagePanel && c.panel.Binding(id).Kind == controls.KindSlider
}

// Pan implements input.Host
func (c *Console) Pan(dx, dy int) {
	c.deps.Engine.Pan(dx, dy)
	c.refresh()
}

// Step implements input.Host
func (c *Console) Step(id controls.ID, delta int) error {
	return c.panel.Step(id, delta)
}

// NextPage implements input.Host
func (c *Console) NextPage() {
	c.SetPage(engine.Pages[(int(c.page)+1)%len(engine.Pages)])
}

// Locked implements input.Host
func (c *Console) Locked() bool { return c.run.Visible() }

// Focused implements input.Host. An entry losing focus commits.
func (c *Console) Focused(from, to controls.ID) {
	if from != input.ImagePanel {
		c.control(c.panel.Blur(from))
	}
	logrus.Debugf("console: focus %s -> %s", from, to)
}

// Forward implements input.Host: the focused control's own key handling
func (c *Console) Forward(id controls.ID, msg tea.KeyMsg, up bool) error {
	if up || id == input.ImagePanel {
		return nil
	}
	b := c.panel.Binding(id)
	switch b.Kind {
	case controls.KindEntry:
		return c.editEntry(id, msg)

	case controls.KindCheckbox:
		if isActivate(msg) {
			return c.panel.Toggle(id)
		}

	case controls.KindButton:
		if isActivate(msg) {
			return c.Press(id)
		}

	case controls.KindChoice:
		n := len(controls.Toolbars)
		if b.Field >= 0 {
			n = len(c.model.Choices(b.Field))
		}
		sel := c.panel.State(id).Selected
		switch msg.Type {
		case tea.KeyLeft, tea.KeyUp:
			return c.panel.Choose(id, (sel+n-1)%n)
		case tea.KeyRight, tea.KeyDown, tea.KeySpace, tea.KeyEnter:
			return c.panel.Choose(id, (sel+1)%n)
		}
	}
	return nil
}

func isActivate(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace ||
		(msg.Type == tea.KeyRunes && string(msg.Runes) == " ")
}

func (c *Console) editEntry(id controls.ID, msg tea.KeyMsg) error {
	text := c.panel.Label(id)
	switch msg.Type {
	case tea.KeyEnter:
		return c.panel.Enter(id)
	case tea.KeyBackspace:
		if len(text) == 0 {
			return nil
		}
		r := []rune(text)
		return c.panel.Type(id, string(r[:len(r)-1]))
	case tea.KeyRunes:
		return c.panel.Type(id, text+string(msg.Runes))
	}
	return nil
}

// Press activates a button or menu item
func (c *Console) Press(id controls.ID) error {
	cmd, err := c.panel.Press(id)
	if err != nil {
		return err
	}
	return c.Command(cmd, "")
}

// Click is a mouse press on a control: buttons fire, checkboxes toggle and
// anything else takes focus
func (c *Console) Click(id controls.ID) {
	switch c.panel.Binding(id).Kind {
	case controls.KindButton, controls.KindMenuItem:
		c.control(c.Press(id))
	case controls.KindCheckbox:
		c.input.SetFocus(id)
		c.control(c.panel.Toggle(id))
	default:
		c.input.SetFocus(id)
	}
}

// Drag moves a slider thumb
func (c *Console) Drag(id controls.ID, pos int) {
	c.control(c.panel.Drag(id, pos))
}

// Release ends a slider drag
func (c *Console) Release(id controls.ID) {
	c.control(c.panel.Release(id))
}

// Choose selects a choice entry
func (c *Console) Choose(id controls.ID, idx int) {
	c.control(c.panel.Choose(id, idx))
	c.input.Revalidate()
}
