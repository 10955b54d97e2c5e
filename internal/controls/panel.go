package controls

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/values"
)

// ErrDisabled is returned for input delivered to a disabled control
var ErrDisabled = errors.New("control is disabled")

// State is what a control currently shows
type State struct {
	// Pos, Min and Max are slider ticks
	Pos, Min, Max int
	Dragging      bool
	Checked       bool
	Selected      int
	// Text is the entry text or the slider's adjacent label
	Text string
	// Editing is set while an entry holds uncommitted text
	Editing bool
}

// Panel holds the state of every main-window control and keeps it in step
// with the value model. Controls write through their binding's trigger;
// every model publish is echoed back into the bound control before any later
// subscriber runs, so labels always match the published value.
type Panel struct {
	model    *values.Model
	bindings [idCount]Binding
	state    [idCount]State
	byField  map[values.Field][]ID

	caps    Capabilities
	running bool
	enabled EnableSet

	onEnable []func(EnableSet)
	unsub    []func()
}

// NewPanel binds the default control table to m
func NewPanel(m *values.Model, caps Capabilities) *Panel {
	p := &Panel{
		model:    m,
		bindings: DefaultBindings(),
		byField:  make(map[values.Field][]ID),
		caps:     caps,
	}

	for id := ID(0); id < idCount; id++ {
		b := p.bindings[id]
		if !b.Bound() {
			continue
		}
		if b.Kind == KindSlider {
			lo, hi := m.Range(b.Field)
			p.state[id].Min = toTicks(lo, b.Scale)
			p.state[id].Max = toTicks(hi, b.Scale)
		}
		p.byField[b.Field] = append(p.byField[b.Field], id)
		p.echo(id)
	}

	for f, ids := range p.byField {
		p.unsub = append(p.unsub, m.Subscribe(f, func(values.Change) {
			for _, id := range ids {
				p.echo(id)
			}
		}))
	}
	p.state[ToolbarChoice].Text = Toolbars[0]
	p.unsub = append(p.unsub, m.SubscribeAll(func(values.Change) { p.reevaluate() }))
	p.enabled = Evaluate(m, caps, false)
	return p
}

// Close detaches the panel from the model
func (p *Panel) Close() {
	for _, u := range p.unsub {
		u()
	}
	p.unsub = nil
}

// Binding returns the binding of id
func (p *Panel) Binding(id ID) Binding { return p.bindings[id] }

// State returns what id currently shows
func (p *Panel) State(id ID) State { return p.state[id] }

// Label returns the text next to a slider, or the entry text
func (p *Panel) Label(id ID) string { return p.state[id].Text }

// Enabled reports whether id accepts input
func (p *Panel) Enabled(id ID) bool { return p.enabled.Enabled(id) }

// EnableSet returns the current enable vector
func (p *Panel) EnableSet() EnableSet { return p.enabled }

// OnEnableChange registers fn to be called whenever the enable vector changes
func (p *Panel) OnEnableChange(fn func(EnableSet)) {
	p.onEnable = append(p.onEnable, fn)
}

// SetRunning tells the enable graph whether a session is active
func (p *Panel) SetRunning(running bool) {
	p.running = running
	p.reevaluate()
}

// SetCapabilities updates the hardware capabilities
func (p *Panel) SetCapabilities(c Capabilities) {
	p.caps = c
	p.reevaluate()
}

func (p *Panel) reevaluate() {
	next := Evaluate(p.model, p.caps, p.running)
	if next == p.enabled {
		return
	}
	p.enabled = next
	for _, fn := range p.onEnable {
		fn(next)
	}
}

// echo copies the model value of the bound field into the control
func (p *Panel) echo(id ID) {
	b := p.bindings[id]
	v := p.model.Get(b.Field)
	s := &p.state[id]
	switch b.Kind {
	case KindSlider:
		s.Pos = toTicks(v.AsFloat(), b.Scale)
		s.Text = format(b.Format, v)
	case KindCheckbox:
		s.Checked = v.AsBool()
	case KindChoice:
		s.Selected = v.AsInt()
		s.Text = p.model.ChoiceName(b.Field)
	case KindEntry:
		s.Text = format(b.Format, v)
		s.Editing = false
	}
}

func (p *Panel) check(id ID, kinds ...Kind) (Binding, error) {
	if id < 0 || id >= idCount {
		return Binding{}, fmt.Errorf("unknown control %d", int(id))
	}
	b := p.bindings[id]
	ok := false
	for _, k := range kinds {
		ok = ok || b.Kind == k
	}
	if !ok {
		return b, fmt.Errorf("control %s does not accept this input", id)
	}
	if !p.enabled.Enabled(id) {
		return b, fmt.Errorf("%s: %w", id, ErrDisabled)
	}
	return b, nil
}

// commit publishes v for the control's field and echoes the stored value
// back, which also covers inputs that were clamped to the current value.
func (p *Panel) commit(id ID, v values.Value) error {
	b := p.bindings[id]
	_, err := p.model.Set(b.Field, v)
	p.echo(id)
	if err != nil {
		return err
	}
	logrus.Debugf("controls: %s committed %s", id, p.model.Get(b.Field))
	return nil
}

func (p *Panel) sliderValue(id ID) values.Value {
	b := p.bindings[id]
	pos := p.state[id].Pos
	if p.model.Kind(b.Field) == values.KindInt {
		return values.Int(pos)
	}
	return values.Float(float64(pos) / scaleOf(b.Scale))
}

// Drag moves a slider thumb. Live sliders publish on every movement.
func (p *Panel) Drag(id ID, pos int) error {
	b, err := p.check(id, KindSlider)
	if err != nil {
		return err
	}
	s := &p.state[id]
	s.Dragging = true
	s.Pos = clamp(pos, s.Min, s.Max)
	if b.Trigger == Live {
		return p.commit(id, p.sliderValue(id))
	}
	s.Text = format(b.Format, p.sliderValue(id))
	return nil
}

// Release ends a drag; final sliders publish here
func (p *Panel) Release(id ID) error {
	b, err := p.check(id, KindSlider)
	if err != nil {
		return err
	}
	p.state[id].Dragging = false
	if b.Trigger == Final {
		return p.commit(id, p.sliderValue(id))
	}
	return nil
}

// Step moves a focused slider by delta ticks and publishes immediately
func (p *Panel) Step(id ID, delta int) error {
	if _, err := p.check(id, KindSlider); err != nil {
		return err
	}
	s := &p.state[id]
	s.Pos = clamp(s.Pos+delta, s.Min, s.Max)
	return p.commit(id, p.sliderValue(id))
}

// Type replaces the text of an entry without publishing
func (p *Panel) Type(id ID, text string) error {
	if _, err := p.check(id, KindEntry); err != nil {
		return err
	}
	p.state[id].Text = text
	p.state[id].Editing = true
	return nil
}

// Enter commits an entry. Unparsable text is replaced by the model value.
func (p *Panel) Enter(id ID) error {
	if _, err := p.check(id, KindEntry); err != nil {
		return err
	}
	s := &p.state[id]
	if !s.Editing {
		return nil
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(s.Text), 64)
	if err != nil {
		logrus.Debugf("controls: %s ignored %q", id, s.Text)
		p.echo(id)
		return nil
	}
	return p.commit(id, values.Float(x))
}

// Blur is focus loss; explicit entries commit like Enter
func (p *Panel) Blur(id ID) error {
	if p.bindings[id].Kind != KindEntry || !p.state[id].Editing {
		return nil
	}
	if !p.enabled.Enabled(id) {
		p.echo(id)
		return nil
	}
	return p.Enter(id)
}

// Toggle flips a checkbox
func (p *Panel) Toggle(id ID) error {
	b, err := p.check(id, KindCheckbox)
	if err != nil {
		return err
	}
	return p.commit(id, values.Bool(!p.model.Bool(b.Field)))
}

// Choose selects an entry of a choice control
func (p *Panel) Choose(id ID, idx int) error {
	if _, err := p.check(id, KindChoice); err != nil {
		return err
	}
	if id == ToolbarChoice {
		if idx < 0 || idx >= len(Toolbars) {
			return fmt.Errorf("toolbar %d: %w", idx, values.ErrInvalidSelection)
		}
		p.state[id].Selected = idx
		p.state[id].Text = Toolbars[idx]
		return nil
	}
	return p.commit(id, values.Choice(idx))
}

// Press activates a button or menu item and returns the command it issues
func (p *Panel) Press(id ID) (string, error) {
	b, err := p.check(id, KindButton, KindMenuItem)
	if err != nil {
		return "", err
	}
	return b.Command, nil
}

// Toolbar returns the toolbar shown by the toolbar choice
func (p *Panel) Toolbar() string {
	return Toolbars[p.state[ToolbarChoice].Selected]
}

func format(f string, v values.Value) string {
	switch v.Kind() {
	case values.KindInt, values.KindChoice:
		if strings.Contains(f, "d") {
			return fmt.Sprintf(f, v.AsInt())
		}
		return fmt.Sprintf(f, v.AsFloat())
	case values.KindFloat:
		if f == "" {
			return strconv.FormatFloat(v.AsFloat(), 'f', -1, 64)
		}
		return fmt.Sprintf(f, v.AsFloat())
	}
	return v.String()
}

func scaleOf(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}

func toTicks(v, scale float64) int {
	t := v * scaleOf(scale)
	if t > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(t))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Visible reports whether id is on screen: menu items never are, toolbar
// controls only while their toolbar is chosen
func (p *Panel) Visible(id ID) bool {
	if id < 0 || id >= idCount || IsMenuItem(id) {
		return false
	}
	tb := ToolbarOf(id)
	return tb == "" || tb == p.Toolbar()
}
