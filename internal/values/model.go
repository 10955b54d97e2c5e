package values

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Change is delivered to listeners after a field was published
type Change struct {
	Field Field
	Old   Value
	New   Value
	// Reset is set when the publish came from a reset command
	Reset bool
}

// Listener observes published changes
type Listener func(Change)

type listenerEntry struct {
	id      int
	fn      Listener
	removed bool
}

// Model is the observable parameter store of the console.
//
// It is owned by the UI thread: every Set, Reset, Batch and listener callback
// runs there, so it carries no lock. Listeners run after the publishing write
// has completed, in subscription order. A listener that writes to the model
// queues its own notifications behind the ones being delivered, so no field is
// ever notified re-entrantly.
type Model struct {
	limits  Limits
	domains [fieldCount]domain
	values  [fieldCount]Value

	listeners [fieldCount][]*listenerEntry
	global    []*listenerEntry
	nextID    int

	queue      []Change
	publishing bool
}

// New creates a model holding every field's reset value
func New(limits Limits) (*Model, error) {
	if err := limits.Check(); err != nil {
		return nil, fmt.Errorf("invalid device limits: %w", err)
	}
	m := &Model{
		limits:  limits,
		domains: buildDomains(limits),
	}
	for f := Field(0); f < fieldCount; f++ {
		m.values[f] = m.domains[f].reset
	}
	return m, nil
}

// Limits returns the limits the model was built with
func (m *Model) Limits() Limits {
	return m.limits
}

// Get returns the current value of f
func (m *Model) Get(f Field) Value {
	return m.values[f]
}

// Bool returns a boolean field
func (m *Model) Bool(f Field) bool { return m.values[f].b }

// Int returns an integer field
func (m *Model) Int(f Field) int { return m.values[f].i }

// Float returns a rational or length field
func (m *Model) Float(f Field) float64 { return m.values[f].AsFloat() }

// Choice returns the selected index of an enumeration field
func (m *Model) Choice(f Field) int { return m.values[f].i }

// ChoiceName returns the selected entry of an enumeration field
func (m *Model) ChoiceName(f Field) string {
	choices := m.domains[f].choices
	idx := m.values[f].i
	if idx < 0 || idx >= len(choices) {
		return ""
	}
	return choices[idx]
}

// Choices returns the choice list of an enumeration field
func (m *Model) Choices(f Field) []string {
	return append([]string(nil), m.domains[f].choices...)
}

// Phantoms returns a copy of a phantom list field
func (m *Model) Phantoms(f Field) []Phantom { return m.values[f].AsPhantoms() }

// Angles returns a copy of the projection angle table
func (m *Model) Angles() []ProjectionAngle { return m.values[FieldProjectionAngles].AsAngles() }

// Kind returns the kind a field stores
func (m *Model) Kind(f Field) Kind { return m.domains[f].kind }

// Range returns the numeric bounds of a field
func (m *Model) Range(f Field) (lo, hi float64) {
	return m.domains[f].lo, m.domains[f].hi
}

// ResetValue returns the value reset(f) restores
func (m *Model) ResetValue(f Field) Value {
	return m.domains[f].reset
}

// Set coerces v into the domain of f and publishes it. The stored value is
// returned so callers can echo a clamped input back into their control.
// Setting a value bitwise equal to the current one publishes nothing.
func (m *Model) Set(f Field, v Value) (Value, error) {
	if !f.Valid() {
		return Value{}, fmt.Errorf("unknown field %d", int(f))
	}
	stored, err := m.domains[f].coerce(f, v)
	if err != nil {
		return m.values[f], err
	}
	m.write(f, stored, false)
	return stored, nil
}

// SetBool sets a boolean field
func (m *Model) SetBool(f Field, b bool) error {
	_, err := m.Set(f, Bool(b))
	return err
}

// SetInt sets an integer field, clamping out-of-range input
func (m *Model) SetInt(f Field, i int) (int, error) {
	v, err := m.Set(f, Int(i))
	return v.AsInt(), err
}

// SetFloat sets a rational or length field, clamping out-of-range input
func (m *Model) SetFloat(f Field, x float64) (float64, error) {
	v, err := m.Set(f, Float(x))
	return v.AsFloat(), err
}

// Select sets an enumeration field by index
func (m *Model) Select(f Field, idx int) error {
	_, err := m.Set(f, Choice(idx))
	return err
}

// SelectName sets an enumeration field by entry name
func (m *Model) SelectName(f Field, name string) error {
	for i, c := range m.domains[f].choices {
		if c == name {
			return m.Select(f, i)
		}
	}
	return &SelectionError{Field: f, Index: -1, Choices: len(m.domains[f].choices)}
}

// SetPhantoms replaces a phantom list field
func (m *Model) SetPhantoms(f Field, p []Phantom) error {
	_, err := m.Set(f, Phantoms(p))
	return err
}

// SetAngles replaces the projection angle table
func (m *Model) SetAngles(a []ProjectionAngle) error {
	_, err := m.Set(FieldProjectionAngles, Angles(a))
	return err
}

// Reset restores f to its reset value and re-publishes it, even when the
// value was already the reset value.
func (m *Model) Reset(f Field) {
	m.write(f, m.domains[f].reset, true)
}

// ResetAll restores every field as one atomic publish
func (m *Model) ResetAll() {
	var changes []Change
	for f := Field(0); f < fieldCount; f++ {
		old := m.values[f]
		m.values[f] = m.domains[f].reset
		if !old.Equal(m.values[f]) {
			changes = append(changes, Change{Field: f, Old: old, New: m.values[f], Reset: true})
		}
	}
	m.publish(changes...)
}

func (m *Model) write(f Field, v Value, force bool) {
	old := m.values[f]
	if old.Equal(v) && !force {
		return
	}
	m.values[f] = v
	logrus.Debugf("values: %s %s -> %s", f, old, v)
	m.publish(Change{Field: f, Old: old, New: v, Reset: force})
}

// Subscribe registers a listener for one field. The returned function
// removes it.
func (m *Model) Subscribe(f Field, fn Listener) func() {
	e := &listenerEntry{id: m.nextID, fn: fn}
	m.nextID++
	m.listeners[f] = append(m.listeners[f], e)
	return func() { e.removed = true; m.compact(f) }
}

// SubscribeAll registers a listener for every field
func (m *Model) SubscribeAll(fn Listener) func() {
	e := &listenerEntry{id: m.nextID, fn: fn}
	m.nextID++
	m.global = append(m.global, e)
	return func() { e.removed = true; m.compact(-1) }
}

func (m *Model) compact(f Field) {
	if m.publishing {
		// swept when the drain finishes
		return
	}
	keep := func(list []*listenerEntry) []*listenerEntry {
		out := list[:0]
		for _, e := range list {
			if !e.removed {
				out = append(out, e)
			}
		}
		return out
	}
	if f < 0 {
		m.global = keep(m.global)
		return
	}
	m.listeners[f] = keep(m.listeners[f])
}

// publish queues changes and drains the queue unless a drain is already in
// progress further up the stack.
func (m *Model) publish(changes ...Change) {
	m.queue = append(m.queue, changes...)
	if m.publishing {
		return
	}
	m.publishing = true
	defer func() {
		m.publishing = false
		m.compact(-1)
		for f := Field(0); f < fieldCount; f++ {
			m.compact(f)
		}
	}()

	for len(m.queue) > 0 {
		c := m.queue[0]
		m.queue = m.queue[1:]
		for _, e := range append([]*listenerEntry(nil), m.listeners[c.Field]...) {
			if !e.removed {
				e.fn(c)
			}
		}
		for _, e := range append([]*listenerEntry(nil), m.global...) {
			if !e.removed {
				e.fn(c)
			}
		}
	}
}
