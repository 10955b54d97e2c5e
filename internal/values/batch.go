package values

import "fmt"

// Batch stages writes that are applied together by Model.Batch
type Batch struct {
	m      *Model
	staged map[Field]Value
	order  []Field
}

// Set stages a coerced value for f. Selection errors abort the batch when
// returned from the batch function.
func (b *Batch) Set(f Field, v Value) error {
	if !f.Valid() {
		return fmt.Errorf("unknown field %d", int(f))
	}
	stored, err := b.m.domains[f].coerce(f, v)
	if err != nil {
		return err
	}
	if _, ok := b.staged[f]; !ok {
		b.order = append(b.order, f)
	}
	b.staged[f] = stored
	return nil
}

// SelectName stages an enumeration entry by name
func (b *Batch) SelectName(f Field, name string) error {
	for i, c := range b.m.domains[f].choices {
		if c == name {
			return b.Set(f, Choice(i))
		}
	}
	return &SelectionError{Field: f, Index: -1, Choices: len(b.m.domains[f].choices)}
}

// Batch runs fn against a staging area and, when fn succeeds, writes every
// staged value before publishing any of them. Listeners therefore observe the
// fully written model. When fn fails nothing is written or published.
func (m *Model) Batch(fn func(b *Batch) error) error {
	b := &Batch{m: m, staged: make(map[Field]Value)}
	if err := fn(b); err != nil {
		return err
	}

	var changes []Change
	for _, f := range b.order {
		old := m.values[f]
		v := b.staged[f]
		if old.Equal(v) {
			continue
		}
		m.values[f] = v
		changes = append(changes, Change{Field: f, Old: old, New: v})
	}
	m.publish(changes...)
	return nil
}
