package cotangent

import (
	"fmt"

	"github.com/born-ml/pullback/internal/tensor"
)

// Composite is the cotangent of a tensor.Tuple.
//
// Composites built by ZeroLike serve as accumulators: every field is a live
// Accumulator that field-read pullbacks update in place through Slot. As a
// contribution a field may be nil, meaning that field receives nothing, so a
// field-read pullback contributes O(1) data instead of a zero-filled copy of
// the whole structure.
type Composite struct {
	fields []Value
}

// NewComposite creates a composite holding copies of the given fields.
func NewComposite(fields ...Value) *Composite {
	out := &Composite{fields: make([]Value, len(fields))}
	for i, f := range fields {
		if f != nil {
			out.fields[i] = f.Clone()
		}
	}
	return out
}

// Sole creates a contribution of n fields where only field i is set.
func Sole(n, i int, v Value) (*Composite, error) {
	if i < 0 || i >= n {
		return nil, fmt.Errorf("%w: field %d outside %d fields", ErrShapeMismatch, i, n)
	}
	fields := make([]Value, n)
	fields[i] = v
	return NewComposite(fields...), nil
}

// NumFields returns the field count.
func (c *Composite) NumFields() int {
	return len(c.fields)
}

// Field returns field i; it is nil in contributions that leave it untouched.
func (c *Composite) Field(i int) Value {
	return c.fields[i]
}

// Slot returns field i as an accumulator for in-place updates.
func (c *Composite) Slot(i int) (Accumulator, error) {
	if i < 0 || i >= len(c.fields) {
		return nil, fmt.Errorf("%w: field %d outside %d fields", ErrShapeMismatch, i, len(c.fields))
	}
	acc, ok := c.fields[i].(Accumulator)
	if !ok {
		return nil, fmt.Errorf("%w: field %d holds %T", ErrUnsupportedValue, i, c.fields[i])
	}
	return acc, nil
}

// Shape returns a one-dimensional shape holding the field count.
func (c *Composite) Shape() tensor.Shape {
	return tensor.Shape{len(c.fields)}
}

// IsZero reports whether every field is nil or structurally zero.
func (c *Composite) IsZero() bool {
	for _, f := range c.fields {
		if f != nil && !f.IsZero() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (c *Composite) Clone() Value {
	return NewComposite(c.fields...)
}

// Accumulate adds another composite field by field.
// Nil fields in the contribution are skipped. A nil field in the target is
// filled with a copy of the contribution's field.
func (c *Composite) Accumulate(v Value) error {
	other, ok := v.(*Composite)
	if !ok || other == nil || len(other.fields) != len(c.fields) {
		return mismatch(c, v, "")
	}
	for i, f := range other.fields {
		if f == nil {
			continue
		}
		if c.fields[i] == nil {
			filled, err := materialize(f)
			if err != nil {
				return fmt.Errorf("field %d: %w", i, err)
			}
			c.fields[i] = filled
			continue
		}
		acc, ok := c.fields[i].(Accumulator)
		if !ok {
			return fmt.Errorf("field %d: %w: %T cannot accumulate", i, ErrUnsupportedValue, c.fields[i])
		}
		if err := acc.Accumulate(f); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
	}
	return nil
}

// materialize turns a contribution into an accumulator it does not share.
func materialize(v Value) (Accumulator, error) {
	if s, ok := v.(*Sparse); ok {
		return s.Densify()
	}
	acc, ok := v.Clone().(Accumulator)
	if !ok {
		return nil, fmt.Errorf("%w: %T cannot accumulate", ErrUnsupportedValue, v)
	}
	return acc, nil
}
