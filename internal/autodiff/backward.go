package autodiff

import (
	"fmt"

	"github.com/born-ml/pullback/internal/autodiff/ops"
	"github.com/born-ml/pullback/internal/cotangent"
)

// Stats summarizes one backward pass.
type Stats struct {
	Nodes   int // Nodes on the tape
	Visited int // Nodes visited by the reverse walk
	Invoked int // Pullbacks invoked
	Skipped int // Pullbacks skipped because their slot was still zero
	InPlace int // Pullbacks that wrote straight into producer slots
	Aliased int // Pullbacks elided because the slot is part of the producer's
}

// Grads holds the accumulated cotangents of a tape's leaves after Backward.
type Grads struct {
	tape    *Tape
	slots   []cotangent.Accumulator
	aliased []bool // slot is a view into the producer's slot
	Stats   Stats
}

// Of returns the gradient for a leaf. Leaves with no path to the output get
// the cotangent-space zero matching their value.
func (g *Grads) Of(v Var) (cotangent.Value, error) {
	if v.tape != g.tape || v.index < 0 || v.index >= len(g.slots) {
		return nil, fmt.Errorf("%w: value is not on this tape", ErrNotLeaf)
	}
	if !g.tape.nodes[v.index].leaf {
		return nil, fmt.Errorf("%w: node %d", ErrNotLeaf, v.index)
	}
	if slot := g.slots[v.index]; slot != nil {
		return slot, nil
	}
	return cotangent.ZeroLike(v.value)
}

// Backward computes cotangents for every leaf by walking the tape in reverse.
//
// Algorithm:
//  1. Accumulate seed into the output node's slot
//  2. Visit nodes in strictly decreasing creation order. Every consumer of a
//     node was created after it, so by the time a node is visited its slot
//     holds the sum of all its consumers' contributions.
//  3. Skip nodes whose slot is still zero (unless it is the output);
//     otherwise invoke the pullback and accumulate one contribution into
//     each producer's slot, or let an InPlaceOperation write into the slots
//     directly
//  4. Release the node's pullback and slot once it has run
//
// Slots are allocated lazily on the first contribution. A node produced by an
// ops.AliasOperation (a composite field read) gets a view into its
// producer's slot instead, so writes into it land in the producer directly
// and its pullback is skipped. A tape can be walked
// once; later calls return ErrTapeConsumed. Any error aborts the walk and no
// partial gradients are returned.
func (t *Tape) Backward(output Var, seed cotangent.Value) (*Grads, error) {
	if t.consumed {
		return nil, ErrTapeConsumed
	}
	if output.tape != nil && output.tape != t {
		return nil, &TapeError{Tape: t.id, Node: output.index, Input: -1,
			Reason: fmt.Sprintf("output belongs to tape %s", output.tape.id)}
	}
	if seed == nil {
		return nil, ErrSeedRequired
	}
	t.consumed = true

	grads := &Grads{
		tape:    t,
		slots:   make([]cotangent.Accumulator, len(t.nodes)),
		aliased: make([]bool, len(t.nodes)),
		Stats:   Stats{Nodes: len(t.nodes)},
	}

	// A constant output depends on no leaf: every gradient is zero.
	if output.tape == nil {
		return grads, nil
	}

	outSlot, err := cotangent.ZeroLike(t.nodes[output.index].value)
	if err != nil {
		return nil, err
	}
	if err := outSlot.Accumulate(seed); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	grads.slots[output.index] = outSlot

	for i := len(t.nodes) - 1; i >= 0; i-- {
		grads.Stats.Visited++
		n := &t.nodes[i]
		if n.leaf {
			continue
		}

		slot := grads.slots[i]
		if i != output.index && (slot == nil || slot.IsZero()) {
			grads.Stats.Skipped++
			t.release(grads, i)
			continue
		}
		if grads.aliased[i] {
			grads.Stats.Aliased++
			t.release(grads, i)
			continue
		}

		if err := t.pullback(grads, i, slot); err != nil {
			return nil, fmt.Errorf("backward: node %d (%s): %w", i, n.op.Name(), err)
		}
		grads.Stats.Invoked++
		t.release(grads, i)
	}

	return grads, nil
}

// pullback runs node i's operation and deposits its contributions.
func (t *Tape) pullback(grads *Grads, i int, out cotangent.Accumulator) error {
	n := &t.nodes[i]

	if inPlace, ok := n.op.(ops.InPlaceOperation); ok {
		targets := make([]cotangent.Accumulator, len(n.inputs))
		for j, p := range n.inputs {
			if p < 0 {
				continue
			}
			slot, err := t.slotFor(grads, p)
			if err != nil {
				return err
			}
			targets[j] = slot
		}
		grads.Stats.InPlace++
		return inPlace.BackwardInto(out, targets)
	}

	contribs, err := n.op.Backward(out)
	if err != nil {
		return err
	}
	if len(contribs) != len(n.inputs) {
		return fmt.Errorf("%w: %d contributions for %d inputs", ErrArity, len(contribs), len(n.inputs))
	}
	for j, c := range contribs {
		p := n.inputs[j]
		if p < 0 || c == nil {
			continue
		}
		slot, err := t.slotFor(grads, p)
		if err != nil {
			return err
		}
		if err := slot.Accumulate(c); err != nil {
			return fmt.Errorf("input %d (node %d): %w", j, p, err)
		}
	}
	return nil
}

// slotFor returns node p's accumulator, allocating the zero on first use.
// Nodes of an AliasOperation share the matching part of their producer's
// slot.
func (t *Tape) slotFor(grads *Grads, p int) (cotangent.Accumulator, error) {
	if slot := grads.slots[p]; slot != nil {
		return slot, nil
	}
	n := &t.nodes[p]
	if alias, ok := n.op.(ops.AliasOperation); ok && len(n.inputs) == 1 && n.inputs[0] >= 0 {
		parent, err := t.slotFor(grads, n.inputs[0])
		if err != nil {
			return nil, err
		}
		slot, ok, err := alias.AliasSlot(parent)
		if err != nil {
			return nil, err
		}
		if ok {
			grads.slots[p] = slot
			grads.aliased[p] = true
			return slot, nil
		}
	}
	slot, err := cotangent.ZeroLike(n.value)
	if err != nil {
		return nil, err
	}
	grads.slots[p] = slot
	return slot, nil
}

// release drops node i's captured state once its pullback is done.
func (t *Tape) release(grads *Grads, i int) {
	t.nodes[i].op = nil
	grads.slots[i] = nil
}
