package autodiff

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/born-ml/pullback/internal/autodiff/ops"
	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

// Tape records primitive invocations during the forward pass and is walked
// once, in reverse, by Backward.
//
// The tape is an arena of nodes indexed by creation order. A node holds its
// forward value, the indices of the nodes that produced its inputs and the
// pullback of the primitive that created it. Because a node can only name
// producers that already exist, creation order is a topological order and
// the graph is acyclic by construction.
//
// Usage:
//
//	tape := NewTape()
//	x, _ := tape.Leaf(3.0)
//	y := Mul(x, x)
//	grads, _ := tape.Backward(y, cotangent.NewScalar(1))
//	dx, _ := grads.Of(x) // 6
//
// A Tape is owned by a single goroutine.
type Tape struct {
	id       uuid.UUID
	nodes    []node // Recorded nodes (in creation order)
	consumed bool   // Set once Backward has run
}

type node struct {
	value  any
	inputs []int         // Producer index per input, -1 for constants
	op     ops.Operation // Nil for leaves and after the pullback ran
	leaf   bool
}

// NewTape creates an empty tape.
func NewTape() *Tape {
	return &Tape{
		id:    uuid.New(),
		nodes: make([]node, 0, 64), // Pre-allocate for common case
	}
}

// ID returns the tape's identity.
func (t *Tape) ID() uuid.UUID {
	return t.id
}

// Len returns the number of recorded nodes.
func (t *Tape) Len() int {
	return len(t.nodes)
}

// Consumed reports whether Backward has already walked the tape.
func (t *Tape) Consumed() bool {
	return t.consumed
}

// Leaf registers an input value. Leaves have no producers; their accumulated
// slot is the gradient Backward reports for them.
func (t *Tape) Leaf(value any) (Var, error) {
	if t.consumed {
		return Var{}, ErrTapeConsumed
	}
	if err := checkValue(value); err != nil {
		return Var{}, err
	}
	t.nodes = append(t.nodes, node{value: value, leaf: true})
	return Var{tape: t, index: len(t.nodes) - 1, value: value}, nil
}

// Record appends a node for one primitive invocation.
//
// Every input that is not a constant must be a Var of this tape; its node
// becomes a producer of the new node. Recording is purely additive: existing
// nodes are never modified.
func (t *Tape) Record(op ops.Operation, value any, inputs ...Var) (Var, error) {
	index := len(t.nodes)
	if t.consumed {
		return Var{}, ErrTapeConsumed
	}
	if op == nil {
		return Var{}, &TapeError{Tape: t.id, Node: index, Input: -1, Reason: "nil operation"}
	}
	if op.NumInputs() != len(inputs) {
		return Var{}, fmt.Errorf("%w: %s declares %d inputs, recorded with %d",
			ErrArity, op.Name(), op.NumInputs(), len(inputs))
	}
	if err := checkValue(value); err != nil {
		return Var{}, fmt.Errorf("%s: %w", op.Name(), err)
	}

	producers := make([]int, len(inputs))
	for i, in := range inputs {
		switch {
		case in.tape == nil:
			producers[i] = -1
		case in.tape != t:
			return Var{}, &TapeError{Tape: t.id, Node: index, Input: i,
				Reason: fmt.Sprintf("producer belongs to tape %s", in.tape.id)}
		case in.index < 0 || in.index >= index:
			return Var{}, &TapeError{Tape: t.id, Node: index, Input: i,
				Reason: fmt.Sprintf("producer %d was not created before this node", in.index)}
		default:
			producers[i] = in.index
		}
	}

	t.nodes = append(t.nodes, node{value: value, inputs: producers, op: op})
	return Var{tape: t, index: index, value: value}, nil
}

// NodeInfo describes a recorded node for inspection.
type NodeInfo struct {
	Index  int
	Op     string // "leaf" for inputs, "released" once the pullback ran
	Inputs []int  // Producer indices, -1 for constants
}

// Node returns a description of node i.
func (t *Tape) Node(i int) (NodeInfo, error) {
	if i < 0 || i >= len(t.nodes) {
		return NodeInfo{}, fmt.Errorf("node %d outside tape of %d nodes", i, len(t.nodes))
	}
	n := t.nodes[i]
	info := NodeInfo{Index: i, Inputs: append([]int(nil), n.inputs...)}
	switch {
	case n.leaf:
		info.Op = "leaf"
	case n.op == nil:
		info.Op = "released"
	default:
		info.Op = n.op.Name()
	}
	return info, nil
}

// checkValue rejects forward values no cotangent space is defined for.
func checkValue(v any) error {
	switch v := v.(type) {
	case float64:
		return nil
	case *tensor.Array:
		if v == nil {
			return fmt.Errorf("%w: nil array", cotangent.ErrUnsupportedValue)
		}
		return nil
	case tensor.Tuple:
		for i, f := range v {
			if err := checkValue(f); err != nil {
				return fmt.Errorf("field %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", cotangent.ErrUnsupportedValue, v)
	}
}
