package autodiff

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/born-ml/pullback/internal/cotangent"
)

// Common errors.
var (
	ErrTapeIntegrity = errors.New("tape integrity violation")
	ErrTapeConsumed  = errors.New("tape already consumed by a backward pass")
	ErrArity         = errors.New("pullback arity mismatch")
	ErrValueType     = errors.New("unexpected value type")
	ErrSeedRequired  = errors.New("seed required for non-scalar output")
	ErrNotLeaf       = errors.New("gradient requested for a value that is not a leaf")

	// ErrShapeMismatch is returned when a contribution does not fit its
	// accumulator slot.
	ErrShapeMismatch = cotangent.ErrShapeMismatch
)

// TapeError provides detailed information about an integrity violation.
type TapeError struct {
	Tape   uuid.UUID // Tape the violation was detected on
	Node   int       // Index the offending node would have had
	Input  int       // Position of the offending input, -1 if not input-specific
	Reason string
}

// Error implements the error interface.
func (e *TapeError) Error() string {
	if e.Input >= 0 {
		return fmt.Sprintf("%v: tape %s: node %d input %d: %s", ErrTapeIntegrity, e.Tape, e.Node, e.Input, e.Reason)
	}
	return fmt.Sprintf("%v: tape %s: node %d: %s", ErrTapeIntegrity, e.Tape, e.Node, e.Reason)
}

// Unwrap lets errors.Is match ErrTapeIntegrity.
func (e *TapeError) Unwrap() error {
	return ErrTapeIntegrity
}

// fatal carries an error out of a primitive wrapper. Primitive wrappers have
// no error return so user functions read like ordinary arithmetic; Gradient
// and Eval recover fatal panics into errors and re-raise anything else.
type fatal struct {
	err error
}

func throw(err error) {
	panic(fatal{err: err})
}

// run invokes f and converts a fatal panic into an error.
func run(f Func, in []Var) (out Var, err error) {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(fatal); ok {
				err = fe.err
				return
			}
			panic(r)
		}
	}()
	return f(in), nil
}
