package ops

import (
	"context"
)

// Operation defines the interface for every assistant capability that can
// be scheduled on a command stack. RequiredFields and Dependencies are
// mandatory: an operation with no requirements returns an empty map/slice
// rather than omitting the method.
type Operation interface {
	Name() string
	Description() string
	// AcceptedArgs lists the caller-supplied argument names this operation
	// is declared to receive when scheduled as a prerequisite. The stack
	// builder projects the main command's args down to this set.
	AcceptedArgs() []string
	// RequiredFields maps each mandatory argument to the prompt shown to
	// the user when the value is missing.
	RequiredFields() map[string]string
	// Dependencies returns the operations to run first, already flattened
	// and non-cyclic. The list is used verbatim, never expanded
	// transitively.
	Dependencies() []string
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// Registry manages the set of available operations. It is populated once
// at startup and read-only afterwards, so concurrent reads are safe
// without locking.
type Registry struct {
	Ops map[string]Operation
}

func NewRegistry() *Registry {
	return &Registry{
		Ops: make(map[string]Operation),
	}
}

func (r *Registry) Register(op Operation) {
	r.Ops[op.Name()] = op
}

func (r *Registry) Get(name string) Operation {
	return r.Ops[name]
}
