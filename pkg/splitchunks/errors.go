package splitchunks

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
)

// ErrInvariantViolation marks a compilation that the pass cannot rewrite
// without leaving the chunk graph half disconnected. It is always fatal.
var ErrInvariantViolation = errors.New("split chunks: invariant violation")

// InvariantError carries the module that broke an invariant.
type InvariantError struct {
	Cause  error
	Module chunkgraph.ModuleID
	Reason string
}

func newInvariantError(module chunkgraph.ModuleID, reason string, cause error) *InvariantError {
	return &InvariantError{Module: module, Reason: reason, Cause: cause}
}

// Error implements error.
func (e *InvariantError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: module %q: %s: %v", ErrInvariantViolation, e.Module, e.Reason, e.Cause)
	}

	return fmt.Sprintf("%s: module %q: %s", ErrInvariantViolation, e.Module, e.Reason)
}

// Unwrap exposes ErrInvariantViolation and, when present, the collaborator error.
func (e *InvariantError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvariantViolation, e.Cause}
	}

	return []error{ErrInvariantViolation}
}
