package callgraph

import (
	"errors"
	"fmt"

	"github.com/wireup-dev/wireup/pkg/component"
	"github.com/wireup-dev/wireup/pkg/lang"
)

// Sentinel error kinds produced by the call graph builder. All are
// fatal for the handler being compiled; none are retryable. The
// compiler may continue with other handlers and accumulate diagnostics.
var (
	// ErrUnresolvableInput: a required input type has no constructor and
	// was not declared external.
	ErrUnresolvableInput = errors.New("callgraph: unresolvable input")
	// ErrCycleDetected: resolution found a dependency cycle.
	ErrCycleDetected = errors.New("callgraph: DI cycle detected")
	// ErrMissingErrorHandler: a fallible constructor has no registered
	// error handler.
	ErrMissingErrorHandler = errors.New("callgraph: missing error handler")
	// ErrInvariantViolation: an assertion about graph shape failed, the
	// root component is not a callable, or a required type has more than
	// one registered constructor (Build reports an ambiguous constructor
	// under this kind, with the ambiguity in the error's detail; there is
	// no separate ambiguity kind).
	ErrInvariantViolation = errors.New("callgraph: invariant violation")
)

// BuildError carries enough context for diagnostics to point back at the
// blueprint registration site that triggered it.
type BuildError struct {
	Kind      error
	Type      lang.ResolvedType
	Component component.ID
	detail    string
}

func (e *BuildError) Error() string {
	if e.Type.IsZero() {
		return fmt.Sprintf("%v: %s", e.Kind, e.detail)
	}
	if e.detail != "" {
		return fmt.Sprintf("%v: %s (%s)", e.Kind, e.Type, e.detail)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Type)
}

func (e *BuildError) Unwrap() error {
	return e.Kind
}

func newBuildError(kind error, t lang.ResolvedType, detail string) *BuildError {
	return &BuildError{Kind: kind, Type: t, detail: detail}
}

// newNodeBuildError reports an invariant violation pinned to a graph
// node rather than an input type: n.ComponentID is valid only for
// ComputeNode, so callers reporting against a MatchBranchingNode pass
// component.ID(0) and rely on the node index in detail instead.
func newNodeBuildError(kind error, idx NodeIndex, componentID component.ID, detail string) *BuildError {
	return &BuildError{Kind: kind, Component: componentID, detail: fmt.Sprintf("node n%d: %s", int(idx), detail)}
}
