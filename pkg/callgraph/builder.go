package callgraph

import (
	"errors"
	"fmt"

	"github.com/wireup-dev/wireup/pkg/component"
	"github.com/wireup-dev/wireup/pkg/computation"
	"github.com/wireup-dev/wireup/pkg/lang"
)

// Build computes the call graph rooted at the handler component root.
// Each unsatisfied input type is resolved against cdb's registered
// constructors, falling back to an external InputParameter node for a
// type marked external (component.MarkExternal) and erroring otherwise
// (ErrUnresolvableInput). Fallible constructors expand into a
// MatchBranching with Ok/Err projections; lifecycle governs sharing. A
// type resolving back into itself is a dependency cycle
// (ErrCycleDetected).
func Build(root component.ID, cdb *component.Database) (*CallGraph, error) {
	b := &builder{
		graph:      newRawCallGraph(),
		cdb:        cdb,
		producedBy: make(map[string]NodeIndex),
		visiting:   make(map[string]bool),
	}

	rootHC := cdb.HydratedComponent(root)
	if rootHC.Computation.Kind != computation.CallableKind {
		return nil, newBuildError(ErrInvariantViolation, rootHC.OutputType(), "root component is not a callable")
	}

	rootIdx := b.graph.push(Node{Kind: ComputeNode, ComponentID: root, Invocations: Single, MatchParent: noIndex})
	if err := b.resolveInputsFor(rootIdx, rootHC.Computation.Callable); err != nil {
		return nil, err
	}

	return &CallGraph{Graph: b.graph, Root: rootIdx}, nil
}

type builder struct {
	graph *RawCallGraph
	cdb   *component.Database

	// producedBy caches, by type key, the node that satisfies that type:
	// a constructor's Compute node, a fallible constructor's Ok
	// projection, or an InputParameter node. Reused across every
	// consumer so each type has exactly one producer node.
	producedBy map[string]NodeIndex
	// visiting detects a type cycling back into its own resolution.
	visiting map[string]bool
}

// resolveInputsFor resolves every input type of callable, in declared
// order, and records the resulting argument edges on node.
func (b *builder) resolveInputsFor(node NodeIndex, callable lang.Callable) error {
	edges := make([]InputEdge, len(callable.Inputs))
	for i, t := range callable.Inputs {
		producer, meta, err := b.resolve(t)
		if err != nil {
			return err
		}
		edges[i] = InputEdge{From: producer, Metadata: meta}
		b.graph.addConsumer(producer, node)
	}
	n := b.graph.nodes[node]
	n.Inputs = edges
	b.graph.nodes[node] = n
	return nil
}

// resolve returns the node satisfying type t, building it if necessary,
// and the edge metadata a consumer should use to reference it.
func (b *builder) resolve(t lang.ResolvedType) (NodeIndex, EdgeMetadata, error) {
	key := t.Key()
	if idx, ok := b.producedBy[key]; ok {
		return idx, edgeMetadataFor(b.graph.nodes[idx]), nil
	}

	ctorID, err := b.cdb.ConstructorFor(t)
	if err != nil {
		if errors.Is(err, component.ErrUnknownConstructor) {
			if b.cdb.IsExternal(t) {
				idx := b.graph.push(Node{Kind: InputParameterNode, InputType: t, MatchParent: noIndex})
				b.graph.inputOrder = append(b.graph.inputOrder, idx)
				b.producedBy[key] = idx
				return idx, ByValue, nil
			}
			return 0, 0, newBuildError(ErrUnresolvableInput, t, "")
		}
		if errors.Is(err, component.ErrAmbiguousConstructor) {
			return 0, 0, newBuildError(ErrInvariantViolation, t, err.Error())
		}
		return 0, 0, fmt.Errorf("callgraph: resolving %s: %w", t, err)
	}

	if b.visiting[key] {
		return 0, 0, newBuildError(ErrCycleDetected, t, "")
	}
	b.visiting[key] = true
	defer delete(b.visiting, key)

	hc := b.cdb.HydratedComponent(ctorID)
	invocations := Single
	if hc.Lifecycle == component.Transient {
		invocations = Multiple
	}

	if !b.cdb.IsFallible(ctorID) {
		ctorIdx := b.graph.push(Node{Kind: ComputeNode, ComponentID: ctorID, Invocations: invocations, MatchParent: noIndex})
		if err := b.resolveInputsFor(ctorIdx, hc.Computation.Callable); err != nil {
			return 0, 0, err
		}
		b.producedBy[key] = ctorIdx
		return ctorIdx, edgeMetadataForLifecycle(hc.Lifecycle), nil
	}

	return b.resolveFallible(t, key, ctorID, hc, invocations)
}

func (b *builder) resolveFallible(t lang.ResolvedType, key string, ctorID component.ID, hc component.HydratedComponent, invocations Invocations) (NodeIndex, EdgeMetadata, error) {
	errHandlerID, ok := b.cdb.ErrorHandlerOf(ctorID)
	if !ok {
		return 0, 0, newBuildError(ErrMissingErrorHandler, t, "")
	}

	ctorIdx := b.graph.push(Node{Kind: ComputeNode, ComponentID: ctorID, Invocations: invocations, MatchParent: noIndex})
	if err := b.resolveInputsFor(ctorIdx, hc.Computation.Callable); err != nil {
		return 0, 0, err
	}

	branchIdx := b.graph.push(Node{Kind: MatchBranchingNode, Source: ctorIdx, OkBranch: noIndex, ErrBranch: noIndex})
	b.graph.addConsumer(ctorIdx, branchIdx)

	callable := hc.Computation.Callable
	okComponentID := b.cdb.RegisterMatchTransformer(computation.Ok, callable.Output)
	okIdx := b.graph.push(Node{Kind: ComputeNode, ComponentID: okComponentID, Invocations: Single, MatchParent: branchIdx})
	b.graph.addConsumer(branchIdx, okIdx)
	b.producedBy[key] = okIdx

	errKey := callable.ErrOutput.Key()
	errComponentID := b.cdb.RegisterMatchTransformer(computation.Err, callable.ErrOutput)
	errIdx := b.graph.push(Node{Kind: ComputeNode, ComponentID: errComponentID, Invocations: Single, MatchParent: branchIdx})
	b.graph.addConsumer(branchIdx, errIdx)
	b.producedBy[errKey] = errIdx

	errHandlerHC := b.cdb.HydratedComponent(errHandlerID)
	errHandlerIdx := b.graph.push(Node{Kind: ComputeNode, ComponentID: errHandlerID, Invocations: Single, MatchParent: noIndex})
	if err := b.resolveInputsFor(errHandlerIdx, errHandlerHC.Computation.Callable); err != nil {
		return 0, 0, err
	}
	delete(b.producedBy, errKey)

	n := b.graph.nodes[branchIdx]
	n.OkBranch = okIdx
	n.ErrBranch = errIdx
	b.graph.nodes[branchIdx] = n

	return okIdx, edgeMetadataForLifecycle(hc.Lifecycle), nil
}

func edgeMetadataForLifecycle(l component.Lifecycle) EdgeMetadata {
	if l == component.Transient {
		return ByValue
	}
	return SharedOwnership
}

func edgeMetadataFor(n Node) EdgeMetadata {
	if n.Kind == InputParameterNode {
		return ByValue
	}
	if n.Invocations == Multiple {
		return ByValue
	}
	return SharedOwnership
}
