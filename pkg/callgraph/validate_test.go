package callgraph

import (
	"errors"
	"testing"

	"github.com/wireup-dev/wireup/pkg/component"
	"github.com/wireup-dev/wireup/pkg/lang"
)

// These tests build raw graphs directly (white-box, same package) to
// exercise Validate's invariant checks against graph shapes the
// builder itself would never produce. They exist to prove the checks
// actually cross-reference the independently-maintained consumers
// bookkeeping rather than restating each node's own declared fields.

func TestValidateRejectsInputParameterWithRecordedConsumerEdge(t *testing.T) {
	g := newRawCallGraph()
	root := g.push(Node{Kind: ComputeNode, ComponentID: component.ID(0), Invocations: Single, MatchParent: noIndex})
	input := g.push(Node{Kind: InputParameterNode, InputType: lang.New("myapp", "T"), MatchParent: noIndex})
	// A bogus edge pointing INTO the InputParameter node: no real
	// builder path produces this, but Validate must still catch it via
	// the consumers bookkeeping rather than trusting Incoming()'s
	// hardcoded "InputParameter nodes have no incoming edges" answer.
	g.addConsumer(root, input)

	cg := &CallGraph{Graph: g, Root: root}
	var be *BuildError
	if err := Validate(cg); !errors.As(err, &be) || !errors.Is(be.Kind, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation for an InputParameter node with a recorded incoming edge, got %v", err)
	}
}

func TestValidateRejectsMatchResultNodeWithMismatchedProducer(t *testing.T) {
	g := newRawCallGraph()
	ctor := g.push(Node{Kind: ComputeNode, ComponentID: component.ID(0), Invocations: Single, MatchParent: noIndex})
	branch := g.push(Node{Kind: MatchBranchingNode, Source: ctor, OkBranch: noIndex, ErrBranch: noIndex})
	g.addConsumer(ctor, branch)
	okNode := g.push(Node{Kind: ComputeNode, ComponentID: component.ID(1), Invocations: Single, MatchParent: branch})
	errNode := g.push(Node{Kind: ComputeNode, ComponentID: component.ID(2), Invocations: Single, MatchParent: branch})
	// Declared fields say both projections hang off branch, but the
	// independently-tracked consumer edges never actually recorded
	// branch -> okNode: a builder that set MatchParent without calling
	// addConsumer (or vice versa) must be caught here, not waved
	// through by re-deriving "one incoming edge" from MatchParent itself.
	g.addConsumer(branch, errNode)
	n := g.nodes[branch]
	n.OkBranch, n.ErrBranch = okNode, errNode
	g.nodes[branch] = n

	cg := &CallGraph{Graph: g, Root: ctor}
	var be *BuildError
	if err := Validate(cg); !errors.As(err, &be) || !errors.Is(be.Kind, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation for a MatchResult node missing its recorded producer edge, got %v", err)
	}
}

func TestValidateRejectsMatchBranchingWithMismatchedSource(t *testing.T) {
	g := newRawCallGraph()
	ctorA := g.push(Node{Kind: ComputeNode, ComponentID: component.ID(0), Invocations: Single, MatchParent: noIndex})
	ctorB := g.push(Node{Kind: ComputeNode, ComponentID: component.ID(1), Invocations: Single, MatchParent: noIndex})
	branch := g.push(Node{Kind: MatchBranchingNode, Source: ctorA, OkBranch: noIndex, ErrBranch: noIndex})
	// The branch claims ctorA as its Source, but the consumer edge was
	// recorded from ctorB instead: a genuine mismatch between the two
	// independently-populated structures.
	g.addConsumer(ctorB, branch)
	okNode := g.push(Node{Kind: ComputeNode, ComponentID: component.ID(2), Invocations: Single, MatchParent: branch})
	errNode := g.push(Node{Kind: ComputeNode, ComponentID: component.ID(3), Invocations: Single, MatchParent: branch})
	g.addConsumer(branch, okNode)
	g.addConsumer(branch, errNode)
	n := g.nodes[branch]
	n.OkBranch, n.ErrBranch = okNode, errNode
	g.nodes[branch] = n

	cg := &CallGraph{Graph: g, Root: ctorA}
	var be *BuildError
	if err := Validate(cg); !errors.As(err, &be) || !errors.Is(be.Kind, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation for a MatchBranching node whose Source doesn't match its recorded producer, got %v", err)
	}
}
