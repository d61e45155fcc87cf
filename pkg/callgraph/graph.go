// Package callgraph builds, for a single root handler, the deterministic
// DAG of invocations, external inputs, and Ok/Err match branches that
// the code generator will fuse into a handler body. Nodes live in a
// flat arena and are referenced by integer index (NodeIndex), never by
// pointer.
package callgraph

import (
	"github.com/wireup-dev/wireup/pkg/component"
	"github.com/wireup-dev/wireup/pkg/lang"
)

// NodeIndex identifies a node within a single RawCallGraph. Indices are
// stable within a graph; identity across graphs is not meaningful.
type NodeIndex int

// noIndex is the sentinel for "no such node".
const noIndex NodeIndex = -1

// NodeKind tags the three node shapes a call graph can contain.
type NodeKind int

const (
	ComputeNode NodeKind = iota
	InputParameterNode
	MatchBranchingNode
)

// Invocations records how many times a Compute node's rendered value may
// be referenced in generated code before it must be (or must not be)
// bound to a variable.
type Invocations int

const (
	// Single means the value must be bound to a variable and reused.
	Single Invocations = iota
	// Multiple means the call expression is recomputed inline at every
	// consumer (no shared variable).
	Multiple
)

// EdgeMetadata tags how a consumer should reference a producer's
// rendered value. It is opaque to graph structure and only influences
// the rendered argument expression.
type EdgeMetadata int

const (
	ByValue EdgeMetadata = iota
	ByReference
	SharedOwnership
)

// InputEdge is one ordered argument slot of a Compute(Callable) node:
// the producer node supplying it, and how to consume it.
type InputEdge struct {
	From     NodeIndex
	Metadata EdgeMetadata
}

// Node is a single vertex in the call graph's arena.
type Node struct {
	Kind NodeKind

	// ComponentID is valid iff Kind == ComputeNode.
	ComponentID component.ID
	// Invocations is valid iff Kind == ComputeNode.
	Invocations Invocations
	// Inputs are this node's ordered argument producers, valid iff
	// Kind == ComputeNode and the node wraps a plain callable (not a
	// MatchResult projection).
	Inputs []InputEdge
	// MatchParent is the MatchBranching node this Compute(MatchResult)
	// node is projected from, or noIndex if this isn't a projection.
	MatchParent NodeIndex

	// InputType is valid iff Kind == InputParameterNode.
	InputType lang.ResolvedType

	// Source, OkBranch, ErrBranch are valid iff Kind == MatchBranchingNode:
	// Source is the single fallible producer; OkBranch/ErrBranch are the
	// two Compute(MatchResult) successors.
	Source    NodeIndex
	OkBranch  NodeIndex
	ErrBranch NodeIndex
}

// RawCallGraph is the arena-backed DAG: a flat node list plus, for each
// node, the list of nodes that consume its output (its Outgoing edges).
// Incoming edges are derived on demand from each node's own Inputs /
// MatchParent / Source fields. MatchParent and Source are set when the
// node is pushed; Inputs is filled in once the node's arguments have
// been resolved.
type RawCallGraph struct {
	nodes     []Node
	consumers [][]NodeIndex
	// inputOrder records InputParameter node indices in the order they
	// were first created, i.e. deterministic blueprint/resolution order.
	inputOrder []NodeIndex
}

func newRawCallGraph() *RawCallGraph {
	return &RawCallGraph{}
}

func (g *RawCallGraph) push(n Node) NodeIndex {
	idx := NodeIndex(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.consumers = append(g.consumers, nil)
	return idx
}

func (g *RawCallGraph) addConsumer(producer, consumer NodeIndex) {
	g.consumers[producer] = append(g.consumers[producer], consumer)
}

// Node returns the node at idx.
func (g *RawCallGraph) Node(idx NodeIndex) Node {
	return g.nodes[idx]
}

// Len returns the number of nodes in the arena.
func (g *RawCallGraph) Len() int {
	return len(g.nodes)
}

// Outgoing returns the nodes that consume idx's output.
func (g *RawCallGraph) Outgoing(idx NodeIndex) []NodeIndex {
	return g.consumers[idx]
}

// Incoming returns the nodes that idx consumes, in argument order where
// that's meaningful (Compute nodes wrapping a plain callable).
func (g *RawCallGraph) Incoming(idx NodeIndex) []NodeIndex {
	n := g.nodes[idx]
	switch n.Kind {
	case InputParameterNode:
		return nil
	case MatchBranchingNode:
		return []NodeIndex{n.Source}
	default: // ComputeNode
		if n.MatchParent != noIndex {
			return []NodeIndex{n.MatchParent}
		}
		out := make([]NodeIndex, len(n.Inputs))
		for i, e := range n.Inputs {
			out[i] = e.From
		}
		return out
	}
}

// InputParameterNodes returns the InputParameter node indices in
// deterministic (first-required) order.
func (g *RawCallGraph) InputParameterNodes() []NodeIndex {
	return g.inputOrder
}

// CallGraph is the pair (RawCallGraph, root_node_index): the DAG plus
// the node representing the handler whose dependency closure it encodes.
type CallGraph struct {
	Graph *RawCallGraph
	Root  NodeIndex
}

// RequiredInputTypes returns the resolved types of every InputParameter
// node, in the graph's deterministic construction order. This is the
// external signature the generated handler must accept.
func (cg *CallGraph) RequiredInputTypes() []lang.ResolvedType {
	nodes := cg.Graph.InputParameterNodes()
	out := make([]lang.ResolvedType, len(nodes))
	for i, idx := range nodes {
		out[i] = cg.Graph.Node(idx).InputType
	}
	return out
}
