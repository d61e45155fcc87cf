package callgraph

import (
	"fmt"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
)

// incomingFromConsumers rebuilds, for every node, the set of producers
// that recorded it as a consumer via addConsumer. Validate checks
// invariants against this reconstruction rather than against
// Incoming(), which is derived from the same fields an invariant check
// would be restating.
func incomingFromConsumers(g *RawCallGraph) [][]NodeIndex {
	in := make([][]NodeIndex, g.Len())
	for p := 0; p < g.Len(); p++ {
		for _, c := range g.Outgoing(NodeIndex(p)) {
			in[c] = append(in[c], NodeIndex(p))
		}
	}
	return in
}

// Validate checks the structural invariants a well-formed call graph
// must satisfy: acyclicity, that every MatchBranching has exactly one
// incoming and two outgoing edges, that every Compute(MatchResult)
// node has exactly one incoming edge from a MatchBranching, and that
// InputParameter nodes are sources. Acyclicity is double-checked via
// github.com/katalvlaran/lvlath's dfs.DetectCycles and TopologicalSort
// as an independent witness alongside the builder's own cycle guard.
func Validate(cg *CallGraph) error {
	g := cg.Graph
	incoming := incomingFromConsumers(g)

	for idx, n := range g.nodes {
		ni := NodeIndex(idx)
		switch n.Kind {
		case InputParameterNode:
			if len(incoming[ni]) != 0 {
				return newBuildError(ErrInvariantViolation, n.InputType, "InputParameter node has incoming edges")
			}
		case MatchBranchingNode:
			if len(incoming[ni]) != 1 || incoming[ni][0] != n.Source {
				return newNodeBuildError(ErrInvariantViolation, ni, 0, "MatchBranching node's recorded producer doesn't match its Source")
			}
			if n.OkBranch == noIndex || n.ErrBranch == noIndex {
				return newNodeBuildError(ErrInvariantViolation, ni, 0, "MatchBranching node lacks Ok or Err successor")
			}
			if len(g.Outgoing(ni)) != 2 {
				return newNodeBuildError(ErrInvariantViolation, ni, 0, "MatchBranching node lacks exactly two outgoing edges")
			}
		case ComputeNode:
			if n.MatchParent != noIndex {
				if len(incoming[ni]) != 1 || incoming[ni][0] != n.MatchParent {
					return newNodeBuildError(ErrInvariantViolation, ni, n.ComponentID, "MatchResult node's recorded producer doesn't match its MatchParent")
				}
				if g.nodes[n.MatchParent].Kind != MatchBranchingNode {
					return newNodeBuildError(ErrInvariantViolation, ni, n.ComponentID, "MatchResult node's MatchParent is not a MatchBranching node")
				}
			}
		}
	}

	lv, _, err := toLvlathGraph(g)
	if err != nil {
		return fmt.Errorf("callgraph: %w", err)
	}
	hasCycle, cycles, err := dfs.DetectCycles(lv)
	if err != nil {
		return fmt.Errorf("callgraph: %w", err)
	}
	if hasCycle {
		return newNodeBuildError(ErrCycleDetected, cg.Root, cg.Graph.Node(cg.Root).ComponentID, fmt.Sprintf("%v", cycles))
	}
	if _, err := dfs.TopologicalSort(lv); err != nil {
		return fmt.Errorf("callgraph: %w", err)
	}

	return nil
}

// ToLvlathGraph renders cg as a github.com/katalvlaran/lvlath/core.Graph,
// for independent validation (Validate) or for diagnostics rendering
// (pkg/diagnostics). Vertex ids are "n<index>".
func ToLvlathGraph(cg *CallGraph) (*core.Graph, map[NodeIndex]string, error) {
	return toLvlathGraph(cg.Graph)
}

func vertexID(idx NodeIndex) string {
	return fmt.Sprintf("n%d", int(idx))
}

func toLvlathGraph(g *RawCallGraph) (*core.Graph, map[NodeIndex]string, error) {
	lv := core.NewGraph(core.WithDirected(true))
	ids := make(map[NodeIndex]string, g.Len())

	for i := 0; i < g.Len(); i++ {
		idx := NodeIndex(i)
		id := vertexID(idx)
		ids[idx] = id
		if err := lv.AddVertex(id); err != nil {
			return nil, nil, err
		}
	}
	for i := 0; i < g.Len(); i++ {
		idx := NodeIndex(i)
		for _, consumer := range g.Outgoing(idx) {
			if _, err := lv.AddEdge(ids[idx], ids[consumer], 0); err != nil {
				return nil, nil, err
			}
		}
	}
	return lv, ids, nil
}
