// Package diagnostics renders a built call graph for humans: an ASCII
// dependency tree, using the same github.com/m1gwings/treedrawer
// library an earlier graph-debug extension used to render executor
// dependency graphs, plus structured slog logging hooks a caller can
// attach around Build/GenerateHandler calls.
package diagnostics

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/m1gwings/treedrawer/tree"

	"github.com/wireup-dev/wireup/pkg/callgraph"
	"github.com/wireup-dev/wireup/pkg/component"
	"github.com/wireup-dev/wireup/pkg/lang"
)

// RenderTree draws cg as a horizontal ASCII tree rooted at its handler,
// each node labeled with its kind and, for Compute nodes, the callable
// it invokes.
func RenderTree(cg *callgraph.CallGraph, cdb *component.Database, pkgMap *lang.PackageMap) string {
	g := cg.Graph
	root := buildTree(cg.Root, g, cdb, pkgMap, make(map[callgraph.NodeIndex]bool))
	if root == nil {
		return "(empty graph)"
	}
	return root.String()
}

func buildTree(idx callgraph.NodeIndex, g *callgraph.RawCallGraph, cdb *component.Database, pkgMap *lang.PackageMap, visiting map[callgraph.NodeIndex]bool) *tree.Tree {
	if visiting[idx] {
		return tree.NewTree(tree.NodeString("(cycle)"))
	}
	visiting[idx] = true
	defer delete(visiting, idx)

	node := tree.NewTree(tree.NodeString(labelFor(idx, g, cdb, pkgMap)))

	children := g.Incoming(idx)
	sorted := make([]callgraph.NodeIndex, len(children))
	copy(sorted, children)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, c := range sorted {
		childTree := buildTree(c, g, cdb, pkgMap, visiting)
		graftChild(node, childTree)
	}
	return node
}

// graftChild attaches src as a child of dst. treedrawer's AddChild
// takes a node value rather than a *Tree, so a subtree built
// independently has to be re-parented value by value.
func graftChild(dst *tree.Tree, src *tree.Tree) {
	newChild := dst.AddChild(src.Val())
	for _, grandchild := range src.Children() {
		graftChild(newChild, grandchild)
	}
}

func labelFor(idx callgraph.NodeIndex, g *callgraph.RawCallGraph, cdb *component.Database, pkgMap *lang.PackageMap) string {
	n := g.Node(idx)
	switch n.Kind {
	case callgraph.InputParameterNode:
		return fmt.Sprintf("input %s", n.InputType.Render(pkgMap))
	case callgraph.MatchBranchingNode:
		return "match"
	default:
		hc := cdb.HydratedComponent(n.ComponentID)
		name := hc.Computation.Callable.QualifiedName(pkgMap)
		tag := ""
		if n.Invocations == callgraph.Multiple {
			tag = " (inlined)"
		}
		return name + tag
	}
}

// LogBuildFailure logs a call-graph construction failure at ERROR level
// with enough structure to locate the offending registration.
func LogBuildFailure(logger *slog.Logger, handlerName string, err error) {
	logger.Error("call graph construction failed",
		"handler", handlerName,
		"error", err.Error(),
	)
}

// LogCompiled logs a successful compile at INFO level, summarizing the
// graph's shape.
func LogCompiled(logger *slog.Logger, handlerName string, cg *callgraph.CallGraph) {
	var kinds [3]int
	for i := 0; i < cg.Graph.Len(); i++ {
		kinds[cg.Graph.Node(callgraph.NodeIndex(i)).Kind]++
	}
	logger.Info("handler compiled",
		"handler", handlerName,
		"nodes", cg.Graph.Len(),
		"compute_nodes", kinds[callgraph.ComputeNode],
		"input_nodes", kinds[callgraph.InputParameterNode],
		"match_nodes", kinds[callgraph.MatchBranchingNode],
		"inputs", strings.Join(inputNames(cg), ","),
	)
}

func inputNames(cg *callgraph.CallGraph) []string {
	types := cg.RequiredInputTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
