// Package codegen turns a built call graph into a Go function: a
// post-order walk of the graph that binds Single-invocation values to
// variables, inlines Multiple (transient) ones at every use site, and
// lowers each MatchBranching into an if/else over a two-value return.
package codegen

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/wireup-dev/wireup/pkg/callgraph"
	"github.com/wireup-dev/wireup/pkg/component"
	"github.com/wireup-dev/wireup/pkg/lang"
)

// Param is one parameter of the generated handler function.
type Param struct {
	Name string
	Type lang.ResolvedType
}

// Handler is a fully rendered handler function: ready-to-write Go
// source plus the metadata a caller needs to wire it into a route
// table (its required external inputs, in declared parameter order).
type Handler struct {
	Name       string
	Params     []Param
	ReturnType lang.ResolvedType
	Source     string
}

type genCtx struct {
	cdb    *component.Database
	pkgMap *lang.PackageMap
}

// GenerateHandler renders cg as a complete Go function named name.
func GenerateHandler(name string, cg *callgraph.CallGraph, cdb *component.Database, pkgMap *lang.PackageMap) (*Handler, error) {
	if err := callgraph.Validate(cg); err != nil {
		return nil, fmt.Errorf("codegen: %w", err)
	}

	ctx := &genCtx{cdb: cdb, pkgMap: pkgMap}
	g := cg.Graph

	varGen := NewVariableNameGenerator()
	reqTypes := cg.RequiredInputTypes()
	paramNodes := g.InputParameterNodes()

	blocks := make(map[callgraph.NodeIndex]Fragment, g.Len())
	visited := make(map[callgraph.NodeIndex]bool, g.Len())
	params := make([]Param, len(reqTypes))
	for i, idx := range paramNodes {
		pname := varGen.Generate()
		blocks[idx] = Fragment{Text: pname}
		visited[idx] = true
		params[i] = Param{Name: pname, Type: reqTypes[i]}
	}

	body, err := generateScope(cg.Root, g, visited, blocks, varGen, ctx)
	if err != nil {
		return nil, err
	}

	rootHC := cdb.HydratedComponent(rootComponentID(g, cg.Root))
	returnType := rootHC.OutputType()

	paramsText := make([]string, len(params))
	for i, p := range params {
		paramsText[i] = fmt.Sprintf("%s %s", p.Name, p.Type.Render(pkgMap))
	}

	src := fmt.Sprintf("func %s(%s) %s {\n%s\n}\n", name, strings.Join(paramsText, ", "), returnType.Render(pkgMap), body)
	formatted, err := format.Source([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("codegen: rendering %s: %w", name, err)
	}

	return &Handler{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Source:     string(formatted),
	}, nil
}

func rootComponentID(g *callgraph.RawCallGraph, root callgraph.NodeIndex) component.ID {
	return g.Node(root).ComponentID
}

// generateScope renders the statement sequence that produces seed's
// value and returns it: every not-yet-visited ancestor of seed is
// emitted first, then seed's own traversal-start node, either an
// ordinary tail expression or a MatchBranching whose two arms recurse
// into generateScope over cloned traversal state.
func generateScope(seed callgraph.NodeIndex, g *callgraph.RawCallGraph, visited map[callgraph.NodeIndex]bool, blocks map[callgraph.NodeIndex]Fragment, varGen *VariableNameGenerator, ctx *genCtx) (string, error) {
	terminal := g.FindTerminalDescendant(seed)
	travStart, hasBranch := g.FindMatchBranchingAncestor(terminal, visited)
	if !hasBranch {
		travStart = terminal
	}

	var bindings []string
	if err := emitAncestors(travStart, g, visited, blocks, varGen, &bindings, ctx); err != nil {
		return "", err
	}

	node := g.Node(travStart)
	if node.Kind == callgraph.MatchBranchingNode {
		visited[travStart] = true
		tail, err := emitMatchBranching(travStart, g, visited, blocks, varGen, ctx)
		if err != nil {
			return "", err
		}
		return joinBody(bindings, tail), nil
	}

	visited[travStart] = true
	if err := emitNode(travStart, g, blocks, varGen, &bindings, ctx, true); err != nil {
		return "", err
	}
	return joinBody(bindings, "return "+blocks[travStart].Text), nil
}

// emitAncestors walks n's Incoming ancestors in post-order (deepest
// first), emitting each one not already visited, and appending any
// binding statement it produces to *bindings. n itself is never
// emitted here; the caller handles it as the scope's tail.
func emitAncestors(n callgraph.NodeIndex, g *callgraph.RawCallGraph, visited map[callgraph.NodeIndex]bool, blocks map[callgraph.NodeIndex]Fragment, varGen *VariableNameGenerator, bindings *[]string, ctx *genCtx) error {
	for _, anc := range g.Incoming(n) {
		if visited[anc] {
			continue
		}
		if g.Node(anc).Kind == callgraph.MatchBranchingNode {
			return fmt.Errorf("codegen: match branching node n%d reached outside arm expansion", int(anc))
		}
		if err := emitAncestors(anc, g, visited, blocks, varGen, bindings, ctx); err != nil {
			return err
		}
		visited[anc] = true
		if err := emitNode(anc, g, blocks, varGen, bindings, ctx, false); err != nil {
			return err
		}
	}
	return nil
}

// isBranchSource reports whether n's sole consumer is a MatchBranching
// node, i.e. n is the fallible call a branch splits on. Such a node's
// rendered call expression is never bound to its own variable: the
// branch binds it directly to an (ok, err) pair.
func isBranchSource(n callgraph.NodeIndex, g *callgraph.RawCallGraph) bool {
	outs := g.Outgoing(n)
	return len(outs) == 1 && g.Node(outs[0]).Kind == callgraph.MatchBranchingNode
}

func emitNode(n callgraph.NodeIndex, g *callgraph.RawCallGraph, blocks map[callgraph.NodeIndex]Fragment, varGen *VariableNameGenerator, bindings *[]string, ctx *genCtx, isTravStart bool) error {
	node := g.Node(n)

	switch node.Kind {
	case callgraph.InputParameterNode:
		// Parameter names were pre-bound before the walk began.
		if _, ok := blocks[n]; !ok {
			return fmt.Errorf("codegen: input parameter n%d has no bound name", int(n))
		}
		return nil

	case callgraph.MatchBranchingNode:
		return fmt.Errorf("codegen: match branching node n%d emitted as a plain node", int(n))

	default: // ComputeNode
		if node.MatchParent != -1 {
			// MatchResult projections are pre-seeded by emitMatchBranching
			// when it recurses into each arm; reaching here means the
			// builder produced a projection with no branching parent walk.
			if _, ok := blocks[n]; !ok {
				return fmt.Errorf("codegen: match projection n%d was never bound by its branch", int(n))
			}
			return nil
		}

		callExpr, err := renderCall(node, g, blocks, ctx)
		if err != nil {
			return err
		}

		if isTravStart || node.Invocations == callgraph.Multiple || isBranchSource(n, g) {
			blocks[n] = Fragment{Text: callExpr}
			return nil
		}

		name := varGen.Generate()
		*bindings = append(*bindings, fmt.Sprintf("%s := %s", name, callExpr))
		blocks[n] = Fragment{Text: name}
		return nil
	}
}

// emitMatchBranching renders a fallible call's binding and its two
// arms. Each arm gets its own cloned visited set, fragment table and
// variable generator: a sibling arm's bindings must never leak across
// into the other (only one arm executes at runtime), while ancestor
// bindings made before the branch are shared by both.
func emitMatchBranching(branchIdx callgraph.NodeIndex, g *callgraph.RawCallGraph, visited map[callgraph.NodeIndex]bool, blocks map[callgraph.NodeIndex]Fragment, varGen *VariableNameGenerator, ctx *genCtx) (string, error) {
	node := g.Node(branchIdx)

	sourceFrag, ok := blocks[node.Source]
	if !ok {
		return "", fmt.Errorf("codegen: match branching n%d source n%d not yet bound", int(branchIdx), int(node.Source))
	}

	okName := varGen.Generate()
	errName := varGen.Generate()
	bindStmt := fmt.Sprintf("%s, %s := %s", okName, errName, sourceFrag.Text)

	okVisited, okBlocks, okVarGen := cloneState(visited, blocks, varGen)
	okVisited[node.OkBranch] = true
	okBlocks[node.OkBranch] = Fragment{Text: okName}
	okBody, err := generateScope(node.OkBranch, g, okVisited, okBlocks, okVarGen, ctx)
	if err != nil {
		return "", err
	}

	errVisited, errBlocks, errVarGen := cloneState(visited, blocks, varGen)
	errVisited[node.ErrBranch] = true
	errBlocks[node.ErrBranch] = Fragment{Text: errName}
	errBody, err := generateScope(node.ErrBranch, g, errVisited, errBlocks, errVarGen, ctx)
	if err != nil {
		return "", err
	}

	// The Ok arm always renders first, regardless of discovery order.
	return fmt.Sprintf("%s\nif %s == nil {\n%s\n} else {\n%s\n}", bindStmt, errName, okBody, errBody), nil
}

func cloneState(visited map[callgraph.NodeIndex]bool, blocks map[callgraph.NodeIndex]Fragment, varGen *VariableNameGenerator) (map[callgraph.NodeIndex]bool, map[callgraph.NodeIndex]Fragment, *VariableNameGenerator) {
	v := make(map[callgraph.NodeIndex]bool, len(visited))
	for k, val := range visited {
		v[k] = val
	}
	b := make(map[callgraph.NodeIndex]Fragment, len(blocks))
	for k, val := range blocks {
		b[k] = val
	}
	return v, b, varGen.Clone()
}

// renderCall renders the call expression for a Compute node. Async
// callables render exactly like sync ones: Go has no await syntax, and
// a plain function call already blocks until the callee returns.
func renderCall(node callgraph.Node, g *callgraph.RawCallGraph, blocks map[callgraph.NodeIndex]Fragment, ctx *genCtx) (string, error) {
	hc := ctx.cdb.HydratedComponent(node.ComponentID)
	callable := hc.Computation.Callable

	args := make([]string, len(node.Inputs))
	for i, edge := range node.Inputs {
		frag, ok := blocks[edge.From]
		if !ok {
			return "", fmt.Errorf("codegen: argument n%d not yet bound", int(edge.From))
		}
		args[i] = renderArg(frag.Text, edge.Metadata)
	}

	return fmt.Sprintf("%s(%s)", callable.QualifiedName(ctx.pkgMap), strings.Join(args, ", ")), nil
}

func renderArg(text string, meta callgraph.EdgeMetadata) string {
	if meta == callgraph.ByReference {
		return "&" + text
	}
	return text
}

func joinBody(bindings []string, tail string) string {
	all := append(append([]string{}, bindings...), tail)
	return strings.Join(all, "\n")
}
