package callgraph

// FindTerminalDescendant returns a node reachable from start along
// Outgoing edges that itself has no Outgoing edges. In a rooted DAG,
// start itself is terminal unless something still consumes it.
func (g *RawCallGraph) FindTerminalDescendant(start NodeIndex) NodeIndex {
	visited := make(map[NodeIndex]bool)
	current := start
	for {
		if visited[current] {
			// Defensive: a DAG never revisits a node on a single
			// descending walk; this only triggers on a builder bug.
			return current
		}
		visited[current] = true
		outs := g.Outgoing(current)
		if len(outs) == 0 {
			return current
		}
		current = outs[0]
	}
}

// FindMatchBranchingAncestor walks the ancestors of start (via Incoming
// edges) in post-order, deepest ancestor first, and returns the first
// MatchBranching node encountered that isn't in ignore. start itself is
// never returned. Returns (-1, false) if no such ancestor exists.
func (g *RawCallGraph) FindMatchBranchingAncestor(start NodeIndex, ignore map[NodeIndex]bool) (NodeIndex, bool) {
	visited := make(map[NodeIndex]bool)
	var found NodeIndex = -1
	var ok bool

	var visit func(n NodeIndex)
	visit = func(n NodeIndex) {
		if ok || visited[n] {
			return
		}
		visited[n] = true
		for _, anc := range g.Incoming(n) {
			if ignore[anc] {
				continue
			}
			visit(anc)
			if ok {
				return
			}
		}
		if n != start && !ignore[n] && g.nodes[n].Kind == MatchBranchingNode {
			found = n
			ok = true
		}
	}
	visit(start)
	return found, ok
}
