package lattice

// TypeGraph is the inheritance graph over a set of compilations. Nodes live
// in an index-based arena (edges are index lists) so cyclic hierarchies
// carry no ownership cycles; lookup is by TypeKey.
//
// A graph is built fresh per call to BuildTypeGraph and is not safe for
// concurrent mutation.
type TypeGraph struct {
	nodes []graphNode
	index map[TypeKey]int
}

type graphNode struct {
	def     *TypeDefinition
	bases   []int
	derived []int
}

// TypeGraphNode is a handle on one node of a TypeGraph.
type TypeGraphNode struct {
	g  *TypeGraph
	id int
}

// BuildTypeGraph builds the full inheritance graph for the given
// compilations in two passes: first one node per declared type definition
// (last write wins on TypeKey collision, e.g. the same project loaded for
// two target configurations), then bidirectional edges for every direct
// base-type relationship that resolves to a tracked node. Base types
// declared outside the given compilations are skipped silently.
//
// The passes cannot be fused: a definition's base type may be declared in a
// compilation visited later.
func BuildTypeGraph(comps []Compilation) *TypeGraph {
	g := &TypeGraph{index: make(map[TypeKey]int)}

	for _, comp := range comps {
		for _, def := range comp.TypeDefinitions() {
			g.insert(def)
		}
	}

	for _, comp := range comps {
		for _, def := range comp.TypeDefinitions() {
			id, ok := g.index[def.Key()]
			if !ok {
				continue
			}
			for _, ref := range def.Bases {
				if ref.Def == nil {
					continue // open or external base type
				}
				baseID, ok := g.index[ref.Def.Key()]
				if !ok {
					continue // base declared outside the tracked compilations
				}
				g.addEdge(id, baseID)
			}
		}
	}

	return g
}

// insert creates a node for def, overwriting any existing entry for the
// same key.
func (g *TypeGraph) insert(def *TypeDefinition) {
	if id, ok := g.index[def.Key()]; ok {
		g.nodes[id].def = def
		return
	}
	g.nodes = append(g.nodes, graphNode{def: def})
	g.index[def.Key()] = len(g.nodes) - 1
}

// addEdge records id -> base and the reciprocal base -> derived edge.
// Duplicate edges are suppressed.
func (g *TypeGraph) addEdge(id, baseID int) {
	if !containsID(g.nodes[id].bases, baseID) {
		g.nodes[id].bases = append(g.nodes[id].bases, baseID)
	}
	if !containsID(g.nodes[baseID].derived, id) {
		g.nodes[baseID].derived = append(g.nodes[baseID].derived, id)
	}
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Node returns the node for key, or (nil, false) when no definition with
// that key was tracked.
func (g *TypeGraph) Node(key TypeKey) (*TypeGraphNode, bool) {
	id, ok := g.index[key]
	if !ok {
		return nil, false
	}
	return &TypeGraphNode{g: g, id: id}, true
}

// Len returns the number of nodes in the graph.
func (g *TypeGraph) Len() int {
	return len(g.nodes)
}

// detachedNode returns a single-node graph for def, used when the requested
// type has no tracked relationships.
func detachedNode(def *TypeDefinition) *TypeGraphNode {
	g := &TypeGraph{index: make(map[TypeKey]int)}
	g.insert(def)
	return &TypeGraphNode{g: g, id: 0}
}

// Definition returns the type definition the node wraps.
func (n *TypeGraphNode) Definition() *TypeDefinition {
	return n.g.nodes[n.id].def
}

// BaseTypes returns the node's direct base types, in insertion order.
func (n *TypeGraphNode) BaseTypes() []*TypeGraphNode {
	return n.g.handles(n.g.nodes[n.id].bases)
}

// DerivedTypes returns the node's direct derived types, in insertion order.
func (n *TypeGraphNode) DerivedTypes() []*TypeGraphNode {
	return n.g.handles(n.g.nodes[n.id].derived)
}

// ClearBaseTypes drops the node's base-type edges, including the reciprocal
// derived edges on the former bases. Callers that only want the derived
// subgraph use this to let the discarded half become unreachable.
func (n *TypeGraphNode) ClearBaseTypes() {
	for _, baseID := range n.g.nodes[n.id].bases {
		n.g.nodes[baseID].derived = removeID(n.g.nodes[baseID].derived, n.id)
	}
	n.g.nodes[n.id].bases = nil
}

// Key returns the TypeKey of the wrapped definition.
func (n *TypeGraphNode) Key() TypeKey {
	return n.Definition().Key()
}

func (g *TypeGraph) handles(ids []int) []*TypeGraphNode {
	out := make([]*TypeGraphNode, len(ids))
	for i, id := range ids {
		out[i] = &TypeGraphNode{g: g, id: id}
	}
	return out
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
