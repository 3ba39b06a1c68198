package lattice

// DerivedTypeQuery answers "find derived types" over all loaded
// compilations. Two retrieval modes share the graph builder: the graph mode
// returns a connected node for recursive rendering of a hierarchy, the flat
// mode returns a plain listing with a direct-only filter.
type DerivedTypeQuery struct {
	ws Workspace
}

// NewDerivedTypeQuery creates a query over the given workspace.
func NewDerivedTypeQuery(ws Workspace) *DerivedTypeQuery {
	return &DerivedTypeQuery{ws: ws}
}

// BuildDerivedTypesGraph builds the inheritance graph across all loaded
// compilations and returns base's node trimmed to its derived side: the
// node's base-type edges are cleared so the unused half of the graph
// becomes unreachable. A base with no tracked relationships yields a fresh
// detached node with empty edge sets, never a failure.
func (q *DerivedTypeQuery) BuildDerivedTypesGraph(base *TypeDefinition) *TypeGraphNode {
	g := BuildTypeGraph(q.compilations())
	node, ok := g.Node(base.Key())
	if !ok {
		return detachedNode(base)
	}
	node.ClearBaseTypes()
	return node
}

// FindDerivedTypes scans every loaded compilation for types deriving from
// base, without building a graph. Direct mode (transitive=false) compares
// only immediate declared base types; transitive mode accepts any type in
// the reflexive-transitive derivation closure, excluding base itself.
//
// The base type is imported into each compilation first; a compilation with
// no reachable reference to it is skipped entirely. No candidate projects
// and no matches are both empty results, not errors.
func (q *DerivedTypeQuery) FindDerivedTypes(base *TypeDefinition, transitive bool) []*TypeDefinition {
	var derived []*TypeDefinition
	for _, comp := range q.compilations() {
		imported, ok := comp.ImportType(base)
		if !ok {
			continue
		}
		key := imported.Key()
		for _, def := range comp.TypeDefinitions() {
			if def.Key() == key {
				continue
			}
			if transitive {
				if def.DerivesFrom(imported) {
					derived = append(derived, def)
				}
				continue
			}
			for _, ref := range def.Bases {
				if ref.Def != nil && ref.Def.Key() == key {
					derived = append(derived, def)
					break
				}
			}
		}
	}
	return derived
}

// compilations returns the compilation of every project that contributes
// searchable content.
func (q *DerivedTypeQuery) compilations() []Compilation {
	var comps []Compilation
	for _, p := range q.ws.Projects() {
		content := p.Content()
		if content == nil {
			continue
		}
		comps = append(comps, content.Compilation())
	}
	return comps
}
