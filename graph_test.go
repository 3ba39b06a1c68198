package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompilation is an in-memory Compilation for graph and derived-type
// tests. importable controls which modules ImportType accepts; nil means
// everything.
type fakeCompilation struct {
	defs       []*TypeDefinition
	importable map[string]bool
}

func (c *fakeCompilation) TypeDefinitions() []*TypeDefinition {
	return c.defs
}

func (c *fakeCompilation) ImportType(def *TypeDefinition) (*TypeDefinition, bool) {
	if c.importable != nil && !c.importable[def.Module] {
		return nil, false
	}
	return def, true
}

// typeDef builds a definition with resolved base refs.
func typeDef(module, name string, bases ...*TypeDefinition) *TypeDefinition {
	d := &TypeDefinition{Module: module, Name: name, Kind: "class"}
	for _, b := range bases {
		d.Bases = append(d.Bases, TypeRef{Name: b.Name, Def: b})
	}
	return d
}

func TestBuildTypeGraph_OneNodePerDefinition(t *testing.T) {
	base := typeDef("m1", "pkg.Base")
	mid := typeDef("m1", "pkg.Mid", base)
	leaf := typeDef("m2", "pkg.Leaf", mid)

	g := BuildTypeGraph([]Compilation{
		&fakeCompilation{defs: []*TypeDefinition{base, mid}},
		&fakeCompilation{defs: []*TypeDefinition{leaf}},
	})

	assert.Equal(t, 3, g.Len())
	for _, def := range []*TypeDefinition{base, mid, leaf} {
		node, ok := g.Node(def.Key())
		require.True(t, ok, "missing node for %s", def.Name)
		assert.Same(t, def, node.Definition())
	}
}

func TestBuildTypeGraph_DuplicateKeyLastWriteWins(t *testing.T) {
	// The same project loaded for two configurations declares the same key
	// twice; the later insertion wins and only one node exists.
	first := typeDef("m1", "pkg.Dup")
	second := typeDef("m1", "pkg.Dup")

	g := BuildTypeGraph([]Compilation{
		&fakeCompilation{defs: []*TypeDefinition{first}},
		&fakeCompilation{defs: []*TypeDefinition{second}},
	})

	assert.Equal(t, 1, g.Len())
	node, ok := g.Node(first.Key())
	require.True(t, ok)
	assert.Same(t, second, node.Definition())
}

func TestBuildTypeGraph_EdgesAreBidirectional(t *testing.T) {
	base := typeDef("m1", "pkg.Base")
	mid := typeDef("m1", "pkg.Mid", base)

	g := BuildTypeGraph([]Compilation{
		&fakeCompilation{defs: []*TypeDefinition{base, mid}},
	})

	baseNode, ok := g.Node(base.Key())
	require.True(t, ok)
	midNode, ok := g.Node(mid.Key())
	require.True(t, ok)

	require.Len(t, midNode.BaseTypes(), 1)
	assert.Equal(t, base.Key(), midNode.BaseTypes()[0].Key())
	require.Len(t, baseNode.DerivedTypes(), 1)
	assert.Equal(t, mid.Key(), baseNode.DerivedTypes()[0].Key())
}

func TestBuildTypeGraph_ForwardReferenceAcrossCompilations(t *testing.T) {
	// Derived is enumerated before the compilation declaring its base; the
	// two-pass build still wires the edge.
	base := typeDef("m2", "pkg.Base")
	derived := typeDef("m1", "pkg.Derived", base)

	g := BuildTypeGraph([]Compilation{
		&fakeCompilation{defs: []*TypeDefinition{derived}},
		&fakeCompilation{defs: []*TypeDefinition{base}},
	})

	node, ok := g.Node(base.Key())
	require.True(t, ok)
	require.Len(t, node.DerivedTypes(), 1)
	assert.Equal(t, derived.Key(), node.DerivedTypes()[0].Key())
}

func TestBuildTypeGraph_UnresolvedAndExternalBasesSkipped(t *testing.T) {
	external := typeDef("other", "ext.Base") // declared, never tracked
	d := typeDef("m1", "pkg.D", external)
	d.Bases = append(d.Bases, TypeRef{Name: "Open"}) // unresolvable, nil Def

	g := BuildTypeGraph([]Compilation{
		&fakeCompilation{defs: []*TypeDefinition{d}},
	})

	node, ok := g.Node(d.Key())
	require.True(t, ok)
	assert.Empty(t, node.BaseTypes())
	assert.Empty(t, node.DerivedTypes())
}

func TestBuildTypeGraph_CyclicHierarchy(t *testing.T) {
	// Mutually dependent modules can produce a cycle; builds and traversals
	// must terminate.
	a := typeDef("m1", "pkg.A")
	b := typeDef("m2", "pkg.B", a)
	a.Bases = append(a.Bases, TypeRef{Name: b.Name, Def: b})

	g := BuildTypeGraph([]Compilation{
		&fakeCompilation{defs: []*TypeDefinition{a}},
		&fakeCompilation{defs: []*TypeDefinition{b}},
	})

	nodeA, ok := g.Node(a.Key())
	require.True(t, ok)
	assert.Len(t, nodeA.BaseTypes(), 1)
	assert.Len(t, nodeA.DerivedTypes(), 1)

	// DerivesFrom over the same cycle terminates too.
	assert.True(t, a.DerivesFrom(b))
	assert.True(t, b.DerivesFrom(a))
}

func TestBuildTypeGraph_DuplicateEdgesSuppressed(t *testing.T) {
	base := typeDef("m1", "pkg.Base")
	d := typeDef("m1", "pkg.D", base, base)

	g := BuildTypeGraph([]Compilation{
		&fakeCompilation{defs: []*TypeDefinition{base, d}},
	})

	node, ok := g.Node(d.Key())
	require.True(t, ok)
	assert.Len(t, node.BaseTypes(), 1)
	baseNode, _ := g.Node(base.Key())
	assert.Len(t, baseNode.DerivedTypes(), 1)
}

func TestClearBaseTypes_DropsReciprocalEdges(t *testing.T) {
	base := typeDef("m1", "pkg.Base")
	mid := typeDef("m1", "pkg.Mid", base)
	leaf := typeDef("m1", "pkg.Leaf", mid)

	g := BuildTypeGraph([]Compilation{
		&fakeCompilation{defs: []*TypeDefinition{base, mid, leaf}},
	})

	midNode, ok := g.Node(mid.Key())
	require.True(t, ok)
	midNode.ClearBaseTypes()

	assert.Empty(t, midNode.BaseTypes())
	// The derived side is untouched.
	require.Len(t, midNode.DerivedTypes(), 1)
	assert.Equal(t, leaf.Key(), midNode.DerivedTypes()[0].Key())
	// The former base no longer points back.
	baseNode, _ := g.Node(base.Key())
	assert.Empty(t, baseNode.DerivedTypes())
}

func TestDerivesFrom_Reflexive(t *testing.T) {
	d := typeDef("m1", "pkg.D")
	assert.True(t, d.DerivesFrom(d))
	assert.False(t, d.DerivesFrom(nil))
}
