package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWorkspace wires fake projects for finder and derived-type tests.
type fakeWorkspace struct {
	projects []Project
	ready    bool
}

func (w *fakeWorkspace) Projects() []Project { return w.projects }
func (w *fakeWorkspace) Ready() bool         { return w.ready }

// fakeProject optionally declines to contribute content or a search.
type fakeProject struct {
	name    string
	content ProjectContent
}

func (p *fakeProject) Name() string            { return p.name }
func (p *fakeProject) Content() ProjectContent { return p.content }

// fakeContent pairs a compilation with an optional search factory.
type fakeContent struct {
	comp   Compilation
	search SymbolSearch // nil means the project declines
}

func (c *fakeContent) Compilation() Compilation                { return c.comp }
func (c *fakeContent) CreateSymbolSearch(*Entity) SymbolSearch { return c.search }

func compWorkspace(comps ...Compilation) *fakeWorkspace {
	w := &fakeWorkspace{ready: true}
	for _, comp := range comps {
		w.projects = append(w.projects, &fakeProject{
			name:    "p",
			content: &fakeContent{comp: comp},
		})
	}
	return w
}

func TestBuildDerivedTypesGraph_TrimsBaseSide(t *testing.T) {
	base := typeDef("m1", "pkg.Base")
	mid := typeDef("m1", "pkg.Mid", base)
	leaf := typeDef("m1", "pkg.Leaf", mid)

	q := NewDerivedTypeQuery(compWorkspace(
		&fakeCompilation{defs: []*TypeDefinition{base, mid, leaf}},
	))

	node := q.BuildDerivedTypesGraph(base)
	require.NotNil(t, node)
	assert.Empty(t, node.BaseTypes())
	require.Len(t, node.DerivedTypes(), 1)
	midNode := node.DerivedTypes()[0]
	assert.Equal(t, mid.Key(), midNode.Key())
	require.Len(t, midNode.DerivedTypes(), 1)
	assert.Equal(t, leaf.Key(), midNode.DerivedTypes()[0].Key())
}

func TestBuildDerivedTypesGraph_NoTrackedRelationships(t *testing.T) {
	// Nothing in the workspace declares or derives the type: the query
	// returns a detached node, never an error.
	lonely := typeDef("elsewhere", "pkg.Lonely")

	q := NewDerivedTypeQuery(compWorkspace(
		&fakeCompilation{defs: []*TypeDefinition{typeDef("m1", "pkg.Other")}},
	))

	node := q.BuildDerivedTypesGraph(lonely)
	require.NotNil(t, node)
	assert.Same(t, lonely, node.Definition())
	assert.Empty(t, node.BaseTypes())
	assert.Empty(t, node.DerivedTypes())
}

func TestFindDerivedTypes_DirectVersusTransitive(t *testing.T) {
	base := typeDef("m1", "pkg.Base")
	mid := typeDef("m1", "pkg.Mid", base)
	leaf := typeDef("m1", "pkg.Leaf", mid)

	q := NewDerivedTypeQuery(compWorkspace(
		&fakeCompilation{defs: []*TypeDefinition{base, mid, leaf}},
	))

	direct := q.FindDerivedTypes(base, false)
	require.Len(t, direct, 1)
	assert.Same(t, mid, direct[0])

	transitive := q.FindDerivedTypes(base, true)
	require.Len(t, transitive, 2)
	assert.ElementsMatch(t, []*TypeDefinition{mid, leaf}, transitive)
}

func TestFindDerivedTypes_ImportFailureSkipsCompilation(t *testing.T) {
	base := typeDef("m1", "pkg.Base")
	near := typeDef("m2", "pkg.Near", base)
	far := typeDef("m3", "pkg.Far", base)

	q := NewDerivedTypeQuery(compWorkspace(
		&fakeCompilation{defs: []*TypeDefinition{near}},
		&fakeCompilation{
			defs:       []*TypeDefinition{far},
			importable: map[string]bool{}, // base not reachable here
		},
	))

	derived := q.FindDerivedTypes(base, false)
	require.Len(t, derived, 1)
	assert.Same(t, near, derived[0])
}

func TestFindDerivedTypes_EmptyWorkspace(t *testing.T) {
	q := NewDerivedTypeQuery(&fakeWorkspace{ready: true})
	assert.Empty(t, q.FindDerivedTypes(typeDef("m", "pkg.T"), true))
}
