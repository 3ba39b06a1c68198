package lattice

import "context"

// Workspace enumerates the currently loaded projects. Ready reports whether
// background project loading has finished; the Finder refuses to start a
// search while it is false.
type Workspace interface {
	Projects() []Project
	Ready() bool
}

// Project is one loaded project. Content returns nil when the project
// contributes nothing searchable and must be skipped.
type Project interface {
	Name() string
	Content() ProjectContent
}

// ProjectContent is the searchable side of a project.
//
// CreateSymbolSearch returns nil when the project cannot reference the
// entity at all; a nil search is not an error, the project is simply left
// out of the work estimate.
type ProjectContent interface {
	Compilation() Compilation
	CreateSymbolSearch(entity *Entity) SymbolSearch
}

// Compilation is one compilation snapshot: the full set of type definitions
// it declares, plus cross-compilation type import.
//
// ImportType resolves a definition declared elsewhere to this compilation's
// view of it. ok is false when the definition is not reachable from this
// compilation; callers treat that as "skip this compilation", never as an
// error.
type Compilation interface {
	TypeDefinitions() []*TypeDefinition
	ImportType(def *TypeDefinition) (imported *TypeDefinition, ok bool)
}

// LocalSearcher locates references to a variable within its declaring file.
// The report callback may be invoked from multiple goroutines.
type LocalSearcher interface {
	FindLocalReferences(ctx context.Context, v *LocalVariable, report func(Reference)) error
}

// TypeKey uniquely identifies a type definition across all loaded
// compilations: defining module plus fully qualified name. Comparable;
// usable as a map key.
type TypeKey struct {
	Module string
	Name   string
}

// TypeDefinition is one declared type. Bases holds the direct declared base
// types; a base that could not be resolved to a defining type has a nil Def
// and is ignored by graph construction.
type TypeDefinition struct {
	Module string
	Name   string // fully qualified
	Kind   string // "struct", "class", "interface", ...
	Loc    Location
	Bases  []TypeRef
}

// TypeRef is a declared base-type reference. Def is nil when the reference
// is open or external and could not be resolved.
type TypeRef struct {
	Name string
	Def  *TypeDefinition
}

// Key returns the definition's identity across compilations.
func (d *TypeDefinition) Key() TypeKey {
	return TypeKey{Module: d.Module, Name: d.Name}
}

// DerivesFrom reports whether d is base or derives from it, directly or
// transitively. The relation is reflexive: d.DerivesFrom(d) is true.
// Tolerates cyclic hierarchies.
func (d *TypeDefinition) DerivesFrom(base *TypeDefinition) bool {
	if base == nil {
		return false
	}
	seen := make(map[TypeKey]bool)
	return derivesFrom(d, base.Key(), seen)
}

func derivesFrom(d *TypeDefinition, key TypeKey, seen map[TypeKey]bool) bool {
	if d.Key() == key {
		return true
	}
	if seen[d.Key()] {
		return false
	}
	seen[d.Key()] = true
	for _, ref := range d.Bases {
		if ref.Def == nil {
			continue
		}
		if derivesFrom(ref.Def, key, seen) {
			return true
		}
	}
	return false
}
