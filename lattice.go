// Package lattice finds references to symbols across a multi-project
// workspace and answers type-hierarchy queries over all loaded compilations.
//
// # Reference search
//
// A [Finder] orchestrates one [SymbolSearch] per candidate project. Each
// project contributes an estimated work amount; the Finder runs the units
// one at a time, sizes a child progress scope per unit so the overall
// fraction stays proportional, and streams every matched file to the result
// callback. Cancellation is cooperative through the context: it is checked
// before each unit starts and observed inside long-running units.
//
//	f := lattice.NewFinder(ws)
//	err := f.FindReferences(ctx, entity, monitor, func(sf *lattice.SearchedFile) {
//		// one callback per file containing at least one match,
//		// possibly from a worker goroutine
//	})
//
// # Type hierarchy
//
// [BuildTypeGraph] turns the type definitions of a set of compilations into
// a bidirectionally edged, possibly cyclic graph keyed by [TypeKey].
// [DerivedTypeQuery] wraps it for "find derived types" lookups, either as a
// connected [TypeGraphNode] for recursive rendering or as a flat listing
// with a direct-only filter.
//
// # Collaborators
//
// The package has no file-format or network surface of its own. Projects,
// compilations, and per-language searches reach it through the interfaces in
// workspace.go; internal/store provides a SQLite-backed implementation and
// internal/textsearch a tree-sitter one, both wired up by cmd/lattice.
package lattice
