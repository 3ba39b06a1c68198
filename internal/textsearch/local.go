package textsearch

import (
	"context"

	lattice "github.com/jward/lattice"
	"github.com/jward/lattice/internal/contentcache"
)

// LocalSearch implements lattice.LocalSearcher with the same identifier
// matching as ProjectSearch, restricted to the variable's declaring scope.
type LocalSearch struct {
	files *contentcache.Cache
}

// NewLocalSearch creates a local-variable searcher reading through the
// given cache.
func NewLocalSearch(files *contentcache.Cache) *LocalSearch {
	return &LocalSearch{files: files}
}

// FindLocalReferences reports every occurrence of v inside its declaring
// scope. A zero scope means the whole file.
func (l *LocalSearch) FindLocalReferences(ctx context.Context, v *lattice.LocalVariable, report func(lattice.Reference)) error {
	refs, err := matchFile(ctx, v.File, v.Name, l.files.Get)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if inScope(ref.Location, v.Scope) {
			report(ref)
		}
	}
	return nil
}

// inScope reports whether loc falls within scope. A zero scope matches
// everything in the file.
func inScope(loc, scope lattice.Location) bool {
	if scope.StartLine == 0 && scope.EndLine == 0 {
		return true
	}
	if loc.StartLine < scope.StartLine || loc.StartLine > scope.EndLine {
		return false
	}
	if loc.StartLine == scope.StartLine && loc.StartCol < scope.StartCol {
		return false
	}
	if loc.StartLine == scope.EndLine && scope.EndCol > 0 && loc.StartCol > scope.EndCol {
		return false
	}
	return true
}
