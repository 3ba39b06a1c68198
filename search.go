package lattice

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jward/lattice/internal/contentcache"
	"github.com/jward/lattice/internal/progress"
)

// SearchArgs carries the shared collaborators every search unit receives:
// the progress scope sized for the unit and the workspace-wide file-content
// cache. The cache is safe for concurrent readers, so parallel children of
// a composite may share it freely.
type SearchArgs struct {
	Monitor *progress.Monitor
	Files   *contentcache.Cache
}

// SymbolSearch is one estimated, executable piece of reference-search work,
// contributed by a single project.
//
// WorkAmount is a non-negative, side-effect-free cost estimate used for
// proportional progress scheduling; it must be stable for the object's
// lifetime. FindReferences performs the search and returns only once all
// reporting through emit is complete — no background work may outlive the
// call. emit may be invoked from multiple goroutines.
type SymbolSearch interface {
	WorkAmount() int
	FindReferences(ctx context.Context, args *SearchArgs, emit func(*SearchedFile)) error
}

// CompositeSearch aggregates search units into one logical unit. Nil inputs
// are dropped. Zero remaining units yields nil; exactly one yields that unit
// directly, without wrapping. Otherwise the result reports the summed work
// amount and runs all children concurrently, returning after every child has
// finished. If any child fails the composite fails, but results already
// delivered through emit stand.
func CompositeSearch(units ...SymbolSearch) SymbolSearch {
	kept := make([]SymbolSearch, 0, len(units))
	for _, u := range units {
		if u != nil {
			kept = append(kept, u)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}

	work := 0
	for _, u := range kept {
		work += u.WorkAmount()
	}
	return &compositeSearch{units: kept, work: work}
}

type compositeSearch struct {
	units []SymbolSearch
	work  int
}

func (c *compositeSearch) WorkAmount() int {
	return c.work
}

func (c *compositeSearch) FindReferences(ctx context.Context, args *SearchArgs, emit func(*SearchedFile)) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, u := range c.units {
		u := u
		g.Go(func() error {
			return u.FindReferences(ctx, args, emit)
		})
	}
	return g.Wait()
}
