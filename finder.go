package lattice

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jward/lattice/internal/contentcache"
	"github.com/jward/lattice/internal/progress"
)

// Usage errors: a missing required argument fails synchronously, before any
// search work starts.
var (
	ErrNilEntity   = errors.New("lattice: entity must not be nil")
	ErrNilMonitor  = errors.New("lattice: progress monitor must not be nil")
	ErrNilCallback = errors.New("lattice: result callback must not be nil")
	ErrNilVariable = errors.New("lattice: variable must not be nil")
	ErrNilSearcher = errors.New("lattice: local searcher must not be nil")
)

// loadingNotice is surfaced through the notifier when a search is requested
// while projects are still loading.
const loadingNotice = "Projects are still loading; try again once loading has finished."

// Finder orchestrates reference searches across every project of a
// workspace.
type Finder struct {
	ws     Workspace
	files  *contentcache.Cache
	notify func(message string)
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithNotifier sets the function used to surface blocking user notices,
// such as "projects are still loading". The default discards them.
func WithNotifier(fn func(message string)) FinderOption {
	return func(f *Finder) {
		f.notify = fn
	}
}

// WithContentCache substitutes the shared file-content cache handed to
// every search unit. Useful when several Finders should share one cache.
func WithContentCache(c *contentcache.Cache) FinderOption {
	return func(f *Finder) {
		f.files = c
	}
}

// NewFinder creates a Finder over the given workspace.
func NewFinder(ws Workspace, opts ...FinderOption) *Finder {
	f := &Finder{
		ws:     ws,
		files:  contentcache.NewCache(),
		notify: func(string) {},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindReferences finds every reference to entity across the workspace and
// delivers each matched file through onResult.
//
// For each project whose content can reference the entity, one SymbolSearch
// is obtained (projects may decline by returning nil). Units run strictly
// one at a time; a unit may parallelize internally, so onResult must be safe
// to call from worker goroutines. The monitor's fraction advances from 0 to
// 1 proportionally to each unit's work amount, and only after the unit has
// fully completed.
//
// Cancelling ctx stops dispatching new units and returns ctx.Err(); results
// already delivered stand. If the workspace is still loading, a blocking
// notice is surfaced through the notifier and the call returns nil without
// doing any work.
func (f *Finder) FindReferences(ctx context.Context, entity *Entity, monitor *progress.Monitor, onResult func(*SearchedFile)) error {
	switch {
	case entity == nil:
		return ErrNilEntity
	case monitor == nil:
		return ErrNilMonitor
	case onResult == nil:
		return ErrNilCallback
	}

	if !f.ws.Ready() {
		f.notify(loadingNotice)
		return nil
	}

	searches, total := f.collectSearches(entity)

	completed := 0
	for _, search := range searches {
		if err := ctx.Err(); err != nil {
			return err
		}

		work := search.WorkAmount()
		child := monitor.Child(float64(work) / float64(total))
		args := &SearchArgs{Monitor: child, Files: f.files}

		if err := search.FindReferences(ctx, args, onResult); err != nil {
			return err
		}

		completed += work
		monitor.SetFraction(float64(completed) / float64(total))
	}

	monitor.SetFraction(1)
	return nil
}

// collectSearches asks every project with searchable content for a
// SymbolSearch and sums the work estimates. The total is floored at 1 so
// progress fractions stay defined when every project declines.
func (f *Finder) collectSearches(entity *Entity) ([]SymbolSearch, int) {
	var searches []SymbolSearch
	total := 0
	for _, p := range f.ws.Projects() {
		content := p.Content()
		if content == nil {
			continue
		}
		search := content.CreateSymbolSearch(entity)
		if search == nil {
			continue
		}
		searches = append(searches, search)
		total += search.WorkAmount()
	}
	if total < 1 {
		total = 1
	}
	return searches, total
}

// FindLocalReferences finds references to a variable within its declaring
// file by delegating to a single language-level search. The delegate may
// report occurrences from multiple goroutines; collection is serialized
// here. The result is exactly one SearchedFile with references sorted by
// position, regardless of delivery interleaving.
func (f *Finder) FindLocalReferences(ctx context.Context, v *LocalVariable, searcher LocalSearcher) (*SearchedFile, error) {
	switch {
	case v == nil:
		return nil, ErrNilVariable
	case searcher == nil:
		return nil, ErrNilSearcher
	}

	var (
		mu   sync.Mutex
		refs []Reference
	)
	err := searcher.FindLocalReferences(ctx, v, func(ref Reference) {
		mu.Lock()
		refs = append(refs, ref)
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].StartLine != refs[j].StartLine {
			return refs[i].StartLine < refs[j].StartLine
		}
		return refs[i].StartCol < refs[j].StartCol
	})
	return &SearchedFile{Path: v.File, References: refs}, nil
}
