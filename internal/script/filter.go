// Package script evaluates user-supplied Risor predicates against matched
// occurrences, letting callers refine a reference search beyond exact name
// matching without recompiling.
package script

import (
	"context"
	"fmt"

	"github.com/risor-io/risor"

	lattice "github.com/jward/lattice"
)

// Filter is a compiled-on-use Risor predicate. The script sees the globals
// file, line, col, and context for each occurrence and its final expression
// decides whether the occurrence is kept.
//
//	lattice refs Handler --filter 'strings.has_suffix(file, "_test.go") == false'
type Filter struct {
	source string
}

// NewFilter wraps a Risor source string. An empty source yields a nil
// Filter, which keeps everything.
func NewFilter(source string) *Filter {
	if source == "" {
		return nil
	}
	return &Filter{source: source}
}

// Allow evaluates the predicate for one occurrence. A nil Filter allows
// everything.
func (f *Filter) Allow(ctx context.Context, ref lattice.Reference) (bool, error) {
	if f == nil {
		return true, nil
	}
	result, err := risor.Eval(ctx, f.source,
		risor.WithGlobal("file", ref.File),
		risor.WithGlobal("line", ref.StartLine),
		risor.WithGlobal("col", ref.StartCol),
		risor.WithGlobal("context", ref.Context),
	)
	if err != nil {
		return false, fmt.Errorf("script: filter: %w", err)
	}
	return result.IsTruthy(), nil
}
