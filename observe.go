package lattice

import (
	"context"

	"github.com/jward/lattice/internal/progress"
)

// Stream exposes FindReferences as a push-style event sequence: one value
// per matched file on the results channel, which closes when the underlying
// operation finishes or fails. The error channel delivers at most one value
// (nil on success) after the results channel is closed.
//
// Usage errors surface on the error channel rather than panicking, so both
// channels behave uniformly for callers ranging over the results.
func (f *Finder) Stream(ctx context.Context, entity *Entity, monitor *progress.Monitor) (<-chan *SearchedFile, <-chan error) {
	results := make(chan *SearchedFile)
	errc := make(chan error, 1)

	go func() {
		err := f.FindReferences(ctx, entity, monitor, func(sf *SearchedFile) {
			select {
			case results <- sf:
			case <-ctx.Done():
			}
		})
		close(results)
		errc <- err
	}()

	return results, errc
}
