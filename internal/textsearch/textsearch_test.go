package textsearch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lattice "github.com/jward/lattice"
	"github.com/jward/lattice/internal/contentcache"
	"github.com/jward/lattice/internal/progress"
	"github.com/jward/lattice/internal/script"
)

func writeSource(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func searchArgs() *lattice.SearchArgs {
	return &lattice.SearchArgs{
		Monitor: progress.NewMonitor(),
		Files:   contentcache.NewCache(),
	}
}

const goSource = `package main

func main() {
	count := 0
	count++
	total := count
	_ = total
}
`

func TestProjectSearch_MatchesIdentifiers(t *testing.T) {
	path := writeSource(t, "main.go", goSource)
	s := NewProjectSearch("app", "count", []string{path})
	require.NotNil(t, s)
	assert.Equal(t, 1, s.WorkAmount())

	var files []*lattice.SearchedFile
	args := searchArgs()
	err := s.FindReferences(context.Background(), args, func(sf *lattice.SearchedFile) {
		files = append(files, sf)
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, path, files[0].Path)

	refs := files[0].References
	require.Len(t, refs, 3)
	assert.Equal(t, 4, refs[0].StartLine)
	assert.Equal(t, "count := 0", refs[0].Context)
	assert.Equal(t, 1.0, args.Monitor.Fraction())
}

func TestProjectSearch_NoMatchesEmitsNothing(t *testing.T) {
	path := writeSource(t, "main.go", goSource)
	s := NewProjectSearch("app", "missing", []string{path})

	err := s.FindReferences(context.Background(), searchArgs(), func(*lattice.SearchedFile) {
		t.Fatal("no files expected")
	})
	require.NoError(t, err)
}

func TestNewProjectSearch_NoFilesDeclines(t *testing.T) {
	assert.Nil(t, NewProjectSearch("app", "count", nil))
}

func TestProjectSearch_FilterDropsOccurrences(t *testing.T) {
	path := writeSource(t, "main.go", goSource)
	s := NewProjectSearch("app", "count", []string{path},
		WithFilter(script.NewFilter("line >= 5")))
	require.NotNil(t, s)

	var files []*lattice.SearchedFile
	err := s.FindReferences(context.Background(), searchArgs(), func(sf *lattice.SearchedFile) {
		files = append(files, sf)
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Len(t, files[0].References, 2)
	assert.Equal(t, 5, files[0].References[0].StartLine)
	assert.Equal(t, 6, files[0].References[1].StartLine)
}

func TestProjectSearch_Cancellation(t *testing.T) {
	path := writeSource(t, "main.go", goSource)
	s := NewProjectSearch("app", "count", []string{path})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.FindReferences(ctx, searchArgs(), func(*lattice.SearchedFile) {
		t.Fatal("no files expected after cancel")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalSearch_ScopeRestrictsMatches(t *testing.T) {
	source := `package main

func first() {
	count := 1
	_ = count
}

func second() {
	count := 2
	_ = count
}
`
	path := writeSource(t, "main.go", source)
	l := NewLocalSearch(contentcache.NewCache())

	v := &lattice.LocalVariable{
		Name:  "count",
		File:  path,
		Scope: lattice.Location{File: path, StartLine: 3, EndLine: 6},
	}

	var refs []lattice.Reference
	err := l.FindLocalReferences(context.Background(), v, func(ref lattice.Reference) {
		refs = append(refs, ref)
	})
	require.NoError(t, err)
	require.Len(t, refs, 2, "only the first function's occurrences")
	assert.Equal(t, 4, refs[0].StartLine)
	assert.Equal(t, 5, refs[1].StartLine)
}

func TestLocalSearch_ZeroScopeMeansWholeFile(t *testing.T) {
	path := writeSource(t, "main.go", goSource)
	l := NewLocalSearch(contentcache.NewCache())

	var refs []lattice.Reference
	err := l.FindLocalReferences(context.Background(),
		&lattice.LocalVariable{Name: "count", File: path},
		func(ref lattice.Reference) { refs = append(refs, ref) })
	require.NoError(t, err)
	assert.Len(t, refs, 3)
}
