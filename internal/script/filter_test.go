package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lattice "github.com/jward/lattice"
)

func ref(file string, line int, ctx string) lattice.Reference {
	return lattice.Reference{
		Location: lattice.Location{File: file, StartLine: line, StartCol: 4},
		Context:  ctx,
	}
}

func TestNewFilter_EmptySourceIsNil(t *testing.T) {
	assert.Nil(t, NewFilter(""))
}

func TestAllow_NilFilterKeepsEverything(t *testing.T) {
	var f *Filter
	ok, err := f.Allow(context.Background(), ref("a.go", 1, ""))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllow_LinePredicate(t *testing.T) {
	f := NewFilter("line > 10")

	ok, err := f.Allow(context.Background(), ref("a.go", 42, ""))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Allow(context.Background(), ref("a.go", 3, ""))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllow_StringGlobals(t *testing.T) {
	f := NewFilter(`strings.has_suffix(file, "_test.go") == false`)

	ok, err := f.Allow(context.Background(), ref("finder.go", 1, ""))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Allow(context.Background(), ref("finder_test.go", 1, ""))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllow_ContextGlobal(t *testing.T) {
	f := NewFilter(`strings.contains(context, "TODO")`)

	ok, err := f.Allow(context.Background(), ref("a.go", 1, "// TODO remove"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllow_BadScriptErrors(t *testing.T) {
	f := NewFilter("line +")
	_, err := f.Allow(context.Background(), ref("a.go", 1, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter")
}
