package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("return function() end"), 0o644))
	}
}

func names(ds []Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Name)
	}
	return out
}

func TestDiscoverSortsByName(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.lua", "a.lua", "c.lua")

	got, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.lua", "b.lua", "c.lua"}, names(got))
	assert.Equal(t, filepath.Join(dir, "a.lua"), got[0].Path)
	assert.Equal(t, ".lua", got[0].Ext)
	assert.False(t, got[0].Builtin())
}

func TestDiscoverFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.lua", "notes.txt", ".hidden.lua", "B.LUA", "x.so")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.lua"), 0o755))

	got, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"B.LUA", "a.lua"}, names(got))

	got, err = Discover(dir, WithExtensions("so", ".lua"))
	require.NoError(t, err)
	assert.Equal(t, []string{"B.LUA", "a.lua", "x.so"}, names(got))
}

func TestDiscoverMissingOrEmptyDir(t *testing.T) {
	got, err := Discover(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Discover("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiscoverMergesBuiltins(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "m.lua", "dup.lua")

	got, err := Discover(dir, WithBuiltins(map[string]any{
		"a-builtin": noop,
		"z-builtin": noop,
		"dup.lua":   noop,
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a-builtin", "dup.lua", "m.lua", "z-builtin"}, names(got))
	assert.True(t, got[0].Builtin())
	assert.False(t, got[1].Builtin(), "file plugin wins over builtin with the same name")
}

func TestDiscoverSkip(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.lua", "b.lua")

	got, err := Discover(dir, WithSkip("b.lua", "gone"), WithBuiltins(map[string]any{"gone": noop}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.lua"}, names(got))
}

func TestDiscoverStableAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "10-x.lua", "02-y.lua", "1-z.lua", "Zed.lua", "alpha.lua")

	first, err := Discover(dir)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Discover(dir)
		require.NoError(t, err)
		assert.Equal(t, names(first), names(again))
	}
	assert.Equal(t, []string{"02-y.lua", "1-z.lua", "10-x.lua", "Zed.lua", "alpha.lua"}, names(first))
}
