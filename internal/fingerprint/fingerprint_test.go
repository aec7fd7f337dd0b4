package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDirDeterminism(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "b.txt", "beta")
	writeFile(t, dir, "sub/c.txt", "gamma")

	first, err := Dir(dir)
	require.NoError(t, err)
	second, err := Dir(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDirDetectsByteChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")

	before, err := Dir(dir)
	require.NoError(t, err)

	writeFile(t, dir, "a.txt", "alphb")
	after, err := Dir(dir)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestDirDetectsFileAddAndRemove(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	base, err := Dir(dir)
	require.NoError(t, err)

	writeFile(t, dir, "b.txt", "beta")
	added, err := Dir(dir)
	require.NoError(t, err)
	assert.NotEqual(t, base, added)

	require.NoError(t, os.Remove(filepath.Join(dir, "b.txt")))
	removed, err := Dir(dir)
	require.NoError(t, err)
	assert.Equal(t, base, removed)
}

func TestDirIndependentOfCreationOrder(t *testing.T) {
	// Identical relative file sets with identical bytes must hash identically
	// regardless of the order the files were created in.
	first := t.TempDir()
	writeFile(t, first, "a.txt", "one")
	writeFile(t, first, "b.txt", "two")
	writeFile(t, first, "sub/c.txt", "three")

	second := t.TempDir()
	writeFile(t, second, "sub/c.txt", "three")
	writeFile(t, second, "b.txt", "two")
	writeFile(t, second, "a.txt", "one")

	h1, err := Dir(first)
	require.NoError(t, err)
	h2, err := Dir(second)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestDirDetectsRename(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	before, err := Dir(dir)
	require.NoError(t, err)

	require.NoError(t, os.Rename(filepath.Join(dir, "a.txt"), filepath.Join(dir, "z.txt")))
	after, err := Dir(dir)
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "renaming a file must change the digest")
}

func TestDirDetectsContentMovedAcrossFiles(t *testing.T) {
	// Same concatenated bytes split differently across files must not be
	// treated as unchanged; chunking depends on file boundaries.
	first := t.TempDir()
	writeFile(t, first, "a.txt", "alphabeta")
	writeFile(t, first, "b.txt", "")

	second := t.TempDir()
	writeFile(t, second, "a.txt", "alpha")
	writeFile(t, second, "b.txt", "beta")

	h1, err := Dir(first)
	require.NoError(t, err)
	h2, err := Dir(second)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestDirMissingFolder(t *testing.T) {
	_, err := Dir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store", "fingerprint.txt")

	_, ok := Load(path)
	assert.False(t, ok)

	require.NoError(t, Save(path, "abc123"))
	got, ok := Load(path)
	require.True(t, ok)
	assert.Equal(t, "abc123", got)
}
