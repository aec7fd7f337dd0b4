package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRecursive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("beta"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	l := New(dir, []string{".txt"}, DecodeSkip)
	docs, err := l.Load()
	require.NoError(t, err)
	require.Len(t, docs, 2)

	contents := map[string]string{}
	for _, d := range docs {
		assert.NotEmpty(t, d.ID)
		contents[d.Path] = d.Content
	}
	assert.Equal(t, "alpha", contents["a.txt"])
	assert.Equal(t, "beta", contents[filepath.Join("sub", "b.txt")])
}

func TestLoadKeepsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), nil, 0o644))

	l := New(dir, []string{".txt"}, DecodeSkip)
	docs, err := l.Load()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].Content)
}

func TestLoadDecodeErrorPolicies(t *testing.T) {
	invalid := []byte{0xff, 0xfe, 0xfd}

	t.Run("skip", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.txt"), invalid, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "good.txt"), []byte("fine"), 0o644))

		docs, err := New(dir, []string{".txt"}, DecodeSkip).Load()
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "good.txt", docs[0].Path)
	})

	t.Run("fail", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.txt"), invalid, 0o644))

		_, err := New(dir, []string{".txt"}, DecodeFail).Load()
		assert.Error(t, err)
	})
}

func TestLoadDeterministicIDs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))

	l := New(dir, []string{".txt"}, DecodeSkip)
	first, err := l.Load()
	require.NoError(t, err)
	second, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestLoadMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), []string{".txt"}, DecodeSkip).Load()
	assert.Error(t, err)
}
