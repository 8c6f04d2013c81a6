package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoader_Accepts(t *testing.T) {
	loader := NewLoader(nil)

	assert.True(t, loader.Accepts("doc.md"))
	assert.True(t, loader.Accepts("DOC.MD"))
	assert.True(t, loader.Accepts("notes.txt"))
	assert.False(t, loader.Accepts("main.go"))
	assert.False(t, loader.Accepts("noextension"))

	custom := NewLoader([]string{".adoc", "rst"})
	assert.True(t, custom.Accepts("page.adoc"))
	assert.True(t, custom.Accepts("page.rst"), "extensions are normalised to dot-prefixed")
	assert.False(t, custom.Accepts("page.md"))
}

func TestLoader_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# Doc A")
	writeFile(t, dir, "sub/b.txt", "Doc B")
	writeFile(t, dir, "skip.go", "package main")

	loader := NewLoader(nil)
	docs, err := loader.Load(context.Background(), []string{dir})
	require.NoError(t, err)

	require.Len(t, docs, 2)
	byPath := make(map[string]domain.RawDocument)
	for _, doc := range docs {
		byPath[filepath.Base(doc.Path)] = doc
	}

	assert.Equal(t, "# Doc A", byPath["a.md"].Content)
	assert.Equal(t, domain.HashContent("# Doc A"), byPath["a.md"].ContentHash)
	assert.Equal(t, "Doc B", byPath["b.txt"].Content)
}

func TestLoader_SkipsHiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "visible.md", "Visible")
	writeFile(t, dir, ".git/hidden.md", "Hidden")

	loader := NewLoader(nil)
	docs, err := loader.Load(context.Background(), []string{dir})
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "Visible", docs[0].Content)
}

func TestLoader_ExplicitFileIgnoresExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.log", "Log content")

	loader := NewLoader(nil)
	docs, err := loader.Load(context.Background(), []string{path})
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "Log content", docs[0].Content)
}

func TestLoader_MissingPath(t *testing.T) {
	loader := NewLoader(nil)

	_, err := loader.Load(context.Background(), []string{"/does/not/exist"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root path error")
}

func TestLoader_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "A")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := NewLoader(nil)
	_, err := loader.Load(ctx, []string{dir})
	require.ErrorIs(t, err, context.Canceled)
}
