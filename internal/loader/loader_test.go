package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadMarkdownOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Home")
	writeFile(t, root, "guide/install.mdx", "# Install")
	writeFile(t, root, "guide/app.tsx", "export default function Page() {}")
	writeFile(t, root, "assets/logo.svg", "<svg/>")

	svc := NewService(nil)
	docs, err := svc.Load(context.Background(), Options{Root: root})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	got := map[string]bool{}
	for _, doc := range docs {
		got[doc.Metadata["source"].(string)] = true
	}
	assert.True(t, got["index.md"])
	assert.True(t, got["guide/install.mdx"])
}

func TestLoadMetadata(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/routing.md", "# Routing")

	svc := NewService(nil)
	docs, err := svc.Load(context.Background(), Options{
		Root:     root,
		Metadata: map[string]string{"project": "nextjs-docs"},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	meta := docs[0].Metadata
	assert.Equal(t, "docs/routing.md", meta["source"])
	assert.Equal(t, "routing.md", meta["file_name"])
	assert.Equal(t, ".md", meta["extension"])
	assert.Equal(t, len("# Routing"), meta["file_size"])
	assert.Equal(t, "nextjs-docs", meta["project"])
}

func TestLoadSkipsDefaultDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "readme.md", "# Top")
	writeFile(t, root, "node_modules/pkg/readme.md", "# Dep docs")
	writeFile(t, root, ".next/cache/notes.md", "# Build artifact")

	svc := NewService(nil)
	docs, err := svc.Load(context.Background(), Options{Root: root})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "readme.md", docs[0].Metadata["source"])
}

func TestLoadHonorsExcludeAndIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.md", "# Keep")
	writeFile(t, root, "drafts/wip.md", "# WIP")
	writeFile(t, root, "legacy/old.md", "# Old")
	writeFile(t, root, ".docvectorignore", "drafts/\n")

	svc := NewService(nil)
	docs, err := svc.Load(context.Background(), Options{
		Root:    root,
		Exclude: []string{"legacy/**"},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "keep.md", docs[0].Metadata["source"])
}

func TestLoadSkipsOversizedAndBinary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.md", "# Small")
	writeFile(t, root, "big.md", string(make([]byte, 200)))
	writeFile(t, root, "binary.md", "pre\xff\xfepost")

	svc := NewService(nil)
	docs, err := svc.Load(context.Background(), Options{Root: root, MaxFileSize: 100})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "small.md", docs[0].Metadata["source"])
}

func TestLoadMissingRoot(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Load(context.Background(), Options{Root: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestLoadCancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# A")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(nil)
	_, err := svc.Load(ctx, Options{Root: root})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/page.md", "# Page")
	writeFile(t, root, "docs/page.txt", "plain")

	svc := NewService(nil)

	doc, err := svc.LoadFile(context.Background(), Options{Root: root}, filepath.Join(root, "docs", "page.md"))
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "docs/page.md", doc.Metadata["source"])

	// Non-matching files come back nil without error.
	doc, err = svc.LoadFile(context.Background(), Options{Root: root}, filepath.Join(root, "docs", "page.txt"))
	require.NoError(t, err)
	assert.Nil(t, doc)
}
