package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"blank line", "", ""},
		{"comment", "# generated files", ""},
		{"negation unsupported", "!keep.md", ""},
		{"bare directory", "node_modules", "**/node_modules/**"},
		{"directory with slash", "build/", "build/**"},
		{"anchored path", "/docs/generated/", "docs/generated/**"},
		{"file glob", "*.log", "*.log"},
		{"file with extension", "secrets.env", "**/secrets.env"},
		{"nested path kept as-is", "docs/drafts/notes.md", "docs/drafts/notes.md"},
		{"trailing whitespace trimmed", "dist/  ", "dist/**"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLine(tt.line))
		})
	}
}

func TestPatternsFallback(t *testing.T) {
	root := t.TempDir()

	p := NewParser(nil, nil)
	patterns, err := p.Patterns(root)
	require.NoError(t, err)

	assert.Equal(t, DefaultFallbackPatterns, patterns)
}

func TestPatternsFromFiles(t *testing.T) {
	root := t.TempDir()

	docvectorignore := "# private drafts\ndrafts/\n*.tmp\n"
	gitignore := "node_modules\n*.tmp\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".docvectorignore"), []byte(docvectorignore), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte(gitignore), 0o644))

	p := NewParser(nil, nil)
	patterns, err := p.Patterns(root)
	require.NoError(t, err)

	// Both files contribute, duplicates collapse, fallback is not used.
	assert.Equal(t, []string{"drafts/**", "*.tmp", "**/node_modules/**"}, patterns)
}

func TestPatternsCustomIgnoreFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "exclude.txt"), []byte("vendor\n"), 0o644))

	p := NewParser([]string{"exclude.txt"}, []string{"**/unused/**"})
	patterns, err := p.Patterns(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"**/vendor/**"}, patterns)
}
