package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty document",
			input: "",
			want:  "",
		},
		{
			name:  "prose without blanks unchanged",
			input: "# Routing\nThe app router maps files to routes.",
			want:  "# Routing\nThe app router maps files to routes.",
		},
		{
			name:  "prose blank runs collapse to one",
			input: "intro\n\n\n\nsecond paragraph\n\nthird",
			want:  "intro\n\nsecond paragraph\n\nthird",
		},
		{
			name:  "whitespace-only lines count as blank",
			input: "a\n \t \n   \nb",
			want:  "a\n\nb",
		},
		{
			name:  "blank lines inside fence dropped",
			input: "```go\nfunc main() {\n\n\n\tprintln(\"hi\")\n\n}\n```",
			want:  "```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```",
		},
		{
			name:  "language tag preserved verbatim",
			input: "```tsx filename=\"app/page.tsx\"\n\nexport default function Page() {}\n\n```",
			want:  "```tsx filename=\"app/page.tsx\"\nexport default function Page() {}\n```",
		},
		{
			name:  "indentation inside fence untouched",
			input: "```yaml\nserver:\n  port: 9090\n\n  host: localhost\n```",
			want:  "```yaml\nserver:\n  port: 9090\n  host: localhost\n```",
		},
		{
			name:  "unterminated fence cleaned to end of document",
			input: "intro\n\n```python\nx = 1\n\n\ny = 2",
			want:  "intro\n\n```python\nx = 1\ny = 2",
		},
		{
			name:  "leading and trailing blanks dropped",
			input: "\n\n\nbody\n\n\n",
			want:  "body",
		},
		{
			name:  "prose between fences keeps paragraph break",
			input: "```sh\nnpm install\n```\n\n\nThen start the server.\n\n\n```sh\nnpm run dev\n```",
			want:  "```sh\nnpm install\n```\n\nThen start the server.\n\n```sh\nnpm run dev\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"# Title\n\n\nBody text.\n\n```js\n\nconst a = 1;\n\n\nconst b = 2;\n\n```\n\n\nMore prose.\n",
		"```\nbare fence\n\n\ncontent\n```",
		"no fences\n\n\n\nat all",
		"```rust\nunterminated\n\nfence",
	}

	for _, input := range inputs {
		once := Clean(input)
		twice := Clean(once)
		require.Equal(t, once, twice, "cleaning must be idempotent for %q", input)
	}
}

func TestCleanPreservesNonWhitespaceContent(t *testing.T) {
	input := "# Guide\n\n\nSome   spaced    prose.\n\n```go\na := 1\n\nb := 2\n```\n"

	got := Clean(input)

	// Dropping whitespace-only lines must not alter any remaining line.
	for _, line := range strings.Split(got, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		assert.Contains(t, input, line)
	}
}

func TestCleanAll(t *testing.T) {
	got := CleanAll([]string{"a\n\n\nb", ""})
	require.Len(t, got, 2)
	assert.Equal(t, "a\n\nb", got[0])
	assert.Equal(t, "", got[1])
}
