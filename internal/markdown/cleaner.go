// Package markdown cleans Markdown/MDX text before chunking.
//
// The cleaner normalizes whitespace so that token budgets are spent on
// content rather than blank lines: blank lines inside fenced code blocks
// are dropped, fence lines (including their info string, e.g. "```tsx
// filename=page.tsx") are preserved verbatim, and runs of blank lines in
// prose collapse to a single blank line. The transformation is a total
// function over strings and is idempotent.
package markdown

import "strings"

// fenceMarker opens and closes fenced code blocks in Markdown-family text.
const fenceMarker = "```"

// Clean normalizes whitespace in a Markdown/MDX document.
//
// Fence lines are copied through untouched so language tags and other
// info-string metadata survive. Inside a fence every blank line is
// dropped; outside, consecutive blank lines collapse to one so paragraph
// boundaries remain visible to the splitter. An unterminated fence is
// treated as extending to the end of the document and its body is
// cleaned as code.
func Clean(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	inFence := false
	blankPending := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, fenceMarker) {
			if blankPending {
				out = append(out, "")
				blankPending = false
			}
			// Fence line verbatim: the opening info string must survive.
			out = append(out, line)
			inFence = !inFence
			continue
		}

		if trimmed == "" {
			// Code blanks are dropped outright; prose blanks are deferred
			// so a run collapses to a single empty line.
			if !inFence {
				blankPending = len(out) > 0
			}
			continue
		}

		if blankPending {
			out = append(out, "")
			blankPending = false
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// CleanAll applies Clean to each text in order.
func CleanAll(texts []string) []string {
	cleaned := make([]string, len(texts))
	for i, t := range texts {
		cleaned[i] = Clean(t)
	}
	return cleaned
}
