package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_SkipsSeeAlsoSection(t *testing.T) {
	in := "# Guide\n\nBody text.\n\n## See Also\n\n- [Other](x)\n- [Thing](y)\n\n## Next Section\n\nMore body."
	out := Clean(in)
	assert.Contains(t, out, "Body text.")
	assert.Contains(t, out, "Next Section")
	assert.Contains(t, out, "More body.")
	assert.NotContains(t, out, "See Also")
	assert.NotContains(t, out, "Other")
}

func TestClean_DropsTOCUntilContent(t *testing.T) {
	in := "## Table of Contents\n\n- [One](#one)\n- [Two](#two)\n\nReal content starts here.\n"
	out := Clean(in)
	assert.Contains(t, out, "Real content starts here.")
	assert.NotContains(t, out, "Table of Contents")
	assert.NotContains(t, out, "[One]")
}

func TestClean_TOCClosedByHeader(t *testing.T) {
	in := "## On This Page\n\n- [One](#one)\n\n## Overview\n\nBody.\n"
	out := Clean(in)
	assert.Contains(t, out, "## Overview")
	assert.Contains(t, out, "Body.")
	assert.NotContains(t, out, "On This Page")
}

func TestClean_DropsBreadcrumbs(t *testing.T) {
	in := "Home > Docs > Guides > Intro\n\nActual content.\n"
	out := Clean(in)
	assert.NotContains(t, out, "Home >")
	assert.Contains(t, out, "Actual content.")
}

func TestClean_DropsNoiseLines(t *testing.T) {
	in := strings.Join([]string{
		"Content line one.",
		"Last updated: 2024-01-01",
		"Edit this page on GitHub",
		"Was this page helpful?",
		"5 min read",
		"Share on Twitter",
		"We use cookies to improve your experience.",
		"[anchor only](#section)",
		"Content line two.",
	}, "\n")
	out := Clean(in)
	assert.Contains(t, out, "Content line one.")
	assert.Contains(t, out, "Content line two.")
	assert.NotContains(t, out, "Last updated")
	assert.NotContains(t, out, "Edit this page")
	assert.NotContains(t, out, "helpful")
	assert.NotContains(t, out, "min read")
	assert.NotContains(t, out, "Twitter")
	assert.NotContains(t, out, "cookies")
	assert.NotContains(t, out, "anchor only")
}

func TestClean_CollapsesExcessBlankLines(t *testing.T) {
	in := "one\n\n\n\n\ntwo"
	out := Clean(in)
	assert.Equal(t, "one\n\ntwo", out)
}

func TestClean_Idempotent(t *testing.T) {
	in := "# Title\n\n## See Also\n\n- [x](y)\n\nBody content.\n\n\n\nmore.\n"
	once := Clean(in)
	twice := Clean(once)
	assert.Equal(t, once, twice)
}

func TestTruncate_ShortContentUnchanged(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 100))
}

func TestTruncate_ParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("a", 80)
	para2 := strings.Repeat("b", 80)
	content := para1 + "\n\n" + para2
	out := Truncate(content, 100)
	assert.Contains(t, out, "[Content truncated...]")
	assert.True(t, strings.HasPrefix(out, para1))
	assert.NotContains(t, out, "bbbb")
}

func TestTruncate_WordBoundaryFallback(t *testing.T) {
	content := strings.Repeat("x", 55) + " " + strings.Repeat("y", 50)
	out := Truncate(content, 60)
	assert.Contains(t, out, "[Content truncated...]")
	assert.True(t, strings.HasPrefix(out, strings.Repeat("x", 55)))
	assert.NotContains(t, out, "y")
}

func TestTruncate_HardCutFallback(t *testing.T) {
	content := strings.Repeat("z", 200)
	out := Truncate(content, 50)
	assert.Contains(t, out, "[Content truncated...]")
	assert.True(t, strings.HasPrefix(out, strings.Repeat("z", 50)))
}
