// Package cleaner strips navigation, table-of-contents, and feedback
// boilerplate from fetched markdown, and truncates content at a natural
// boundary when a caller needs to bound its size.
package cleaner

import (
	"regexp"
	"strings"
)

var (
	headerPattern = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

	skipSectionTitles = regexp.MustCompile(`(?i)^(related (articles|pages|links|resources)|see also|next steps|additional resources|feedback|contribute|help us improve)\s*$`)
	tocTitles         = regexp.MustCompile(`(?i)^(in this (article|page|section|document|guide)|on this page|table of contents|contents|quick links|navigation|jump to)\s*$`)

	linkOnlyListLine = regexp.MustCompile(`^\s*[-*]\s*\[[^\]]*\]\([^)]*\)\s*$`)

	lastUpdatedLine = regexp.MustCompile(`(?i)last\s+(updated|modified|edited)`)
	editPageLine    = regexp.MustCompile(`(?i)edit this page`)
	wasHelpfulLine  = regexp.MustCompile(`(?i)was this (page|article) helpful`)
	rateThisLine    = regexp.MustCompile(`(?i)rate this`)
	feedbackLine    = regexp.MustCompile(`(?i)(did this (page|article)?\s*help|^feedback\b)`)
	minReadLine     = regexp.MustCompile(`(?i)\b\d+\s*min(ute)?s?\s+read\b`)
	shareLine       = regexp.MustCompile(`(?i)\b(share|tweet|follow us)\b`)
	cookieLine      = regexp.MustCompile(`(?i)cookie`)
	anchorOnlyLine  = regexp.MustCompile(`^\s*\[[^\]]*\]\(#[^)]*\)\s*$`)

	collapseNewlines = regexp.MustCompile(`\n{3,}`)
	sentenceEnd       = regexp.MustCompile(`[.!?]\s`)
)

type header struct {
	level int
	title string
}

func matchHeader(line string) *header {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return &header{level: len(m[1]), title: strings.TrimSpace(m[2])}
}

// Clean strips skip-section and TOC boilerplate, removes per-line noise,
// and collapses blank-line runs. Clean is idempotent:
// clean(clean(x)) == clean(x).
func Clean(markdown string) string {
	lines := strings.Split(markdown, "\n")
	out := make([]string, 0, len(lines))

	i := 0
	for i < len(lines) {
		line := lines[i]

		if h := matchHeader(line); h != nil {
			if skipSectionTitles.MatchString(h.title) {
				i = skipSection(lines, i, h.level)
				continue
			}
			if tocTitles.MatchString(h.title) {
				i = skipTOC(lines, i+1)
				continue
			}
		}

		if shouldDropLine(line) {
			i++
			continue
		}

		out = append(out, line)
		i++
	}

	cleaned := collapseNewlines.ReplaceAllString(strings.Join(out, "\n"), "\n\n")
	return strings.TrimSpace(cleaned)
}

// skipSection returns the index of the next header at level <= the
// skipped section's level, or len(lines) if none follows.
func skipSection(lines []string, start, level int) int {
	i := start + 1
	for i < len(lines) {
		if h := matchHeader(lines[i]); h != nil && h.level <= level {
			return i
		}
		i++
	}
	return i
}

// skipTOC drops link-only list lines and blank lines starting at start,
// stopping at the first header (section closes) or first non-TOC content
// line (returned unconsumed).
func skipTOC(lines []string, start int) int {
	i := start
	for i < len(lines) {
		line := lines[i]
		if matchHeader(line) != nil {
			return i
		}
		if strings.TrimSpace(line) == "" || linkOnlyListLine.MatchString(line) {
			i++
			continue
		}
		return i
	}
	return i
}

func shouldDropLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	if isBreadcrumb(line) {
		return true
	}
	switch {
	case lastUpdatedLine.MatchString(line),
		editPageLine.MatchString(line),
		wasHelpfulLine.MatchString(line),
		rateThisLine.MatchString(line),
		feedbackLine.MatchString(line),
		minReadLine.MatchString(line),
		shareLine.MatchString(line),
		cookieLine.MatchString(line),
		anchorOnlyLine.MatchString(line):
		return true
	}
	return false
}

// isBreadcrumb matches lines made of three or more non-empty segments
// joined by >, ›, », or /.
func isBreadcrumb(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '>' || r == '›' || r == '»' || r == '/'
	})
	count := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			count++
		}
	}
	return count >= 3
}

// TruncationSuffix is appended to content cut short by Truncate. Callers
// enforcing a hard length budget on Truncate's output must reserve room
// for it: Truncate(content, maxLen) can return up to
// maxLen+len(TruncationSuffix) bytes.
const TruncationSuffix = "\n\n[Content truncated...]"

// Truncate returns content unchanged if it already fits within maxLen;
// otherwise it cuts at the latest paragraph break after 70% of maxLen,
// else a sentence boundary after 80%, else a word boundary after 90%,
// else a hard cut, and appends TruncationSuffix. The returned string may
// exceed maxLen by up to len(TruncationSuffix).
func Truncate(content string, maxLen int) string {
	if len(content) <= maxLen {
		return content
	}

	if idx := lastBreakAfter(content, "\n\n", threshold(maxLen, 0.7), maxLen); idx > 0 {
		return strings.TrimRight(content[:idx], " \t\n") + TruncationSuffix
	}
	if idx := lastSentenceBoundary(content, threshold(maxLen, 0.8), maxLen); idx > 0 {
		return strings.TrimRight(content[:idx], " \t\n") + TruncationSuffix
	}
	if idx := lastWordBoundary(content, threshold(maxLen, 0.9), maxLen); idx > 0 {
		return strings.TrimRight(content[:idx], " \t\n") + TruncationSuffix
	}
	return content[:maxLen] + TruncationSuffix
}

func threshold(maxLen int, fraction float64) int {
	return int(float64(maxLen) * fraction)
}

func boundedPrefix(content string, limit int) string {
	if limit < len(content) {
		return content[:limit]
	}
	return content
}

func lastBreakAfter(content, sep string, minPos, limit int) int {
	search := boundedPrefix(content, limit)
	last := -1
	from := 0
	for {
		pos := strings.Index(search[from:], sep)
		if pos == -1 {
			break
		}
		abs := from + pos
		if abs >= minPos {
			last = abs
		}
		from = abs + len(sep)
	}
	return last
}

func lastSentenceBoundary(content string, minPos, limit int) int {
	search := boundedPrefix(content, limit)
	last := -1
	for _, m := range sentenceEnd.FindAllStringIndex(search, -1) {
		if m[1] >= minPos {
			last = m[1]
		}
	}
	return last
}

func lastWordBoundary(content string, minPos, limit int) int {
	search := boundedPrefix(content, limit)
	last := -1
	for i, r := range search {
		if r == ' ' || r == '\n' || r == '\t' {
			if i >= minPos {
				last = i
			}
		}
	}
	return last
}
