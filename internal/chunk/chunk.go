// Package chunk splits cleaned document content into overlapping,
// size-bounded pieces for embedding.
package chunk

import (
	"regexp"
	"strings"
)

// Default chunk sizing.
const (
	DefaultMaxSize = 512
	DefaultOverlap = 50
)

// Options configures Chunk.
type Options struct {
	MaxSize int
	Overlap int
}

func (o Options) withDefaults() Options {
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	return o
}

var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// boundary is a splitting preference, tried in order until a piece fits
// within MaxSize: paragraph, then line, then sentence, then word. A word
// that still exceeds MaxSize is kept whole rather than broken mid-word.
type boundary int

const (
	boundaryParagraph boundary = iota
	boundaryLine
	boundarySentence
	boundaryWord
	boundaryNone
)

// Chunk splits content into chunks of at most opts.MaxSize characters
// (small overruns permitted to avoid breaking mid-word), where each chunk
// after the first repeats opts.Overlap trailing characters of the
// previous one. Empty or whitespace-only input returns nil.
func Chunk(content string, opts Options) []string {
	opts = opts.withDefaults()

	if strings.TrimSpace(content) == "" {
		return nil
	}

	units := splitByBoundary(content, opts.MaxSize, boundaryParagraph)

	var chunks []string
	var current strings.Builder

	flush := func() {
		text := strings.TrimSpace(current.String())
		if text != "" {
			chunks = append(chunks, text)
		}
		current.Reset()
	}

	for _, unit := range units {
		added := len(unit)
		if current.Len() > 0 {
			added++ // joining space
		}
		if current.Len() > 0 && current.Len()+added > opts.MaxSize {
			flush()
		}
		if current.Len() == 0 && len(chunks) > 0 && opts.Overlap > 0 {
			current.WriteString(trailingChars(chunks[len(chunks)-1], opts.Overlap))
			current.WriteString(" ")
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(unit)
	}
	flush()

	return chunks
}

// splitByBoundary recursively breaks content into pieces no larger than
// maxSize, escalating through the boundary preference order.
func splitByBoundary(content string, maxSize int, level boundary) []string {
	var out []string
	for _, piece := range splitAtLevel(content, level) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if len(piece) <= maxSize || level == boundaryNone {
			out = append(out, piece)
			continue
		}
		out = append(out, splitByBoundary(piece, maxSize, level+1)...)
	}
	return out
}

func splitAtLevel(content string, level boundary) []string {
	switch level {
	case boundaryParagraph:
		return strings.Split(content, "\n\n")
	case boundaryLine:
		return strings.Split(content, "\n")
	case boundarySentence:
		return splitSentences(content)
	case boundaryWord:
		return strings.Fields(content)
	default:
		return []string{content}
	}
}

func splitSentences(content string) []string {
	idxs := sentenceBoundary.FindAllStringIndex(content, -1)
	if len(idxs) == 0 {
		return []string{content}
	}
	var out []string
	start := 0
	for _, m := range idxs {
		out = append(out, content[start:m[1]])
		start = m[1]
	}
	if start < len(content) {
		out = append(out, content[start:])
	}
	return out
}

// trailingChars returns the last n runes of s, or s unchanged if shorter.
func trailingChars(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
