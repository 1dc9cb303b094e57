package services

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// TextChunker splits resume text into overlapping pieces small enough to
// embed one at a time.
type TextChunker interface {
	ChunkText(text string) []string
}

type textChunker struct {
	size    int
	overlap int
}

func NewTextChunker(size, overlap int) TextChunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &textChunker{size: size, overlap: overlap}
}

func (tc *textChunker) ChunkText(text string) []string {
	var chunks []string
	var current strings.Builder

	// flush starts the next chunk with the tail of the previous one
	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, current.String())
		tail := lastRunes(current.String(), tc.overlap)
		current.Reset()
		current.WriteString(tail)
	}

	// Resume sections are separated by blank lines
	for _, section := range strings.Split(text, "\n\n") {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		if utf8.RuneCountInString(section) <= tc.size {
			if utf8.RuneCountInString(current.String())+utf8.RuneCountInString(section)+2 > tc.size {
				flush()
			}
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(section)
			continue
		}

		for _, piece := range splitLong(section, tc.size) {
			if utf8.RuneCountInString(current.String())+utf8.RuneCountInString(piece)+1 > tc.size {
				flush()
			}
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(piece)
		}
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitLong breaks an oversized section on line boundaries, then on words
// when a single line is still too long.
func splitLong(section string, size int) []string {
	var pieces []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) <= size {
			pieces = append(pieces, line)
			continue
		}

		var sb strings.Builder
		for _, word := range strings.Fields(line) {
			if sb.Len() > 0 && utf8.RuneCountInString(sb.String())+utf8.RuneCountInString(word)+1 > size {
				pieces = append(pieces, sb.String())
				sb.Reset()
			}
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(word)
		}
		if sb.Len() > 0 {
			pieces = append(pieces, sb.String())
		}
	}
	return pieces
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
