package chunker

import (
	"fmt"

	"github.com/rikas05/chat-with-pdf/internal/models"
)

// Chunker splits text into overlapping fixed-size windows. Sizes are
// counted in runes so multi-byte text never gets cut mid-character.
type Chunker struct {
	size    int
	overlap int
}

// New validates the window parameters. Overlap must satisfy
// 0 <= overlap < size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, models.ValidationError(fmt.Sprintf("chunk size must be positive, got %d", size))
	}
	if overlap < 0 {
		return nil, models.ValidationError(fmt.Sprintf("chunk overlap must not be negative, got %d", overlap))
	}
	if overlap >= size {
		return nil, models.ValidationError(fmt.Sprintf("chunk overlap %d must be smaller than chunk size %d", overlap, size))
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split produces the ordered chunk windows covering text with no gaps.
// Consecutive windows share exactly the configured overlap, so joining
// the first window with each later window minus its overlap prefix
// reconstructs the input. Empty input yields no windows; input shorter
// than the window size yields exactly one.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
		start = end - c.overlap
	}
	return chunks
}

// Reassemble rebuilds the original text from a window sequence by
// dropping each later window's overlap prefix.
func Reassemble(chunks []string, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	out := []rune(chunks[0])
	for _, c := range chunks[1:] {
		runes := []rune(c)
		if len(runes) > overlap {
			runes = runes[overlap:]
		} else {
			runes = nil
		}
		out = append(out, runes...)
	}
	return string(out)
}

// Overlap returns the configured overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Size returns the configured window size in runes.
func (c *Chunker) Size() int { return c.size }
