// Package chunker splits extracted page text into overlapping windows that
// carry enough provenance to cite the original page later.
package chunker

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/askdoc/askdoc/internal/document"
)

// Chunk is one window of page text. StartOffset is the rune offset of the
// window within its page, so page number plus offset always locates the
// text in the source document.
type Chunk struct {
	ID          string
	Text        string
	Page        int
	Source      string
	StartOffset int
}

// Split windows each page independently into chunks of at most size runes,
// with consecutive chunks overlapping by overlap runes. Chunks never span
// page boundaries. Pages with no text produce no chunks.
func Split(pages []document.Page, size, overlap int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got overlap=%d size=%d", overlap, size)
	}

	var chunks []Chunk
	for _, page := range pages {
		runes := []rune(page.Text)
		if len(runes) == 0 {
			continue
		}
		step := size - overlap
		for start := 0; start < len(runes); start += step {
			end := start + size
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, Chunk{
				ID:          uuid.NewString(),
				Text:        string(runes[start:end]),
				Page:        page.Number,
				Source:      page.Source,
				StartOffset: start,
			})
			if end == len(runes) {
				break
			}
		}
	}
	return chunks, nil
}
