package chunker

import (
	"strconv"
	"strings"

	"ragchat/internal/domain"
)

// CharacterChunker splits text into fixed-size character windows with
// overlap, preferring to cut at paragraph, newline, sentence or word
// boundaries before falling back to a hard character cut. Every character
// of the input appears in at least one chunk.
type CharacterChunker struct {
	chunkSize int
	overlap   int
}

// NewCharacterChunker creates a chunker with the given window size and
// overlap. Overlap must stay below the window size; out-of-range values
// fall back to the defaults.
func NewCharacterChunker(chunkSize, overlap int) *CharacterChunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 10
	}
	return &CharacterChunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits a document into overlapping windows. A document shorter than
// the window size produces exactly one chunk; an empty document produces
// none.
func (c *CharacterChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	if strings.TrimSpace(document.Content) == "" {
		return nil, nil
	}
	runes := []rune(document.Content)
	var chunks []domain.Chunk
	start := 0
	idx := 0
	for {
		end := start + c.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.breakAt(runes, start, end)
		}
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Text:       string(runes[start:end]),
			Index:      idx,
		})
		if end == len(runes) {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
		idx++
	}
	return chunks, nil
}

// breakAt looks backwards from the hard limit for a natural boundary to cut
// at. A boundary is only used when it keeps the chunk at least half full,
// otherwise the hard cut stands.
func (c *CharacterChunker) breakAt(runes []rune, start, limit int) int {
	min := start + c.chunkSize/2
	for _, probe := range []func([]rune, int, int) int{breakParagraph, breakLine, breakSentence, breakWord} {
		if at := probe(runes, min, limit); at > min {
			return at
		}
	}
	return limit
}

func breakParagraph(runes []rune, min, limit int) int {
	for i := limit; i > min+1; i-- {
		if runes[i-1] == '\n' && runes[i-2] == '\n' {
			return i
		}
	}
	return -1
}

func breakLine(runes []rune, min, limit int) int {
	for i := limit; i > min; i-- {
		if runes[i-1] == '\n' {
			return i
		}
	}
	return -1
}

func breakSentence(runes []rune, min, limit int) int {
	for i := limit; i > min+1; i-- {
		if isSpace(runes[i-1]) && isSentenceEnd(runes[i-2]) {
			return i
		}
	}
	return -1
}

func breakWord(runes []rune, min, limit int) int {
	for i := limit; i > min; i-- {
		if isSpace(runes[i-1]) {
			return i
		}
	}
	return -1
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
