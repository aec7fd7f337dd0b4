package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/philippgille/chromem-go"

	"ragchat/internal/domain"
)

// MemoryStore is a non-persisted vector store using brute-force cosine
// similarity. It serves small corpora and tests; the chromem store is the
// default.
type MemoryStore struct {
	mu      sync.RWMutex
	embed   chromem.EmbeddingFunc
	chunks  []domain.Chunk
	vectors [][]float32
}

func NewMemoryStore(embed chromem.EmbeddingFunc) *MemoryStore {
	return &MemoryStore{embed: embed}
}

func (s *MemoryStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks) > 0
}

func (s *MemoryStore) Rebuild(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return domain.ErrNoContent
	}
	vectors := make([][]float32, len(chunks))
	for i, ch := range chunks {
		vec, err := s.embed(ctx, ch.Text)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", ch.ChunkID, err)
		}
		vectors[i] = normalize(vec)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append([]domain.Chunk(nil), chunks...)
	s.vectors = vectors
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	vec, err := s.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vec = normalize(vec)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.chunks) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = 3
	}
	results := make([]domain.SearchResult, len(s.chunks))
	for i := range s.chunks {
		results[i] = domain.SearchResult{Chunk: s.chunks[i], Score: dot(s.vectors[i], vec)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
