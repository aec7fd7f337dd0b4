// Package vectorstore provides the persisted similarity index over embedded
// chunks.
package vectorstore

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"

	"ragchat/internal/domain"
)

const collectionName = "chunks"

// StoreFileName is the on-disk representation of the vector store inside the
// store directory. It is paired with the fingerprint file written by the
// pipeline; the two are always replaced together.
const StoreFileName = "store.gob"

// ChromemStore persists embedded chunks in an embedded chromem database.
// A rebuild fully replaces the previous contents; the new store is staged to
// a temp file and renamed into place so a failed rebuild never leaves a
// partial store behind.
type ChromemStore struct {
	dbFile string
	embed  chromem.EmbeddingFunc

	mu    sync.RWMutex
	db    *chromem.DB
	ready bool
}

// OpenChromem loads an existing store from dir if one is present. A missing
// or corrupt store file is not an error; the store simply starts not ready
// and the pipeline rebuilds it.
func OpenChromem(dir string, embed chromem.EmbeddingFunc) *ChromemStore {
	s := &ChromemStore{
		dbFile: filepath.Join(dir, StoreFileName),
		embed:  embed,
		db:     chromem.NewDB(),
	}
	if _, err := os.Stat(s.dbFile); err != nil {
		return s
	}
	if err := s.db.ImportFromFile(s.dbFile, "", collectionName); err != nil {
		log.Printf("warning: could not load vector store from %s: %v", s.dbFile, err)
		s.db = chromem.NewDB()
		return s
	}
	if coll := s.db.GetCollection(collectionName, s.embed); coll != nil && coll.Count() > 0 {
		s.ready = true
	}
	return s
}

// Ready reports whether a populated store is loaded. It is safe to call
// concurrently with Rebuild.
func (s *ChromemStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Rebuild replaces the store with one record per chunk. It refuses an empty
// chunk set so an empty store is never persisted.
func (s *ChromemStore) Rebuild(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return domain.ErrNoContent
	}
	fresh := chromem.NewDB()
	coll, err := fresh.CreateCollection(collectionName, map[string]string{}, s.embed)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	docs := make([]chromem.Document, len(chunks))
	for i, ch := range chunks {
		docs[i] = chromem.Document{
			ID:      ch.ChunkID,
			Content: ch.Text,
			Metadata: map[string]string{
				"document_id": ch.DocumentID,
				"index":       strconv.Itoa(ch.Index),
			},
		}
	}
	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.dbFile), 0o755); err != nil {
		return err
	}
	tmp := s.dbFile + ".tmp"
	if err := fresh.ExportToFile(tmp, true, "", collectionName); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write vector store: %w", err)
	}
	if err := os.Rename(tmp, s.dbFile); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace vector store: %w", err)
	}
	s.mu.Lock()
	s.db = fresh
	s.ready = true
	s.mu.Unlock()
	return nil
}

// Search embeds the query and returns the topK most similar chunks in
// descending similarity order. An empty store yields no results.
func (s *ChromemStore) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	db := s.db
	s.mu.RUnlock()
	coll := db.GetCollection(collectionName, s.embed)
	if coll == nil {
		return nil, domain.ErrStoreUnavailable
	}
	n := coll.Count()
	if n == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = 3
	}
	if topK > n {
		topK = n
	}
	results, err := coll.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query vector store: %w", err)
	}
	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		idx, _ := strconv.Atoi(r.Metadata["index"])
		out = append(out, domain.SearchResult{
			Chunk: domain.Chunk{
				DocumentID: r.Metadata["document_id"],
				ChunkID:    r.ID,
				Text:       r.Content,
				Index:      idx,
			},
			Score: r.Similarity,
		})
	}
	return out, nil
}
