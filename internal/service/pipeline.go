// Package service orchestrates the retrieval-augmented answer pipeline:
// detect corpus changes, rebuild the vector store when needed, retrieve
// context and generate the reply.
package service

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ragchat/internal/domain"
	"ragchat/internal/fingerprint"
	"ragchat/internal/generator"
)

// FingerprintFileName is the sibling of the vector store holding the digest
// of the corpus the store was built from. Store and fingerprint form one
// persisted unit.
const FingerprintFileName = "fingerprint.txt"

// Pipeline runs the per-request state machine. Rebuilds are serialized with
// a write lock held across load, split, index and fingerprint persist;
// retrievals share a read lock.
type Pipeline struct {
	loader          domain.Loader
	chunker         domain.Chunker
	store           domain.VectorStore
	generator       *generator.Generator
	corpusDir       string
	fingerprintFile string
	topK            int

	mu sync.RWMutex
}

// New creates a pipeline. The fingerprint file lives in storeDir next to the
// vector store.
func New(loader domain.Loader, chunker domain.Chunker, store domain.VectorStore, gen *generator.Generator, corpusDir, storeDir string, topK int) *Pipeline {
	if topK <= 0 {
		topK = 3
	}
	return &Pipeline{
		loader:          loader,
		chunker:         chunker,
		store:           store,
		generator:       gen,
		corpusDir:       corpusDir,
		fingerprintFile: filepath.Join(storeDir, FingerprintFileName),
		topK:            topK,
	}
}

// Answer runs the full pipeline for one chat turn. Indexing failures degrade
// to general-knowledge mode; only a completion failure is returned as an
// error.
func (p *Pipeline) Answer(ctx context.Context, query string, history []domain.Message) (string, error) {
	contextText := generator.NoContext
	if p.Refresh(ctx) {
		if retrieved := p.retrieve(ctx, query); retrieved != "" {
			contextText = retrieved
		}
	}
	return p.generator.Generate(ctx, query, contextText, history)
}

// Refresh checks the corpus fingerprint and rebuilds the vector store if the
// corpus changed or no store exists. It reports whether retrieval should be
// used for this turn.
func (p *Pipeline) Refresh(ctx context.Context) bool {
	if !hasFiles(p.corpusDir) {
		return false
	}
	current, err := fingerprint.Dir(p.corpusDir)
	if err != nil {
		// A partial hash must not drive the rebuild decision. Reuse the
		// existing store if there is one; the next call retries.
		log.Printf("warning: corpus fingerprint failed: %v", err)
		return p.store.Ready()
	}
	if saved, ok := fingerprint.Load(p.fingerprintFile); ok && saved == current && p.store.Ready() {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	// Another request may have finished the rebuild while we waited.
	if saved, ok := fingerprint.Load(p.fingerprintFile); ok && saved == current && p.store.Ready() {
		return true
	}
	return p.rebuild(ctx, current)
}

// rebuild runs load, split and index under the write lock. The fingerprint
// is persisted only after the store write succeeds; on any failure it is
// left untouched so the next call retries instead of concluding "unchanged".
func (p *Pipeline) rebuild(ctx context.Context, digest string) bool {
	log.Printf("corpus changed, rebuilding vector store...")
	docs, err := p.loader.Load()
	if err != nil {
		log.Printf("warning: loading corpus failed: %v", err)
		return false
	}
	var chunks []domain.Chunk
	for _, doc := range docs {
		cs, err := p.chunker.Chunk(doc)
		if err != nil {
			log.Printf("warning: chunking %s failed: %v", doc.Path, err)
			return false
		}
		chunks = append(chunks, cs...)
	}
	if len(chunks) == 0 {
		log.Printf("warning: no chunks produced, skipping vector store")
		return false
	}
	if err := p.store.Rebuild(ctx, chunks); err != nil {
		log.Printf("warning: vector store rebuild failed: %v", err)
		return false
	}
	if err := fingerprint.Save(p.fingerprintFile, digest); err != nil {
		log.Printf("warning: persisting fingerprint failed: %v", err)
	}
	log.Printf("vector store updated: %d chunks from %d documents", len(chunks), len(docs))
	return true
}

// retrieve returns the topK most similar chunk texts joined with blank
// lines, or empty when the store has nothing to offer.
func (p *Pipeline) retrieve(ctx context.Context, query string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	results, err := p.store.Search(ctx, query, p.topK)
	if err != nil {
		log.Printf("warning: retrieval failed: %v", err)
		return ""
	}
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Chunk.Text)
	}
	return strings.Join(texts, "\n\n")
}

func hasFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}
