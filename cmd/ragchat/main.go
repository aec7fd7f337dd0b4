package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/philippgille/chromem-go"

	"ragchat/internal/chunker"
	"ragchat/internal/config"
	"ragchat/internal/corpus"
	"ragchat/internal/domain"
	"ragchat/internal/generator"
	"ragchat/internal/llm"
	"ragchat/internal/server"
	"ragchat/internal/service"
	"ragchat/internal/tui"
	"ragchat/internal/vectorstore"
	"ragchat/internal/watcher"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var serve bool
	var addr string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragchat/config.yaml if not provided)")
	flag.BoolVar(&serve, "serve", false, "Run the HTTP chat API instead of the interactive chat")
	flag.StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	// Assemble components via interfaces
	var embed chromem.EmbeddingFunc
	switch cfg.Embedding.Provider {
	case "openai", "":
		key := os.Getenv(cfg.Embedding.APIKeyEnv)
		if key == "" {
			log.Fatalf("missing embedding API key in env %s", cfg.Embedding.APIKeyEnv)
		}
		embed = chromem.NewEmbeddingFuncOpenAICompat(cfg.Embedding.BaseURL, key, cfg.Embedding.Model, nil)
	case "ollama":
		embed = chromem.NewEmbeddingFuncOllama(cfg.Embedding.Model, cfg.Embedding.BaseURL)
	default:
		log.Fatalf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "character", "":
		ch = chunker.NewCharacterChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	case "sentence":
		ch = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		log.Fatalf("unknown chunker: %s", cfg.Chunker.Type)
	}

	var st domain.VectorStore
	switch cfg.Store.Type {
	case "chromem", "":
		st = vectorstore.OpenChromem(cfg.Store.Dir, embed)
	case "memory":
		st = vectorstore.NewMemoryStore(embed)
	default:
		log.Fatalf("unknown vector store: %s", cfg.Store.Type)
	}

	completer, err := llm.NewClient(llm.Config{
		BaseURL:     cfg.Completion.BaseURL,
		APIKeyEnv:   cfg.Completion.APIKeyEnv,
		Model:       cfg.Completion.Model,
		MaxTokens:   cfg.Completion.MaxTokens,
		Temperature: cfg.Completion.Temperature,
		Timeout:     time.Duration(cfg.Completion.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("completion client init failed: %v", err)
	}

	loader := corpus.New(cfg.Corpus.Dir, cfg.Corpus.Extensions, cfg.Corpus.OnDecodeError)
	gen := generator.New(completer)
	pipeline := service.New(loader, ch, st, gen, cfg.Corpus.Dir, cfg.Store.Dir, cfg.Retrieval.TopK)

	if serve {
		runServer(cfg, pipeline)
		return
	}

	m := tui.New(pipeline)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cfg *config.AppConfig, pipeline *service.Pipeline) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the index before accepting traffic.
	pipeline.Refresh(ctx)

	if cfg.Server.Watch {
		go func() {
			if err := watcher.Watch(ctx, cfg.Corpus.Dir, pipeline); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("warning: corpus watcher stopped: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: server.New(pipeline).Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("chat API listening on %s", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped with error: %v", err)
	}
}
