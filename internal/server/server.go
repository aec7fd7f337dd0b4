// Package server exposes the chat pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"ragchat/internal/domain"
)

const maxBodyBytes = 1 << 20

// Answerer is the server-facing subset of the pipeline.
type Answerer interface {
	Answer(ctx context.Context, query string, history []domain.Message) (string, error)
}

// ChatRequest is the inbound contract. History is kept raw so a broken
// history shape never fails decoding of the whole request; it is untrusted
// input and validated entry by entry.
type ChatRequest struct {
	Message string          `json:"message"`
	History json.RawMessage `json:"history"`
}

// ChatResponse is the outbound contract.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Server is the HTTP front of the chat pipeline.
type Server struct {
	pipeline Answerer
	mux      *http.ServeMux
}

func New(pipeline Answerer) *Server {
	s := &Server{pipeline: pipeline, mux: http.NewServeMux()}
	s.mux.HandleFunc("/", s.handleHealth)
	s.mux.HandleFunc("/chat", s.handleChat)
	return s
}

// Handler returns the root handler with permissive CORS applied.
func (s *Server) Handler() http.Handler {
	return withCORS(s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "Chatbot API is running"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req ChatRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	history := domain.ParseHistory(decodeHistory(req.History), 4)
	reply, err := s.pipeline.Answer(r.Context(), req.Message, history)
	if err != nil {
		// The endpoint never surfaces an unhandled failure to the chat
		// client; a dead completion service degrades the content only.
		log.Printf("warning: answer generation failed: %v", err)
		writeJSON(w, http.StatusOK, ChatResponse{Reply: domain.DegradedReply})
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// decodeHistory turns the raw history field into a value ParseHistory can
// inspect. A history that is not a JSON list degrades to no history.
func decodeHistory(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var entries []any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return entries
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// withCORS allows any origin, mirroring the permissive policy of the chat
// widget's backend.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
