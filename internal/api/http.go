// Package api exposes the document QA pipeline over HTTP and MCP.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/askdoc/askdoc/internal/answer"
	"github.com/askdoc/askdoc/internal/retrieval"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Deps holds the dependencies shared by the HTTP and MCP surfaces.
type Deps struct {
	Retriever retrieval.Retriever
	Answerer  *answer.Answerer
	DocName   string
}

// AskRequest is the JSON body for POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the JSON returned by POST /ask.
type AskResponse struct {
	Answer    string       `json:"answer"`
	Reasoning string       `json:"reasoning,omitempty"`
	Sources   []SourceJSON `json:"sources"`
}

// SourceJSON is one citation in an API response.
type SourceJSON struct {
	Page    int    `json:"page"`
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

// SearchResult is one retrieved chunk in a GET /search response.
type SearchResult struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Page   int     `json:"page"`
	Source string  `json:"source"`
	Score  float32 `json:"score"`
}

// NewHandler returns the HTTP API router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth(deps))
	r.Get("/search", handleSearch(deps))
	r.Post("/ask", handleAsk(deps))

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":   "ok",
			"document": deps.DocName,
		})
	}
}

func handleSearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "q is required")
			return
		}
		limit := parseIntParam(r, "limit", 5, 50)

		chunks, err := deps.Retriever.Retrieve(r.Context(), query)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "search failed: %v", err)
			return
		}
		if limit < len(chunks) {
			chunks = chunks[:limit]
		}

		results := make([]SearchResult, len(chunks))
		for i, c := range chunks {
			results[i] = SearchResult{
				ID:     c.ID,
				Text:   c.Text,
				Page:   c.Page,
				Source: c.Source,
				Score:  c.Score,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	}
}

func handleAsk(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Question == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "question is required")
			return
		}

		// Each request is a standalone conversation.
		sess := answer.NewSession()
		result, err := deps.Answerer.Ask(r.Context(), sess, req.Question)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "answering failed: %v", err)
			return
		}

		resp := AskResponse{
			Answer:    result.Concise,
			Reasoning: result.Reasoning,
			Sources:   toSourceJSON(result.Sources),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func toSourceJSON(sources []answer.Source) []SourceJSON {
	out := make([]SourceJSON, len(sources))
	for i, s := range sources {
		out[i] = SourceJSON{Page: s.Page, Source: s.Source, Excerpt: s.Excerpt}
	}
	return out
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
