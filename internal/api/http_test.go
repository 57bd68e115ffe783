package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/askdoc/askdoc/internal/answer"
	"github.com/askdoc/askdoc/internal/openai"
	"github.com/askdoc/askdoc/internal/retrieval"
)

// --- mocks ---

type mockRetriever struct {
	chunks []retrieval.ContextChunk
	err    error
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string) ([]retrieval.ContextChunk, error) {
	return m.chunks, m.err
}

type mockChat struct {
	response string
	err      error
}

func (m *mockChat) Chat(_ context.Context, _ string, _ []openai.Message, _ float64) (string, error) {
	return m.response, m.err
}

func testDeps(retriever retrieval.Retriever, chat answer.ChatClient) Deps {
	return Deps{
		Retriever: retriever,
		Answerer:  answer.New(retriever, chat, "handbook.pdf", "gpt-3.5-turbo", 0.7),
		DocName:   "handbook.pdf",
	}
}

func testChunks() []retrieval.ContextChunk {
	return []retrieval.ContextChunk{
		{ID: "c1", Text: "chunk one", Page: 3, Source: "handbook.pdf", Score: 0.9},
		{ID: "c2", Text: "chunk two", Page: 5, Source: "handbook.pdf", Score: 0.8},
	}
}

// --- tests ---

func TestHealth(t *testing.T) {
	h := NewHandler(testDeps(&mockRetriever{}, &mockChat{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" || body["document"] != "handbook.pdf" {
		t.Errorf("body = %v", body)
	}
}

func TestSearch(t *testing.T) {
	h := NewHandler(testDeps(&mockRetriever{chunks: testChunks()}, &mockChat{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=coverage", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var results []SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Page != 3 || results[0].Text != "chunk one" {
		t.Errorf("results[0] = %+v", results[0])
	}
}

func TestSearch_LimitTruncates(t *testing.T) {
	h := NewHandler(testDeps(&mockRetriever{chunks: testChunks()}, &mockChat{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=coverage&limit=1", nil))

	var results []SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	h := NewHandler(testDeps(&mockRetriever{}, &mockChat{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearch_RetrieverError(t *testing.T) {
	h := NewHandler(testDeps(&mockRetriever{err: errors.New("index broken")}, &mockChat{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=x", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestAsk(t *testing.T) {
	chat := &mockChat{response: "Concise Answer: Yes.\nReasoning: Page 3 says so."}
	h := NewHandler(testDeps(&mockRetriever{chunks: testChunks()}, chat))

	body := strings.NewReader(`{"question":"is it covered?"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Answer != "Yes." {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if resp.Reasoning != "Page 3 says so." {
		t.Errorf("Reasoning = %q", resp.Reasoning)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(resp.Sources))
	}
	if resp.Sources[0].Page != 3 {
		t.Errorf("sources[0].Page = %d, want 3", resp.Sources[0].Page)
	}
}

func TestAsk_MissingQuestion(t *testing.T) {
	h := NewHandler(testDeps(&mockRetriever{}, &mockChat{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAsk_InvalidBody(t *testing.T) {
	h := NewHandler(testDeps(&mockRetriever{}, &mockChat{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("not json")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAsk_AnswererError(t *testing.T) {
	h := NewHandler(testDeps(&mockRetriever{}, &mockChat{err: errors.New("api down")}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"q"}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error"]["type"] != "api_error" {
		t.Errorf("error type = %q, want api_error", body["error"]["type"])
	}
}
