package cohere

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/askdoc/askdoc/internal/errkind"
)

func TestRerank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/rerank" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer co-test" {
			t.Errorf("Authorization = %q, want Bearer co-test", got)
		}
		var req rerankRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("unmarshal request: %v", err)
		}
		if req.TopN != 2 {
			t.Errorf("top_n = %d, want 2", req.TopN)
		}
		if len(req.Documents) != 3 {
			t.Errorf("got %d documents, want 3", len(req.Documents))
		}
		json.NewEncoder(w).Encode(rerankResponse{Results: []Result{
			{Index: 2, Score: 0.95},
			{Index: 0, Score: 0.42},
		}})
	}))
	defer srv.Close()

	c := New(srv.URL, "co-test")
	results, err := c.Rerank(context.Background(), "rerank-english-v3.0", "q", []string{"a", "b", "c"}, 2)
	if err != nil {
		t.Fatalf("Rerank: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Index != 2 || results[0].Score != 0.95 {
		t.Errorf("results[0] = %+v, want index 2 score 0.95", results[0])
	}
}

func TestRerank_EmptyDocuments(t *testing.T) {
	c := New("http://unused", "co-test")
	results, err := c.Rerank(context.Background(), "m", "q", nil, 5)
	if err != nil {
		t.Fatalf("Rerank: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results for empty documents, got %v", results)
	}
}

func TestRerank_IndexOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rerankResponse{Results: []Result{{Index: 9, Score: 0.5}}})
	}))
	defer srv.Close()

	c := New(srv.URL, "co-test")
	if _, err := c.Rerank(context.Background(), "m", "q", []string{"a"}, 1); err == nil {
		t.Error("expected error for out-of-range index")
	}
}

func TestRerank_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid api token"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "co-bad")
	_, err := c.Rerank(context.Background(), "m", "q", []string{"a"}, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := errkind.Classify(err); got != errkind.Auth {
		t.Errorf("Classify = %v, want Auth", got)
	}
}
