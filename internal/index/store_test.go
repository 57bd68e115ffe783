package index

import (
	"testing"
	"time"
)

func testRecord(id string, page int, embedding []float32) Record {
	return Record{
		ID:        id,
		Source:    "handbook.pdf",
		Page:      page,
		TextChunk: "text for " + id,
		Embedding: embedding,
		CreatedAt: time.Now().UTC(),
	}
}

func TestStore_InsertAndCount(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	records := []Record{
		testRecord("a", 1, []float32{1, 0, 0}),
		testRecord("b", 2, []float32{0, 1, 0}),
	}
	if err := s.Insert(records); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}

func TestStore_SearchRanksBySimilarity(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	records := []Record{
		testRecord("exact", 1, []float32{1, 0, 0}),
		testRecord("close", 2, []float32{0.9, 0.1, 0}),
		testRecord("orthogonal", 3, []float32{0, 1, 0}),
		testRecord("opposite", 4, []float32{-1, 0, 0}),
	}
	if err := s.Insert(records); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := s.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "exact" {
		t.Errorf("results[0].ID = %q, want exact", results[0].ID)
	}
	if results[1].ID != "close" {
		t.Errorf("results[1].ID = %q, want close", results[1].ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted descending: %v then %v", results[0].Score, results[1].Score)
	}
	if results[0].Page != 1 || results[0].Source != "handbook.pdf" {
		t.Errorf("provenance lost: %+v", results[0].Record)
	}
}

func TestStore_SearchTopKLargerThanIndex(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Insert([]Record{testRecord("only", 1, []float32{1, 1, 1})}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := s.Search([]float32{1, 1, 1}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestStore_SearchEmptyIndex(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	results, err := s.Search([]float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
}

func TestStore_SearchZeroVector(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Insert([]Record{testRecord("a", 1, []float32{1, 0})}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	results, err := s.Search([]float32{0, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results for zero query vector, got %v", results)
	}
}

func TestEncodeDecodeFloat32s(t *testing.T) {
	original := []float32{0.1, -2.5, 3.14159, 0}
	decoded, err := decodeFloat32s(encodeFloat32s(original))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("got %d values, want %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Errorf("decoded[%d] = %v, want %v", i, decoded[i], original[i])
		}
	}

	if _, err := decodeFloat32s([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated blob")
	}
}

func TestCosine(t *testing.T) {
	a := []float32{1, 0}
	if got := cosine(a, []float32{1, 0}, norm(a)); got < 0.999 {
		t.Errorf("cosine of identical vectors = %v, want ~1", got)
	}
	if got := cosine(a, []float32{0, 1}, norm(a)); got != 0 {
		t.Errorf("cosine of orthogonal vectors = %v, want 0", got)
	}
	if got := cosine(a, []float32{1, 0, 0}, norm(a)); got != 0 {
		t.Errorf("cosine of mismatched lengths = %v, want 0", got)
	}
}
