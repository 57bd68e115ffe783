// Package retrieval selects the chunks most relevant to a question. Plain
// similarity search is always available; a reranking pass is layered on top
// when a reranker credential is configured.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/askdoc/askdoc/internal/cohere"
	"github.com/askdoc/askdoc/internal/index"
)

// ContextChunk is a retrieved chunk ready for prompt assembly, with the
// provenance needed to cite it.
type ContextChunk struct {
	ID          string
	Text        string
	Page        int
	Source      string
	StartOffset int
	Score       float32
}

// Searcher is the slice of the index the retrievers need.
type Searcher interface {
	Search(vector []float32, topK int) ([]index.ScoredRecord, error)
}

// Embedder turns a query into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// RerankClient reorders candidate documents by relevance to a query.
type RerankClient interface {
	Rerank(ctx context.Context, model, query string, documents []string, topN int) ([]cohere.Result, error)
}

// Retriever returns the context chunks for a question, most relevant first.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]ContextChunk, error)
}

// New picks the retrieval strategy from what is configured: with a rerank
// client, candidateK chunks are fetched and reranked down to topK; without
// one, a plain top-K similarity search is used.
func New(searcher Searcher, embedder Embedder, reranker RerankClient, rerankModel string, candidateK, topK int) Retriever {
	if reranker == nil {
		return &SimilarityRetriever{
			searcher: searcher,
			embedder: embedder,
			topK:     topK,
		}
	}
	return &RerankRetriever{
		searcher:   searcher,
		embedder:   embedder,
		reranker:   reranker,
		model:      rerankModel,
		candidateK: candidateK,
		topK:       topK,
	}
}

// SimilarityRetriever embeds the query and returns the top-K most similar
// chunks from the index.
type SimilarityRetriever struct {
	searcher Searcher
	embedder Embedder
	topK     int
}

func (r *SimilarityRetriever) Retrieve(ctx context.Context, query string) ([]ContextChunk, error) {
	records, err := searchSimilar(ctx, r.embedder, r.searcher, query, r.topK)
	if err != nil {
		return nil, err
	}
	return toChunks(records), nil
}

// RerankRetriever fetches a wider candidate set by similarity, then asks the
// rerank API to reorder it. If reranking fails the similarity order stands,
// so an unreachable reranker degrades quality rather than breaking answers.
type RerankRetriever struct {
	searcher   Searcher
	embedder   Embedder
	reranker   RerankClient
	model      string
	candidateK int
	topK       int
}

func (r *RerankRetriever) Retrieve(ctx context.Context, query string) ([]ContextChunk, error) {
	records, err := searchSimilar(ctx, r.embedder, r.searcher, query, r.candidateK)
	if err != nil {
		return nil, err
	}
	candidates := toChunks(records)
	if len(candidates) == 0 {
		return nil, nil
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Text
	}

	results, err := r.reranker.Rerank(ctx, r.model, query, documents, r.topK)
	if err != nil {
		slog.Warn("reranking failed, falling back to similarity order", "error", err)
		if len(candidates) > r.topK {
			candidates = candidates[:r.topK]
		}
		return candidates, nil
	}

	reranked := make([]ContextChunk, 0, len(results))
	for _, res := range results {
		c := candidates[res.Index]
		c.Score = float32(res.Score)
		reranked = append(reranked, c)
	}
	return reranked, nil
}

func searchSimilar(ctx context.Context, embedder Embedder, searcher Searcher, query string, k int) ([]index.ScoredRecord, error) {
	vector, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	records, err := searcher.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return records, nil
}

func toChunks(records []index.ScoredRecord) []ContextChunk {
	chunks := make([]ContextChunk, len(records))
	for i, r := range records {
		chunks[i] = ContextChunk{
			ID:          r.ID,
			Text:        r.TextChunk,
			Page:        r.Page,
			Source:      r.Source,
			StartOffset: r.StartOffset,
			Score:       r.Score,
		}
	}
	return chunks
}
