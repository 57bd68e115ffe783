package index

import (
	"context"
	"log/slog"

	"github.com/askdoc/askdoc/internal/chunker"
	"github.com/askdoc/askdoc/internal/errkind"
)

// BuildOrLoad opens the index at dir and, if it is empty, embeds the given
// chunks and populates it. A non-empty index is reused as-is without any
// embedding calls; pass a fresh dir (or delete the old one) to rebuild.
func BuildOrLoad(ctx context.Context, dir string, chunks []chunker.Chunk, embedder *Embedder) (*Store, error) {
	store, err := Open(dir)
	if err != nil {
		return nil, errkind.Errorf(errkind.IndexBuild, "opening index: %w", err)
	}

	count, err := store.Count()
	if err != nil {
		store.Close()
		return nil, errkind.Errorf(errkind.IndexBuild, "counting index records: %w", err)
	}
	if count > 0 {
		slog.Info("reusing existing index", "records", count)
		return store, nil
	}

	slog.Info("building index", "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		store.Close()
		return nil, errkind.Errorf(errkind.IndexBuild, "embedding chunks: %w", err)
	}

	records := make([]Record, len(chunks))
	for i, c := range chunks {
		records[i] = Record{
			ID:          c.ID,
			Source:      c.Source,
			Page:        c.Page,
			StartOffset: c.StartOffset,
			TextChunk:   c.Text,
			Embedding:   vectors[i],
		}
	}
	if err := store.Insert(records); err != nil {
		store.Close()
		return nil, errkind.Errorf(errkind.IndexBuild, "storing index records: %w", err)
	}

	slog.Info("index built", "records", len(records))
	return store, nil
}
