package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/askdoc/askdoc/internal/openai"
	"github.com/askdoc/askdoc/internal/retrieval"
)

// excerptLen is the number of runes of chunk text shown per cited source.
const excerptLen = 150

// maxSources caps how many unique page citations a Result carries.
const maxSources = 3

// Source cites one document page that supported the answer.
type Source struct {
	Page    int
	Source  string
	Excerpt string
}

// Result is a parsed answer with its supporting citations.
type Result struct {
	Concise   string
	Reasoning string
	Sources   []Source
}

// ChatClient is the slice of the API client the answerer needs.
type ChatClient interface {
	Chat(ctx context.Context, model string, messages []openai.Message, temperature float64) (string, error)
}

// Answerer answers questions about a single document using retrieved context.
type Answerer struct {
	retriever   retrieval.Retriever
	chat        ChatClient
	docName     string
	model       string
	temperature float64
}

// New creates an Answerer over the given retriever and chat client.
func New(retriever retrieval.Retriever, chat ChatClient, docName, model string, temperature float64) *Answerer {
	return &Answerer{
		retriever:   retriever,
		chat:        chat,
		docName:     docName,
		model:       model,
		temperature: temperature,
	}
}

// Ask answers question in the context of the session's history. The exchange
// is appended to the session only on success, so a failed turn leaves the
// conversation exactly as it was.
func (a *Answerer) Ask(ctx context.Context, sess *Session, question string) (Result, error) {
	chunks, err := a.retriever.Retrieve(ctx, question)
	if err != nil {
		return Result{}, fmt.Errorf("retrieving context: %w", err)
	}

	messages := buildMessages(a.docName, chunks, sess.Turns(), question)
	raw, err := a.chat.Chat(ctx, a.model, messages, a.temperature)
	if err != nil {
		return Result{}, fmt.Errorf("generating answer: %w", err)
	}

	concise, reasoning := splitAnswer(raw)
	result := Result{
		Concise:   concise,
		Reasoning: reasoning,
		Sources:   citeSources(chunks),
	}

	sess.append(question, concise)
	return result, nil
}

// splitAnswer parses the model output into concise and reasoning parts.
// Output without the expected markers is returned whole as the concise
// answer so a format drift never loses content.
func splitAnswer(raw string) (concise, reasoning string) {
	if !strings.Contains(raw, conciseMarker) {
		return strings.TrimSpace(raw), ""
	}
	parts := strings.SplitN(raw, reasoningMarker, 2)
	concise = strings.TrimSpace(strings.Replace(parts[0], conciseMarker, "", 1))
	if len(parts) > 1 {
		reasoning = strings.TrimSpace(parts[1])
	}
	return concise, reasoning
}

// citeSources deduplicates chunks by (page, source) in retrieval order and
// returns at most maxSources citations with short excerpts.
func citeSources(chunks []retrieval.ContextChunk) []Source {
	type pageKey struct {
		page   int
		source string
	}
	seen := make(map[pageKey]bool)

	var sources []Source
	for _, c := range chunks {
		key := pageKey{page: c.Page, source: c.Source}
		if seen[key] {
			continue
		}
		seen[key] = true
		sources = append(sources, Source{
			Page:    c.Page,
			Source:  c.Source,
			Excerpt: excerpt(c.Text),
		})
		if len(sources) >= maxSources {
			break
		}
	}
	return sources
}

// excerpt returns the first excerptLen runes with newlines flattened to spaces.
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) > excerptLen {
		runes = runes[:excerptLen]
	}
	return strings.ReplaceAll(string(runes), "\n", " ")
}
