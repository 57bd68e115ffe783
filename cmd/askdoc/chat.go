package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/askdoc/askdoc/internal/answer"
	"github.com/askdoc/askdoc/internal/chunker"
	"github.com/askdoc/askdoc/internal/cohere"
	"github.com/askdoc/askdoc/internal/config"
	"github.com/askdoc/askdoc/internal/document"
	"github.com/askdoc/askdoc/internal/errkind"
	"github.com/askdoc/askdoc/internal/index"
	"github.com/askdoc/askdoc/internal/openai"
	"github.com/askdoc/askdoc/internal/retrieval"
)

// pipeline is the assembled QA stack shared by the chat and serve commands.
type pipeline struct {
	store     *index.Store
	retriever retrieval.Retriever
	answerer  *answer.Answerer
	docName   string
}

func (p *pipeline) Close() {
	if err := p.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing index: %v\n", err)
	}
}

func setupLogging(level string) {
	logLevel := slog.LevelWarn
	switch {
	case strings.EqualFold(level, "debug"):
		logLevel = slog.LevelDebug
	case strings.EqualFold(level, "info"):
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// buildPipeline runs the startup sequence: ensure the document is local,
// extract pages, chunk, and build or load the vector index.
func buildPipeline(ctx context.Context, cfg config.Config) (*pipeline, error) {
	printStep("Preparing document %s", cfg.Document.Name)
	fetcher := document.NewFetcher()
	if err := fetcher.EnsureLocal(ctx, cfg.Document.URL, cfg.Document.LocalPath); err != nil {
		return nil, fmt.Errorf("fetching document: %w", err)
	}

	printStep("Extracting text")
	pages, err := document.ExtractPages(cfg.Document.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	slog.Info("document extracted", "pages", len(pages), "chars", document.TotalChars(pages))

	chunks, err := chunker.Split(pages, cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return nil, fmt.Errorf("chunking document: %w", err)
	}
	if len(chunks) == 0 {
		return nil, errkind.Errorf(errkind.Extraction, "document %s produced no text chunks", cfg.Document.Name)
	}

	printStep("Building index (%d chunks)", len(chunks))
	openaiClient := openai.New(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey)
	embedder := index.NewEmbedder(openaiClient, cfg.OpenAI.EmbedModel)
	store, err := index.BuildOrLoad(ctx, cfg.IndexDir(), chunks, embedder)
	if err != nil {
		return nil, err
	}

	var reranker retrieval.RerankClient
	if cfg.Cohere.APIKey != "" {
		reranker = cohere.New(cfg.Cohere.BaseURL, cfg.Cohere.APIKey)
		printStep("Reranking enabled (%s)", cfg.Cohere.Model)
	}
	retriever := retrieval.New(store, embedder, reranker, cfg.Cohere.Model, cfg.Retrieval.CandidateK, cfg.Retrieval.TopK)

	answerer := answer.New(retriever, openaiClient, cfg.Document.Name, cfg.OpenAI.ChatModel, cfg.OpenAI.Temperature)

	return &pipeline{
		store:     store,
		retriever: retriever,
		answerer:  answerer,
		docName:   cfg.Document.Name,
	}, nil
}

func runChat() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		reportError(err)
		return err
	}
	defer p.Close()

	printSuccess("Ready! Ask questions about %s. Type 'exit' to quit.", p.docName)

	sess := answer.NewSession()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(os.Stdout, "\nYou: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") {
			break
		}

		result, err := p.answerer.Ask(ctx, sess, question)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			reportError(err)
			continue
		}

		printAnswer(result)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	fmt.Fprintln(os.Stdout, "\nGoodbye!")
	return nil
}

func printAnswer(result answer.Result) {
	fmt.Fprintf(os.Stdout, "\nChatbot: %s\n", result.Concise)
	if result.Reasoning != "" {
		fmt.Fprintf(os.Stdout, "\n%s %s\n", colorize(colorBold, "Reasoning:"), result.Reasoning)
	}
	if len(result.Sources) > 0 {
		fmt.Fprintln(os.Stdout, "\nSources:")
		for i, s := range result.Sources {
			ref := colorize(colorCyan, fmt.Sprintf("Page %d of %s", s.Page, s.Source))
			fmt.Fprintf(os.Stdout, "- Source %d (%s): %s\n", i+1, ref, s.Excerpt)
		}
	}
}

// reportError prints the error with a category-specific hint when one exists.
func reportError(err error) {
	printError("%v", err)
	if hint := errkind.Hint(errkind.Classify(err)); hint != "" {
		printWarning("%s", hint)
	}
}
