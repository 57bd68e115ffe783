package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "document.url", typ: kString, env: "ASKDOC_DOCUMENT_URL",
		apply:   func(cfg *Config, v any) { cfg.Document.URL = v.(string) },
		extract: func(cfg Config) any { return cfg.Document.URL },
	},
	{
		key: "document.local_path", typ: kString, env: "ASKDOC_DOCUMENT_LOCAL_PATH",
		apply:   func(cfg *Config, v any) { cfg.Document.LocalPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Document.LocalPath },
	},
	{
		key: "document.name", typ: kString, env: "ASKDOC_DOCUMENT_NAME",
		apply:   func(cfg *Config, v any) { cfg.Document.Name = v.(string) },
		extract: func(cfg Config) any { return cfg.Document.Name },
	},
	{
		key: "chunking.size", typ: kInt, env: "ASKDOC_CHUNKING_SIZE",
		apply:   func(cfg *Config, v any) { cfg.Chunking.Size = v.(int) },
		extract: func(cfg Config) any { return cfg.Chunking.Size },
	},
	{
		key: "chunking.overlap", typ: kInt, env: "ASKDOC_CHUNKING_OVERLAP",
		apply:   func(cfg *Config, v any) { cfg.Chunking.Overlap = v.(int) },
		extract: func(cfg Config) any { return cfg.Chunking.Overlap },
	},
	{
		key: "openai.base_url", typ: kString, env: "ASKDOC_OPENAI_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.BaseURL },
	},
	{
		key: "openai.api_key", typ: kString, env: "ASKDOC_OPENAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.OpenAI.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.APIKey },
	},
	{
		key: "openai.embed_model", typ: kString, env: "ASKDOC_OPENAI_EMBED_MODEL",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.EmbedModel = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.EmbedModel },
	},
	{
		key: "openai.chat_model", typ: kString, env: "ASKDOC_OPENAI_CHAT_MODEL",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.ChatModel = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.ChatModel },
	},
	{
		key: "openai.temperature", typ: kFloat, env: "ASKDOC_OPENAI_TEMPERATURE",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.Temperature = v.(float64) },
		extract: func(cfg Config) any { return cfg.OpenAI.Temperature },
	},
	{
		key: "cohere.base_url", typ: kString, env: "ASKDOC_COHERE_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Cohere.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Cohere.BaseURL },
	},
	{
		key: "cohere.api_key", typ: kString, env: "ASKDOC_COHERE_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Cohere.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Cohere.APIKey },
	},
	{
		key: "cohere.model", typ: kString, env: "ASKDOC_COHERE_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Cohere.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Cohere.Model },
	},
	{
		key: "retrieval.candidate_k", typ: kInt, env: "ASKDOC_RETRIEVAL_CANDIDATE_K",
		apply:   func(cfg *Config, v any) { cfg.Retrieval.CandidateK = v.(int) },
		extract: func(cfg Config) any { return cfg.Retrieval.CandidateK },
	},
	{
		key: "retrieval.top_k", typ: kInt, env: "ASKDOC_RETRIEVAL_TOP_K",
		apply:   func(cfg *Config, v any) { cfg.Retrieval.TopK = v.(int) },
		extract: func(cfg Config) any { return cfg.Retrieval.TopK },
	},
	{
		key: "storage.data_dir", typ: kString, env: "ASKDOC_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "server.port", typ: kInt, env: "ASKDOC_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "log.level", typ: kString, env: "ASKDOC_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.apply(cfg, f)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse float from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
