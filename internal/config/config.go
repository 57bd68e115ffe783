package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	Document  DocumentConfig
	Chunking  ChunkingConfig
	OpenAI    OpenAIConfig
	Cohere    CohereConfig
	Retrieval RetrievalConfig
	Storage   StorageConfig
	Server    ServerConfig
	Log       LogConfig
}

type DocumentConfig struct {
	// URL is where the source PDF is fetched from when the local copy is missing.
	URL string
	// LocalPath is the cached PDF location. Empty means <data_dir>/<default file>.
	LocalPath string
	// Name identifies the document in citations. Empty means base of LocalPath.
	Name string
}

type ChunkingConfig struct {
	Size    int
	Overlap int
}

type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	EmbedModel  string
	ChatModel   string
	Temperature float64
}

type CohereConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type RetrievalConfig struct {
	// CandidateK is the pre-rerank fetch width.
	CandidateK int
	// TopK is the number of chunks handed to the answerer.
	TopK int
}

type StorageConfig struct {
	DataDir string
}

type ServerConfig struct {
	Port int
}

type LogConfig struct {
	Level string
}

const defaultPDFFile = "ABHIL_Member_Handbook.pdf"

func defaults() Config {
	return Config{
		Document: DocumentConfig{
			URL: "https://www.aetnabetterhealth.com/content/dam/aetna/medicaid/illinois/pdf/ABHIL_Member_Handbook.pdf",
		},
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 100,
		},
		OpenAI: OpenAIConfig{
			BaseURL:     "https://api.openai.com/v1",
			EmbedModel:  "text-embedding-ada-002",
			ChatModel:   "gpt-3.5-turbo",
			Temperature: 0.7,
		},
		Cohere: CohereConfig{
			BaseURL: "https://api.cohere.com",
			Model:   "rerank-english-v3.0",
		},
		Retrieval: RetrievalConfig{
			CandidateK: 10,
			TopK:       5,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Server: ServerConfig{
			Port: 4700,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file
// ($XDG_CONFIG_HOME/askdoc/config.json) and applies ASKDOC_* environment
// overrides. The OpenAI API key is required; its absence is a hard error
// before any work begins. The Cohere key is optional — absence disables
// reranking.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Bare provider variables are accepted as a fallback so the tool works
	// with a conventional .env-style setup.
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Cohere.APIKey == "" {
		cfg.Cohere.APIKey = os.Getenv("COHERE_API_KEY")
	}

	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: OpenAI API key. " +
			"Set it via environment variable OPENAI_API_KEY (or ASKDOC_OPENAI_API_KEY)")
	}

	if cfg.Document.LocalPath == "" {
		cfg.Document.LocalPath = filepath.Join(cfg.Storage.DataDir, defaultPDFFile)
	}
	if cfg.Document.Name == "" {
		cfg.Document.Name = filepath.Base(cfg.Document.LocalPath)
	}

	if cfg.Chunking.Overlap >= cfg.Chunking.Size {
		return Config{}, fmt.Errorf("chunking.overlap (%d) must be smaller than chunking.size (%d)",
			cfg.Chunking.Overlap, cfg.Chunking.Size)
	}

	return cfg, nil
}

// IndexDir returns the directory holding the persisted vector index.
func (c Config) IndexDir() string {
	return filepath.Join(c.Storage.DataDir, "index")
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "askdoc-data"
		}
	}
	return filepath.Join(dir, "askdoc")
}
