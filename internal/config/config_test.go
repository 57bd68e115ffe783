package config

import (
	"path/filepath"
	"strings"
	"testing"
)

// fakeBackend is an in-memory ConfigBackend for tests.
type fakeBackend struct {
	strings map[string]string
	ints    map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{strings: map[string]string{}, ints: map[string]int{}}
}

func (f *fakeBackend) GetString(key string) (string, bool, error) {
	v, ok := f.strings[key]
	return v, ok, nil
}

func (f *fakeBackend) GetInt(key string) (int, bool, error) {
	v, ok := f.ints[key]
	return v, ok, nil
}

func (f *fakeBackend) SetString(key, val string) error { f.strings[key] = val; return nil }
func (f *fakeBackend) SetInt(key string, val int) error { f.ints[key] = val; return nil }
func (f *fakeBackend) Delete(key string) error {
	delete(f.strings, key)
	delete(f.ints, key)
	return nil
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ASKDOC_OPENAI_API_KEY", "")
	t.Setenv("COHERE_API_KEY", "")
	t.Setenv("ASKDOC_COHERE_API_KEY", "")
}

func TestLoad_Defaults(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := loadWith(newFakeBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.Chunking.Size != 1000 || cfg.Chunking.Overlap != 100 {
		t.Errorf("chunking defaults = %d/%d, want 1000/100", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if cfg.OpenAI.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", cfg.OpenAI.Temperature)
	}
	if cfg.Retrieval.CandidateK != 10 || cfg.Retrieval.TopK != 5 {
		t.Errorf("retrieval defaults = %d/%d, want 10/5", cfg.Retrieval.CandidateK, cfg.Retrieval.TopK)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("API key = %q, want sk-test", cfg.OpenAI.APIKey)
	}
	if cfg.Cohere.APIKey != "" {
		t.Errorf("cohere key should be empty by default, got %q", cfg.Cohere.APIKey)
	}
	// Derived values.
	if filepath.Base(cfg.Document.LocalPath) != "ABHIL_Member_Handbook.pdf" {
		t.Errorf("local path = %q, want default file name", cfg.Document.LocalPath)
	}
	if cfg.Document.Name != "ABHIL_Member_Handbook.pdf" {
		t.Errorf("document name = %q, want base of local path", cfg.Document.Name)
	}
}

func TestLoad_MissingAPIKeyFatal(t *testing.T) {
	clearKeyEnv(t)

	_, err := loadWith(newFakeBackend())
	if err == nil {
		t.Fatal("expected error when OpenAI API key is missing")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("error should mention the env var, got %q", err.Error())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("ASKDOC_OPENAI_API_KEY", "sk-env")
	t.Setenv("ASKDOC_CHUNKING_SIZE", "500")
	t.Setenv("ASKDOC_OPENAI_TEMPERATURE", "0.2")
	t.Setenv("ASKDOC_DOCUMENT_NAME", "handbook")

	cfg, err := loadWith(newFakeBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Errorf("API key = %q, want sk-env", cfg.OpenAI.APIKey)
	}
	if cfg.Chunking.Size != 500 {
		t.Errorf("chunking.size = %d, want 500", cfg.Chunking.Size)
	}
	if cfg.OpenAI.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", cfg.OpenAI.Temperature)
	}
	if cfg.Document.Name != "handbook" {
		t.Errorf("document.name = %q, want handbook", cfg.Document.Name)
	}
}

func TestLoad_BackendValues(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	b := newFakeBackend()
	b.ints["retrieval.top_k"] = 3
	b.strings["document.local_path"] = "/tmp/doc.pdf"

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("retrieval.top_k = %d, want 3", cfg.Retrieval.TopK)
	}
	if cfg.Document.LocalPath != "/tmp/doc.pdf" {
		t.Errorf("local path = %q, want /tmp/doc.pdf", cfg.Document.LocalPath)
	}
	if cfg.Document.Name != "doc.pdf" {
		t.Errorf("document name = %q, want doc.pdf", cfg.Document.Name)
	}
}

func TestLoad_EnvOverridesBackend(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ASKDOC_RETRIEVAL_TOP_K", "7")

	b := newFakeBackend()
	b.ints["retrieval.top_k"] = 3

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Retrieval.TopK != 7 {
		t.Errorf("retrieval.top_k = %d, want env override 7", cfg.Retrieval.TopK)
	}
}

func TestLoad_OverlapMustBeSmallerThanSize(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ASKDOC_CHUNKING_SIZE", "100")
	t.Setenv("ASKDOC_CHUNKING_OVERLAP", "100")

	if _, err := loadWith(newFakeBackend()); err == nil {
		t.Fatal("expected error when overlap >= size")
	}
}

func TestShowAll_ExcludesSecrets(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-secret")

	cfg, err := loadWith(newFakeBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	for _, k := range ShowAll(cfg) {
		if k.Key == "openai.api_key" || k.Key == "cohere.api_key" {
			t.Errorf("ShowAll should not include secret key %q", k.Key)
		}
		if strings.Contains(k.Value, "sk-secret") {
			t.Errorf("ShowAll leaked a secret in %q", k.Key)
		}
	}
}
