package provider

import (
	"strings"
	"testing"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"MODEL_PROVIDER", "MODEL_MAX_TOKENS", "MODEL_TEMPERATURE",
		"OLLAMA_HOST", "OLLAMA_MODEL",
		"OPENAI_API_KEY", "OPENAI_MODEL",
		"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT", "AZURE_OPENAI_API_VERSION",
		"BEDROCK_API_KEY", "BEDROCK_ENDPOINT", "BEDROCK_MODEL_ID",
		"GOOGLE_API_KEY", "GEMINI_MODEL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func Test_ConfigFromEnv_Defaults(t *testing.T) {
	clearProviderEnv(t)
	cfg := ConfigFromEnv("")
	if cfg.Backend != BackendOpenAI {
		t.Errorf("default backend: got %q, want openai", cfg.Backend)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("default model: got %q", cfg.Model)
	}
	if cfg.MaxTokens != 1024 {
		t.Errorf("default max tokens: got %d", cfg.MaxTokens)
	}
	if cfg.Temperature != 0 {
		t.Errorf("default temperature: got %f", cfg.Temperature)
	}
}

func Test_ConfigFromEnv_FlagKeyOverridesEnv(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	cfg := ConfigFromEnv("sk-flag")
	if cfg.APIKey != "sk-flag" {
		t.Errorf("want flag key to win, got %q", cfg.APIKey)
	}
}

func Test_ConfigFromEnv_OllamaBackend(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("MODEL_PROVIDER", "ollama")
	t.Setenv("OLLAMA_MODEL", "llama3:8b")
	cfg := ConfigFromEnv("")
	if cfg.Backend != BackendOllama {
		t.Errorf("backend: got %q", cfg.Backend)
	}
	if cfg.BaseURL != "http://localhost:11434" {
		t.Errorf("base url: got %q", cfg.BaseURL)
	}
	if cfg.Model != "llama3:8b" {
		t.Errorf("model: got %q", cfg.Model)
	}
}

func Test_Validate_MissingCredentials(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"openai without key", Config{Backend: BackendOpenAI}, "OPENAI_API_KEY"},
		{"azure without key", Config{Backend: BackendAzure}, "AZURE_OPENAI_API_KEY"},
		{"azure without endpoint", Config{Backend: BackendAzure, APIKey: "k"}, "AZURE_OPENAI_ENDPOINT"},
		{"azure without deployment", Config{Backend: BackendAzure, APIKey: "k", BaseURL: "https://x"}, "AZURE_OPENAI_DEPLOYMENT"},
		{"bedrock without key", Config{Backend: BackendBedrock}, "BEDROCK_API_KEY"},
		{"gemini without key", Config{Backend: BackendGemini}, "GOOGLE_API_KEY"},
		{"unknown backend", Config{Backend: "watson"}, "unknown backend"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if err == nil {
				t.Fatal("want validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func Test_Validate_OllamaNeedsNothing(t *testing.T) {
	t.Parallel()
	cfg := Config{Backend: BackendOllama}
	if err := cfg.Validate(); err != nil {
		t.Errorf("want nil, got %v", err)
	}
}
