package llm

import (
	"context"
	"testing"
)

type stubProvider struct {
	name string
}

func (s *stubProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return s.name, nil
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return s.name, nil
}

func (s *stubProvider) Stream(ctx context.Context, history []Message, options ...Option) (<-chan StreamDelta, error) {
	ch := make(chan StreamDelta)
	close(ch)
	return ch, nil
}

func TestRegistryResolve(t *testing.T) {
	deepseek := &stubProvider{name: "deepseek"}
	ollama := &stubProvider{name: "ollama"}

	tests := []struct {
		name         string
		defaultModel string
		register     map[string]LLMProvider
		request      string
		wantKey      string
	}{
		{
			name:         "exact match",
			defaultModel: "deepseek",
			register:     map[string]LLMProvider{"deepseek": deepseek, "ollama": ollama},
			request:      "ollama",
			wantKey:      "ollama",
		},
		{
			name:         "unknown key falls back to default",
			defaultModel: "deepseek",
			register:     map[string]LLMProvider{"deepseek": deepseek, "ollama": ollama},
			request:      "gpt-9000",
			wantKey:      "deepseek",
		},
		{
			name:         "empty key uses default",
			defaultModel: "deepseek",
			register:     map[string]LLMProvider{"deepseek": deepseek},
			request:      "",
			wantKey:      "deepseek",
		},
		{
			name:         "request is case-insensitive",
			defaultModel: "deepseek",
			register:     map[string]LLMProvider{"deepseek": deepseek},
			request:      "DeepSeek",
			wantKey:      "deepseek",
		},
		{
			name:         "missing default falls back to first sorted",
			defaultModel: "deepseek",
			register:     map[string]LLMProvider{"ollama": ollama, "zeta": &stubProvider{name: "zeta"}},
			request:      "unknown",
			wantKey:      "ollama",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(tt.defaultModel)
			for name, provider := range tt.register {
				r.Register(name, provider)
			}

			provider, key, err := r.Resolve(tt.request)
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.request, err)
			}
			if key != tt.wantKey {
				t.Errorf("resolved key = %q, want %q", key, tt.wantKey)
			}
			if provider != tt.register[tt.wantKey] {
				t.Errorf("resolved provider is not the one registered under %q", tt.wantKey)
			}
		})
	}
}

func TestRegistryResolveEmpty(t *testing.T) {
	r := NewRegistry("deepseek")

	if _, _, err := r.Resolve("deepseek"); err == nil {
		t.Fatal("expected error from empty registry")
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry("deepseek")
	r.Register("Ollama", &stubProvider{})
	r.Register("deepseek", &stubProvider{})

	names := r.Names()
	if len(names) != 2 || names[0] != "deepseek" || names[1] != "ollama" {
		t.Errorf("Names() = %v, want [deepseek ollama]", names)
	}
}
