package factory

import (
	"fmt"

	"ai-kbchat-be/pkg/llm"
	"ai-kbchat-be/pkg/llm/deepseek"
	"ai-kbchat-be/pkg/llm/ollama"
)

// NewLLMProvider builds a single backend by provider type.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "deepseek":
		return deepseek.NewDeepSeekProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
