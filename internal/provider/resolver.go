package provider

import (
	"fmt"
	"strings"

	"github.com/asksh/asksh/internal/config"
)

// Resolve creates the LLMProvider selected by cfg.LLM.Provider.
// The per-provider model setting wins over the global llm.model.
func Resolve(cfg *config.Config) (LLMProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LLM.Provider)) {
	case "", "openai":
		key := cfg.Providers.OpenAI.APIKey
		if key == "" {
			return nil, &ProviderError{Provider: "openai", Hint: "set providers.openai.apiKey in config or export OPENAI_API_KEY"}
		}
		return NewOpenAIProvider(key, cfg.Providers.OpenAI.APIBase, pickModel(cfg.Providers.OpenAI.Model, cfg.LLM.Model)), nil

	case "anthropic":
		key := cfg.Providers.Anthropic.APIKey
		if key == "" {
			return nil, &ProviderError{Provider: "anthropic", Hint: "set providers.anthropic.apiKey in config or export ANTHROPIC_API_KEY"}
		}
		return NewAnthropicProvider(key, cfg.Providers.Anthropic.APIBase, pickModel(cfg.Providers.Anthropic.Model, cfg.LLM.Model)), nil

	case "ollama":
		return NewOllamaProvider(cfg.Providers.Ollama.APIBase, pickModel(cfg.Providers.Ollama.Model, cfg.LLM.Model)), nil

	default:
		return nil, &ProviderError{Provider: cfg.LLM.Provider, Hint: fmt.Sprintf("unknown provider %q, supported: openai, anthropic, ollama", cfg.LLM.Provider)}
	}
}

func pickModel(perProvider, global string) string {
	if perProvider != "" {
		return perProvider
	}
	return global
}

// ProviderError is returned when a provider cannot be constructed.
type ProviderError struct {
	Provider string
	Hint     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %q: %s", e.Provider, e.Hint)
}
