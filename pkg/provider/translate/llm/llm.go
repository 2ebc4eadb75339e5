// Package llm provides a translate.Provider backed by an instruction-following
// LLM through github.com/mozilla-ai/any-llm-go, a unified multi-provider
// interface that supports OpenAI, Anthropic, Gemini, Ollama, DeepSeek,
// Mistral, Groq, and more.
//
// Medical conversations benefit from a translator that preserves clinical
// terminology; the system prompt instructs the model to translate literally
// and return nothing but the translated text.
//
// Usage:
//
//	p, err := llm.New("openai", "gpt-4o-mini", anyllmlib.WithAPIKey("sk-..."))
//	out, err := p.Translate(ctx, "My stomach hurts", "en", "hi")
package llm

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/MrWong99/linguacare/pkg/provider/translate"
)

// systemPrompt constrains the model to act as a pure translation engine.
const systemPrompt = "You are a medical interpreter. Translate the user's text from the source " +
	"language to the target language. Preserve clinical terms, dosages, and numbers exactly. " +
	"Respond with the translated text only — no explanations, no quotation marks."

// Compile-time assertion that Provider implements translate.Provider.
var _ translate.Provider = (*Provider)(nil)

// Provider implements translate.Provider by wrapping any-llm-go.
type Provider struct {
	backend anyllmlib.Provider
	model   string
}

// New creates a Provider backed by the given LLM provider name.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama",
// "deepseek", "mistral", "groq", "llamacpp", "llamafile". model is the
// specific model to use (e.g., "gpt-4o-mini", "claude-3-5-haiku-latest").
//
// opts are any-llm-go configuration options (e.g., anyllmlib.WithAPIKey,
// anyllmlib.WithBaseURL). If no API key option is provided, the provider
// falls back to the relevant environment variable (OPENAI_API_KEY, …).
func New(providerName string, model string, opts ...anyllmlib.Option) (*Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("llm: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("llm: model must not be empty")
	}
	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: create %q backend: %w", providerName, err)
	}
	return &Provider{backend: backend, model: model}, nil
}

// NewWithBackend creates a Provider over an existing any-llm-go backend.
// Useful in tests.
func NewWithBackend(backend anyllmlib.Provider, model string) (*Provider, error) {
	if backend == nil {
		return nil, fmt.Errorf("llm: backend must not be nil")
	}
	if model == "" {
		return nil, fmt.Errorf("llm: model must not be empty")
	}
	return &Provider{backend: backend, model: model}, nil
}

// createBackend creates the underlying any-llm-go provider for the given name.
func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	case "llamafile":
		return llamafile.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, deepseek, mistral, groq, llamacpp, llamafile", providerName)
	}
}

// Translate implements translate.Provider.
func (p *Provider) Translate(ctx context.Context, text, sourceCode, targetCode string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if targetCode == "" {
		return "", fmt.Errorf("llm: targetCode must not be empty")
	}

	source := sourceCode
	if source == "" {
		source = "the detected source language"
	}

	temp := 0.2
	params := anyllmlib.CompletionParams{
		Model:       p.model,
		Messages:    buildMessages(text, source, targetCode),
		Temperature: &temp,
	}

	resp, err := p.backend.Completion(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.ContentString()), nil
}

// buildMessages assembles the system and user messages for one translation
// request.
func buildMessages(text, source, target string) []anyllmlib.Message {
	return []anyllmlib.Message{
		{Role: anyllmlib.RoleSystem, Content: systemPrompt},
		{
			Role: anyllmlib.RoleUser,
			Content: fmt.Sprintf("Source language: %s\nTarget language: %s\n\n%s",
				source, target, text),
		},
	}
}
