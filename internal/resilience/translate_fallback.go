package resilience

import (
	"context"

	"github.com/MrWong99/linguacare/pkg/provider/translate"
)

// TranslatorFallback implements [translate.Provider] with automatic failover
// across multiple translation backends. Each backend has its own circuit
// breaker.
type TranslatorFallback struct {
	group *FallbackGroup[translate.Provider]
}

// Compile-time interface assertion.
var _ translate.Provider = (*TranslatorFallback)(nil)

// NewTranslatorFallback creates a [TranslatorFallback] with primary as the
// preferred backend.
func NewTranslatorFallback(primary translate.Provider, primaryName string, cfg FallbackConfig) *TranslatorFallback {
	return &TranslatorFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional translation provider as a fallback.
func (f *TranslatorFallback) AddFallback(name string, provider translate.Provider) {
	f.group.AddFallback(name, provider)
}

// Translate renders text from sourceCode into targetCode using the first
// healthy provider.
func (f *TranslatorFallback) Translate(ctx context.Context, text string, sourceCode string, targetCode string) (string, error) {
	return ExecuteWithResult(f.group, func(p translate.Provider) (string, error) {
		return p.Translate(ctx, text, sourceCode, targetCode)
	})
}
