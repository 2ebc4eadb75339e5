// Package translate defines the Provider interface for machine translation
// backends.
//
// A translate provider wraps a translation service (e.g., the Google Translate
// web endpoint or an instruction-following LLM) behind a single call: text plus
// a source/target language code pair in, translated text out.
//
// Implementations must be safe for concurrent use.
package translate

import "context"

// Provider is the abstraction over any machine translation backend.
type Provider interface {
	// Translate converts text from sourceCode to targetCode. Both codes are ISO
	// language codes from the catalog's translation code space (e.g., "en",
	// "hi", "zh-cn"). An empty sourceCode asks the service to auto-detect where
	// supported.
	//
	// Returns the translated text, which may be empty when the service produced
	// no output for the input. A non-nil error indicates a transport or service
	// failure; callers own the fallback policy for that case.
	Translate(ctx context.Context, text string, sourceCode, targetCode string) (string, error)
}
