// Package ocr defines the Provider interface for document recognition
// backends.
//
// An OCR provider wraps an optical character recognition service (e.g., a
// tesseract-server instance) and extracts text from a photographed or scanned
// document. OCR has a narrower language space than translation — providers
// receive codes from the catalog's recognition mapping, not translation codes.
//
// An empty result means the service found no text; that is reported to the
// user, never raised as a failure. Errors are reserved for transport problems.
//
// Implementations must be safe for concurrent use.
package ocr

import "context"

// Provider is the abstraction over any document recognition backend.
type Provider interface {
	// Recognize extracts text from the image file at imagePath. languageHint is
	// the OCR-specific language code (e.g., "eng", "hin") used to select the
	// recognition model; implementations fall back to their default model when
	// the hint is empty.
	//
	// Returns the recognized text, which may be empty. A non-nil error
	// indicates the service could not be consulted at all.
	Recognize(ctx context.Context, imagePath string, languageHint string) (string, error)
}
