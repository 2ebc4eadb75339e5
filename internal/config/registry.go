package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MrWong99/linguacare/pkg/provider/ocr"
	"github.com/MrWong99/linguacare/pkg/provider/synthesize"
	"github.com/MrWong99/linguacare/pkg/provider/transcribe"
	"github.com/MrWong99/linguacare/pkg/provider/translate"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	transcriber map[string]func(ProviderEntry) (transcribe.Provider, error)
	translator  map[string]func(ProviderEntry) (translate.Provider, error)
	synthesizer map[string]func(ProviderEntry) (synthesize.Provider, error)
	ocr         map[string]func(ProviderEntry) (ocr.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		transcriber: make(map[string]func(ProviderEntry) (transcribe.Provider, error)),
		translator:  make(map[string]func(ProviderEntry) (translate.Provider, error)),
		synthesizer: make(map[string]func(ProviderEntry) (synthesize.Provider, error)),
		ocr:         make(map[string]func(ProviderEntry) (ocr.Provider, error)),
	}
}

// RegisterTranscriber registers a speech recognition provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterTranscriber(name string, factory func(ProviderEntry) (transcribe.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcriber[name] = factory
}

// RegisterTranslator registers a translation provider factory under name.
func (r *Registry) RegisterTranslator(name string, factory func(ProviderEntry) (translate.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.translator[name] = factory
}

// RegisterSynthesizer registers a speech synthesis provider factory under name.
func (r *Registry) RegisterSynthesizer(name string, factory func(ProviderEntry) (synthesize.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synthesizer[name] = factory
}

// RegisterOCR registers a document text extraction provider factory under name.
func (r *Registry) RegisterOCR(name string, factory func(ProviderEntry) (ocr.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ocr[name] = factory
}

// CreateTranscriber instantiates a speech recognition provider using the
// factory registered under entry.Name. Returns [ErrProviderNotRegistered] if
// no factory has been registered for that name.
func (r *Registry) CreateTranscriber(entry ProviderEntry) (transcribe.Provider, error) {
	r.mu.RLock()
	factory, ok := r.transcriber[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: transcriber/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateTranslator instantiates a translation provider using the factory
// registered under entry.Name.
func (r *Registry) CreateTranslator(entry ProviderEntry) (translate.Provider, error) {
	r.mu.RLock()
	factory, ok := r.translator[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: translator/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateSynthesizer instantiates a speech synthesis provider using the factory
// registered under entry.Name.
func (r *Registry) CreateSynthesizer(entry ProviderEntry) (synthesize.Provider, error) {
	r.mu.RLock()
	factory, ok := r.synthesizer[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: synthesizer/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateOCR instantiates a document text extraction provider using the factory
// registered under entry.Name.
func (r *Registry) CreateOCR(entry ProviderEntry) (ocr.Provider, error) {
	r.mu.RLock()
	factory, ok := r.ocr[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: ocr/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}
