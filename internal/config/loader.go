package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"transcriber": {"googlespeech", "whisper", "whisper-native"},
	"translator":  {"google", "llm"},
	"synthesizer": {"gtts", "openai"},
	"ocr":         {"tesseract"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// `${VAR}` references anywhere in the document are replaced with the value of
// the environment variable VAR before decoding, so secrets like API keys can
// stay out of the file itself.
//
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(raw))))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// The turn pipeline cannot run without recognition and translation.
	if cfg.Providers.Transcriber.Name == "" {
		errs = append(errs, errors.New("providers.transcriber.name is required"))
	}
	if cfg.Providers.Translator.Name == "" {
		errs = append(errs, errors.New("providers.translator.name is required"))
	}

	// Synthesis and OCR are optional; turns degrade to text-only and the
	// document endpoint reports unavailability.
	if cfg.Providers.Synthesizer.Name == "" {
		slog.Warn("providers.synthesizer is not configured; turns will have no spoken reply")
	}
	if cfg.Providers.OCR.Name == "" {
		slog.Warn("providers.ocr is not configured; document extraction will be unavailable")
	}

	// Provider name validation — warn for unknown provider names.
	validateChain("transcriber", cfg.Providers.Transcriber, &errs)
	validateChain("translator", cfg.Providers.Translator, &errs)
	validateChain("synthesizer", cfg.Providers.Synthesizer, &errs)
	validateProviderName("ocr", cfg.Providers.OCR.Name)

	// Catalog extras
	namesSeen := make(map[string]int, len(cfg.Catalog.Extra))
	for i, lang := range cfg.Catalog.Extra {
		prefix := fmt.Sprintf("catalog.extra[%d]", i)
		if lang.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			if prev, ok := namesSeen[lang.Name]; ok {
				errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of catalog.extra[%d]", prefix, lang.Name, prev))
			}
			namesSeen[lang.Name] = i
		}
		if lang.Code == "" {
			errs = append(errs, fmt.Errorf("%s.code is required", prefix))
		}
	}

	// Resilience
	if cfg.Resilience.MaxFailures < 0 {
		errs = append(errs, fmt.Errorf("resilience.max_failures %d must not be negative", cfg.Resilience.MaxFailures))
	}
	if cfg.Resilience.ResetTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("resilience.reset_timeout_seconds %d must not be negative", cfg.Resilience.ResetTimeoutSeconds))
	}
	if cfg.Resilience.HalfOpenMax < 0 {
		errs = append(errs, fmt.Errorf("resilience.half_open_max %d must not be negative", cfg.Resilience.HalfOpenMax))
	}

	return errors.Join(errs...)
}

// validateChain warns for unknown provider names in a chain and rejects
// fallback entries without a name.
func validateChain(kind string, chain ProviderChain, errs *[]error) {
	validateProviderName(kind, chain.Name)
	for i, fb := range chain.Fallbacks {
		if fb.Name == "" {
			*errs = append(*errs, fmt.Errorf("providers.%s.fallbacks[%d].name is required", kind, i))
			continue
		}
		validateProviderName(kind, fb.Name)
	}
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
