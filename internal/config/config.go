// Package config provides the configuration schema, loader, file watcher, and
// provider registry for the LinguaCare translation server.
package config

// LogLevel controls log verbosity for the LinguaCare server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for LinguaCare.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Resilience ResilienceConfig `yaml:"resilience"`
}

// ServerConfig holds network and logging settings for the LinguaCare server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each field selects a named provider registered in the
// [Registry]. The speech stages take a chain so that a failing primary can be
// bypassed in favour of ordered fallbacks.
type ProvidersConfig struct {
	Transcriber ProviderChain `yaml:"transcriber"`
	Translator  ProviderChain `yaml:"translator"`
	Synthesizer ProviderChain `yaml:"synthesizer"`
	OCR         ProviderEntry `yaml:"ocr"`
}

// ProviderChain is a primary provider plus an ordered list of fallbacks that
// are tried when the primary fails or its circuit breaker is open.
type ProviderChain struct {
	ProviderEntry `yaml:",inline"`

	// Fallbacks are tried in order after the primary.
	Fallbacks []ProviderEntry `yaml:"fallbacks"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "whisper", "gtts").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o-mini",
	// "ggml-base.bin", "tts-1").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// CatalogConfig extends the built-in language catalog.
type CatalogConfig struct {
	// Extra lists additional languages merged over the built-in table. An
	// entry whose name matches a built-in language overrides it.
	Extra []LanguageEntry `yaml:"extra"`
}

// LanguageEntry declares one language for the catalog.
type LanguageEntry struct {
	// Name is the human-readable language name (e.g., "Frisian").
	Name string `yaml:"name"`

	// Code is the BCP-47 style code used for recognition, translation, and
	// synthesis (e.g., "fy").
	Code string `yaml:"code"`

	// OCRCode is the tesseract language pack code (e.g., "frk"). Leave empty
	// when no pack exists; document extraction then falls back to English.
	OCRCode string `yaml:"ocr_code"`
}

// ResilienceConfig tunes the per-provider circuit breakers.
type ResilienceConfig struct {
	// MaxFailures is the number of consecutive failures before a provider's
	// breaker opens. 0 means the resilience layer default.
	MaxFailures int `yaml:"max_failures"`

	// ResetTimeoutSeconds is how long an open breaker waits before probing
	// again. 0 means the resilience layer default.
	ResetTimeoutSeconds int `yaml:"reset_timeout_seconds"`

	// HalfOpenMax is the number of successful probes required to close a
	// half-open breaker. 0 means the resilience layer default.
	HalfOpenMax int `yaml:"half_open_max"`
}
