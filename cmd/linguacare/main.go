// Command linguacare is the main entry point for the LinguaCare translation server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/MrWong99/linguacare/internal/catalog"
	"github.com/MrWong99/linguacare/internal/config"
	"github.com/MrWong99/linguacare/internal/conversation"
	"github.com/MrWong99/linguacare/internal/health"
	"github.com/MrWong99/linguacare/internal/observe"
	"github.com/MrWong99/linguacare/internal/pipeline"
	"github.com/MrWong99/linguacare/internal/resilience"
	"github.com/MrWong99/linguacare/internal/server"
	"github.com/MrWong99/linguacare/pkg/provider/ocr"
	"github.com/MrWong99/linguacare/pkg/provider/ocr/tesseract"
	"github.com/MrWong99/linguacare/pkg/provider/synthesize"
	"github.com/MrWong99/linguacare/pkg/provider/synthesize/gtts"
	oaitts "github.com/MrWong99/linguacare/pkg/provider/synthesize/openai"
	"github.com/MrWong99/linguacare/pkg/provider/transcribe"
	"github.com/MrWong99/linguacare/pkg/provider/transcribe/googlespeech"
	"github.com/MrWong99/linguacare/pkg/provider/transcribe/whisper"
	"github.com/MrWong99/linguacare/pkg/provider/translate"
	"github.com/MrWong99/linguacare/pkg/provider/translate/googlexlate"
	"github.com/MrWong99/linguacare/pkg/provider/translate/llm"
)

func main() {
	os.Exit(run())
}

// logLevel is shared between the logger and the config watcher so log level
// changes apply without a restart.
var logLevel slog.LevelVar

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "linguacare: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "linguacare: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("linguacare starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "linguacare",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// ── Instantiate provider chains ───────────────────────────────────────────
	fbCfg := fallbackConfig(cfg.Resilience)

	transcriber, err := buildTranscriber(cfg, reg, fbCfg)
	if err != nil {
		slog.Error("failed to build transcriber", "err", err)
		return 1
	}
	translator, err := buildTranslator(cfg, reg, fbCfg)
	if err != nil {
		slog.Error("failed to build translator", "err", err)
		return 1
	}
	synthesizer, err := buildSynthesizer(cfg, reg, fbCfg)
	if err != nil {
		slog.Error("failed to build synthesizer", "err", err)
		return 1
	}
	ocrEngine, err := buildOCR(cfg, reg)
	if err != nil {
		slog.Error("failed to build ocr engine", "err", err)
		return 1
	}

	// ── Catalog, conversation log, pipeline ───────────────────────────────────
	cat := catalog.New(catalogExtras(cfg.Catalog)...)
	log := conversation.NewLog()

	runnerOpts := []pipeline.Option{pipeline.WithMetrics(observe.DefaultMetrics())}
	if synthesizer != nil {
		runnerOpts = append(runnerOpts, pipeline.WithSynthesizer(synthesizer))
	}
	if ocrEngine != nil {
		runnerOpts = append(runnerOpts, pipeline.WithOCR(ocrEngine))
	}
	runner := pipeline.NewRunner(transcriber, translator, cat, runnerOpts...)

	// ── HTTP server ───────────────────────────────────────────────────────────
	srvOpts := []server.Option{
		server.WithHealth(health.New(readinessCheckers(cfg)...)),
	}
	if cfg.Server.TLS != nil {
		srvOpts = append(srvOpts, server.WithTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile))
	}
	srv := server.New(cfg.Server.ListenAddr, runner, log, cat, srvOpts...)

	// ── Config hot-reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		applyConfigChange(old, new, cat)
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg, cat)

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// builtinProviders maps provider category names to the implementations that
// ship with LinguaCare. Used for startup logging.
var builtinProviders = map[string][]string{
	"transcriber": {"googlespeech", "whisper", "whisper-native"},
	"translator":  {"google", "llm"},
	"synthesizer": {"gtts", "openai"},
	"ocr":         {"tesseract"},
}

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── Transcribers ──────────────────────────────────────────────────────────

	reg.RegisterTranscriber("googlespeech", func(entry config.ProviderEntry) (transcribe.Provider, error) {
		var opts []googlespeech.Option
		if entry.APIKey != "" {
			opts = append(opts, googlespeech.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, googlespeech.WithBaseURL(entry.BaseURL))
		}
		return googlespeech.New(opts...)
	})

	reg.RegisterTranscriber("whisper", func(entry config.ProviderEntry) (transcribe.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	reg.RegisterTranscriber("whisper-native", func(entry config.ProviderEntry) (transcribe.Provider, error) {
		modelPath := entry.Model
		if modelPath == "" {
			modelPath = optString(entry.Options, "model_path")
		}
		return whisper.NewNative(modelPath)
	})

	// ── Translators ───────────────────────────────────────────────────────────

	reg.RegisterTranslator("google", func(entry config.ProviderEntry) (translate.Provider, error) {
		var opts []googlexlate.Option
		if entry.BaseURL != "" {
			opts = append(opts, googlexlate.WithBaseURL(entry.BaseURL))
		}
		return googlexlate.New(opts...)
	})

	reg.RegisterTranslator("llm", func(entry config.ProviderEntry) (translate.Provider, error) {
		backend := optString(entry.Options, "backend")
		if backend == "" {
			backend = "openai"
		}
		var opts []anyllmlib.Option
		if entry.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return llm.New(backend, entry.Model, opts...)
	})

	// ── Synthesizers ──────────────────────────────────────────────────────────

	reg.RegisterSynthesizer("gtts", func(entry config.ProviderEntry) (synthesize.Provider, error) {
		var opts []gtts.Option
		if entry.BaseURL != "" {
			opts = append(opts, gtts.WithBaseURL(entry.BaseURL))
		}
		return gtts.New(opts...)
	})

	reg.RegisterSynthesizer("openai", func(entry config.ProviderEntry) (synthesize.Provider, error) {
		var opts []oaitts.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaitts.WithBaseURL(entry.BaseURL))
		}
		if voice := optString(entry.Options, "voice"); voice != "" {
			opts = append(opts, oaitts.WithVoice(voice))
		}
		return oaitts.New(entry.APIKey, entry.Model, opts...)
	})

	// ── OCR ───────────────────────────────────────────────────────────────────

	reg.RegisterOCR("tesseract", func(entry config.ProviderEntry) (ocr.Provider, error) {
		var opts []tesseract.Option
		if hw := optString(entry.Options, "handwriting_url"); hw != "" {
			opts = append(opts, tesseract.WithHandwritingURL(hw))
		}
		return tesseract.New(entry.BaseURL, opts...)
	})

	// Debug log of all registered providers.
	for kind, names := range builtinProviders {
		for _, name := range names {
			slog.Debug("registered provider", "kind", kind, "name", name)
		}
	}
}

// fallbackConfig converts the YAML resilience block into the breaker settings
// shared by every provider chain. Zero values defer to the resilience defaults.
func fallbackConfig(rc config.ResilienceConfig) resilience.FallbackConfig {
	return resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures:  rc.MaxFailures,
			ResetTimeout: time.Duration(rc.ResetTimeoutSeconds) * time.Second,
			HalfOpenMax:  rc.HalfOpenMax,
		},
	}
}

// buildTranscriber instantiates the configured speech recognition chain: the
// primary wrapped in a circuit breaker, plus any fallbacks in order.
func buildTranscriber(cfg *config.Config, reg *config.Registry, fbCfg resilience.FallbackConfig) (transcribe.Provider, error) {
	chain := cfg.Providers.Transcriber
	primary, err := reg.CreateTranscriber(chain.ProviderEntry)
	if err != nil {
		return nil, fmt.Errorf("create transcriber %q: %w", chain.Name, err)
	}
	slog.Info("provider created", "kind", "transcriber", "name", chain.Name)

	fb := resilience.NewTranscriberFallback(primary, chain.Name, fbCfg)
	for _, entry := range chain.Fallbacks {
		p, err := reg.CreateTranscriber(entry)
		if err != nil {
			slog.Warn("skipping transcriber fallback", "name", entry.Name, "err", err)
			continue
		}
		fb.AddFallback(entry.Name, p)
		slog.Info("fallback registered", "kind", "transcriber", "name", entry.Name)
	}
	return fb, nil
}

// buildTranslator instantiates the configured translation chain.
func buildTranslator(cfg *config.Config, reg *config.Registry, fbCfg resilience.FallbackConfig) (translate.Provider, error) {
	chain := cfg.Providers.Translator
	primary, err := reg.CreateTranslator(chain.ProviderEntry)
	if err != nil {
		return nil, fmt.Errorf("create translator %q: %w", chain.Name, err)
	}
	slog.Info("provider created", "kind", "translator", "name", chain.Name)

	fb := resilience.NewTranslatorFallback(primary, chain.Name, fbCfg)
	for _, entry := range chain.Fallbacks {
		p, err := reg.CreateTranslator(entry)
		if err != nil {
			slog.Warn("skipping translator fallback", "name", entry.Name, "err", err)
			continue
		}
		fb.AddFallback(entry.Name, p)
		slog.Info("fallback registered", "kind", "translator", "name", entry.Name)
	}
	return fb, nil
}

// buildSynthesizer instantiates the configured speech synthesis chain, or
// returns nil when none is configured. Turns then complete without audio.
func buildSynthesizer(cfg *config.Config, reg *config.Registry, fbCfg resilience.FallbackConfig) (synthesize.Provider, error) {
	chain := cfg.Providers.Synthesizer
	if chain.Name == "" {
		slog.Info("no synthesizer configured — spoken replies disabled")
		return nil, nil
	}
	primary, err := reg.CreateSynthesizer(chain.ProviderEntry)
	if err != nil {
		return nil, fmt.Errorf("create synthesizer %q: %w", chain.Name, err)
	}
	slog.Info("provider created", "kind", "synthesizer", "name", chain.Name)

	fb := resilience.NewSynthesizerFallback(primary, chain.Name, fbCfg)
	for _, entry := range chain.Fallbacks {
		p, err := reg.CreateSynthesizer(entry)
		if err != nil {
			slog.Warn("skipping synthesizer fallback", "name", entry.Name, "err", err)
			continue
		}
		fb.AddFallback(entry.Name, p)
		slog.Info("fallback registered", "kind", "synthesizer", "name", entry.Name)
	}
	return fb, nil
}

// buildOCR instantiates the configured document recognition engine, or returns
// nil when none is configured. The documents endpoint then answers 503.
func buildOCR(cfg *config.Config, reg *config.Registry) (ocr.Provider, error) {
	entry := cfg.Providers.OCR
	if entry.Name == "" {
		slog.Info("no ocr engine configured — document uploads disabled")
		return nil, nil
	}
	p, err := reg.CreateOCR(entry)
	if err != nil {
		return nil, fmt.Errorf("create ocr engine %q: %w", entry.Name, err)
	}
	slog.Info("provider created", "kind", "ocr", "name", entry.Name)
	return p, nil
}

// readinessCheckers probes every configured provider endpoint with an
// explicit base URL. Hosted APIs without a custom URL are assumed reachable.
func readinessCheckers(cfg *config.Config) []health.Checker {
	var checkers []health.Checker
	add := func(kind, url string) {
		if url != "" {
			checkers = append(checkers, health.Reachable(kind, url, nil))
		}
	}
	add("transcriber", cfg.Providers.Transcriber.BaseURL)
	add("translator", cfg.Providers.Translator.BaseURL)
	add("synthesizer", cfg.Providers.Synthesizer.BaseURL)
	add("ocr", cfg.Providers.OCR.BaseURL)
	return checkers
}

// catalogExtras converts the YAML catalog block into catalog entries.
func catalogExtras(cc config.CatalogConfig) []catalog.Entry {
	extras := make([]catalog.Entry, 0, len(cc.Extra))
	for _, e := range cc.Extra {
		extras = append(extras, catalog.Entry{Name: e.Name, Code: e.Code, OCRCode: e.OCRCode})
	}
	return extras
}

// applyConfigChange applies the hot-reloadable parts of a config change and
// logs the rest.
func applyConfigChange(old, new *config.Config, cat *catalog.Catalog) {
	diff := config.Diff(old, new)

	if diff.LogLevelChanged {
		logLevel.Set(slogLevel(diff.NewLogLevel))
		slog.Info("log level changed", "level", diff.NewLogLevel)
	}
	if diff.CatalogChanged {
		cat.Reload(catalogExtras(new.Catalog))
		slog.Info("language catalog reloaded", "extra", len(new.Catalog.Extra))
	}
	if diff.RestartRequired {
		slog.Warn("config change requires a restart to take effect")
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, cat *catalog.Catalog) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║       LinguaCare — startup summary    ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printChain("Transcriber", cfg.Providers.Transcriber)
	printChain("Translator", cfg.Providers.Translator)
	printChain("Synthesizer", cfg.Providers.Synthesizer)
	printProvider("OCR", cfg.Providers.OCR.Name, cfg.Providers.OCR.Model)
	fmt.Printf("║  Languages       : %-19d ║\n", len(cat.Names()))
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	if cfg.Server.TLS != nil {
		fmt.Printf("║  TLS             : %-19s ║\n", "enabled")
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printChain(kind string, chain config.ProviderChain) {
	name := chain.Name
	if name != "" && len(chain.Fallbacks) > 0 {
		name = fmt.Sprintf("%s (+%d)", name, len(chain.Fallbacks))
	}
	printProvider(kind, name, chain.Model)
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	logLevel.Set(slogLevel(level))
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}))
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
