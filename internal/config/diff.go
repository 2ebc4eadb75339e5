package config

import "reflect"

// ConfigDiff describes what changed between two configs. The log level and
// catalog extras can be hot-reloaded; provider and resilience changes require
// a restart and are only flagged so the watcher callback can log them.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// CatalogChanged is true if the catalog extras differ.
	CatalogChanged bool

	// RestartRequired is true if providers or resilience settings changed.
	// These shape the provider chains built at startup.
	RestartRequired bool
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if !reflect.DeepEqual(old.Catalog.Extra, new.Catalog.Extra) {
		d.CatalogChanged = true
	}

	if !reflect.DeepEqual(old.Providers, new.Providers) || old.Resilience != new.Resilience {
		d.RestartRequired = true
	}

	return d
}
