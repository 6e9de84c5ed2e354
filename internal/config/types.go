// Package config provides project configuration for LedgerPipe. It is
// decoupled from CLI concerns so any tool embedding the engine can load
// the same configuration.
package config

// Config holds the resolved project configuration.
type Config struct {
	// MetadataDir is the directory holding resolution metadata documents.
	MetadataDir string `koanf:"metadata_dir"`
	// AuditPath is the SQLite audit database path.
	AuditPath string `koanf:"audit_path"`
	// Project optionally names the active project for resolver overrides.
	Project string `koanf:"project"`
	// Environment is the current environment (dev, staging, prod).
	Environment string `koanf:"environment"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
	// Output selects the CLI output format (table, json).
	Output string `koanf:"output"`

	// ProjectRoot is the directory the config was anchored to. Derived,
	// never read from the file.
	ProjectRoot string `koanf:"-"`
}
