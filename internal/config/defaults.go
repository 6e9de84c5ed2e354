package config

// Default configuration values.
const (
	// ConfigFileName is the primary config file name.
	ConfigFileName = "ledgerpipe.yaml"
	// ConfigFileNameAlt is the alternate config file name.
	ConfigFileNameAlt = "ledgerpipe.yml"

	DefaultMetadataDir = "metadata"
	DefaultAuditPath   = ".ledgerpipe/audit.db"
	DefaultEnvironment = "dev"
	DefaultOutput      = "table"
)
