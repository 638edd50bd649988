// Package config defines the Conf struct cmd/pm binds cobra flags, a YAML
// config file, and PASSVAULT_* environment variables into.
package config

// Conf holds the configuration values populated by viper from cobra flags,
// environment variables, or a config file.
//
// mapstructure tags are only needed where the lowercased Go field name
// doesn't match the flag name viper binds; without them viper.Unmarshal
// silently leaves the field at its zero value.
type Conf struct {
	// VaultPath is the vault file's location on disk.
	VaultPath string `mapstructure:"vault"`
	// AuditPath is the non-secret operation log's location. Empty disables
	// the audit log entirely.
	AuditPath string `mapstructure:"audit"`
	// Iterations is the default PBKDF2 iteration count applied to newly
	// created records.
	Iterations int `mapstructure:"iterations"`
	// Verbose enables debug-level logging.
	Verbose bool `mapstructure:"verbose"`
}

// DefaultVaultFilename and DefaultAuditFilename name the on-disk locations used
// when the user hasn't configured anything else. They're resolved against
// $HOME by the CLI layer, not here, since config has no business touching
// the filesystem.
const (
	DefaultVaultFilename = ".passwords"
	DefaultAuditFilename = ".passvault-audit.db"
	DefaultIterations    = 4096
)
