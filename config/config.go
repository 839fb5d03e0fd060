// Package config loads clarigo configuration with Viper.
//
// Precedence, lowest to highest: built-in defaults, user config
// (~/.clarigo/config.toml), project config (clarigo.toml found by walking
// up from the working directory), CLARIGO_* environment variables, and
// finally command-line flags bound by the CLI layer.
package config

import "fmt"

// Config is the root clarigo configuration
type Config struct {
	LIMS   LIMSConfig   `mapstructure:"lims"`
	Attach AttachConfig `mapstructure:"attach"`
	Log    LogConfig    `mapstructure:"log"`
	Email  EmailConfig  `mapstructure:"email"`
}

// LIMSConfig configures the Clarity-style LIMS API client
type LIMSConfig struct {
	BaseURI        string  `mapstructure:"base_uri"`        // e.g. https://lims.example.org
	Username       string  `mapstructure:"username"`        // API account
	Password       string  `mapstructure:"password"`        // bound to CLARIGO_LIMS_PASSWORD, never persisted
	TimeoutSeconds int     `mapstructure:"timeout_seconds"` // per-request HTTP timeout (default: 120)
	RatePerSecond  float64 `mapstructure:"rate_per_second"` // client-side API rate cap (default: 5)
	RateBurst      int     `mapstructure:"rate_burst"`      // burst allowance (default: 10)
	MaxRetries     int     `mapstructure:"max_retries"`     // attempts per transient failure (default: 3)
}

// AttachConfig configures the file-association pipeline
type AttachConfig struct {
	ArchiveSuffix string `mapstructure:"archive_suffix"` // step attachments to decompose (default: .zip)
	BundleSuffix  string `mapstructure:"bundle_suffix"`  // appended to the project name for output archives
	Workers       int    `mapstructure:"workers"`        // concurrent ownership resolutions (default: 4)
}

// LogConfig configures logging output
type LogConfig struct {
	File string `mapstructure:"file"` // debug-level log file, empty = console only
	JSON bool   `mapstructure:"json"` // structured console output
}

// EmailConfig configures researcher notifications
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`   // off by default; --send-emails flips it
	SMTPHost string `mapstructure:"smtp_host"` // default: localhost
	SMTPPort int    `mapstructure:"smtp_port"` // default: 25
	From     string `mapstructure:"from"`      // sender address
}

// Validate checks the fields required before a run can start.
func (c *Config) Validate() error {
	if c.LIMS.BaseURI == "" {
		return fmt.Errorf("lims.base_uri is required (flag --base-uri or CLARIGO_LIMS_BASE_URI)")
	}
	if c.LIMS.Username == "" {
		return fmt.Errorf("lims.username is required (flag --username or CLARIGO_LIMS_USERNAME)")
	}
	if c.LIMS.Password == "" {
		return fmt.Errorf("lims.password is required (flag --password or CLARIGO_LIMS_PASSWORD)")
	}
	if c.Attach.Workers < 1 {
		return fmt.Errorf("attach.workers must be at least 1, got %d", c.Attach.Workers)
	}
	return nil
}
