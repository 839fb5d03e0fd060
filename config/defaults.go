package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// LIMS client defaults
	v.SetDefault("lims.timeout_seconds", 120)
	v.SetDefault("lims.rate_per_second", 5.0) // Clarity dev instances throttle around 10 rps
	v.SetDefault("lims.rate_burst", 10)
	v.SetDefault("lims.max_retries", 3)

	// Pipeline defaults
	v.SetDefault("attach.archive_suffix", ".zip")
	v.SetDefault("attach.bundle_suffix", "_sequencing_files.zip")
	v.SetDefault("attach.workers", 4)

	// Logging defaults
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 25)
	v.SetDefault("email.from", "noreply.clarity@example.org")
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to
// environment variables so credentials never need to live in a config file
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("lims.password", "CLARIGO_LIMS_PASSWORD")
	v.BindEnv("lims.username", "CLARIGO_LIMS_USERNAME")
	v.BindEnv("lims.base_uri", "CLARIGO_LIMS_BASE_URI")
}
