package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clarigo/clarigo/config"
	"github.com/clarigo/clarigo/errors"
)

// ConfigCmd groups configuration inspection commands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect clarigo configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// ConfigShowCmd prints the effective configuration.
var ConfigShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration clarigo would run with, after merging
defaults, config files, and CLARIGO_* environment variables.

The LIMS password is never printed; only whether one is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "loading configuration")
		}

		password := "(not set)"
		if cfg.LIMS.Password != "" {
			password = "(set)"
		}

		if jsonOutput {
			redacted := *cfg
			redacted.LIMS.Password = password
			output, err := json.MarshalIndent(redacted, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(output))
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "[lims]")
		fmt.Fprintf(out, "  base_uri        = %s\n", cfg.LIMS.BaseURI)
		fmt.Fprintf(out, "  username        = %s\n", cfg.LIMS.Username)
		fmt.Fprintf(out, "  password        = %s\n", password)
		fmt.Fprintf(out, "  timeout_seconds = %d\n", cfg.LIMS.TimeoutSeconds)
		fmt.Fprintf(out, "  rate_per_second = %g\n", cfg.LIMS.RatePerSecond)
		fmt.Fprintf(out, "  max_retries     = %d\n", cfg.LIMS.MaxRetries)
		fmt.Fprintln(out, "[attach]")
		fmt.Fprintf(out, "  archive_suffix  = %s\n", cfg.Attach.ArchiveSuffix)
		fmt.Fprintf(out, "  bundle_suffix   = %s\n", cfg.Attach.BundleSuffix)
		fmt.Fprintf(out, "  workers         = %d\n", cfg.Attach.Workers)
		fmt.Fprintln(out, "[log]")
		fmt.Fprintf(out, "  file            = %s\n", cfg.Log.File)
		fmt.Fprintf(out, "  json            = %t\n", cfg.Log.JSON)
		fmt.Fprintln(out, "[email]")
		fmt.Fprintf(out, "  enabled         = %t\n", cfg.Email.Enabled)
		fmt.Fprintf(out, "  smtp_host       = %s\n", cfg.Email.SMTPHost)
		fmt.Fprintf(out, "  smtp_port       = %d\n", cfg.Email.SMTPPort)
		fmt.Fprintf(out, "  from            = %s\n", cfg.Email.From)
		return nil
	},
}

func init() {
	ConfigShowCmd.Flags().BoolP("json", "j", false, "Output configuration as JSON")
	ConfigCmd.AddCommand(ConfigShowCmd)
}
