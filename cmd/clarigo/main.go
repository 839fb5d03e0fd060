package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clarigo/clarigo/cmd/clarigo/commands"
)

var rootCmd = &cobra.Command{
	Use:   "clarigo",
	Short: "clarigo - sequencing file attachment pipeline for Clarity-style LIMS",
	Long: `clarigo attaches sequencing run files to their owning LIMS projects.

Given a workflow step, clarigo downloads the step's zipped run folder,
groups the contained files by sample identifier, resolves each input
artifact to its owning project, bundles matched files per project, and
uploads and publishes one archive per project.

Available commands:
  attach  - Process a workflow step end to end
  config  - Show the effective configuration
  version - Show version information

Examples:
  clarigo attach --step https://lims.example.org/api/v2/steps/24-1234
  clarigo attach --step .../steps/24-1234 --send-emails
  clarigo config show`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(commands.AttachCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
