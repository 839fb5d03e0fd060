package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clarigo/clarigo/attach"
	"github.com/clarigo/clarigo/config"
	"github.com/clarigo/clarigo/errors"
	"github.com/clarigo/clarigo/lims"
	"github.com/clarigo/clarigo/logger"
	"github.com/clarigo/clarigo/notify"
)

// AttachCmd processes one workflow step end to end.
var AttachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Attach sequencing files from a workflow step to their projects",
	Long: `Process a workflow step: download its zipped run folder, group the
contained files by sample identifier, resolve each input artifact to its
owning project, and upload one published archive per project.

The step URI is the full REST address of the step, as passed by the LIMS
automation trigger.

Credentials come from flags, CLARIGO_LIMS_* environment variables, or
the config file, in that order of precedence. The password should be
supplied via CLARIGO_LIMS_PASSWORD rather than a flag.

Exit status is 0 when at least one file was attached or there was
nothing to attach, and 1 otherwise.

Examples:
  clarigo attach --step https://lims.example.org/api/v2/steps/24-1234
  clarigo attach --step .../steps/24-1234 --send-emails --workers 8
  clarigo attach --step .../steps/24-1234 --json > events.ndjson`,
	RunE: runAttach,
}

func init() {
	AttachCmd.Flags().String("step", "", "Step URI to process (required)")
	AttachCmd.Flags().String("username", "", "LIMS API username")
	AttachCmd.Flags().String("password", "", "LIMS API password (prefer CLARIGO_LIMS_PASSWORD)")
	AttachCmd.Flags().String("base-uri", "", "LIMS base URI, e.g. https://lims.example.org")
	AttachCmd.Flags().String("log-file", "", "Write a debug-level JSON log to this file")
	AttachCmd.Flags().Bool("send-emails", false, "Email researchers about published bundles")
	AttachCmd.Flags().Int("workers", 0, "Concurrent ownership resolutions")
	AttachCmd.Flags().Bool("json", false, "Emit machine-readable progress events on stdout")
	AttachCmd.Flags().BoolP("verbose", "v", false, "Enable debug console output")
	_ = AttachCmd.MarkFlagRequired("step")

	v := config.GetViper()
	_ = v.BindPFlag("lims.username", AttachCmd.Flags().Lookup("username"))
	_ = v.BindPFlag("lims.password", AttachCmd.Flags().Lookup("password"))
	_ = v.BindPFlag("lims.base_uri", AttachCmd.Flags().Lookup("base-uri"))
	_ = v.BindPFlag("log.file", AttachCmd.Flags().Lookup("log-file"))
	_ = v.BindPFlag("log.json", AttachCmd.Flags().Lookup("json"))
	_ = v.BindPFlag("email.enabled", AttachCmd.Flags().Lookup("send-emails"))
	_ = v.BindPFlag("attach.workers", AttachCmd.Flags().Lookup("workers"))
}

func runAttach(cmd *cobra.Command, args []string) error {
	stepURI, _ := cmd.Flags().GetString("step")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "loading configuration")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Initialize(logger.Options{
		JSON:    cfg.Log.JSON,
		File:    cfg.Log.File,
		Verbose: verbose,
	}); err != nil {
		return errors.Wrap(err, "initializing logger")
	}
	defer logger.Cleanup()

	client := lims.NewClient(lims.Config{
		BaseURI:       cfg.LIMS.BaseURI,
		Username:      cfg.LIMS.Username,
		Password:      cfg.LIMS.Password,
		Timeout:       time.Duration(cfg.LIMS.TimeoutSeconds) * time.Second,
		RatePerSecond: cfg.LIMS.RatePerSecond,
		RateBurst:     cfg.LIMS.RateBurst,
		MaxRetries:    cfg.LIMS.MaxRetries,
	})

	var reporter attach.StageReporter = attach.CLIReporter{}
	if cfg.Log.JSON {
		reporter = attach.JSONReporter{W: cmd.OutOrStdout()}
	}

	var notifier attach.Notifier
	if cfg.Email.Enabled {
		notifier = notify.NewMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.From)
	}

	pipeline := attach.NewPipeline(client, attach.Options{
		ArchiveSuffix: cfg.Attach.ArchiveSuffix,
		BundleSuffix:  cfg.Attach.BundleSuffix,
		Workers:       cfg.Attach.Workers,
		Reporter:      reporter,
		Notifier:      notifier,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := pipeline.Run(ctx, stepURI)
	if err != nil {
		return err
	}
	if !result.Success() {
		return errors.Newf("run %s attached no files (%d errors)", result.RunID, len(result.Errors))
	}
	return nil
}
