package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"daily-intel/internal/digest"
	"daily-intel/internal/errs"
	"daily-intel/internal/logger"
	"daily-intel/internal/report"
	"daily-intel/internal/store"
)

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	shutdownSystem(shutdownCtx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "digest",
		Short: "Collect, render and email the daily intelligence report",
		Long: `digest gathers news, Indian market data, job listings and SAP insights,
renders them into one HTML report (with an optional PDF copy) and emails it.

Tunables live in config.yaml; credentials come from the environment or .env.
Use 'digest run' from a daily scheduler.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")

	root.AddCommand(
		newRunCmd(&configPath),
		newPreviewCmd(&configPath),
		newTestEmailCmd(&configPath),
	)
	return root
}

func newRunCmd(configPath *string) *cobra.Command {
	var opts digest.RunOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one collect, render and deliver cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, *configPath)
			if err != nil {
				return err
			}
			creds := store.LoadCredentials()

			runner := buildRunner(ctx, cfg, creds)
			out, err := runner.RunOnce(ctx, opts)
			if err != nil {
				switch {
				case errs.Is(err, errs.KindConfig):
					logger.ErrorWithErr(ctx, "Configuration invalid, nothing collected", err, "credentials", creds.Redacted())
				case errs.Fatal(err):
					logger.ErrorWithErr(ctx, "Run failed", err, "run_id", out.RunID)
				}
				return err
			}

			switch {
			case out.Skipped:
				logger.Info(ctx, "Run skipped on excluded day")
			case out.Delivered:
				logger.Info(ctx, "Report delivered", "run_id", out.RunID, "recipients", len(creds.EmailTo), "archive", out.ArchivePath)
			default:
				logger.Info(ctx, "Report rendered", "run_id", out.RunID, "archive", out.ArchivePath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "render and archive without sending")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "run even on an excluded weekday")
	return cmd
}

func newPreviewCmd(configPath *string) *cobra.Command {
	var htmlOut, pdfOut string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Collect and render the report to local files without sending",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, *configPath)
			if err != nil {
				return err
			}
			creds := store.LoadCredentials()
			runner := buildRunner(ctx, cfg, creds)

			now := time.Now().In(cfg.Location())
			bundle := runner.Collect(ctx, "preview", now)

			html, err := report.RenderHTML(cfg.Report.Title, bundle)
			if err != nil {
				return err
			}
			if err := os.WriteFile(htmlOut, html, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", htmlOut, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "HTML report written to %s\n", htmlOut)

			if pdfOut != "" {
				pdf, err := report.RenderPDF(cfg.Report.Title, bundle)
				if err != nil {
					return err
				}
				if err := os.WriteFile(pdfOut, pdf, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", pdfOut, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "PDF report written to %s\n", pdfOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&htmlOut, "out", "report.html", "HTML output path")
	cmd.Flags().StringVar(&pdfOut, "pdf", "", "optional PDF output path")
	return cmd
}

func newTestEmailCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "test-email",
		Short: "Check SMTP credentials by sending a short test message",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, *configPath)
			if err != nil {
				return err
			}
			creds := store.LoadCredentials()
			if err := creds.Validate(); err != nil {
				logger.ErrorWithErr(ctx, "Email credentials invalid", err, "credentials", creds.Redacted())
				return err
			}

			m := initializeMailer(cfg, creds)
			if err := m.SendTest(ctx, creds.EmailTo, smtpAddr(creds)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test email sent to %d recipient(s) via %s\n", len(creds.EmailTo), smtpAddr(creds))
			return nil
		},
	}
}
