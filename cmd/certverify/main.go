package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/fadilmartias/cert-verifier/internal/config"
	"github.com/fadilmartias/cert-verifier/internal/dto"
	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/fadilmartias/cert-verifier/internal/storage"
	"github.com/fadilmartias/cert-verifier/internal/usecase"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "certverify: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "certverify",
		Short: "Bulk-verify course completion certificates against the issuer",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetOutput(cmd.ErrOrStderr())
			logrus.SetLevel(logrus.WarnLevel)
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every certificate and HTTP failure")
	cmd.AddCommand(newVerifyCmd())
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var (
		format  string
		workers int
		quiet   bool
	)
	cmd := &cobra.Command{
		Use:   "verify [dir]",
		Short: "Verify every PDF certificate in a directory (defaults to the certificate store)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.LoadVerifierConfig()
			if workers > 0 {
				cfg.Workers = workers
			}
			uc := usecase.NewVerificationUsecaseFromConfig(cfg, logrus.WithField("app", "certverify"))

			var progress usecase.ProgressFunc
			if !quiet {
				progress = func(done, total int) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\rProcessing... %d/%d (%.0f%%)", done, total, 100*float64(done)/float64(total))
					if done == total {
						fmt.Fprintln(cmd.ErrOrStderr())
					}
				}
			}

			var src usecase.CertificateSource
			if len(args) == 1 {
				src = dirSource(args[0])
			} else {
				store, err := storage.Open(ctx, config.LoadStorageConfig())
				if err != nil {
					return err
				}
				src = store
			}
			rows, err := uc.VerifyStored(ctx, src, progress)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), dto.NewReportDTO(rows), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "table", "Output format: table, csv or json")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Certificates verified in parallel (defaults to VERIFIER_WORKERS)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print progress")
	return cmd
}

type dirSource string

func (d dirSource) List(ctx context.Context) ([]model.CertificateFile, error) {
	return storage.ReadDir(ctx, string(d))
}

func writeReport(w io.Writer, report dto.ReportDTO, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "csv":
		return report.WriteCSV(w)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(dto.ReportColumns, "\t"))
		for _, row := range report.Rows {
			fmt.Fprintln(tw, strings.Join(row.Values(), "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\n%d verified, %d not verified\n", report.Summary.Verified, report.Summary.NotVerified)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
