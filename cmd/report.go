package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/halcyonworks/webaudit-cli/internal/config"
	"github.com/halcyonworks/webaudit-cli/internal/observability"
	"github.com/halcyonworks/webaudit-cli/internal/reporting"
)

// newReportCmd creates and configures the `report` command.
func newReportCmd() *cobra.Command {
	var (
		auditID    string
		outputPath string
		format     string
	)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render a stored audit from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			return runReport(ctx, logger, cfg, auditID, outputPath, format)
		},
	}

	reportCmd.Flags().StringVar(&auditID, "audit-id", "", "The ID of the audit to render (required)")
	_ = reportCmd.MarkFlagRequired("audit-id")
	reportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path. If unset, the report is printed to stdout.")
	reportCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: 'text' or 'json'.")

	return reportCmd
}

// runReport contains the core logic for rendering a stored audit.
func runReport(ctx context.Context, logger *zap.Logger, cfg *config.Config, auditID, outputPath, format string) error {
	logger.Info("Loading stored audit", zap.String("audit_id", auditID))

	storeService, cleanup, err := connectStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := storeService.GetAudit(ctx, auditID)
	if err != nil {
		return err
	}

	reporter, err := reporting.New(format, outputPath)
	if err != nil {
		return err
	}
	defer reporter.Close()

	return reporter.Write(result)
}

// newHistoryCmd creates the `history` command listing recent audits.
func newHistoryCmd() *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent audits stored in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			storeService, cleanup, err := connectStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			summaries, err := storeService.ListAudits(ctx, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "AUDIT ID\tURL\tSTARTED\tSCORE\tGRADE")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					s.AuditID, s.URL, s.StartedAt.Format("2006-01-02 15:04"), s.CombinedScore, s.Grade)
			}
			return w.Flush()
		},
	}

	historyCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of audits to list")
	return historyCmd
}

func init() {
	rootCmd.AddCommand(newAuditCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newHistoryCmd())
}
