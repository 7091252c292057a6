package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
	"github.com/halcyonworks/webaudit-cli/internal/ai"
	"github.com/halcyonworks/webaudit-cli/internal/config"
	"github.com/halcyonworks/webaudit-cli/internal/observability"
	"github.com/halcyonworks/webaudit-cli/internal/orchestrator"
	"github.com/halcyonworks/webaudit-cli/internal/reporting"
	"github.com/halcyonworks/webaudit-cli/internal/scanner"
)

// newAuditCmd creates and configures the `audit` command.
func newAuditCmd() *cobra.Command {
	var (
		outputPath  string
		format      string
		withPa11y   bool
		withAI      bool
		saveResults bool
	)

	auditCmd := &cobra.Command{
		Use:   "audit <url> [url...]",
		Short: "Run a full accessibility audit against one or more pages",
		Long: `Runs every enabled scanner against the given URLs, merges their findings
into a unified report with a weighted combined score, and renders the result.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Flag overrides are applied to viper before the config is built
			// so they flow through validation like any other setting.
			if cmd.Flags().Changed("pa11y") {
				viper.Set("scanners.pa11y.enabled", withPa11y)
			}
			if cmd.Flags().Changed("ai") {
				viper.Set("ai.enabled", withAI)
			}
			if cmd.Flags().Changed("format") {
				viper.Set("audit.format", format)
			}

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			return runAudit(ctx, logger, cfg, args, outputPath, saveResults)
		},
	}

	auditCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path. If unset, the report is printed to stdout.")
	auditCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: 'text' or 'json'.")
	auditCmd.Flags().BoolVar(&withPa11y, "pa11y", false, "Include the Pa11y scanner (three-tool scoring mode).")
	auditCmd.Flags().BoolVar(&withAI, "ai", false, "Generate AI insights and fix suggestions for the report.")
	auditCmd.Flags().BoolVar(&saveResults, "save", false, "Persist results to the configured database.")

	return auditCmd
}

// runAudit contains the core, testable logic for the audit command.
func runAudit(ctx context.Context, logger *zap.Logger, cfg *config.Config, urls []string, outputPath string, saveResults bool) error {
	o, cleanup, err := buildOrchestrator(ctx, logger, cfg, saveResults)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := o.RunAll(ctx, urls)
	if err != nil {
		return err
	}

	reporter, err := reporting.New(cfg.Audit.Format, outputPath)
	if err != nil {
		return err
	}
	defer reporter.Close()

	for _, result := range results {
		if err := reporter.Write(result); err != nil {
			return fmt.Errorf("failed to write report for %s: %w", result.URL, err)
		}
	}

	if len(results) < len(urls) {
		return fmt.Errorf("%d of %d audits failed", len(urls)-len(results), len(urls))
	}
	return nil
}

// buildOrchestrator assembles the scanners and optional collaborators the
// configuration asks for. The returned cleanup releases any held resources.
func buildOrchestrator(ctx context.Context, logger *zap.Logger, cfg *config.Config, saveResults bool) (*orchestrator.Orchestrator, func(), error) {
	cleanup := func() {}

	lighthouse := scanner.NewLighthouseRunner(cfg, logger)
	axe := scanner.NewAxeRunner(cfg, logger)

	var pa11y *scanner.Pa11yRunner
	if cfg.Scanners.Pa11y.Enabled {
		pa11y = scanner.NewPa11yRunner(cfg, logger)
	}
	var keyboard *scanner.KeyboardRunner
	if cfg.Scanners.Keyboard.Enabled {
		keyboard = scanner.NewKeyboardRunner(cfg, logger)
	}

	var insighter orchestrator.Insighter
	if cfg.AI.Enabled {
		client, err := ai.NewGeminiClient(ctx, cfg.AI)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize AI client: %w", err)
		}
		insighter = ai.NewService(client, logger)
	}

	var auditStore orchestrator.AuditStore
	if saveResults {
		storeService, storeCleanup, err := connectStore(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		auditStore = storeService
		cleanup = storeCleanup
	}

	o, err := newOrchestrator(cfg, logger, lighthouse, axe, pa11y, keyboard, insighter, auditStore)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return o, cleanup, nil
}

// newOrchestrator adapts the concrete runner types to the orchestrator's
// interfaces, keeping typed nils out of the interface values.
func newOrchestrator(
	cfg *config.Config,
	logger *zap.Logger,
	lighthouse *scanner.LighthouseRunner,
	axe *scanner.AxeRunner,
	pa11y *scanner.Pa11yRunner,
	keyboard *scanner.KeyboardRunner,
	insighter orchestrator.Insighter,
	auditStore orchestrator.AuditStore,
) (*orchestrator.Orchestrator, error) {
	var (
		pa11yScanner    schemas.Pa11yScanner
		keyboardScanner schemas.KeyboardScanner
	)
	if pa11y != nil {
		pa11yScanner = pa11y
	}
	if keyboard != nil {
		keyboardScanner = keyboard
	}
	return orchestrator.New(cfg, logger, lighthouse, axe, pa11yScanner, keyboardScanner, insighter, auditStore)
}
