package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/ledgerbox/internal/backup"
	"github.com/mrz1836/ledgerbox/internal/output"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	importInput       string
	importDryRun      bool
	importStrategy    string
	importChunkSize   int
	importConcurrency int
	importRateLimit   float64
)

// importCmd validates a backup and replays it into the ledger.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var importCmd = &cobra.Command{
	Use:   "import [backup-name]",
	Short: "Import a backup into the ledger",
	Long: `Validate a backup and import its records into the ledger.

Nothing is written when validation reports an error. Records are created in
dependency order (categories, suppliers, banks, bank accounts, payables,
receivables, transactions) next to the existing data. Records that fail are
listed at the end; the rest of the import carries on. Importing the same
backup twice does not create duplicates.

Example:
  ledgerbox import ledgerbox-backup-20260314-092653.json
  ledgerbox import --input ./ledger.json --dry-run
  ledgerbox import --input ./ledger.json --chunk-size 20 --rate-limit 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importInput, "input", "", "path to a backup file outside the archive")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "validate only, write nothing")
	importCmd.Flags().StringVar(&importStrategy, "strategy", string(backup.StrategyMerge), "import strategy (only merge is supported)")
	importCmd.Flags().IntVar(&importChunkSize, "chunk-size", 0, "records created per chunk (default from config)")
	importCmd.Flags().IntVar(&importConcurrency, "concurrency", 0, "creates in flight per chunk (default from config)")
	importCmd.Flags().Float64Var(&importRateLimit, "rate-limit", -1, "creates per second, 0 for unlimited (default from config)")
}

// importOptions merges the import flags over the configured defaults.
func importOptions(cc *CommandContext) (backup.ImportOptions, error) {
	strategy, err := backup.ParseStrategy(importStrategy)
	if err != nil {
		return backup.ImportOptions{}, err
	}

	opts := backup.ImportOptions{
		DryRun:      importDryRun,
		Strategy:    strategy,
		ChunkSize:   cc.Config.Backup.ChunkSize,
		Concurrency: cc.Config.Backup.Concurrency,
		RateLimit:   cc.Config.Backup.RateLimit,
	}
	if importChunkSize > 0 {
		opts.ChunkSize = importChunkSize
	}
	if importConcurrency > 0 {
		opts.Concurrency = importConcurrency
	}
	if importRateLimit >= 0 {
		opts.RateLimit = importRateLimit
	}
	return opts, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	ctx := cmd.Context()

	src, err := resolveSource(args, importInput)
	if err != nil {
		return err
	}
	opts, err := importOptions(cc)
	if err != nil {
		return err
	}

	svc, err := cc.backups(ctx)
	if err != nil {
		return err
	}

	var (
		report *backup.Report
		result *backup.ImportResult
	)
	if src.archived() {
		passphrase, err := archivedPassphrase(src.name)
		if err != nil {
			return err
		}
		defer zeroBytes(passphrase)

		report, result, err = svc.Restore(ctx, src.name, passphrase, opts)
		if report != nil && !report.Valid {
			_ = cc.Fmt.Print(output.ValidationView{Source: src.String(), Report: report})
			return validationError(src, report)
		}
		if err != nil {
			return err
		}
	} else {
		var file *backup.File
		file, report, err = verifySource(ctx, svc, src)
		if err != nil {
			return err
		}
		if !report.Valid {
			_ = cc.Fmt.Print(output.ValidationView{Source: src.String(), Report: report})
			return validationError(src, report)
		}
		if result, err = svc.Importer().Import(ctx, file, opts); err != nil {
			return err
		}
	}

	if !cc.Fmt.IsJSON() {
		for _, w := range report.Warnings() {
			output.Warnf(cmd.ErrOrStderr(), "%s", w.Message)
		}
		if skipped := result.TotalSkipped(); skipped > 0 {
			output.Infof(cmd.ErrOrStderr(), "%d records were already imported from this backup and were skipped", skipped)
		}
	}

	if err := cc.Fmt.Print(output.ImportView{Source: src.String(), ImportResult: result}); err != nil {
		return err
	}

	if !result.Success {
		return ledgererr.WithDetails(ledgererr.ErrImportIncomplete, map[string]string{
			"failed":   strconv.Itoa(len(result.Errors)),
			"batch_id": result.BatchID.String(),
		})
	}
	return nil
}
