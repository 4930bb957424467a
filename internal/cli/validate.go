package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/ledgerbox/internal/output"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var validateInput string

// validateCmd validates a backup without importing it.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var validateCmd = &cobra.Command{
	Use:   "validate [backup-name]",
	Short: "Validate a backup file",
	Long: `Validate a backup without importing it.

Validation checks the file structure, schema version, ownership, record
counts, checksum and the references between records. Every issue found is
reported; the command fails when any issue is an error.

Example:
  ledgerbox validate ledgerbox-backup-20260314-092653.json
  ledgerbox validate --input ./ledger.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateInput, "input", "", "path to a backup file outside the archive")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	ctx := cmd.Context()

	src, err := resolveSource(args, validateInput)
	if err != nil {
		return err
	}

	svc, err := cc.backups(ctx)
	if err != nil {
		return err
	}

	_, report, err := verifySource(ctx, svc, src)
	if err != nil {
		return err
	}

	if err := cc.Fmt.Print(output.ValidationView{Source: src.String(), Report: report}); err != nil {
		return err
	}
	if !report.Valid {
		return validationError(src, report)
	}
	return nil
}
