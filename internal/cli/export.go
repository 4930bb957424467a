package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/ledgerbox/internal/backup"
	"github.com/mrz1836/ledgerbox/internal/fileutil"
	"github.com/mrz1836/ledgerbox/internal/output"
	"github.com/mrz1836/ledgerbox/internal/seal"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// exportNotes is stored in the backup's meta.notes.
	exportNotes string
	// exportOut writes the backup to a file, or stdout for "-", instead of the archive.
	exportOut string
	// exportEncrypt seals the backup with a passphrase.
	exportEncrypt bool
)

// exportCmd exports the ledger.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger to a backup file",
	Long: `Export every ledger record of the current user into one checksummed backup.

By default the backup is stored in the configured archive (a local directory
or an S3 bucket) under a timestamped name. Use --out to write it elsewhere.

Example:
  ledgerbox export --notes "year end"
  ledgerbox export --encrypt
  ledgerbox export --out ./ledger.json`,
	RunE: runExport,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportNotes, "notes", "", "free-form notes stored in the backup")
	exportCmd.Flags().StringVar(&exportOut, "out", "", `write the backup to this path ("-" for stdout) instead of the archive`)
	exportCmd.Flags().BoolVar(&exportEncrypt, "encrypt", false, "encrypt the backup with a passphrase")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx := cmd.Context()

	svc, err := cc.backups(ctx)
	if err != nil {
		return err
	}

	var passphrase []byte
	if exportEncrypt {
		passphrase, err = promptNewPassphraseFn()
		if err != nil {
			return err
		}
		defer zeroBytes(passphrase)
		if !cc.Fmt.IsJSON() {
			output.Warn(cmd.ErrOrStderr(), "keep the passphrase safe: the backup cannot be restored without it")
		}
	}

	if exportOut == "" {
		archived, err := svc.Create(ctx, backup.CreateOptions{Notes: exportNotes, Passphrase: passphrase})
		if err != nil {
			return err
		}
		return cc.Fmt.Print(output.NewArchiveView(archived))
	}

	file, err := svc.Exporter().Export(ctx, backup.ExportOptions{Notes: exportNotes})
	if err != nil {
		return err
	}
	data, err := file.Marshal()
	if err != nil {
		return ledgererr.Wrap(err, "encoding backup")
	}
	if len(passphrase) > 0 {
		if data, err = seal.Encrypt(data, string(passphrase)); err != nil {
			return ledgererr.Wrap(err, "encrypting backup")
		}
	}

	if exportOut == "-" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := fileutil.WriteAtomic(exportOut, data, 0o600); err != nil {
		return ledgererr.Wrap(err, "writing backup")
	}
	cc.Log.Info("exported backup to %s", exportOut)

	return cc.Fmt.Print(output.NewArchiveView(&backup.Archived{
		File:     file,
		Name:     filepath.Base(exportOut),
		Location: exportOut,
		Sealed:   len(passphrase) > 0,
	}))
}
