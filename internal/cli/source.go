package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/ledgerbox/internal/backup"
	"github.com/mrz1836/ledgerbox/internal/seal"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

// backupSource is either an archived backup name or a local file path.
type backupSource struct {
	name string
	path string
}

func (s backupSource) String() string {
	if s.name != "" {
		return s.name
	}
	return s.path
}

func (s backupSource) archived() bool {
	return s.name != ""
}

// resolveSource picks the backup named by a positional argument or --input.
func resolveSource(args []string, input string) (backupSource, error) {
	switch {
	case input != "" && len(args) > 0:
		return backupSource{}, ledgererr.WithSuggestion(ledgererr.ErrInvalidInput,
			"pass either an archived backup name or --input, not both")
	case input != "":
		return backupSource{path: input}, nil
	case len(args) == 1:
		return backupSource{name: args[0]}, nil
	default:
		return backupSource{}, ledgererr.WithSuggestion(ledgererr.ErrInvalidInput,
			"name an archived backup (see 'ledgerbox list') or pass --input <file>")
	}
}

// archivedPassphrase prompts for a passphrase when the archived name marks
// the backup as sealed.
func archivedPassphrase(name string) ([]byte, error) {
	if !strings.HasSuffix(name, seal.Extension) {
		return nil, nil
	}
	return promptPasswordFn("Backup passphrase: ")
}

// verifySource validates src. Sealed backups prompt for their passphrase.
// The error covers only failures to read or unseal the backup.
func verifySource(ctx context.Context, svc BackupService, src backupSource) (*backup.File, *backup.Report, error) {
	if src.archived() {
		passphrase, err := archivedPassphrase(src.name)
		if err != nil {
			return nil, nil, err
		}
		defer zeroBytes(passphrase)
		return svc.Verify(ctx, src.name, passphrase)
	}

	// #nosec G304 -- backup path is supplied by the user on purpose
	f, err := os.Open(src.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ledgererr.WithDetails(ledgererr.ErrBackupNotFound, map[string]string{"path": src.path})
	}
	if err != nil {
		return nil, nil, ledgererr.Wrap(err, "opening backup")
	}
	defer func() { _ = f.Close() }()

	r, sealed := seal.Sniff(f)
	var passphrase []byte
	if sealed {
		passphrase, err = promptPasswordFn("Backup passphrase: ")
		if err != nil {
			return nil, nil, err
		}
		defer zeroBytes(passphrase)
	}

	plain, err := backup.Unseal(r, passphrase)
	if err != nil {
		return nil, nil, err
	}

	file, report := svc.Validator().ValidateReader(ctx, plain)
	return file, report, nil
}

// validationError is returned when a report carries errors.
func validationError(src backupSource, report *backup.Report) error {
	return ledgererr.WithDetails(ledgererr.ErrValidationFailed, map[string]string{
		"backup": src.String(),
		"errors": strconv.Itoa(len(report.Errors())),
	})
}
