package cli

import (
	"bytes"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

// minPassphraseLen is the shortest passphrase accepted for new backups.
const minPassphraseLen = 8

// Prompt functions are variables so tests can replace them.
//
//nolint:gochecknoglobals // test seams
var (
	promptPasswordFn      = promptPassword
	promptNewPassphraseFn = promptNewPassphrase
)

// promptPassword prompts for a secret with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}

	return password, nil
}

// promptNewPassphrase prompts for a backup passphrase with confirmation.
// The caller is responsible for zeroing the returned bytes after use.
func promptNewPassphrase() ([]byte, error) {
	passphrase, err := promptPasswordFn("Enter backup passphrase: ")
	if err != nil {
		return nil, err
	}

	if len(passphrase) < minPassphraseLen {
		zeroBytes(passphrase)
		return nil, ledgererr.WithSuggestion(
			ledgererr.ErrInvalidInput,
			fmt.Sprintf("passphrase must be at least %d characters", minPassphraseLen),
		)
	}

	confirm, err := promptPasswordFn("Confirm passphrase: ")
	if err != nil {
		zeroBytes(passphrase)
		return nil, err
	}
	defer zeroBytes(confirm)

	if !bytes.Equal(passphrase, confirm) {
		zeroBytes(passphrase)
		return nil, ledgererr.WithSuggestion(
			ledgererr.ErrInvalidInput,
			"passphrases do not match",
		)
	}

	return passphrase, nil
}

// zeroBytes overwrites b.
func zeroBytes(b []byte) {
	clear(b)
}
