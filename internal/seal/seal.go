// Package seal encrypts backup files at rest with age passphrase recipients.
package seal

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"filippo.io/age"
)

// Extension is appended to the name of sealed backup files.
const Extension = ".age"

// header is the first line of every age file.
const header = "age-encryption.org/v1"

// ErrEmptyPassphrase indicates an empty passphrase was supplied.
var ErrEmptyPassphrase = errors.New("passphrase is empty")

// workFactor is the scrypt log2 work factor; 0 means the age default.
var workFactor atomic.Int32 //nolint:gochecknoglobals // test hook

// SetScryptWorkFactor overrides the scrypt work factor. Lower values are
// only meant for tests.
func SetScryptWorkFactor(logN int) {
	workFactor.Store(int32(logN)) //nolint:gosec // small bounded value
}

// Encrypt encrypts plaintext to a passphrase.
func Encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	if n := workFactor.Load(); n > 0 {
		recipient.SetWorkFactor(int(n))
	}

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing encryption: %w", err)
	}

	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing encrypted data: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}

	return buf.Bytes(), nil
}

// Open returns a reader of the plaintext of a sealed stream.
func Open(r io.Reader, passphrase string) (io.Reader, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	plain, err := age.Decrypt(r, identity)
	if err != nil {
		return nil, fmt.Errorf("initializing decryption: %w", err)
	}
	return plain, nil
}

// Decrypt decrypts a sealed byte slice.
func Decrypt(ciphertext []byte, passphrase string) ([]byte, error) {
	r, err := Open(bytes.NewReader(ciphertext), passphrase)
	if err != nil {
		return nil, err
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted data: %w", err)
	}
	return plaintext, nil
}

// Sniff reports whether the stream starts with an age header. The returned
// reader yields the full stream, including the peeked bytes.
func Sniff(r io.Reader) (io.Reader, bool) {
	br := bufio.NewReader(r)
	peek, _ := br.Peek(len(header))
	return br, string(peek) == header
}
