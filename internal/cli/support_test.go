package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ledgerbox/internal/auth"
	"github.com/mrz1836/ledgerbox/internal/backup"
	"github.com/mrz1836/ledgerbox/internal/config"
	"github.com/mrz1836/ledgerbox/internal/output"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

func TestResolveSource(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		input    string
		want     backupSource
		archived bool
		wantErr  bool
	}{
		{name: "archived name", args: []string{"a.json"}, want: backupSource{name: "a.json"}, archived: true},
		{name: "input file", input: "/tmp/a.json", want: backupSource{path: "/tmp/a.json"}},
		{name: "both", args: []string{"a.json"}, input: "/tmp/a.json", wantErr: true},
		{name: "neither", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveSource(tc.args, tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ledgererr.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.archived, got.archived())
		})
	}
}

func TestArchivedPassphrase(t *testing.T) {
	resetFlags(t)
	promptPasswordFn = fixedPassword("secret passphrase")

	pw, err := archivedPassphrase("ledgerbox-backup-20260314-092653.json")
	require.NoError(t, err)
	assert.Nil(t, pw)

	pw, err = archivedPassphrase("ledgerbox-backup-20260314-092653.json.age")
	require.NoError(t, err)
	assert.Equal(t, "secret passphrase", string(pw))
}

func TestPromptNewPassphrase(t *testing.T) {
	answers := func(values ...string) func(string) ([]byte, error) {
		return func(string) ([]byte, error) {
			v := values[0]
			values = values[1:]
			return []byte(v), nil
		}
	}

	t.Run("too short", func(t *testing.T) {
		resetFlags(t)
		promptPasswordFn = answers("short")
		_, err := promptNewPassphrase()
		require.ErrorIs(t, err, ledgererr.ErrInvalidInput)
	})

	t.Run("mismatch", func(t *testing.T) {
		resetFlags(t)
		promptPasswordFn = answers("correct horse", "correct house")
		_, err := promptNewPassphrase()
		require.ErrorIs(t, err, ledgererr.ErrInvalidInput)
	})

	t.Run("prompt fails", func(t *testing.T) {
		resetFlags(t)
		boom := errors.New("no tty")
		promptPasswordFn = func(string) ([]byte, error) { return nil, boom }
		_, err := promptNewPassphrase()
		require.ErrorIs(t, err, boom)
	})

	t.Run("confirmed", func(t *testing.T) {
		resetFlags(t)
		promptPasswordFn = answers("correct horse", "correct horse")
		pw, err := promptNewPassphrase()
		require.NoError(t, err)
		assert.Equal(t, "correct horse", string(pw))
	})
}

func TestIdentityFromConfig(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		p, err := identityFromConfig(config.AuthConfig{})
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("user id", func(t *testing.T) {
		p, err := identityFromConfig(config.AuthConfig{UserID: ownerID.String(), Phone: "+5511999990000"})
		require.NoError(t, err)
		id, err := p.Identity(t.Context())
		require.NoError(t, err)
		assert.Equal(t, auth.Identity(owner), id)
	})

	t.Run("bad user id", func(t *testing.T) {
		_, err := identityFromConfig(config.AuthConfig{UserID: "12345"})
		require.ErrorIs(t, err, ledgererr.ErrConfigInvalid)
	})

	t.Run("token wins", func(t *testing.T) {
		secret := []byte("a-long-enough-signing-secret")
		token, err := auth.IssueToken(auth.Identity(owner), secret, time.Hour)
		require.NoError(t, err)

		p, err := identityFromConfig(config.AuthConfig{UserID: "ignored", Token: token, TokenSecret: string(secret)})
		require.NoError(t, err)
		id, err := p.Identity(t.Context())
		require.NoError(t, err)
		assert.Equal(t, ownerID, id.UserID)
	})
}

func TestOpenBackupService_sqlite(t *testing.T) {
	home := t.TempDir()
	cfg := config.DefaultsFor(home)
	cfg.Database.DSN = filepath.Join(home, "data", "ledger.db")
	cfg.Auth.UserID = ownerID.String()

	cc := NewCommandContext(cfg, config.NullLogger(), output.NewFormatter(output.FormatText, os.Stdout))
	svc, err := cc.backups(t.Context())
	require.NoError(t, err)

	same, err := cc.backups(t.Context())
	require.NoError(t, err)
	assert.Same(t, svc, same)

	archived, err := svc.Create(t.Context(), backup.CreateOptions{Notes: "empty ledger"})
	require.NoError(t, err)
	assert.Equal(t, 0, archived.File.Counts.Total())
	assert.FileExists(t, filepath.Join(home, "backups", archived.Name))
	assert.FileExists(t, cfg.Database.DSN)

	names, err := svc.List(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{archived.Name}, names)

	require.NoError(t, cc.Close())
}

func TestOpenBackupService_noIdentity(t *testing.T) {
	cfg := config.DefaultsFor(t.TempDir())

	svc, closeFn, err := openBackupService(t.Context(), cfg, config.NullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	_, err = svc.Create(t.Context(), backup.CreateOptions{})
	require.ErrorIs(t, err, ledgererr.ErrUnauthenticated)
}

func TestLoadEnvFiles(t *testing.T) {
	const key = "LEDGERBOX_TEST_ENV_FILE_VALUE"
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.env")

	require.NoError(t, loadEnvFiles("", missing))

	err := loadEnvFiles(missing, missing)
	require.Error(t, err)

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))
	require.NoError(t, loadEnvFiles(path, missing))
	assert.Equal(t, "from-file", os.Getenv(key))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ledgererr.ExitNotFound, ExitCode(ledgererr.ErrBackupNotFound))
	assert.Equal(t, ledgererr.ExitInput, ExitCode(validationError(backupSource{path: "x.json"}, &backup.Report{})))
}
