package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ledgerbox/internal/output"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

func TestFormatError_NilError(t *testing.T) {
	t.Parallel()

	for _, format := range []output.Format{output.FormatJSON, output.FormatText} {
		var buf bytes.Buffer
		require.NoError(t, output.FormatError(&buf, nil, format))
		assert.Empty(t, buf.String())
	}
}

func TestFormatError_GenericError(t *testing.T) {
	t.Parallel()

	//nolint:err113 // Test error, intentionally not wrapped
	plain := errors.New("something went wrong")

	var js bytes.Buffer
	require.NoError(t, output.FormatError(&js, plain, output.FormatJSON))
	var result output.ErrorOutput
	require.NoError(t, json.Unmarshal(js.Bytes(), &result))
	assert.Equal(t, "GENERAL_ERROR", result.Error.Code)
	assert.Equal(t, "something went wrong", result.Error.Message)
	assert.Equal(t, ledgererr.ExitGeneral, result.Error.ExitCode)

	var text bytes.Buffer
	require.NoError(t, output.FormatError(&text, plain, output.FormatText))
	assert.Equal(t, "Error: something went wrong\n", text.String())
}

func TestFormatError_LedgerError_JSON(t *testing.T) {
	t.Parallel()

	err := ledgererr.WithDetails(ledgererr.ErrValidationFailed, map[string]string{
		"backup": "ledgerbox-backup-20260314-092653.json",
		"errors": "2",
	})
	err = ledgererr.WithSuggestion(err, "run 'ledgerbox validate' to see every issue")

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, err, output.FormatJSON))

	var result output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "VALIDATION_FAILED", result.Error.Code)
	assert.Equal(t, "2", result.Error.Details["errors"])
	assert.Equal(t, "run 'ledgerbox validate' to see every issue", result.Error.Suggestion)
	assert.Equal(t, ledgererr.ExitInput, result.Error.ExitCode)
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"error\""))
}

func TestFormatError_LedgerError_Text(t *testing.T) {
	t.Parallel()

	err := ledgererr.WithDetails(ledgererr.ErrBackupNotFound, map[string]string{
		"store":  "local",
		"backup": "missing.json",
	})
	err = ledgererr.WithSuggestion(err, "list backups with 'ledgerbox list'")

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, err, output.FormatText))

	want := "Error: backup file not found\n" +
		"\nDetails:\n" +
		"  backup: missing.json\n" +
		"  store: local\n" +
		"\nSuggestion: list backups with 'ledgerbox list'\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatError_WrappedLedgerErrorKeepsContext(t *testing.T) {
	t.Parallel()

	//nolint:err113 // Test error
	err := fmt.Errorf("%w: %w", ledgererr.ErrDecryptionFailed, errors.New("no identity matched"))

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, err, output.FormatJSON))

	var result output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, ledgererr.Code(ledgererr.ErrDecryptionFailed), result.Error.Code)
	assert.Contains(t, result.Error.Message, "no identity matched")
}

func TestFormatError_WriterError(t *testing.T) {
	t.Parallel()
	assert.Error(t, output.FormatError(failingWriter{}, ledgererr.ErrGeneral, output.FormatText))
	assert.Error(t, output.FormatError(failingWriter{}, ledgererr.ErrGeneral, output.FormatJSON))
}
