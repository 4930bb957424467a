package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// FormatError formats an error for display.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	if format == FormatJSON {
		return formatErrorJSON(w, err)
	}
	return formatErrorText(w, err)
}

// formatErrorJSON outputs error in JSON format.
func formatErrorJSON(w io.Writer, err error) error {
	var le *ledgererr.LedgerError
	if errors.As(err, &le) {
		output := ErrorOutput{
			Error: ErrorDetail{
				Code:       le.Code,
				Message:    messageOf(err, le),
				Details:    le.Details,
				Suggestion: le.Suggestion,
				ExitCode:   le.ExitCode,
			},
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	// Generic error
	output := ErrorOutput{
		Error: ErrorDetail{
			Code:     "GENERAL_ERROR",
			Message:  err.Error(),
			ExitCode: ledgererr.ExitGeneral,
		},
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// formatErrorText outputs error in text format.
func formatErrorText(w io.Writer, err error) error {
	var sb strings.Builder

	var le *ledgererr.LedgerError
	if errors.As(err, &le) {
		fmt.Fprintf(&sb, "Error: %s\n", messageOf(err, le))

		if len(le.Details) > 0 {
			sb.WriteString("\nDetails:\n")
			keys := make([]string, 0, len(le.Details))
			for k := range le.Details {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				fmt.Fprintf(&sb, "  %s: %s\n", k, le.Details[k])
			}
		}

		if le.Suggestion != "" {
			fmt.Fprintf(&sb, "\nSuggestion: %s\n", le.Suggestion)
		}
	} else {
		fmt.Fprintf(&sb, "Error: %s\n", err.Error())
	}

	_, writeErr := w.Write([]byte(sb.String()))
	return writeErr
}

// messageOf prefers the outer error text when le was wrapped, since the
// wrapping carries the context added on the way up.
func messageOf(err error, le *ledgererr.LedgerError) string {
	if err != error(le) {
		return err.Error()
	}
	if le.Cause != nil {
		return fmt.Sprintf("%s: %v", le.Message, le.Cause)
	}
	return le.Message
}
