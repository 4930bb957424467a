package backup

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mrz1836/ledgerbox/internal/entity"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

// ComputeChecksum returns the lowercase hex SHA-256 digest of the canonical
// form of {data, schema_version}.
func ComputeChecksum(data Data, schemaVersion string) (string, error) {
	payload, err := CanonicalPayload(data, schemaVersion)
	if err != nil {
		return "", err
	}
	return CalculateChecksum(payload), nil
}

// CalculateChecksum computes the SHA256 checksum of raw bytes.
func CalculateChecksum(b []byte) string {
	hash := sha256.Sum256(b)
	return hex.EncodeToString(hash[:])
}

// VerifyChecksum verifies that data and schemaVersion match expected.
func VerifyChecksum(data Data, schemaVersion, expected string) error {
	actual, err := ComputeChecksum(data, schemaVersion)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("%w: %w: expected %s, got %s", ledgererr.ErrBackupCorrupted, ErrChecksumMismatch, expected, actual)
	}
	return nil
}

// CanonicalPayload serializes {"data": ..., "schema_version": ...} with
// object keys sorted at every depth, no insignificant whitespace, no HTML
// escaping, and numbers kept in their literal form. Every entity type is
// present, as an empty array when it has no records.
func CanonicalPayload(data Data, schemaVersion string) ([]byte, error) {
	collections := make(map[string]any, len(entity.AllTypes()))
	for _, t := range entity.AllTypes() {
		raw := data.Records(t)
		records := make([]any, len(raw))
		for i, rec := range raw {
			if !utf8.Valid(rec) {
				return nil, fmt.Errorf("%w: %s[%d]: %w", ledgererr.ErrInvalidFormat, t, i, errInvalidUTF8)
			}
			v, err := decodePreservingNumbers(rec)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %w", ledgererr.ErrInvalidFormat, t, i, err)
			}
			records[i] = v
		}
		collections[string(t)] = records
	}

	doc := map[string]any{
		"data":           collections,
		"schema_version": schemaVersion,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding canonical payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

var (
	// ErrChecksumMismatch indicates the recomputed digest differs from the stored one.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	errTrailingData = errors.New("trailing data after record")
	errInvalidUTF8  = errors.New("record is not valid UTF-8")
)

// decodePreservingNumbers decodes one JSON value into generic maps and
// slices. encoding/json writes map keys in sorted order, which makes the
// re-encoded form independent of the producer's key order.
func decodePreservingNumbers(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errTrailingData
	}
	return v, nil
}
