package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mrz1836/ledgerbox/internal/auth"
	"github.com/mrz1836/ledgerbox/internal/entity"
	"github.com/mrz1836/ledgerbox/internal/version"
)

// SampleSize is the number of sample records per entity type in a preview.
const SampleSize = 3

// Validator checks untrusted backup files. Validation never fails with an
// error: every finding, including unreadable input, becomes an Issue.
type Validator struct {
	identity   auth.IdentityProvider
	structural *validator.Validate
	opts       options
}

// NewValidator creates a Validator that checks ownership against identity.
func NewValidator(identity auth.IdentityProvider, opts ...Option) *Validator {
	return &Validator{
		identity:   identity,
		structural: newStructValidator(),
		opts:       newOptions(opts),
	}
}

// Validate checks raw and returns the report.
func (v *Validator) Validate(ctx context.Context, raw []byte) *Report {
	_, report := v.ValidateFile(ctx, raw)
	return report
}

// ValidateReader reads at most one byte past the size limit from r and
// validates what it read.
func (v *Validator) ValidateReader(ctx context.Context, r io.Reader) (*File, *Report) {
	raw, err := io.ReadAll(io.LimitReader(r, v.opts.maxFileSize+1))
	if err != nil {
		report := newReport()
		report.add(newIssue(LevelError, IssueSchema, map[string]any{"error": err.Error()},
			"cannot read backup file"))
		return nil, v.record(report.finish())
	}
	return v.ValidateFile(ctx, raw)
}

// ValidateFile checks raw and also returns the decoded file when it passed
// the structural checks. The file is returned even when the report is
// invalid for non-structural reasons.
func (v *Validator) ValidateFile(ctx context.Context, raw []byte) (*File, *Report) {
	report := newReport()
	file := v.validate(ctx, raw, report)
	return file, v.record(report.finish())
}

func (v *Validator) validate(ctx context.Context, raw []byte, report *Report) *File {
	if int64(len(raw)) > v.opts.maxFileSize {
		report.add(newIssue(LevelError, IssueSchema,
			map[string]any{"size": len(raw), "max_size": v.opts.maxFileSize},
			"backup file exceeds the maximum size of %d bytes", v.opts.maxFileSize))
		return nil
	}

	if !json.Valid(raw) {
		report.add(newIssue(LevelError, IssueSchema, nil, "backup file is not valid JSON"))
		return nil
	}

	// encoding/json replaces invalid bytes with U+FFFD, so distinct files
	// would share a digest.
	if !utf8.Valid(raw) {
		report.add(newIssue(LevelError, IssueSchema, nil, "backup file is not valid UTF-8"))
		return nil
	}

	file, ds, ok := v.checkStructure(raw, report)
	if !ok {
		return nil
	}
	report.Metadata = file.Metadata()

	v.checkVersion(file, report)
	v.checkOwner(ctx, file, report)
	checkCounts(file, report)
	checkDigest(file, report)
	report.add(CheckIntegrity(ds)...)
	report.Preview = buildPreview(file)

	v.opts.logger.DebugFields("validated backup", Fields{
		"exported_at": file.ExportedAt.Format(time.RFC3339),
		"records":     report.Preview.TotalRecords,
		"issues":      len(report.Issues),
	})
	return file
}

// checkStructure runs the shape checks. Any failure here is fatal and stops
// the remaining checks.
func (v *Validator) checkStructure(raw []byte, report *Report) (*File, *entity.Dataset, bool) {
	var shape fileSchema
	if err := json.Unmarshal(raw, &shape); err != nil {
		report.add(structureIssue([]FieldError{{Field: "$", Rule: err.Error()}}))
		return nil, nil, false
	}
	if err := v.structural.Struct(&shape); err != nil {
		report.add(structureIssue(fieldErrors(err)))
		return nil, nil, false
	}

	var file File
	if err := json.Unmarshal(raw, &file); err != nil {
		report.add(structureIssue([]FieldError{{Field: "$", Rule: err.Error()}}))
		return nil, nil, false
	}

	ds, decodeErrs := entity.Decode(file.Data)
	if len(decodeErrs) > 0 {
		fields := make([]FieldError, 0, len(decodeErrs))
		for _, de := range decodeErrs {
			fields = append(fields, FieldError{
				Field: fmt.Sprintf("data.%s[%d]", de.Type, de.Index),
				Rule:  de.Err.Error(),
			})
		}
		report.add(structureIssue(fields))
		return nil, nil, false
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		unknown := unknownDataKeys(envelope.Data)
		for _, key := range sortedKeys(unknown) {
			details := map[string]any{"key": key}
			msg := fmt.Sprintf("unknown collection %q under data is ignored", key)
			if suggestion := unknown[key]; suggestion != "" {
				details["suggestion"] = suggestion
				msg += fmt.Sprintf("; did you mean %q?", suggestion)
			}
			report.add(newIssue(LevelWarning, IssueSchema, details, "%s", msg))
		}
	}

	return &file, ds, true
}

func structureIssue(fields []FieldError) Issue {
	return newIssue(LevelError, IssueSchema, map[string]any{"fields": fields},
		"backup file does not match the expected structure (%d problem(s))", len(fields))
}

func (v *Validator) checkVersion(file *File, report *Report) {
	if file.SchemaVersion != v.opts.schemaVersion {
		report.add(newIssue(LevelError, IssueSchema,
			map[string]any{"expected": v.opts.schemaVersion, "actual": file.SchemaVersion},
			"unsupported schema version %q, expected %q", file.SchemaVersion, v.opts.schemaVersion))
	}
	if !version.IsDevelopment(version.Version) && version.IsNewerVersion(version.Version, file.App.Version) {
		report.add(newIssue(LevelWarning, IssueSchema,
			map[string]any{"producer": file.App.Version, "current": version.Version},
			"backup was produced by %s %s, newer than this build", file.App.Name, file.App.Version))
	}
}

func (v *Validator) checkOwner(ctx context.Context, file *File, report *Report) {
	if v.identity == nil {
		report.add(newIssue(LevelError, IssuePermission, nil, "no authenticated user to verify backup ownership"))
		return
	}
	id, err := v.identity.Identity(ctx)
	if err != nil {
		report.add(newIssue(LevelError, IssuePermission, map[string]any{"error": err.Error()},
			"no authenticated user to verify backup ownership"))
		return
	}

	owner, err := uuid.Parse(file.Owner.UserID)
	if err != nil || owner != id.UserID {
		report.add(newIssue(LevelError, IssuePermission,
			map[string]any{"owner": file.Owner.UserID, "current_user": id.UserID.String()},
			"backup belongs to a different user"))
	}
}

func checkCounts(file *File, report *Report) {
	actual := file.Data.Counts()
	for _, t := range entity.AllTypes() {
		want, got := file.Counts.Get(t), actual.Get(t)
		if want == got {
			continue
		}
		report.add(newIssue(LevelError, IssueIntegrity,
			map[string]any{"entity_type": t, "expected": want, "actual": got},
			"record count mismatch for %s: header says %d, data holds %d", t, want, got))
	}
}

func checkDigest(file *File, report *Report) {
	if file.Checksum.Algo != ChecksumAlgo {
		report.add(newIssue(LevelError, IssueChecksum,
			map[string]any{"algo": file.Checksum.Algo},
			"unsupported checksum algorithm %q", file.Checksum.Algo))
		return
	}

	actual, err := ComputeChecksum(file.Data, file.SchemaVersion)
	if err != nil {
		report.add(newIssue(LevelError, IssueChecksum, map[string]any{"error": err.Error()},
			"cannot compute checksum"))
		return
	}
	if actual != file.Checksum.Value {
		report.add(newIssue(LevelError, IssueChecksum,
			map[string]any{"expected": file.Checksum.Value, "actual": actual},
			"checksum mismatch: backup data was modified or corrupted"))
	}
}

func buildPreview(file *File) Preview {
	preview := Preview{
		TotalRecords: file.Counts.Total(),
		RecordCounts: file.Counts.Map(),
		SampleData:   make(map[entity.Type][]json.RawMessage, len(entity.AllTypes())),
	}
	for _, t := range entity.AllTypes() {
		records := file.Data.Records(t)
		n := min(len(records), SampleSize)
		preview.SampleData[t] = append([]json.RawMessage{}, records[:n]...)
	}
	return preview
}

func (v *Validator) record(report *Report) *Report {
	v.opts.metrics.RecordValidation(report.Valid)
	for _, issue := range report.Issues {
		v.opts.metrics.RecordIssue(string(issue.Level), string(issue.Type))
	}
	if !report.Valid {
		v.opts.logger.Info("backup rejected with %d error(s)", len(report.Errors()))
	}
	return report
}
