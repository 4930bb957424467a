package backup

import (
	"encoding/json"
	"fmt"

	"github.com/mrz1836/ledgerbox/internal/entity"
)

// Level is the severity of a validation issue.
type Level string

// Issue levels. Only errors make a report invalid.
const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// IssueType classifies a validation issue.
type IssueType string

// Issue types.
const (
	IssueSchema     IssueType = "schema"
	IssueIntegrity  IssueType = "integrity"
	IssueChecksum   IssueType = "checksum"
	IssuePermission IssueType = "permission"
)

// Issue is one finding of a validation pass.
type Issue struct {
	Level   Level          `json:"level"`
	Type    IssueType      `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func newIssue(level Level, typ IssueType, details map[string]any, format string, args ...any) Issue {
	return Issue{
		Level:   level,
		Type:    typ,
		Message: fmt.Sprintf(format, args...),
		Details: details,
	}
}

// Preview summarizes the contents of a backup.
type Preview struct {
	TotalRecords int                               `json:"totalRecords"`
	RecordCounts map[entity.Type]int               `json:"recordCounts"`
	SampleData   map[entity.Type][]json.RawMessage `json:"sampleData"`
}

// Report is the outcome of validating a backup file. A report is always
// produced, even for input that is not JSON at all.
type Report struct {
	Valid    bool      `json:"valid"`
	Issues   []Issue   `json:"issues"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Preview  Preview   `json:"preview"`
}

func newReport() *Report {
	return &Report{
		Issues: []Issue{},
		Preview: Preview{
			RecordCounts: map[entity.Type]int{},
			SampleData:   map[entity.Type][]json.RawMessage{},
		},
	}
}

func (r *Report) add(issues ...Issue) {
	r.Issues = append(r.Issues, issues...)
}

// finish sets Valid from the collected issues.
func (r *Report) finish() *Report {
	r.Valid = !r.HasErrors()
	return r
}

// HasErrors reports whether any issue is error level.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Level == LevelError {
			return true
		}
	}
	return false
}

// Errors returns the error-level issues.
func (r *Report) Errors() []Issue {
	return r.filter(LevelError)
}

// Warnings returns the warning-level issues.
func (r *Report) Warnings() []Issue {
	return r.filter(LevelWarning)
}

func (r *Report) filter(level Level) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Level == level {
			out = append(out, issue)
		}
	}
	return out
}
