package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mrz1836/ledgerbox/internal/backup"
	"github.com/mrz1836/ledgerbox/internal/entity"
)

// ValidationView presents a validation report for one backup.
type ValidationView struct {
	Source string `json:"source"`
	*backup.Report
}

// RenderText implements TextRenderer.
func (v ValidationView) RenderText(w io.Writer) error {
	var sb strings.Builder

	status := "valid"
	if !v.Valid {
		status = "invalid"
	}
	fmt.Fprintf(&sb, "Backup:   %s\n", v.Source)
	fmt.Fprintf(&sb, "Status:   %s (%d errors, %d warnings)\n", status, len(v.Errors()), len(v.Warnings()))

	if m := v.Metadata; m != nil {
		fmt.Fprintf(&sb, "Exported: %s by %s %s (schema %s)\n",
			m.ExportedAt.UTC().Format(time.RFC3339), m.App.Name, m.App.Version, m.SchemaVersion)
		fmt.Fprintf(&sb, "Owner:    %s\n", m.Owner.UserID)
		fmt.Fprintf(&sb, "Records:  %d\n", v.Preview.TotalRecords)
		if m.Meta.Notes != nil {
			fmt.Fprintf(&sb, "Notes:    %s\n", *m.Meta.Notes)
		}

		sb.WriteString("\n")
		counts := NewTable("TYPE", "RECORDS")
		counts.AlignRight(1)
		for _, t := range entity.AllTypes() {
			counts.AddRow(t.String(), strconv.Itoa(v.Preview.RecordCounts[t]))
		}
		_ = counts.Render(&sb)
	}

	if len(v.Issues) > 0 {
		sb.WriteString("\n")
		issues := NewTable("LEVEL", "TYPE", "MESSAGE")
		for _, issue := range v.Issues {
			issues.AddRow(string(issue.Level), string(issue.Type), issue.Message)
		}
		_ = issues.Render(&sb)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// ImportView presents the outcome of an import.
type ImportView struct {
	Source string `json:"source"`
	*backup.ImportResult
}

// RenderText implements TextRenderer.
func (v ImportView) RenderText(w io.Writer) error {
	var sb strings.Builder

	if v.DryRun {
		fmt.Fprintf(&sb, "Dry run: %s is valid, nothing was imported\n", v.Source)
		_, err := io.WriteString(w, sb.String())
		return err
	}

	status := "complete"
	if !v.Success {
		status = fmt.Sprintf("finished with %d errors", len(v.Errors))
	}
	fmt.Fprintf(&sb, "Import %s: %s\n", status, v.Source)
	fmt.Fprintf(&sb, "Batch:    %s\n", v.BatchID)
	fmt.Fprintf(&sb, "Duration: %s\n\n", v.Duration.Round(time.Millisecond))

	table := NewTable("TYPE", "CREATED", "SKIPPED", "ERRORS")
	table.AlignRight(1, 2, 3)
	for _, t := range entity.AllTypes() {
		created, inCreated := v.Summary.Created[t]
		if !inCreated {
			continue
		}
		table.AddRow(t.String(), strconv.Itoa(created),
			strconv.Itoa(v.Summary.Skipped[t]), strconv.Itoa(v.Summary.Errors[t]))
	}
	_ = table.Render(&sb)

	if len(v.Errors) > 0 {
		sb.WriteString("\nFailed records:\n")
		for _, e := range v.Errors {
			fmt.Fprintf(&sb, "  %s\n", e)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// ArchiveView describes a stored backup.
type ArchiveView struct {
	Name       string        `json:"name"`
	Location   string        `json:"location"`
	Sealed     bool          `json:"sealed"`
	Checksum   string        `json:"checksum"`
	ExportedAt time.Time     `json:"exported_at"`
	Counts     backup.Counts `json:"counts"`
}

// NewArchiveView builds the view of an archived backup.
func NewArchiveView(a *backup.Archived) ArchiveView {
	return ArchiveView{
		Name:       a.Name,
		Location:   a.Location,
		Sealed:     a.Sealed,
		Checksum:   a.File.Checksum.Value,
		ExportedAt: a.File.ExportedAt,
		Counts:     a.File.Counts,
	}
}

// RenderText implements TextRenderer.
func (v ArchiveView) RenderText(w io.Writer) error {
	sealed := ""
	if v.Sealed {
		sealed = " (encrypted)"
	}
	_, err := fmt.Fprintf(w, "Backup written to %s%s\nRecords:  %d\nChecksum: %s\n",
		v.Location, sealed, v.Counts.Total(), v.Checksum)
	return err
}

// ListView lists archived backups.
type ListView struct {
	Backups []string `json:"backups"`
}

// RenderText implements TextRenderer.
func (v ListView) RenderText(w io.Writer) error {
	if len(v.Backups) == 0 {
		_, err := fmt.Fprintln(w, "No backups found")
		return err
	}
	table := NewTable("NAME")
	table.SetNoHeader(true)
	for _, name := range v.Backups {
		table.AddRow(name)
	}
	return table.Render(w)
}
