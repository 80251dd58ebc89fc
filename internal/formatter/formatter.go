// package formatter renders the movie board as CSV, Markdown, JSON or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

const dateLayout = "2006-01-02"

// Format is an output encoding for [BoardExport].
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatCSV, FormatMarkdown}

// ParseFormat maps a name to a [Format].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	switch f {
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}

// BoardExport is a snapshot of the board in display order.
type BoardExport struct {
	Name       string         `json:"name"`
	SortedBy   string         `json:"sorted_by,omitempty"`
	ExportedAt time.Time      `json:"exported_at"`
	Movies     []models.Movie `json:"movies"`
}

// Render encodes export in format f.
func Render(export *BoardExport, f Format, pretty bool) ([]byte, error) {
	switch f {
	case FormatText:
		return ExportToText(export)
	case FormatJSON:
		return ExportToJSON(export, pretty)
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// ExportToCSV converts a BoardExport to CSV with columns: ID, Title, Description, Created, Up, Down, Total, Comments
func ExportToCSV(export *BoardExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Description", "Created", "Up", "Down", "Total", "Comments"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range export.Movies {
		record := []string{
			m.ID,
			m.Title,
			m.Description,
			formatTime(m.CreatedAt, time.RFC3339),
			strconv.Itoa(m.UpVotes),
			strconv.Itoa(m.DownVotes),
			strconv.Itoa(m.TotalVotes),
			strconv.Itoa(len(m.Comments)),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a BoardExport to Markdown with one section per movie
func ExportToMarkdown(export *BoardExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Name))
	buf.WriteString(fmt.Sprintf("**Movies**: %d\n", len(export.Movies)))
	if export.SortedBy != "" {
		buf.WriteString(fmt.Sprintf("**Sorted by**: %s\n", export.SortedBy))
	}
	if !export.ExportedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Exported**: %s\n", export.ExportedAt.Format(time.RFC3339)))
	}

	for i, m := range export.Movies {
		buf.WriteString(fmt.Sprintf("\n## %d. %s\n\n", i+1, m.Title))
		if m.Description != "" {
			buf.WriteString(m.Description + "\n\n")
		}
		buf.WriteString(fmt.Sprintf("- **Votes**: +%d / -%d (total %d)\n", m.UpVotes, m.DownVotes, m.TotalVotes))
		buf.WriteString(fmt.Sprintf("- **Added**: %s\n", formatTime(m.CreatedAt, dateLayout)))
		buf.WriteString(fmt.Sprintf("- **ID**: `%s`\n", m.ID))

		if len(m.Comments) > 0 {
			buf.WriteString("\n### Comments\n\n")
			for _, c := range m.Comments {
				buf.WriteString(fmt.Sprintf("> **%s**: %s\n>\n", c.Author(), c.Body))
			}
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a BoardExport to plain text format
func ExportToText(export *BoardExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s: %d movies", export.Name, len(export.Movies)))
	if export.SortedBy != "" {
		buf.WriteString(fmt.Sprintf(" (sorted by %s)", export.SortedBy))
	}
	buf.WriteString("\n\n")

	for i, m := range export.Movies {
		buf.WriteString(fmt.Sprintf("%d. %s [%s]  +%d / -%d  (total %d)\n", i+1, m.Title, m.ID, m.UpVotes, m.DownVotes, m.TotalVotes))
		if m.Description != "" {
			buf.WriteString(fmt.Sprintf("   %s\n", m.Description))
		}
		buf.WriteString(fmt.Sprintf("   added %s\n", formatTime(m.CreatedAt, dateLayout)))
		for _, c := range m.Comments {
			lock := ""
			if !c.Deletable() {
				lock = " (has votes)"
			}
			buf.WriteString(fmt.Sprintf("   - [%s] %s: %s%s\n", c.ID, c.Author(), c.Body, lock))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes the BoardExport
func ExportToJSON(export *BoardExport, pretty bool) ([]byte, error) {
	data, err := shared.MarshalJSON(export, pretty)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

// WriteExport renders export in format f to dir/{base}.{ext}, creating dir as needed.
func WriteExport(export *BoardExport, f Format, dir, base string) (string, error) {
	if base == "" {
		base = "movies"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := Render(export, f, true)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", f, err)
	}

	path := filepath.Join(dir, base+"."+f.Ext())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(layout)
}
