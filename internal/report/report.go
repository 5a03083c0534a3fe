// Package report serializes analysis results for people and for other tools.
//
// CSV and JSON carry exactly the idea, uniqueness_score and similar_projects
// fields; HTML and Markdown are readable renderings of the same record.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chriscorrea/ideascore/internal/analysis"
)

// Format selects a report serialization.
type Format int

const (
	// CSV writes a header and one data row (default)
	CSV Format = iota
	// JSON writes a single object
	JSON
	// HTML writes a standalone page
	HTML
	// Markdown writes the HTML page converted to Markdown
	Markdown
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case JSON:
		return "json"
	case HTML:
		return "html"
	case Markdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// ParseFormat converts a format name into a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "html", "htm":
		return HTML, nil
	case "markdown", "md":
		return Markdown, nil
	default:
		return CSV, fmt.Errorf("unknown report format %q", name)
	}
}

// FormatFromPath infers the format from a file extension, falling back to
// fallback for unknown extensions.
func FormatFromPath(path string, fallback Format) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return fallback
	}
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return fallback
}

// Record is the serialized form of a result, with the score rounded to one
// decimal place.
type Record struct {
	Idea            string           `json:"idea"`
	UniquenessScore float64          `json:"uniqueness_score"`
	SimilarProjects []analysis.Match `json:"similar_projects"`
}

// NewRecord converts a result into its serialized form.
func NewRecord(r analysis.Result) Record {
	matches := r.SimilarProjects
	if matches == nil {
		matches = []analysis.Match{}
	}
	return Record{
		Idea:            r.Idea,
		UniquenessScore: r.RoundedScore(),
		SimilarProjects: matches,
	}
}

// HighSimilarity reports whether the result scores below threshold.
func HighSimilarity(r analysis.Result, threshold float64) bool {
	return r.RoundedScore() < threshold
}

// FormatScore renders a score with exactly one decimal place.
func FormatScore(score float64) string {
	return strconv.FormatFloat(analysis.Round1(score), 'f', 1, 64)
}

// Write serializes r to w in the given format.
func Write(w io.Writer, r analysis.Result, format Format) error {
	switch format {
	case CSV:
		return writeCSV(w, r)
	case JSON:
		return writeJSON(w, r)
	case HTML:
		return writeHTML(w, r)
	case Markdown:
		return writeMarkdown(w, r)
	default:
		return fmt.Errorf("unsupported report format %v", format)
	}
}

// SaveFile writes r to path, replacing any existing file. The report is
// rendered fully before the file is touched.
func SaveFile(path string, r analysis.Result, format Format) error {
	var buf bytes.Buffer
	if err := Write(&buf, r, format); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report %q: %w", path, err)
	}
	return nil
}

func writeCSV(w io.Writer, r analysis.Result) error {
	rec := NewRecord(r)
	projects, err := json.Marshal(rec.SimilarProjects)
	if err != nil {
		return fmt.Errorf("encode similar projects: %w", err)
	}

	cw := csv.NewWriter(w)
	rows := [][]string{
		{"idea", "uniqueness_score", "similar_projects"},
		{rec.Idea, FormatScore(rec.UniquenessScore), string(projects)},
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, r analysis.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewRecord(r)); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}
