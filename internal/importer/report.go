package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lepinkainen/bookscape/internal/tui"
	"gopkg.in/yaml.v3"
)

// TermReport is the outcome of one search term.
type TermReport struct {
	Term       string `yaml:"term"`
	Fetched    int    `yaml:"fetched"`
	Written    int    `yaml:"written"`
	Failed     int    `yaml:"failed"`
	Duplicates int    `yaml:"duplicates"`
	Error      string `yaml:"error,omitempty"`
}

// Report is the outcome of a whole run.
type Report struct {
	StartedAt  time.Time    `yaml:"started_at"`
	FinishedAt time.Time    `yaml:"finished_at"`
	Cancelled  bool         `yaml:"cancelled,omitempty"`
	Terms      []TermReport `yaml:"terms"`
}

// Totals sums the per-term counters.
func (r Report) Totals() TermReport {
	total := TermReport{Term: "total"}
	for _, t := range r.Terms {
		total.Fetched += t.Fetched
		total.Written += t.Written
		total.Failed += t.Failed
		total.Duplicates += t.Duplicates
	}
	return total
}

// FailedFetches returns how many terms could not be fetched.
func (r Report) FailedFetches() int {
	n := 0
	for _, t := range r.Terms {
		if t.Error != "" {
			n++
		}
	}
	return n
}

// Render formats the report as a terminal table.
func (r Report) Render() string {
	rows := make([][]string, 0, len(r.Terms)+1)
	for _, t := range r.Terms {
		rows = append(rows, termRow(t))
	}
	total := r.Totals()
	rows = append(rows, termRow(total))

	footer := fmt.Sprintf("%d terms in %s", len(r.Terms), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	if r.Cancelled {
		footer += " (cancelled)"
	}

	return tui.Table{
		Title:   "Ingest summary",
		Headers: []string{"Term", "Fetched", "Written", "Failed", "Duplicates", "Error"},
		Rows:    rows,
		Footer:  footer,
	}.Render()
}

func termRow(t TermReport) []string {
	return []string{
		t.Term,
		strconv.Itoa(t.Fetched),
		strconv.Itoa(t.Written),
		strconv.Itoa(t.Failed),
		strconv.Itoa(t.Duplicates),
		t.Error,
	}
}

// WriteYAML writes the report to path, creating parent directories.
func (r Report) WriteYAML(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
