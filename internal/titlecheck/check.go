// Package titlecheck verifies that every markdown document reachable from a
// site's navigation carries a frontmatter title equal to its navigation label.
package titlecheck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docsite/internal/frontmatter"
	"github.com/dgallion1/docsite/internal/nav"
	"github.com/dgallion1/docsite/internal/parser"
)

// Checker validates the documents referenced by one site configuration.
type Checker struct {
	ConfigPath string // site configuration, e.g. mkdocs.yml
	DocsDir    string // fallback directory, relative to the config's directory
	Log        *slog.Logger
}

// NewChecker returns a Checker for the given configuration file.
func NewChecker(configPath, docsDir string, log *slog.Logger) *Checker {
	return &Checker{ConfigPath: configPath, DocsDir: docsDir, Log: log}
}

// Mismatch is a document whose title differs from its navigation label.
type Mismatch struct {
	File     string `json:"file"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Drift is a document whose first h1 differs from its frontmatter title.
type Drift struct {
	File    string `json:"file"`
	Title   string `json:"title"`
	Heading string `json:"heading"`
	Line    int    `json:"line"`
}

// Report is the outcome of one validation run.
type Report struct {
	Config        string     `json:"config"`
	Checked       int        `json:"checked"`
	Missing       []string   `json:"missing"`
	WithoutTitles []string   `json:"without_titles"`
	WrongTitles   []Mismatch `json:"wrong_titles"`
	HeadingDrift  []Drift    `json:"heading_drift,omitempty"`
}

// OK reports whether the run found no violations. Heading drift is
// informational only.
func (r *Report) OK() bool {
	return len(r.Missing) == 0 && len(r.WithoutTitles) == 0 && len(r.WrongTitles) == 0
}

// Err returns the aggregated violations, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return &ValidationError{Report: r}
}

// ValidationError lists every violation found in a run.
type ValidationError struct {
	Report *Report
}

func (e *ValidationError) Error() string {
	r := e.Report
	name := filepath.Base(r.Config)
	var sections []string

	if len(r.Missing) > 0 {
		sections = append(sections, fmt.Sprintf("Missing files referenced in %s: %s", name, strings.Join(r.Missing, ", ")))
	}
	if len(r.WithoutTitles) > 0 {
		sections = append(sections, fmt.Sprintf("Files without frontmatter titles: %s", strings.Join(r.WithoutTitles, ", ")))
	}
	if len(r.WrongTitles) > 0 {
		details := make([]string, 0, len(r.WrongTitles))
		for _, m := range r.WrongTitles {
			details = append(details, fmt.Sprintf("%s: expected '%s', got '%s'", m.File, m.Expected, m.Actual))
		}
		sections = append(sections, "Files with incorrect titles:\n  "+strings.Join(details, "\n  "))
	}

	return strings.Join(sections, "\n\n")
}

// Document is one navigation entry after path resolution.
type Document struct {
	NavPath  string // path as written in the navigation
	File     string // resolved filesystem path
	Expected string
	Exists   bool
}

// Documents loads the navigation and resolves every on-site markdown entry.
// Non-markdown targets and external URLs are left out.
func (c *Checker) Documents() ([]Document, error) {
	tree, err := nav.LoadFile(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	titles := nav.Titles(tree)
	root := filepath.Dir(c.ConfigPath)

	var docs []Document
	for _, p := range titles.Paths() {
		if nav.IsExternal(p) {
			continue
		}
		expected, _ := titles.Get(p)

		file := filepath.Join(root, filepath.FromSlash(p))
		exists := fileExists(file)
		if !exists {
			alt := filepath.Join(root, c.DocsDir, filepath.FromSlash(p))
			if fileExists(alt) {
				file, exists = alt, true
			}
		}

		if !parser.IsMarkdown(file) {
			continue
		}
		docs = append(docs, Document{NavPath: p, File: file, Expected: expected, Exists: exists})
	}
	return docs, nil
}

// Check runs the validation. Violations are collected into the report; an
// unreadable document or malformed frontmatter aborts the run with an error.
func (c *Checker) Check(ctx context.Context) (*Report, error) {
	docs, err := c.Documents()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Config:        c.ConfigPath,
		Missing:       []string{},
		WithoutTitles: []string{},
		WrongTitles:   []Mismatch{},
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Checked++

		if !doc.Exists {
			report.Missing = append(report.Missing, doc.NavPath)
			continue
		}

		content, err := os.ReadFile(doc.File)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", doc.File, err)
		}

		fm, _ := frontmatter.Extract(string(content))
		if fm == "" {
			report.WithoutTitles = append(report.WithoutTitles, doc.File)
			continue
		}

		md, err := frontmatter.Parse(fm)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.File, err)
		}

		title, ok := md.Title()
		switch {
		case !ok:
			report.WithoutTitles = append(report.WithoutTitles, doc.File)
		case !title.IsString || title.Text != doc.Expected:
			report.WrongTitles = append(report.WrongTitles, Mismatch{
				File:     doc.File,
				Expected: doc.Expected,
				Actual:   title.Text,
			})
		default:
			if d, ok := c.headingDrift(doc.File, content, title.Text); ok {
				report.HeadingDrift = append(report.HeadingDrift, d)
			}
		}
	}

	c.logReport(report)
	return report, nil
}

// headingDrift compares the document's first h1 with its title. Documents
// without an h1 never drift.
func (c *Checker) headingDrift(file string, content []byte, title string) (Drift, bool) {
	p, err := parser.ForFile(file)
	if err != nil {
		return Drift{}, false
	}
	tree, err := p.Parse(bytes.NewReader(content), file)
	if err != nil {
		return Drift{}, false
	}
	h1 := tree.FirstHeading(1)
	if h1 == nil || h1.Title == title {
		return Drift{}, false
	}
	return Drift{File: file, Title: title, Heading: h1.Title, Line: h1.Line}, true
}

func (c *Checker) logReport(r *Report) {
	if c.Log == nil {
		return
	}
	for _, d := range r.HeadingDrift {
		c.Log.Warn("first heading differs from title", "file", d.File, "title", d.Title, "heading", d.Heading, "line", d.Line)
	}
	c.Log.Info("title check complete",
		"config", r.Config,
		"checked", r.Checked,
		"missing", len(r.Missing),
		"without_titles", len(r.WithoutTitles),
		"wrong_titles", len(r.WrongTitles),
	)
}

// IsValidationError reports whether err carries a violation report.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
