package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docsite/internal/doctree"
)

// Parser converts raw document bytes into a DocTree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.DocTree, error)
}

// MarkdownExtensions lists the extensions treated as markdown documents.
var MarkdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if MarkdownExtensions[ext] {
		return &MarkdownParser{}, nil
	}
	return nil, fmt.Errorf("unsupported file extension: %s", ext)
}

// IsMarkdown checks if a file extension marks a markdown document.
func IsMarkdown(filename string) bool {
	return MarkdownExtensions[strings.ToLower(filepath.Ext(filename))]
}
