package apidocs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxHeadingLevel caps the heading depth of a rendered module.
const MaxHeadingLevel = 3

// Entry is one module directive on a listing page.
type Entry struct {
	Module       string
	HeadingLevel int
	ShowMembers  bool // false for the category root and inferred containers
}

// Listing is the ordered set of directives for one category.
type Listing struct {
	Category string
	Entries  []Entry
}

// HeadingLevel returns min(segments-1, MaxHeadingLevel).
func HeadingLevel(module string) int {
	level := strings.Count(module, ".")
	if level > MaxHeadingLevel {
		return MaxHeadingLevel
	}
	return level
}

// BuildListing orders a category's modules: the root module first, whether or
// not it is loadable, then members and containers sorted by identifier.
func BuildListing(cat Category) Listing {
	containers := make(map[string]bool, len(cat.Containers))
	for _, c := range cat.Containers {
		containers[c] = true
	}

	seen := map[string]bool{cat.Root: true}
	var rest []string
	for _, m := range append(append([]string{}, cat.Members...), cat.Containers...) {
		if seen[m] {
			continue
		}
		seen[m] = true
		rest = append(rest, m)
	}
	sort.Strings(rest)

	l := Listing{Category: cat.Name}
	for _, m := range append([]string{cat.Root}, rest...) {
		l.Entries = append(l.Entries, Entry{
			Module:       m,
			HeadingLevel: HeadingLevel(m),
			ShowMembers:  m != cat.Root && !containers[m],
		})
	}
	return l
}

// Render formats the listing as mkdocstrings directive blocks.
func (l Listing) Render() string {
	var b strings.Builder
	for _, e := range l.Entries {
		fmt.Fprintf(&b, "::: %s\n", e.Module)
		b.WriteString("    options:\n")
		fmt.Fprintf(&b, "      heading_level: %d\n", e.HeadingLevel)
		if !e.ShowMembers {
			b.WriteString("      members: false\n")
		}
	}
	return b.String()
}

// Filename is the page name for the listing.
func (l Listing) Filename() string {
	return l.Category + ".md"
}

// WriteListings writes one page per listing into dir, creating it if needed,
// and returns the written paths.
func WriteListings(dir string, listings []Listing) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	written := make([]string, 0, len(listings))
	for _, l := range listings {
		p := filepath.Join(dir, l.Filename())
		if err := os.WriteFile(p, []byte(l.Render()), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}
