package nav

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func decodeString(t *testing.T, src string) Node {
	t.Helper()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	n, err := Decode(&doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return n
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"foo-bar_baz.md", "Foo Bar Baz"},
		{"user-guide/quickstart.md", "Quickstart"},
		{"README.md", "Readme"},
		{"api-v2.md", "Api V2"},
		{"docs/archive.tar.gz", "Archive.Tar"},
		{"noext", "Noext"},
		{"2nd-edition.md", "2Nd Edition"},
	}
	for _, tt := range tests {
		if got := DeriveTitle(tt.path); got != tt.want {
			t.Errorf("DeriveTitle(%q): expected %q, got %q", tt.path, tt.want, got)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"agent loop", "Agent Loop"},
		{"MCP tools", "Mcp Tools"},
		{"2nd edition", "2Nd Edition"},
		{"日本abc", "日本Abc"},
		{"o'neil", "O'Neil"},
	}
	for _, tt := range tests {
		if got := TitleCase(tt.in); got != tt.want {
			t.Errorf("TitleCase(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestDecode_RepeatedLabel(t *testing.T) {
	n := decodeString(t, `
A: x.md
B: z.md
A: y.md
`)
	want := Group{Children: []Node{
		Labeled{Label: "A", Child: Leaf{Path: "y.md"}},
		Labeled{Label: "B", Child: Leaf{Path: "z.md"}},
	}}
	if !reflect.DeepEqual(n, want) {
		t.Errorf("unexpected tree:\n got  %#v\n want %#v", n, want)
	}
	if _, ok := Titles(n).Get("x.md"); ok {
		t.Error("shadowed entry should not be checked")
	}
}

func TestDecode_Variants(t *testing.T) {
	n := decodeString(t, `
- index.md
- Guide: guide.md
- Section:
    - Sub: section/sub.md
`)
	want := Group{Children: []Node{
		Leaf{Path: "index.md"},
		Group{Children: []Node{Labeled{Label: "Guide", Child: Leaf{Path: "guide.md"}}}},
		Group{Children: []Node{Labeled{Label: "Section", Child: Group{Children: []Node{
			Group{Children: []Node{Labeled{Label: "Sub", Child: Leaf{Path: "section/sub.md"}}}},
		}}}}},
	}}
	if !reflect.DeepEqual(n, want) {
		t.Errorf("unexpected tree:\n got  %#v\n want %#v", n, want)
	}
}

func TestTitles_Rules(t *testing.T) {
	n := decodeString(t, `
- Home: index.md
- User Guide:
    - Concepts:
        - Agent Loop: user-guide/concepts/agent-loop.md
    - user-guide/quick_start.md
- Examples: https://example.com/examples
- Empty:
`)
	m := Titles(n)

	want := map[string]string{
		"index.md":                          "Home",
		"user-guide/concepts/agent-loop.md": "Agent Loop",
		"user-guide/quick_start.md":         "Quick Start",
		"https://example.com/examples":      "Examples",
	}
	if m.Len() != len(want) {
		t.Fatalf("expected %d paths, got %d: %v", len(want), m.Len(), m.Paths())
	}
	for p, title := range want {
		got, ok := m.Get(p)
		if !ok {
			t.Errorf("missing path %q", p)
			continue
		}
		if got != title {
			t.Errorf("path %q: expected %q, got %q", p, title, got)
		}
	}
	// Section labels are not documents.
	if _, ok := m.Get("User Guide"); ok {
		t.Error("section label should not appear as a path")
	}
}

func TestTitles_LastWriteWins(t *testing.T) {
	n := decodeString(t, `
- First: shared.md
- other.md
- Second: shared.md
`)
	m := Titles(n)

	got, _ := m.Get("shared.md")
	if got != "Second" {
		t.Errorf("expected later label to win, got %q", got)
	}
	paths := m.Paths()
	if len(paths) != 2 || paths[0] != "shared.md" || paths[1] != "other.md" {
		t.Errorf("expected first-insertion order [shared.md other.md], got %v", paths)
	}
}

func TestTitles_Alias(t *testing.T) {
	n := decodeString(t, `
- Shared: &shared
    - Page: page.md
- Again: *shared
`)
	m := Titles(n)
	if got, _ := m.Get("page.md"); got != "Page" {
		t.Errorf("expected %q, got %q", "Page", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	cfg := `site_name: Example
markdown_extensions:
  - pymdownx.emoji:
      emoji_index: !!python/name:material.extensions.emoji.twemoji
copyright: !ENV [COPYRIGHT, "none"]
nav:
  - Home: index.md
  - Guide: x/y.md
`
	p := filepath.Join(dir, "mkdocs.yml")
	if err := os.WriteFile(p, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := LoadFile(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := Titles(n)
	if got, _ := m.Get("x/y.md"); got != "Guide" {
		t.Errorf("expected %q, got %q", "Guide", got)
	}
}

func TestLoadFile_NoNav(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "mkdocs.yml")
	if err := os.WriteFile(p, []byte("site_name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(p); err == nil {
		t.Error("expected error for config without nav")
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("expected error for missing config")
	}
}
