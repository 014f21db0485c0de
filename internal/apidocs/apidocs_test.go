package apidocs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// fakeFetcher writes a fixed set of files into the destination.
type fakeFetcher struct {
	files map[string]string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, repoURL, dest string) error {
	f.calls++
	for name, content := range f.files {
		p := filepath.Join(dest, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return f.err
}

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, name := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFindContainers(t *testing.T) {
	members := []string{"pkg.tools.fs.read", "pkg.tools.fs.write", "pkg.tools.net"}
	got := FindContainers(members, "pkg.tools")
	want := []string{"pkg.tools.fs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFindContainers_Rules(t *testing.T) {
	tests := []struct {
		name    string
		members []string
		want    []string
	}{
		{
			name:    "single child is not a container",
			members: []string{"pkg.a.b.c", "pkg.a.d"},
			want:    []string{},
		},
		{
			name:    "existing module is not inferred",
			members: []string{"pkg.a.b", "pkg.a.b.c", "pkg.a.b.d"},
			want:    []string{},
		},
		{
			name:    "nested containers",
			members: []string{"pkg.a.b.c.x", "pkg.a.b.c.y", "pkg.a.b.z"},
			want:    []string{"pkg.a.b", "pkg.a.b.c"},
		},
		{
			name:    "root is never a container",
			members: []string{"pkg.a.x", "pkg.a.y"},
			want:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindContainers(tt.members, "pkg.a")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	modules := []string{
		"strands.tools.registry",
		"strands.agent.agent",
		"strands.tools.mcp.client",
		"strands.tools.mcp.types",
		"strands",
		"strands.agent",
	}
	cats := Categorize(modules)
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if cats[0].Name != "agent" || cats[1].Name != "tools" {
		t.Errorf("expected [agent tools], got [%s %s]", cats[0].Name, cats[1].Name)
	}
	if cats[0].Root != "strands.agent" {
		t.Errorf("expected root %q, got %q", "strands.agent", cats[0].Root)
	}
	if !reflect.DeepEqual(cats[1].Containers, []string{"strands.tools.mcp"}) {
		t.Errorf("expected tools containers [strands.tools.mcp], got %v", cats[1].Containers)
	}
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		module string
		want   int
	}{
		{"strands.tools", 1},
		{"strands.tools.mcp", 2},
		{"strands.tools.mcp.client", 3},
		{"strands.tools.mcp.client.session", 3},
	}
	for _, tt := range tests {
		if got := HeadingLevel(tt.module); got != tt.want {
			t.Errorf("HeadingLevel(%q): expected %d, got %d", tt.module, tt.want, got)
		}
	}
}

func TestBuildListing_RootFirst(t *testing.T) {
	cat := Category{
		Name:       "tools",
		Root:       "pkg.tools",
		Members:    []string{"pkg.tools.net", "pkg.tools.fs.write", "pkg.tools.fs.read", "pkg.tools"},
		Containers: []string{"pkg.tools.fs"},
	}
	l := BuildListing(cat)

	var order []string
	for _, e := range l.Entries {
		order = append(order, e.Module)
	}
	want := []string{"pkg.tools", "pkg.tools.fs", "pkg.tools.fs.read", "pkg.tools.fs.write", "pkg.tools.net"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
	if l.Entries[0].ShowMembers {
		t.Error("root module must suppress members")
	}
	if l.Entries[1].ShowMembers {
		t.Error("container module must suppress members")
	}
	if !l.Entries[2].ShowMembers {
		t.Error("regular module should list members")
	}
}

func TestBuildListing_RootInsertedWhenMissing(t *testing.T) {
	l := BuildListing(Category{Name: "a", Root: "pkg.a", Members: []string{"pkg.a.b"}})
	if len(l.Entries) != 2 || l.Entries[0].Module != "pkg.a" {
		t.Fatalf("expected root inserted first, got %+v", l.Entries)
	}
}

func TestListing_Render(t *testing.T) {
	l := BuildListing(Category{
		Name:       "tools",
		Root:       "pkg.tools",
		Members:    []string{"pkg.tools.fs.read", "pkg.tools.fs.write"},
		Containers: []string{"pkg.tools.fs"},
	})
	want := `::: pkg.tools
    options:
      heading_level: 1
      members: false
::: pkg.tools.fs
    options:
      heading_level: 2
      members: false
::: pkg.tools.fs.read
    options:
      heading_level: 3
::: pkg.tools.fs.write
    options:
      heading_level: 3
`
	if got := l.Render(); got != want {
		t.Errorf("unexpected render:\n%s\nwant:\n%s", got, want)
	}
	if l.Filename() != "tools.md" {
		t.Errorf("expected %q, got %q", "tools.md", l.Filename())
	}
}

func TestDiscover(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src,
		"strands/__init__.py",
		"strands/_version.py",
		"strands/agent/__init__.py",
		"strands/agent/agent.py",
		"strands/agent/_private.py",
		"strands/tools/__init__.py",
		"strands/tools/registry.py",
		"strands/tools/mcp/__init__.py",
		"strands/tools/mcp/client.py",
		"strands/experimental/__init__.py",
		"strands/experimental/hooks.py",
		"strands/loose/orphan.py", // no __init__.py
		"strands/tools/README.md",
	)
	root := filepath.Join(src, "strands")

	inv, err := NewPackageInventory(root, []string{"strands/experimental/**"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := Discover(root, inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"strands.agent.agent",
		"strands.tools.mcp.client",
		"strands.tools.registry",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNewPackageInventory_BadPattern(t *testing.T) {
	if _, err := NewPackageInventory(t.TempDir(), []string{"strands/[a"}); err == nil {
		t.Error("expected invalid pattern error")
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "absent")
	inv, _ := NewPackageInventory(root, nil)
	if _, err := Discover(root, inv); err == nil {
		t.Error("expected error for missing module root")
	}
}

func TestGenerate(t *testing.T) {
	work := t.TempDir()
	scratch := filepath.Join(work, "scratch")
	out := filepath.Join(work, "docs", "api-reference")

	fetcher := &fakeFetcher{files: map[string]string{
		"src/strands/__init__.py":            "",
		"src/strands/agent/__init__.py":      "",
		"src/strands/agent/agent.py":         "",
		"src/strands/tools/__init__.py":      "",
		"src/strands/tools/mcp/__init__.py":  "",
		"src/strands/tools/mcp/client.py":    "",
		"src/strands/tools/mcp/transport.py": "",
		"src/strands/tools/decorator.py":     "",
	}}
	g := NewGenerator(Options{
		RepoURL:    "https://example.com/sdk.git",
		ScratchDir: scratch,
		ModuleRoot: "src/strands",
		OutputDir:  out,
	}, fetcher, nil)

	res, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Modules != 4 {
		t.Errorf("expected 4 modules, got %d", res.Modules)
	}
	if !reflect.DeepEqual(res.Categories, []string{"agent", "tools"}) {
		t.Errorf("expected [agent tools], got %v", res.Categories)
	}
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Errorf("expected scratch dir removed, stat err = %v", err)
	}

	tools, err := os.ReadFile(filepath.Join(out, "tools.md"))
	if err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(string(tools), "\n", 2)[0]
	if first != "::: strands.tools" {
		t.Errorf("expected root module first, got %q", first)
	}
	if !strings.Contains(string(tools), "::: strands.tools.mcp\n    options:\n      heading_level: 2\n      members: false\n") {
		t.Errorf("expected container block in:\n%s", tools)
	}
}

func TestGenerate_FetchFailure(t *testing.T) {
	work := t.TempDir()
	scratch := filepath.Join(work, "scratch")
	out := filepath.Join(work, "out")

	fetcher := &fakeFetcher{
		files: map[string]string{"partial/file": "x"},
		err:   errors.New("network down"),
	}
	g := NewGenerator(Options{ScratchDir: scratch, ModuleRoot: "src/strands", OutputDir: out}, fetcher, nil)

	_, err := g.Generate(context.Background())
	if !errors.Is(err, ErrAcquire) {
		t.Fatalf("expected ErrAcquire, got %v", err)
	}
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Errorf("expected partial scratch removed, stat err = %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("expected no output written, stat err = %v", err)
	}

	if err := g.OnPreBuild(context.Background()); err != nil {
		t.Errorf("expected hook to swallow fetch failure, got %v", err)
	}
	if fetcher.calls != 2 {
		t.Errorf("expected 2 fetch attempts, got %d", fetcher.calls)
	}
}

func TestGenerate_NonFetchErrorSurfaces(t *testing.T) {
	work := t.TempDir()
	fetcher := &fakeFetcher{files: map[string]string{"README.md": ""}}
	g := NewGenerator(Options{
		ScratchDir: filepath.Join(work, "scratch"),
		ModuleRoot: "src/strands",
		OutputDir:  filepath.Join(work, "out"),
	}, fetcher, nil)

	if err := g.OnPreBuild(context.Background()); err == nil {
		t.Error("expected missing module root to be reported")
	}
}
