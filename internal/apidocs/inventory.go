package apidocs

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Inventory answers which modules of a source tree are public and loadable.
type Inventory interface {
	Loadable(module string) bool
}

// PackageInventory answers from the tree's package layout: a module is
// loadable when every directory from the root package down to it is a
// regular package and it matches none of the exclude patterns.
type PackageInventory struct {
	fsys    fs.FS    // rooted at the module root's parent
	exclude []string // doublestar patterns over slash paths, e.g. "strands/experimental/**"
}

// NewPackageInventory builds an inventory for the package rooted at
// moduleRoot. Exclude patterns are validated up front.
func NewPackageInventory(moduleRoot string, exclude []string) (*PackageInventory, error) {
	for _, pat := range exclude {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pat)
		}
	}
	return &PackageInventory{
		fsys:    os.DirFS(filepath.Dir(filepath.Clean(moduleRoot))),
		exclude: exclude,
	}, nil
}

func (inv *PackageInventory) Loadable(module string) bool {
	rel := strings.ReplaceAll(module, ".", "/")
	for _, pat := range inv.exclude {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return false
		}
		if ok, _ := doublestar.Match(pat, rel+".py"); ok {
			return false
		}
	}

	// A module file must exist, and each enclosing directory must carry an
	// __init__.py.
	if _, err := fs.Stat(inv.fsys, rel+".py"); err != nil {
		return false
	}
	for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
		if _, err := fs.Stat(inv.fsys, path.Join(dir, "__init__.py")); err != nil {
			return false
		}
	}
	return true
}

// Discover lists the dotted identifiers of every public module under
// moduleRoot that inv reports as loadable, sorted. A file is private when its
// name starts with an underscore.
func Discover(moduleRoot string, inv Inventory) ([]string, error) {
	moduleRoot = filepath.Clean(moduleRoot)
	info, err := os.Stat(moduleRoot)
	if err != nil {
		return nil, fmt.Errorf("module root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("module root %s is not a directory", moduleRoot)
	}

	parent := os.DirFS(filepath.Dir(moduleRoot))
	pattern := path.Join(filepath.Base(moduleRoot), "**", "*.py")
	matches, err := doublestar.Glob(parent, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}

	var modules []string
	for _, m := range matches {
		if strings.HasPrefix(path.Base(m), "_") {
			continue
		}
		module := strings.ReplaceAll(strings.TrimSuffix(m, ".py"), "/", ".")
		if !inv.Loadable(module) {
			continue
		}
		modules = append(modules, module)
	}
	sort.Strings(modules)
	return modules, nil
}
