package apidocs

import (
	"sort"
	"strings"
)

// Category is the set of modules documented on one API reference page.
type Category struct {
	Name       string   // second dotted segment, e.g. "tools"
	Root       string   // "<package>.<name>"
	Members    []string // loadable modules in the category
	Containers []string // inferred umbrella modules, sorted
}

// Categorize groups modules by the component directly under their root
// package. Modules with fewer than two segments are ignored. Categories are
// returned sorted by name.
func Categorize(modules []string) []Category {
	byName := make(map[string]*Category)
	var names []string

	for _, m := range modules {
		parts := strings.Split(m, ".")
		if len(parts) < 2 {
			continue
		}
		name := parts[1]
		cat, ok := byName[name]
		if !ok {
			cat = &Category{Name: name, Root: parts[0] + "." + name}
			byName[name] = cat
			names = append(names, name)
		}
		cat.Members = append(cat.Members, m)
	}

	sort.Strings(names)
	out := make([]Category, 0, len(names))
	for _, name := range names {
		cat := byName[name]
		cat.Containers = FindContainers(cat.Members, cat.Root)
		out = append(out, *cat)
	}
	return out
}

// FindContainers infers umbrella modules: prefixes of at least three segments
// that are not members themselves, are not the category root, and are shared
// by two or more members.
func FindContainers(members []string, root string) []string {
	present := make(map[string]bool, len(members))
	for _, m := range members {
		present[m] = true
	}

	found := make(map[string]bool)
	for _, m := range members {
		parts := strings.Split(m, ".")
		if len(parts) <= 2 {
			continue
		}
		for i := 3; i < len(parts); i++ {
			prefix := strings.Join(parts[:i], ".")
			if present[prefix] || prefix == root || found[prefix] {
				continue
			}
			if countWithPrefix(members, prefix+".") >= 2 {
				found[prefix] = true
			}
		}
	}

	out := make([]string, 0, len(found))
	for c := range found {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func countWithPrefix(modules []string, prefix string) int {
	n := 0
	for _, m := range modules {
		if strings.HasPrefix(m, prefix) {
			n++
		}
	}
	return n
}
