// Package nav models a documentation site's navigation declaration and
// flattens it into the title every referenced document is expected to carry.
package nav

import (
	"fmt"
	"os"
	"path"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Node is one element of a navigation tree. It is implemented only by Leaf,
// Labeled and Group.
type Node interface {
	isNode()
}

// Leaf is a bare document path (or external URL) with no label of its own.
type Leaf struct {
	Path string
}

// Labeled attaches a human-readable label to a child. When the child is a
// Leaf the label is that document's title; otherwise it only names a section.
type Labeled struct {
	Label string
	Child Node
}

// Group is an ordered list of sibling entries.
type Group struct {
	Children []Node
}

func (Leaf) isNode()    {}
func (Labeled) isNode() {}
func (Group) isNode()   {}

// LoadFile reads a site configuration file and returns its decoded "nav" key.
// The document is decoded as a raw yaml.Node so application-specific tags
// elsewhere in the file (e.g. !ENV) do not need resolving.
func LoadFile(filename string) (Node, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse site config %s: %w", filename, err)
	}

	root := resolve(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("site config %s: top level is not a mapping", filename)
	}
	var navNode *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "nav" {
			navNode = root.Content[i+1]
		}
	}
	if navNode == nil {
		return nil, fmt.Errorf("site config %s: no nav section", filename)
	}
	return Decode(navNode)
}

// Decode converts a YAML navigation subtree into a Node.
func Decode(n *yaml.Node) (Node, error) {
	n = resolve(n)
	if n == nil {
		return Group{}, nil
	}

	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return Group{}, nil
		}
		return Leaf{Path: n.Value}, nil

	case yaml.SequenceNode:
		g := Group{Children: make([]Node, 0, len(n.Content))}
		for _, c := range n.Content {
			child, err := Decode(c)
			if err != nil {
				return nil, err
			}
			g.Children = append(g.Children, child)
		}
		return g, nil

	case yaml.MappingNode:
		// A repeated label keeps its first position and its last value.
		g := Group{Children: make([]Node, 0, len(n.Content)/2)}
		seen := make(map[string]int)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := resolve(n.Content[i])
			child, err := Decode(n.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("nav entry %q: %w", key.Value, err)
			}
			entry := Labeled{Label: key.Value, Child: child}
			if at, ok := seen[key.Value]; ok {
				g.Children[at] = entry
				continue
			}
			seen[key.Value] = len(g.Children)
			g.Children = append(g.Children, entry)
		}
		return g, nil

	default:
		return nil, fmt.Errorf("line %d: unexpected yaml node kind %d in nav", n.Line, n.Kind)
	}
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

// TitleMap maps a document path to the title expected for it. Paths keep the
// position of their first insertion; a later insertion replaces the title.
type TitleMap struct {
	order  []string
	titles map[string]string
}

func NewTitleMap() *TitleMap {
	return &TitleMap{titles: make(map[string]string)}
}

// Set records title for p, replacing any earlier title.
func (m *TitleMap) Set(p, title string) {
	if _, ok := m.titles[p]; !ok {
		m.order = append(m.order, p)
	}
	m.titles[p] = title
}

// Get returns the expected title for p.
func (m *TitleMap) Get(p string) (string, bool) {
	t, ok := m.titles[p]
	return t, ok
}

// Paths returns every path in insertion order.
func (m *TitleMap) Paths() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *TitleMap) Len() int { return len(m.order) }

// Titles flattens a navigation tree into a TitleMap.
func Titles(n Node) *TitleMap {
	m := NewTitleMap()
	collect(n, m)
	return m
}

func collect(n Node, m *TitleMap) {
	switch node := n.(type) {
	case Leaf:
		m.Set(node.Path, DeriveTitle(node.Path))
	case Labeled:
		if leaf, ok := node.Child.(Leaf); ok {
			m.Set(leaf.Path, node.Label)
			return
		}
		// Section label, not a document.
		collect(node.Child, m)
	case Group:
		for _, c := range node.Children {
			collect(c, m)
		}
	default:
		panic(fmt.Sprintf("nav: unknown node type %T", n))
	}
}

// DeriveTitle builds a title from a file name: the extension is dropped,
// hyphens and underscores become spaces and each word is capitalized.
func DeriveTitle(p string) string {
	base := path.Base(p)
	stem := strings.TrimSuffix(base, path.Ext(base))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return TitleCase(stem)
}

// TitleCase upper-cases the first cased letter of every run of cased letters
// and lower-cases the rest, so "api v2" becomes "Api V2". Uncased runes such
// as digits or CJK ideographs end a run.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		if isCased(r) {
			if prevCased {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevCased = true
			continue
		}
		b.WriteRune(r)
		prevCased = false
	}
	return b.String()
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}

// IsExternal reports whether a navigation path points off-site.
func IsExternal(p string) bool {
	return strings.HasPrefix(p, "http")
}
