// Package frontmatter reads and rewrites the YAML metadata block at the top
// of a markdown document.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes a frontmatter block.
const Delimiter = "---"

// Extract splits content into its frontmatter text and the remaining body.
// The frontmatter is empty unless the first line is exactly the delimiter and
// a closing delimiter line follows; an unclosed block is treated as content.
func Extract(content string) (frontmatter, body string) {
	if !strings.HasPrefix(strings.TrimSpace(content), Delimiter) {
		return "", content
	}

	lines := strings.Split(content, "\n")
	if strings.TrimSpace(lines[0]) != Delimiter {
		return "", content
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Delimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return "", content
	}

	return strings.Join(lines[1:end], "\n"), strings.Join(lines[end+1:], "\n")
}

// ParseError reports frontmatter that is not valid YAML.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse frontmatter: %s", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Metadata is a parsed frontmatter block.
type Metadata struct {
	root *yaml.Node // mapping node, or nil when the block is not a mapping
}

// Parse decodes frontmatter text. Empty or non-mapping content yields
// Metadata without attributes.
func Parse(frontmatter string) (*Metadata, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(frontmatter), &doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	md := &Metadata{}
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
		md.root = doc.Content[0]
	}
	return md, nil
}

// Value is a scalar attribute as written in the frontmatter.
type Value struct {
	Text     string // literal text; "null" for an empty value
	IsString bool   // resolved to a YAML string rather than number, bool, null, ...
}

// Lookup returns the attribute named key. When the key is repeated the last
// occurrence wins, as it does for the site generator.
func (m *Metadata) Lookup(key string) (Value, bool) {
	if m.root == nil {
		return Value{}, false
	}
	i := lastKey(m.root, key)
	if i < 0 {
		return Value{}, false
	}
	v := m.root.Content[i+1]
	for v.Kind == yaml.AliasNode {
		v = v.Alias
	}
	if v.Kind != yaml.ScalarNode {
		out, _ := yaml.Marshal(v)
		return Value{Text: strings.TrimSpace(string(out))}, true
	}
	if v.ShortTag() == "!!null" {
		return Value{Text: "null"}, true
	}
	return Value{Text: v.Value, IsString: v.ShortTag() == "!!str"}, true
}

// lastKey returns the content index of the last key named key in a mapping
// node, or -1.
func lastKey(mapping *yaml.Node, key string) int {
	idx := -1
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			idx = i
		}
	}
	return idx
}

// Title returns the title attribute.
func (m *Metadata) Title() (Value, bool) {
	return m.Lookup("title")
}

// SetTitle returns content with its frontmatter title set to title. Other
// attributes keep their order. A document without frontmatter gains a block.
func SetTitle(content, title string) (string, error) {
	fm, body := Extract(content)

	var doc yaml.Node
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &doc); err != nil {
			return "", &ParseError{Err: err}
		}
	}

	var root *yaml.Node
	if len(doc.Content) > 0 {
		root = doc.Content[0]
	}
	if root == nil || root.Kind != yaml.MappingNode {
		if root != nil && !(root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null") {
			return "", fmt.Errorf("frontmatter is not a mapping")
		}
		root = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	titleNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: title}
	if last := lastKey(root, "title"); last >= 0 {
		root.Content[last+1] = titleNode
		// Earlier duplicates are shadowed; drop them so one title remains.
		kept := root.Content[:0]
		for i := 0; i+1 < len(root.Content); i += 2 {
			if i != last && root.Content[i].Value == "title" {
				continue
			}
			kept = append(kept, root.Content[i], root.Content[i+1])
		}
		root.Content = kept
	} else {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "title"}
		root.Content = append([]*yaml.Node{key, titleNode}, root.Content...)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}

	return Delimiter + "\n" + buf.String() + Delimiter + "\n" + body, nil
}
