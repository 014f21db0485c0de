package doctree

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Frontmatter title, or the filename stem when absent
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Level    int        // Heading level, 0 for leaf text
	Text     string     // Text content of this node (may be empty for container nodes)
	Line     int        // 1-based line of the heading in the body (0 if N/A)
	Children []*DocNode // Subsections
}

// FirstHeading returns the first heading of the given level in document
// order, or nil.
func (t *DocTree) FirstHeading(level int) *DocNode {
	var walk func(nodes []*DocNode) *DocNode
	walk = func(nodes []*DocNode) *DocNode {
		for _, n := range nodes {
			if n.Level == level {
				return n
			}
			if found := walk(n.Children); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(t.Children)
}
