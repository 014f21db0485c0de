package parser

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docsite/internal/doctree"
	"github.com/dgallion1/docsite/internal/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. A leading
// frontmatter block is stripped before parsing and its title, if any,
// becomes the tree title.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(filename)
	tree := &doctree.DocTree{
		Title: strings.TrimSuffix(base, filepath.Ext(base)),
	}

	fm, body := frontmatter.Extract(string(raw))
	if fm != "" {
		md, err := frontmatter.Parse(fm)
		if err != nil {
			return nil, err
		}
		if v, ok := md.Title(); ok && v.IsString {
			tree.Title = v.Text
		}
	}
	src := []byte(body)

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	// Walk the AST and build a tree based on heading levels.
	type stackEntry struct {
		node  *doctree.DocNode
		level int
	}

	// Root is level 0; every heading nests under it.
	root := &doctree.DocNode{Title: tree.Title}
	stack := []stackEntry{{node: root, level: 0}}

	var currentText bytes.Buffer

	flushText := func() {
		t := strings.TrimSpace(currentText.String())
		if t != "" {
			top := stack[len(stack)-1].node
			if top.Text != "" {
				top.Text += "\n\n" + t
			} else {
				top.Text = t
			}
		}
		currentText.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			flushText()
			level := node.Level

			newNode := &doctree.DocNode{
				Title: string(node.Text(src)),
				Level: level,
				Line:  lineOf(node, src),
			}

			// Pop stack until we find a parent with lower level.
			for len(stack) > 1 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}

			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, newNode)
			stack = append(stack, stackEntry{node: newNode, level: level})

		default:
			t := extractText(n, src)
			if t != "" {
				if currentText.Len() > 0 {
					currentText.WriteString("\n\n")
				}
				currentText.WriteString(t)
			}
		}
	}
	flushText()

	tree.Children = root.Children
	// Text before the first heading is kept as a leading leaf.
	if root.Text != "" {
		tree.Children = append([]*doctree.DocNode{{Text: root.Text}}, tree.Children...)
	}

	return tree, nil
}

// lineOf returns the 1-based body line a block node starts on.
func lineOf(n ast.Node, src []byte) int {
	lines := n.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return bytes.Count(src[:lines.At(0).Start], []byte("\n")) + 1
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
