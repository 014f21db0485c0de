package titlecheck

import (
	"context"
	"fmt"
	"os"

	"github.com/dgallion1/docsite/internal/frontmatter"
)

// FixResult lists the documents a fix run touched.
type FixResult struct {
	Updated []string `json:"updated"`
	Missing []string `json:"missing"`
}

// Fix rewrites the frontmatter title of every document whose title is absent
// or differs from its navigation label. Missing documents are reported and
// left alone. With dryRun set nothing is written.
func (c *Checker) Fix(ctx context.Context, dryRun bool) (*FixResult, error) {
	docs, err := c.Documents()
	if err != nil {
		return nil, err
	}

	res := &FixResult{Updated: []string{}, Missing: []string{}}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !doc.Exists {
			res.Missing = append(res.Missing, doc.NavPath)
			continue
		}

		info, err := os.Stat(doc.File)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", doc.File, err)
		}
		content, err := os.ReadFile(doc.File)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", doc.File, err)
		}

		if current, err := titleOf(string(content)); err != nil {
			return nil, fmt.Errorf("%s: %w", doc.File, err)
		} else if current == doc.Expected {
			continue
		}

		updated, err := frontmatter.SetTitle(string(content), doc.Expected)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.File, err)
		}
		if !dryRun {
			if err := os.WriteFile(doc.File, []byte(updated), info.Mode().Perm()); err != nil {
				return nil, fmt.Errorf("write %s: %w", doc.File, err)
			}
		}
		res.Updated = append(res.Updated, doc.File)
		if c.Log != nil {
			c.Log.Info("title updated", "file", doc.File, "title", doc.Expected, "dry_run", dryRun)
		}
	}
	return res, nil
}

// titleOf returns the string title of a document, or "" when it has none.
func titleOf(content string) (string, error) {
	fm, _ := frontmatter.Extract(content)
	if fm == "" {
		return "", nil
	}
	md, err := frontmatter.Parse(fm)
	if err != nil {
		return "", err
	}
	if v, ok := md.Title(); ok && v.IsString {
		return v.Text, nil
	}
	return "", nil
}
