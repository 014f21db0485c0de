package apidocs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Fetcher copies a remote source tree into dest.
type Fetcher interface {
	Fetch(ctx context.Context, repoURL, dest string) error
}

// GitFetcher clones repositories with the git binary.
type GitFetcher struct {
	Binary string // defaults to "git"
	Depth  int    // shallow clone depth, 0 for full history
}

func (g GitFetcher) Fetch(ctx context.Context, repoURL, dest string) error {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}
	args := []string{"clone", "--quiet"}
	if g.Depth > 0 {
		args = append(args, "--depth", fmt.Sprint(g.Depth))
	}
	args = append(args, repoURL, dest)

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("git clone %s: %w", repoURL, err)
		}
		return fmt.Errorf("git clone %s: %w: %s", repoURL, err, msg)
	}
	return nil
}
