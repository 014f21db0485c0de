// Package apidocs generates the API reference pages of the documentation
// site from a checkout of the SDK sources.
//
// A run clones the SDK into a scratch directory, lists its public loadable
// modules, groups them by top-level component and writes one mkdocstrings
// listing page per component. The scratch directory is removed when the run
// ends, successful or not.
package apidocs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrAcquire marks a failure to fetch the source tree.
var ErrAcquire = errors.New("acquire source")

// Options configures a Generator.
type Options struct {
	RepoURL    string
	ScratchDir string   // removed at the end of every run
	ModuleRoot string   // package directory, relative to the checkout
	OutputDir  string   // listing pages are written here
	Exclude    []string // doublestar patterns of modules to leave out
}

// Generator produces API reference listing pages.
type Generator struct {
	opts    Options
	fetcher Fetcher
	log     *slog.Logger
}

func NewGenerator(opts Options, fetcher Fetcher, log *slog.Logger) *Generator {
	if fetcher == nil {
		fetcher = GitFetcher{Depth: 1}
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{opts: opts, fetcher: fetcher, log: log}
}

// Result summarizes a generation run.
type Result struct {
	Modules    int      `json:"modules"`
	Categories []string `json:"categories"`
	Containers int      `json:"containers"`
	Files      []string `json:"files"`
}

// Generate runs one generation. Fetch failures are wrapped in ErrAcquire.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	scratch := filepath.Clean(g.opts.ScratchDir)
	if err := os.RemoveAll(scratch); err != nil {
		return nil, fmt.Errorf("clear scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			g.log.Warn("scratch cleanup failed", "dir", scratch, "error", err)
		}
	}()

	log := g.log.With("repo", g.opts.RepoURL)
	log.Info("cloning sdk", "dest", scratch)
	if err := g.fetcher.Fetch(ctx, g.opts.RepoURL, scratch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquire, err)
	}

	log.Info("generating api docs")
	moduleRoot := filepath.Join(scratch, filepath.FromSlash(g.opts.ModuleRoot))
	inv, err := NewPackageInventory(moduleRoot, g.opts.Exclude)
	if err != nil {
		return nil, err
	}
	modules, err := Discover(moduleRoot, inv)
	if err != nil {
		return nil, err
	}

	res := &Result{Modules: len(modules), Categories: []string{}}
	listings := make([]Listing, 0)
	for _, cat := range Categorize(modules) {
		res.Categories = append(res.Categories, cat.Name)
		res.Containers += len(cat.Containers)
		listings = append(listings, BuildListing(cat))
		log.Debug("category", "name", cat.Name, "members", len(cat.Members), "containers", cat.Containers)
	}

	files, err := WriteListings(g.opts.OutputDir, listings)
	res.Files = files
	if err != nil {
		return res, err
	}

	log.Info("api docs generated", "modules", res.Modules, "categories", len(res.Categories), "files", len(files))
	return res, nil
}

// OnPreBuild is the documentation build hook. A failed fetch is logged and
// swallowed so the site build proceeds with the pages it already has; any
// other failure is returned.
func (g *Generator) OnPreBuild(ctx context.Context) error {
	_, err := g.Generate(ctx)
	if errors.Is(err, ErrAcquire) {
		g.log.Error("failed to clone repository", "repo", g.opts.RepoURL, "error", err)
		return nil
	}
	return err
}
