package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dgallion1/docsite/internal/api"
	"github.com/dgallion1/docsite/internal/apidocs"
	"github.com/dgallion1/docsite/internal/config"
	"github.com/dgallion1/docsite/internal/pipeline"
	"github.com/dgallion1/docsite/internal/titlecheck"
	"github.com/dgallion1/docsite/internal/watch"
)

// SiteFlags locate the site configuration and its documents.
type SiteFlags struct {
	Config  string `short:"c" help:"Site configuration file (default from MKDOCS_CONFIG)." type:"path" placeholder:"PATH"`
	DocsDir string `name:"docs-dir" help:"Documents directory, relative to the config file (default from DOCS_DIR)." placeholder:"DIR"`
}

func (f SiteFlags) apply(cfg *config.Config) {
	if f.Config != "" {
		cfg.MkdocsConfig = f.Config
	}
	if f.DocsDir != "" {
		cfg.DocsDir = f.DocsDir
	}
}

// CheckTitlesCmd validates navigation titles.
type CheckTitlesCmd struct {
	SiteFlags

	Watch bool `short:"w" help:"Re-run whenever the config or documents change."`
	JSON  bool `name:"json" help:"Print the report as JSON."`
}

func (c *CheckTitlesCmd) Run(ctx context.Context, log *slog.Logger, cfg *config.Config) error {
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	checker := titlecheck.NewChecker(cfg.MkdocsConfig, cfg.DocsDir, log)

	if !c.Watch {
		report, err := checker.Check(ctx)
		if err != nil {
			return err
		}
		if c.JSON {
			if err := printJSON(report); err != nil {
				return err
			}
		}
		return report.Err()
	}

	paths := []string{cfg.MkdocsConfig}
	docs := filepath.Join(filepath.Dir(cfg.MkdocsConfig), cfg.DocsDir)
	if info, err := os.Stat(docs); err == nil && info.IsDir() {
		paths = append(paths, docs)
	}
	log.Info("watching for changes", "paths", paths)

	return watch.New(paths, cfg.WatchDebounce, log).Run(ctx, func(ctx context.Context) error {
		report, err := checker.Check(ctx)
		if err != nil {
			return err
		}
		if verr := report.Err(); verr != nil {
			fmt.Fprintf(os.Stderr, "%s\n\n", verr)
		}
		return nil
	})
}

// FixTitlesCmd rewrites frontmatter titles.
type FixTitlesCmd struct {
	SiteFlags

	DryRun bool `name:"dry-run" help:"Report the files that would change without writing them."`
}

func (c *FixTitlesCmd) Run(ctx context.Context, log *slog.Logger, cfg *config.Config) error {
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	res, err := titlecheck.NewChecker(cfg.MkdocsConfig, cfg.DocsDir, log).Fix(ctx, c.DryRun)
	if err != nil {
		return err
	}
	for _, f := range res.Updated {
		fmt.Println(f)
	}
	if len(res.Missing) > 0 {
		return fmt.Errorf("missing files referenced in %s: %v", filepath.Base(cfg.MkdocsConfig), res.Missing)
	}
	return nil
}

// GenAPICmd generates the API reference pages.
type GenAPICmd struct {
	Repo       string   `help:"SDK repository URL (default from SDK_REPO_URL)." placeholder:"URL"`
	Scratch    string   `help:"Scratch checkout directory, removed after the run (default from SDK_SCRATCH_DIR)." placeholder:"DIR"`
	ModuleRoot string   `name:"module-root" help:"Package directory inside the checkout (default from SDK_MODULE_ROOT)." placeholder:"DIR"`
	Out        string   `short:"o" help:"Output directory for listing pages (default from API_OUTPUT_DIR)." placeholder:"DIR"`
	Exclude    []string `help:"Module path patterns to leave out, e.g. strands/experimental/**." placeholder:"GLOB"`
	Strict     bool     `help:"Fail when the SDK cannot be fetched instead of keeping existing pages."`
}

func (c *GenAPICmd) Run(ctx context.Context, log *slog.Logger, cfg *config.Config) error {
	if c.Repo != "" {
		cfg.SDKRepoURL = c.Repo
	}
	if c.Scratch != "" {
		cfg.SDKScratchDir = c.Scratch
	}
	if c.ModuleRoot != "" {
		cfg.SDKModuleRoot = c.ModuleRoot
	}
	if c.Out != "" {
		cfg.APIOutputDir = c.Out
	}
	if len(c.Exclude) > 0 {
		cfg.APIExclude = c.Exclude
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	gen := newGenerator(*cfg, log)
	if !c.Strict {
		return gen.OnPreBuild(ctx)
	}
	res, err := gen.Generate(ctx)
	if err != nil {
		return err
	}
	for _, f := range res.Files {
		fmt.Println(f)
	}
	return nil
}

func newGenerator(cfg config.Config, log *slog.Logger) *apidocs.Generator {
	return apidocs.NewGenerator(apidocs.Options{
		RepoURL:    cfg.SDKRepoURL,
		ScratchDir: cfg.SDKScratchDir,
		ModuleRoot: cfg.SDKModuleRoot,
		OutputDir:  cfg.APIOutputDir,
		Exclude:    cfg.APIExclude,
	}, apidocs.GitFetcher{Depth: 1}, log)
}

// ServeCmd runs the hook server.
type ServeCmd struct {
	SiteFlags

	Port string `help:"Port to listen on (default from PORT)."`
}

func (c *ServeCmd) Run(ctx context.Context, log *slog.Logger, cfg *config.Config) error {
	c.apply(cfg)
	if c.Port != "" {
		cfg.Port = c.Port
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	worker := pipeline.NewWorker(
		newGenerator(*cfg, log),
		titlecheck.NewChecker(cfg.MkdocsConfig, cfg.DocsDir, log),
		log,
	)
	orch := pipeline.NewOrchestrator(worker, cfg.MaxQueueSize, cfg.JobTTL, reg, log)
	orch.Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, reg, log, *cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
		orch.Stop()
	}()

	log.Info("starting docsite hook server", "port", cfg.Port, "config", cfg.MkdocsConfig)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		return err
	}
	<-stopped
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
