// Command docsite maintains the documentation site.
//
// Usage:
//
//	docsite check-titles [--config mkdocs.yml] [--watch]
//	docsite fix-titles [--dry-run]
//	docsite gen-api [--repo URL] [--out docs/api-reference]
//	docsite serve
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/dgallion1/docsite/internal/config"
)

// CLI defines the command-line interface.
type CLI struct {
	CheckTitles CheckTitlesCmd `cmd:"" help:"Verify every navigation document has a matching frontmatter title."`
	FixTitles   FixTitlesCmd   `cmd:"" help:"Rewrite frontmatter titles to match the navigation."`
	GenAPI      GenAPICmd      `cmd:"" name:"gen-api" help:"Generate API reference listing pages from the SDK sources."`
	Serve       ServeCmd       `cmd:"" help:"Run the build hook server."`
	Version     VersionCmd     `cmd:"" help:"Show version information."`

	LogLevel string `help:"Log level (debug, info, warn, error)." default:"${log_level}"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("docsite %s\n", version)
	return nil
}

func main() {
	cfg := config.Load()

	var cli CLI
	parser, err := newParser(&cli, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	log := newLogger(cli.LogLevel, kctx.Command() == "serve")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(log, &cfg)

	if err := kctx.Run(); err != nil {
		// Violation reports are already human-readable.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newParser builds the command-line parser. Flag defaults that mirror
// environment settings come from cfg.
func newParser(cli *CLI, cfg config.Config) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("docsite"),
		kong.Description("Documentation site tooling: navigation title checks and API reference generation."),
		kong.UsageOnError(),
		kong.Vars{"log_level": cfg.LogLevel},
	)
}

// newLogger builds the process logger: JSON on stdout for the long-running
// server, text on stderr for one-shot commands.
func newLogger(level string, server bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if server {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
