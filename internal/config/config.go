package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth for the hook server.
	DocsiteAPIKey string

	// Site layout
	MkdocsConfig string
	DocsDir      string

	// API reference generation
	SDKRepoURL    string
	SDKScratchDir string
	SDKModuleRoot string
	APIOutputDir  string
	APIExclude    []string

	// Hook jobs
	MaxQueueSize int
	JobTTL       time.Duration

	// Watch mode
	WatchDebounce time.Duration

	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first without overriding variables already set.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8091"),

		DocsiteAPIKey: os.Getenv("DOCSITE_API_KEY"),

		MkdocsConfig: envOr("MKDOCS_CONFIG", "mkdocs.yml"),
		DocsDir:      envOr("DOCS_DIR", "docs"),

		SDKRepoURL:    envOr("SDK_REPO_URL", "https://github.com/strands-agents/sdk-python.git"),
		SDKScratchDir: envOr("SDK_SCRATCH_DIR", "temp_python_sdk"),
		SDKModuleRoot: envOr("SDK_MODULE_ROOT", "src/strands"),
		APIOutputDir:  envOr("API_OUTPUT_DIR", "docs/api-reference"),
		APIExclude:    envList("API_EXCLUDE"),

		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 16),
		JobTTL:       envDuration("JOB_TTL", 1*time.Hour),

		WatchDebounce: envDuration("WATCH_DEBOUNCE", 200*time.Millisecond),

		LogLevel: envOr("LOG_LEVEL", "info"),
	}

	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = 200 * time.Millisecond
	}

	return cfg
}

// Validate checks the values every command needs.
func (c Config) Validate() error {
	if c.MkdocsConfig == "" {
		return fmt.Errorf("MKDOCS_CONFIG is required")
	}
	if c.SDKScratchDir == "" || c.SDKScratchDir == "." || c.SDKScratchDir == "/" {
		return fmt.Errorf("SDK_SCRATCH_DIR must name a dedicated directory, got %q", c.SDKScratchDir)
	}
	if c.SDKModuleRoot == "" {
		return fmt.Errorf("SDK_MODULE_ROOT is required")
	}
	if c.APIOutputDir == "" {
		return fmt.Errorf("API_OUTPUT_DIR is required")
	}
	return nil
}

// ValidateServer adds the checks that only apply to the hook server.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DocsiteAPIKey == "" {
		return fmt.Errorf("DOCSITE_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
