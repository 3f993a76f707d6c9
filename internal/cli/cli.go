package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/pkg/buildinfo"
	"github.com/matzehuels/stratum/pkg/cache"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/pipeline"
	"github.com/matzehuels/stratum/pkg/render"
	"github.com/matzehuels/stratum/pkg/server"
)

const appName = "stratum"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	config     *pipeline.FileConfig
}

// New creates a CLI that logs to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stratum computes layered layouts for directed graphs",
		Long: `Stratum places the nodes of a directed graph on horizontal levels,
orders them to reduce crossings, assigns coordinates and routes every link.
Layouts can be written as JSON or rendered to SVG, DOT, PDF and PNG.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return c.loadConfig()
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&c.configPath, "config", "", "config file (default ./"+pipeline.DefaultConfigFile+" when present)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or the default file when it exists.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		if _, err := os.Stat(pipeline.DefaultConfigFile); err != nil {
			return nil
		}
		path = pipeline.DefaultConfigFile
	}
	cfg, err := pipeline.LoadConfigFile(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded config", "path", path)
	c.config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// newCache picks the backend from the [cache] table. STRATUM_REDIS_URL
// selects Redis when the table names no backend.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	var sec pipeline.CacheSection
	if c.config != nil {
		sec = c.config.Cache
	}
	if url := server.RedisURL(); url != "" && sec.Backend == "" {
		sec.Backend, sec.RedisURL = pipeline.CacheBackendRedis, url
	}

	switch sec.Backend {
	case pipeline.CacheBackendNone:
		return cache.NewNullCache(), nil
	case pipeline.CacheBackendRedis:
		c.Logger.Debug("using redis cache", "prefix", sec.Prefix)
		return cache.NewRedisCache(ctx, cache.RedisConfig{URL: sec.RedisURL, Prefix: sec.Prefix})
	}

	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the file cache directory: [cache] dir when set, else
// the XDG cache directory.
func (c *CLI) cacheDir() (string, error) {
	if c.config != nil && c.config.Cache.Dir != "" {
		return c.config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns the options from the config file with the CLI logger.
func (c *CLI) baseOptions() pipeline.Options {
	opts := c.config.Options()
	opts.Logger = c.Logger
	return opts
}

// parseFormats splits a comma-separated format list.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, strings.ToLower(f))
		}
	}
	return out
}

// inputArg accepts one input path, "-" meaning stdin.
func inputArg(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "expected one input file (use - for stdin), got %d", len(args))
	}
	return nil
}
