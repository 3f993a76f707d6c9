package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/server"
)

type serveOpts struct {
	addr     string
	maxBody  int64
	timeout  time.Duration
	envFiles []string
	noCache  bool
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the layout and render pipeline over HTTP.

Routes:
  GET  /healthz
  POST /v1/layout
  POST /v1/render/{format}

Settings are read from the [server] config table, then from the environment
(STRATUM_ADDR, STRATUM_REDIS_URL, optionally loaded from .env files), then
from flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, &opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	fs.Int64Var(&opts.maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")
	fs.DurationVar(&opts.timeout, "timeout", server.DefaultRequestTimeout, "per-request timeout")
	fs.StringSliceVar(&opts.envFiles, "env-file", nil, "env files to load (default .env)")
	fs.BoolVar(&opts.noCache, "no-cache", false, "disable the cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts *serveOpts) error {
	ctx := cmd.Context()

	if err := server.LoadEnv(opts.envFiles...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load env")
	}

	cfg, err := c.serverConfig()
	if err != nil {
		return err
	}
	cfg = cfg.ApplyEnv()
	fs := cmd.Flags()
	if fs.Changed("addr") {
		cfg.Addr = opts.addr
	}
	if fs.Changed("max-body") {
		cfg.MaxBodyBytes = opts.maxBody
	}
	if fs.Changed("timeout") {
		cfg.RequestTimeout = opts.timeout
	}
	cfg.Logger = c.Logger

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	return server.New(runner, cfg).ListenAndServe(ctx)
}

// serverConfig converts the [server] table.
func (c *CLI) serverConfig() (server.Config, error) {
	if c.config == nil {
		return server.Config{}, nil
	}
	sec := c.config.Server
	cfg := server.Config{Addr: sec.Addr, MaxBodyBytes: sec.MaxBodyBytes}
	if sec.RequestTimeout != "" {
		d, err := time.ParseDuration(sec.RequestTimeout)
		if err != nil {
			return server.Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "server.request_timeout")
		}
		cfg.RequestTimeout = d
	}
	return cfg, nil
}
