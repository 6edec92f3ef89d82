package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/unshred/internal/server"
	"github.com/matzehuels/unshred/pkg/config"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   solveFlags
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Routes:
  GET  /healthz         liveness and build info
  POST /v1/unshred      reconstruct the image in the request body
  GET  /v1/runs         list recorded runs
  GET  /v1/runs/{id}    show a recorded run

Reconstruction flags set the defaults for requests that omit the matching
query parameter.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			defaults := flags.options(cmd, cfg)
			if err := defaults.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := newStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			srv := server.New(server.Config{
				Runner:         runner,
				Store:          st,
				Logger:         c.Logger,
				Defaults:       defaults,
				MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
			})

			printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(addr)))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", config.Default().Server.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
