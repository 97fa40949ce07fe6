// Package commands implements the sharetexctl command line.
package commands

import (
	"github.com/gogpu/sharetex"
	"github.com/gogpu/sharetex/internal/config"
	"github.com/spf13/cobra"

	// Register platform backends.
	_ "github.com/gogpu/sharetex/backend/d3d9"
	_ "github.com/gogpu/sharetex/backend/wgpu"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// app carries state shared by subcommands of one invocation.
type app struct {
	cfgFile string
	cfg     *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "sharetexctl",
		Short: "Inspect and exercise shared GPU textures",
		Long: `sharetexctl opens the shared device used by sharetex, reports whether
textures can be exposed to OpenGL on this machine, and runs a create, lock,
unlock and release cycle against the selected backend.

Configuration is read from --config, then SHARETEX_* environment variables
(for example SHARETEX_BACKEND=software or SHARETEX_LOGGING_LEVEL=debug),
then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			sharetex.SetLogger(logger)
			a.cfg = cfg
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (yaml, toml or json)")
	pf.String("backend", "", "backend to use (default: highest priority available)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text, json")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newBackendsCmd())
	root.AddCommand(newProbeCmd(a))
	root.AddCommand(newSelftestCmd(a))
	root.CompletionOptions.DisableDefaultCmd = true

	return root
}

// Execute runs the command line. It is called by main.main.
func Execute() error {
	return NewRootCmd().Execute()
}

// serviceOptions translates the loaded configuration.
func (a *app) serviceOptions(extra ...sharetex.Option) []sharetex.Option {
	opts := []sharetex.Option{
		sharetex.WithDeviceSize(a.cfg.Device.Width, a.cfg.Device.Height),
	}
	if a.cfg.Backend != "" {
		opts = append(opts, sharetex.WithBackend(a.cfg.Backend))
	}
	return append(opts, extra...)
}
